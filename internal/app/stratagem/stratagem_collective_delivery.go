package stratagem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type collectiveDeliveryCreator struct{}

func (collectiveDeliveryCreator) Create(ctx context.Context, uc CreateUseCase, executor economy.Citizen, p Params) (economy.Stratagem, error) {
	if strings.TrimSpace(p.TargetBuilding) == "" || strings.TrimSpace(p.Resource) == "" || p.MaxAmount <= 0 {
		return economy.Stratagem{}, ErrInvalidParams
	}
	if _, err := uc.Buildings.GetByID(ctx, p.TargetBuilding); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return economy.Stratagem{}, preconditionf("target building %s does not exist", p.TargetBuilding)
		}
		return economy.Stratagem{}, fmt.Errorf("load target building %s: %w", p.TargetBuilding, err)
	}

	reward := p.RewardPerUnit
	if reward <= 0 {
		reward = uc.Tuning.DefaultRewardPerUnit
	}
	escrow := p.EscrowDucats
	if escrow <= 0 {
		escrow = p.MaxAmount * reward
	}

	return economy.Stratagem{
		Type:           economy.StratagemCollectiveDelivery,
		TargetBuilding: p.TargetBuilding,
		Progress: economy.Progress{
			MaxAmount:     p.MaxAmount,
			RewardPerUnit: reward,
			EscrowDucats:  escrow,
			Resource:      p.Resource,
		},
	}, nil
}

type collectiveDeliveryProcessor struct{}

// Tick attributes deliveries completed since creation that target the
// stratagem's building and resource. The repository returns them EndDate
// ascending then id ascending, which keeps per-participant totals
// reproducible when several complete in the same tick.
func (collectiveDeliveryProcessor) Tick(ctx context.Context, uc ProcessUseCase, s *economy.Stratagem, now time.Time) error {
	candidates, err := uc.Activities.ListCompletedSince(ctx, economy.ActivityDeliverToStorage, s.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("scan deliveries: %w", err)
	}

	for _, a := range candidates {
		d := a.Payload.Delivery
		if d == nil {
			// Malformed qualifying activity: skip, never abort the tick.
			continue
		}
		if d.Storage != s.TargetBuilding || d.Resource != s.Progress.Resource {
			continue
		}
		amount, reward := s.Progress.AcceptDelivery(a.ID, a.Citizen, d.Amount, a.EndDate)
		if amount <= 0 {
			if s.Progress.TargetReached() || s.Progress.EscrowExhausted() {
				break
			}
			continue
		}
		if err := uc.payReward(ctx, s, a.Citizen, reward); err != nil {
			return err
		}
		uc.notify(ctx, a.Citizen, "stratagem_reward",
			fmt.Sprintf("your delivery of %.2f %s earned %.2f ducats", amount, d.Resource, reward))
	}

	if s.Progress.TargetReached() || s.Progress.EscrowExhausted() {
		s.Status = economy.StratagemConcluded
	}
	return nil
}
