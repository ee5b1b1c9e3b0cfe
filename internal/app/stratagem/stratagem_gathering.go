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

type gatheringCreator struct{}

func (gatheringCreator) Create(ctx context.Context, uc CreateUseCase, executor economy.Citizen, p Params) (economy.Stratagem, error) {
	if strings.TrimSpace(p.TargetBuilding) == "" || p.MaxAmount <= 0 {
		return economy.Stratagem{}, ErrInvalidParams
	}
	if _, err := uc.Buildings.GetByID(ctx, p.TargetBuilding); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return economy.Stratagem{}, preconditionf("venue %s does not exist", p.TargetBuilding)
		}
		return economy.Stratagem{}, fmt.Errorf("load venue %s: %w", p.TargetBuilding, err)
	}

	reward := p.RewardPerUnit
	if reward <= 0 {
		reward = uc.Tuning.GatheringReward
	}
	escrow := p.EscrowDucats
	if escrow <= 0 {
		escrow = p.MaxAmount * reward
	}

	// MaxAmount counts attendees; each counts once.
	return economy.Stratagem{
		Type:           economy.StratagemOrganizeGathering,
		TargetBuilding: p.TargetBuilding,
		Progress: economy.Progress{
			MaxAmount:     p.MaxAmount,
			RewardPerUnit: reward,
			EscrowDucats:  escrow,
		},
	}, nil
}

type gatheringProcessor struct{}

func (gatheringProcessor) Tick(ctx context.Context, uc ProcessUseCase, s *economy.Stratagem, now time.Time) error {
	arrivals, err := uc.Activities.ListCompletedSince(ctx, economy.ActivityGotoLocation, s.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("scan arrivals: %w", err)
	}

	for _, a := range arrivals {
		if a.ToBuilding != s.TargetBuilding {
			continue
		}
		if a.Citizen == s.ExecutedBy || alreadyAttended(s.Progress, a.Citizen) {
			continue
		}
		amount, reward := s.Progress.AcceptDelivery(a.ID, a.Citizen, 1, a.EndDate)
		if amount <= 0 {
			if s.Progress.TargetReached() || s.Progress.EscrowExhausted() {
				break
			}
			continue
		}
		if err := uc.payReward(ctx, s, a.Citizen, reward); err != nil {
			return err
		}
		uc.notify(ctx, a.Citizen, "gathering_reward",
			fmt.Sprintf("attending the gathering at %s earned you %.2f ducats", s.TargetBuilding, reward))
	}

	if s.Progress.TargetReached() || s.Progress.EscrowExhausted() {
		s.Status = economy.StratagemConcluded
	}
	return nil
}

func alreadyAttended(p economy.Progress, citizen string) bool {
	for _, participant := range p.Participants {
		if participant.Username == citizen {
			return true
		}
	}
	return false
}
