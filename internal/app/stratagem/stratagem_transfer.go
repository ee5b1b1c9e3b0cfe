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

type transferCreator struct{}

func (transferCreator) Create(ctx context.Context, uc CreateUseCase, executor economy.Citizen, p Params) (economy.Stratagem, error) {
	if strings.TrimSpace(p.TargetCitizen) == "" || p.Amount <= 0 {
		return economy.Stratagem{}, ErrInvalidParams
	}
	if p.TargetCitizen == executor.Username {
		return economy.Stratagem{}, ErrInvalidParams
	}
	target, err := uc.Citizens.GetByUsername(ctx, p.TargetCitizen)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return economy.Stratagem{}, preconditionf("target %s does not exist", p.TargetCitizen)
		}
		return economy.Stratagem{}, fmt.Errorf("load target %s: %w", p.TargetCitizen, err)
	}
	if !target.Active {
		return economy.Stratagem{}, preconditionf("target %s is deactivated", target.Username)
	}

	return economy.Stratagem{
		Type:          economy.StratagemTransferDucats,
		TargetCitizen: target.Username,
		Progress: economy.Progress{
			EscrowDucats: p.Amount,
		},
	}, nil
}

type transferProcessor struct{}

// Tick releases the whole escrow to the target on the first tick and
// concludes.
func (transferProcessor) Tick(ctx context.Context, uc ProcessUseCase, s *economy.Stratagem, now time.Time) error {
	paid := s.Progress.PayStipend(s.TargetCitizen, s.Progress.RemainingEscrow())
	if paid > 0 {
		if err := uc.payReward(ctx, s, s.TargetCitizen, paid); err != nil {
			return err
		}
		uc.notify(ctx, s.TargetCitizen, "ducats_received",
			fmt.Sprintf("%s transferred %.2f ducats to you", s.ExecutedBy, paid))
	}
	s.Status = economy.StratagemConcluded
	return nil
}
