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

type patronageCreator struct{}

func (patronageCreator) Create(ctx context.Context, uc CreateUseCase, executor economy.Citizen, p Params) (economy.Stratagem, error) {
	if strings.TrimSpace(p.TargetCitizen) == "" || p.EscrowDucats <= 0 {
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

	stipend := p.RewardPerUnit
	if stipend <= 0 {
		stipend = uc.Tuning.PatronageStipend
	}

	return economy.Stratagem{
		Type:          economy.StratagemFinancialPatronage,
		TargetCitizen: target.Username,
		Progress: economy.Progress{
			RewardPerUnit: stipend,
			EscrowDucats:  p.EscrowDucats,
		},
	}, nil
}

type patronageProcessor struct{}

// Tick pays one stipend per scheduler tick until the escrow runs dry.
func (patronageProcessor) Tick(ctx context.Context, uc ProcessUseCase, s *economy.Stratagem, now time.Time) error {
	paid := s.Progress.PayStipend(s.TargetCitizen, s.Progress.RewardPerUnit)
	if paid > 0 {
		if err := uc.payReward(ctx, s, s.TargetCitizen, paid); err != nil {
			return err
		}
		uc.notify(ctx, s.TargetCitizen, "patronage",
			fmt.Sprintf("%s's patronage pays you %.2f ducats", s.ExecutedBy, paid))
	}
	if s.Progress.EscrowExhausted() {
		s.Status = economy.StratagemConcluded
	}
	return nil
}
