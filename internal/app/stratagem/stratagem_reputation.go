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

type reputationCreator struct{}

func (reputationCreator) Create(ctx context.Context, uc CreateUseCase, executor economy.Citizen, p Params) (economy.Stratagem, error) {
	if strings.TrimSpace(p.TargetCitizen) == "" || p.EscrowDucats <= 0 {
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
		Type:          economy.StratagemReputationBoost,
		TargetCitizen: target.Username,
		Progress: economy.Progress{
			RewardPerUnit: uc.Tuning.InfluencePerTick,
			EscrowDucats:  p.EscrowDucats,
		},
	}, nil
}

type reputationProcessor struct{}

// Tick burns a slice of escrow to raise the target's influence. The burn
// stays burned; only the influence moves, so the ducats sunk at escrow
// funding are the campaign's cost.
func (reputationProcessor) Tick(ctx context.Context, uc ProcessUseCase, s *economy.Stratagem, now time.Time) error {
	cost := uc.Tuning.ReputationTickCost
	if remaining := s.Progress.RemainingEscrow(); cost > remaining {
		cost = remaining
	}
	if cost > 0 {
		target, err := uc.Citizens.GetByUsername(ctx, s.TargetCitizen)
		if err != nil {
			return fmt.Errorf("load target %s: %w", s.TargetCitizen, err)
		}
		target.Influence += s.Progress.RewardPerUnit
		target.Version++
		if err := uc.Citizens.SaveWithVersion(ctx, target, target.Version-1); err != nil {
			return fmt.Errorf("save target %s: %w", s.TargetCitizen, err)
		}
		s.Progress.TotalRewardsPaid += cost
		s.Progress.TicksPaid++
	}
	if s.Progress.EscrowExhausted() {
		s.Status = economy.StratagemConcluded
	}
	return nil
}
