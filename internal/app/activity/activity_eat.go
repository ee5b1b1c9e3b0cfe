package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type eatCreator struct{}

func (eatCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.Tavern) == "" {
		return nil, ErrInvalidParams
	}
	tavern, err := uc.Buildings.GetByID(ctx, p.Tavern)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("tavern %s does not exist", p.Tavern)
		}
		return nil, fmt.Errorf("load tavern %s: %w", p.Tavern, err)
	}
	price := uc.Tuning.TavernMealPrice
	if citizen.Ducats < price {
		return nil, preconditionf("%s has %.2f ducats, a meal costs %.2f", citizen.Username, citizen.Ducats, price)
	}

	now := uc.now()
	terminal := economy.Activity{
		Type:       economy.ActivityEatAtTavern,
		ToBuilding: tavern.ID,
		Payload: economy.ActivityPayload{Meal: &economy.MealPayload{
			Tavern: tavern.ID,
			Price:  price,
		}},
	}
	return chainAfterTravel(uc.travelLeg(ctx, citizen, tavern, now), terminal, uc.Tuning.MealMinutes, now), nil
}

type eatProcessor struct{}

func (eatProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	meal := a.Payload.Meal
	if meal == nil {
		return errors.New("missing meal payload")
	}
	tavern, err := uc.Buildings.GetByID(ctx, meal.Tavern)
	if err != nil {
		return fmt.Errorf("load tavern %s: %w", meal.Tavern, err)
	}

	// Funds may have been spent since creation; the ledger re-checks and the
	// failure surfaces as the activity's reason.
	if err := uc.Ledger.TransferDucats(ctx, a.Citizen, tavern.FeeRecipient(), meal.Price, "meal "+a.ID); err != nil {
		return err
	}

	citizen, err := uc.Citizens.GetByUsername(ctx, a.Citizen)
	if err != nil {
		return fmt.Errorf("load citizen %s: %w", a.Citizen, err)
	}
	ateAt := uc.now()
	citizen.AteAt = &ateAt
	citizen.Version++
	if err := uc.Citizens.SaveWithVersion(ctx, citizen, citizen.Version-1); err != nil {
		return fmt.Errorf("save citizen %s: %w", a.Citizen, err)
	}
	return nil
}
