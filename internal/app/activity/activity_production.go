package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rialto/internal/app/ledger"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type productionCreator struct{}

func (productionCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.Building) == "" || len(p.Outputs) == 0 {
		return nil, ErrInvalidParams
	}
	building, err := uc.Buildings.GetByID(ctx, p.Building)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("workshop %s does not exist", p.Building)
		}
		return nil, fmt.Errorf("load workshop %s: %w", p.Building, err)
	}
	for resource, amount := range p.Inputs {
		if amount <= 0 {
			return nil, ErrInvalidParams
		}
		stock, err := holderStock(ctx, uc.Resources, building.ID, economy.AssetBuilding, resource)
		if err != nil {
			return nil, err
		}
		if stock < amount {
			return nil, preconditionf("workshop %s holds %.2f %s, recipe needs %.2f", building.ID, stock, resource, amount)
		}
	}

	now := uc.now()
	terminal := economy.Activity{
		Type:       economy.ActivityProduction,
		ToBuilding: building.ID,
		Payload: economy.ActivityPayload{Production: &economy.ProductionPayload{
			Building: building.ID,
			Inputs:   p.Inputs,
			Outputs:  p.Outputs,
		}},
	}
	return chainAfterTravel(uc.travelLeg(ctx, citizen, building, now), terminal, uc.Tuning.ProductionMinutes, now), nil
}

type productionProcessor struct{}

func (productionProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	p := a.Payload.Production
	if p == nil {
		return errors.New("missing production payload")
	}
	building, err := uc.Buildings.GetByID(ctx, p.Building)
	if err != nil {
		return fmt.Errorf("load workshop %s: %w", p.Building, err)
	}

	// Check every input before consuming any, so a short recipe leaves the
	// workshop untouched.
	for resource, amount := range p.Inputs {
		stock, err := uc.Ledger.AvailableResource(ctx, building.ID, economy.AssetBuilding, resource)
		if err != nil {
			return err
		}
		if stock < amount {
			return fmt.Errorf("%w: %s at %s has %.2f, recipe needs %.2f", ledger.ErrInsufficientStock, resource, building.ID, stock, amount)
		}
	}
	for resource, amount := range p.Inputs {
		if err := uc.Ledger.ConsumeResource(ctx, resource, amount, building.ID, economy.AssetBuilding, "production "+a.ID); err != nil {
			return err
		}
	}
	owner := building.RunBy
	if owner == "" {
		owner = building.Owner
	}
	for resource, amount := range p.Outputs {
		if err := uc.Ledger.AddResource(ctx, resource, amount, owner, building.ID, economy.AssetBuilding, nil, "production "+a.ID); err != nil {
			return err
		}
	}
	return nil
}
