package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type gotoCreator struct{}

func (gotoCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.Destination) == "" {
		return nil, ErrInvalidParams
	}
	dest, err := uc.Buildings.GetByID(ctx, p.Destination)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("destination %s does not exist", p.Destination)
		}
		return nil, fmt.Errorf("load destination %s: %w", p.Destination, err)
	}

	now := uc.now()
	leg := uc.travelLeg(ctx, citizen, dest, now)
	if leg == nil {
		// Already there; a zero-length leg keeps the arrival effect uniform.
		leg = &economy.Activity{
			Type:       economy.ActivityGotoLocation,
			ToBuilding: dest.ID,
			Payload: economy.ActivityPayload{Travel: &economy.TravelPayload{
				Destination:    dest.ID,
				DestinationPos: dest.Position,
			}},
			StartDate: now,
			EndDate:   now,
		}
	}
	return []economy.Activity{*leg}, nil
}

type gotoProcessor struct{}

func (gotoProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	travel := a.Payload.Travel
	if travel == nil {
		return errors.New("missing travel payload")
	}
	citizen, err := uc.Citizens.GetByUsername(ctx, a.Citizen)
	if err != nil {
		return fmt.Errorf("load citizen %s: %w", a.Citizen, err)
	}
	citizen.Position = travel.DestinationPos
	citizen.InBuilding = travel.Destination
	citizen.Version++
	if err := uc.Citizens.SaveWithVersion(ctx, citizen, citizen.Version-1); err != nil {
		return fmt.Errorf("save citizen %s: %w", a.Citizen, err)
	}
	return nil
}
