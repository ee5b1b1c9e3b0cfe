package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type deliverCreator struct{}

func (deliverCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.Resource) == "" || strings.TrimSpace(p.Storage) == "" || p.Amount <= 0 {
		return nil, ErrInvalidParams
	}
	storage, err := uc.Buildings.GetByID(ctx, p.Storage)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("storage %s does not exist", p.Storage)
		}
		return nil, fmt.Errorf("load storage %s: %w", p.Storage, err)
	}
	held, err := holderStock(ctx, uc.Resources, citizen.Username, economy.AssetCitizen, p.Resource)
	if err != nil {
		return nil, err
	}
	if held < p.Amount {
		return nil, preconditionf("%s carries %.2f %s, needs %.2f", citizen.Username, held, p.Resource, p.Amount)
	}

	now := uc.now()
	terminal := economy.Activity{
		Type:       economy.ActivityDeliverToStorage,
		ToBuilding: storage.ID,
		Payload: economy.ActivityPayload{Delivery: &economy.DeliveryPayload{
			Resource: p.Resource,
			Amount:   p.Amount,
			Storage:  storage.ID,
		}},
	}
	return chainAfterTravel(uc.travelLeg(ctx, citizen, storage, now), terminal, uc.Tuning.DeliveryMinutes, now), nil
}

type deliverProcessor struct{}

func (deliverProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	d := a.Payload.Delivery
	if d == nil {
		return errors.New("missing delivery payload")
	}
	// Ownership stays with the delivering citizen; only the location moves.
	return uc.Ledger.TransferResource(ctx, d.Resource, d.Amount,
		a.Citizen, economy.AssetCitizen,
		a.Citizen, d.Storage, economy.AssetBuilding,
		"delivery "+a.ID)
}

type fetchCreator struct{}

func (fetchCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.Resource) == "" || strings.TrimSpace(p.Storage) == "" || p.Amount <= 0 {
		return nil, ErrInvalidParams
	}
	storage, err := uc.Buildings.GetByID(ctx, p.Storage)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("storage %s does not exist", p.Storage)
		}
		return nil, fmt.Errorf("load storage %s: %w", p.Storage, err)
	}
	stored, err := holderStock(ctx, uc.Resources, storage.ID, economy.AssetBuilding, p.Resource)
	if err != nil {
		return nil, err
	}
	if stored < p.Amount {
		return nil, preconditionf("storage %s holds %.2f %s, needs %.2f", storage.ID, stored, p.Resource, p.Amount)
	}

	now := uc.now()
	terminal := economy.Activity{
		Type:         economy.ActivityFetchFromStorage,
		FromBuilding: storage.ID,
		Payload: economy.ActivityPayload{Fetch: &economy.FetchPayload{
			Resource: p.Resource,
			Amount:   p.Amount,
			Storage:  storage.ID,
		}},
	}
	return chainAfterTravel(uc.travelLeg(ctx, citizen, storage, now), terminal, uc.Tuning.DeliveryMinutes, now), nil
}

type fetchProcessor struct{}

func (fetchProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	f := a.Payload.Fetch
	if f == nil {
		return errors.New("missing fetch payload")
	}
	return uc.Ledger.TransferResource(ctx, f.Resource, f.Amount,
		f.Storage, economy.AssetBuilding,
		a.Citizen, a.Citizen, economy.AssetCitizen,
		"fetch "+a.ID)
}

func holderStock(ctx context.Context, repo ports.ResourceRepository, assetID string, kind economy.AssetKind, resourceType string) (float64, error) {
	stacks, err := repo.ListByHolder(ctx, assetID, kind, resourceType)
	if err != nil {
		return 0, fmt.Errorf("list %s at %s: %w", resourceType, assetID, err)
	}
	total := 0.0
	for _, s := range stacks {
		total += s.Quantity
	}
	return total, nil
}
