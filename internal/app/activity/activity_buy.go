package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type buyCreator struct{}

func (buyCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.ContractID) == "" || p.Amount <= 0 {
		return nil, ErrInvalidParams
	}
	c, err := uc.Contracts.GetByID(ctx, p.ContractID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("contract %s does not exist", p.ContractID)
		}
		return nil, fmt.Errorf("load contract %s: %w", p.ContractID, err)
	}
	if c.Type != economy.ContractPublicSell {
		return nil, preconditionf("contract %s is %s, not a public sell", c.ID, c.Type)
	}
	if !c.Fulfillable(uc.now()) {
		return nil, preconditionf("contract %s can no longer be fulfilled", c.ID)
	}

	wanted := p.Amount
	if remaining := c.Remaining(); wanted > remaining {
		wanted = remaining
	}
	cost := wanted * c.PricePerUnit
	if citizen.Ducats < cost {
		return nil, preconditionf("%s has %.2f ducats, purchase costs %.2f", citizen.Username, citizen.Ducats, cost)
	}

	shop, err := uc.Buildings.GetByID(ctx, c.ExecutedAt)
	if err != nil {
		return nil, fmt.Errorf("load shop %s: %w", c.ExecutedAt, err)
	}

	now := uc.now()
	terminal := economy.Activity{
		Type:       economy.ActivityBuyFromContract,
		ToBuilding: shop.ID,
		Payload: economy.ActivityPayload{Purchase: &economy.PurchasePayload{
			ContractID: c.ID,
			Amount:     wanted,
		}},
	}
	return chainAfterTravel(uc.travelLeg(ctx, citizen, shop, now), terminal, uc.Tuning.DeliveryMinutes, now), nil
}

type buyProcessor struct{}

func (buyProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	p := a.Payload.Purchase
	if p == nil {
		return errors.New("missing purchase payload")
	}
	// The market re-validates the contract and clamps; a sold-out or expired
	// contract fails the activity here with no mutation.
	_, err := uc.Market.FulfillPublicSell(ctx, p.ContractID, a.Citizen, p.Amount)
	return err
}
