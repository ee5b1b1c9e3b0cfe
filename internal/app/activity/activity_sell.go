package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rialto/internal/app/contract"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type sellListingCreator struct{}

func (sellListingCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.Resource) == "" || strings.TrimSpace(p.Storage) == "" ||
		p.PricePerUnit <= 0 || p.TargetAmount <= 0 {
		return nil, ErrInvalidParams
	}
	shop, err := uc.Buildings.GetByID(ctx, p.Storage)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("shop %s does not exist", p.Storage)
		}
		return nil, fmt.Errorf("load shop %s: %w", p.Storage, err)
	}
	if shop.RunBy != citizen.Username && shop.Owner != citizen.Username {
		return nil, preconditionf("%s neither runs nor owns %s", citizen.Username, shop.ID)
	}
	fee := uc.Tuning.ContractFee(p.PricePerUnit * p.TargetAmount)
	if citizen.Ducats < fee {
		return nil, preconditionf("%s has %.2f ducats, registration fee is %.2f", citizen.Username, citizen.Ducats, fee)
	}

	now := uc.now()
	terminal := economy.Activity{
		Type:       economy.ActivityManagePublicSell,
		ToBuilding: shop.ID,
		Payload: economy.ActivityPayload{SellListing: &economy.SellListingPayload{
			Resource:     p.Resource,
			PricePerUnit: p.PricePerUnit,
			TargetAmount: p.TargetAmount,
			Shop:         shop.ID,
			DurationH:    p.DurationHours,
		}},
	}
	return chainAfterTravel(uc.travelLeg(ctx, citizen, shop, now), terminal, uc.Tuning.PaperworkMinutes, now), nil
}

type sellListingProcessor struct{}

func (sellListingProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	s := a.Payload.SellListing
	if s == nil {
		return errors.New("missing sell listing payload")
	}

	// Defense in depth: a contract already registered for this activity
	// means the effect landed on a previous dispatch.
	if _, err := uc.Contracts.GetByReference(ctx, a.ID); err == nil {
		return nil
	} else if !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("check existing listing: %w", err)
	}

	_, err := uc.Market.Create(ctx, contract.CreateParams{
		Type:         economy.ContractPublicSell,
		Buyer:        economy.PublicParty,
		Seller:       a.Citizen,
		Asset:        s.Resource,
		PricePerUnit: s.PricePerUnit,
		TargetAmount: s.TargetAmount,
		ExecutedAt:   s.Shop,
		Duration:     time.Duration(s.DurationH) * time.Hour,
		Reference:    a.ID,
	})
	return err
}
