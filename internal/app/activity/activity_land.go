package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type landPurchaseCreator struct{}

// Land deals are paperwork, not travel: the finalization starts immediately
// regardless of where the citizen stands. The same activity finalizes both
// directions, a buyer taking a listing or an owner accepting a standing offer.
func (landPurchaseCreator) Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error) {
	if strings.TrimSpace(p.ListingContract) == "" {
		return nil, ErrInvalidParams
	}
	c, err := uc.Contracts.GetByID(ctx, p.ListingContract)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, preconditionf("contract %s does not exist", p.ListingContract)
		}
		return nil, fmt.Errorf("load contract %s: %w", p.ListingContract, err)
	}
	if !c.Fulfillable(uc.now()) {
		return nil, preconditionf("contract %s can no longer be fulfilled", c.ID)
	}

	switch c.Type {
	case economy.ContractLandListing:
		if c.Seller == citizen.Username {
			return nil, preconditionf("%s cannot buy their own listing", citizen.Username)
		}
		total := c.PricePerUnit + uc.Tuning.LandTransferFee(c.PricePerUnit)
		if citizen.Ducats < total {
			return nil, preconditionf("%s has %.2f ducats, purchase plus fee costs %.2f", citizen.Username, citizen.Ducats, total)
		}
	case economy.ContractLandOffer:
		parcel, err := uc.Buildings.GetByID(ctx, c.Asset)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil, preconditionf("parcel %s does not exist", c.Asset)
			}
			return nil, fmt.Errorf("load parcel %s: %w", c.Asset, err)
		}
		if parcel.Owner != citizen.Username {
			return nil, preconditionf("%s does not own parcel %s", citizen.Username, c.Asset)
		}
	default:
		return nil, preconditionf("contract %s is %s, not a land deal", c.ID, c.Type)
	}

	now := uc.now()
	return []economy.Activity{{
		Type: economy.ActivityFinalizeLandPurchase,
		Payload: economy.ActivityPayload{LandPurchase: &economy.LandPurchasePayload{
			ListingContract: c.ID,
			LandID:          c.Asset,
			Price:           c.PricePerUnit,
		}},
		StartDate: now,
		EndDate:   now.Add(time.Duration(uc.Tuning.PaperworkMinutes) * time.Minute),
	}}, nil
}

type landPurchaseProcessor struct{}

func (landPurchaseProcessor) Process(ctx context.Context, uc ProcessUseCase, a economy.Activity) error {
	lp := a.Payload.LandPurchase
	if lp == nil {
		return errors.New("missing land purchase payload")
	}
	c, err := uc.Contracts.GetByID(ctx, lp.ListingContract)
	if err != nil {
		return fmt.Errorf("load contract %s: %w", lp.ListingContract, err)
	}
	// Fees are re-derived inside the market; price, fee, ownership and the
	// contract update commit as one unit or not at all.
	switch c.Type {
	case economy.ContractLandOffer:
		if err := uc.Market.AcceptLandOffer(ctx, c.ID, a.Citizen); err != nil {
			return err
		}
		uc.notify(ctx, c.Buyer, "land_purchase", fmt.Sprintf("your offer on parcel %s was accepted", lp.LandID))
	default:
		if err := uc.Market.SettleLandPurchase(ctx, c.ID, a.Citizen); err != nil {
			return err
		}
		uc.notify(ctx, a.Citizen, "land_purchase", fmt.Sprintf("parcel %s is now yours", lp.LandID))
	}
	return nil
}
