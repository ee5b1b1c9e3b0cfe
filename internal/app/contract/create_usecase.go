package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

var (
	ErrInvalidRequest      = errors.New("invalid contract request")
	ErrPreconditionFailed  = errors.New("contract precondition failed")
	ErrUnknownContractType = errors.New("unknown contract type")
)

// PreconditionError carries the human-readable reason a registration was
// rejected.
type PreconditionError struct {
	Detail string
}

func (e *PreconditionError) Error() string {
	return ErrPreconditionFailed.Error() + ": " + e.Detail
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Detail: fmt.Sprintf(format, args...)}
}

// initiatorSide records which side of each contract type the registering
// citizen takes; the other side stays open until fulfillment.
var initiatorSide = map[economy.ContractType]string{
	economy.ContractPublicSell:   "seller",
	economy.ContractLandListing:  "seller",
	economy.ContractLoan:         "seller",
	economy.ContractPublicImport: "buyer",
	economy.ContractBuildingBid:  "buyer",
	economy.ContractLandOffer:    "buyer",
	economy.ContractMarkupBuy:    "buyer",
}

type CreateRequest struct {
	Citizen         string               `json:"citizen"`
	Type            economy.ContractType `json:"type"`
	Asset           string               `json:"asset"`
	PricePerUnit    float64              `json:"price_per_unit"`
	TargetAmount    float64              `json:"target_amount"`
	ExecutedAt      string               `json:"executed_at,omitempty"`
	DurationMinutes int                  `json:"duration_minutes,omitempty"`
}

type CreateResponse struct {
	Contract economy.Contract `json:"contract"`
}

// CreateUseCase registers a contract on behalf of a citizen. The registration
// fee and the contract row commit atomically.
type CreateUseCase struct {
	TxManager ports.TxManager
	Citizens  ports.CitizenRepository
	Buildings ports.BuildingRepository
	Market    Service
	Now       func() time.Time
}

func (u CreateUseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now().UTC()
}

func (u CreateUseCase) Execute(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	req.Citizen = strings.TrimSpace(req.Citizen)
	if req.Citizen == "" {
		return CreateResponse{}, ErrInvalidRequest
	}
	side, ok := initiatorSide[req.Type]
	if !ok {
		return CreateResponse{}, ErrUnknownContractType
	}

	citizen, err := u.Citizens.GetByUsername(ctx, req.Citizen)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return CreateResponse{}, ErrInvalidRequest
		}
		return CreateResponse{}, fmt.Errorf("load citizen %s: %w", req.Citizen, err)
	}
	if !citizen.Active {
		return CreateResponse{}, preconditionf("citizen %s is deactivated", citizen.Username)
	}

	p := CreateParams{
		Type:         req.Type,
		Asset:        req.Asset,
		PricePerUnit: req.PricePerUnit,
		TargetAmount: req.TargetAmount,
		ExecutedAt:   req.ExecutedAt,
		Duration:     time.Duration(req.DurationMinutes) * time.Minute,
	}
	if side == "seller" {
		p.Seller = citizen.Username
	} else {
		p.Buyer = citizen.Username
	}

	switch req.Type {
	case economy.ContractLandListing, economy.ContractLandOffer:
		// A land deal moves exactly one parcel.
		p.TargetAmount = 1
		parcel, err := u.Buildings.GetByID(ctx, req.Asset)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return CreateResponse{}, preconditionf("parcel %s does not exist", req.Asset)
			}
			return CreateResponse{}, fmt.Errorf("load parcel %s: %w", req.Asset, err)
		}
		if req.Type == economy.ContractLandListing && parcel.Owner != citizen.Username {
			return CreateResponse{}, preconditionf("%s does not own parcel %s", citizen.Username, req.Asset)
		}
		if req.Type == economy.ContractLandOffer && parcel.Owner == citizen.Username {
			return CreateResponse{}, preconditionf("%s already owns parcel %s", citizen.Username, req.Asset)
		}
	case economy.ContractBuildingBid:
		if _, err := u.Buildings.GetByID(ctx, req.Asset); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return CreateResponse{}, preconditionf("building %s does not exist", req.Asset)
			}
			return CreateResponse{}, fmt.Errorf("load building %s: %w", req.Asset, err)
		}
	}

	var c economy.Contract
	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		c, err = u.Market.Create(txCtx, p)
		return err
	})
	if err != nil {
		return CreateResponse{}, err
	}
	return CreateResponse{Contract: c}, nil
}
