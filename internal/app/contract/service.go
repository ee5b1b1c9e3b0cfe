package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rialto/internal/app/ledger"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

var (
	ErrInvalidParams  = errors.New("invalid contract params")
	ErrNotFulfillable = errors.New("contract not fulfillable")
	ErrWrongType      = errors.New("wrong contract type")
	ErrNotCancellable = errors.New("contract not cancellable")
)

// Service owns the contract lifecycle. Like the ledger, its mutating methods
// expect to run inside a TxManager transaction.
type Service struct {
	Contracts ports.ContractRepository
	Buildings ports.BuildingRepository
	Ledger    ledger.Service
	Tuning    economy.Tuning
	Now       func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type CreateParams struct {
	Type         economy.ContractType
	Buyer        string
	Seller       string
	Asset        string
	PricePerUnit float64
	TargetAmount float64
	ExecutedAt   string // building where the transaction is executed
	Duration     time.Duration
	Reference    string // creating activity id, for idempotency
}

// Create persists a contract and charges the registration fee to the
// initiating party; the fee goes to the executing building's operator of
// record, else the treasury.
func (s Service) Create(ctx context.Context, p CreateParams) (economy.Contract, error) {
	if p.Asset == "" || p.PricePerUnit <= 0 || p.TargetAmount <= 0 {
		return economy.Contract{}, ErrInvalidParams
	}
	initiator := p.Seller
	if initiator == "" {
		initiator = p.Buyer
	}
	if initiator == "" || initiator == economy.PublicParty {
		return economy.Contract{}, ErrInvalidParams
	}

	now := s.now()
	c := economy.Contract{
		ID:              uuid.NewString(),
		Type:            p.Type,
		Buyer:           p.Buyer,
		Seller:          p.Seller,
		Asset:           p.Asset,
		PricePerUnit:    p.PricePerUnit,
		TargetAmount:    p.TargetAmount,
		FulfilledAmount: 0,
		Status:          economy.ContractActive,
		ExecutedAt:      p.ExecutedAt,
		Reference:       p.Reference,
		CreatedAt:       now,
	}
	if p.Duration > 0 {
		end := now.Add(p.Duration)
		c.EndAt = &end
	}

	fee := s.Tuning.ContractFee(c.NotionalValue())
	recipient := economy.TreasuryAccount
	if p.ExecutedAt != "" {
		building, err := s.Buildings.GetByID(ctx, p.ExecutedAt)
		if err != nil {
			return economy.Contract{}, fmt.Errorf("load executing building %s: %w", p.ExecutedAt, err)
		}
		recipient = building.FeeRecipient()
	}
	if recipient == initiator {
		// Operator registering at their own shop still pays, to the treasury.
		recipient = economy.TreasuryAccount
	}
	if err := s.Ledger.PayFee(ctx, initiator, recipient, fee, "registration "+c.ID); err != nil {
		return economy.Contract{}, err
	}

	if err := s.Contracts.Save(ctx, c); err != nil {
		return economy.Contract{}, fmt.Errorf("save contract: %w", err)
	}
	return c, nil
}

// FulfillPublicSell lets a buyer take up to the remaining amount of a public
// sell: ducats buyer→seller, goods shop→buyer. Returns the accepted amount.
func (s Service) FulfillPublicSell(ctx context.Context, contractID, buyer string, amount float64) (float64, error) {
	if amount <= 0 || buyer == "" {
		return 0, ErrInvalidParams
	}
	c, err := s.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return 0, fmt.Errorf("load contract %s: %w", contractID, err)
	}
	if c.Type != economy.ContractPublicSell {
		return 0, ErrWrongType
	}
	if !c.Fulfillable(s.now()) {
		return 0, ErrNotFulfillable
	}

	accepted := amount
	if remaining := c.Remaining(); accepted > remaining {
		accepted = remaining
	}
	cost := accepted * c.PricePerUnit

	// Check the goods leg before the ducat leg moves anything; the tx lock
	// keeps the stock from changing in between.
	stock, err := s.Ledger.AvailableResource(ctx, c.ExecutedAt, economy.AssetBuilding, c.Asset)
	if err != nil {
		return 0, err
	}
	if stock < accepted {
		return 0, fmt.Errorf("%w: %s at %s has %.2f, needs %.2f", ledger.ErrInsufficientStock, c.Asset, c.ExecutedAt, stock, accepted)
	}

	if err := s.Ledger.TransferDucats(ctx, buyer, c.Seller, cost, "fulfill "+c.ID); err != nil {
		return 0, err
	}
	if err := s.Ledger.TransferResource(ctx, c.Asset, accepted, c.ExecutedAt, economy.AssetBuilding, buyer, buyer, economy.AssetCitizen, "fulfill "+c.ID); err != nil {
		return 0, err
	}

	c.RecordFulfillment(accepted)
	if err := s.Contracts.Update(ctx, c); err != nil {
		return 0, fmt.Errorf("update contract %s: %w", contractID, err)
	}
	return accepted, nil
}

// FulfillMarkupBuy is the mirror direction: a seller delivers into a buyer's
// standing order, goods seller→buyer's building, ducats buyer→seller.
func (s Service) FulfillMarkupBuy(ctx context.Context, contractID, seller string, amount float64) (float64, error) {
	if amount <= 0 || seller == "" {
		return 0, ErrInvalidParams
	}
	c, err := s.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return 0, fmt.Errorf("load contract %s: %w", contractID, err)
	}
	if c.Type != economy.ContractMarkupBuy {
		return 0, ErrWrongType
	}
	if !c.Fulfillable(s.now()) {
		return 0, ErrNotFulfillable
	}

	accepted := amount
	if remaining := c.Remaining(); accepted > remaining {
		accepted = remaining
	}
	payment := accepted * c.PricePerUnit

	// The buyer's funds are the later leg; check them before the goods move.
	balance, err := s.Ledger.Balance(ctx, c.Buyer)
	if err != nil {
		return 0, err
	}
	if balance < payment {
		return 0, fmt.Errorf("%w: %s has %.2f, needs %.2f", ledger.ErrInsufficientFunds, c.Buyer, balance, payment)
	}

	if err := s.Ledger.TransferResource(ctx, c.Asset, accepted, seller, economy.AssetCitizen, c.Buyer, c.ExecutedAt, economy.AssetBuilding, "fulfill "+c.ID); err != nil {
		return 0, err
	}
	if err := s.Ledger.TransferDucats(ctx, c.Buyer, seller, payment, "fulfill "+c.ID); err != nil {
		return 0, err
	}

	c.RecordFulfillment(accepted)
	if err := s.Contracts.Update(ctx, c); err != nil {
		return 0, fmt.Errorf("update contract %s: %w", contractID, err)
	}
	return accepted, nil
}

// SettleLandPurchase executes a land listing: price buyer→seller, transfer
// fee buyer→treasury, parcel ownership to the buyer, listing fulfilled.
func (s Service) SettleLandPurchase(ctx context.Context, listingID, buyer string) error {
	c, err := s.Contracts.GetByID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("load listing %s: %w", listingID, err)
	}
	if c.Type != economy.ContractLandListing {
		return ErrWrongType
	}
	if !c.Fulfillable(s.now()) {
		return ErrNotFulfillable
	}

	price := c.PricePerUnit
	fee := s.Tuning.LandTransferFee(price)
	balance, err := s.Ledger.Balance(ctx, buyer)
	if err != nil {
		return err
	}
	if balance < price+fee {
		return fmt.Errorf("%w: %s has %.2f, purchase plus fee needs %.2f", ledger.ErrInsufficientFunds, buyer, balance, price+fee)
	}
	if err := s.Ledger.TransferDucats(ctx, buyer, c.Seller, price, "land sale "+c.ID); err != nil {
		return err
	}
	if fee > 0 {
		if err := s.Ledger.PayFee(ctx, buyer, economy.TreasuryAccount, fee, "land transfer "+c.ID); err != nil {
			return err
		}
	}
	if err := s.Buildings.SetOwner(ctx, c.Asset, buyer); err != nil {
		return fmt.Errorf("transfer parcel %s: %w", c.Asset, err)
	}

	c.Buyer = buyer
	c.RecordFulfillment(c.Remaining())
	c.Status = economy.ContractFulfilled
	if err := s.Contracts.Update(ctx, c); err != nil {
		return fmt.Errorf("update listing %s: %w", listingID, err)
	}
	return nil
}

// AcceptLandOffer executes a standing purchase offer on a parcel: the owner
// accepts, the offering buyer pays price plus transfer fee, the parcel changes
// hands and the offer is fulfilled with the owner recorded as seller.
func (s Service) AcceptLandOffer(ctx context.Context, offerID, seller string) error {
	c, err := s.Contracts.GetByID(ctx, offerID)
	if err != nil {
		return fmt.Errorf("load offer %s: %w", offerID, err)
	}
	if c.Type != economy.ContractLandOffer {
		return ErrWrongType
	}
	if !c.Fulfillable(s.now()) {
		return ErrNotFulfillable
	}
	parcel, err := s.Buildings.GetByID(ctx, c.Asset)
	if err != nil {
		return fmt.Errorf("load parcel %s: %w", c.Asset, err)
	}
	if parcel.Owner != seller {
		return fmt.Errorf("%w: %s does not own parcel %s", ErrNotFulfillable, seller, c.Asset)
	}

	price := c.PricePerUnit
	fee := s.Tuning.LandTransferFee(price)
	balance, err := s.Ledger.Balance(ctx, c.Buyer)
	if err != nil {
		return err
	}
	if balance < price+fee {
		return fmt.Errorf("%w: offering buyer %s has %.2f, purchase plus fee needs %.2f", ledger.ErrInsufficientFunds, c.Buyer, balance, price+fee)
	}
	if err := s.Ledger.TransferDucats(ctx, c.Buyer, seller, price, "land offer "+c.ID); err != nil {
		return err
	}
	if fee > 0 {
		if err := s.Ledger.PayFee(ctx, c.Buyer, economy.TreasuryAccount, fee, "land transfer "+c.ID); err != nil {
			return err
		}
	}
	if err := s.Buildings.SetOwner(ctx, c.Asset, c.Buyer); err != nil {
		return fmt.Errorf("transfer parcel %s: %w", c.Asset, err)
	}

	c.Seller = seller
	c.RecordFulfillment(c.Remaining())
	c.Status = economy.ContractFulfilled
	if err := s.Contracts.Update(ctx, c); err != nil {
		return fmt.Errorf("update offer %s: %w", offerID, err)
	}
	return nil
}

// ExpireDue sweeps active contracts past EndAt. Returns how many expired.
func (s Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.Contracts.ListExpiredActive(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired: %w", err)
	}
	expired := 0
	for _, c := range due {
		c.Status = economy.ContractExpired
		if err := s.Contracts.Update(ctx, c); err != nil {
			return expired, fmt.Errorf("expire contract %s: %w", c.ID, err)
		}
		expired++
	}
	return expired, nil
}

// Cancel administratively withdraws an active contract.
func (s Service) Cancel(ctx context.Context, contractID string) error {
	c, err := s.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return fmt.Errorf("load contract %s: %w", contractID, err)
	}
	if c.Status != economy.ContractActive {
		return ErrNotCancellable
	}
	c.Status = economy.ContractCancelled
	if err := s.Contracts.Update(ctx, c); err != nil {
		return fmt.Errorf("cancel contract %s: %w", contractID, err)
	}
	return nil
}
