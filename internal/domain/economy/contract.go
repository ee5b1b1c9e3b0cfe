package economy

import "time"

type ContractType string

const (
	ContractPublicSell   ContractType = "public_sell"
	ContractPublicImport ContractType = "public_import"
	ContractBuildingBid  ContractType = "building_bid"
	ContractLandListing  ContractType = "land_listing"
	ContractLandOffer    ContractType = "land_offer"
	ContractMarkupBuy    ContractType = "markup_buy"
	ContractLoan         ContractType = "loan"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractFulfilled ContractStatus = "fulfilled"
	ContractExpired   ContractStatus = "expired"
	ContractCancelled ContractStatus = "cancelled"
)

// PublicParty marks the open side of a one-sided contract.
const PublicParty = "public"

type Contract struct {
	ID              string         `json:"id"`
	Type            ContractType   `json:"type"`
	Buyer           string         `json:"buyer,omitempty"`
	Seller          string         `json:"seller,omitempty"`
	Asset           string         `json:"asset"`
	PricePerUnit    float64        `json:"price_per_unit"`
	TargetAmount    float64        `json:"target_amount"`
	FulfilledAmount float64        `json:"fulfilled_amount"`
	Status          ContractStatus `json:"status"`
	ExecutedAt      string         `json:"executed_at,omitempty"`
	// Reference is the id of the activity that created the contract; the
	// processor's idempotency check keys on it.
	Reference string     `json:"reference,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (c Contract) Remaining() float64 {
	r := c.TargetAmount - c.FulfilledAmount
	if r < 0 {
		return 0
	}
	return r
}

func (c Contract) Expired(now time.Time) bool {
	return c.EndAt != nil && now.After(*c.EndAt)
}

// Fulfillable reports whether a counter-party may still fulfill any amount.
func (c Contract) Fulfillable(now time.Time) bool {
	return c.Status == ContractActive && !c.Expired(now) && c.Remaining() > 0
}

// NotionalValue is price × target, the base for fee calculation.
func (c Contract) NotionalValue() float64 {
	return c.PricePerUnit * c.TargetAmount
}

// RecordFulfillment clamps amount to the remaining target, applies it and
// returns the accepted amount. Marks the contract fulfilled when the target
// is reached.
func (c *Contract) RecordFulfillment(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if remaining := c.Remaining(); amount > remaining {
		amount = remaining
	}
	c.FulfilledAmount += amount
	if c.Remaining() == 0 {
		c.Status = ContractFulfilled
	}
	return amount
}
