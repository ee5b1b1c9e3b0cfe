package activity

import "rialto/internal/domain/economy"

type CreateRequest struct {
	Citizen string               `json:"citizen"`
	Type    economy.ActivityType `json:"type"`
	Params  Params               `json:"params"`
}

// Params carries the union of per-type intent parameters; each creator
// validates the fields it needs.
type Params struct {
	Destination     string             `json:"destination,omitempty"`
	Tavern          string             `json:"tavern,omitempty"`
	Storage         string             `json:"storage,omitempty"`
	Resource        string             `json:"resource,omitempty"`
	Amount          float64            `json:"amount,omitempty"`
	ContractID      string             `json:"contract_id,omitempty"`
	Building        string             `json:"building,omitempty"`
	Inputs          map[string]float64 `json:"inputs,omitempty"`
	Outputs         map[string]float64 `json:"outputs,omitempty"`
	PricePerUnit    float64            `json:"price_per_unit,omitempty"`
	TargetAmount    float64            `json:"target_amount,omitempty"`
	DurationHours   int                `json:"duration_hours,omitempty"`
	ListingContract string             `json:"listing_contract,omitempty"`
	Recipient       string             `json:"recipient,omitempty"`
	Note            string             `json:"note,omitempty"`
}

type CreateResponse struct {
	Activities []economy.Activity `json:"activities"`
}
