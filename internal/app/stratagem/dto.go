package stratagem

import "rialto/internal/domain/economy"

type CreateRequest struct {
	Executor string                `json:"executor"`
	Type     economy.StratagemType `json:"type"`
	Params   Params                `json:"params"`
}

type Params struct {
	TargetCitizen  string  `json:"target_citizen,omitempty"`
	TargetBuilding string  `json:"target_building,omitempty"`
	Resource       string  `json:"resource,omitempty"`
	MaxAmount      float64 `json:"max_amount,omitempty"`
	RewardPerUnit  float64 `json:"reward_per_unit,omitempty"`
	EscrowDucats   float64 `json:"escrow_ducats,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	DurationHours  int     `json:"duration_hours,omitempty"`
}

type CreateResponse struct {
	Stratagem economy.Stratagem `json:"stratagem"`
}
