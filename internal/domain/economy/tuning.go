package economy

// Tuning centralizes the economic constants that the original deployment had
// scattered across call sites with slightly different values. Overridable
// from a YAML file at startup; zero fields fall back to defaults.
type Tuning struct {
	ContractFeeRate    float64 `yaml:"contract_fee_rate"`
	MinimumContractFee float64 `yaml:"minimum_contract_fee"`

	TavernMealPrice float64 `yaml:"tavern_meal_price"`

	LandTransferFeeRate float64 `yaml:"land_transfer_fee_rate"`

	DefaultTravelMinutes int     `yaml:"default_travel_minutes"`
	WalkMetersPerMinute  float64 `yaml:"walk_meters_per_minute"`

	MealMinutes       int `yaml:"meal_minutes"`
	DeliveryMinutes   int `yaml:"delivery_minutes"`
	ProductionMinutes int `yaml:"production_minutes"`
	PaperworkMinutes  int `yaml:"paperwork_minutes"`

	DefaultRewardPerUnit float64 `yaml:"default_reward_per_unit"`
	PatronageStipend     float64 `yaml:"patronage_stipend"`
	ReputationTickCost   float64 `yaml:"reputation_tick_cost"`
	InfluencePerTick     float64 `yaml:"influence_per_tick"`
	GatheringReward      float64 `yaml:"gathering_reward"`
}

func DefaultTuning() Tuning {
	return Tuning{
		ContractFeeRate:      0.01,
		MinimumContractFee:   5,
		TavernMealPrice:      10,
		LandTransferFeeRate:  0.02,
		DefaultTravelMinutes: 30,
		WalkMetersPerMinute:  84,
		MealMinutes:          60,
		DeliveryMinutes:      15,
		ProductionMinutes:    120,
		PaperworkMinutes:     30,
		DefaultRewardPerUnit: 2,
		PatronageStipend:     25,
		ReputationTickCost:   10,
		InfluencePerTick:     1,
		GatheringReward:      20,
	}
}

// Merge overlays non-zero override fields onto t.
func (t Tuning) Merge(override Tuning) Tuning {
	if override.ContractFeeRate > 0 {
		t.ContractFeeRate = override.ContractFeeRate
	}
	if override.MinimumContractFee > 0 {
		t.MinimumContractFee = override.MinimumContractFee
	}
	if override.TavernMealPrice > 0 {
		t.TavernMealPrice = override.TavernMealPrice
	}
	if override.LandTransferFeeRate > 0 {
		t.LandTransferFeeRate = override.LandTransferFeeRate
	}
	if override.DefaultTravelMinutes > 0 {
		t.DefaultTravelMinutes = override.DefaultTravelMinutes
	}
	if override.WalkMetersPerMinute > 0 {
		t.WalkMetersPerMinute = override.WalkMetersPerMinute
	}
	if override.MealMinutes > 0 {
		t.MealMinutes = override.MealMinutes
	}
	if override.DeliveryMinutes > 0 {
		t.DeliveryMinutes = override.DeliveryMinutes
	}
	if override.ProductionMinutes > 0 {
		t.ProductionMinutes = override.ProductionMinutes
	}
	if override.PaperworkMinutes > 0 {
		t.PaperworkMinutes = override.PaperworkMinutes
	}
	if override.DefaultRewardPerUnit > 0 {
		t.DefaultRewardPerUnit = override.DefaultRewardPerUnit
	}
	if override.PatronageStipend > 0 {
		t.PatronageStipend = override.PatronageStipend
	}
	if override.ReputationTickCost > 0 {
		t.ReputationTickCost = override.ReputationTickCost
	}
	if override.InfluencePerTick > 0 {
		t.InfluencePerTick = override.InfluencePerTick
	}
	if override.GatheringReward > 0 {
		t.GatheringReward = override.GatheringReward
	}
	return t
}

// ContractFee is max(minimum fee, rate × notional value).
func (t Tuning) ContractFee(notional float64) float64 {
	fee := t.ContractFeeRate * notional
	if fee < t.MinimumContractFee {
		fee = t.MinimumContractFee
	}
	return fee
}

// LandTransferFee has no floor; small parcels pay proportionally.
func (t Tuning) LandTransferFee(price float64) float64 {
	return t.LandTransferFeeRate * price
}
