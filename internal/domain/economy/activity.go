package economy

import "time"

type ActivityType string

const (
	ActivityGotoLocation         ActivityType = "goto_location"
	ActivityEatAtTavern          ActivityType = "eat_at_tavern"
	ActivityDeliverToStorage     ActivityType = "deliver_to_storage"
	ActivityFetchFromStorage     ActivityType = "fetch_from_storage"
	ActivityBuyFromContract      ActivityType = "buy_from_contract"
	ActivityProduction           ActivityType = "production"
	ActivityManagePublicSell     ActivityType = "manage_public_sell"
	ActivityFinalizeLandPurchase ActivityType = "finalize_land_purchase"
	ActivitySendDucats           ActivityType = "send_ducats"
)

type ActivityStatus string

const (
	ActivityCreated    ActivityStatus = "created"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityCompleted  ActivityStatus = "completed"
	ActivityFailed     ActivityStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s ActivityStatus) Terminal() bool {
	return s == ActivityCompleted || s == ActivityFailed
}

// CanTransition enforces created → in_progress → {completed|failed}; no
// backward transitions. created → failed is allowed for administrative
// cancellation and broken chains.
func (s ActivityStatus) CanTransition(to ActivityStatus) bool {
	switch s {
	case ActivityCreated:
		return to == ActivityInProgress || to == ActivityFailed
	case ActivityInProgress:
		return to == ActivityCompleted || to == ActivityFailed
	default:
		return false
	}
}

type Activity struct {
	ID           string          `json:"id"`
	Type         ActivityType    `json:"type"`
	Citizen      string          `json:"citizen"`
	FromBuilding string          `json:"from_building,omitempty"`
	ToBuilding   string          `json:"to_building,omitempty"`
	Payload      ActivityPayload `json:"payload"`
	Status       ActivityStatus  `json:"status"`
	Reason       string          `json:"reason,omitempty"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	ChainID      string          `json:"chain_id"`
	ChainIndex   int             `json:"chain_index"`
}

// Due reports whether the activity should be dispatched at now.
func (a Activity) Due(now time.Time) bool {
	return a.Status == ActivityCreated && !now.Before(a.EndDate)
}

// ActivityPayload is a sum keyed by the activity type; exactly one
// branch is set for a well-formed activity.
type ActivityPayload struct {
	Travel       *TravelPayload       `json:"travel,omitempty"`
	Meal         *MealPayload         `json:"meal,omitempty"`
	Delivery     *DeliveryPayload     `json:"delivery,omitempty"`
	Fetch        *FetchPayload        `json:"fetch,omitempty"`
	Purchase     *PurchasePayload     `json:"purchase,omitempty"`
	Production   *ProductionPayload   `json:"production,omitempty"`
	SellListing  *SellListingPayload  `json:"sell_listing,omitempty"`
	LandPurchase *LandPurchasePayload `json:"land_purchase,omitempty"`
	DucatGift    *DucatGiftPayload    `json:"ducat_gift,omitempty"`
}

type TravelPayload struct {
	Destination     string   `json:"destination"`
	DestinationPos  Position `json:"destination_pos"`
	DurationMinutes int      `json:"duration_minutes"`
	DefaultedRoute  bool     `json:"defaulted_route,omitempty"`
}

type MealPayload struct {
	Tavern string  `json:"tavern"`
	Price  float64 `json:"price"`
}

type DeliveryPayload struct {
	Resource string  `json:"resource"`
	Amount   float64 `json:"amount"`
	Storage  string  `json:"storage"`
}

type FetchPayload struct {
	Resource string  `json:"resource"`
	Amount   float64 `json:"amount"`
	Storage  string  `json:"storage"`
}

type PurchasePayload struct {
	ContractID string  `json:"contract_id"`
	Amount     float64 `json:"amount"`
}

type ProductionPayload struct {
	Building string             `json:"building"`
	Inputs   map[string]float64 `json:"inputs"`
	Outputs  map[string]float64 `json:"outputs"`
}

type SellListingPayload struct {
	Resource     string  `json:"resource"`
	PricePerUnit float64 `json:"price_per_unit"`
	TargetAmount float64 `json:"target_amount"`
	Shop         string  `json:"shop"`
	DurationH    int     `json:"duration_hours"`
}

type LandPurchasePayload struct {
	ListingContract string  `json:"listing_contract"`
	LandID          string  `json:"land_id"`
	Price           float64 `json:"price"`
}

type DucatGiftPayload struct {
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
}
