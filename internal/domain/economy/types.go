package economy

import "time"

// TreasuryAccount absorbs fees with no other recipient and funds subsidies.
const TreasuryAccount = "ConsiglioDeiDieci"

type SocialClass string

const (
	ClassNobili     SocialClass = "Nobili"
	ClassCittadini  SocialClass = "Cittadini"
	ClassPopolani   SocialClass = "Popolani"
	ClassFacchini   SocialClass = "Facchini"
	ClassForestieri SocialClass = "Forestieri"
	ClassArtigiani  SocialClass = "Artigiani"
	ClassClero      SocialClass = "Clero"
	ClassUnclassed  SocialClass = ""
)

type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Citizen struct {
	Username    string      `json:"username"`
	SocialClass SocialClass `json:"social_class"`
	Ducats      float64     `json:"ducats"`
	Influence   float64     `json:"influence"`
	Position    Position    `json:"position"`
	InBuilding  string      `json:"in_building,omitempty"`
	AteAt       *time.Time  `json:"ate_at,omitempty"`
	Active      bool        `json:"active"`
	Version     int64       `json:"version"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type AssetKind string

const (
	AssetCitizen  AssetKind = "citizen"
	AssetBuilding AssetKind = "building"
)

type ResourceStack struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Quantity  float64    `json:"quantity"`
	Owner     string     `json:"owner"`
	AssetID   string     `json:"asset_id"`
	AssetKind AssetKind  `json:"asset_kind"`
	DecayAt   *time.Time `json:"decay_at,omitempty"`
}

// Decayed reports whether the stack's lifetime has elapsed.
func (s ResourceStack) Decayed(now time.Time) bool {
	return s.DecayAt != nil && now.After(*s.DecayAt)
}

type Building struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Owner    string   `json:"owner"`
	RunBy    string   `json:"run_by,omitempty"`
	Position Position `json:"position"`
}

// FeeRecipient is the operator of record, falling back to the treasury.
func (b Building) FeeRecipient() string {
	if b.RunBy != "" {
		return b.RunBy
	}
	return TreasuryAccount
}

type TransactionKind string

const (
	TxDucatTransfer    TransactionKind = "ducat_transfer"
	TxDucatInjection   TransactionKind = "ducat_injection"
	TxDucatSink        TransactionKind = "ducat_sink"
	TxResourceAdd      TransactionKind = "resource_add"
	TxResourceConsume  TransactionKind = "resource_consume"
	TxResourceTransfer TransactionKind = "resource_transfer"
	TxResourceDecay    TransactionKind = "resource_decay"
	TxEscrowFund       TransactionKind = "escrow_fund"
	TxEscrowPayout     TransactionKind = "escrow_payout"
	TxEscrowRefund     TransactionKind = "escrow_refund"
	TxContractFee      TransactionKind = "contract_fee"
)

type Transaction struct {
	ID          string          `json:"id"`
	Kind        TransactionKind `json:"kind"`
	FromAccount string          `json:"from_account,omitempty"`
	ToAccount   string          `json:"to_account,omitempty"`
	Resource    string          `json:"resource,omitempty"`
	Amount      float64         `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
	At          time.Time       `json:"at"`
}

type Notification struct {
	ID      string    `json:"id"`
	Citizen string    `json:"citizen"`
	Kind    string    `json:"kind"`
	Body    string    `json:"body"`
	At      time.Time `json:"at"`
}
