package model

import "time"

type Citizen struct {
	Username    string `gorm:"primaryKey"`
	SocialClass string
	Ducats      float64
	Influence   float64
	Lat         float64
	Lng         float64
	InBuilding  string
	AteAt       *time.Time
	Active      bool
	Version     int64
	UpdatedAt   time.Time
}

func (Citizen) TableName() string { return "citizens" }

type Building struct {
	ID    string `gorm:"primaryKey"`
	Kind  string
	Owner string
	RunBy string
	Lat   float64
	Lng   float64
}

func (Building) TableName() string { return "buildings" }

type ResourceStack struct {
	ID        string `gorm:"primaryKey"`
	Type      string `gorm:"index:idx_resource_holder"`
	Quantity  float64
	Owner     string
	AssetID   string `gorm:"index:idx_resource_holder"`
	AssetKind string `gorm:"index:idx_resource_holder"`
	DecayAt   *time.Time
}

func (ResourceStack) TableName() string { return "resource_stacks" }

type Activity struct {
	ID           string `gorm:"primaryKey"`
	Type         string `gorm:"index"`
	Citizen      string `gorm:"index"`
	FromBuilding string
	ToBuilding   string
	Payload      []byte `gorm:"type:jsonb"`
	Status       string `gorm:"index"`
	Reason       string
	StartDate    time.Time
	EndDate      time.Time `gorm:"index"`
	ChainID      string    `gorm:"index"`
	ChainIndex   int
}

func (Activity) TableName() string { return "activities" }

type Contract struct {
	ID              string `gorm:"primaryKey"`
	Type            string `gorm:"index"`
	Buyer           string
	Seller          string
	Asset           string
	PricePerUnit    float64
	TargetAmount    float64
	FulfilledAmount float64
	Status          string `gorm:"index"`
	ExecutedAt      string
	Reference       string `gorm:"index"`
	EndAt           *time.Time
	CreatedAt       time.Time
}

func (Contract) TableName() string { return "contracts" }

type Stratagem struct {
	ID             string `gorm:"primaryKey"`
	Type           string `gorm:"index"`
	ExecutedBy     string
	TargetCitizen  string
	TargetBuilding string
	Status         string `gorm:"index"`
	ExpiresAt      time.Time
	Progress       []byte `gorm:"type:jsonb"`
	CreatedAt      time.Time
	Version        int64
}

func (Stratagem) TableName() string { return "stratagems" }

type Transaction struct {
	ID          string `gorm:"primaryKey"`
	Kind        string
	FromAccount string `gorm:"index"`
	ToAccount   string `gorm:"index"`
	Resource    string
	Amount      float64
	Reference   string
	At          time.Time
}

func (Transaction) TableName() string { return "transactions" }

type Notification struct {
	ID      string `gorm:"primaryKey"`
	Citizen string `gorm:"index"`
	Kind    string
	Body    string
	At      time.Time
}

func (Notification) TableName() string { return "notifications" }
