package economy

import "time"

type StratagemType string

const (
	StratagemCollectiveDelivery StratagemType = "collective_delivery"
	StratagemFinancialPatronage StratagemType = "financial_patronage"
	StratagemReputationBoost    StratagemType = "reputation_boost"
	StratagemOrganizeGathering  StratagemType = "organize_gathering"
	StratagemTransferDucats     StratagemType = "transfer_ducats"
)

type StratagemStatus string

const (
	StratagemActive    StratagemStatus = "active"
	StratagemConcluded StratagemStatus = "concluded"
	StratagemExpired   StratagemStatus = "expired"
	StratagemFailed    StratagemStatus = "failed"
)

type Participant struct {
	Username     string  `json:"username"`
	Contributed  float64 `json:"contributed"`
	RewardEarned float64 `json:"reward_earned"`
}

// Delivery records one attributed activity so it is never counted twice.
type Delivery struct {
	ActivityID string    `json:"activity_id"`
	Citizen    string    `json:"citizen"`
	Amount     float64   `json:"amount"`
	Reward     float64   `json:"reward"`
	At         time.Time `json:"at"`
}

type Progress struct {
	CollectedAmount  float64       `json:"collected_amount"`
	MaxAmount        float64       `json:"max_amount"`
	EscrowDucats     float64       `json:"escrow_ducats"`
	RewardPerUnit    float64       `json:"reward_per_unit"`
	TotalRewardsPaid float64       `json:"total_rewards_paid"`
	RefundedDucats   float64       `json:"refunded_ducats,omitempty"`
	Participants     []Participant `json:"participants"`
	Deliveries       []Delivery    `json:"deliveries"`
	Resource         string        `json:"resource,omitempty"`
	TicksPaid        int           `json:"ticks_paid,omitempty"`
}

type Stratagem struct {
	ID             string          `json:"id"`
	Type           StratagemType   `json:"type"`
	ExecutedBy     string          `json:"executed_by"`
	TargetCitizen  string          `json:"target_citizen,omitempty"`
	TargetBuilding string          `json:"target_building,omitempty"`
	Status         StratagemStatus `json:"status"`
	ExpiresAt      time.Time       `json:"expires_at"`
	Progress       Progress        `json:"progress"`
	CreatedAt      time.Time       `json:"created_at"`
	Version        int64           `json:"version"`
}

func (s Stratagem) ExpiredBy(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// RemainingEscrow is what may still be paid out.
func (p Progress) RemainingEscrow() float64 {
	r := p.EscrowDucats - p.TotalRewardsPaid - p.RefundedDucats
	if r < 0 {
		return 0
	}
	return r
}

// RemainingTarget is how much may still be collected.
func (p Progress) RemainingTarget() float64 {
	r := p.MaxAmount - p.CollectedAmount
	if r < 0 {
		return 0
	}
	return r
}

// Attributed reports whether the activity was already counted.
func (p Progress) Attributed(activityID string) bool {
	for _, d := range p.Deliveries {
		if d.ActivityID == activityID {
			return true
		}
	}
	return false
}

// AcceptDelivery attributes a qualifying delivery, clamping the amount to the
// remaining target and to what the remaining escrow can reward. Returns the
// accepted amount and the reward owed; zero/zero when nothing can be accepted.
func (p *Progress) AcceptDelivery(activityID, citizen string, amount float64, at time.Time) (float64, float64) {
	if amount <= 0 || p.Attributed(activityID) {
		return 0, 0
	}
	if remaining := p.RemainingTarget(); amount > remaining {
		amount = remaining
	}
	if p.RewardPerUnit > 0 {
		if affordable := p.RemainingEscrow() / p.RewardPerUnit; amount > affordable {
			amount = affordable
		}
	}
	if amount <= 0 {
		return 0, 0
	}
	reward := amount * p.RewardPerUnit
	if escrow := p.RemainingEscrow(); reward > escrow {
		reward = escrow
	}

	p.CollectedAmount += amount
	p.TotalRewardsPaid += reward
	p.Deliveries = append(p.Deliveries, Delivery{
		ActivityID: activityID,
		Citizen:    citizen,
		Amount:     amount,
		Reward:     reward,
		At:         at,
	})
	p.creditParticipant(citizen, amount, reward)
	return amount, reward
}

// PayStipend draws a flat payment from escrow, clamping to what remains.
func (p *Progress) PayStipend(citizen string, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if escrow := p.RemainingEscrow(); amount > escrow {
		amount = escrow
	}
	if amount <= 0 {
		return 0
	}
	p.TotalRewardsPaid += amount
	p.TicksPaid++
	p.creditParticipant(citizen, 0, amount)
	return amount
}

func (p *Progress) creditParticipant(citizen string, amount, reward float64) {
	for i := range p.Participants {
		if p.Participants[i].Username == citizen {
			p.Participants[i].Contributed += amount
			p.Participants[i].RewardEarned += reward
			return
		}
	}
	p.Participants = append(p.Participants, Participant{
		Username:     citizen,
		Contributed:  amount,
		RewardEarned: reward,
	})
}

// TargetReached reports whether the collection goal is met.
func (p Progress) TargetReached() bool {
	return p.MaxAmount > 0 && p.CollectedAmount >= p.MaxAmount
}

// EscrowExhausted reports whether no further reward can be paid.
func (p Progress) EscrowExhausted() bool {
	return p.RemainingEscrow() <= 0
}
