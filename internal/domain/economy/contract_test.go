package economy

import (
	"testing"
	"time"
)

func TestRecordFulfillment_ClampsAndCompletes(t *testing.T) {
	c := Contract{Type: ContractPublicSell, TargetAmount: 50, Status: ContractActive}

	if got := c.RecordFulfillment(30); got != 30 {
		t.Fatalf("first fulfillment: got=%.2f want=30", got)
	}
	if c.Status != ContractActive {
		t.Fatalf("contract closed early: %s", c.Status)
	}
	// 40 against 20 remaining: partial fill of the remainder.
	if got := c.RecordFulfillment(40); got != 20 {
		t.Fatalf("clamped fulfillment: got=%.2f want=20", got)
	}
	if c.Status != ContractFulfilled {
		t.Fatalf("expected fulfilled, got %s", c.Status)
	}
	if got := c.RecordFulfillment(5); got != 0 {
		t.Fatalf("fulfilled contract accepted more: %.2f", got)
	}
}

func TestRecordFulfillment_RejectsNonPositive(t *testing.T) {
	c := Contract{TargetAmount: 10, Status: ContractActive}
	if got := c.RecordFulfillment(0); got != 0 {
		t.Fatalf("zero amount accepted: %.2f", got)
	}
	if got := c.RecordFulfillment(-3); got != 0 {
		t.Fatalf("negative amount accepted: %.2f", got)
	}
}

func TestFulfillable(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		c    Contract
		want bool
	}{
		{"active open", Contract{Status: ContractActive, TargetAmount: 10}, true},
		{"expired", Contract{Status: ContractActive, TargetAmount: 10, EndAt: &past}, false},
		{"not yet expired", Contract{Status: ContractActive, TargetAmount: 10, EndAt: &future}, true},
		{"cancelled", Contract{Status: ContractCancelled, TargetAmount: 10}, false},
		{"target met", Contract{Status: ContractActive, TargetAmount: 10, FulfilledAmount: 10}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Fulfillable(now); got != tc.want {
				t.Fatalf("got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestNotionalValue(t *testing.T) {
	c := Contract{PricePerUnit: 2.5, TargetAmount: 40}
	if got := c.NotionalValue(); got != 100 {
		t.Fatalf("notional: got=%.2f want=100", got)
	}
}
