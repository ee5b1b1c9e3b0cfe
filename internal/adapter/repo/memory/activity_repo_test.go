package memory

import (
	"context"
	"testing"
	"time"

	"rialto/internal/domain/economy"
)

func TestListDue_OrderedByEndDateThenID(t *testing.T) {
	store := NewStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seed := func(id string, status economy.ActivityStatus, end time.Time) {
		store.SeedActivity(economy.Activity{ID: id, Type: economy.ActivityProduction, Status: status, EndDate: end})
	}
	seed("b", economy.ActivityCreated, now.Add(-time.Minute))
	seed("a", economy.ActivityCreated, now.Add(-time.Minute))
	seed("c", economy.ActivityCreated, now.Add(-time.Hour))
	seed("later", economy.ActivityCreated, now.Add(time.Minute))
	seed("done", economy.ActivityCompleted, now.Add(-time.Hour))

	due, err := NewActivityRepo(store).ListDue(context.Background(), now)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	got := make([]string, 0, len(due))
	for _, a := range due {
		got = append(got, a.ID)
	}
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("due set: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got=%v want=%v", got, want)
		}
	}
}

func TestListCompletedSince_WindowIsHalfOpen(t *testing.T) {
	store := NewStore()
	since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	until := since.Add(time.Hour)
	seed := func(id string, end time.Time) {
		store.SeedActivity(economy.Activity{
			ID: id, Type: economy.ActivityDeliverToStorage,
			Status: economy.ActivityCompleted, EndDate: end,
		})
	}
	seed("at-since", since)
	seed("inside", since.Add(30*time.Minute))
	seed("at-until", until)
	seed("after", until.Add(time.Minute))
	store.SeedActivity(economy.Activity{
		ID: "failed", Type: economy.ActivityDeliverToStorage,
		Status: economy.ActivityFailed, EndDate: since.Add(30 * time.Minute),
	})

	got, err := NewActivityRepo(store).ListCompletedSince(context.Background(), economy.ActivityDeliverToStorage, since, until)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// (since, until]: the lower bound is exclusive so an activity ending
	// exactly at a stratagem's creation never counts toward it.
	if len(got) != 2 || got[0].ID != "inside" || got[1].ID != "at-until" {
		ids := make([]string, 0, len(got))
		for _, a := range got {
			ids = append(ids, a.ID)
		}
		t.Fatalf("window: %v", ids)
	}
}
