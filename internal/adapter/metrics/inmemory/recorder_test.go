package inmemory

import (
	"testing"

	"rialto/internal/domain/economy"
)

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordActivity(economy.ActivityEatAtTavern, economy.ActivityCompleted)
	r.RecordActivity(economy.ActivityEatAtTavern, economy.ActivityCompleted)
	r.RecordActivity(economy.ActivityDeliverToStorage, economy.ActivityFailed)
	r.RecordActivity(economy.ActivityGotoLocation, economy.ActivityInProgress)
	r.RecordStratagemFinished(economy.StratagemConcluded)
	r.RecordContractsExpired(3)
	r.RecordContractsExpired(0)
	r.RecordStacksSwept(2)

	snap := r.Snapshot()
	if snap.ActivityTotal != 3 {
		t.Fatalf("activity total: got=%d want=3", snap.ActivityTotal)
	}
	if snap.ActivityCompleted != 2 || snap.ActivityFailed != 1 {
		t.Fatalf("completed/failed: got=%d/%d want=2/1", snap.ActivityCompleted, snap.ActivityFailed)
	}
	if got := snap.ByActivityType["eat_at_tavern"]; got != 2 {
		t.Fatalf("by type eat_at_tavern: got=%d want=2", got)
	}
	if got := snap.StratagemFinished["concluded"]; got != 1 {
		t.Fatalf("stratagem finished: got=%d want=1", got)
	}
	if snap.ContractsExpired != 3 || snap.StacksSwept != 2 {
		t.Fatalf("expired/swept: got=%d/%d want=3/2", snap.ContractsExpired, snap.StacksSwept)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	r.RecordActivity(economy.ActivityProduction, economy.ActivityCompleted)

	snap := r.Snapshot()
	snap.ByActivityType["production"] = 99

	if got := r.Snapshot().ByActivityType["production"]; got != 1 {
		t.Fatalf("snapshot mutation leaked into recorder: got=%d want=1", got)
	}
}
