package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rialto/internal/adapter/metrics/inmemory"
	"rialto/internal/adapter/repo/memory"
	"rialto/internal/app/activity"
	"rialto/internal/app/contract"
	"rialto/internal/app/ledger"
	"rialto/internal/app/stratagem"
	"rialto/internal/domain/economy"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newLoop(store *memory.Store, recorder *inmemory.Recorder) Loop {
	led := ledger.Service{
		Citizens:     memory.NewCitizenRepo(store),
		Resources:    memory.NewResourceRepo(store),
		Transactions: memory.NewTransactionRepo(store),
		Now:          fixedNow,
	}
	market := contract.Service{
		Contracts: memory.NewContractRepo(store),
		Buildings: memory.NewBuildingRepo(store),
		Ledger:    led,
		Tuning:    economy.DefaultTuning(),
		Now:       fixedNow,
	}
	loop := Loop{
		Activities: activity.ProcessUseCase{
			TxManager:     memory.NewTxManager(store),
			Citizens:      memory.NewCitizenRepo(store),
			Buildings:     memory.NewBuildingRepo(store),
			Resources:     memory.NewResourceRepo(store),
			Contracts:     memory.NewContractRepo(store),
			Activities:    memory.NewActivityRepo(store),
			Notifications: memory.NewNotificationRepo(store),
			Ledger:        led,
			Market:        market,
			Tuning:        economy.DefaultTuning(),
			Now:           fixedNow,
		},
		Stratagems: stratagem.ProcessUseCase{
			TxManager:     memory.NewTxManager(store),
			Citizens:      memory.NewCitizenRepo(store),
			Activities:    memory.NewActivityRepo(store),
			Stratagems:    memory.NewStratagemRepo(store),
			Notifications: memory.NewNotificationRepo(store),
			Ledger:        led,
			Tuning:        economy.DefaultTuning(),
			Now:           fixedNow,
		},
		Market:        market,
		Ledger:        led,
		ActivityRepo:  memory.NewActivityRepo(store),
		StratagemRepo: memory.NewStratagemRepo(store),
		TxManager:     memory.NewTxManager(store),
		Workers:       2,
		Now:           fixedNow,
	}
	// Assign only when non-nil so a nil *Recorder does not become a non-nil
	// interface value that defeats the loop's Metrics guard.
	if recorder != nil {
		loop.Metrics = recorder
	}
	return loop
}

func seedDueGift(store *memory.Store, id, citizen string, chainID string, index int, endedAgo time.Duration) {
	store.SeedActivity(economy.Activity{
		ID:      id,
		Type:    economy.ActivitySendDucats,
		Citizen: citizen,
		Status:  economy.ActivityCreated,
		Payload: economy.ActivityPayload{DucatGift: &economy.DucatGiftPayload{
			Recipient: "giulia",
			Amount:    10,
		}},
		ChainID:    chainID,
		ChainIndex: index,
		EndDate:    fixedNow().Add(-endedAgo),
	})
}

func TestTickOnce_ProcessesCitizenChainInOrder(t *testing.T) {
	store := memory.NewStore()
	store.SeedCitizen(economy.Citizen{Username: "marco", Ducats: 50, Active: true})
	store.SeedCitizen(economy.Citizen{Username: "giulia", Ducats: 0, Active: true})
	// Both links of the chain are overdue. Only in-order processing lets the
	// second link through its predecessor gate within a single tick.
	seedDueGift(store, "act-1", "marco", "c-1", 0, 20*time.Minute)
	seedDueGift(store, "act-2", "marco", "c-1", 1, 10*time.Minute)
	recorder := inmemory.NewRecorder()
	loop := newLoop(store, recorder)

	loop.TickOnce(context.Background())

	repo := memory.NewActivityRepo(store)
	for _, id := range []string{"act-1", "act-2"} {
		a, _ := repo.GetByID(context.Background(), id)
		if a.Status != economy.ActivityCompleted {
			t.Fatalf("%s status: %s (%s)", id, a.Status, a.Reason)
		}
	}
	giulia, _ := memory.NewCitizenRepo(store).GetByUsername(context.Background(), "giulia")
	if giulia.Ducats != 20 {
		t.Fatalf("both gifts must land: %.2f", giulia.Ducats)
	}

	snap := recorder.Snapshot()
	if snap.ActivityCompleted != 2 || snap.ActivityTotal != 2 {
		t.Fatalf("metrics: %+v", snap)
	}
	if snap.ByActivityType["send_ducats"] != 2 {
		t.Fatalf("per-type metrics: %+v", snap.ByActivityType)
	}
}

func TestTickOnce_DisjointCitizensBothProcessed(t *testing.T) {
	store := memory.NewStore()
	store.SeedCitizen(economy.Citizen{Username: "marco", Ducats: 50, Active: true})
	store.SeedCitizen(economy.Citizen{Username: "paolo", Ducats: 50, Active: true})
	store.SeedCitizen(economy.Citizen{Username: "giulia", Ducats: 0, Active: true})
	seedDueGift(store, "act-1", "marco", "c-1", 0, 10*time.Minute)
	seedDueGift(store, "act-2", "paolo", "c-2", 0, 10*time.Minute)
	loop := newLoop(store, nil)

	loop.TickOnce(context.Background())

	giulia, _ := memory.NewCitizenRepo(store).GetByUsername(context.Background(), "giulia")
	if giulia.Ducats != 20 {
		t.Fatalf("parallel groups: %.2f", giulia.Ducats)
	}
}

func TestTickOnce_ManyCitizensAcrossWorkers(t *testing.T) {
	store := memory.NewStore()
	dest := economy.Position{Lat: 45.44, Lng: 12.34}
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("citizen-%02d", i)
		store.SeedCitizen(economy.Citizen{Username: name, Active: true})
		store.SeedActivity(economy.Activity{
			ID:      fmt.Sprintf("act-%02d", i),
			Type:    economy.ActivityGotoLocation,
			Citizen: name,
			Status:  economy.ActivityCreated,
			Payload: economy.ActivityPayload{Travel: &economy.TravelPayload{
				Destination:    "piazza-1",
				DestinationPos: dest,
			}},
			EndDate: fixedNow().Add(-time.Minute),
		})
	}
	loop := newLoop(store, nil)
	loop.Workers = 8

	loop.TickOnce(context.Background())

	repo := memory.NewActivityRepo(store)
	for i := 0; i < 50; i++ {
		a, err := repo.GetByID(context.Background(), fmt.Sprintf("act-%02d", i))
		if err != nil {
			t.Fatalf("load act-%02d: %v", i, err)
		}
		if a.Status != economy.ActivityCompleted {
			t.Fatalf("act-%02d status: %s (%s)", i, a.Status, a.Reason)
		}
	}
	citizens := memory.NewCitizenRepo(store)
	for i := 0; i < 50; i++ {
		c, _ := citizens.GetByUsername(context.Background(), fmt.Sprintf("citizen-%02d", i))
		if c.InBuilding != "piazza-1" {
			t.Fatalf("citizen-%02d not moved: %+v", i, c)
		}
	}
}

func TestTickOnce_AdvancesStratagems(t *testing.T) {
	store := memory.NewStore()
	store.SeedCitizen(economy.Citizen{Username: "doge", Ducats: 0, Active: true})
	store.SeedCitizen(economy.Citizen{Username: "giulia", Ducats: 0, Active: true})
	store.SeedStratagem(economy.Stratagem{
		ID:            "st-1",
		Type:          economy.StratagemTransferDucats,
		ExecutedBy:    "doge",
		TargetCitizen: "giulia",
		Status:        economy.StratagemActive,
		ExpiresAt:     fixedNow().Add(24 * time.Hour),
		CreatedAt:     fixedNow().Add(-time.Minute),
		Version:       1,
		Progress:      economy.Progress{EscrowDucats: 30},
	})
	recorder := inmemory.NewRecorder()
	loop := newLoop(store, recorder)

	loop.TickOnce(context.Background())

	s, _ := memory.NewStratagemRepo(store).GetByID(context.Background(), "st-1")
	if s.Status != economy.StratagemConcluded {
		t.Fatalf("stratagem status: %s", s.Status)
	}
	if recorder.Snapshot().StratagemFinished["concluded"] != 1 {
		t.Fatalf("metrics: %+v", recorder.Snapshot().StratagemFinished)
	}
}

func TestTickOnce_ExpiresContractsAndSweepsDecay(t *testing.T) {
	store := memory.NewStore()
	past := fixedNow().Add(-time.Hour)
	store.SeedContract(economy.Contract{
		ID:           "ct-1",
		Type:         economy.ContractPublicSell,
		Seller:       "marco",
		Asset:        "fish",
		PricePerUnit: 1,
		TargetAmount: 10,
		Status:       economy.ContractActive,
		EndAt:        &past,
	})
	store.SeedResource(economy.ResourceStack{
		ID: "st-rot", Type: "fish", Quantity: 5,
		AssetID: "marco", AssetKind: economy.AssetCitizen, Owner: "marco",
		DecayAt: &past,
	})
	recorder := inmemory.NewRecorder()
	loop := newLoop(store, recorder)

	loop.TickOnce(context.Background())

	ct, _ := memory.NewContractRepo(store).GetByID(context.Background(), "ct-1")
	if ct.Status != economy.ContractExpired {
		t.Fatalf("contract status: %s", ct.Status)
	}
	stacks, _ := memory.NewResourceRepo(store).ListByHolder(context.Background(), "marco", economy.AssetCitizen, "fish")
	if len(stacks) != 0 {
		t.Fatalf("decayed stack survived: %+v", stacks)
	}
	snap := recorder.Snapshot()
	if snap.ContractsExpired != 1 || snap.StacksSwept != 1 {
		t.Fatalf("metrics: %+v", snap)
	}
}

func TestTickOnce_ReconcilesStuckActivities(t *testing.T) {
	store := memory.NewStore()
	store.SeedActivity(economy.Activity{
		ID:      "act-stuck",
		Type:    economy.ActivityProduction,
		Citizen: "marco",
		Status:  economy.ActivityInProgress,
		EndDate: fixedNow().Add(-3 * time.Hour),
	})
	// Recently dispatched work stays untouched.
	store.SeedActivity(economy.Activity{
		ID:      "act-busy",
		Type:    economy.ActivityProduction,
		Citizen: "marco",
		Status:  economy.ActivityInProgress,
		EndDate: fixedNow().Add(-time.Hour),
	})
	loop := newLoop(store, nil)

	loop.TickOnce(context.Background())

	repo := memory.NewActivityRepo(store)
	stuck, _ := repo.GetByID(context.Background(), "act-stuck")
	if stuck.Status != economy.ActivityFailed || stuck.Reason != "stuck in_progress reconciled" {
		t.Fatalf("stuck activity: %+v", stuck)
	}
	busy, _ := repo.GetByID(context.Background(), "act-busy")
	if busy.Status != economy.ActivityInProgress {
		t.Fatalf("in-grace activity reconciled early: %+v", busy)
	}
}
