package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"rialto/internal/adapter/repo/memory"
	"rialto/internal/app/ledger"
	"rialto/internal/domain/economy"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newService(store *memory.Store) Service {
	ledgerSvc := ledger.Service{
		Citizens:     memory.NewCitizenRepo(store),
		Resources:    memory.NewResourceRepo(store),
		Transactions: memory.NewTransactionRepo(store),
		Now:          fixedNow,
	}
	return Service{
		Contracts: memory.NewContractRepo(store),
		Buildings: memory.NewBuildingRepo(store),
		Ledger:    ledgerSvc,
		Tuning:    economy.DefaultTuning(),
		Now:       fixedNow,
	}
}

func seedCitizen(store *memory.Store, name string, ducats float64) {
	store.SeedCitizen(economy.Citizen{Username: name, Ducats: ducats, Active: true, Version: 1})
}

func ducats(t *testing.T, store *memory.Store, name string) float64 {
	t.Helper()
	c, err := memory.NewCitizenRepo(store).GetByUsername(context.Background(), name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return c.Ducats
}

func TestCreate_ChargesFeeToOperator(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "seller", 100)
	seedCitizen(store, "oste", 0)
	store.SeedBuilding(economy.Building{ID: "shop-1", Kind: "shop", RunBy: "oste"})
	s := newService(store)

	c, err := s.Create(context.Background(), CreateParams{
		Type:         economy.ContractPublicSell,
		Seller:       "seller",
		Asset:        "grain",
		PricePerUnit: 2,
		TargetAmount: 100, // notional 200, 1% below the 5 floor
		ExecutedAt:   "shop-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != economy.ContractActive {
		t.Fatalf("status: got=%s", c.Status)
	}
	if got := ducats(t, store, "seller"); got != 95 {
		t.Fatalf("seller after fee: got=%.2f want=95", got)
	}
	if got := ducats(t, store, "oste"); got != 5 {
		t.Fatalf("operator fee: got=%.2f want=5", got)
	}
}

func TestCreate_OperatorAtOwnShopPaysTreasury(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "oste", 100)
	store.SeedBuilding(economy.Building{ID: "shop-1", Kind: "shop", RunBy: "oste"})
	s := newService(store)

	_, err := s.Create(context.Background(), CreateParams{
		Type:         economy.ContractPublicSell,
		Seller:       "oste",
		Asset:        "wine",
		PricePerUnit: 1,
		TargetAmount: 10,
		ExecutedAt:   "shop-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Fee leaves the operator and lands nowhere backed: the treasury absorbed it.
	if got := ducats(t, store, "oste"); got != 95 {
		t.Fatalf("operator balance: got=%.2f want=95", got)
	}
	txs := store.Transactions()
	if len(txs) != 1 || txs[0].ToAccount != economy.TreasuryAccount {
		t.Fatalf("fee must be audited to treasury: %+v", txs)
	}
}

func TestCreate_InvalidParams(t *testing.T) {
	s := newService(memory.NewStore())
	cases := map[string]CreateParams{
		"no asset":         {Type: economy.ContractPublicSell, Seller: "a", PricePerUnit: 1, TargetAmount: 1},
		"no price":         {Type: economy.ContractPublicSell, Seller: "a", Asset: "x", TargetAmount: 1},
		"no target":        {Type: economy.ContractPublicSell, Seller: "a", Asset: "x", PricePerUnit: 1},
		"no party":         {Type: economy.ContractPublicSell, Asset: "x", PricePerUnit: 1, TargetAmount: 1},
		"public initiator": {Type: economy.ContractPublicSell, Seller: "public", Asset: "x", PricePerUnit: 1, TargetAmount: 1},
	}
	for name, p := range cases {
		if _, err := s.Create(context.Background(), p); !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("%s: expected ErrInvalidParams, got %v", name, err)
		}
	}
}

func TestFulfillPublicSell_MovesDucatsAndGoods(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "buyer", 100)
	seedCitizen(store, "seller", 0)
	store.SeedResource(economy.ResourceStack{ID: "st-1", Type: "grain", Quantity: 50, Owner: "seller", AssetID: "shop-1", AssetKind: economy.AssetBuilding})
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractPublicSell, Seller: "seller", Asset: "grain",
		PricePerUnit: 2, TargetAmount: 50, Status: economy.ContractActive, ExecutedAt: "shop-1",
	})
	s := newService(store)

	accepted, err := s.FulfillPublicSell(context.Background(), "c-1", "buyer", 10)
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if accepted != 10 {
		t.Fatalf("accepted: got=%.2f want=10", accepted)
	}
	if got := ducats(t, store, "buyer"); got != 80 {
		t.Fatalf("buyer balance: got=%.2f want=80", got)
	}
	if got := ducats(t, store, "seller"); got != 20 {
		t.Fatalf("seller balance: got=%.2f want=20", got)
	}
	stacks, _ := memory.NewResourceRepo(store).ListByHolder(context.Background(), "buyer", economy.AssetCitizen, "grain")
	if len(stacks) != 1 || stacks[0].Quantity != 10 {
		t.Fatalf("goods not delivered: %+v", stacks)
	}
}

func TestFulfillPublicSell_ClampsToRemaining(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "buyer", 1000)
	seedCitizen(store, "seller", 0)
	store.SeedResource(economy.ResourceStack{ID: "st-1", Type: "grain", Quantity: 100, Owner: "seller", AssetID: "shop-1", AssetKind: economy.AssetBuilding})
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractPublicSell, Seller: "seller", Asset: "grain",
		PricePerUnit: 1, TargetAmount: 50, FulfilledAmount: 45, Status: economy.ContractActive, ExecutedAt: "shop-1",
	})
	s := newService(store)

	accepted, err := s.FulfillPublicSell(context.Background(), "c-1", "buyer", 20)
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if accepted != 5 {
		t.Fatalf("accepted: got=%.2f want=5", accepted)
	}
	if got := ducats(t, store, "buyer"); got != 995 {
		t.Fatalf("buyer pays for accepted only: got=%.2f want=995", got)
	}
	c, _ := memory.NewContractRepo(store).GetByID(context.Background(), "c-1")
	if c.Status != economy.ContractFulfilled {
		t.Fatalf("expected fulfilled, got %s", c.Status)
	}
}

func TestFulfillPublicSell_EmptyShopMovesNothing(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "buyer", 50)
	seedCitizen(store, "seller", 50)
	// Active contract, but the shop never received the goods.
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractPublicSell, Seller: "seller", Asset: "grain",
		PricePerUnit: 2, TargetAmount: 50, Status: economy.ContractActive, ExecutedAt: "shop-1",
	})
	s := newService(store)

	_, err := s.FulfillPublicSell(context.Background(), "c-1", "buyer", 10)
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	// Neither leg ran: the buyer keeps the ducats and nothing was audited.
	if got := ducats(t, store, "buyer"); got != 50 {
		t.Fatalf("buyer balance: got=%.2f want=50", got)
	}
	if got := ducats(t, store, "seller"); got != 50 {
		t.Fatalf("seller balance: got=%.2f want=50", got)
	}
	c, _ := memory.NewContractRepo(store).GetByID(context.Background(), "c-1")
	if c.FulfilledAmount != 0 {
		t.Fatalf("fulfilled amount: got=%.2f want=0", c.FulfilledAmount)
	}
	if txs := store.Transactions(); len(txs) != 0 {
		t.Fatalf("no transaction should be audited: %+v", txs)
	}
}

func TestFulfillMarkupBuy_BrokeBuyerMovesNothing(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "buyer", 5)
	seedCitizen(store, "seller", 0)
	store.SeedResource(economy.ResourceStack{ID: "st-1", Type: "timber", Quantity: 30, Owner: "seller", AssetID: "seller", AssetKind: economy.AssetCitizen})
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractMarkupBuy, Buyer: "buyer", Asset: "timber",
		PricePerUnit: 3, TargetAmount: 20, Status: economy.ContractActive, ExecutedAt: "warehouse-1",
	})
	s := newService(store)

	_, err := s.FulfillMarkupBuy(context.Background(), "c-1", "seller", 10)
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	// The goods stay with the seller when the buyer cannot pay.
	stacks, _ := memory.NewResourceRepo(store).ListByHolder(context.Background(), "seller", economy.AssetCitizen, "timber")
	if len(stacks) != 1 || stacks[0].Quantity != 30 {
		t.Fatalf("seller stock touched: %+v", stacks)
	}
	if got := ducats(t, store, "seller"); got != 0 {
		t.Fatalf("seller balance: got=%.2f want=0", got)
	}
}

func TestSettleLandPurchase_BrokeBuyerKeepsParcelWithSeller(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "buyer", 505) // price covered, fee not
	seedCitizen(store, "seller", 0)
	store.SeedBuilding(economy.Building{ID: "parcel-1", Kind: "land", Owner: "seller"})
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractLandListing, Seller: "seller", Asset: "parcel-1",
		PricePerUnit: 500, TargetAmount: 1, Status: economy.ContractActive,
	})
	s := newService(store)

	err := s.SettleLandPurchase(context.Background(), "c-1", "buyer")
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := ducats(t, store, "buyer"); got != 505 {
		t.Fatalf("buyer balance: got=%.2f want=505", got)
	}
	b, _ := memory.NewBuildingRepo(store).GetByID(context.Background(), "parcel-1")
	if b.Owner != "seller" {
		t.Fatalf("parcel owner: got=%q want=seller", b.Owner)
	}
}

func TestFulfillPublicSell_Rejections(t *testing.T) {
	store := memory.NewStore()
	past := fixedNow().Add(-time.Hour)
	store.SeedContract(economy.Contract{ID: "c-expired", Type: economy.ContractPublicSell, Seller: "s", Asset: "x", PricePerUnit: 1, TargetAmount: 10, Status: economy.ContractActive, EndAt: &past})
	store.SeedContract(economy.Contract{ID: "c-loan", Type: economy.ContractLoan, Seller: "s", Asset: "x", PricePerUnit: 1, TargetAmount: 10, Status: economy.ContractActive})
	s := newService(store)

	if _, err := s.FulfillPublicSell(context.Background(), "c-expired", "b", 1); !errors.Is(err, ErrNotFulfillable) {
		t.Fatalf("expected ErrNotFulfillable, got %v", err)
	}
	if _, err := s.FulfillPublicSell(context.Background(), "c-loan", "b", 1); !errors.Is(err, ErrWrongType) {
		t.Fatalf("expected ErrWrongType, got %v", err)
	}
	if _, err := s.FulfillPublicSell(context.Background(), "c-loan", "", 1); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestFulfillMarkupBuy_MirrorDirection(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "buyer", 100)
	seedCitizen(store, "seller", 0)
	store.SeedResource(economy.ResourceStack{ID: "st-1", Type: "timber", Quantity: 30, Owner: "seller", AssetID: "seller", AssetKind: economy.AssetCitizen})
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractMarkupBuy, Buyer: "buyer", Asset: "timber",
		PricePerUnit: 3, TargetAmount: 20, Status: economy.ContractActive, ExecutedAt: "warehouse-1",
	})
	s := newService(store)

	accepted, err := s.FulfillMarkupBuy(context.Background(), "c-1", "seller", 10)
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if accepted != 10 {
		t.Fatalf("accepted: got=%.2f want=10", accepted)
	}
	if got := ducats(t, store, "seller"); got != 30 {
		t.Fatalf("seller payment: got=%.2f want=30", got)
	}
	stacks, _ := memory.NewResourceRepo(store).ListByHolder(context.Background(), "warehouse-1", economy.AssetBuilding, "timber")
	if len(stacks) != 1 || stacks[0].Quantity != 10 || stacks[0].Owner != "buyer" {
		t.Fatalf("goods not delivered to buyer's building: %+v", stacks)
	}
}

func TestSettleLandPurchase(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "buyer", 1000)
	seedCitizen(store, "seller", 0)
	store.SeedBuilding(economy.Building{ID: "parcel-1", Kind: "land", Owner: "seller"})
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractLandListing, Seller: "seller", Asset: "parcel-1",
		PricePerUnit: 500, TargetAmount: 1, Status: economy.ContractActive,
	})
	s := newService(store)

	if err := s.SettleLandPurchase(context.Background(), "c-1", "buyer"); err != nil {
		t.Fatalf("settle: %v", err)
	}
	// 500 price + 2% transfer fee.
	if got := ducats(t, store, "buyer"); got != 490 {
		t.Fatalf("buyer balance: got=%.2f want=490", got)
	}
	if got := ducats(t, store, "seller"); got != 500 {
		t.Fatalf("seller balance: got=%.2f want=500", got)
	}
	b, _ := memory.NewBuildingRepo(store).GetByID(context.Background(), "parcel-1")
	if b.Owner != "buyer" {
		t.Fatalf("parcel owner: got=%q want=buyer", b.Owner)
	}
	c, _ := memory.NewContractRepo(store).GetByID(context.Background(), "c-1")
	if c.Status != economy.ContractFulfilled || c.Buyer != "buyer" {
		t.Fatalf("listing not settled: %+v", c)
	}
}

func TestAcceptLandOffer(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "bidder", 1000)
	seedCitizen(store, "owner", 0)
	store.SeedBuilding(economy.Building{ID: "parcel-1", Kind: "land", Owner: "owner"})
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractLandOffer, Buyer: "bidder", Asset: "parcel-1",
		PricePerUnit: 500, TargetAmount: 1, Status: economy.ContractActive,
	})
	s := newService(store)

	if err := s.AcceptLandOffer(context.Background(), "c-1", "owner"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// 500 price + 2% transfer fee, both from the offering buyer.
	if got := ducats(t, store, "bidder"); got != 490 {
		t.Fatalf("bidder balance: got=%.2f want=490", got)
	}
	if got := ducats(t, store, "owner"); got != 500 {
		t.Fatalf("owner balance: got=%.2f want=500", got)
	}
	b, _ := memory.NewBuildingRepo(store).GetByID(context.Background(), "parcel-1")
	if b.Owner != "bidder" {
		t.Fatalf("parcel owner: got=%q want=bidder", b.Owner)
	}
	c, _ := memory.NewContractRepo(store).GetByID(context.Background(), "c-1")
	if c.Status != economy.ContractFulfilled || c.Seller != "owner" {
		t.Fatalf("offer not settled: %+v", c)
	}
}

func TestAcceptLandOffer_Rejections(t *testing.T) {
	store := memory.NewStore()
	seedCitizen(store, "bidder", 1000)
	seedCitizen(store, "owner", 0)
	seedCitizen(store, "stranger", 0)
	store.SeedBuilding(economy.Building{ID: "parcel-1", Kind: "land", Owner: "owner"})
	store.SeedContract(economy.Contract{
		ID: "c-1", Type: economy.ContractLandOffer, Buyer: "bidder", Asset: "parcel-1",
		PricePerUnit: 500, TargetAmount: 1, Status: economy.ContractActive,
	})
	store.SeedContract(economy.Contract{
		ID: "c-sell", Type: economy.ContractPublicSell, Seller: "owner", Asset: "grain",
		PricePerUnit: 1, TargetAmount: 10, Status: economy.ContractActive,
	})
	s := newService(store)

	if err := s.AcceptLandOffer(context.Background(), "c-sell", "owner"); !errors.Is(err, ErrWrongType) {
		t.Fatalf("expected ErrWrongType, got %v", err)
	}
	// Only the parcel's owner may accept.
	if err := s.AcceptLandOffer(context.Background(), "c-1", "stranger"); !errors.Is(err, ErrNotFulfillable) {
		t.Fatalf("expected ErrNotFulfillable, got %v", err)
	}
	b, _ := memory.NewBuildingRepo(store).GetByID(context.Background(), "parcel-1")
	if b.Owner != "owner" {
		t.Fatalf("parcel moved on rejected accept: %+v", b)
	}
	if got := ducats(t, store, "bidder"); got != 1000 {
		t.Fatalf("bidder charged on rejected accept: %.2f", got)
	}
}

func TestExpireDue(t *testing.T) {
	store := memory.NewStore()
	past := fixedNow().Add(-time.Hour)
	future := fixedNow().Add(time.Hour)
	store.SeedContract(economy.Contract{ID: "c-old", Type: economy.ContractPublicSell, Seller: "s", Asset: "x", PricePerUnit: 1, TargetAmount: 1, Status: economy.ContractActive, EndAt: &past})
	store.SeedContract(economy.Contract{ID: "c-live", Type: economy.ContractPublicSell, Seller: "s", Asset: "x", PricePerUnit: 1, TargetAmount: 1, Status: economy.ContractActive, EndAt: &future})
	store.SeedContract(economy.Contract{ID: "c-open", Type: economy.ContractPublicSell, Seller: "s", Asset: "x", PricePerUnit: 1, TargetAmount: 1, Status: economy.ContractActive})
	s := newService(store)

	n, err := s.ExpireDue(context.Background(), fixedNow())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired count: got=%d want=1", n)
	}
	repo := memory.NewContractRepo(store)
	old, _ := repo.GetByID(context.Background(), "c-old")
	if old.Status != economy.ContractExpired {
		t.Fatalf("c-old status: got=%s", old.Status)
	}
	live, _ := repo.GetByID(context.Background(), "c-live")
	if live.Status != economy.ContractActive {
		t.Fatalf("c-live status: got=%s", live.Status)
	}
}

func TestCancel(t *testing.T) {
	store := memory.NewStore()
	store.SeedContract(economy.Contract{ID: "c-1", Type: economy.ContractPublicSell, Seller: "s", Asset: "x", PricePerUnit: 1, TargetAmount: 1, Status: economy.ContractActive})
	s := newService(store)

	if err := s.Cancel(context.Background(), "c-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := s.Cancel(context.Background(), "c-1"); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable on second cancel, got %v", err)
	}
}
