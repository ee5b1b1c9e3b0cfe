package activity

import (
	"context"

	"rialto/internal/domain/economy"
)

// Creator turns an intent into an ordered, date-chained list of activities.
// It must not mutate anything; validation failures return an error and the
// chain is never persisted.
type Creator interface {
	Create(ctx context.Context, uc CreateUseCase, citizen economy.Citizen, p Params) ([]economy.Activity, error)
}

// Processor applies the effect of one due activity. A returned error becomes
// the activity's terminal failed status with the error text as reason; the
// transaction it ran in is rolled back, so no partial effect survives.
type Processor interface {
	Process(ctx context.Context, uc ProcessUseCase, activity economy.Activity) error
}

type Spec struct {
	Type      economy.ActivityType
	Creator   Creator
	Processor Processor
}

func registry() map[economy.ActivityType]Spec {
	return map[economy.ActivityType]Spec{
		economy.ActivityGotoLocation:         {Type: economy.ActivityGotoLocation, Creator: gotoCreator{}, Processor: gotoProcessor{}},
		economy.ActivityEatAtTavern:          {Type: economy.ActivityEatAtTavern, Creator: eatCreator{}, Processor: eatProcessor{}},
		economy.ActivityDeliverToStorage:     {Type: economy.ActivityDeliverToStorage, Creator: deliverCreator{}, Processor: deliverProcessor{}},
		economy.ActivityFetchFromStorage:     {Type: economy.ActivityFetchFromStorage, Creator: fetchCreator{}, Processor: fetchProcessor{}},
		economy.ActivityBuyFromContract:      {Type: economy.ActivityBuyFromContract, Creator: buyCreator{}, Processor: buyProcessor{}},
		economy.ActivityProduction:           {Type: economy.ActivityProduction, Creator: productionCreator{}, Processor: productionProcessor{}},
		economy.ActivityManagePublicSell:     {Type: economy.ActivityManagePublicSell, Creator: sellListingCreator{}, Processor: sellListingProcessor{}},
		economy.ActivityFinalizeLandPurchase: {Type: economy.ActivityFinalizeLandPurchase, Creator: landPurchaseCreator{}, Processor: landPurchaseProcessor{}},
		economy.ActivitySendDucats:           {Type: economy.ActivitySendDucats, Creator: giftCreator{}, Processor: giftProcessor{}},
	}
}

func SupportedTypes() []economy.ActivityType {
	return []economy.ActivityType{
		economy.ActivityGotoLocation,
		economy.ActivityEatAtTavern,
		economy.ActivityDeliverToStorage,
		economy.ActivityFetchFromStorage,
		economy.ActivityBuyFromContract,
		economy.ActivityProduction,
		economy.ActivityManagePublicSell,
		economy.ActivityFinalizeLandPurchase,
		economy.ActivitySendDucats,
	}
}

func isSupportedType(t economy.ActivityType) bool {
	_, ok := registry()[t]
	return ok
}
