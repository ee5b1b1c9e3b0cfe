package stratagem

import (
	"context"
	"time"

	"rialto/internal/domain/economy"
)

// Creator validates the intent and shapes the stratagem record, including
// how much escrow to hold. It must not mutate anything; the usecase funds
// the escrow and persists.
type Creator interface {
	Create(ctx context.Context, uc CreateUseCase, executor economy.Citizen, p Params) (economy.Stratagem, error)
}

// Processor advances one active stratagem by one tick: scan qualifying
// activities, update progress, pay rewards through the ledger. Malformed
// qualifying activities are skipped, never fatal.
type Processor interface {
	Tick(ctx context.Context, uc ProcessUseCase, s *economy.Stratagem, now time.Time) error
}

type Spec struct {
	Type      economy.StratagemType
	Creator   Creator
	Processor Processor
}

func registry() map[economy.StratagemType]Spec {
	return map[economy.StratagemType]Spec{
		economy.StratagemCollectiveDelivery: {Type: economy.StratagemCollectiveDelivery, Creator: collectiveDeliveryCreator{}, Processor: collectiveDeliveryProcessor{}},
		economy.StratagemOrganizeGathering:  {Type: economy.StratagemOrganizeGathering, Creator: gatheringCreator{}, Processor: gatheringProcessor{}},
		economy.StratagemFinancialPatronage: {Type: economy.StratagemFinancialPatronage, Creator: patronageCreator{}, Processor: patronageProcessor{}},
		economy.StratagemReputationBoost:    {Type: economy.StratagemReputationBoost, Creator: reputationCreator{}, Processor: reputationProcessor{}},
		economy.StratagemTransferDucats:     {Type: economy.StratagemTransferDucats, Creator: transferCreator{}, Processor: transferProcessor{}},
	}
}

func SupportedTypes() []economy.StratagemType {
	return []economy.StratagemType{
		economy.StratagemCollectiveDelivery,
		economy.StratagemOrganizeGathering,
		economy.StratagemFinancialPatronage,
		economy.StratagemReputationBoost,
		economy.StratagemTransferDucats,
	}
}
