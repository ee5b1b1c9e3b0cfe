package ports

import (
	"context"
	"time"

	"rialto/internal/domain/economy"
)

type CitizenRepository interface {
	GetByUsername(ctx context.Context, username string) (economy.Citizen, error)
	// SaveWithVersion persists the citizen when the stored version matches
	// expectedVersion, returning ErrConflict otherwise. expectedVersion 0
	// means create.
	SaveWithVersion(ctx context.Context, citizen economy.Citizen, expectedVersion int64) error
}

type BuildingRepository interface {
	GetByID(ctx context.Context, id string) (economy.Building, error)
	SetOwner(ctx context.Context, id, owner string) error
}

type ResourceRepository interface {
	GetByID(ctx context.Context, id string) (economy.ResourceStack, error)
	// ListByHolder returns stacks held at one asset, optionally filtered by
	// resource type ("" matches all).
	ListByHolder(ctx context.Context, assetID string, kind economy.AssetKind, resourceType string) ([]economy.ResourceStack, error)
	ListDecayedBefore(ctx context.Context, cutoff time.Time) ([]economy.ResourceStack, error)
	Save(ctx context.Context, stack economy.ResourceStack) error
	Delete(ctx context.Context, id string) error
}

type ActivityRepository interface {
	GetByID(ctx context.Context, id string) (economy.Activity, error)
	// SaveChain persists a whole chain; all or nothing.
	SaveChain(ctx context.Context, chain []economy.Activity) error
	Update(ctx context.Context, activity economy.Activity) error
	ListDue(ctx context.Context, now time.Time) ([]economy.Activity, error)
	ListByChain(ctx context.Context, chainID string) ([]economy.Activity, error)
	ListByCitizen(ctx context.Context, citizen string, limit int) ([]economy.Activity, error)
	// ListCompletedSince returns completed activities of one type with
	// EndDate in (since, until], EndDate ascending then id ascending.
	ListCompletedSince(ctx context.Context, activityType economy.ActivityType, since, until time.Time) ([]economy.Activity, error)
	ListStuckInProgress(ctx context.Context, olderThan time.Time) ([]economy.Activity, error)
}

type ContractRepository interface {
	GetByID(ctx context.Context, id string) (economy.Contract, error)
	Save(ctx context.Context, contract economy.Contract) error
	Update(ctx context.Context, contract economy.Contract) error
	ListByType(ctx context.Context, contractType economy.ContractType, status economy.ContractStatus) ([]economy.Contract, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]economy.Contract, error)
	// GetByReference finds a contract created on behalf of an activity,
	// used by processors as an idempotency check.
	GetByReference(ctx context.Context, reference string) (economy.Contract, error)
}

type StratagemRepository interface {
	GetByID(ctx context.Context, id string) (economy.Stratagem, error)
	Save(ctx context.Context, stratagem economy.Stratagem) error
	// SaveWithVersion guards the once-per-tick progress mutation.
	SaveWithVersion(ctx context.Context, stratagem economy.Stratagem, expectedVersion int64) error
	ListActive(ctx context.Context) ([]economy.Stratagem, error)
}

type TransactionRepository interface {
	Append(ctx context.Context, tx economy.Transaction) error
	ListByAccount(ctx context.Context, account string, limit int) ([]economy.Transaction, error)
}

type NotificationRepository interface {
	// Append is fire-and-forget; callers ignore its error beyond logging.
	Append(ctx context.Context, n economy.Notification) error
}
