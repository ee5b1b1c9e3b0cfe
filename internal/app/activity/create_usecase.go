package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

var (
	ErrInvalidRequest      = errors.New("invalid activity request")
	ErrInvalidParams       = errors.New("invalid activity params")
	ErrPreconditionFailed  = errors.New("activity precondition failed")
	ErrUnknownActivityType = errors.New("unknown activity type")
)

// PreconditionError carries the human-readable reason attached to the
// rejected intent or failed activity.
type PreconditionError struct {
	Detail string
}

func (e *PreconditionError) Error() string {
	return ErrPreconditionFailed.Error() + ": " + e.Detail
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Detail: fmt.Sprintf(format, args...)}
}

type CreateUseCase struct {
	TxManager  ports.TxManager
	Citizens   ports.CitizenRepository
	Buildings  ports.BuildingRepository
	Resources  ports.ResourceRepository
	Contracts  ports.ContractRepository
	Activities ports.ActivityRepository
	Path       ports.PathProvider
	Tuning     economy.Tuning
	Now        func() time.Time
}

func (u CreateUseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now().UTC()
}

// Execute validates the intent, builds the activity chain (travel leg first
// when the citizen is elsewhere) and persists it atomically. Nothing is
// persisted when any link fails to build.
func (u CreateUseCase) Execute(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	req.Citizen = strings.TrimSpace(req.Citizen)
	if req.Citizen == "" {
		return CreateResponse{}, ErrInvalidRequest
	}
	spec, ok := registry()[req.Type]
	if !ok {
		return CreateResponse{}, ErrUnknownActivityType
	}

	citizen, err := u.Citizens.GetByUsername(ctx, req.Citizen)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return CreateResponse{}, ErrInvalidRequest
		}
		return CreateResponse{}, fmt.Errorf("load citizen %s: %w", req.Citizen, err)
	}
	if !citizen.Active {
		return CreateResponse{}, preconditionf("citizen %s is deactivated", citizen.Username)
	}

	chain, err := spec.Creator.Create(ctx, u, citizen, req.Params)
	if err != nil {
		return CreateResponse{}, err
	}
	if len(chain) == 0 {
		return CreateResponse{}, fmt.Errorf("creator for %s returned empty chain", req.Type)
	}

	chainID := uuid.NewString()
	for i := range chain {
		chain[i].ID = uuid.NewString()
		chain[i].Citizen = citizen.Username
		chain[i].Status = economy.ActivityCreated
		chain[i].ChainID = chainID
		chain[i].ChainIndex = i
		if chain[i].EndDate.Before(chain[i].StartDate) {
			return CreateResponse{}, fmt.Errorf("chain link %d for %s has end before start", i, req.Type)
		}
		if i > 0 && !chain[i].StartDate.Equal(chain[i-1].EndDate) {
			return CreateResponse{}, fmt.Errorf("chain link %d for %s does not start at predecessor end", i, req.Type)
		}
	}

	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return u.Activities.SaveChain(txCtx, chain)
	})
	if err != nil {
		return CreateResponse{}, fmt.Errorf("persist chain: %w", err)
	}
	return CreateResponse{Activities: chain}, nil
}
