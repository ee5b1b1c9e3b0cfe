package stratagem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rialto/internal/app/ledger"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

var (
	ErrInvalidRequest       = errors.New("invalid stratagem request")
	ErrInvalidParams        = errors.New("invalid stratagem params")
	ErrPreconditionFailed   = errors.New("stratagem precondition failed")
	ErrUnknownStratagemType = errors.New("unknown stratagem type")
)

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

const defaultDurationHours = 24

type CreateUseCase struct {
	TxManager  ports.TxManager
	Citizens   ports.CitizenRepository
	Buildings  ports.BuildingRepository
	Stratagems ports.StratagemRepository
	Ledger     ledger.Service
	Tuning     economy.Tuning
	Now        func() time.Time
}

func (u CreateUseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now().UTC()
}

// Execute validates the intent, debits the full escrow from the executor up
// front and persists the stratagem with zeroed progress, all in one
// transaction.
func (u CreateUseCase) Execute(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	req.Executor = strings.TrimSpace(req.Executor)
	if req.Executor == "" {
		return CreateResponse{}, ErrInvalidRequest
	}
	spec, ok := registry()[req.Type]
	if !ok {
		return CreateResponse{}, ErrUnknownStratagemType
	}

	executor, err := u.Citizens.GetByUsername(ctx, req.Executor)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return CreateResponse{}, ErrInvalidRequest
		}
		return CreateResponse{}, fmt.Errorf("load executor %s: %w", req.Executor, err)
	}
	if !executor.Active {
		return CreateResponse{}, preconditionf("executor %s is deactivated", executor.Username)
	}

	s, err := spec.Creator.Create(ctx, u, executor, req.Params)
	if err != nil {
		return CreateResponse{}, err
	}
	if executor.Ducats < s.Progress.EscrowDucats {
		return CreateResponse{}, preconditionf("%s has %.2f ducats, escrow requires %.2f", executor.Username, executor.Ducats, s.Progress.EscrowDucats)
	}

	now := u.now()
	s.ID = uuid.NewString()
	s.ExecutedBy = executor.Username
	s.Status = economy.StratagemActive
	s.CreatedAt = now
	s.Version = 1
	if s.ExpiresAt.IsZero() {
		hours := req.Params.DurationHours
		if hours <= 0 {
			hours = defaultDurationHours
		}
		s.ExpiresAt = now.Add(time.Duration(hours) * time.Hour)
	}

	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if s.Progress.EscrowDucats > 0 {
			if err := u.Ledger.SinkDucats(txCtx, executor.Username, s.Progress.EscrowDucats, economy.TxEscrowFund, "escrow "+s.ID); err != nil {
				return err
			}
		}
		return u.Stratagems.Save(txCtx, s)
	})
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return CreateResponse{}, preconditionf("escrow funding failed: %v", err)
		}
		return CreateResponse{}, fmt.Errorf("persist stratagem: %w", err)
	}
	return CreateResponse{Stratagem: s}, nil
}
