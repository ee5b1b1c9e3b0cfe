package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rialto/internal/app/contract"
	"rialto/internal/app/ledger"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type ProcessUseCase struct {
	TxManager     ports.TxManager
	Citizens      ports.CitizenRepository
	Buildings     ports.BuildingRepository
	Resources     ports.ResourceRepository
	Contracts     ports.ContractRepository
	Activities    ports.ActivityRepository
	Notifications ports.NotificationRepository
	Ledger        ledger.Service
	Market        contract.Service
	Tuning        economy.Tuning
	Now           func() time.Time
}

func (u ProcessUseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now().UTC()
}

type Result struct {
	Status  economy.ActivityStatus
	Reason  string
	Skipped bool
}

// Execute dispatches one due activity to its processor, exactly once. A
// processor error rolls back every effect and terminates the activity as
// failed with the error text as reason. Terminal and in-flight activities
// are no-ops, so a double dispatch cannot double-apply an effect.
func (u ProcessUseCase) Execute(ctx context.Context, activityID string) (Result, error) {
	a, err := u.Activities.GetByID(ctx, activityID)
	if err != nil {
		return Result{}, fmt.Errorf("load activity %s: %w", activityID, err)
	}
	if a.Status.Terminal() || a.Status == economy.ActivityInProgress {
		return Result{Status: a.Status, Reason: a.Reason, Skipped: true}, nil
	}

	if a.ChainIndex > 0 {
		ready, failReason, err := u.chainGate(ctx, a)
		if err != nil {
			return Result{}, err
		}
		if failReason != "" {
			return u.terminate(ctx, a, economy.ActivityFailed, failReason)
		}
		if !ready {
			return Result{Status: a.Status, Skipped: true}, nil
		}
	}

	spec, ok := registry()[a.Type]
	if !ok {
		return u.terminate(ctx, a, economy.ActivityFailed, "no processor registered for "+string(a.Type))
	}

	a.Status = economy.ActivityInProgress
	if err := u.Activities.Update(ctx, a); err != nil {
		return Result{}, fmt.Errorf("mark in_progress %s: %w", activityID, err)
	}

	procErr := u.runProcessor(ctx, spec, a)
	if procErr != nil {
		if errors.Is(procErr, ports.ErrConflict) {
			// One concurrent-save retry within the tick; the scheduler
			// serializes per citizen, so this only trips on cross-citizen
			// contention.
			procErr = u.runProcessor(ctx, spec, a)
		}
		if procErr != nil {
			return u.terminate(ctx, a, economy.ActivityFailed, procErr.Error())
		}
	}
	return Result{Status: economy.ActivityCompleted}, nil
}

// runProcessor applies the effect and the completed status in one
// transaction, so a failure leaves neither.
func (u ProcessUseCase) runProcessor(ctx context.Context, spec Spec, a economy.Activity) error {
	return u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := spec.Processor.Process(txCtx, u, a); err != nil {
			return err
		}
		a.Status = economy.ActivityCompleted
		a.Reason = ""
		return u.Activities.Update(txCtx, a)
	})
}

// Cancel administratively terminates a non-terminal activity.
func (u ProcessUseCase) Cancel(ctx context.Context, activityID, reason string) error {
	a, err := u.Activities.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("load activity %s: %w", activityID, err)
	}
	if a.Status.Terminal() {
		return nil
	}
	if reason == "" {
		reason = "cancelled by operator"
	}
	_, err = u.terminate(ctx, a, economy.ActivityFailed, reason)
	return err
}

func (u ProcessUseCase) chainGate(ctx context.Context, a economy.Activity) (ready bool, failReason string, err error) {
	chain, err := u.Activities.ListByChain(ctx, a.ChainID)
	if err != nil {
		return false, "", fmt.Errorf("load chain %s: %w", a.ChainID, err)
	}
	for _, link := range chain {
		if link.ChainIndex != a.ChainIndex-1 {
			continue
		}
		switch link.Status {
		case economy.ActivityCompleted:
			return true, "", nil
		case economy.ActivityFailed:
			return false, fmt.Sprintf("chain broken: predecessor %s failed", link.ID), nil
		default:
			return false, "", nil
		}
	}
	return false, fmt.Sprintf("chain broken: predecessor link %d missing", a.ChainIndex-1), nil
}

func (u ProcessUseCase) terminate(ctx context.Context, a economy.Activity, status economy.ActivityStatus, reason string) (Result, error) {
	if !a.Status.CanTransition(status) {
		return Result{Status: a.Status, Reason: a.Reason, Skipped: true}, nil
	}
	a.Status = status
	a.Reason = reason
	if err := u.Activities.Update(ctx, a); err != nil {
		return Result{}, fmt.Errorf("terminate activity %s: %w", a.ID, err)
	}
	return Result{Status: status, Reason: reason}, nil
}

// notify is fire-and-forget; a notification failure never fails the
// activity.
func (u ProcessUseCase) notify(ctx context.Context, citizen, kind, body string) {
	if u.Notifications == nil {
		return
	}
	_ = u.Notifications.Append(ctx, economy.Notification{
		ID:      uuid.NewString(),
		Citizen: citizen,
		Kind:    kind,
		Body:    body,
		At:      u.now(),
	})
}
