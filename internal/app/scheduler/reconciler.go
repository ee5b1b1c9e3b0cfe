package scheduler

import (
	"context"
	"time"

	"rialto/internal/domain/economy"
)

const stuckReason = "stuck in_progress reconciled"

// reconcileStuck fails activities that were dispatched but never reached a
// terminal status within the grace window, usually after a crash mid-tick.
// The processor's transaction rolled back with it, so failing the record is
// safe; the chain gate then fails dependents instead of leaving them
// waiting forever.
func (l Loop) reconcileStuck(ctx context.Context, now time.Time) {
	grace := l.ReconcileAfter
	if grace <= 0 {
		grace = DefaultReconcileAfter
	}
	stuck, err := l.ActivityRepo.ListStuckInProgress(ctx, now.Add(-grace))
	if err != nil {
		l.logger().Error("list stuck activities", "err", err)
		return
	}
	for _, a := range stuck {
		if !a.Status.CanTransition(economy.ActivityFailed) {
			continue
		}
		a.Status = economy.ActivityFailed
		a.Reason = stuckReason
		if err := l.ActivityRepo.Update(ctx, a); err != nil {
			l.logger().Error("reconcile stuck activity", "activity", a.ID, "err", err)
			continue
		}
		l.logger().Warn("stuck activity reconciled", "activity", a.ID, "type", a.Type, "citizen", a.Citizen)
	}
}
