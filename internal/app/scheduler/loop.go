package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"rialto/internal/app/activity"
	"rialto/internal/app/contract"
	"rialto/internal/app/ledger"
	"rialto/internal/app/ports"
	"rialto/internal/app/stratagem"
	"rialto/internal/domain/economy"
)

const (
	DefaultInterval       = 5 * time.Minute
	DefaultWorkers        = 4
	DefaultReconcileAfter = 2 * time.Hour
)

// Loop is the only component with a notion of time passing. Every tick it
// dispatches due activities, advances active stratagems, expires contracts,
// sweeps decayed stacks and reconciles stuck work. Errors are logged and
// never abort the tick.
type Loop struct {
	Activities    activity.ProcessUseCase
	Stratagems    stratagem.ProcessUseCase
	Market        contract.Service
	Ledger        ledger.Service
	ActivityRepo  ports.ActivityRepository
	StratagemRepo ports.StratagemRepository
	TxManager     ports.TxManager
	Metrics       ports.SchedulerMetrics

	Interval       time.Duration
	Workers        int
	ReconcileAfter time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

func (l Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now().UTC()
}

func (l Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Run blocks until the context is cancelled, ticking at the configured
// cadence.
func (l Loop) Run(ctx context.Context) {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	l.logger().Info("scheduler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.logger().Info("scheduler stopped")
			return
		case <-ticker.C:
			l.TickOnce(ctx)
		}
	}
}

// TickOnce runs one full scheduler pass.
func (l Loop) TickOnce(ctx context.Context) {
	now := l.now()
	l.dispatchDueActivities(ctx, now)
	l.tickStratagems(ctx)
	l.expireContracts(ctx, now)
	l.sweepDecayed(ctx, now)
	l.reconcileStuck(ctx, now)
}

// dispatchDueActivities groups due activities by citizen: one citizen's
// activities run strictly in order on a single worker, disjoint citizens in
// parallel on a bounded pool.
func (l Loop) dispatchDueActivities(ctx context.Context, now time.Time) {
	due, err := l.ActivityRepo.ListDue(ctx, now)
	if err != nil {
		l.logger().Error("list due activities", "err", err)
		return
	}
	if len(due) == 0 {
		return
	}

	byCitizen := make(map[string][]economy.Activity)
	order := make([]string, 0)
	for _, a := range due {
		if _, seen := byCitizen[a.Citizen]; !seen {
			order = append(order, a.Citizen)
		}
		byCitizen[a.Citizen] = append(byCitizen[a.Citizen], a)
	}
	for _, citizen := range order {
		group := byCitizen[citizen]
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].EndDate.Equal(group[j].EndDate) {
				return group[i].EndDate.Before(group[j].EndDate)
			}
			return group[i].ID < group[j].ID
		})
	}

	workers := l.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	groups := make(chan []economy.Activity)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range groups {
				l.processGroup(ctx, group)
			}
		}()
	}
	for _, citizen := range order {
		groups <- byCitizen[citizen]
	}
	close(groups)
	wg.Wait()
}

func (l Loop) processGroup(ctx context.Context, group []economy.Activity) {
	for _, a := range group {
		res, err := l.Activities.Execute(ctx, a.ID)
		if err != nil {
			l.logger().Error("process activity", "activity", a.ID, "type", a.Type, "err", err)
			continue
		}
		if res.Skipped {
			continue
		}
		if l.Metrics != nil {
			l.Metrics.RecordActivity(a.Type, res.Status)
		}
		if res.Status == economy.ActivityFailed {
			l.logger().Warn("activity failed", "activity", a.ID, "type", a.Type, "citizen", a.Citizen, "reason", res.Reason)
		} else {
			l.logger().Info("activity completed", "activity", a.ID, "type", a.Type, "citizen", a.Citizen)
		}
	}
}

func (l Loop) tickStratagems(ctx context.Context) {
	active, err := l.StratagemRepo.ListActive(ctx)
	if err != nil {
		l.logger().Error("list active stratagems", "err", err)
		return
	}
	for _, s := range active {
		status, err := l.Stratagems.Tick(ctx, s.ID)
		if err != nil {
			l.logger().Error("tick stratagem", "stratagem", s.ID, "type", s.Type, "err", err)
			continue
		}
		if status != economy.StratagemActive {
			if l.Metrics != nil {
				l.Metrics.RecordStratagemFinished(status)
			}
			l.logger().Info("stratagem finished", "stratagem", s.ID, "type", s.Type, "status", status)
		}
	}
}

func (l Loop) expireContracts(ctx context.Context, now time.Time) {
	err := l.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := l.Market.ExpireDue(txCtx, now)
		if n > 0 {
			if l.Metrics != nil {
				l.Metrics.RecordContractsExpired(n)
			}
			l.logger().Info("contracts expired", "count", n)
		}
		return err
	})
	if err != nil {
		l.logger().Error("expire contracts", "err", err)
	}
}

func (l Loop) sweepDecayed(ctx context.Context, now time.Time) {
	err := l.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := l.Ledger.SweepDecayed(txCtx, now)
		if n > 0 {
			if l.Metrics != nil {
				l.Metrics.RecordStacksSwept(n)
			}
			l.logger().Info("decayed stacks removed", "count", n)
		}
		return err
	})
	if err != nil {
		l.logger().Error("sweep decayed stacks", "err", err)
	}
}
