package ports

import "rialto/internal/domain/economy"

type SchedulerMetrics interface {
	RecordActivity(activityType economy.ActivityType, status economy.ActivityStatus)
	RecordStratagemFinished(status economy.StratagemStatus)
	RecordContractsExpired(n int)
	RecordStacksSwept(n int)
}
