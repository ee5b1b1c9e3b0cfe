package inmemory

import (
	"sync"

	"rialto/internal/domain/economy"
)

type Snapshot struct {
	ActivityTotal     uint64            `json:"activity_total"`
	ActivityCompleted uint64            `json:"activity_completed"`
	ActivityFailed    uint64            `json:"activity_failed"`
	ByActivityType    map[string]uint64 `json:"by_activity_type"`
	StratagemFinished map[string]uint64 `json:"stratagem_finished"`
	ContractsExpired  uint64            `json:"contracts_expired"`
	StacksSwept       uint64            `json:"stacks_swept"`
}

type Recorder struct {
	mu        sync.Mutex
	completed uint64
	failed    uint64
	byType    map[string]uint64
	finished  map[string]uint64
	expired   uint64
	swept     uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byType:   map[string]uint64{},
		finished: map[string]uint64{},
	}
}

func (r *Recorder) RecordActivity(activityType economy.ActivityType, status economy.ActivityStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch status {
	case economy.ActivityCompleted:
		r.completed++
	case economy.ActivityFailed:
		r.failed++
	default:
		return
	}
	r.byType[string(activityType)]++
}

func (r *Recorder) RecordStratagemFinished(status economy.StratagemStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished[string(status)]++
}

func (r *Recorder) RecordContractsExpired(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired += uint64(n)
}

func (r *Recorder) RecordStacksSwept(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swept += uint64(n)
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ActivityCompleted: r.completed,
		ActivityFailed:    r.failed,
		ActivityTotal:     r.completed + r.failed,
		ByActivityType:    make(map[string]uint64, len(r.byType)),
		StratagemFinished: make(map[string]uint64, len(r.finished)),
		ContractsExpired:  r.expired,
		StacksSwept:       r.swept,
	}
	for k, v := range r.byType {
		out.ByActivityType[k] = v
	}
	for k, v := range r.finished {
		out.StratagemFinished[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
