package memory

import (
	"context"
	"sort"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type ActivityRepo struct {
	store *Store
}

func NewActivityRepo(store *Store) ActivityRepo {
	return ActivityRepo{store: store}
}

func (r ActivityRepo) GetByID(_ context.Context, id string) (economy.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.activities[id]
	if !ok {
		return economy.Activity{}, ports.ErrNotFound
	}
	return a, nil
}

func (r ActivityRepo) SaveChain(_ context.Context, chain []economy.Activity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range chain {
		if _, exists := r.store.activities[a.ID]; exists {
			return ports.ErrConflict
		}
	}
	for _, a := range chain {
		r.store.activities[a.ID] = a
	}
	return nil
}

func (r ActivityRepo) Update(_ context.Context, a economy.Activity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.activities[a.ID]; !ok {
		return ports.ErrNotFound
	}
	r.store.activities[a.ID] = a
	return nil
}

func (r ActivityRepo) ListDue(_ context.Context, now time.Time) ([]economy.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Activity, 0)
	for _, a := range r.store.activities {
		if a.Due(now) {
			out = append(out, a)
		}
	}
	sortByEndDate(out)
	return out, nil
}

func (r ActivityRepo) ListByChain(_ context.Context, chainID string) ([]economy.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Activity, 0)
	for _, a := range r.store.activities {
		if a.ChainID == chainID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainIndex < out[j].ChainIndex })
	return out, nil
}

func (r ActivityRepo) ListByCitizen(_ context.Context, citizen string, limit int) ([]economy.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Activity, 0)
	for _, a := range r.store.activities {
		if a.Citizen == citizen {
			out = append(out, a)
		}
	}
	sortByEndDate(out)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r ActivityRepo) ListCompletedSince(_ context.Context, activityType economy.ActivityType, since, until time.Time) ([]economy.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Activity, 0)
	for _, a := range r.store.activities {
		if a.Type != activityType || a.Status != economy.ActivityCompleted {
			continue
		}
		if !a.EndDate.After(since) || a.EndDate.After(until) {
			continue
		}
		out = append(out, a)
	}
	sortByEndDate(out)
	return out, nil
}

func (r ActivityRepo) ListStuckInProgress(_ context.Context, olderThan time.Time) ([]economy.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Activity, 0)
	for _, a := range r.store.activities {
		if a.Status == economy.ActivityInProgress && a.EndDate.Before(olderThan) {
			out = append(out, a)
		}
	}
	sortByEndDate(out)
	return out, nil
}

func sortByEndDate(activities []economy.Activity) {
	sort.Slice(activities, func(i, j int) bool {
		if !activities[i].EndDate.Equal(activities[j].EndDate) {
			return activities[i].EndDate.Before(activities[j].EndDate)
		}
		return activities[i].ID < activities[j].ID
	})
}
