package memory

import (
	"context"
	"sort"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type ResourceRepo struct {
	store *Store
}

func NewResourceRepo(store *Store) ResourceRepo {
	return ResourceRepo{store: store}
}

func (r ResourceRepo) GetByID(_ context.Context, id string) (economy.ResourceStack, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stack, ok := r.store.resources[id]
	if !ok {
		return economy.ResourceStack{}, ports.ErrNotFound
	}
	return stack, nil
}

func (r ResourceRepo) ListByHolder(_ context.Context, assetID string, kind economy.AssetKind, resourceType string) ([]economy.ResourceStack, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.ResourceStack, 0)
	for _, stack := range r.store.resources {
		if stack.AssetID != assetID || stack.AssetKind != kind {
			continue
		}
		if resourceType != "" && stack.Type != resourceType {
			continue
		}
		out = append(out, stack)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ResourceRepo) ListDecayedBefore(_ context.Context, cutoff time.Time) ([]economy.ResourceStack, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.ResourceStack, 0)
	for _, stack := range r.store.resources {
		if stack.DecayAt != nil && stack.DecayAt.Before(cutoff) {
			out = append(out, stack)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ResourceRepo) Save(_ context.Context, stack economy.ResourceStack) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.resources[stack.ID] = stack
	return nil
}

func (r ResourceRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.resources, id)
	return nil
}
