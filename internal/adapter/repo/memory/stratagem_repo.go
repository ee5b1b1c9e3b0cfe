package memory

import (
	"context"
	"sort"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type StratagemRepo struct {
	store *Store
}

func NewStratagemRepo(store *Store) StratagemRepo {
	return StratagemRepo{store: store}
}

func (r StratagemRepo) GetByID(_ context.Context, id string) (economy.Stratagem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.stratagems[id]
	if !ok {
		return economy.Stratagem{}, ports.ErrNotFound
	}
	return s, nil
}

func (r StratagemRepo) Save(_ context.Context, s economy.Stratagem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.stratagems[s.ID]; exists {
		return ports.ErrConflict
	}
	r.store.stratagems[s.ID] = s
	return nil
}

func (r StratagemRepo) SaveWithVersion(_ context.Context, s economy.Stratagem, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.stratagems[s.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.stratagems[s.ID] = s
	return nil
}

func (r StratagemRepo) ListActive(_ context.Context) ([]economy.Stratagem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Stratagem, 0)
	for _, s := range r.store.stratagems {
		if s.Status == economy.StratagemActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
