package memory

import (
	"context"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type CitizenRepo struct {
	store *Store
}

func NewCitizenRepo(store *Store) CitizenRepo {
	return CitizenRepo{store: store}
}

func (r CitizenRepo) GetByUsername(_ context.Context, username string) (economy.Citizen, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.citizens[username]
	if !ok {
		return economy.Citizen{}, ports.ErrNotFound
	}
	return c, nil
}

func (r CitizenRepo) SaveWithVersion(_ context.Context, citizen economy.Citizen, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.citizens[citizen.Username]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.citizens[citizen.Username] = citizen
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.citizens[citizen.Username] = citizen
	return nil
}
