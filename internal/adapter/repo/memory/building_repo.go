package memory

import (
	"context"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type BuildingRepo struct {
	store *Store
}

func NewBuildingRepo(store *Store) BuildingRepo {
	return BuildingRepo{store: store}
}

func (r BuildingRepo) GetByID(_ context.Context, id string) (economy.Building, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.buildings[id]
	if !ok {
		return economy.Building{}, ports.ErrNotFound
	}
	return b, nil
}

func (r BuildingRepo) SetOwner(_ context.Context, id, owner string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.buildings[id]
	if !ok {
		return ports.ErrNotFound
	}
	b.Owner = owner
	r.store.buildings[id] = b
	return nil
}
