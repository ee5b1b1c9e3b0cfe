package memory

import (
	"context"
	"sort"
	"time"

	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type ContractRepo struct {
	store *Store
}

func NewContractRepo(store *Store) ContractRepo {
	return ContractRepo{store: store}
}

func (r ContractRepo) GetByID(_ context.Context, id string) (economy.Contract, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.contracts[id]
	if !ok {
		return economy.Contract{}, ports.ErrNotFound
	}
	return c, nil
}

func (r ContractRepo) Save(_ context.Context, c economy.Contract) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.contracts[c.ID]; exists {
		return ports.ErrConflict
	}
	r.store.contracts[c.ID] = c
	return nil
}

func (r ContractRepo) Update(_ context.Context, c economy.Contract) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.contracts[c.ID]; !ok {
		return ports.ErrNotFound
	}
	r.store.contracts[c.ID] = c
	return nil
}

func (r ContractRepo) ListByType(_ context.Context, contractType economy.ContractType, status economy.ContractStatus) ([]economy.Contract, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Contract, 0)
	for _, c := range r.store.contracts {
		if c.Type != contractType {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ContractRepo) ListExpiredActive(_ context.Context, now time.Time) ([]economy.Contract, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Contract, 0)
	for _, c := range r.store.contracts {
		if c.Status == economy.ContractActive && c.Expired(now) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ContractRepo) GetByReference(_ context.Context, reference string) (economy.Contract, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.contracts {
		if c.Reference != "" && c.Reference == reference {
			return c, nil
		}
	}
	return economy.Contract{}, ports.ErrNotFound
}
