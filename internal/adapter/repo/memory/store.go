package memory

import (
	"sync"

	"rialto/internal/domain/economy"
)

// Store backs the in-memory repositories. It is the unit-test double for the
// postgres adapter and the zero-dependency mode for local development.
//
// Two locks: mu guards every map and slice so the repos stay safe under the
// scheduler's worker pool, txMu serializes RunInTx sections so multi-step
// ledger mutations cannot interleave with each other.
type Store struct {
	mu            sync.RWMutex
	txMu          sync.Mutex
	citizens      map[string]economy.Citizen
	buildings     map[string]economy.Building
	resources     map[string]economy.ResourceStack
	activities    map[string]economy.Activity
	contracts     map[string]economy.Contract
	stratagems    map[string]economy.Stratagem
	transactions  []economy.Transaction
	notifications []economy.Notification
}

func NewStore() *Store {
	return &Store{
		citizens:   make(map[string]economy.Citizen),
		buildings:  make(map[string]economy.Building),
		resources:  make(map[string]economy.ResourceStack),
		activities: make(map[string]economy.Activity),
		contracts:  make(map[string]economy.Contract),
		stratagems: make(map[string]economy.Stratagem),
	}
}

func (s *Store) SeedCitizen(c economy.Citizen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.citizens[c.Username] = c
}

func (s *Store) SeedBuilding(b economy.Building) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings[b.ID] = b
}

func (s *Store) SeedResource(r economy.ResourceStack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
}

func (s *Store) SeedActivity(a economy.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[a.ID] = a
}

func (s *Store) SeedContract(c economy.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[c.ID] = c
}

func (s *Store) SeedStratagem(st economy.Stratagem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stratagems[st.ID] = st
}

func (s *Store) Transactions() []economy.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]economy.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

func (s *Store) Notifications() []economy.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]economy.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
