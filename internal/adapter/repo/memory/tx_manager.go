package memory

import "context"

// TxManager serializes mutating sections against each other on the store's
// transaction lock. It provides mutual exclusion, not rollback; usecases
// validate both legs of a mutation before touching the ledger, which is what
// keeps the failure paths clean here. The repos take the store's data lock
// per call, so reads outside a transaction never race a transaction's
// writes.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	return fn(ctx)
}
