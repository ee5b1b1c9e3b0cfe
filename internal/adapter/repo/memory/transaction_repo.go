package memory

import (
	"context"

	"rialto/internal/domain/economy"
)

type TransactionRepo struct {
	store *Store
}

func NewTransactionRepo(store *Store) TransactionRepo {
	return TransactionRepo{store: store}
}

func (r TransactionRepo) Append(_ context.Context, tx economy.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.transactions = append(r.store.transactions, tx)
	return nil
}

func (r TransactionRepo) ListByAccount(_ context.Context, account string, limit int) ([]economy.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]economy.Transaction, 0)
	for _, tx := range r.store.transactions {
		if tx.FromAccount == account || tx.ToAccount == account {
			out = append(out, tx)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type NotificationRepo struct {
	store *Store
}

func NewNotificationRepo(store *Store) NotificationRepo {
	return NotificationRepo{store: store}
}

func (r NotificationRepo) Append(_ context.Context, n economy.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notifications = append(r.store.notifications, n)
	return nil
}
