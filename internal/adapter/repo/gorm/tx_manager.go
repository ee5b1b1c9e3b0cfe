package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

// TxManager commits multi-leg ledger mutations atomically: a fulfillment that
// moves ducats one way and goods the other either lands whole or rolls back.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return TxManager{db: db}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
