package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

// The open transaction travels through the context so the ledger, contract
// and stratagem services stay adapter-agnostic: inside RunInTx every repo
// call lands on the same *gorm.DB handle.

type txKeyType struct{}

var txKey = txKeyType{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// getDBFromCtx resolves the handle repo methods must use: the in-flight
// transaction when one is open, the base connection otherwise.
func getDBFromCtx(ctx context.Context, base *gorm.DB) *gorm.DB {
	if v := ctx.Value(txKey); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx
		}
	}
	return base
}
