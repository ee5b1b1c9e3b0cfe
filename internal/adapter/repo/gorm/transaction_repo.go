package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"rialto/internal/adapter/repo/gorm/model"
	"rialto/internal/domain/economy"
)

type TransactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepo {
	return TransactionRepo{db: db}
}

func (r TransactionRepo) Append(ctx context.Context, tx economy.Transaction) error {
	m := model.Transaction{
		ID:          tx.ID,
		Kind:        string(tx.Kind),
		FromAccount: tx.FromAccount,
		ToAccount:   tx.ToAccount,
		Resource:    tx.Resource,
		Amount:      tx.Amount,
		Reference:   tx.Reference,
		At:          tx.At,
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r TransactionRepo) ListByAccount(ctx context.Context, account string, limit int) ([]economy.Transaction, error) {
	q := getDBFromCtx(ctx, r.db).
		Where("from_account = ? OR to_account = ?", account, account).
		Order("at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]economy.Transaction, 0, len(rows))
	for _, m := range rows {
		out = append(out, economy.Transaction{
			ID:          m.ID,
			Kind:        economy.TransactionKind(m.Kind),
			FromAccount: m.FromAccount,
			ToAccount:   m.ToAccount,
			Resource:    m.Resource,
			Amount:      m.Amount,
			Reference:   m.Reference,
			At:          m.At,
		})
	}
	return out, nil
}
