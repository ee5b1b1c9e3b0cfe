package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"rialto/internal/adapter/repo/gorm/model"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type ContractRepo struct {
	db *gorm.DB
}

func NewContractRepo(db *gorm.DB) ContractRepo {
	return ContractRepo{db: db}
}

func (r ContractRepo) GetByID(ctx context.Context, id string) (economy.Contract, error) {
	var m model.Contract
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return economy.Contract{}, ports.ErrNotFound
		}
		return economy.Contract{}, err
	}
	return contractFromModel(m), nil
}

func (r ContractRepo) Save(ctx context.Context, c economy.Contract) error {
	m := contractToModel(c)
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r ContractRepo) Update(ctx context.Context, c economy.Contract) error {
	m := contractToModel(c)
	res := getDBFromCtx(ctx, r.db).Model(&model.Contract{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"buyer":            m.Buyer,
			"seller":           m.Seller,
			"fulfilled_amount": m.FulfilledAmount,
			"status":           m.Status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r ContractRepo) ListByType(ctx context.Context, contractType economy.ContractType, status economy.ContractStatus) ([]economy.Contract, error) {
	q := getDBFromCtx(ctx, r.db).Where("type = ?", string(contractType))
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var rows []model.Contract
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return contractsFromModels(rows), nil
}

func (r ContractRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]economy.Contract, error) {
	var rows []model.Contract
	err := getDBFromCtx(ctx, r.db).
		Where("status = ? AND end_at IS NOT NULL AND end_at < ?", string(economy.ContractActive), now).
		Order("end_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return contractsFromModels(rows), nil
}

func (r ContractRepo) GetByReference(ctx context.Context, reference string) (economy.Contract, error) {
	var m model.Contract
	if err := getDBFromCtx(ctx, r.db).Where("reference = ?", reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return economy.Contract{}, ports.ErrNotFound
		}
		return economy.Contract{}, err
	}
	return contractFromModel(m), nil
}

func contractToModel(c economy.Contract) model.Contract {
	return model.Contract{
		ID:              c.ID,
		Type:            string(c.Type),
		Buyer:           c.Buyer,
		Seller:          c.Seller,
		Asset:           c.Asset,
		PricePerUnit:    c.PricePerUnit,
		TargetAmount:    c.TargetAmount,
		FulfilledAmount: c.FulfilledAmount,
		Status:          string(c.Status),
		ExecutedAt:      c.ExecutedAt,
		Reference:       c.Reference,
		EndAt:           c.EndAt,
		CreatedAt:       c.CreatedAt,
	}
}

func contractFromModel(m model.Contract) economy.Contract {
	return economy.Contract{
		ID:              m.ID,
		Type:            economy.ContractType(m.Type),
		Buyer:           m.Buyer,
		Seller:          m.Seller,
		Asset:           m.Asset,
		PricePerUnit:    m.PricePerUnit,
		TargetAmount:    m.TargetAmount,
		FulfilledAmount: m.FulfilledAmount,
		Status:          economy.ContractStatus(m.Status),
		ExecutedAt:      m.ExecutedAt,
		Reference:       m.Reference,
		EndAt:           m.EndAt,
		CreatedAt:       m.CreatedAt,
	}
}

func contractsFromModels(rows []model.Contract) []economy.Contract {
	out := make([]economy.Contract, 0, len(rows))
	for _, m := range rows {
		out = append(out, contractFromModel(m))
	}
	return out
}
