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

type ResourceRepo struct {
	db *gorm.DB
}

func NewResourceRepo(db *gorm.DB) ResourceRepo {
	return ResourceRepo{db: db}
}

func (r ResourceRepo) GetByID(ctx context.Context, id string) (economy.ResourceStack, error) {
	var m model.ResourceStack
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return economy.ResourceStack{}, ports.ErrNotFound
		}
		return economy.ResourceStack{}, err
	}
	return stackFromModel(m), nil
}

func (r ResourceRepo) ListByHolder(ctx context.Context, assetID string, kind economy.AssetKind, resourceType string) ([]economy.ResourceStack, error) {
	q := getDBFromCtx(ctx, r.db).
		Where("asset_id = ? AND asset_kind = ?", assetID, string(kind))
	if resourceType != "" {
		q = q.Where("type = ?", resourceType)
	}
	var rows []model.ResourceStack
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return stacksFromModels(rows), nil
}

func (r ResourceRepo) ListDecayedBefore(ctx context.Context, cutoff time.Time) ([]economy.ResourceStack, error) {
	var rows []model.ResourceStack
	err := getDBFromCtx(ctx, r.db).
		Where("decay_at IS NOT NULL AND decay_at < ?", cutoff).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return stacksFromModels(rows), nil
}

func (r ResourceRepo) Save(ctx context.Context, stack economy.ResourceStack) error {
	m := model.ResourceStack{
		ID:        stack.ID,
		Type:      stack.Type,
		Quantity:  stack.Quantity,
		Owner:     stack.Owner,
		AssetID:   stack.AssetID,
		AssetKind: string(stack.AssetKind),
		DecayAt:   stack.DecayAt,
	}
	return getDBFromCtx(ctx, r.db).Save(&m).Error
}

func (r ResourceRepo) Delete(ctx context.Context, id string) error {
	return getDBFromCtx(ctx, r.db).Delete(&model.ResourceStack{}, "id = ?", id).Error
}

func stackFromModel(m model.ResourceStack) economy.ResourceStack {
	return economy.ResourceStack{
		ID:        m.ID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Owner:     m.Owner,
		AssetID:   m.AssetID,
		AssetKind: economy.AssetKind(m.AssetKind),
		DecayAt:   m.DecayAt,
	}
}

func stacksFromModels(rows []model.ResourceStack) []economy.ResourceStack {
	out := make([]economy.ResourceStack, 0, len(rows))
	for _, m := range rows {
		out = append(out, stackFromModel(m))
	}
	return out
}
