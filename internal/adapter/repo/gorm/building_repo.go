package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rialto/internal/adapter/repo/gorm/model"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type BuildingRepo struct {
	db *gorm.DB
}

func NewBuildingRepo(db *gorm.DB) BuildingRepo {
	return BuildingRepo{db: db}
}

func (r BuildingRepo) GetByID(ctx context.Context, id string) (economy.Building, error) {
	var m model.Building
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return economy.Building{}, ports.ErrNotFound
		}
		return economy.Building{}, err
	}
	return economy.Building{
		ID:       m.ID,
		Kind:     m.Kind,
		Owner:    m.Owner,
		RunBy:    m.RunBy,
		Position: economy.Position{Lat: m.Lat, Lng: m.Lng},
	}, nil
}

func (r BuildingRepo) SetOwner(ctx context.Context, id, owner string) error {
	res := getDBFromCtx(ctx, r.db).Model(&model.Building{}).
		Where("id = ?", id).
		Update("owner", owner)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}
