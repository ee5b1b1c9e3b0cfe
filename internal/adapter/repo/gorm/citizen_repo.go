package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rialto/internal/adapter/repo/gorm/model"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type CitizenRepo struct {
	db *gorm.DB
}

func NewCitizenRepo(db *gorm.DB) CitizenRepo {
	return CitizenRepo{db: db}
}

func (r CitizenRepo) GetByUsername(ctx context.Context, username string) (economy.Citizen, error) {
	var m model.Citizen
	if err := getDBFromCtx(ctx, r.db).Where("username = ?", username).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return economy.Citizen{}, ports.ErrNotFound
		}
		return economy.Citizen{}, err
	}
	return citizenFromModel(m), nil
}

func (r CitizenRepo) SaveWithVersion(ctx context.Context, citizen economy.Citizen, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)
	m := citizenToModel(citizen)
	if expectedVersion == 0 {
		return db.Create(&m).Error
	}

	res := db.Model(&model.Citizen{}).
		Where("username = ? AND version = ?", citizen.Username, expectedVersion).
		Updates(map[string]any{
			"social_class": m.SocialClass,
			"ducats":       m.Ducats,
			"influence":    m.Influence,
			"lat":          m.Lat,
			"lng":          m.Lng,
			"in_building":  m.InBuilding,
			"ate_at":       m.AteAt,
			"active":       m.Active,
			"version":      m.Version,
			"updated_at":   m.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func citizenFromModel(m model.Citizen) economy.Citizen {
	return economy.Citizen{
		Username:    m.Username,
		SocialClass: economy.SocialClass(m.SocialClass),
		Ducats:      m.Ducats,
		Influence:   m.Influence,
		Position:    economy.Position{Lat: m.Lat, Lng: m.Lng},
		InBuilding:  m.InBuilding,
		AteAt:       m.AteAt,
		Active:      m.Active,
		Version:     m.Version,
		UpdatedAt:   m.UpdatedAt,
	}
}

func citizenToModel(c economy.Citizen) model.Citizen {
	return model.Citizen{
		Username:    c.Username,
		SocialClass: string(c.SocialClass),
		Ducats:      c.Ducats,
		Influence:   c.Influence,
		Lat:         c.Position.Lat,
		Lng:         c.Position.Lng,
		InBuilding:  c.InBuilding,
		AteAt:       c.AteAt,
		Active:      c.Active,
		Version:     c.Version,
		UpdatedAt:   c.UpdatedAt,
	}
}
