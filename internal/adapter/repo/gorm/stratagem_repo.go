package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rialto/internal/adapter/repo/gorm/model"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type StratagemRepo struct {
	db *gorm.DB
}

func NewStratagemRepo(db *gorm.DB) StratagemRepo {
	return StratagemRepo{db: db}
}

func (r StratagemRepo) GetByID(ctx context.Context, id string) (economy.Stratagem, error) {
	var m model.Stratagem
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return economy.Stratagem{}, ports.ErrNotFound
		}
		return economy.Stratagem{}, err
	}
	return stratagemFromModel(m)
}

func (r StratagemRepo) Save(ctx context.Context, s economy.Stratagem) error {
	m, err := stratagemToModel(s)
	if err != nil {
		return err
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r StratagemRepo) SaveWithVersion(ctx context.Context, s economy.Stratagem, expectedVersion int64) error {
	m, err := stratagemToModel(s)
	if err != nil {
		return err
	}
	res := getDBFromCtx(ctx, r.db).Model(&model.Stratagem{}).
		Where("id = ? AND version = ?", s.ID, expectedVersion).
		Updates(map[string]any{
			"status":   m.Status,
			"progress": m.Progress,
			"version":  m.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func (r StratagemRepo) ListActive(ctx context.Context) ([]economy.Stratagem, error) {
	var rows []model.Stratagem
	err := getDBFromCtx(ctx, r.db).
		Where("status = ?", string(economy.StratagemActive)).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]economy.Stratagem, 0, len(rows))
	for _, m := range rows {
		s, err := stratagemFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func stratagemToModel(s economy.Stratagem) (model.Stratagem, error) {
	progress, err := json.Marshal(s.Progress)
	if err != nil {
		return model.Stratagem{}, fmt.Errorf("marshal progress for %s: %w", s.ID, err)
	}
	return model.Stratagem{
		ID:             s.ID,
		Type:           string(s.Type),
		ExecutedBy:     s.ExecutedBy,
		TargetCitizen:  s.TargetCitizen,
		TargetBuilding: s.TargetBuilding,
		Status:         string(s.Status),
		ExpiresAt:      s.ExpiresAt,
		Progress:       progress,
		CreatedAt:      s.CreatedAt,
		Version:        s.Version,
	}, nil
}

func stratagemFromModel(m model.Stratagem) (economy.Stratagem, error) {
	var progress economy.Progress
	if len(m.Progress) > 0 {
		if err := json.Unmarshal(m.Progress, &progress); err != nil {
			return economy.Stratagem{}, fmt.Errorf("unmarshal progress for %s: %w", m.ID, err)
		}
	}
	return economy.Stratagem{
		ID:             m.ID,
		Type:           economy.StratagemType(m.Type),
		ExecutedBy:     m.ExecutedBy,
		TargetCitizen:  m.TargetCitizen,
		TargetBuilding: m.TargetBuilding,
		Status:         economy.StratagemStatus(m.Status),
		ExpiresAt:      m.ExpiresAt,
		Progress:       progress,
		CreatedAt:      m.CreatedAt,
		Version:        m.Version,
	}, nil
}
