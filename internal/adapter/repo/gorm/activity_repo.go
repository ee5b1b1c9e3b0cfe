package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rialto/internal/adapter/repo/gorm/model"
	"rialto/internal/app/ports"
	"rialto/internal/domain/economy"
)

type ActivityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) ActivityRepo {
	return ActivityRepo{db: db}
}

func (r ActivityRepo) GetByID(ctx context.Context, id string) (economy.Activity, error) {
	var m model.Activity
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return economy.Activity{}, ports.ErrNotFound
		}
		return economy.Activity{}, err
	}
	return activityFromModel(m)
}

func (r ActivityRepo) SaveChain(ctx context.Context, chain []economy.Activity) error {
	rows := make([]model.Activity, 0, len(chain))
	for _, a := range chain {
		m, err := activityToModel(a)
		if err != nil {
			return err
		}
		rows = append(rows, m)
	}
	return getDBFromCtx(ctx, r.db).Create(&rows).Error
}

func (r ActivityRepo) Update(ctx context.Context, a economy.Activity) error {
	m, err := activityToModel(a)
	if err != nil {
		return err
	}
	res := getDBFromCtx(ctx, r.db).Model(&model.Activity{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":  m.Status,
			"reason":  m.Reason,
			"payload": m.Payload,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r ActivityRepo) ListDue(ctx context.Context, now time.Time) ([]economy.Activity, error) {
	var rows []model.Activity
	err := getDBFromCtx(ctx, r.db).
		Where("status = ? AND end_date <= ?", string(economy.ActivityCreated), now).
		Order("end_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return activitiesFromModels(rows)
}

func (r ActivityRepo) ListByChain(ctx context.Context, chainID string) ([]economy.Activity, error) {
	var rows []model.Activity
	err := getDBFromCtx(ctx, r.db).
		Where("chain_id = ?", chainID).
		Order("chain_index").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return activitiesFromModels(rows)
}

func (r ActivityRepo) ListByCitizen(ctx context.Context, citizen string, limit int) ([]economy.Activity, error) {
	q := getDBFromCtx(ctx, r.db).
		Where("citizen = ?", citizen).
		Order("end_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.Activity
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return activitiesFromModels(rows)
}

func (r ActivityRepo) ListCompletedSince(ctx context.Context, activityType economy.ActivityType, since, until time.Time) ([]economy.Activity, error) {
	var rows []model.Activity
	err := getDBFromCtx(ctx, r.db).
		Where("type = ? AND status = ? AND end_date > ? AND end_date <= ?",
			string(activityType), string(economy.ActivityCompleted), since, until).
		Order("end_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return activitiesFromModels(rows)
}

func (r ActivityRepo) ListStuckInProgress(ctx context.Context, olderThan time.Time) ([]economy.Activity, error) {
	var rows []model.Activity
	err := getDBFromCtx(ctx, r.db).
		Where("status = ? AND end_date < ?", string(economy.ActivityInProgress), olderThan).
		Order("end_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return activitiesFromModels(rows)
}

func activityToModel(a economy.Activity) (model.Activity, error) {
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return model.Activity{}, fmt.Errorf("marshal payload for %s: %w", a.ID, err)
	}
	return model.Activity{
		ID:           a.ID,
		Type:         string(a.Type),
		Citizen:      a.Citizen,
		FromBuilding: a.FromBuilding,
		ToBuilding:   a.ToBuilding,
		Payload:      payload,
		Status:       string(a.Status),
		Reason:       a.Reason,
		StartDate:    a.StartDate,
		EndDate:      a.EndDate,
		ChainID:      a.ChainID,
		ChainIndex:   a.ChainIndex,
	}, nil
}

func activityFromModel(m model.Activity) (economy.Activity, error) {
	var payload economy.ActivityPayload
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &payload); err != nil {
			return economy.Activity{}, fmt.Errorf("unmarshal payload for %s: %w", m.ID, err)
		}
	}
	return economy.Activity{
		ID:           m.ID,
		Type:         economy.ActivityType(m.Type),
		Citizen:      m.Citizen,
		FromBuilding: m.FromBuilding,
		ToBuilding:   m.ToBuilding,
		Payload:      payload,
		Status:       economy.ActivityStatus(m.Status),
		Reason:       m.Reason,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		ChainID:      m.ChainID,
		ChainIndex:   m.ChainIndex,
	}, nil
}

func activitiesFromModels(rows []model.Activity) ([]economy.Activity, error) {
	out := make([]economy.Activity, 0, len(rows))
	for _, m := range rows {
		a, err := activityFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
