package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"rialto/internal/adapter/repo/gorm/model"
	"rialto/internal/domain/economy"
)

type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return NotificationRepo{db: db}
}

func (r NotificationRepo) Append(ctx context.Context, n economy.Notification) error {
	m := model.Notification{
		ID:      n.ID,
		Citizen: n.Citizen,
		Kind:    n.Kind,
		Body:    n.Body,
		At:      n.At,
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}
