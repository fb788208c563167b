package repository

import (
	"context"
	"time"

	"klikpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.NotificationLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.NotificationLog, error)
	Update(ctx context.Context, n *model.NotificationLog) error
	// ListPendingRetries returns failed sends whose next attempt is due.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.NotificationLog, error)
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.NotificationLog) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.NotificationLog, error) {
	var n model.NotificationLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	return &n, err
}

func (r *notificationRepo) Update(ctx context.Context, n *model.NotificationLog) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *notificationRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.NotificationLog, error) {
	var logs []model.NotificationLog
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.NotificationFailed, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
