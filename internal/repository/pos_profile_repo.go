package repository

import (
	"context"

	"klikpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type POSProfileRepository interface {
	Create(ctx context.Context, p *model.POSProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.POSProfile, error)
	FindByName(ctx context.Context, name string) (*model.POSProfile, error)
}

type posProfileRepo struct{ db *gorm.DB }

func NewPOSProfileRepository(db *gorm.DB) POSProfileRepository { return &posProfileRepo{db: db} }

func (r *posProfileRepo) Create(ctx context.Context, p *model.POSProfile) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *posProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.POSProfile, error) {
	var p model.POSProfile
	err := r.db.WithContext(ctx).
		Preload("PaymentModes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&p).Error
	return &p, err
}

func (r *posProfileRepo) FindByName(ctx context.Context, name string) (*model.POSProfile, error) {
	var p model.POSProfile
	err := r.db.WithContext(ctx).
		Preload("PaymentModes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("name = ?", name).
		First(&p).Error
	return &p, err
}
