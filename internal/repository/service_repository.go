package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/temple-booking/internal/model"
)

type ServiceRepository interface {
	// GetForTemple находит услугу только если она принадлежит храму.
	GetForTemple(ctx context.Context, templeID, serviceID uuid.UUID) (*model.Service, error)
}

type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) GetForTemple(ctx context.Context, templeID, serviceID uuid.UUID) (*model.Service, error) {
	var s model.Service
	err := r.db.WithContext(ctx).
		Where("id = ? AND temple_id = ?", serviceID, templeID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
