package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/temple-booking/internal/model"
)

type TimingRepository interface {
	// GetByTempleAndDay возвращает часы работы храма на день недели (0 = воскресенье).
	GetByTempleAndDay(ctx context.Context, templeID uuid.UUID, dayOfWeek int) (*model.Timing, error)
}

type GormTimingRepository struct {
	db *gorm.DB
}

func NewGormTimingRepository(db *gorm.DB) *GormTimingRepository {
	return &GormTimingRepository{db: db}
}

func (r *GormTimingRepository) GetByTempleAndDay(ctx context.Context, templeID uuid.UUID, dayOfWeek int) (*model.Timing, error) {
	var t model.Timing
	err := r.db.WithContext(ctx).
		Where("temple_id = ? AND day_of_week = ?", templeID, dayOfWeek).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}
