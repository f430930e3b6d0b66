package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/temple-booking/internal/model"
)

type EventRepository interface {
	Append(ctx context.Context, event *model.Event) error
	// ListUnpublished отдаёт ещё не опубликованные события в порядке записи.
	ListUnpublished(ctx context.Context, limit int) ([]model.Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Append(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormEventRepository) ListUnpublished(ctx context.Context, limit int) ([]model.Event, error) {
	var events []model.Event
	q := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormEventRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id IN ?", ids).
		Update("published_at", at).Error
}
