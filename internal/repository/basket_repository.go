package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/temple-booking/internal/model"
)

// BasketRow: позиция корзины с текущими ценой и доступностью услуги.
type BasketRow struct {
	model.BasketItem

	TempleName  string
	ServiceName string
	Price       float64
	IsAvailable bool
}

type BasketRepository interface {
	// Upsert вставляет позицию или, если пара (user_id, service_id) уже есть,
	// перезаписывает её изменяемые поля. Возвращает актуальную строку.
	Upsert(ctx context.Context, item *model.BasketItem) (*model.BasketItem, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.BasketItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.BasketItem, error)
	ListWithServices(ctx context.Context, userID uuid.UUID) ([]BasketRow, error)
	Update(ctx context.Context, item *model.BasketItem) error
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
	ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type GormBasketRepository struct {
	db *gorm.DB
}

func NewGormBasketRepository(db *gorm.DB) *GormBasketRepository {
	return &GormBasketRepository{db: db}
}

var basketMutableColumns = []string{
	"temple_id",
	"quantity",
	"booking_date",
	"booking_time",
	"special_requests",
	"devotee_details",
	"updated_at",
}

func (r *GormBasketRepository) Upsert(ctx context.Context, item *model.BasketItem) (*model.BasketItem, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "service_id"}},
			DoUpdates: clause.AssignmentColumns(basketMutableColumns),
		}).
		Create(item).Error
	if err != nil {
		return nil, err
	}

	// при конфликте ID в item сгенерирован заново, поэтому перечитываем
	var stored model.BasketItem
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND service_id = ?", item.UserID, item.ServiceID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormBasketRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.BasketItem, error) {
	var item model.BasketItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormBasketRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.BasketItem, error) {
	var items []model.BasketItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormBasketRepository) ListWithServices(ctx context.Context, userID uuid.UUID) ([]BasketRow, error) {
	var rows []BasketRow
	err := r.db.WithContext(ctx).
		Table("basket_items").
		Select(`basket_items.*,
			temples.name AS temple_name,
			services.name AS service_name,
			services.price AS price,
			services.is_available AS is_available`).
		Joins("JOIN services ON services.id = basket_items.service_id").
		Joins("LEFT JOIN temples ON temples.id = basket_items.temple_id").
		Where("basket_items.user_id = ?", userID).
		Order("basket_items.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormBasketRepository) Update(ctx context.Context, item *model.BasketItem) error {
	return r.db.WithContext(ctx).
		Model(&model.BasketItem{}).
		Where("id = ? AND user_id = ?", item.ID, item.UserID).
		Updates(map[string]any{
			"quantity":         item.Quantity,
			"booking_date":     item.BookingDate,
			"booking_time":     item.BookingTime,
			"special_requests": item.SpecialRequests,
			"devotee_details":  item.DevoteeDetails,
		}).Error
}

func (r *GormBasketRepository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.BasketItem{})
	return tx.RowsAffected, tx.Error
}

func (r *GormBasketRepository) ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.BasketItem{})
	return tx.RowsAffected, tx.Error
}
