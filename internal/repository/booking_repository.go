package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/temple-booking/internal/model"
)

// BookingDetails: бронь вместе с отображаемыми полями храма, услуги и пользователя.
type BookingDetails struct {
	model.Booking

	TempleName  string `json:"temple_name"`
	ServiceName string `json:"service_name"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
}

// StatusTotal: агрегат броней пользователя по одному статусу.
type StatusTotal struct {
	Status model.BookingStatus
	Count  int64
	Amount float64
}

type BookingRepository interface {
	// Создать новое бронирование. Занятый активной бронью слот даёт gorm.ErrDuplicatedKey.
	Create(ctx context.Context, booking *model.Booking) error
	// Получить бронирование пользователя по ID.
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Booking, error)
	// Бронь пользователя с отображаемыми полями.
	GetDetailed(ctx context.Context, id, userID uuid.UUID) (*BookingDetails, error)
	// Список броней пользователя с фильтром по статусу и пагинацией.
	ListDetailedByUser(ctx context.Context, userID uuid.UUID, status model.BookingStatus, limit, offset int) ([]BookingDetails, int64, error)
	// Условный переход статуса: обновляет только если текущий статус равен from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, cancelledAt *time.Time) (bool, error)
	// Есть ли активная бронь на слот.
	ExistsActive(ctx context.Context, templeID uuid.UUID, date, clock string) (bool, error)
	// Времена всех активных броней храма на дату, одним запросом.
	ListActiveTimes(ctx context.Context, templeID uuid.UUID, date string) ([]string, error)
	// Агрегаты по статусам для пользователя.
	StatsByUser(ctx context.Context, userID uuid.UUID) ([]StatusTotal, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) detailed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.*,
			temples.name AS temple_name,
			services.name AS service_name,
			users.display_name AS user_name,
			users.email AS user_email`).
		Joins("LEFT JOIN temples ON temples.id = bookings.temple_id").
		Joins("LEFT JOIN services ON services.id = bookings.service_id").
		Joins("LEFT JOIN users ON users.id = bookings.user_id")
}

func (r *GormBookingRepository) GetDetailed(ctx context.Context, id, userID uuid.UUID) (*BookingDetails, error) {
	var d BookingDetails
	tx := r.detailed(ctx).
		Where("bookings.id = ? AND bookings.user_id = ?", id, userID).
		Limit(1).
		Scan(&d)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *GormBookingRepository) ListDetailedByUser(
	ctx context.Context,
	userID uuid.UUID,
	status model.BookingStatus,
	limit, offset int,
) ([]BookingDetails, int64, error) {
	var (
		bookings []BookingDetails
		total    int64
	)

	count := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("user_id = ?", userID)
	if status != "" {
		count = count.Where("status = ?", status)
	}
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.detailed(ctx).Where("bookings.user_id = ?", userID)
	if status != "" {
		q = q.Where("bookings.status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	err := q.Order("bookings.booking_date DESC, bookings.booking_time DESC, bookings.created_at DESC").
		Scan(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	if bookings == nil {
		bookings = []BookingDetails{}
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to model.BookingStatus,
	cancelledAt *time.Time,
) (bool, error) {
	update := map[string]any{
		"status": to,
	}
	if cancelledAt != nil {
		update["cancelled_at"] = *cancelledAt
	}
	tx := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(update)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *GormBookingRepository) activeSlot(ctx context.Context, templeID uuid.UUID, date string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("temple_id = ? AND booking_date = ?", templeID, date).
		Where("status IN ?", model.ActiveBookingStatuses())
}

func (r *GormBookingRepository) ExistsActive(ctx context.Context, templeID uuid.UUID, date, clock string) (bool, error) {
	var n int64
	err := r.activeSlot(ctx, templeID, date).
		Where("booking_time = ?", clock).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormBookingRepository) ListActiveTimes(ctx context.Context, templeID uuid.UUID, date string) ([]string, error) {
	var times []string
	err := r.activeSlot(ctx, templeID, date).
		Order("booking_time ASC").
		Pluck("booking_time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *GormBookingRepository) StatsByUser(ctx context.Context, userID uuid.UUID) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
