package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Store собирает репозитории поверх одного *gorm.DB. Внутри Transaction
// все репозитории работают на одной транзакции.
type Store struct {
	db *gorm.DB

	Timings  TimingRepository
	Services ServiceRepository
	Bookings BookingRepository
	Basket   BasketRepository
	Events   EventRepository
	Users    UserRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Timings:  NewGormTimingRepository(db),
		Services: NewGormServiceRepository(db),
		Bookings: NewGormBookingRepository(db),
		Basket:   NewGormBasketRepository(db),
		Events:   NewGormEventRepository(db),
		Users:    NewGormUserRepository(db),
	}
}

// Transaction выполняет fn в одной транзакции; ошибка из fn откатывает всё.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation распознаёт нарушение уникального индекса. Помимо
// gorm.ErrDuplicatedKey (TranslateError) проверяем текст драйвера, если
// соединение открыто без трансляции ошибок.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value")
}
