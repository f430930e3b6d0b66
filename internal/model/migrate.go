package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Частичный уникальный индекс: одна активная бронь на слот храма.
// Синтаксис одинаково понимают Postgres и SQLite.
const activeSlotIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_active_slot
	ON bookings (temple_id, booking_date, booking_time)
	WHERE status IN ('pending', 'confirmed')`

// AutoMigrate выполняет миграцию всех сущностей ядра бронирования.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Temple{},
		&Service{},
		&Timing{},
		&User{},
		&Booking{},
		&BasketItem{},
		&Event{},
	); err != nil {
		return err
	}
	if err := db.Exec(activeSlotIndexSQL).Error; err != nil {
		return fmt.Errorf("create active slot index: %w", err)
	}
	return nil
}
