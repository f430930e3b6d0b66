package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события аудита. Значение же служит типом сообщения при публикации.
type EventType string

const (
	EventTypeBookingCreated   EventType = "booking.created"
	EventTypeBookingCancelled EventType = "booking.cancelled"
	EventTypeBasketCheckedOut EventType = "basket.checked_out"
)

// events: журнал аудита, он же outbox. Пишется в одной транзакции
// с изменением, ретранслятор публикует строки с пустым published_at.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	BookingID *uuid.UUID `gorm:"type:uuid;index"`

	Details datatypes.JSON

	PublishedAt *time.Time `gorm:"index"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
