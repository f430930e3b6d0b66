package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Статус оплаты ведёт платёжный контур, ядро его только читает.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Допустимые переходы статусов брони. cancelled и completed терминальные.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
}

// ActiveBookingStatuses: статусы, которые занимают слот.
func ActiveBookingStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusPending, BookingStatusConfirmed}
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// bookings
//
// Дата хранится как YYYY-MM-DD, время как HH:MM. На (temple_id, booking_date,
// booking_time) среди активных броней стоит частичный уникальный индекс
// ux_bookings_active_slot, см. AutoMigrate.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TempleID  uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_temple_date" json:"temple_id"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"service_id"`

	BookingDate string `gorm:"type:varchar(10);not null;index:idx_bookings_temple_date" json:"booking_date"`
	BookingTime string `gorm:"type:varchar(5);not null" json:"booking_time"`

	// Снимок цены на момент бронирования, дальше от Service не зависит.
	Amount float64 `gorm:"type:numeric(12,2);not null" json:"amount"`

	SpecialRequests string `gorm:"type:text" json:"special_requests,omitempty"`
	ContactPhone    string `gorm:"type:varchar(32)" json:"contact_phone,omitempty"`

	Status        BookingStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(32);not null" json:"payment_status"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
