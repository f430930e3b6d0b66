package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// users: учётки ведёт сервис аутентификации; здесь только чтение
// для проверки вызывающего и для отображаемых полей брони.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DisplayName  string `gorm:"type:varchar(255)" json:"display_name"`
	Email        string `gorm:"type:varchar(255);index" json:"email"`
	ContactPhone string `gorm:"type:varchar(32)" json:"contact_phone,omitempty"`

	IsActive bool `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
