package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// services: бронируемые услуги храма (пуджа, арчана, пожертвование).
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TempleID uuid.UUID `gorm:"type:uuid;not null;index" json:"temple_id"`

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Price float64 `gorm:"type:numeric(12,2);not null" json:"price"`

	// Флаг доступности меняет админка храма.
	IsAvailable bool `gorm:"not null;index" json:"is_available"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Temple *Temple `gorm:"foreignKey:TempleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
