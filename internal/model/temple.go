package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// temples: храмы; справочник ведёт внешняя админка, ядро только читает.
type Temple struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name string `gorm:"type:varchar(255);not null" json:"name"`
	City string `gorm:"type:varchar(128)" json:"city,omitempty"`

	IsActive bool `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (t *Temple) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
