package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// timings: часы работы храма по дням недели (0 = воскресенье).
// Не больше одной строки на пару (храм, день недели).
type Timing struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TempleID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_timings_temple_day" json:"temple_id"`
	DayOfWeek int       `gorm:"not null;uniqueIndex:ux_timings_temple_day" json:"day_of_week"`

	OpenTime  datatypes.Time `gorm:"not null" json:"open_time"`
	CloseTime datatypes.Time `gorm:"not null" json:"close_time"`

	IsActive bool `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Temple *Temple `gorm:"foreignKey:TempleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (t *Timing) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// Open / Close: смещения от полуночи.
func (t *Timing) Open() time.Duration  { return time.Duration(t.OpenTime) }
func (t *Timing) Close() time.Duration { return time.Duration(t.CloseTime) }
