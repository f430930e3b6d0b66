package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DevoteeDetail: данные человека, за которого проводится служба.
type DevoteeDetail struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// basket_items: черновик бронирования пользователя.
// На пару (user_id, service_id) не больше одной строки.
type BasketItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_basket_user_service" json:"user_id"`
	TempleID  uuid.UUID `gorm:"type:uuid;not null" json:"temple_id"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_basket_user_service" json:"service_id"`

	Quantity int `gorm:"not null" json:"quantity"`

	BookingDate string `gorm:"type:varchar(10);not null" json:"booking_date"`
	BookingTime string `gorm:"type:varchar(5);not null" json:"booking_time"`

	SpecialRequests string                             `gorm:"type:text" json:"special_requests,omitempty"`
	DevoteeDetails  datatypes.JSONSlice[DevoteeDetail] `json:"devotee_details"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (b *BasketItem) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	if b.DevoteeDetails == nil {
		b.DevoteeDetails = datatypes.JSONSlice[DevoteeDetail]{}
	}
	return nil
}
