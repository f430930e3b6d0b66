package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/temple-booking/internal/db/dbtest"
	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/repository"
	"github.com/Leganyst/temple-booking/internal/service"
)

// monday: понедельник, day_of_week = 1.
const monday = "2025-01-06"

type fixture struct {
	db     *gorm.DB
	store  *repository.Store
	temple *model.Temple
	user   service.Caller
	other  service.Caller

	availability *service.AvailabilityService
	bookings     *service.BookingService
	basket       *service.BasketService
	checkout     *service.CheckoutService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	store := repository.NewStore(db)

	temple := dbtest.Temple(t, db, "Sri Ranganathaswamy")
	dbtest.Timing(t, db, temple.ID, 1, 9, 0, 11, 0)

	return &fixture{
		db:           db,
		store:        store,
		temple:       temple,
		user:         service.Caller{UserID: dbtest.User(t, db, "devotee").ID},
		other:        service.Caller{UserID: dbtest.User(t, db, "other").ID},
		availability: service.NewAvailabilityService(store, nil, 0, nil),
		bookings:     service.NewBookingService(store, nil, 0, nil),
		basket:       service.NewBasketService(store, 0, nil),
		checkout:     service.NewCheckoutService(store, nil, 0, nil),
	}
}

func (f *fixture) book(t *testing.T, caller service.Caller, svc *model.Service, clock string) *repository.BookingDetails {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), caller, service.CreateBookingInput{
		TempleID:    f.temple.ID,
		ServiceID:   svc.ID,
		BookingDate: monday,
		BookingTime: clock,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) countBookings(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Booking{}).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }

func requireKind(t *testing.T, err error, kind service.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, service.KindOf(err), "error: %v", err)
}
