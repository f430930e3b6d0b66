package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/temple-booking/internal/db/dbtest"
	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/service"
)

func TestComputeSlots_OpenDay(t *testing.T) {
	f := newFixture(t)

	res, err := f.availability.ComputeSlots(context.Background(), f.temple.ID, nil, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, res.Slots)
	assert.Empty(t, res.Message)
}

func TestComputeSlots_ExcludesActiveBookings(t *testing.T) {
	f := newFixture(t)
	svc := dbtest.Service(t, f.db, f.temple.ID, "Archana", 100)
	f.book(t, f.user, svc, "09:30")

	res, err := f.availability.ComputeSlots(context.Background(), f.temple.ID, &svc.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, res.Slots)
}

func TestComputeSlots_CancelledBookingFreesSlot(t *testing.T) {
	f := newFixture(t)
	svc := dbtest.Service(t, f.db, f.temple.ID, "Archana", 100)
	b := f.book(t, f.user, svc, "09:30")

	_, err := f.bookings.UpdateStatus(context.Background(), f.user, b.ID, "cancelled")
	require.NoError(t, err)

	res, err := f.availability.ComputeSlots(context.Background(), f.temple.ID, nil, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, res.Slots)
}

func TestComputeSlots_ClosedDay(t *testing.T) {
	f := newFixture(t)

	// 2025-01-07: вторник, расписания нет
	res, err := f.availability.ComputeSlots(context.Background(), f.temple.ID, nil, "2025-01-07")
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.NotNil(t, res.Slots)
	assert.Equal(t, service.MessageTempleClosed, res.Message)
}

func TestComputeSlots_InactiveTiming(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&model.Timing{}).
		Where("temple_id = ?", f.temple.ID).
		Update("is_active", false).Error)

	res, err := f.availability.ComputeSlots(context.Background(), f.temple.ID, nil, monday)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Equal(t, service.MessageTempleClosed, res.Message)
}

func TestComputeSlots_UnavailableService(t *testing.T) {
	f := newFixture(t)
	svc := dbtest.Service(t, f.db, f.temple.ID, "Homam", 1000)
	require.NoError(t, f.db.Model(svc).Update("is_available", false).Error)

	res, err := f.availability.ComputeSlots(context.Background(), f.temple.ID, &svc.ID, monday)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Equal(t, service.MessageServiceUnavailable, res.Message)

	unknown := uuid.New()
	res, err = f.availability.ComputeSlots(context.Background(), f.temple.ID, &unknown, monday)
	require.NoError(t, err)
	assert.Equal(t, service.MessageServiceUnavailable, res.Message)
}

func TestComputeSlots_UnalignedCloseTruncates(t *testing.T) {
	f := newFixture(t)
	other := dbtest.Temple(t, f.db, "Small shrine")
	dbtest.Timing(t, f.db, other.ID, 1, 9, 0, 10, 15)

	res, err := f.availability.ComputeSlots(context.Background(), other.ID, nil, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, res.Slots)
}

func TestComputeSlots_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.availability.ComputeSlots(context.Background(), f.temple.ID, nil, "06-01-2025")
	requireKind(t, err, service.KindValidation)

	_, err = f.availability.ComputeSlots(context.Background(), uuid.Nil, nil, monday)
	requireKind(t, err, service.KindValidation)
}

type memCache struct {
	data        map[string][]string
	versions    map[string]int64
	invalidated []string
	beforeSet   func()
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]string{}, versions: map[string]int64{}}
}

func (m *memCache) key(id uuid.UUID, date string) string { return id.String() + "|" + date }

func (m *memCache) dataKey(id uuid.UUID, date string, ver int64) string {
	return fmt.Sprintf("%s|%d", m.key(id, date), ver)
}

func (m *memCache) Get(_ context.Context, id uuid.UUID, date string) ([]string, int64, bool, error) {
	ver := m.versions[m.key(id, date)]
	v, ok := m.data[m.dataKey(id, date, ver)]
	return v, ver, ok, nil
}

func (m *memCache) Set(_ context.Context, id uuid.UUID, date string, ver int64, times []string) error {
	if hook := m.beforeSet; hook != nil {
		m.beforeSet = nil
		hook()
	}
	m.data[m.dataKey(id, date, ver)] = times
	return nil
}

func (m *memCache) Invalidate(_ context.Context, id uuid.UUID, date string) error {
	m.versions[m.key(id, date)]++
	m.invalidated = append(m.invalidated, m.key(id, date))
	return nil
}

func TestComputeSlots_CacheInvalidatedOnBooking(t *testing.T) {
	f := newFixture(t)
	c := newMemCache()
	availability := service.NewAvailabilityService(f.store, c, 0, nil)
	bookings := service.NewBookingService(f.store, c, 0, nil)
	svc := dbtest.Service(t, f.db, f.temple.ID, "Archana", 100)

	res, err := availability.ComputeSlots(context.Background(), f.temple.ID, nil, monday)
	require.NoError(t, err)
	require.Len(t, res.Slots, 4)
	require.Contains(t, c.data, c.dataKey(f.temple.ID, monday, 0))

	_, err = bookings.Create(context.Background(), f.user, service.CreateBookingInput{
		TempleID: f.temple.ID, ServiceID: svc.ID, BookingDate: monday, BookingTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{c.key(f.temple.ID, monday)}, c.invalidated)

	res, err = availability.ComputeSlots(context.Background(), f.temple.ID, nil, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:30"}, res.Slots)
}

// Бронь проходит между чтением базы и записью в кэш. Устаревший список
// ложится под старую версию, следующий запрос видит бронь.
func TestComputeSlots_FillRacingInvalidateIsNotServed(t *testing.T) {
	f := newFixture(t)
	c := newMemCache()
	availability := service.NewAvailabilityService(f.store, c, 0, nil)
	bookings := service.NewBookingService(f.store, c, 0, nil)
	svc := dbtest.Service(t, f.db, f.temple.ID, "Archana", 100)

	c.beforeSet = func() {
		_, err := bookings.Create(context.Background(), f.user, service.CreateBookingInput{
			TempleID: f.temple.ID, ServiceID: svc.ID, BookingDate: monday, BookingTime: "09:30",
		})
		require.NoError(t, err)
	}

	res, err := availability.ComputeSlots(context.Background(), f.temple.ID, nil, monday)
	require.NoError(t, err)
	require.Len(t, res.Slots, 4)

	res, err = availability.ComputeSlots(context.Background(), f.temple.ID, nil, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, res.Slots)
}
