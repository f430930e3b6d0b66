package service_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/temple-booking/internal/db/dbtest"
	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/repository"
	"github.com/Leganyst/temple-booking/internal/service"
)

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	db := dbtest.OpenFile(t)
	store := repository.NewStore(db)
	temple := dbtest.Temple(t, db, "Sri Ranganathaswamy")
	dbtest.Timing(t, db, temple.ID, 1, 9, 0, 11, 0)
	svc := dbtest.Service(t, db, temple.ID, "Archana", 100)
	bookings := service.NewBookingService(store, nil, 0, nil)

	const workers = 8
	callers := make([]service.Caller, workers)
	for i := range callers {
		callers[i] = service.Caller{UserID: dbtest.User(t, db, fmt.Sprintf("devotee-%d", i)).ID}
	}

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, workers)
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = bookings.Create(context.Background(), callers[i], service.CreateBookingInput{
				TempleID: temple.ID, ServiceID: svc.ID, BookingDate: monday, BookingTime: "10:00",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	var created, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case service.IsKind(err, service.KindConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)

	var active int64
	require.NoError(t, db.Model(&model.Booking{}).
		Where("temple_id = ? AND status IN ?", temple.ID, model.ActiveBookingStatuses()).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)
}

// Соперник вставляет бронь на тот же слот уже после ConflictGuard, но до
// INSERT. Решает уникальный индекс, и ответ всё равно Conflict.
func TestCreateBooking_IndexDecidesWhenGuardLosesRace(t *testing.T) {
	f := newFixture(t)
	svc := dbtest.Service(t, f.db, f.temple.ID, "Archana", 100)

	var fired atomic.Bool
	err := f.db.Callback().Create().Before("gorm:create").Register("test:rival_booking", func(tx *gorm.DB) {
		b, ok := tx.Statement.Dest.(*model.Booking)
		if !ok || !fired.CompareAndSwap(false, true) {
			return
		}
		rival := *b
		rival.ID = uuid.New()
		rival.UserID = f.other.UserID
		rival.Status = model.BookingStatusConfirmed
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error; err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.db.Callback().Create().Remove("test:rival_booking") })

	_, err = f.bookings.Create(context.Background(), f.user, service.CreateBookingInput{
		TempleID: f.temple.ID, ServiceID: svc.ID, BookingDate: monday, BookingTime: "10:00",
	})
	require.True(t, fired.Load())
	requireKind(t, err, service.KindConflict)

	// транзакция откатилась целиком, вместе с соперником и событием
	assert.Zero(t, f.countBookings(t))
	var events int64
	require.NoError(t, f.db.Model(&model.Event{}).Count(&events).Error)
	assert.Zero(t, events)
}
