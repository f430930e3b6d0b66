package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/temple-booking/internal/calendar"
	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/repository"
)

type CreateBookingInput struct {
	TempleID        uuid.UUID
	ServiceID       uuid.UUID
	BookingDate     string
	BookingTime     string
	SpecialRequests string
	ContactPhone    string
}

type ListBookingsFilter struct {
	Status string
	Limit  int
	Offset int
}

// BookingStats: сводка по броням вызывающего.
type BookingStats struct {
	TotalBookings int64   `json:"total_bookings"`
	Pending       int64   `json:"pending"`
	Confirmed     int64   `json:"confirmed"`
	Cancelled     int64   `json:"cancelled"`
	Completed     int64   `json:"completed"`
	TotalSpent    float64 `json:"total_spent"`
}

// BookingService создаёт, читает и отменяет брони.
type BookingService struct {
	store       *repository.Store
	cache       BookedTimesCache
	granularity time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewBookingService(
	store *repository.Store,
	cache BookedTimesCache,
	granularity time.Duration,
	logger *slog.Logger,
) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		store:       store,
		cache:       cacheOrNoop(cache),
		granularity: granularityOrDefault(granularity),
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// slotRequest: нормализованный запрос на один слот.
type slotRequest struct {
	TempleID        uuid.UUID
	ServiceID       uuid.UUID
	Date            string
	Clock           string
	Quantity        int
	SpecialRequests string
	ContactPhone    string
}

func normalizeSlot(templeID, serviceID uuid.UUID, date, clock string) (string, string, error) {
	if templeID == uuid.Nil || serviceID == uuid.Nil || strings.TrimSpace(date) == "" || strings.TrimSpace(clock) == "" {
		return "", "", newError(KindValidation, "temple_id, service_id, booking_date and booking_time are required")
	}
	d, err := calendar.NormalizeDate(date)
	if err != nil {
		return "", "", newError(KindValidation, err.Error())
	}
	c, err := calendar.NormalizeClock(clock)
	if err != nil {
		return "", "", newError(KindValidation, err.Error())
	}
	return d, c, nil
}

// createBooking общий для прямого бронирования и checkout.
// Должен вызываться внутри транзакции tx.
func createBooking(ctx context.Context, tx *repository.Store, userID uuid.UUID, req slotRequest, step time.Duration) (*model.Booking, error) {
	svc, err := tx.Services.GetForTemple(ctx, req.TempleID, req.ServiceID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, "service not found or unavailable")
		}
		return nil, internalError("load service", err)
	}
	if !svc.IsAvailable {
		return nil, newError(KindNotFound, "service not found or unavailable")
	}
	if err := requireGridSlot(ctx, tx, req.TempleID, req.Date, req.Clock, step); err != nil {
		return nil, err
	}

	taken, err := NewConflictGuard(tx.Bookings).HasConflict(ctx, req.TempleID, req.Date, req.Clock)
	if err != nil {
		return nil, internalError("check slot conflict", err)
	}
	if taken {
		return nil, newError(KindConflict, "time slot is already booked")
	}

	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	booking := &model.Booking{
		UserID:          userID,
		TempleID:        req.TempleID,
		ServiceID:       req.ServiceID,
		BookingDate:     req.Date,
		BookingTime:     req.Clock,
		Amount:          roundMoney(svc.Price * float64(qty)),
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		ContactPhone:    calendar.NormalizePhone(req.ContactPhone),
		Status:          model.BookingStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
	}
	if err := tx.Bookings.Create(ctx, booking); err != nil {
		// проверка выше могла проиграть гонку, индекс её страхует
		if repository.IsUniqueViolation(err) {
			return nil, newError(KindConflict, "time slot is already booked")
		}
		return nil, internalError("create booking", err)
	}

	err = appendEvent(ctx, tx, model.EventTypeBookingCreated, userID, &booking.ID, map[string]any{
		"temple_id":    booking.TempleID,
		"service_id":   booking.ServiceID,
		"booking_date": booking.BookingDate,
		"booking_time": booking.BookingTime,
		"amount":       booking.Amount,
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) Create(ctx context.Context, caller Caller, in CreateBookingInput) (*repository.BookingDetails, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	date, clock, err := normalizeSlot(in.TempleID, in.ServiceID, in.BookingDate, in.BookingTime)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		booking, err = createBooking(ctx, tx, caller.UserID, slotRequest{
			TempleID:        in.TempleID,
			ServiceID:       in.ServiceID,
			Date:            date,
			Clock:           clock,
			Quantity:        1,
			SpecialRequests: in.SpecialRequests,
			ContactPhone:    in.ContactPhone,
		}, s.granularity)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, booking.TempleID, booking.BookingDate)

	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"user_id", caller.UserID,
		"temple_id", booking.TempleID,
		"date", booking.BookingDate,
		"time", booking.BookingTime,
	)
	return s.Get(ctx, caller, booking.ID)
}

func (s *BookingService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*repository.BookingDetails, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	d, err := s.store.Bookings.GetDetailed(ctx, id, caller.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, "booking not found")
		}
		return nil, internalError("load booking", err)
	}
	return d, nil
}

func (s *BookingService) ListMine(ctx context.Context, caller Caller, f ListBookingsFilter) ([]repository.BookingDetails, calendar.PageInfo, error) {
	if err := caller.validate(); err != nil {
		return nil, calendar.PageInfo{}, err
	}
	status := model.BookingStatus(strings.TrimSpace(f.Status))
	if status != "" && !status.Valid() {
		return nil, calendar.PageInfo{}, newError(KindValidation, "invalid status value")
	}
	limit, offset := calendar.NormalizePage(f.Limit, f.Offset)

	items, total, err := s.store.Bookings.ListDetailedByUser(ctx, caller.UserID, status, limit, offset)
	if err != nil {
		return nil, calendar.PageInfo{}, internalError("list bookings", err)
	}
	return items, calendar.NewPageInfo(total, limit, offset), nil
}

// UpdateStatus разрешает владельцу только отмену.
// Любой другой целевой статус даёт Forbidden независимо от текущего.
func (s *BookingService) UpdateStatus(ctx context.Context, caller Caller, id uuid.UUID, newStatus string) (*repository.BookingDetails, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	target := model.BookingStatus(strings.TrimSpace(newStatus))
	if !target.Valid() {
		return nil, newError(KindValidation, "invalid status value")
	}
	if target != model.BookingStatusCancelled {
		return nil, newError(KindForbidden, "only cancellation is allowed")
	}

	var booking *model.Booking
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err := tx.Bookings.GetByIDForUser(ctx, id, caller.UserID)
		if err != nil {
			if repository.IsNotFound(err) {
				return newError(KindNotFound, "booking not found")
			}
			return internalError("load booking", err)
		}
		switch {
		case b.Status == model.BookingStatusCompleted:
			return newError(KindInvalidState, "completed booking cannot be cancelled")
		case b.Status.Terminal():
			return newError(KindInvalidState, "booking is already "+string(b.Status))
		case !b.Status.CanTransitionTo(target):
			return newError(KindInvalidState, "booking cannot be cancelled")
		}

		now := s.now()
		ok, err := tx.Bookings.TransitionStatus(ctx, b.ID, b.Status, target, &now)
		if err != nil {
			return internalError("update booking status", err)
		}
		if !ok {
			return newError(KindInvalidState, "booking status changed concurrently")
		}
		booking = b
		return appendEvent(ctx, tx, model.EventTypeBookingCancelled, caller.UserID, &b.ID, map[string]any{
			"temple_id":    b.TempleID,
			"booking_date": b.BookingDate,
			"booking_time": b.BookingTime,
			"from_status":  b.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, booking.TempleID, booking.BookingDate)

	s.logger.Info("booking cancelled", "booking_id", booking.ID, "user_id", caller.UserID)
	return s.Get(ctx, caller, id)
}

func (s *BookingService) Stats(ctx context.Context, caller Caller) (*BookingStats, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	rows, err := s.store.Bookings.StatsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, internalError("booking stats", err)
	}

	stats := &BookingStats{}
	for _, r := range rows {
		stats.TotalBookings += r.Count
		switch r.Status {
		case model.BookingStatusPending:
			stats.Pending = r.Count
		case model.BookingStatusConfirmed:
			stats.Confirmed = r.Count
			stats.TotalSpent += r.Amount
		case model.BookingStatusCancelled:
			stats.Cancelled = r.Count
		case model.BookingStatusCompleted:
			stats.Completed = r.Count
			stats.TotalSpent += r.Amount
		}
	}
	stats.TotalSpent = roundMoney(stats.TotalSpent)
	return stats, nil
}

func (s *BookingService) invalidate(ctx context.Context, templeID uuid.UUID, date string) {
	if err := s.cache.Invalidate(ctx, templeID, date); err != nil {
		s.logger.Warn("slot cache invalidate failed", "temple_id", templeID, "date", date, "error", err)
	}
}

func appendEvent(
	ctx context.Context,
	tx *repository.Store,
	eventType model.EventType,
	userID uuid.UUID,
	bookingID *uuid.UUID,
	details map[string]any,
) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return internalError("encode event", err)
	}
	uid := userID
	ev := &model.Event{
		EventType: eventType,
		UserID:    &uid,
		BookingID: bookingID,
		Details:   datatypes.JSON(payload),
	}
	if err := tx.Events.Append(ctx, ev); err != nil {
		return internalError("append event", err)
	}
	return nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
