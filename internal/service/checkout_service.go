package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/repository"
)

const DefaultPaymentMethod = "online"

type CheckoutResult struct {
	Bookings      []model.Booking `json:"bookings"`
	TotalAmount   float64         `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
}

// CheckoutService оформляет корзину. Вся корзина превращается в брони
// одной транзакцией: при ошибке на любой позиции не создаётся ни одной
// брони, а корзина остаётся как была.
type CheckoutService struct {
	store       *repository.Store
	cache       BookedTimesCache
	granularity time.Duration
	logger      *slog.Logger
}

func NewCheckoutService(
	store *repository.Store,
	cache BookedTimesCache,
	granularity time.Duration,
	logger *slog.Logger,
) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{
		store:       store,
		cache:       cacheOrNoop(cache),
		granularity: granularityOrDefault(granularity),
		logger:      logger,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, caller Caller, paymentMethod string) (*CheckoutResult, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	method := strings.TrimSpace(paymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	result := &CheckoutResult{Bookings: []model.Booking{}, PaymentMethod: method}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		items, err := tx.Basket.ListByUser(ctx, caller.UserID)
		if err != nil {
			return internalError("load basket", err)
		}
		if len(items) == 0 {
			return newError(KindValidation, "basket is empty")
		}

		for _, item := range items {
			b, err := createBooking(ctx, tx, caller.UserID, slotRequest{
				TempleID:        item.TempleID,
				ServiceID:       item.ServiceID,
				Date:            item.BookingDate,
				Clock:           item.BookingTime,
				Quantity:        item.Quantity,
				SpecialRequests: item.SpecialRequests,
			}, s.granularity)
			if err != nil {
				return blockingItem(item.ID, err)
			}
			result.Bookings = append(result.Bookings, *b)
			result.TotalAmount += b.Amount
		}
		result.TotalAmount = roundMoney(result.TotalAmount)

		if _, err := tx.Basket.ClearByUser(ctx, caller.UserID); err != nil {
			return internalError("clear basket", err)
		}

		ids := make([]uuid.UUID, 0, len(result.Bookings))
		for _, b := range result.Bookings {
			ids = append(ids, b.ID)
		}
		return appendEvent(ctx, tx, model.EventTypeBasketCheckedOut, caller.UserID, nil, map[string]any{
			"booking_ids":    ids,
			"total_amount":   result.TotalAmount,
			"payment_method": method,
		})
	})
	if err != nil {
		if IsKind(err, KindConflict) || IsKind(err, KindNotFound) {
			s.logger.Info("checkout rejected", "user_id", caller.UserID, "error", err)
		}
		return nil, err
	}

	for _, b := range result.Bookings {
		if err := s.cache.Invalidate(ctx, b.TempleID, b.BookingDate); err != nil {
			s.logger.Warn("slot cache invalidate failed", "temple_id", b.TempleID, "date", b.BookingDate, "error", err)
		}
	}
	s.logger.Info("basket checked out",
		"user_id", caller.UserID,
		"bookings", len(result.Bookings),
		"total_amount", result.TotalAmount,
		"payment_method", method,
	)
	return result, nil
}

// blockingItem добавляет в сообщение id позиции, которая мешает оформить
// корзину: скрытую из списка позицию клиент иначе не найдёт.
func blockingItem(itemID uuid.UUID, err error) error {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return err
	}
	return &Error{Kind: e.Kind, Message: fmt.Sprintf("basket item %s: %s", itemID, e.Message), Err: e.Err}
}
