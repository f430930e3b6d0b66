package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Leganyst/temple-booking/internal/repository"
)

// ConflictGuard отвечает, занят ли слот активной бронью (pending/confirmed).
// Отменённые и завершённые брони слот не держат.
type ConflictGuard struct {
	bookings repository.BookingRepository
}

func NewConflictGuard(bookings repository.BookingRepository) *ConflictGuard {
	return &ConflictGuard{bookings: bookings}
}

func (g *ConflictGuard) HasConflict(ctx context.Context, templeID uuid.UUID, date, clock string) (bool, error) {
	return g.bookings.ExistsActive(ctx, templeID, date, clock)
}

// BookedTimes: все занятые времена храма на дату одним запросом.
func (g *ConflictGuard) BookedTimes(ctx context.Context, templeID uuid.UUID, date string) ([]string, error) {
	times, err := g.bookings.ListActiveTimes(ctx, templeID, date)
	if err != nil {
		return nil, err
	}
	if times == nil {
		times = []string{}
	}
	return times, nil
}
