package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/temple-booking/internal/calendar"
	"github.com/Leganyst/temple-booking/internal/repository"
)

const DefaultSlotGranularity = 30 * time.Minute

// BookedTimesCache кэширует занятые времена храма на дату.
// Любая запись брони обязана инвалидировать ключ. Get отдаёт версию ключа,
// Set пишет под ней: заполнение, начатое до Invalidate, читателям не видно.
type BookedTimesCache interface {
	Get(ctx context.Context, templeID uuid.UUID, date string) ([]string, int64, bool, error)
	Set(ctx context.Context, templeID uuid.UUID, date string, version int64, times []string) error
	Invalidate(ctx context.Context, templeID uuid.UUID, date string) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, uuid.UUID, string) ([]string, int64, bool, error) {
	return nil, 0, false, nil
}
func (noopCache) Set(context.Context, uuid.UUID, string, int64, []string) error { return nil }
func (noopCache) Invalidate(context.Context, uuid.UUID, string) error           { return nil }

func cacheOrNoop(c BookedTimesCache) BookedTimesCache {
	if c == nil {
		return noopCache{}
	}
	return c
}

const (
	MessageTempleClosed       = "Temple is closed on this day"
	MessageServiceUnavailable = "Service is not available"
)

// SlotResult: свободные слоты на дату. Пустой список без ошибки означает,
// что храм закрыт или услуга недоступна; Message поясняет причину.
type SlotResult struct {
	Date    string   `json:"date"`
	Slots   []string `json:"slots"`
	Message string   `json:"message,omitempty"`
}

type AvailabilityService struct {
	store       *repository.Store
	cache       BookedTimesCache
	granularity time.Duration
	logger      *slog.Logger
}

func NewAvailabilityService(
	store *repository.Store,
	cache BookedTimesCache,
	granularity time.Duration,
	logger *slog.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityService{
		store:       store,
		cache:       cacheOrNoop(cache),
		granularity: granularityOrDefault(granularity),
		logger:      logger,
	}
}

// ComputeSlots возвращает свободные слоты храма на дату в хронологическом
// порядке. serviceID необязателен; если задан, услуга должна принадлежать
// храму и быть доступной, иначе результат пустой.
func (s *AvailabilityService) ComputeSlots(
	ctx context.Context,
	templeID uuid.UUID,
	serviceID *uuid.UUID,
	date string,
) (*SlotResult, error) {
	if templeID == uuid.Nil {
		return nil, newError(KindValidation, "temple_id is required")
	}
	day, err := calendar.ParseDate(date)
	if err != nil {
		return nil, newError(KindValidation, err.Error())
	}
	dateKey := day.Format(calendar.DateLayout)
	result := &SlotResult{Date: dateKey, Slots: []string{}}

	if serviceID != nil && *serviceID != uuid.Nil {
		svc, err := s.store.Services.GetForTemple(ctx, templeID, *serviceID)
		if err != nil && !repository.IsNotFound(err) {
			return nil, internalError("load service", err)
		}
		if err != nil || !svc.IsAvailable {
			result.Message = MessageServiceUnavailable
			return result, nil
		}
	}

	candidates, open, err := daySlots(ctx, s.store, templeID, day, s.granularity)
	if err != nil {
		return nil, err
	}
	if !open {
		result.Message = MessageTempleClosed
		return result, nil
	}
	if len(candidates) == 0 {
		return result, nil
	}

	booked, err := s.bookedTimes(ctx, templeID, dateKey)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}
	for _, slot := range candidates {
		if _, ok := taken[slot]; !ok {
			result.Slots = append(result.Slots, slot)
		}
	}
	return result, nil
}

// daySlots перечисляет все слоты дня по расписанию храма, без учёта броней.
// open == false: расписания нет или оно выключено.
func daySlots(ctx context.Context, store *repository.Store, templeID uuid.UUID, day time.Time, step time.Duration) ([]string, bool, error) {
	timing, err := store.Timings.GetByTempleAndDay(ctx, templeID, calendar.Weekday(day))
	if err != nil && !repository.IsNotFound(err) {
		return nil, false, internalError("load timing", err)
	}
	if err != nil || !timing.IsActive {
		return nil, false, nil
	}
	slots, err := calendar.SplitDayClock(timing.Open(), timing.Close(), step)
	if err != nil {
		return nil, false, internalError("split day", err)
	}
	return slots, true, nil
}

// requireGridSlot: бронировать можно только слот из перечисления daySlots.
func requireGridSlot(ctx context.Context, store *repository.Store, templeID uuid.UUID, date, clock string, step time.Duration) error {
	day, err := calendar.ParseDate(date)
	if err != nil {
		return newError(KindValidation, err.Error())
	}
	slots, open, err := daySlots(ctx, store, templeID, day, step)
	if err != nil {
		return err
	}
	if !open {
		return newError(KindValidation, "temple is closed on this day")
	}
	if !slices.Contains(slots, clock) {
		return newError(KindValidation, "booking time "+clock+" is not an available slot")
	}
	return nil
}

func granularityOrDefault(step time.Duration) time.Duration {
	if step <= 0 {
		return DefaultSlotGranularity
	}
	return step
}

func (s *AvailabilityService) bookedTimes(ctx context.Context, templeID uuid.UUID, date string) ([]string, error) {
	cached, version, ok, cacheErr := s.cache.Get(ctx, templeID, date)
	if cacheErr != nil {
		s.logger.Warn("slot cache get failed", "temple_id", templeID, "date", date, "error", cacheErr)
	} else if ok {
		return cached, nil
	}

	times, err := NewConflictGuard(s.store.Bookings).BookedTimes(ctx, templeID, date)
	if err != nil {
		return nil, internalError("load booked times", err)
	}

	// без версии писать нельзя: запись могла бы пережить инвалидацию
	if cacheErr != nil {
		return times, nil
	}
	if err := s.cache.Set(ctx, templeID, date, version, times); err != nil {
		s.logger.Warn("slot cache set failed", "temple_id", templeID, "date", date, "error", err)
	}
	return times, nil
}
