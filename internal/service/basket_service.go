package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/repository"
)

type BasketInput struct {
	TempleID        uuid.UUID
	ServiceID       uuid.UUID
	Quantity        *int
	BookingDate     string
	BookingTime     string
	SpecialRequests string
	DevoteeDetails  []model.DevoteeDetail
}

// BasketPatch: частичное изменение позиции; nil-поля не трогаются.
type BasketPatch struct {
	Quantity        *int
	BookingDate     *string
	BookingTime     *string
	SpecialRequests *string
	DevoteeDetails  []model.DevoteeDetail
}

// BasketLine: позиция корзины с текущей ценой услуги.
type BasketLine struct {
	model.BasketItem

	TempleName  string  `json:"temple_name"`
	ServiceName string  `json:"service_name"`
	Price       float64 `json:"price"`
	TotalPrice  float64 `json:"total_price"`
}

type BasketSummary struct {
	TotalItems  int     `json:"total_items"`
	TotalAmount float64 `json:"total_amount"`
}

type BasketView struct {
	Items   []BasketLine  `json:"items"`
	Summary BasketSummary `json:"summary"`
}

// BasketService: все операции в рамках одного пользователя.
type BasketService struct {
	store       *repository.Store
	granularity time.Duration
	logger      *slog.Logger
}

func NewBasketService(store *repository.Store, granularity time.Duration, logger *slog.Logger) *BasketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BasketService{store: store, granularity: granularityOrDefault(granularity), logger: logger}
}

func quantityOrDefault(q *int) (int, error) {
	if q == nil {
		return 1, nil
	}
	if *q < 1 {
		return 0, newError(KindValidation, "quantity must be at least 1")
	}
	return *q, nil
}

func devoteesOrEmpty(d []model.DevoteeDetail) datatypes.JSONSlice[model.DevoteeDetail] {
	if d == nil {
		return datatypes.JSONSlice[model.DevoteeDetail]{}
	}
	return datatypes.JSONSlice[model.DevoteeDetail](d)
}

// Upsert добавляет услугу в корзину. Повторное добавление той же услуги
// перезаписывает существующую позицию.
func (s *BasketService) Upsert(ctx context.Context, caller Caller, in BasketInput) (*model.BasketItem, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	date, clock, err := normalizeSlot(in.TempleID, in.ServiceID, in.BookingDate, in.BookingTime)
	if err != nil {
		return nil, err
	}
	qty, err := quantityOrDefault(in.Quantity)
	if err != nil {
		return nil, err
	}

	svc, err := s.store.Services.GetForTemple(ctx, in.TempleID, in.ServiceID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, "service not found or unavailable")
		}
		return nil, internalError("load service", err)
	}
	if !svc.IsAvailable {
		return nil, newError(KindNotFound, "service not found or unavailable")
	}
	if err := requireGridSlot(ctx, s.store, in.TempleID, date, clock, s.granularity); err != nil {
		return nil, err
	}

	item, err := s.store.Basket.Upsert(ctx, &model.BasketItem{
		UserID:          caller.UserID,
		TempleID:        in.TempleID,
		ServiceID:       in.ServiceID,
		Quantity:        qty,
		BookingDate:     date,
		BookingTime:     clock,
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		DevoteeDetails:  devoteesOrEmpty(in.DevoteeDetails),
	})
	if err != nil {
		return nil, internalError("upsert basket item", err)
	}

	s.logger.Debug("basket item saved", "user_id", caller.UserID, "item_id", item.ID, "service_id", item.ServiceID)
	return item, nil
}

// List возвращает корзину без позиций, чьи услуги сняты с доступности.
func (s *BasketService) List(ctx context.Context, caller Caller) (*BasketView, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	rows, err := s.store.Basket.ListWithServices(ctx, caller.UserID)
	if err != nil {
		return nil, internalError("list basket", err)
	}

	view := &BasketView{Items: []BasketLine{}}
	for _, r := range rows {
		if !r.IsAvailable {
			continue
		}
		total := roundMoney(float64(r.Quantity) * r.Price)
		view.Items = append(view.Items, BasketLine{
			BasketItem:  r.BasketItem,
			TempleName:  r.TempleName,
			ServiceName: r.ServiceName,
			Price:       r.Price,
			TotalPrice:  total,
		})
		view.Summary.TotalItems += r.Quantity
		view.Summary.TotalAmount += total
	}
	view.Summary.TotalAmount = roundMoney(view.Summary.TotalAmount)
	return view, nil
}

func (s *BasketService) Update(ctx context.Context, caller Caller, id uuid.UUID, patch BasketPatch) (*model.BasketItem, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	item, err := s.store.Basket.GetByIDForUser(ctx, id, caller.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, "basket item not found")
		}
		return nil, internalError("load basket item", err)
	}

	if patch.Quantity != nil {
		if item.Quantity, err = quantityOrDefault(patch.Quantity); err != nil {
			return nil, err
		}
	}
	date, clock := item.BookingDate, item.BookingTime
	if patch.BookingDate != nil {
		date = *patch.BookingDate
	}
	if patch.BookingTime != nil {
		clock = *patch.BookingTime
	}
	if item.BookingDate, item.BookingTime, err = normalizeSlot(item.TempleID, item.ServiceID, date, clock); err != nil {
		return nil, err
	}
	if err := requireGridSlot(ctx, s.store, item.TempleID, item.BookingDate, item.BookingTime, s.granularity); err != nil {
		return nil, err
	}
	if patch.SpecialRequests != nil {
		item.SpecialRequests = strings.TrimSpace(*patch.SpecialRequests)
	}
	if patch.DevoteeDetails != nil {
		item.DevoteeDetails = devoteesOrEmpty(patch.DevoteeDetails)
	}

	if err := s.store.Basket.Update(ctx, item); err != nil {
		return nil, internalError("update basket item", err)
	}
	updated, err := s.store.Basket.GetByIDForUser(ctx, id, caller.UserID)
	if err != nil {
		return nil, internalError("reload basket item", err)
	}
	return updated, nil
}

func (s *BasketService) Remove(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := caller.validate(); err != nil {
		return err
	}
	n, err := s.store.Basket.Delete(ctx, id, caller.UserID)
	if err != nil {
		return internalError("remove basket item", err)
	}
	if n == 0 {
		return newError(KindNotFound, "basket item not found")
	}
	return nil
}

// Clear очищает корзину; пустая корзина тоже успех.
func (s *BasketService) Clear(ctx context.Context, caller Caller) (int64, error) {
	if err := caller.validate(); err != nil {
		return 0, err
	}
	n, err := s.store.Basket.ClearByUser(ctx, caller.UserID)
	if err != nil {
		return 0, internalError("clear basket", err)
	}
	return n, nil
}
