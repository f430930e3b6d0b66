package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/service"
)

type BasketHandler struct {
	Basket   *service.BasketService
	Checkout *service.CheckoutService
	Logger   *slog.Logger
}

type basketAddRequest struct {
	TempleID        string                `json:"temple_id"`
	ServiceID       string                `json:"service_id"`
	Quantity        *int                  `json:"quantity"`
	BookingDate     string                `json:"booking_date"`
	BookingTime     string                `json:"booking_time"`
	SpecialRequests string                `json:"special_requests"`
	DevoteeDetails  []model.DevoteeDetail `json:"devotee_details"`
}

type basketUpdateRequest struct {
	Quantity        *int                  `json:"quantity"`
	BookingDate     *string               `json:"booking_date"`
	BookingTime     *string               `json:"booking_time"`
	SpecialRequests *string               `json:"special_requests"`
	DevoteeDetails  []model.DevoteeDetail `json:"devotee_details"`
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *BasketHandler) Add(c *gin.Context) {
	var req basketAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	templeID, ok1 := parseOptionalUUID(req.TempleID)
	serviceID, ok2 := parseOptionalUUID(req.ServiceID)
	if !ok1 || !ok2 {
		respondError(c, http.StatusBadRequest, "temple_id and service_id must be UUIDs")
		return
	}

	item, err := h.Basket.Upsert(c.Request.Context(), callerFrom(c), service.BasketInput{
		TempleID:        templeID,
		ServiceID:       serviceID,
		Quantity:        req.Quantity,
		BookingDate:     req.BookingDate,
		BookingTime:     req.BookingTime,
		SpecialRequests: req.SpecialRequests,
		DevoteeDetails:  req.DevoteeDetails,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, item, "Item added to basket")
}

func (h *BasketHandler) List(c *gin.Context) {
	view, err := h.Basket.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, view, "")
}

func (h *BasketHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "basket item not found")
		return
	}
	var req basketUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Basket.Update(c.Request.Context(), callerFrom(c), id, service.BasketPatch{
		Quantity:        req.Quantity,
		BookingDate:     req.BookingDate,
		BookingTime:     req.BookingTime,
		SpecialRequests: req.SpecialRequests,
		DevoteeDetails:  req.DevoteeDetails,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, item, "Basket item updated")
}

func (h *BasketHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "basket item not found")
		return
	}
	if err := h.Basket.Remove(c.Request.Context(), callerFrom(c), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, nil, "Item removed from basket")
}

func (h *BasketHandler) Clear(c *gin.Context) {
	n, err := h.Basket.Clear(c.Request.Context(), callerFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"removed": n}, "Basket cleared")
}

func (h *BasketHandler) CheckoutBasket(c *gin.Context) {
	var req checkoutRequest
	// тело необязательно
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	res, err := h.Checkout.Checkout(c.Request.Context(), callerFrom(c), req.PaymentMethod)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, res, "Checkout completed")
}
