package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/temple-booking/internal/service"
)

type BookingHandler struct {
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Logger       *slog.Logger
}

type createBookingRequest struct {
	TempleID        string `json:"temple_id"`
	ServiceID       string `json:"service_id"`
	BookingDate     string `json:"booking_date"`
	BookingTime     string `json:"booking_time"`
	SpecialRequests string `json:"special_requests"`
	ContactPhone    string `json:"contact_phone"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// parseOptionalUUID: пустая строка даёт uuid.Nil без ошибки.
func parseOptionalUUID(s string) (uuid.UUID, bool) {
	if s == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(s)
	return id, err == nil
}

func (h *BookingHandler) AvailableSlots(c *gin.Context) {
	templeID, err := uuid.Parse(c.Param("templeId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid temple id")
		return
	}
	var serviceID *uuid.UUID
	if raw := c.Query("service_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid service_id")
			return
		}
		serviceID = &id
	}

	res, err := h.Availability.ComputeSlots(c.Request.Context(), templeID, serviceID, c.Param("date"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, res.Slots, res.Message)
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
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

	b, err := h.Bookings.Create(c.Request.Context(), callerFrom(c), service.CreateBookingInput{
		TempleID:        templeID,
		ServiceID:       serviceID,
		BookingDate:     req.BookingDate,
		BookingTime:     req.BookingTime,
		SpecialRequests: req.SpecialRequests,
		ContactPhone:    req.ContactPhone,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, b, "Booking created successfully")
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offset")
		return
	}

	items, page, err := h.Bookings.ListMine(c.Request.Context(), callerFrom(c), service.ListBookingsFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respondPage(c, items, page)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "booking not found")
		return
	}
	b, err := h.Bookings.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, b, "")
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "booking not found")
		return
	}
	b, err := h.Bookings.UpdateStatus(c.Request.Context(), callerFrom(c), id, req.Status)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, b, "Booking status updated")
}

func (h *BookingHandler) Stats(c *gin.Context) {
	stats, err := h.Bookings.Stats(c.Request.Context(), callerFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, stats, "")
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
