package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/temple-booking/internal/calendar"
	"github.com/Leganyst/temple-booking/internal/obs"
	"github.com/Leganyst/temple-booking/internal/service"
)

// envelope: общий формат всех ответов.
type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *calendar.PageInfo `json:"pagination,omitempty"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, data any, page calendar.PageInfo) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &page})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindInvalidState:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail переводит ошибку ядра в ответ. Причина внутренних ошибок
// только в логе, клиенту уходит общий текст.
func fail(c *gin.Context, logger *slog.Logger, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		obs.LoggerFrom(c.Request.Context(), logger).ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"error", err,
		)
	}
	respondError(c, status, service.PublicMessage(err))
}
