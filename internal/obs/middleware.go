package obs

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// Длиннее не принимаем: id из заголовка уходит в логи как есть.
const maxRequestIDLen = 64

type requestIDKey struct{}

// Middleware: сквозные обработчики HTTP-слоя бронирования.
// Пробы здоровья (SkipPaths) в журнал доступа не пишутся.
type Middleware struct {
	Logger    *slog.Logger
	SkipPaths []string
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// RequestID берёт id запроса из заголовка или выдаёт новый и кладёт его
// в context запроса, откуда его читают логи обработчиков.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func (m Middleware) AccessLog() gin.HandlerFunc {
	skip := make(map[string]struct{}, len(m.SkipPaths))
	for _, p := range m.SkipPaths {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m.Logger == nil {
			return
		}
		if _, ok := skip[c.FullPath()]; ok {
			return
		}

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status == http.StatusConflict:
			// занятый слот: ожидаемый исход гонки, но его хочется видеть
			level = slog.LevelWarn
		}
		LoggerFrom(c.Request.Context(), m.Logger).Log(c.Request.Context(), level, "http",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

func RequestIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(requestIDKey{}).(string); ok {
		return s
	}
	return ""
}

// LoggerFrom добавляет к логгеру id запроса, если он есть в ctx.
func LoggerFrom(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		return base.With("request_id", id)
	}
	return base
}
