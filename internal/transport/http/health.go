package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health: /livez и /readyz. Ready проверяет зависимости (БД, Redis).
type Health struct {
	Ready func(ctx context.Context) error
}

func (h Health) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h Health) Readyz(c *gin.Context) {
	if h.Ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
