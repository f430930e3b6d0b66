package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/temple-booking/internal/auth"
	"github.com/Leganyst/temple-booking/internal/service"
)

const callerKey = "caller"

// RequireUser проверяет Bearer-токен и что пользователь существует и активен.
func RequireUser(tokens *auth.Tokens, users auth.UserStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, "Authorization required")
			return
		}

		_, userID, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := auth.ValidateUser(c.Request.Context(), users, userID)
		switch {
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidUserID):
			respondError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		case errors.Is(err, auth.ErrUserInactive):
			respondError(c, http.StatusUnauthorized, "User account is inactive")
			return
		case err != nil:
			logger.ErrorContext(c.Request.Context(), "user validation failed", "user_id", userID, "error", err)
			respondError(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(callerKey, service.Caller{UserID: user.ID})
		c.Next()
	}
}

func callerFrom(c *gin.Context) service.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(service.Caller); ok {
			return caller
		}
	}
	return service.Caller{}
}
