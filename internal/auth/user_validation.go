package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/temple-booking/internal/model"
)

// Ошибки проверки вызывающего.
var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrUserNotFound  = errors.New("user not found")
	ErrUserInactive  = errors.New("user is inactive")
)

// Источник данных о пользователях.
// В реале это репозиторий на БД, в тестах мок.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ValidateUser:
//   - проверяет идентификатор из токена;
//   - достаёт пользователя из хранилища;
//   - отсекает деактивированных.
func ValidateUser(ctx context.Context, store UserStore, userID uuid.UUID) (*model.User, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	u, err := store.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}
	return u, nil
}
