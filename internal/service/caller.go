package service

import "github.com/google/uuid"

// Caller: аутентифицированный вызывающий. Передаётся в каждую операцию
// явно; все выборки броней и корзины фильтруются по UserID.
type Caller struct {
	UserID uuid.UUID
}

func (c Caller) validate() error {
	if c.UserID == uuid.Nil {
		return newError(KindValidation, "caller identity is required")
	}
	return nil
}
