package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/temple-booking/internal/model"
)

type mockUserStore struct {
	user *model.User
	err  error
}

func (m *mockUserStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return m.user, m.err
}

func TestValidateUser_InvalidID(t *testing.T) {
	_, err := ValidateUser(context.Background(), &mockUserStore{}, uuid.Nil)
	if !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
}

func TestValidateUser_NotFound(t *testing.T) {
	store := &mockUserStore{err: gorm.ErrRecordNotFound}
	_, err := ValidateUser(context.Background(), store, uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestValidateUser_Inactive(t *testing.T) {
	store := &mockUserStore{user: &model.User{ID: uuid.New(), IsActive: false}}
	_, err := ValidateUser(context.Background(), store, uuid.New())
	if !errors.Is(err, ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestValidateUser_OK(t *testing.T) {
	id := uuid.New()
	store := &mockUserStore{user: &model.User{ID: id, IsActive: true}}
	u, err := ValidateUser(context.Background(), store, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != id {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret")
	id := uuid.New()

	tok, err := tokens.Issue(id, "devotee", "a@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, got, err := tokens.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != id || claims.Email != "a@example.com" || claims.Role != "devotee" {
		t.Fatalf("unexpected claims: %+v id=%s", claims, got)
	}
}

func TestTokens_WrongSecret(t *testing.T) {
	tok, err := NewTokens("one").Issue(uuid.New(), "", "", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := NewTokens("two").Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("secret")
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := tokens.Issue(uuid.New(), "", "", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tokens.now = time.Now
	if _, _, err := tokens.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
