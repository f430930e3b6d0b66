package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/repository"
)

// Publisher отправляет одно сообщение в брокер.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte, headers map[string]string) error
}

// Relay переносит неопубликованные строки events в брокер.
// Строка помечается опубликованной только после успешной отправки,
// поэтому доставка at-least-once.
type Relay struct {
	Events    repository.EventRepository
	Publisher Publisher
	Interval  time.Duration
	Batch     int
	Source    string
	Logger    *slog.Logger
}

var ErrRelayNotConfigured = errors.New("outbox: relay missing dependencies")

func (r *Relay) Run(ctx context.Context) error {
	if r.Events == nil || r.Publisher == nil {
		return ErrRelayNotConfigured
	}
	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.ProcessOnce(ctx); err != nil {
				r.logger().Warn("outbox relay pass failed", "error", err)
			}
		}
	}
}

// ProcessOnce публикует одну пачку и возвращает число опубликованных событий.
// На первой ошибке отправки пачка обрывается, остаток уйдёт следующим проходом.
func (r *Relay) ProcessOnce(ctx context.Context) (int, error) {
	events, err := r.Events.ListUnpublished(ctx, r.batch())
	if err != nil {
		return 0, err
	}

	sent := make([]uuid.UUID, 0, len(events))
	var pubErr error
	for i := range events {
		ev := &events[i]
		payload, err := r.envelope(ev)
		if err != nil {
			// битую строку не ретраим бесконечно
			r.logger().Error("outbox event encode failed", "event_id", ev.ID, "error", err)
			sent = append(sent, ev.ID)
			continue
		}
		headers := map[string]string{
			"content-type": "application/cloudevents+json",
			"ce-type":      string(ev.EventType),
		}
		if err := r.Publisher.Publish(ctx, partitionKey(ev), payload, headers); err != nil {
			pubErr = err
			break
		}
		sent = append(sent, ev.ID)
	}

	if err := r.Events.MarkPublished(ctx, sent, time.Now().UTC()); err != nil {
		return 0, err
	}
	return len(sent), pubErr
}

func (r *Relay) envelope(ev *model.Event) ([]byte, error) {
	data := map[string]any{}
	if len(ev.Details) > 0 {
		if err := json.Unmarshal(ev.Details, &data); err != nil {
			return nil, err
		}
	}
	if ev.UserID != nil {
		data["user_id"] = ev.UserID.String()
	}
	if ev.BookingID != nil {
		data["booking_id"] = ev.BookingID.String()
	}
	return json.Marshal(map[string]any{
		"specversion":     "1.0",
		"id":              ev.ID.String(),
		"type":            string(ev.EventType) + ".v1",
		"source":          r.source(),
		"time":            ev.CreatedAt.UTC(),
		"datacontenttype": "application/json",
		"data":            data,
	})
}

// Ключ партиции по брони, иначе по пользователю, чтобы события одной сущности шли по порядку.
func partitionKey(ev *model.Event) string {
	switch {
	case ev.BookingID != nil:
		return ev.BookingID.String()
	case ev.UserID != nil:
		return ev.UserID.String()
	default:
		return ev.ID.String()
	}
}

func (r *Relay) interval() time.Duration {
	if r.Interval <= 0 {
		return time.Second
	}
	return r.Interval
}

func (r *Relay) batch() int {
	if r.Batch <= 0 {
		return 100
	}
	return r.Batch
}

func (r *Relay) source() string {
	if r.Source != "" {
		return r.Source
	}
	return "app://temple-booking"
}

func (r *Relay) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
