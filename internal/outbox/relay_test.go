package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Leganyst/temple-booking/internal/db/dbtest"
	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/outbox"
	"github.com/Leganyst/temple-booking/internal/repository"
)

type message struct {
	key     string
	payload []byte
	headers map[string]string
}

type fakePublisher struct {
	mu     sync.Mutex
	sent   []message
	failAt int
}

func (p *fakePublisher) Publish(_ context.Context, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAt > 0 && len(p.sent)+1 == p.failAt {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, message{key: key, payload: payload, headers: headers})
	return nil
}

func appendEvents(t *testing.T, events repository.EventRepository, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		bookingID := uuid.New()
		ev := &model.Event{
			EventType: model.EventTypeBookingCreated,
			BookingID: &bookingID,
			Details:   datatypes.JSON(`{"booking_time":"09:30"}`),
		}
		require.NoError(t, events.Append(context.Background(), ev))
		ids = append(ids, ev.ID)
	}
	return ids
}

func TestRelay_ProcessOncePublishesAndMarks(t *testing.T) {
	db := dbtest.Open(t)
	events := repository.NewGormEventRepository(db)
	appendEvents(t, events, 2)

	pub := &fakePublisher{}
	relay := &outbox.Relay{Events: events, Publisher: pub, Batch: 10}

	n, err := relay.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.sent, 2)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &envelope))
	assert.Equal(t, "booking.created.v1", envelope["type"])
	assert.Equal(t, "app://temple-booking", envelope["source"])
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "09:30", data["booking_time"])
	assert.Equal(t, pub.sent[0].key, data["booking_id"])
	assert.Equal(t, "application/cloudevents+json", pub.sent[0].headers["content-type"])

	left, err := events.ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRelay_StopsOnPublishError(t *testing.T) {
	db := dbtest.Open(t)
	events := repository.NewGormEventRepository(db)
	appendEvents(t, events, 3)

	pub := &fakePublisher{failAt: 2}
	relay := &outbox.Relay{Events: events, Publisher: pub}

	n, err := relay.ProcessOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)

	left, err := events.ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestRelay_RunRequiresDependencies(t *testing.T) {
	relay := &outbox.Relay{}
	assert.ErrorIs(t, relay.Run(context.Background()), outbox.ErrRelayNotConfigured)
}

func TestKafkaPublisher_SendsToTopic(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"ok":true}` {
			return errors.New("unexpected payload")
		}
		return nil
	})

	pub := outbox.NewKafkaPublisherWithProducer(producer, "temple.bookings.v1")
	err := pub.Publish(context.Background(), "key-1", []byte(`{"ok":true}`), map[string]string{"ce-type": "booking.created"})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_PropagatesError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := outbox.NewKafkaPublisherWithProducer(producer, "temple.bookings.v1")
	err := pub.Publish(context.Background(), "key-1", []byte(`{}`), nil)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}
