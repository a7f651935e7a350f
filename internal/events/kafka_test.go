package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aaravmahajanofficial/grocery-store/internal/events"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}

	f.messages = append(f.messages, msgs...)

	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true

	return nil
}

func TestKafkaPublisher(t *testing.T) {
	orderID := uuid.New()
	userID := uuid.New()

	t.Run("Success - Keyed by aggregate", func(t *testing.T) {
		// Arrange
		writer := &fakeWriter{}
		publisher := events.NewKafkaPublisher(writer)
		event := events.New(events.OrderCreated, orderID, userID, map[string]any{"totalAmount": "8.97"})

		// Act
		err := publisher.Publish(t.Context(), event)

		// Assert
		require.NoError(t, err)
		require.Len(t, writer.messages, 1)

		msg := writer.messages[0]
		assert.Equal(t, orderID.String(), string(msg.Key))
		require.Len(t, msg.Headers, 1)
		assert.Equal(t, "order.created", string(msg.Headers[0].Value))

		var decoded events.Event
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, userID, decoded.UserID)
		assert.Equal(t, "8.97", decoded.Data["totalAmount"])
	})

	t.Run("Failure - Writer error is wrapped", func(t *testing.T) {
		writer := &fakeWriter{err: errors.New("leader not available")}
		publisher := events.NewKafkaPublisher(writer)

		err := publisher.Publish(t.Context(), events.New(events.OrderPaid, orderID, userID, nil))

		require.ErrorIs(t, err, writer.err)
		assert.Contains(t, err.Error(), "order.paid")
	})

	t.Run("Success - Close closes the writer", func(t *testing.T) {
		writer := &fakeWriter{}

		require.NoError(t, events.NewKafkaPublisher(writer).Close())
		assert.True(t, writer.closed)
	})
}

func TestNoopPublisher(t *testing.T) {
	publisher := events.NewNoopPublisher()

	assert.NoError(t, publisher.Publish(t.Context(), events.New(events.CartCheckedOut, uuid.New(), uuid.New(), nil)))
	assert.NoError(t, publisher.Close())
}

func TestNewKafkaWriter(t *testing.T) {
	writer := events.NewKafkaWriter([]string{"localhost:9092"}, "order-events")

	assert.Equal(t, "order-events", writer.Topic)
	assert.Equal(t, "localhost:9092", writer.Addr.String())
}
