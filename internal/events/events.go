package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderCancelled     Type = "order.cancelled"
	OrderStatusChanged Type = "order.status_changed"
	OrderPaid          Type = "order.paid"
	CartCheckedOut     Type = "cart.checked_out"
)

// Event is the envelope written to the order topic. AggregateID is the order
// or cart the event is about and doubles as the partition key.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Type        Type           `json:"type"`
	AggregateID uuid.UUID      `json:"aggregateId"`
	UserID      uuid.UUID      `json:"userId"`
	OccurredAt  time.Time      `json:"occurredAt"`
	Data        map[string]any `json:"data,omitempty"`
}

func New(eventType Type, aggregateID, userID uuid.UUID, data map[string]any) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		UserID:      userID,
		OccurredAt:  time.Now().UTC(),
		Data:        data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher drops every event. It is used when no brokers are
// configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

func (noopPublisher) Close() error { return nil }
