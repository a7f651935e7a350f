package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentSource string

const (
	PaymentSourceCart  PaymentSource = "cart"
	PaymentSourceOrder PaymentSource = "order"
)

// Payment mirrors one Stripe payment intent created by this service.
type Payment struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"userId"`
	OrderID          *uuid.UUID      `json:"orderId,omitempty"`
	Source           PaymentSource   `json:"source"`
	StripeIntentID   string          `json:"stripeIntentId"`
	StripeCustomerID string          `json:"stripeCustomerId,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           PaymentStatus   `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
