package stripe

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

type Event = stripe.Event

var ErrWebhookSecretMissing = errors.New("webhook secret not configured")

// PaymentIntentRequest describes a manual-confirmation intent. Amount is in
// the currency's minor unit. Requests sharing an IdempotencyKey within 24h
// return the intent Stripe created for the first one.
type PaymentIntentRequest struct {
	Amount          int64
	Currency        string
	CustomerID      string
	PaymentMethodID string
	Description     string
	IdempotencyKey  string
	Metadata        map[string]string
}

// Client is the subset of the Stripe API the store talks to.
type Client interface {
	CreateCustomer(ctx context.Context, email, name string) (*stripe.Customer, error)
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*stripe.PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error)
	RefundPayment(ctx context.Context, intentID string, amount int64) (*stripe.Refund, error)
	VerifyWebhookSignature(payload []byte, signature string) (Event, error)
	Ping(ctx context.Context) error
}

type stripeClient struct {
	api           *client.API
	webhookSecret string
}

// NewStripeClient builds a client bound to apiKey. backends may be nil to use
// the public Stripe endpoints.
func NewStripeClient(apiKey, webhookSecret string, backends *stripe.Backends) Client {
	return &stripeClient{
		api:           client.New(apiKey, backends),
		webhookSecret: webhookSecret,
	}
}

func (s *stripeClient) CreateCustomer(ctx context.Context, email, name string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	return s.api.Customers.New(params)
}

func (s *stripeClient) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodManual)),
	}
	params.Context = ctx

	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}

	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}

	if req.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(req.PaymentMethodID)
	}

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	return s.api.PaymentIntents.New(params)
}

func (s *stripeClient) ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}

	return s.api.PaymentIntents.Confirm(intentID, params)
}

func (s *stripeClient) GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	return s.api.PaymentIntents.Get(intentID, params)
}

func (s *stripeClient) RefundPayment(ctx context.Context, intentID string, amount int64) (*stripe.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx

	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}

	return s.api.Refunds.New(params)
}

// VerifyWebhookSignature checks the Stripe-Signature header against the
// endpoint secret and decodes the event.
func (s *stripeClient) VerifyWebhookSignature(payload []byte, signature string) (Event, error) {
	if s.webhookSecret == "" {
		return Event{}, ErrWebhookSecretMissing
	}

	return webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// Ping reads the account balance, the cheapest authenticated call.
func (s *stripeClient) Ping(ctx context.Context) error {
	params := &stripe.BalanceParams{}
	params.Context = ctx

	_, err := s.api.Balance.Get(params)

	return err
}

// IsClientError reports whether err is a Stripe error caused by the request
// itself (declined card, bad parameters) rather than by the gateway.
func IsClientError(err error) (*stripe.Error, bool) {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return nil, false
	}

	switch stripeErr.Type {
	case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
		return stripeErr, true
	}

	return stripeErr, false
}
