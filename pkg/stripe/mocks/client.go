package mocks

import (
	"context"

	gateway "github.com/aaravmahajanofficial/grocery-store/pkg/stripe"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v81"
)

type Client struct {
	mock.Mock
}

func NewClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *Client {
	m := &Client{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Client) CreateCustomer(ctx context.Context, email string, name string) (*stripe.Customer, error) {
	args := m.Called(ctx, email, name)

	r0, _ := args.Get(0).(*stripe.Customer)

	return r0, args.Error(1)
}

func (m *Client) CreatePaymentIntent(ctx context.Context, req gateway.PaymentIntentRequest) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, req)

	r0, _ := args.Get(0).(*stripe.PaymentIntent)

	return r0, args.Error(1)
}

func (m *Client) ConfirmPaymentIntent(ctx context.Context, intentID string, paymentMethodID string) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, intentID, paymentMethodID)

	r0, _ := args.Get(0).(*stripe.PaymentIntent)

	return r0, args.Error(1)
}

func (m *Client) GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, intentID)

	r0, _ := args.Get(0).(*stripe.PaymentIntent)

	return r0, args.Error(1)
}

func (m *Client) RefundPayment(ctx context.Context, intentID string, amount int64) (*stripe.Refund, error) {
	args := m.Called(ctx, intentID, amount)

	r0, _ := args.Get(0).(*stripe.Refund)

	return r0, args.Error(1)
}

func (m *Client) VerifyWebhookSignature(payload []byte, signature string) (gateway.Event, error) {
	args := m.Called(payload, signature)

	r0, _ := args.Get(0).(gateway.Event)

	return r0, args.Error(1)
}

func (m *Client) Ping(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
