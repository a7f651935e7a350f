package stripe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/grocery-store/internal/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v81"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type breakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerClient guards every outbound call to next with a circuit breaker.
// Card declines and invalid requests count as successes so a run of bad
// cards never opens the circuit. Webhook verification is local and bypasses
// the breaker.
func NewBreakerClient(next Client, cfg config.Breaker) Client {
	settings := gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}

			_, clientErr := IsClientError(err)

			return clientErr
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &breakerClient{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func execute[T any](b *breakerClient, fn func() (T, error)) (T, error) {
	var zero T

	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, errors.Join(ErrGatewayUnavailable, err)
	}

	if err != nil {
		return zero, err
	}

	typed, _ := result.(T)

	return typed, nil
}

func (b *breakerClient) CreateCustomer(ctx context.Context, email, name string) (*stripe.Customer, error) {
	return execute(b, func() (*stripe.Customer, error) {
		return b.next.CreateCustomer(ctx, email, name)
	})
}

func (b *breakerClient) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*stripe.PaymentIntent, error) {
	return execute(b, func() (*stripe.PaymentIntent, error) {
		return b.next.CreatePaymentIntent(ctx, req)
	})
}

func (b *breakerClient) ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*stripe.PaymentIntent, error) {
	return execute(b, func() (*stripe.PaymentIntent, error) {
		return b.next.ConfirmPaymentIntent(ctx, intentID, paymentMethodID)
	})
}

func (b *breakerClient) GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	return execute(b, func() (*stripe.PaymentIntent, error) {
		return b.next.GetPaymentIntent(ctx, intentID)
	})
}

func (b *breakerClient) RefundPayment(ctx context.Context, intentID string, amount int64) (*stripe.Refund, error) {
	return execute(b, func() (*stripe.Refund, error) {
		return b.next.RefundPayment(ctx, intentID, amount)
	})
}

func (b *breakerClient) VerifyWebhookSignature(payload []byte, signature string) (Event, error) {
	return b.next.VerifyWebhookSignature(payload, signature)
}

func (b *breakerClient) Ping(ctx context.Context) error {
	_, err := execute(b, func() (struct{}, error) {
		return struct{}{}, b.next.Ping(ctx)
	})

	return err
}
