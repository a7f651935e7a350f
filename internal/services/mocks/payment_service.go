package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type PaymentService struct {
	mock.Mock
}

func NewPaymentService(t interface {
	mock.TestingT
	Cleanup(func())
}) *PaymentService {
	m := &PaymentService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *PaymentService) CheckoutCart(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	args := m.Called(ctx, userID, req)

	r0, _ := args.Get(0).(*models.CheckoutResponse)

	return r0, args.Error(1)
}

func (m *PaymentService) CreateOrderPayment(ctx context.Context, auth models.AuthContext, req *models.OrderPaymentRequest) (*models.OrderPaymentResponse, error) {
	args := m.Called(ctx, auth, req)

	r0, _ := args.Get(0).(*models.OrderPaymentResponse)

	return r0, args.Error(1)
}

func (m *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)

	return args.Error(0)
}
