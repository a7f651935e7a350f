package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type PaymentRepository struct {
	mock.Mock
}

func NewPaymentRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *PaymentRepository {
	m := &PaymentRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)

	return args.Error(0)
}

func (m *PaymentRepository) GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	args := m.Called(ctx, intentID)

	r0, _ := args.Get(0).(*models.Payment)

	return r0, args.Error(1)
}

func (m *PaymentRepository) GetPendingCartPayment(ctx context.Context, userID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, userID)

	r0, _ := args.Get(0).(*models.Payment)

	return r0, args.Error(1)
}

func (m *PaymentRepository) UpdatePaymentStatus(ctx context.Context, intentID string, status models.PaymentStatus) error {
	args := m.Called(ctx, intentID, status)

	return args.Error(0)
}

func (m *PaymentRepository) MarkPaymentSucceeded(ctx context.Context, intentID string) (bool, error) {
	args := m.Called(ctx, intentID)

	return args.Bool(0), args.Error(1)
}
