package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type OrderRepository struct {
	mock.Mock
}

func NewOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)

	return args.Error(0)
}

func (m *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)

	r0, _ := args.Get(0).(*models.Order)

	return r0, args.Error(1)
}

func (m *OrderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page int, size int) ([]*models.Order, int, error) {
	args := m.Called(ctx, userID, page, size)

	r0, _ := args.Get(0).([]*models.Order)

	return r0, args.Int(1), args.Error(2)
}

func (m *OrderRepository) ListOrders(ctx context.Context, status models.OrderStatus, page int, size int) ([]*models.Order, int, error) {
	args := m.Called(ctx, status, page, size)

	r0, _ := args.Get(0).([]*models.Order)

	return r0, args.Int(1), args.Error(2)
}

func (m *OrderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from models.OrderStatus, to models.OrderStatus) error {
	args := m.Called(ctx, id, from, to)

	return args.Error(0)
}

func (m *OrderRepository) MarkOrderPaid(ctx context.Context, id uuid.UUID, paymentID string) error {
	args := m.Called(ctx, id, paymentID)

	return args.Error(0)
}

func (m *OrderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paymentID string) error {
	args := m.Called(ctx, id, status, paymentID)

	return args.Error(0)
}

func (m *OrderRepository) HasDeliveredOrderWithProduct(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID)

	return args.Bool(0), args.Error(1)
}
