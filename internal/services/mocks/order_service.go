package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type OrderService struct {
	mock.Mock
}

func NewOrderService(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderService {
	m := &OrderService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, userID, req)

	r0, _ := args.Get(0).(*models.Order)

	return r0, args.Error(1)
}

func (m *OrderService) GetOrder(ctx context.Context, auth models.AuthContext, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, auth, id)

	r0, _ := args.Get(0).(*models.Order)

	return r0, args.Error(1)
}

func (m *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, page int, limit int) ([]*models.Order, int, error) {
	args := m.Called(ctx, userID, page, limit)

	r0, _ := args.Get(0).([]*models.Order)

	return r0, args.Int(1), args.Error(2)
}

func (m *OrderService) ListAllOrders(ctx context.Context, status models.OrderStatus, page int, limit int) ([]*models.Order, int, error) {
	args := m.Called(ctx, status, page, limit)

	r0, _ := args.Get(0).([]*models.Order)

	return r0, args.Int(1), args.Error(2)
}

func (m *OrderService) CancelOrder(ctx context.Context, auth models.AuthContext, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, auth, id)

	r0, _ := args.Get(0).(*models.Order)

	return r0, args.Error(1)
}

func (m *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, id, status)

	r0, _ := args.Get(0).(*models.Order)

	return r0, args.Error(1)
}
