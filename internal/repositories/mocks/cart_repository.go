package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type CartRepository struct {
	mock.Mock
}

func NewCartRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartRepository {
	m := &CartRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CartRepository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)

	r0, _ := args.Get(0).(*models.Cart)

	return r0, args.Error(1)
}

func (m *CartRepository) LockCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, cartID)

	r0, _ := args.Get(0).(*models.Cart)

	return r0, args.Error(1)
}

func (m *CartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	args := m.Called(ctx, cartID)

	r0, _ := args.Get(0).([]models.CartItem)

	return r0, args.Error(1)
}

func (m *CartRepository) GetItem(ctx context.Context, cartID uuid.UUID, itemID uuid.UUID) (*models.CartItem, error) {
	args := m.Called(ctx, cartID, itemID)

	r0, _ := args.Get(0).(*models.CartItem)

	return r0, args.Error(1)
}

func (m *CartRepository) GetItemByProduct(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (*models.CartItem, error) {
	args := m.Called(ctx, cartID, productID)

	r0, _ := args.Get(0).(*models.CartItem)

	return r0, args.Error(1)
}

func (m *CartRepository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	args := m.Called(ctx, item)

	return args.Error(0)
}

func (m *CartRepository) DeleteItem(ctx context.Context, cartID uuid.UUID, itemID uuid.UUID) error {
	args := m.Called(ctx, cartID, itemID)

	return args.Error(0)
}

func (m *CartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	args := m.Called(ctx, cartID)

	return args.Error(0)
}

func (m *CartRepository) UpdateTotal(ctx context.Context, cartID uuid.UUID, total decimal.Decimal) error {
	args := m.Called(ctx, cartID, total)

	return args.Error(0)
}
