package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type CartService struct {
	mock.Mock
}

func NewCartService(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartService {
	m := &CartService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)

	r0, _ := args.Get(0).(*models.Cart)

	return r0, args.Error(1)
}

func (m *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, req)

	r0, _ := args.Get(0).(*models.Cart)

	return r0, args.Error(1)
}

func (m *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req *models.UpdateItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, itemID, req)

	r0, _ := args.Get(0).(*models.Cart)

	return r0, args.Error(1)
}

func (m *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID, itemID)

	r0, _ := args.Get(0).(*models.Cart)

	return r0, args.Error(1)
}

func (m *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)

	r0, _ := args.Get(0).(*models.Cart)

	return r0, args.Error(1)
}
