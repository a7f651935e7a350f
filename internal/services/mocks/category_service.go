package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type CategoryService struct {
	mock.Mock
}

func NewCategoryService(t interface {
	mock.TestingT
	Cleanup(func())
}) *CategoryService {
	m := &CategoryService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CategoryService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	args := m.Called(ctx, req)

	r0, _ := args.Get(0).(*models.Category)

	return r0, args.Error(1)
}

func (m *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)

	r0, _ := args.Get(0).(*models.Category)

	return r0, args.Error(1)
}

func (m *CategoryService) ListCategories(ctx context.Context, page int, limit int) ([]*models.Category, int, error) {
	args := m.Called(ctx, page, limit)

	r0, _ := args.Get(0).([]*models.Category)

	return r0, args.Int(1), args.Error(2)
}

func (m *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *models.UpdateCategoryRequest) (*models.Category, error) {
	args := m.Called(ctx, id, req)

	r0, _ := args.Get(0).(*models.Category)

	return r0, args.Error(1)
}

func (m *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *CategoryService) ListCategoryProducts(ctx context.Context, id uuid.UUID, page int, limit int) ([]*models.Product, int, error) {
	args := m.Called(ctx, id, page, limit)

	r0, _ := args.Get(0).([]*models.Product)

	return r0, args.Int(1), args.Error(2)
}
