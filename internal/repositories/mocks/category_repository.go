package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type CategoryRepository struct {
	mock.Mock
}

func NewCategoryRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *CategoryRepository {
	m := &CategoryRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)

	return args.Error(0)
}

func (m *CategoryRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)

	r0, _ := args.Get(0).(*models.Category)

	return r0, args.Error(1)
}

func (m *CategoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)

	return args.Error(0)
}

func (m *CategoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *CategoryRepository) ListCategories(ctx context.Context, page int, size int) ([]*models.Category, int, error) {
	args := m.Called(ctx, page, size)

	r0, _ := args.Get(0).([]*models.Category)

	return r0, args.Int(1), args.Error(2)
}
