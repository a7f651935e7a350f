package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReviewRepository struct {
	mock.Mock
}

func NewReviewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ReviewRepository {
	m := &ReviewRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)

	return args.Error(0)
}

func (m *ReviewRepository) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)

	r0, _ := args.Get(0).(*models.Review)

	return r0, args.Error(1)
}

func (m *ReviewRepository) UpdateReview(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)

	return args.Error(0)
}

func (m *ReviewRepository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *ReviewRepository) ListReviewsByProduct(ctx context.Context, productID uuid.UUID, page int, size int) ([]*models.Review, int, error) {
	args := m.Called(ctx, productID, page, size)

	r0, _ := args.Get(0).([]*models.Review)

	return r0, args.Int(1), args.Error(2)
}

func (m *ReviewRepository) ListReviewsByUser(ctx context.Context, userID uuid.UUID, page int, size int) ([]*models.Review, int, error) {
	args := m.Called(ctx, userID, page, size)

	r0, _ := args.Get(0).([]*models.Review)

	return r0, args.Int(1), args.Error(2)
}
