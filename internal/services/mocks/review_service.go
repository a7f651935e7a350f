package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReviewService struct {
	mock.Mock
}

func NewReviewService(t interface {
	mock.TestingT
	Cleanup(func())
}) *ReviewService {
	m := &ReviewService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	args := m.Called(ctx, userID, req)

	r0, _ := args.Get(0).(*models.Review)

	return r0, args.Error(1)
}

func (m *ReviewService) UpdateReview(ctx context.Context, userID, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error) {
	args := m.Called(ctx, userID, id, req)

	r0, _ := args.Get(0).(*models.Review)

	return r0, args.Error(1)
}

func (m *ReviewService) DeleteReview(ctx context.Context, auth models.AuthContext, id uuid.UUID) error {
	args := m.Called(ctx, auth, id)

	return args.Error(0)
}

func (m *ReviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, page int, limit int) ([]*models.Review, int, error) {
	args := m.Called(ctx, productID, page, limit)

	r0, _ := args.Get(0).([]*models.Review)

	return r0, args.Int(1), args.Error(2)
}

func (m *ReviewService) ListUserReviews(ctx context.Context, userID uuid.UUID, page int, limit int) ([]*models.Review, int, error) {
	args := m.Called(ctx, userID, page, limit)

	r0, _ := args.Get(0).([]*models.Review)

	return r0, args.Int(1), args.Error(2)
}
