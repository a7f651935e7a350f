package service

import (
	"context"
	"errors"

	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error)
	UpdateReview(ctx context.Context, userID, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, auth models.AuthContext, id uuid.UUID) error
	ListProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) ([]*models.Review, int, error)
	ListUserReviews(ctx context.Context, userID uuid.UUID, page, limit int) ([]*models.Review, int, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	policy   *bluemonday.Policy
}

func NewReviewService(repo repository.ReviewRepository, products repository.ProductRepository, orders repository.OrderRepository) ReviewService {
	return &reviewService{
		repo:     repo,
		products: products,
		orders:   orders,
		policy:   bluemonday.StrictPolicy(),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	if _, err := s.products.GetProductByID(ctx, req.ProductID); err != nil {
		return nil, repoError(err, "Product not found", "Failed to load product")
	}

	purchased, err := s.orders.HasDeliveredOrderWithProduct(ctx, userID, req.ProductID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to check purchase history").WithError(err)
	}

	if !purchased {
		return nil, appErrors.ForbiddenError("You can only review products from a delivered order")
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   s.policy.Sanitize(req.Comment),
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, appErrors.BadRequestError("You have already reviewed this product").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create review").WithError(err)
	}

	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, userID, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.repo.GetReviewByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Review not found", "Failed to load review")
	}

	if review.UserID != userID {
		return nil, appErrors.NotFoundError("Review not found")
	}

	review.Rating = req.Rating
	review.Comment = s.policy.Sanitize(req.Comment)

	if err := s.repo.UpdateReview(ctx, review); err != nil {
		return nil, repoError(err, "Review not found", "Failed to update review")
	}

	return review, nil
}

// DeleteReview lets the author or an admin remove a review.
func (s *reviewService) DeleteReview(ctx context.Context, auth models.AuthContext, id uuid.UUID) error {
	review, err := s.repo.GetReviewByID(ctx, id)
	if err != nil {
		return repoError(err, "Review not found", "Failed to load review")
	}

	if !auth.CanAccess(review.UserID) {
		return appErrors.NotFoundError("Review not found")
	}

	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return repoError(err, "Review not found", "Failed to delete review")
	}

	return nil
}

func (s *reviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	reviews, total, err := s.repo.ListReviewsByProduct(ctx, productID, page, limit)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list reviews").WithError(err)
	}

	return reviews, total, nil
}

func (s *reviewService) ListUserReviews(ctx context.Context, userID uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	reviews, total, err := s.repo.ListReviewsByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list reviews").WithError(err)
	}

	return reviews, total, nil
}
