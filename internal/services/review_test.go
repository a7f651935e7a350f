package service_test

import (
	"testing"

	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/aaravmahajanofficial/grocery-store/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewService_CreateReview(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()
	req := &models.CreateReviewRequest{ProductID: productID, Rating: 5, Comment: `Crisp <a href="http://x">apples</a>`}

	t.Run("Success - Comment stripped of markup", func(t *testing.T) {
		// Arrange
		reviews := mocks.NewReviewRepository(t)
		products := mocks.NewProductRepository(t)
		orders := mocks.NewOrderRepository(t)

		products.On("GetProductByID", mock.Anything, productID).Return(&models.Product{ID: productID}, nil).Once()
		orders.On("HasDeliveredOrderWithProduct", mock.Anything, userID, productID).Return(true, nil).Once()
		reviews.On("CreateReview", mock.Anything, mock.AnythingOfType("*models.Review")).Return(nil).Once()

		svc := service.NewReviewService(reviews, products, orders)

		// Act
		review, err := svc.CreateReview(ctx, userID, req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Crisp apples", review.Comment)
		assert.Equal(t, 5, review.Rating)
	})

	t.Run("Failure - No delivered order", func(t *testing.T) {
		reviews := mocks.NewReviewRepository(t)
		products := mocks.NewProductRepository(t)
		orders := mocks.NewOrderRepository(t)

		products.On("GetProductByID", mock.Anything, productID).Return(&models.Product{ID: productID}, nil).Once()
		orders.On("HasDeliveredOrderWithProduct", mock.Anything, userID, productID).Return(false, nil).Once()

		svc := service.NewReviewService(reviews, products, orders)

		_, err := svc.CreateReview(ctx, userID, req)

		requireAppError(t, err, appErrors.ErrCodeForbidden)
		reviews.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Second review of the same product", func(t *testing.T) {
		reviews := mocks.NewReviewRepository(t)
		products := mocks.NewProductRepository(t)
		orders := mocks.NewOrderRepository(t)

		products.On("GetProductByID", mock.Anything, productID).Return(&models.Product{ID: productID}, nil).Once()
		orders.On("HasDeliveredOrderWithProduct", mock.Anything, userID, productID).Return(true, nil).Once()
		reviews.On("CreateReview", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEntry).Once()

		svc := service.NewReviewService(reviews, products, orders)

		_, err := svc.CreateReview(ctx, userID, req)

		appErr := requireAppError(t, err, appErrors.ErrCodeBadRequest)
		assert.Equal(t, "You have already reviewed this product", appErr.Message)
	})

	t.Run("Failure - Product missing", func(t *testing.T) {
		products := mocks.NewProductRepository(t)
		products.On("GetProductByID", mock.Anything, productID).Return(nil, repository.ErrNotFound).Once()

		svc := service.NewReviewService(mocks.NewReviewRepository(t), products, mocks.NewOrderRepository(t))

		_, err := svc.CreateReview(ctx, userID, req)

		requireAppError(t, err, appErrors.ErrCodeNotFound)
	})
}

func TestReviewService_UpdateReview(t *testing.T) {
	ctx := t.Context()
	owner := uuid.New()
	review := func() *models.Review {
		return &models.Review{ID: uuid.New(), UserID: owner, Rating: 2, Comment: "meh"}
	}

	t.Run("Success", func(t *testing.T) {
		reviews := mocks.NewReviewRepository(t)
		existing := review()

		reviews.On("GetReviewByID", mock.Anything, existing.ID).Return(existing, nil).Once()
		reviews.On("UpdateReview", mock.Anything, existing).Return(nil).Once()

		svc := service.NewReviewService(reviews, mocks.NewProductRepository(t), mocks.NewOrderRepository(t))

		updated, err := svc.UpdateReview(ctx, owner, existing.ID, &models.UpdateReviewRequest{Rating: 4, Comment: "better"})

		require.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)
		assert.Equal(t, "better", updated.Comment)
	})

	t.Run("Failure - Not the author", func(t *testing.T) {
		reviews := mocks.NewReviewRepository(t)
		existing := review()

		reviews.On("GetReviewByID", mock.Anything, existing.ID).Return(existing, nil).Once()

		svc := service.NewReviewService(reviews, mocks.NewProductRepository(t), mocks.NewOrderRepository(t))

		_, err := svc.UpdateReview(ctx, uuid.New(), existing.ID, &models.UpdateReviewRequest{Rating: 1})

		requireAppError(t, err, appErrors.ErrCodeNotFound)
		reviews.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything)
	})
}

func TestReviewService_DeleteReview(t *testing.T) {
	ctx := t.Context()
	owner := uuid.New()
	existing := &models.Review{ID: uuid.New(), UserID: owner}

	tests := []struct {
		name     string
		auth     models.AuthContext
		wantCode string
	}{
		{name: "Success - Author", auth: models.AuthContext{UserID: owner}},
		{name: "Success - Admin moderates", auth: models.AuthContext{UserID: uuid.New(), IsAdmin: true}},
		{name: "Failure - Stranger", auth: models.AuthContext{UserID: uuid.New()}, wantCode: appErrors.ErrCodeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reviews := mocks.NewReviewRepository(t)
			reviews.On("GetReviewByID", mock.Anything, existing.ID).Return(existing, nil).Once()

			if tc.wantCode == "" {
				reviews.On("DeleteReview", mock.Anything, existing.ID).Return(nil).Once()
			}

			svc := service.NewReviewService(reviews, mocks.NewProductRepository(t), mocks.NewOrderRepository(t))

			err := svc.DeleteReview(ctx, tc.auth, existing.ID)

			if tc.wantCode != "" {
				requireAppError(t, err, tc.wantCode)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestReviewService_ListProductReviews(t *testing.T) {
	reviews := mocks.NewReviewRepository(t)
	productID := uuid.New()
	list := []*models.Review{{ID: uuid.New(), ProductID: productID, Rating: 5}}
	reviews.On("ListReviewsByProduct", mock.Anything, productID, 1, 10).Return(list, 1, nil).Once()

	svc := service.NewReviewService(reviews, mocks.NewProductRepository(t), mocks.NewOrderRepository(t))

	result, total, err := svc.ListProductReviews(t.Context(), productID, 1, 10)

	require.NoError(t, err)
	assert.Equal(t, list, result)
	assert.Equal(t, 1, total)
}
