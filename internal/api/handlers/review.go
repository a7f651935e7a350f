package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, validator: validator.New()}
}

// CreateReview godoc
//
//	@Summary		Review a product
//	@Description	Only products from one of the caller's delivered orders can be reviewed, once each.
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			review	body		models.CreateReviewRequest	true	"Rating and comment"
//	@Success		201		{object}	response.APIResponse{data=models.Review}
//	@Failure		400		{object}	response.APIResponse	"Validation error or already reviewed"
//	@Failure		403		{object}	response.APIResponse	"No delivered order with this product"
//	@Failure		404		{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/reviews [post]
func (h *ReviewHandler) CreateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.CreateReview(r.Context(), auth.UserID, &req)
		if err != nil {
			fail(w, r, logger, "Failed to create review", err)
			return
		}

		logger.Info("Review created", slog.String("reviewId", review.ID.String()))
		response.Success(w, http.StatusCreated, "Review created", review)
	}
}

// UpdateReview godoc
//
//	@Summary	Edit your review
//	@Tags		Reviews
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Review ID"	Format(uuid)
//	@Param		review	body		models.UpdateReviewRequest	true	"Rating and comment"
//	@Success	200		{object}	response.APIResponse{data=models.Review}
//	@Failure	404		{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		var req models.UpdateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.UpdateReview(r.Context(), auth.UserID, id, &req)
		if err != nil {
			fail(w, r, logger, "Failed to update review", err)
			return
		}

		response.Success(w, http.StatusOK, "Review updated", review)
	}
}

// DeleteReview godoc
//
//	@Summary	Delete a review
//	@Tags		Reviews
//	@Produce	json
//	@Param		id	path		string	true	"Review ID"	Format(uuid)
//	@Success	200	{object}	response.APIResponse
//	@Failure	404	{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		if err := h.reviewService.DeleteReview(r.Context(), auth, id); err != nil {
			fail(w, r, logger, "Failed to delete review", err)
			return
		}

		response.Success(w, http.StatusOK, "Review deleted", nil)
	}
}

// ListProductReviews godoc
//
//	@Summary	Reviews for a product
//	@Tags		Reviews
//	@Produce	json
//	@Param		productId	path		string	true	"Product ID"	Format(uuid)
//	@Param		page		query		int		false	"Page (default 1)"
//	@Param		limit		query		int		false	"Page size (default 10, max 100)"
//	@Success	200			{object}	response.APIResponse{data=[]models.Review}
//	@Router		/reviews/product/{productId} [get]
func (h *ReviewHandler) ListProductReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		productID, ok := pathID(w, r, logger, "productId")
		if !ok {
			return
		}

		page, limit := utils.ParsePagination(r)

		reviews, total, err := h.reviewService.ListProductReviews(r.Context(), productID, page, limit)
		if err != nil {
			fail(w, r, logger, "Failed to list product reviews", err)
			return
		}

		response.Paginated(w, "Reviews retrieved", reviews, models.NewPagination(page, limit, total))
	}
}

// ListUserReviews godoc
//
//	@Summary	The caller's reviews
//	@Tags		Reviews
//	@Produce	json
//	@Param		page	query		int	false	"Page (default 1)"
//	@Param		limit	query		int	false	"Page size (default 10, max 100)"
//	@Success	200		{object}	response.APIResponse{data=[]models.Review}
//	@Security	BearerAuth
//	@Router		/reviews/user [get]
func (h *ReviewHandler) ListUserReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, limit := utils.ParsePagination(r)

		reviews, total, err := h.reviewService.ListUserReviews(r.Context(), auth.UserID, page, limit)
		if err != nil {
			fail(w, r, logger, "Failed to list user reviews", err)
			return
		}

		response.Paginated(w, "Reviews retrieved", reviews, models.NewPagination(page, limit, total))
	}
}
