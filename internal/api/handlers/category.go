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

type CategoryHandler struct {
	categoryService service.CategoryService
	validator       *validator.Validate
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, validator: validator.New()}
}

// ListCategories godoc
//
//	@Summary	List categories
//	@Tags		Categories
//	@Produce	json
//	@Param		page	query		int	false	"Page (default 1)"
//	@Param		limit	query		int	false	"Page size (default 10, max 100)"
//	@Success	200		{object}	response.APIResponse{data=[]models.Category}
//	@Router		/categories [get]
func (h *CategoryHandler) ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())
		page, limit := utils.ParsePagination(r)

		categories, total, err := h.categoryService.ListCategories(r.Context(), page, limit)
		if err != nil {
			fail(w, r, logger, "Failed to list categories", err)
			return
		}

		response.Paginated(w, "Categories retrieved", categories, models.NewPagination(page, limit, total))
	}
}

// GetCategory godoc
//
//	@Summary	Get a category
//	@Tags		Categories
//	@Produce	json
//	@Param		id	path		string	true	"Category ID"	Format(uuid)
//	@Success	200	{object}	response.APIResponse{data=models.Category}
//	@Failure	404	{object}	response.APIResponse
//	@Router		/categories/{id} [get]
func (h *CategoryHandler) GetCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		category, err := h.categoryService.GetCategory(r.Context(), id)
		if err != nil {
			fail(w, r, logger, "Failed to get category", err)
			return
		}

		response.Success(w, http.StatusOK, "Category retrieved", category)
	}
}

// ListCategoryProducts godoc
//
//	@Summary	Products in a category
//	@Tags		Categories
//	@Produce	json
//	@Param		id		path		string	true	"Category ID"	Format(uuid)
//	@Param		page	query		int		false	"Page (default 1)"
//	@Param		limit	query		int		false	"Page size (default 10, max 100)"
//	@Success	200		{object}	response.APIResponse{data=[]models.Product}
//	@Failure	404		{object}	response.APIResponse
//	@Router		/categories/{id}/products [get]
func (h *CategoryHandler) ListCategoryProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		page, limit := utils.ParsePagination(r)

		products, total, err := h.categoryService.ListCategoryProducts(r.Context(), id, page, limit)
		if err != nil {
			fail(w, r, logger, "Failed to list category products", err)
			return
		}

		response.Paginated(w, "Products retrieved", products, models.NewPagination(page, limit, total))
	}
}

// CreateCategory godoc
//
//	@Summary	Create a category (admin)
//	@Tags		Categories
//	@Accept		json
//	@Produce	json
//	@Param		category	body		models.CreateCategoryRequest	true	"Category"
//	@Success	201			{object}	response.APIResponse{data=models.Category}
//	@Failure	400			{object}	response.APIResponse
//	@Failure	409			{object}	response.APIResponse	"Name already in use"
//	@Security	BearerAuth
//	@Router		/categories [post]
func (h *CategoryHandler) CreateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreateCategoryRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		category, err := h.categoryService.CreateCategory(r.Context(), &req)
		if err != nil {
			fail(w, r, logger, "Failed to create category", err)
			return
		}

		logger.Info("Category created", slog.String("categoryId", category.ID.String()))
		response.Success(w, http.StatusCreated, "Category created", category)
	}
}

// UpdateCategory godoc
//
//	@Summary	Update a category (admin)
//	@Tags		Categories
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string							true	"Category ID"	Format(uuid)
//	@Param		category	body		models.UpdateCategoryRequest	true	"Fields to change"
//	@Success	200			{object}	response.APIResponse{data=models.Category}
//	@Failure	400			{object}	response.APIResponse
//	@Failure	404			{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		var req models.UpdateCategoryRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		category, err := h.categoryService.UpdateCategory(r.Context(), id, &req)
		if err != nil {
			fail(w, r, logger, "Failed to update category", err)
			return
		}

		response.Success(w, http.StatusOK, "Category updated", category)
	}
}

// DeleteCategory godoc
//
//	@Summary	Delete a category (admin)
//	@Tags		Categories
//	@Produce	json
//	@Param		id	path		string	true	"Category ID"	Format(uuid)
//	@Success	200	{object}	response.APIResponse
//	@Failure	404	{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
			fail(w, r, logger, "Failed to delete category", err)
			return
		}

		response.Success(w, http.StatusOK, "Category deleted", nil)
	}
}
