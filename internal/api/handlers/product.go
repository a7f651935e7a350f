package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: validator.New()}
}

// CreateProduct godoc
//
//	@Summary	Create a product (admin)
//	@Tags		Products
//	@Accept		json
//	@Produce	json
//	@Param		product	body		models.CreateProductRequest	true	"Product"
//	@Success	201		{object}	response.APIResponse{data=models.Product}
//	@Failure	400		{object}	response.APIResponse
//	@Failure	401		{object}	response.APIResponse
//	@Failure	403		{object}	response.APIResponse
//	@Failure	404		{object}	response.APIResponse	"Category not found"
//	@Security	BearerAuth
//	@Router		/products [post]
func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			fail(w, r, logger, "Failed to create product", err)
			return
		}

		logger.Info("Product created", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusCreated, "Product created", product)
	}
}

// GetProduct godoc
//
//	@Summary	Get a product
//	@Tags		Products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"	Format(uuid)
//	@Success	200	{object}	response.APIResponse{data=models.Product}
//	@Failure	400	{object}	response.APIResponse
//	@Failure	404	{object}	response.APIResponse
//	@Router		/products/{id} [get]
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		product, err := h.productService.GetProduct(r.Context(), id)
		if err != nil {
			fail(w, r, logger, "Failed to get product", err)
			return
		}

		response.Success(w, http.StatusOK, "Product retrieved", product)
	}
}

// ListProducts godoc
//
//	@Summary	Browse products
//	@Tags		Products
//	@Produce	json
//	@Param		category	query		string	false	"Category ID"	Format(uuid)
//	@Param		minPrice	query		string	false	"Minimum price"
//	@Param		maxPrice	query		string	false	"Maximum price"
//	@Param		search		query		string	false	"Name or description contains"
//	@Param		sort		query		string	false	"Sort order"	Enums(created_at, price, name)
//	@Param		page		query		int		false	"Page (default 1)"
//	@Param		limit		query		int		false	"Page size (default 10, max 100)"
//	@Success	200			{object}	response.APIResponse{data=[]models.Product}
//	@Failure	400			{object}	response.APIResponse
//	@Router		/products [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		filter, err := productFilter(r)
		if err != nil {
			fail(w, r, logger, "Invalid product filter", err)
			return
		}

		products, total, err := h.productService.ListProducts(r.Context(), filter)
		if err != nil {
			fail(w, r, logger, "Failed to list products", err)
			return
		}

		response.Paginated(w, "Products retrieved", products, models.NewPagination(filter.Page, filter.Limit, total))
	}
}

func productFilter(r *http.Request) (models.ProductFilter, error) {
	query := r.URL.Query()
	page, limit := utils.ParsePagination(r)

	filter := models.ProductFilter{
		Search: query.Get("search"),
		Sort:   query.Get("sort"),
		Page:   page,
		Limit:  limit,
	}

	if raw := query.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, appErrors.BadRequestError("Invalid category format")
		}

		filter.CategoryID = &id
	}

	var err error
	if filter.MinPrice, err = priceParam(query.Get("minPrice"), "minPrice"); err != nil {
		return filter, err
	}

	if filter.MaxPrice, err = priceParam(query.Get("maxPrice"), "maxPrice"); err != nil {
		return filter, err
	}

	return filter, nil
}

func priceParam(raw, name string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, appErrors.BadRequestError("Invalid " + name)
	}

	return &value, nil
}

// UpdateProduct godoc
//
//	@Summary	Update a product (admin)
//	@Tags		Products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Product ID"	Format(uuid)
//	@Param		product	body		models.UpdateProductRequest	true	"Fields to change"
//	@Success	200		{object}	response.APIResponse{data=models.Product}
//	@Failure	400		{object}	response.APIResponse
//	@Failure	401		{object}	response.APIResponse
//	@Failure	403		{object}	response.APIResponse
//	@Failure	404		{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/products/{id} [put]
func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			fail(w, r, logger, "Failed to update product", err)
			return
		}

		response.Success(w, http.StatusOK, "Product updated", product)
	}
}

// DeleteProduct godoc
//
//	@Summary	Delete a product (admin)
//	@Tags		Products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"	Format(uuid)
//	@Success	200	{object}	response.APIResponse
//	@Failure	401	{object}	response.APIResponse
//	@Failure	403	{object}	response.APIResponse
//	@Failure	404	{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/products/{id} [delete]
func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			fail(w, r, logger, "Failed to delete product", err)
			return
		}

		logger.Info("Product deleted", slog.String("productId", id.String()))
		response.Success(w, http.StatusOK, "Product deleted", nil)
	}
}
