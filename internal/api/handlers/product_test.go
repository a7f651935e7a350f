package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/aaravmahajanofficial/grocery-store/internal/services/mocks"
	"github.com/aaravmahajanofficial/grocery-store/internal/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProductHandler_ListProducts(t *testing.T) {
	categoryID := uuid.New()

	t.Run("Success - Query parsed into filter", func(t *testing.T) {
		productService := mocks.NewProductService(t)
		h := handlers.NewProductHandler(productService)

		productService.On("ListProducts", mock.Anything, mock.MatchedBy(func(f models.ProductFilter) bool {
			return f.CategoryID != nil && *f.CategoryID == categoryID &&
				f.MinPrice != nil && f.MinPrice.Equal(decimal.RequireFromString("1.50")) &&
				f.MaxPrice == nil &&
				f.Search == "apple" && f.Sort == "price" &&
				f.Page == 1 && f.Limit == 20
		})).Return([]*models.Product{{ID: uuid.New(), Name: "Apple"}}, 1, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet,
			"/api/products?category="+categoryID.String()+"&minPrice=1.50&search=apple&sort=price&limit=20", nil, nil)
		rr := httptest.NewRecorder()

		h.ListProducts().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, decodeResponse(t, rr).Pagination.TotalItems)
	})

	t.Run("Failure - Bad price", func(t *testing.T) {
		h := handlers.NewProductHandler(mocks.NewProductService(t))

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/products?maxPrice=cheap", nil, nil)
		rr := httptest.NewRecorder()

		h.ListProducts().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid maxPrice", decodeResponse(t, rr).Message)
	})

	t.Run("Failure - Bad category", func(t *testing.T) {
		h := handlers.NewProductHandler(mocks.NewProductService(t))

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/products?category=veg", nil, nil)
		rr := httptest.NewRecorder()

		h.ListProducts().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestProductHandler_GetProduct(t *testing.T) {
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		productService := mocks.NewProductService(t)
		h := handlers.NewProductHandler(productService)
		productService.On("GetProduct", mock.Anything, productID).
			Return(&models.Product{ID: productID, Name: "Bananas", Price: decimal.RequireFromString("0.99")}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/products/"+productID.String(), nil,
			map[string]string{"id": productID.String()})
		rr := httptest.NewRecorder()

		h.GetProduct().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"price":"0.99"`)
	})

	t.Run("Failure - Not found", func(t *testing.T) {
		productService := mocks.NewProductService(t)
		h := handlers.NewProductHandler(productService)
		productService.On("GetProduct", mock.Anything, productID).Return(nil, appErrors.NotFoundError("Product not found")).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/products/"+productID.String(), nil,
			map[string]string{"id": productID.String()})
		rr := httptest.NewRecorder()

		h.GetProduct().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestProductHandler_CreateProduct(t *testing.T) {
	admin := models.AuthContext{UserID: uuid.New(), IsAdmin: true}
	createReq := models.CreateProductRequest{
		CategoryID:  uuid.New(),
		Name:        "Oat Milk",
		Description: "1L carton",
		Price:       decimal.RequireFromString("2.49"),
		Stock:       40,
		ImageURL:    "https://cdn.example.com/oat.png",
	}

	t.Run("Success", func(t *testing.T) {
		productService := mocks.NewProductService(t)
		h := handlers.NewProductHandler(productService)
		productService.On("CreateProduct", mock.Anything, mock.AnythingOfType("*models.CreateProductRequest")).
			Return(&models.Product{ID: uuid.New(), Name: "Oat Milk"}, nil).Once()

		req := testutils.CreateTestRequestWithAuth(http.MethodPost, "/api/products", jsonBody(t, createReq), admin, nil)
		rr := httptest.NewRecorder()

		h.CreateProduct().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Failure - Negative stock", func(t *testing.T) {
		h := handlers.NewProductHandler(mocks.NewProductService(t))

		bad := createReq
		bad.Stock = -1

		req := testutils.CreateTestRequestWithAuth(http.MethodPost, "/api/products", jsonBody(t, bad), admin, nil)
		rr := httptest.NewRecorder()

		h.CreateProduct().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	admin := models.AuthContext{UserID: uuid.New(), IsAdmin: true}
	productID := uuid.New()

	productService := mocks.NewProductService(t)
	h := handlers.NewProductHandler(productService)
	productService.On("DeleteProduct", mock.Anything, productID).Return(nil).Once()

	req := testutils.CreateTestRequestWithAuth(http.MethodDelete, "/api/products/"+productID.String(), nil, admin,
		map[string]string{"id": productID.String()})
	rr := httptest.NewRecorder()

	h.DeleteProduct().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
