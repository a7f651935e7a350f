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
	"github.com/stretchr/testify/require"
)

func TestOrderHandler_CreateOrder(t *testing.T) {
	userID := uuid.New()
	createReq := models.CreateOrderRequest{
		Items:           []models.OrderLineRequest{{ProductID: uuid.New(), Quantity: 2}},
		ShippingAddress: "12 Orchard Lane",
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		orderService := mocks.NewOrderService(t)
		h := handlers.NewOrderHandler(orderService)

		order := &models.Order{
			ID:          uuid.New(),
			UserID:      userID,
			TrackingID:  "a1b2c3d4e5f60718",
			Status:      models.OrderStatusPending,
			TotalAmount: decimal.RequireFromString("5.98"),
		}
		orderService.On("CreateOrder", mock.Anything, userID, &createReq).Return(order, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/orders/create", jsonBody(t, createReq), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		h.CreateOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"trackingId":"a1b2c3d4e5f60718"`)
	})

	t.Run("Failure - No items", func(t *testing.T) {
		h := handlers.NewOrderHandler(mocks.NewOrderService(t))

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/orders/create",
			jsonBody(t, models.CreateOrderRequest{Items: []models.OrderLineRequest{}, ShippingAddress: "x"}), userID, nil)
		rr := httptest.NewRecorder()

		h.CreateOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeResponse(t, rr).Code)
	})

	t.Run("Failure - Stock exhausted", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		h := handlers.NewOrderHandler(orderService)
		orderService.On("CreateOrder", mock.Anything, userID, mock.Anything).
			Return(nil, appErrors.InsufficientStockError("Insufficient stock for Milk")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/orders/create", jsonBody(t, createReq), userID, nil)
		rr := httptest.NewRecorder()

		h.CreateOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Insufficient stock for Milk", decodeResponse(t, rr).Message)
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	auth := models.AuthContext{UserID: userID, Email: "test@example.com"}

	tests := []struct {
		name       string
		pathID     string
		setupMock  func(m *mocks.OrderService)
		wantStatus int
	}{
		{
			name:   "Success",
			pathID: orderID.String(),
			setupMock: func(m *mocks.OrderService) {
				m.On("GetOrder", mock.Anything, auth, orderID).Return(&models.Order{ID: orderID, UserID: userID}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "Failure - Someone else's order",
			pathID: orderID.String(),
			setupMock: func(m *mocks.OrderService) {
				m.On("GetOrder", mock.Anything, auth, orderID).Return(nil, appErrors.NotFoundError("Order not found")).Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Failure - Bad UUID",
			pathID:     "not-a-uuid",
			setupMock:  func(*mocks.OrderService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orderService := mocks.NewOrderService(t)
			tc.setupMock(orderService)
			h := handlers.NewOrderHandler(orderService)

			req := testutils.CreateTestRequestWithAuth(http.MethodGet, "/api/orders/"+tc.pathID, nil, auth, map[string]string{"id": tc.pathID})
			rr := httptest.NewRecorder()

			h.GetOrder().ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestOrderHandler_ListUserOrders(t *testing.T) {
	userID := uuid.New()
	orderService := mocks.NewOrderService(t)
	h := handlers.NewOrderHandler(orderService)

	orders := []*models.Order{{ID: uuid.New(), UserID: userID}, {ID: uuid.New(), UserID: userID}}
	orderService.On("ListUserOrders", mock.Anything, userID, 2, 2).Return(orders, 5, nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/orders/user?page=2&limit=2", nil, userID, nil)
	rr := httptest.NewRecorder()

	h.ListUserOrders().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, models.Pagination{Page: 2, Limit: 2, TotalItems: 5, TotalPages: 3}, *resp.Pagination)
}

func TestOrderHandler_ListAllOrders(t *testing.T) {
	orderService := mocks.NewOrderService(t)
	h := handlers.NewOrderHandler(orderService)
	admin := models.AuthContext{UserID: uuid.New(), IsAdmin: true}

	orderService.On("ListAllOrders", mock.Anything, models.OrderStatusShipped, 1, 10).Return([]*models.Order{}, 0, nil).Once()

	req := testutils.CreateTestRequestWithAuth(http.MethodGet, "/api/orders?status=shipped", nil, admin, nil)
	rr := httptest.NewRecorder()

	h.ListAllOrders().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	auth := models.AuthContext{UserID: userID, Email: "test@example.com"}

	t.Run("Success", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		h := handlers.NewOrderHandler(orderService)
		orderService.On("CancelOrder", mock.Anything, auth, orderID).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusCancelled}, nil).Once()

		req := testutils.CreateTestRequestWithAuth(http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", nil, auth,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		h.CancelOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"cancelled"`)
	})

	t.Run("Failure - Already shipped", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		h := handlers.NewOrderHandler(orderService)
		orderService.On("CancelOrder", mock.Anything, auth, orderID).
			Return(nil, appErrors.BadRequestError("Only pending orders can be cancelled")).Once()

		req := testutils.CreateTestRequestWithAuth(http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", nil, auth,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		h.CancelOrder().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Only pending orders can be cancelled", decodeResponse(t, rr).Message)
	})
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	orderID := uuid.New()
	admin := models.AuthContext{UserID: uuid.New(), IsAdmin: true}
	params := map[string]string{"id": orderID.String()}

	t.Run("Success", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		h := handlers.NewOrderHandler(orderService)
		orderService.On("UpdateOrderStatus", mock.Anything, orderID, models.OrderStatusShipped).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusShipped}, nil).Once()

		req := testutils.CreateTestRequestWithAuth(http.MethodPut, "/api/orders/"+orderID.String()+"/status",
			jsonBody(t, models.UpdateOrderStatusRequest{Status: models.OrderStatusShipped}), admin, params)
		rr := httptest.NewRecorder()

		h.UpdateOrderStatus().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Backwards transition", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		h := handlers.NewOrderHandler(orderService)
		orderService.On("UpdateOrderStatus", mock.Anything, orderID, models.OrderStatusPending).
			Return(nil, appErrors.BadRequestError("Cannot change order status from shipped to pending")).Once()

		req := testutils.CreateTestRequestWithAuth(http.MethodPut, "/api/orders/"+orderID.String()+"/status",
			jsonBody(t, models.UpdateOrderStatusRequest{Status: models.OrderStatusPending}), admin, params)
		rr := httptest.NewRecorder()

		h.UpdateOrderStatus().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
