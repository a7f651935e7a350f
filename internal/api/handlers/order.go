package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

// CreateOrder godoc
//
//	@Summary		Place an order
//	@Description	Reserves stock for every line at the current price. Either all lines succeed or nothing is written.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		models.CreateOrderRequest	true	"Items and shipping address"
//	@Success		201		{object}	response.APIResponse{data=models.Order}
//	@Failure		400		{object}	response.APIResponse	"Validation error or insufficient stock"
//	@Failure		401		{object}	response.APIResponse
//	@Failure		404		{object}	response.APIResponse	"Product not found"
//	@Failure		500		{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/orders/create [post]
func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.CreateOrder(r.Context(), auth.UserID, &req)
		if err != nil {
			fail(w, r, logger, "Failed to create order", err)
			return
		}

		logger.Info("Order created",
			slog.String("orderId", order.ID.String()),
			slog.String("trackingId", order.TrackingID))
		response.Success(w, http.StatusCreated, "Order created", order)
	}
}

// GetOrder godoc
//
//	@Summary		Get an order
//	@Description	Owners see their own orders and admins see any. Other callers get 404.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	Format(uuid)
//	@Success		200	{object}	response.APIResponse{data=models.Order}
//	@Failure		400	{object}	response.APIResponse
//	@Failure		401	{object}	response.APIResponse
//	@Failure		404	{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/orders/{id} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		order, err := h.orderService.GetOrder(r.Context(), auth, id)
		if err != nil {
			fail(w, r, logger, "Failed to get order", err)
			return
		}

		response.Success(w, http.StatusOK, "Order retrieved", order)
	}
}

// ListUserOrders godoc
//
//	@Summary	List the caller's orders
//	@Tags		Orders
//	@Produce	json
//	@Param		page	query		int	false	"Page (default 1)"				minimum(1)
//	@Param		limit	query		int	false	"Page size (default 10, max 100)"	minimum(1)	maximum(100)
//	@Success	200		{object}	response.APIResponse{data=[]models.Order}
//	@Failure	401		{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/orders/user [get]
func (h *OrderHandler) ListUserOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, limit := utils.ParsePagination(r)

		orders, total, err := h.orderService.ListUserOrders(r.Context(), auth.UserID, page, limit)
		if err != nil {
			fail(w, r, logger, "Failed to list orders", err)
			return
		}

		response.Paginated(w, "Orders retrieved", orders, models.NewPagination(page, limit, total))
	}
}

// ListAllOrders godoc
//
//	@Summary	List every order (admin)
//	@Tags		Orders
//	@Produce	json
//	@Param		status	query		string	false	"Filter by status"	Enums(pending, processing, shipped, delivered, cancelled)
//	@Param		page	query		int		false	"Page (default 1)"
//	@Param		limit	query		int		false	"Page size (default 10, max 100)"
//	@Success	200		{object}	response.APIResponse{data=[]models.Order}
//	@Failure	400		{object}	response.APIResponse
//	@Failure	401		{object}	response.APIResponse
//	@Failure	403		{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/orders [get]
func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, limit := utils.ParsePagination(r)
		status := models.OrderStatus(r.URL.Query().Get("status"))

		orders, total, err := h.orderService.ListAllOrders(r.Context(), status, page, limit)
		if err != nil {
			fail(w, r, logger, "Failed to list all orders", err)
			return
		}

		response.Paginated(w, "Orders retrieved", orders, models.NewPagination(page, limit, total))
	}
}

// CancelOrder godoc
//
//	@Summary		Cancel a pending order
//	@Description	Returns reserved stock to the shelf. Only pending orders can be cancelled.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	Format(uuid)
//	@Success		200	{object}	response.APIResponse{data=models.Order}
//	@Failure		400	{object}	response.APIResponse	"Order is not pending"
//	@Failure		401	{object}	response.APIResponse
//	@Failure		404	{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		order, err := h.orderService.CancelOrder(r.Context(), auth, id)
		if err != nil {
			fail(w, r, logger, "Failed to cancel order", err)
			return
		}

		logger.Info("Order cancelled", slog.String("orderId", id.String()))
		response.Success(w, http.StatusOK, "Order cancelled", order)
	}
}

// UpdateOrderStatus godoc
//
//	@Summary		Move an order forward (admin)
//	@Description	Allowed transitions: pending to processing or cancelled, processing to shipped, shipped to delivered.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID"	Format(uuid)
//	@Param			status	body		models.UpdateOrderStatusRequest	true	"Target status"
//	@Success		200		{object}	response.APIResponse{data=models.Order}
//	@Failure		400		{object}	response.APIResponse	"Invalid status or transition"
//	@Failure		401		{object}	response.APIResponse
//	@Failure		403		{object}	response.APIResponse
//	@Failure		404		{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/status [put]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, ok := pathID(w, r, logger, "id")
		if !ok {
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), id, req.Status)
		if err != nil {
			fail(w, r, logger, "Failed to update order status", err)
			return
		}

		logger.Info("Order status updated",
			slog.String("orderId", id.String()),
			slog.String("status", string(order.Status)))
		response.Success(w, http.StatusOK, "Order status updated", order)
	}
}
