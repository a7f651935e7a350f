package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-store/internal/cache"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/events"
	"github.com/aaravmahajanofficial/grocery-store/internal/metrics"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const errOnlyPendingCancellable = "Only pending orders can be cancelled"

// DeliveryNotifier is told about orders that reached the delivered state.
// Implementations must not block the caller.
type DeliveryNotifier interface {
	NotifyOrderDelivered(ctx context.Context, order *models.Order)
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, auth models.AuthContext, id uuid.UUID) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]*models.Order, int, error)
	ListAllOrders(ctx context.Context, status models.OrderStatus, page, limit int) ([]*models.Order, int, error)
	CancelOrder(ctx context.Context, auth models.AuthContext, id uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	tx        repository.Transactor
	orders    repository.OrderRepository
	products  repository.ProductRepository
	cache     cache.Cache
	publisher events.Publisher
	notifier  DeliveryNotifier
}

func NewOrderService(
	tx repository.Transactor,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	c cache.Cache,
	publisher events.Publisher,
	notifier DeliveryNotifier,
) OrderService {
	return &orderService{
		tx:        tx,
		orders:    orders,
		products:  products,
		cache:     c,
		publisher: publisher,
		notifier:  notifier,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	logger := middleware.LoggerFromContext(ctx)

	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return nil, appErrors.BadRequestError("Shipping address is required")
	}

	if len(req.Items) == 0 {
		return nil, appErrors.BadRequestError("Order must contain at least one item")
	}

	trackingID, err := utils.GenerateTrackingID()
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate tracking ID").WithError(err)
	}

	order := &models.Order{
		UserID:          userID,
		TrackingID:      trackingID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		ShippingAddress: address,
		Items:           make([]models.OrderItem, 0, len(req.Items)),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		total := decimal.Zero

		for _, line := range inProductOrder(req.Items, lineProductID) {
			product, err := s.products.GetProductByID(ctx, line.ProductID)
			if err != nil {
				return repoError(err, fmt.Sprintf("Product %s not found", line.ProductID), "Failed to load product")
			}

			if err := checkStock(product, line.Quantity); err != nil {
				return err
			}

			if err := s.products.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				return stockError(err, product)
			}

			price := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(price)

			order.Items = append(order.Items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     price,
			})
		}

		order.TotalAmount = total

		if err := s.orders.CreateOrder(ctx, order); err != nil {
			if errors.Is(err, repository.ErrDuplicateEntry) {
				return appErrors.InternalError("Tracking ID collision").WithError(err)
			}

			return appErrors.DatabaseError("Failed to create order").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to create order")
	}

	evictProducts(ctx, s.cache, orderProductIDs(order)...)

	logger.Info("Order created",
		slog.String("orderId", order.ID.String()),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)

	publish(ctx, s.publisher, events.New(events.OrderCreated, order.ID, userID, map[string]any{
		"trackingId":  order.TrackingID,
		"totalAmount": order.TotalAmount.StringFixed(2),
		"itemCount":   len(order.Items),
	}))

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, auth models.AuthContext, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found", "Failed to load order")
	}

	if !auth.CanAccess(order.UserID) {
		return nil, appErrors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]*models.Order, int, error) {
	orders, total, err := s.orders.ListOrdersByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) ListAllOrders(ctx context.Context, status models.OrderStatus, page, limit int) ([]*models.Order, int, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, appErrors.BadRequestError("Invalid order status")
	}

	orders, total, err := s.orders.ListOrders(ctx, status, page, limit)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) CancelOrder(ctx context.Context, auth models.AuthContext, id uuid.UUID) (*models.Order, error) {
	var order *models.Order

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error

		order, err = s.orders.GetOrderByID(ctx, id)
		if err != nil {
			return repoError(err, "Order not found", "Failed to load order")
		}

		if !auth.CanAccess(order.UserID) {
			return appErrors.NotFoundError("Order not found")
		}

		return s.cancel(ctx, order)
	})
	if err != nil {
		return nil, asAppError(err, "Failed to cancel order")
	}

	s.afterCancel(ctx, order)

	return order, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, appErrors.BadRequestError("Invalid order status")
	}

	if status == models.OrderStatusCancelled {
		return s.CancelOrder(ctx, models.AuthContext{IsAdmin: true}, id)
	}

	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found", "Failed to load order")
	}

	from := order.Status
	if !from.CanTransitionTo(status) {
		return nil, appErrors.BadRequestError(fmt.Sprintf("Cannot change order status from %s to %s", from, status))
	}

	if err := s.orders.TransitionStatus(ctx, id, from, status); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, appErrors.BadRequestError("Order status changed concurrently, reload and retry").WithError(err)
		}

		return nil, repoError(err, "Order not found", "Failed to update order status")
	}

	order.Status = status

	middleware.LoggerFromContext(ctx).Info("Order status updated",
		slog.String("orderId", id.String()),
		slog.String("from", string(from)),
		slog.String("to", string(status)),
	)

	publish(ctx, s.publisher, events.New(events.OrderStatusChanged, order.ID, order.UserID, map[string]any{
		"from": string(from),
		"to":   string(status),
	}))

	if status == models.OrderStatusDelivered {
		s.notifier.NotifyOrderDelivered(ctx, order)
	}

	return order, nil
}

// cancel flips a pending order to cancelled and puts its items back on the
// shelf. It must run inside a transaction.
func (s *orderService) cancel(ctx context.Context, order *models.Order) error {
	if order.Status != models.OrderStatusPending {
		return appErrors.BadRequestError(errOnlyPendingCancellable)
	}

	if err := s.orders.TransitionStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return appErrors.BadRequestError(errOnlyPendingCancellable).WithError(err)
		}

		return repoError(err, "Order not found", "Failed to cancel order")
	}

	for _, item := range inProductOrder(order.Items, itemProductID) {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return appErrors.DatabaseError("Failed to restore stock").WithError(err)
		}
	}

	order.Status = models.OrderStatusCancelled

	return nil
}

func (s *orderService) afterCancel(ctx context.Context, order *models.Order) {
	evictProducts(ctx, s.cache, orderProductIDs(order)...)

	middleware.LoggerFromContext(ctx).Info("Order cancelled", slog.String("orderId", order.ID.String()))

	publish(ctx, s.publisher, events.New(events.OrderCancelled, order.ID, order.UserID, map[string]any{
		"itemCount": len(order.Items),
	}))
}

// stockError maps a failed conditional decrement. The row was re-checked by
// the database, so losing a race still reads as a stock problem.
func stockError(err error, product *models.Product) error {
	if errors.Is(err, repository.ErrInsufficientStock) {
		metrics.RecordStockConflict()

		return appErrors.ProductStockError(product.ID.String(), product.Name, -1).WithError(err)
	}

	return repoError(err, "Product not found", "Failed to update stock")
}

func lineProductID(line models.OrderLineRequest) uuid.UUID { return line.ProductID }

func itemProductID(item models.OrderItem) uuid.UUID { return item.ProductID }

func orderProductIDs(order *models.Order) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}

	return ids
}
