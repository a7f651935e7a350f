package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error)
	ListOrders(ctx context.Context, status models.OrderStatus, page, size int) ([]*models.Order, int, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error
	MarkOrderPaid(ctx context.Context, id uuid.UUID, paymentID string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paymentID string) error
	HasDeliveredOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `id, user_id, tracking_id, status, total_amount, shipping_address, payment_status, payment_id, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	order := &models.Order{Items: []models.OrderItem{}}

	err := row.Scan(&order.ID, &order.UserID, &order.TrackingID, &order.Status, &order.TotalAmount, &order.ShippingAddress,
		&order.PaymentStatus, &order.PaymentID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// CreateOrder inserts the order and its items. Callers that also adjust stock
// should run it inside Transactor.WithinTransaction.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	db := conn(ctx, r.DB)

	query := `
		INSERT INTO orders (user_id, tracking_id, status, total_amount, shipping_address, payment_status, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := db.QueryRowContext(dbCtx, query, order.UserID, order.TrackingID, order.Status, order.TotalAmount,
		order.ShippingAddress, order.PaymentStatus, order.PaymentID).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		err := db.QueryRowContext(dbCtx, itemQuery, order.ID, item.ProductID, item.Quantity, item.Price).
			Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order, err := scanOrder(conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	if err := attachItems(dbCtx, conn(ctx, r.DB), []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	return r.listOrders(ctx, `WHERE user_id = $1`, []any{userID}, page, size)
}

// ListOrders lists every order, optionally narrowed to one status.
func (r *orderRepository) ListOrders(ctx context.Context, status models.OrderStatus, page, size int) ([]*models.Order, int, error) {
	if status == "" {
		return r.listOrders(ctx, "", nil, page, size)
	}

	return r.listOrders(ctx, `WHERE status = $1`, []any{status}, page, size)
}

func (r *orderRepository) listOrders(ctx context.Context, where string, args []any, page, size int) ([]*models.Order, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	db := conn(ctx, r.DB)

	var total int
	if err := db.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	orders, err := queryOrders(dbCtx, db, query, append(args, size, models.Offset(page, size))...)
	if err != nil {
		return nil, 0, err
	}

	if err := attachItems(dbCtx, db, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// queryOrders drains its rows before returning so the connection is free
// for the item query that follows.
func queryOrders(ctx context.Context, db Querier, query string, args ...any) ([]*models.Order, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan the orders: %w", err)
		}

		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// attachItems loads the items of all orders with one query.
func attachItems(ctx context.Context, db Querier, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[uuid.UUID]*models.Order, len(orders))

	for _, order := range orders {
		ids = append(ids, order.ID.String())
		byID[order.ID] = order
	}

	query := `
		SELECT id, order_id, product_id, quantity, price, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY created_at, id`

	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get the order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem

		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	return rows.Err()
}

// TransitionStatus moves the order from one status to another. It returns
// ErrStatusConflict when the order exists but is no longer in status from.
func (r *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if err := expectOneRow(result); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrStatusConflict
		}

		return err
	}

	return nil
}

const orderExistsQuery = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`

// MarkOrderPaid records a confirmed payment. Only a pending order advances
// to processing; later statuses are left alone. An order already paid or
// refunded yields ErrStatusConflict.
func (r *orderRepository) MarkOrderPaid(ctx context.Context, id uuid.UUID, paymentID string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	db := conn(ctx, r.DB)

	query := `
		UPDATE orders
		SET status = CASE WHEN status = 'pending' THEN 'processing' ELSE status END,
			payment_status = 'paid', payment_id = $1, updated_at = NOW()
		WHERE id = $2 AND payment_status = ANY($3)`

	result, err := db.ExecContext(dbCtx, query, paymentID, id, pq.Array(models.PaymentStatusesLeadingTo(models.PaymentStatusPaid)))
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	return expectTransition(ctx, db, result, orderExistsQuery, id)
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paymentID string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	db := conn(ctx, r.DB)

	query := `UPDATE orders SET payment_status = $1, payment_id = $2, updated_at = NOW() WHERE id = $3 AND payment_status = ANY($4)`

	result, err := db.ExecContext(dbCtx, query, status, paymentID, id, pq.Array(models.PaymentStatusesLeadingTo(status)))
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return expectTransition(ctx, db, result, orderExistsQuery, id)
}

func (r *orderRepository) HasDeliveredOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = 'delivered'
		)`

	var exists bool
	if err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}

	return exists, nil
}
