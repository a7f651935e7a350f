package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{
	"id", "user_id", "tracking_id", "status", "total_amount", "shipping_address", "payment_status", "payment_id", "created_at", "updated_at",
}

var orderItemColumns = []string{"id", "order_id", "product_id", "quantity", "price", "created_at"}

func TestOrderRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewOrderRepo(db)
	ctx := t.Context()

	orderID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	insertOrder := regexp.QuoteMeta(`INSERT INTO orders (user_id, tracking_id, status, total_amount, shipping_address, payment_status, payment_id)`)
	insertItem := regexp.QuoteMeta(`INSERT INTO order_items (order_id, product_id, quantity, price)`)

	newOrder := func() *models.Order {
		return &models.Order{
			UserID:          userID,
			TrackingID:      "a1b2c3d4e5f60718",
			Status:          models.OrderStatusPending,
			TotalAmount:     decimal.RequireFromString("5.98"),
			ShippingAddress: "1 Market St",
			PaymentStatus:   models.PaymentStatusPending,
			Items: []models.OrderItem{
				{ProductID: productID, Quantity: 2, Price: decimal.RequireFromString("2.99")},
			},
		}
	}

	t.Run("CreateOrder", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			// Arrange
			order := newOrder()
			itemID := uuid.New()

			mock.ExpectQuery(insertOrder).
				WithArgs(userID, order.TrackingID, order.Status, order.TotalAmount, order.ShippingAddress, order.PaymentStatus, "").
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(orderID.String(), now, now))
			mock.ExpectQuery(insertItem).
				WithArgs(orderID, productID, 2, order.Items[0].Price).
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(itemID.String(), now))

			// Act
			err := repo.CreateOrder(ctx, order)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, orderID, order.ID)
			assert.Equal(t, itemID, order.Items[0].ID)
			assert.Equal(t, orderID, order.Items[0].OrderID)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Duplicate tracking id", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(insertOrder).WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_tracking_id_key"})

			// Act
			err := repo.CreateOrder(ctx, newOrder())

			// Assert
			require.ErrorIs(t, err, repository.ErrDuplicateEntry)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Item insert fails", func(t *testing.T) {
			// Arrange
			dbErr := errors.New("fk violation")

			mock.ExpectQuery(insertOrder).
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(orderID.String(), now, now))
			mock.ExpectQuery(insertItem).WillReturnError(dbErr)

			// Act
			err := repo.CreateOrder(ctx, newOrder())

			// Assert
			require.ErrorIs(t, err, dbErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("GetOrderByID", func(t *testing.T) {
		query := regexp.QuoteMeta(`FROM orders WHERE id = $1`)
		itemsQuery := regexp.QuoteMeta(`FROM order_items WHERE order_id = ANY($1::uuid[])`)

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(query).
				WithArgs(orderID).
				WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(
					orderID.String(), userID.String(), "a1b2c3d4e5f60718", "pending", "5.98", "1 Market St", "pending", "", now, now))
			mock.ExpectQuery(itemsQuery).
				WithArgs(pq.Array([]string{orderID.String()})).
				WillReturnRows(sqlmock.NewRows(orderItemColumns).
					AddRow(uuid.NewString(), orderID.String(), productID.String(), 2, "2.99", now))

			// Act
			order, err := repo.GetOrderByID(ctx, orderID)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusPending, order.Status)
			assert.Equal(t, "1 Market St", order.ShippingAddress)
			require.Len(t, order.Items, 1)
			assert.Equal(t, 2, order.Items[0].Quantity)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Not Found", func(t *testing.T) {
			mock.ExpectQuery(query).WithArgs(orderID).WillReturnError(sql.ErrNoRows)

			order, err := repo.GetOrderByID(ctx, orderID)

			require.ErrorIs(t, err, repository.ErrNotFound)
			assert.Nil(t, order)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("ListOrdersByUser", func(t *testing.T) {
		// Arrange
		otherID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM orders WHERE user_id = $1`)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`)).
			WithArgs(userID, 10, 10).
			WillReturnRows(sqlmock.NewRows(orderRowColumns).
				AddRow(orderID.String(), userID.String(), "t1", "pending", "5.98", "addr", "pending", "", now, now).
				AddRow(otherID.String(), userID.String(), "t2", "delivered", "1.00", "addr", "paid", "pi_1", now, now))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items WHERE order_id = ANY($1::uuid[])`)).
			WillReturnRows(sqlmock.NewRows(orderItemColumns).
				AddRow(uuid.NewString(), otherID.String(), productID.String(), 1, "1.00", now))

		// Act
		orders, total, err := repo.ListOrdersByUser(ctx, userID, 2, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		require.Len(t, orders, 2)
		assert.Empty(t, orders[0].Items)
		assert.Len(t, orders[1].Items, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListOrders - Status filter", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM orders WHERE status = $1`)).
			WithArgs(models.OrderStatusShipped).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`)).
			WithArgs(models.OrderStatusShipped, 10, 0).
			WillReturnRows(sqlmock.NewRows(orderRowColumns))

		orders, total, err := repo.ListOrders(ctx, models.OrderStatusShipped, 1, 10)

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, orders)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("TransitionStatus", func(t *testing.T) {
		query := regexp.QuoteMeta(`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`)

		t.Run("Success", func(t *testing.T) {
			mock.ExpectExec(query).
				WithArgs(models.OrderStatusCancelled, orderID, models.OrderStatusPending).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.TransitionStatus(ctx, orderID, models.OrderStatusPending, models.OrderStatusCancelled))
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Conflict", func(t *testing.T) {
			mock.ExpectExec(query).
				WithArgs(models.OrderStatusCancelled, orderID, models.OrderStatusPending).
				WillReturnResult(sqlmock.NewResult(0, 0))

			err := repo.TransitionStatus(ctx, orderID, models.OrderStatusPending, models.OrderStatusCancelled)

			require.ErrorIs(t, err, repository.ErrStatusConflict)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	orderExists := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`)

	t.Run("MarkOrderPaid", func(t *testing.T) {
		query := regexp.QuoteMeta(`SET status = CASE WHEN status = 'pending' THEN 'processing' ELSE status END, payment_status = 'paid', payment_id = $1`)
		payable := pq.Array([]string{"pending", "failed"})

		t.Run("Success", func(t *testing.T) {
			mock.ExpectExec(query).WithArgs("pi_123", orderID, payable).WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.MarkOrderPaid(ctx, orderID, "pi_123"))
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Not Found", func(t *testing.T) {
			mock.ExpectExec(query).WithArgs("pi_123", orderID, payable).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(orderExists).WithArgs(orderID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

			require.ErrorIs(t, repo.MarkOrderPaid(ctx, orderID, "pi_123"), repository.ErrNotFound)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Already refunded", func(t *testing.T) {
			mock.ExpectExec(query).WithArgs("pi_123", orderID, payable).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(orderExists).WithArgs(orderID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

			require.ErrorIs(t, repo.MarkOrderPaid(ctx, orderID, "pi_123"), repository.ErrStatusConflict)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("UpdatePaymentStatus", func(t *testing.T) {
		query := regexp.QuoteMeta(`UPDATE orders SET payment_status = $1, payment_id = $2, updated_at = NOW() WHERE id = $3 AND payment_status = ANY($4)`)

		t.Run("Success", func(t *testing.T) {
			mock.ExpectExec(query).
				WithArgs(models.PaymentStatusPending, "pi_9", orderID, pq.Array([]string{"pending", "failed"})).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusPending, "pi_9"))
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Late failure on a paid order", func(t *testing.T) {
			mock.ExpectExec(query).
				WithArgs(models.PaymentStatusFailed, "pi_9", orderID, pq.Array([]string{"pending"})).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(orderExists).WithArgs(orderID).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

			err := repo.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusFailed, "pi_9")

			require.ErrorIs(t, err, repository.ErrStatusConflict)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("HasDeliveredOrderWithProduct", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
			WithArgs(userID, productID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.HasDeliveredOrderWithProduct(ctx, userID, productID)

		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
