package repository_test

import (
	"database/sql"
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

var paymentRowColumns = []string{
	"id", "user_id", "order_id", "source", "stripe_intent_id", "stripe_customer_id", "amount", "currency", "status", "created_at", "updated_at",
}

func TestPaymentRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewPaymentRepo(db)
	ctx := t.Context()

	paymentID := uuid.New()
	userID := uuid.New()
	orderID := uuid.New()
	now := time.Now()

	t.Run("CreatePayment", func(t *testing.T) {
		// Arrange
		payment := &models.Payment{
			UserID:           userID,
			OrderID:          &orderID,
			Source:           models.PaymentSourceOrder,
			StripeIntentID:   "pi_123",
			StripeCustomerID: "cus_123",
			Amount:           decimal.RequireFromString("12.50"),
			Currency:         "usd",
			Status:           models.PaymentStatusPending,
		}

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO payments (user_id, order_id, source, stripe_intent_id, stripe_customer_id, amount, currency, status)`)).
			WithArgs(userID, orderID, payment.Source, "pi_123", "cus_123", payment.Amount, "usd", payment.Status).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(paymentID.String(), now, now))

		// Act
		err := repo.CreatePayment(ctx, payment)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, paymentID, payment.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetPendingCartPayment", func(t *testing.T) {
		query := regexp.QuoteMeta(`WHERE user_id = $1 AND source = 'cart' AND status = 'pending'`)

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(query).
				WithArgs(userID).
				WillReturnRows(sqlmock.NewRows(paymentRowColumns).AddRow(
					paymentID.String(), userID.String(), nil, "cart", "pi_cart", "cus_1", "8.97", "usd", "pending", now, now))

			// Act
			payment, err := repo.GetPendingCartPayment(ctx, userID)

			// Assert
			require.NoError(t, err)
			assert.Nil(t, payment.OrderID)
			assert.Equal(t, models.PaymentSourceCart, payment.Source)
			assert.Equal(t, "pi_cart", payment.StripeIntentID)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("None pending", func(t *testing.T) {
			mock.ExpectQuery(query).WithArgs(userID).WillReturnError(sql.ErrNoRows)

			_, err := repo.GetPendingCartPayment(ctx, userID)

			require.ErrorIs(t, err, repository.ErrNotFound)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("GetPaymentByIntentID", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE stripe_intent_id = $1`)).
			WithArgs("pi_order").
			WillReturnRows(sqlmock.NewRows(paymentRowColumns).AddRow(
				paymentID.String(), userID.String(), orderID.String(), "order", "pi_order", "", "12.50", "usd", "pending", now, now))

		payment, err := repo.GetPaymentByIntentID(ctx, "pi_order")

		require.NoError(t, err)
		require.NotNil(t, payment.OrderID)
		assert.Equal(t, orderID, *payment.OrderID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MarkPaymentSucceeded", func(t *testing.T) {
		query := regexp.QuoteMeta(`UPDATE payments SET status = 'paid', updated_at = NOW() WHERE stripe_intent_id = $1 AND status = 'pending'`)

		t.Run("First application", func(t *testing.T) {
			mock.ExpectExec(query).WithArgs("pi_cart").WillReturnResult(sqlmock.NewResult(0, 1))

			applied, err := repo.MarkPaymentSucceeded(ctx, "pi_cart")

			require.NoError(t, err)
			assert.True(t, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Already applied", func(t *testing.T) {
			mock.ExpectExec(query).WithArgs("pi_cart").WillReturnResult(sqlmock.NewResult(0, 0))

			applied, err := repo.MarkPaymentSucceeded(ctx, "pi_cart")

			require.NoError(t, err)
			assert.False(t, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("UpdatePaymentStatus", func(t *testing.T) {
		query := regexp.QuoteMeta(`UPDATE payments SET status = $1, updated_at = NOW() WHERE stripe_intent_id = $2 AND status = ANY($3)`)
		exists := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM payments WHERE stripe_intent_id = $1)`)

		t.Run("Success", func(t *testing.T) {
			mock.ExpectExec(query).
				WithArgs(models.PaymentStatusRefunded, "pi_paid", pq.Array([]string{"paid"})).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.UpdatePaymentStatus(ctx, "pi_paid", models.PaymentStatusRefunded))
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Unknown intent", func(t *testing.T) {
			mock.ExpectExec(query).
				WithArgs(models.PaymentStatusFailed, "pi_missing", pq.Array([]string{"pending"})).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(exists).WithArgs("pi_missing").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

			err := repo.UpdatePaymentStatus(ctx, "pi_missing", models.PaymentStatusFailed)

			require.ErrorIs(t, err, repository.ErrNotFound)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Refund of a pending payment", func(t *testing.T) {
			mock.ExpectExec(query).
				WithArgs(models.PaymentStatusRefunded, "pi_pending", pq.Array([]string{"paid"})).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(exists).WithArgs("pi_pending").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

			err := repo.UpdatePaymentStatus(ctx, "pi_pending", models.PaymentStatusRefunded)

			require.ErrorIs(t, err, repository.ErrStatusConflict)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})
}
