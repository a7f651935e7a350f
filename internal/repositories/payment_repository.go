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

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	GetPendingCartPayment(ctx context.Context, userID uuid.UUID) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, intentID string, status models.PaymentStatus) error
	MarkPaymentSucceeded(ctx context.Context, intentID string) (bool, error)
}

type paymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepo(db *sql.DB) PaymentRepository {
	return &paymentRepository{DB: db}
}

const paymentColumns = `id, user_id, order_id, source, stripe_intent_id, stripe_customer_id, amount, currency, status, created_at, updated_at`

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.Payment, error) {
	payment := &models.Payment{}

	var orderID uuid.NullUUID

	err := row.Scan(&payment.ID, &payment.UserID, &orderID, &payment.Source, &payment.StripeIntentID, &payment.StripeCustomerID,
		&payment.Amount, &payment.Currency, &payment.Status, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if orderID.Valid {
		payment.OrderID = &orderID.UUID
	}

	return payment, nil
}

func (r *paymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO payments (user_id, order_id, source, stripe_intent_id, stripe_customer_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, payment.UserID, payment.OrderID, payment.Source, payment.StripeIntentID,
		payment.StripeCustomerID, payment.Amount, payment.Currency, payment.Status).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}

		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	payment, err := scanPayment(conn(ctx, r.DB).QueryRowContext(dbCtx,
		`SELECT `+paymentColumns+` FROM payments WHERE stripe_intent_id = $1`, intentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// GetPendingCartPayment returns the newest unfinished cart checkout of the
// user, which a repeated checkout call resumes instead of charging again.
func (r *paymentRepository) GetPendingCartPayment(ctx context.Context, userID uuid.UUID) (*models.Payment, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE user_id = $1 AND source = 'cart' AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`

	payment, err := scanPayment(conn(ctx, r.DB).QueryRowContext(dbCtx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get pending payment: %w", err)
	}

	return payment, nil
}

// UpdatePaymentStatus applies a status change allowed by
// PaymentStatus.CanTransitionTo. A row already past the move yields
// ErrStatusConflict and is left untouched.
func (r *paymentRepository) UpdatePaymentStatus(ctx context.Context, intentID string, status models.PaymentStatus) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	db := conn(ctx, r.DB)

	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE stripe_intent_id = $2 AND status = ANY($3)`

	result, err := db.ExecContext(dbCtx, query, status, intentID, pq.Array(models.PaymentStatusesLeadingTo(status)))
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return expectTransition(ctx, db, result, `SELECT EXISTS (SELECT 1 FROM payments WHERE stripe_intent_id = $1)`, intentID)
}

// MarkPaymentSucceeded flips a pending payment to paid and reports whether
// this call did it. A false result means the outcome was already applied.
func (r *paymentRepository) MarkPaymentSucceeded(ctx context.Context, intentID string) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE payments SET status = 'paid', updated_at = NOW() WHERE stripe_intent_id = $1 AND status = 'pending'`

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, query, intentID)
	if err != nil {
		return false, fmt.Errorf("failed to mark payment paid: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}
