package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, login string) (*models.User, error)
	UpdateStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, user *models.User) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, password, role, COALESCE(stripe_customer_id, ''), is_verified, created_at, updated_at`

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (username, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, user.Username, user.Email, user.Password, user.Role).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}

		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `WHERE email = $1`, email)
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getUser(ctx, `WHERE id = $1`, id)
}

// GetUserByUsernameOrEmail matches emails case-insensitively and usernames
// exactly. An email match wins over a username that happens to equal it.
func (r *userRepository) GetUserByUsernameOrEmail(ctx context.Context, login string) (*models.User, error) {
	return r.getUser(ctx, `WHERE username = $1 OR email = LOWER($1) ORDER BY email = LOWER($1) DESC LIMIT 1`, login)
}

func (r *userRepository) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	user := &models.User{}

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT `+userColumns+` FROM users `+where, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.StripeCustomerID, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return user, nil
}

func (r *userRepository) UpdateStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx,
		`UPDATE users SET stripe_customer_id = $1, updated_at = NOW() WHERE id = $2`, customerID, id)
	if err != nil {
		return fmt.Errorf("failed to save stripe customer: %w", err)
	}

	return expectOneRow(result)
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx,
		`UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}

	return expectOneRow(result)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx,
		`UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectOneRow(result)
}

// UpdateProfile writes username and email. A new email address drops the
// verified flag.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET username = $1, email = $2, is_verified = (is_verified AND email = $2), updated_at = NOW()
		WHERE id = $3
		RETURNING is_verified, updated_at`

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, user.Username, user.Email, user.ID).
		Scan(&user.IsVerified, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}

		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}

		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}
