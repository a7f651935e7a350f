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

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	ListReviewsByProduct(ctx context.Context, productID uuid.UUID, page, size int) ([]*models.Review, int, error)
	ListReviewsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Review, int, error)
}

type reviewRepository struct {
	DB *sql.DB
}

func NewReviewRepo(db *sql.DB) ReviewRepository {
	return &reviewRepository{DB: db}
}

const reviewColumns = `r.id, r.user_id, r.product_id, r.rating, r.comment, u.username, r.created_at, r.updated_at`

func scanReview(row interface{ Scan(dest ...any) error }) (*models.Review, error) {
	review := &models.Review{}

	err := row.Scan(&review.ID, &review.UserID, &review.ProductID, &review.Rating, &review.Comment, &review.Username,
		&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO reviews (user_id, product_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, review.UserID, review.ProductID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}

		return fmt.Errorf("failed to insert review: %w", err)
	}

	return nil
}

func (r *reviewRepository) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + reviewColumns + ` FROM reviews r JOIN users u ON r.user_id = u.id WHERE r.id = $1`

	review, err := scanReview(conn(ctx, r.DB).QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return review, nil
}

func (r *reviewRepository) UpdateReview(ctx context.Context, review *models.Review) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE reviews SET rating = $1, comment = $2, updated_at = NOW() WHERE id = $3 RETURNING updated_at`

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, review.Rating, review.Comment, review.ID).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to update review: %w", err)
	}

	return nil
}

func (r *reviewRepository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return expectOneRow(result)
}

func (r *reviewRepository) ListReviewsByProduct(ctx context.Context, productID uuid.UUID, page, size int) ([]*models.Review, int, error) {
	return r.listReviews(ctx, `r.product_id = $1`, productID, page, size)
}

func (r *reviewRepository) ListReviewsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Review, int, error) {
	return r.listReviews(ctx, `r.user_id = $1`, userID, page, size)
}

func (r *reviewRepository) listReviews(ctx context.Context, where string, arg any, page, size int) ([]*models.Review, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	db := conn(ctx, r.DB)

	var total int
	if err := db.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM reviews r WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := `SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE ` + where + `
		ORDER BY r.created_at DESC, r.id
		LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(dbCtx, query, arg, size, models.Offset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*models.Review, 0, size)

	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}
