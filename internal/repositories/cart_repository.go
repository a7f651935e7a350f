package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	LockCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	GetItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	GetItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	UpsertItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	UpdateTotal(ctx context.Context, cartID uuid.UUID, total decimal.Decimal) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

// GetOrCreateCart relies on the unique user_id so that two first requests
// from the same user end up with one cart.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, total_amount, created_at, updated_at`

	cart := &models.Cart{Items: []models.CartItem{}}

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, userID).
		Scan(&cart.ID, &cart.UserID, &cart.TotalAmount, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return cart, nil
}

// LockCart must run inside a transaction; the row lock is held until commit.
// The returned cart reflects every write committed before the lock.
func (r *cartRepository) LockCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, user_id, total_amount, created_at, updated_at FROM carts WHERE id = $1 FOR UPDATE`

	cart := &models.Cart{Items: []models.CartItem{}}

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, cartID).
		Scan(&cart.ID, &cart.UserID, &cart.TotalAmount, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price, ci.created_at, ci.updated_at,
			p.id, p.category_id, p.name, p.description, p.price, p.stock, p.image_url, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id`

	rows, err := conn(ctx, r.DB).QueryContext(dbCtx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}

	for rows.Next() {
		var item models.CartItem

		product := &models.Product{}

		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt, &item.UpdatedAt,
			&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price, &product.Stock,
			&product.ImageURL, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		item.Product = product
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	return r.getItem(ctx, `WHERE cart_id = $1 AND id = $2`, cartID, itemID)
}

func (r *cartRepository) GetItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	return r.getItem(ctx, `WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
}

func (r *cartRepository) getItem(ctx context.Context, where string, args ...any) (*models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, cart_id, product_id, quantity, price, created_at, updated_at FROM cart_items ` + where

	item := &models.CartItem{}

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, args...).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	return item, nil
}

// UpsertItem writes the line for (cart, product), replacing quantity and
// price when the line already exists.
func (r *cartRepository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = EXCLUDED.quantity, price = EXCLUDED.price, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, item.CartID, item.ProductID, item.Quantity, item.Price).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return expectOneRow(result)
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := conn(ctx, r.DB).ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	return nil
}

func (r *cartRepository) UpdateTotal(ctx context.Context, cartID uuid.UUID, total decimal.Decimal) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, `UPDATE carts SET total_amount = $1, updated_at = NOW() WHERE id = $2`, total, cartID)
	if err != nil {
		return fmt.Errorf("failed to update the cart: %w", err)
	}

	return expectOneRow(result)
}
