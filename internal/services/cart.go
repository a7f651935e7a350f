package service

import (
	"context"
	"errors"

	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/metrics"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req *models.UpdateItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	tx       repository.Transactor
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(tx repository.Transactor, carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{tx: tx, carts: carts, products: products}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart items").WithError(err)
	}

	cart.Items = items

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(ctx context.Context, cart *models.Cart) error {
		product, err := s.products.GetProductByID(ctx, req.ProductID)
		if err != nil {
			return repoError(err, "Product not found", "Failed to load product")
		}

		quantity := req.Quantity

		existing, err := s.carts.GetItemByProduct(ctx, cart.ID, product.ID)

		switch {
		case err == nil:
			quantity += existing.Quantity
		case !errors.Is(err, repository.ErrNotFound):
			return appErrors.DatabaseError("Failed to load cart item").WithError(err)
		}

		if err := checkStock(product, quantity); err != nil {
			return err
		}

		return s.writeLine(ctx, &models.CartItem{CartID: cart.ID, ProductID: product.ID}, product, quantity)
	})
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req *models.UpdateItemRequest) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(ctx context.Context, cart *models.Cart) error {
		item, err := s.carts.GetItem(ctx, cart.ID, itemID)
		if err != nil {
			return repoError(err, "Cart item not found", "Failed to load cart item")
		}

		product, err := s.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return repoError(err, "Product not found", "Failed to load product")
		}

		if err := checkStock(product, req.Quantity); err != nil {
			return err
		}

		return s.writeLine(ctx, item, product, req.Quantity)
	})
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(ctx context.Context, cart *models.Cart) error {
		if err := s.carts.DeleteItem(ctx, cart.ID, itemID); err != nil {
			return repoError(err, "Cart item not found", "Failed to remove cart item")
		}

		return nil
	})
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(ctx context.Context, cart *models.Cart) error {
		if err := s.carts.ClearItems(ctx, cart.ID); err != nil {
			return appErrors.DatabaseError("Failed to clear cart").WithError(err)
		}

		return nil
	})
}

// mutate runs fn with the caller's cart row locked, then recomputes the total
// from the stored line prices so it never drifts from the items.
func (s *cartService) mutate(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, cart *models.Cart) error) (*models.Cart, error) {
	var result *models.Cart

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.carts.GetOrCreateCart(ctx, userID)
		if err != nil {
			return appErrors.DatabaseError("Failed to load cart").WithError(err)
		}

		if _, err := s.carts.LockCart(ctx, cart.ID); err != nil {
			return appErrors.DatabaseError("Failed to lock cart").WithError(err)
		}

		if err := fn(ctx, cart); err != nil {
			return err
		}

		items, err := s.carts.ListItems(ctx, cart.ID)
		if err != nil {
			return appErrors.DatabaseError("Failed to load cart items").WithError(err)
		}

		total := sumLines(items)

		if err := s.carts.UpdateTotal(ctx, cart.ID, total); err != nil {
			return appErrors.DatabaseError("Failed to update cart total").WithError(err)
		}

		cart.Items = items
		cart.TotalAmount = total
		result = cart

		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to update cart")
	}

	return result, nil
}

func (s *cartService) writeLine(ctx context.Context, item *models.CartItem, product *models.Product, quantity int) error {
	item.Quantity = quantity
	item.Price = product.Price.Mul(decimal.NewFromInt(int64(quantity)))

	if err := s.carts.UpsertItem(ctx, item); err != nil {
		return appErrors.DatabaseError("Failed to save cart item").WithError(err)
	}

	return nil
}

// checkStock only compares against the shelf. Nothing is reserved until
// checkout.
func checkStock(product *models.Product, quantity int) error {
	if quantity > product.Stock {
		metrics.RecordStockConflict()

		return appErrors.ProductStockError(product.ID.String(), product.Name, product.Stock)
	}

	return nil
}

func sumLines(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero

	for _, item := range items {
		total = total.Add(item.Price)
	}

	return total
}
