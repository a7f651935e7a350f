package service

import (
	"context"
	"errors"
	"time"

	"github.com/aaravmahajanofficial/grocery-store/internal/cache"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

var productSorts = map[string]bool{
	"":           true,
	"created_at": true,
	"price":      true,
	"name":       true,
}

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	cache      cache.Cache
	ttl        time.Duration
	policy     *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository, c cache.Cache, ttl time.Duration) ProductService {
	return &productService{
		repo:       repo,
		categories: categories,
		cache:      c,
		ttl:        ttl,
		policy:     bluemonday.UGCPolicy(),
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}

	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: s.policy.Sanitize(req.Description),
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, appErrors.DuplicateEntryError("Product already exists").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key := cache.Key(cache.ProductKeyPrefix, id.String())

	var cached models.Product
	if cacheGet(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Product not found", "Failed to load product")
	}

	cacheSet(ctx, s.cache, key, product, s.ttl)

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	if !productSorts[filter.Sort] {
		return nil, 0, appErrors.BadRequestError("Sort must be one of: created_at, price, name")
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, 0, appErrors.BadRequestError("minPrice cannot exceed maxPrice")
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list products").WithError(err)
	}

	return products, total, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Product not found", "Failed to load product")
	}

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}

		product.CategoryID = *req.CategoryID
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.Description != nil {
		product.Description = s.policy.Sanitize(*req.Description)
	}

	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return nil, err
		}

		product.Price = *req.Price
	}

	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, repoError(err, "Product not found", "Failed to update product")
	}

	s.evict(ctx, id)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return repoError(err, "Product not found", "Failed to delete product")
	}

	s.evict(ctx, id)

	return nil
}

func (s *productService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.GetCategoryByID(ctx, id); err != nil {
		return repoError(err, "Category not found", "Failed to load category")
	}

	return nil
}

func (s *productService) evict(ctx context.Context, id uuid.UUID) {
	evictProducts(ctx, s.cache, id)
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return appErrors.ValidationError("Price cannot be negative")
	}

	return nil
}
