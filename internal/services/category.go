package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-store/internal/cache"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, page, limit int) ([]*models.Category, int, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategoryProducts(ctx context.Context, id uuid.UUID, page, limit int) ([]*models.Product, int, error)
}

type categoryService struct {
	repo     repository.CategoryRepository
	products repository.ProductRepository
	cache    cache.Cache
	ttl      time.Duration
}

func NewCategoryService(repo repository.CategoryRepository, products repository.ProductRepository, c cache.Cache, ttl time.Duration) CategoryService {
	return &categoryService{repo: repo, products: products, cache: c, ttl: ttl}
}

// categoryPage is the cached shape of one listing page.
type categoryPage struct {
	Categories []*models.Category `json:"categories"`
	Total      int                `json:"total"`
}

func (s *categoryService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, appErrors.DuplicateEntryError("Category already exists").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create category").WithError(err)
	}

	invalidate(ctx, s.cache, cache.CategoryListKeyPrefix)

	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	key := cache.Key(cache.CategoryKeyPrefix, id.String())

	var cached models.Category
	if cacheGet(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Category not found", "Failed to load category")
	}

	cacheSet(ctx, s.cache, key, category, s.ttl)

	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, page, limit int) ([]*models.Category, int, error) {
	key := cache.Key(cache.CategoryListKeyPrefix, strconv.Itoa(page), strconv.Itoa(limit))

	var cached categoryPage
	if cacheGet(ctx, s.cache, key, &cached) {
		return cached.Categories, cached.Total, nil
	}

	categories, total, err := s.repo.ListCategories(ctx, page, limit)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list categories").WithError(err)
	}

	cacheSet(ctx, s.cache, key, categoryPage{Categories: categories, Total: total}, s.ttl)

	return categories, total, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Category not found", "Failed to load category")
	}

	if req.Name != nil {
		category.Name = *req.Name
	}

	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, appErrors.DuplicateEntryError("Category already exists").WithError(err)
		}

		return nil, repoError(err, "Category not found", "Failed to update category")
	}

	s.invalidate(ctx, id)

	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return repoError(err, "Category not found", "Failed to delete category")
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *categoryService) ListCategoryProducts(ctx context.Context, id uuid.UUID, page, limit int) ([]*models.Product, int, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return nil, 0, err
	}

	products, total, err := s.products.ListProducts(ctx, models.ProductFilter{
		CategoryID: &id,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list products").WithError(err)
	}

	return products, total, nil
}

func (s *categoryService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.Key(cache.CategoryKeyPrefix, id.String())); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to evict category", slog.String("error", err.Error()))
	}

	invalidate(ctx, s.cache, cache.CategoryListKeyPrefix)
}

// Cache failures only cost a database round trip, so they are logged and
// never returned.

func cacheGet(ctx context.Context, c cache.Cache, key string, dest any) bool {
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}

	return found
}

func cacheSet(ctx context.Context, c cache.Cache, key string, value any, ttl time.Duration) {
	if err := c.Set(ctx, key, value, ttl); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func invalidate(ctx context.Context, c cache.Cache, prefix string) {
	if err := c.DeletePrefix(ctx, prefix); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Cache invalidation failed", slog.String("prefix", prefix), slog.String("error", err.Error()))
	}
}
