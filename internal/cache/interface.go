package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a JSON value cache. A miss is reported by found=false, not by an
// error.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

const (
	ProductKeyPrefix      = "product"
	CategoryKeyPrefix     = "category"
	CategoryListKeyPrefix = "categories"
)
