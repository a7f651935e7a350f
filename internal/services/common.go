package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-store/internal/cache"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/events"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
)

// repoError maps a repository failure to the AppError the client sees.
func repoError(err error, notFound, failed string) *appErrors.AppError {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.NotFoundError(notFound).WithError(err)
	}

	return appErrors.DatabaseError(failed).WithError(err)
}

// asAppError passes AppErrors through and wraps anything else, such as a
// failed commit, as a database error.
func asAppError(err error, failed string) error {
	if appErr, ok := appErrors.IsAppError(err); ok {
		return appErr
	}

	return appErrors.DatabaseError(failed).WithError(err)
}

func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to publish event",
			slog.String("type", string(event.Type)),
			slog.String("aggregateId", event.AggregateID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// inProductOrder returns a copy of lines sorted by product ID. Stock writes go
// through it so that concurrent transactions lock product rows in the same
// sequence and cannot deadlock.
func inProductOrder[T any](lines []T, productID func(T) uuid.UUID) []T {
	sorted := slices.Clone(lines)

	slices.SortStableFunc(sorted, func(a, b T) int {
		idA, idB := productID(a), productID(b)
		return bytes.Compare(idA[:], idB[:])
	})

	return sorted
}

// evictProducts drops cached product entries after a committed stock change.
func evictProducts(ctx context.Context, c cache.Cache, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.Key(cache.ProductKeyPrefix, id.String()))
	}

	if err := c.Delete(ctx, keys...); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to evict products", slog.Int("count", len(keys)), slog.String("error", err.Error()))
	}
}
