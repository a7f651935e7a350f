package repository

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/grocery-store/internal/config"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimiter(t *testing.T) (*redisRepository, redismock.ClientMock, time.Time) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	repo := NewRateLimitRepo(client, config.RateConfig{MaxAttempts: 3, WindowSize: time.Minute}).(*redisRepository)
	repo.now = func() time.Time { return now }

	return repo, mock, now
}

func expectAttempt(mock redismock.ClientMock, key string, now time.Time, window time.Duration) {
	mock.ExpectZRemRangeByScore(key, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10)).SetVal(0)
	mock.ExpectZAdd(key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()}).SetVal(1)
}

func TestCheckLoginRateLimit(t *testing.T) {
	const key = "login_attempts:jane@example.com"

	t.Run("Success - Within limit", func(t *testing.T) {
		// Arrange
		repo, mock, now := setupRateLimiter(t)

		expectAttempt(mock, key, now, time.Minute)
		mock.ExpectZCard(key).SetVal(2)
		mock.ExpectExpire(key, time.Minute).SetVal(true)

		// Act
		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(t.Context(), "jane@example.com")

		// Assert
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, remaining)
		assert.Zero(t, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Limit exceeded", func(t *testing.T) {
		// Arrange
		repo, mock, now := setupRateLimiter(t)

		expectAttempt(mock, key, now, time.Minute)
		mock.ExpectZCard(key).SetVal(4)
		mock.ExpectExpire(key, time.Minute).SetVal(true)

		oldest := now.Add(-20 * time.Second)
		mock.ExpectZRangeArgsWithScores(redis.ZRangeArgs{Key: key, Start: 0, Stop: 0}).
			SetVal([]redis.Z{{Score: float64(oldest.UnixNano()), Member: strconv.FormatInt(oldest.UnixNano(), 10)}})

		// Act
		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(t.Context(), "jane@example.com")

		// Assert
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Zero(t, remaining)
		assert.Equal(t, 40, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis error", func(t *testing.T) {
		// Arrange
		repo, mock, now := setupRateLimiter(t)
		redisErr := errors.New("connection refused")

		expectAttempt(mock, key, now, time.Minute)
		mock.ExpectZCard(key).SetErr(redisErr)
		mock.ExpectExpire(key, time.Minute).SetVal(true)

		// Act
		allowed, _, _, err := repo.CheckLoginRateLimit(t.Context(), "jane@example.com")

		// Assert
		require.Error(t, err)
		assert.False(t, allowed)
		assert.ErrorIs(t, err, redisErr)
	})
}
