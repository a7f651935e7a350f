package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/redis/go-redis/v9"
)

// TokenRepository keeps short-lived account tokens in Redis: single-use
// email links, profile OTPs and the list of JWTs revoked by logout.
type TokenRepository interface {
	SaveToken(ctx context.Context, purpose models.TokenPurpose, token, value string, ttl time.Duration) error
	ConsumeToken(ctx context.Context, purpose models.TokenPurpose, token string) (string, error)
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type tokenRepository struct {
	client *redis.Client
}

func NewTokenRepo(client *redis.Client) TokenRepository {
	return &tokenRepository{client: client}
}

func tokenKey(purpose models.TokenPurpose, token string) string {
	return fmt.Sprintf("token:%s:%s", purpose, token)
}

func revokedKey(tokenID string) string {
	return "revoked_jwt:" + tokenID
}

// SaveToken replaces any value already stored under the same token.
func (r *tokenRepository) SaveToken(ctx context.Context, purpose models.TokenPurpose, token, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, tokenKey(purpose, token), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store %s token: %w", purpose, err)
	}

	return nil
}

// ConsumeToken reads and deletes in one step, so a token redeems at most
// once. Missing or expired tokens return ErrNotFound.
func (r *tokenRepository) ConsumeToken(ctx context.Context, purpose models.TokenPurpose, token string) (string, error) {
	value, err := r.client.GetDel(ctx, tokenKey(purpose, token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("failed to consume %s token: %w", purpose, err)
	}

	return value, nil
}

// RevokeToken blocks a JWT id until the token would have expired anyway.
func (r *tokenRepository) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func (r *tokenRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return n > 0, nil
}
