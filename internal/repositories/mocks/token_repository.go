package mocks

import (
	"context"
	"time"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/stretchr/testify/mock"
)

type TokenRepository struct {
	mock.Mock
}

func NewTokenRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenRepository {
	m := &TokenRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *TokenRepository) SaveToken(ctx context.Context, purpose models.TokenPurpose, token, value string, ttl time.Duration) error {
	args := m.Called(ctx, purpose, token, value, ttl)

	return args.Error(0)
}

func (m *TokenRepository) ConsumeToken(ctx context.Context, purpose models.TokenPurpose, token string) (string, error) {
	args := m.Called(ctx, purpose, token)

	return args.String(0), args.Error(1)
}

func (m *TokenRepository) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)

	return args.Error(0)
}

func (m *TokenRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)

	return args.Bool(0), args.Error(1)
}
