package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type RateLimitRepository struct {
	mock.Mock
}

func NewRateLimitRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *RateLimitRepository {
	m := &RateLimitRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *RateLimitRepository) CheckLoginRateLimit(ctx context.Context, identifier string) (bool, int, int, error) {
	args := m.Called(ctx, identifier)

	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}
