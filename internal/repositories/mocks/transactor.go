package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Transactor records WithinTransaction calls and runs fn with the caller's
// context unless the expectation returns an error of its own.
type Transactor struct {
	mock.Mock
}

func NewTransactor(t interface {
	mock.TestingT
	Cleanup(func())
}) *Transactor {
	m := &Transactor{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)

	if err := args.Error(0); err != nil {
		return err
	}

	return fn(ctx)
}
