package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/events"
	"github.com/stretchr/testify/mock"
)

type Publisher struct {
	mock.Mock
}

func NewPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Publisher {
	m := &Publisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Publisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *Publisher) Close() error {
	args := m.Called()

	return args.Error(0)
}
