package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/stretchr/testify/mock"
)

type NotificationService struct {
	mock.Mock
}

func NewNotificationService(t interface {
	mock.TestingT
	Cleanup(func())
}) *NotificationService {
	m := &NotificationService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *NotificationService) NotifyOrderDelivered(ctx context.Context, order *models.Order) {
	m.Called(ctx, order)
}

func (m *NotificationService) SendEmail(ctx context.Context, req *models.EmailNotificationRequest) (*models.Notification, error) {
	args := m.Called(ctx, req)

	r0, _ := args.Get(0).(*models.Notification)

	return r0, args.Error(1)
}

func (m *NotificationService) ListNotifications(ctx context.Context, page int, limit int) ([]*models.Notification, int, error) {
	args := m.Called(ctx, page, limit)

	r0, _ := args.Get(0).([]*models.Notification)

	return r0, args.Int(1), args.Error(2)
}

func (m *NotificationService) Wait() {
	m.Called()
}
