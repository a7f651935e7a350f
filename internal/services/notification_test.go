package service_test

import (
	"errors"
	"testing"

	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/aaravmahajanofficial/grocery-store/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	emailMocks "github.com/aaravmahajanofficial/grocery-store/pkg/sendgrid/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const adminEmail = "owner@grocery.local"

func TestNotificationService_NotifyOrderDelivered(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	order := &models.Order{ID: uuid.New(), TrackingID: "0011223344556677", ShippingAddress: "1 Market St", TotalAmount: dec("10.47")}

	t.Run("Success - Sent in the background and recorded", func(t *testing.T) {
		// Arrange
		repo := mocks.NewNotificationRepository(t)
		email := emailMocks.NewEmailService(t)
		notificationID := uuid.New()

		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
			return n.OrderID != nil && *n.OrderID == order.ID &&
				n.Recipient == adminEmail && n.Status == models.NotificationPending
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Notification).ID = notificationID
		}).Return(nil).Once()
		email.On("Send", mock.Anything, mock.MatchedBy(func(r *models.EmailNotificationRequest) bool {
			return r.To == adminEmail && r.Subject == "Order 0011223344556677 delivered"
		})).Return(nil).Once()
		repo.On("UpdateNotificationStatus", mock.Anything, notificationID, models.NotificationSent, "").Return(nil).Once()

		svc := service.NewNotificationService(repo, email, adminEmail)

		// Act
		svc.NotifyOrderDelivered(t.Context(), order)
		svc.Wait()

		// Assert: expectations verified on cleanup
	})

	t.Run("Success - Send failure recorded and swallowed", func(t *testing.T) {
		repo := mocks.NewNotificationRepository(t)
		email := emailMocks.NewEmailService(t)

		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
		email.On("Send", mock.Anything, mock.Anything).Return(errors.New("sendgrid: 503")).Once()
		repo.On("UpdateNotificationStatus", mock.Anything, mock.Anything, models.NotificationFailed, "sendgrid: 503").Return(nil).Once()

		svc := service.NewNotificationService(repo, email, adminEmail)

		svc.NotifyOrderDelivered(t.Context(), order)
		svc.Wait()
	})
}

func TestNotificationService_SendEmail(t *testing.T) {
	req := &models.EmailNotificationRequest{To: "jane@example.com", Subject: "Hello", Content: "Welcome"}

	t.Run("Success", func(t *testing.T) {
		repo := mocks.NewNotificationRepository(t)
		email := emailMocks.NewEmailService(t)

		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
		email.On("Send", mock.Anything, req).Return(nil).Once()
		repo.On("UpdateNotificationStatus", mock.Anything, mock.Anything, models.NotificationSent, "").Return(nil).Once()

		svc := service.NewNotificationService(repo, email, adminEmail)

		notification, err := svc.SendEmail(t.Context(), req)

		require.NoError(t, err)
		assert.Equal(t, models.NotificationSent, notification.Status)
		assert.Nil(t, notification.OrderID)
	})

	t.Run("Failure - Provider error", func(t *testing.T) {
		repo := mocks.NewNotificationRepository(t)
		email := emailMocks.NewEmailService(t)

		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
		email.On("Send", mock.Anything, req).Return(errors.New("unauthorized")).Once()
		repo.On("UpdateNotificationStatus", mock.Anything, mock.Anything, models.NotificationFailed, "unauthorized").Return(nil).Once()

		svc := service.NewNotificationService(repo, email, adminEmail)

		_, err := svc.SendEmail(t.Context(), req)

		requireAppError(t, err, appErrors.ErrCodeThirdPartyError)
	})

	t.Run("Failure - Record not created", func(t *testing.T) {
		repo := mocks.NewNotificationRepository(t)
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		svc := service.NewNotificationService(repo, emailMocks.NewEmailService(t), adminEmail)

		_, err := svc.SendEmail(t.Context(), req)

		requireAppError(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestNotificationService_ListNotifications(t *testing.T) {
	repo := mocks.NewNotificationRepository(t)
	repo.On("ListNotifications", mock.Anything, 1, 10).Return([]*models.Notification{}, 0, nil).Once()

	svc := service.NewNotificationService(repo, emailMocks.NewEmailService(t), adminEmail)

	_, total, err := svc.ListNotifications(t.Context(), 1, 10)

	require.NoError(t, err)
	assert.Zero(t, total)
}
