package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/metrics"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/aaravmahajanofficial/grocery-store/pkg/sendgrid"
	"github.com/google/uuid"
)

const deliverySendTimeout = 30 * time.Second

type NotificationService interface {
	DeliveryNotifier
	SendEmail(ctx context.Context, req *models.EmailNotificationRequest) (*models.Notification, error)
	ListNotifications(ctx context.Context, page, limit int) ([]*models.Notification, int, error)
	// Wait blocks until every background send has finished.
	Wait()
}

type notificationService struct {
	repo         repository.NotificationRepository
	emailService sendgrid.EmailService
	adminEmail   string
	wg           sync.WaitGroup
}

func NewNotificationService(repo repository.NotificationRepository, emailService sendgrid.EmailService, adminEmail string) NotificationService {
	return &notificationService{repo: repo, emailService: emailService, adminEmail: adminEmail}
}

// NotifyOrderDelivered emails the store admin in the background. The request
// that triggered it may finish first, so the send gets its own deadline.
func (n *notificationService) NotifyOrderDelivered(ctx context.Context, order *models.Order) {
	req := &models.EmailNotificationRequest{
		To:      n.adminEmail,
		Subject: fmt.Sprintf("Order %s delivered", order.TrackingID),
		Content: fmt.Sprintf("Order %s (tracking %s) was delivered to %s. Total: %s.",
			order.ID, order.TrackingID, order.ShippingAddress, order.TotalAmount.StringFixed(2)),
	}
	orderID := order.ID

	n.wg.Add(1)

	go func() {
		defer n.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliverySendTimeout)
		defer cancel()

		if _, err := n.send(sendCtx, req, &orderID); err != nil {
			middleware.LoggerFromContext(sendCtx).Error("Delivery notification failed",
				slog.String("orderId", orderID.String()),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (n *notificationService) SendEmail(ctx context.Context, req *models.EmailNotificationRequest) (*models.Notification, error) {
	return n.send(ctx, req, nil)
}

func (n *notificationService) send(ctx context.Context, req *models.EmailNotificationRequest, orderID *uuid.UUID) (*models.Notification, error) {
	notification := &models.Notification{
		OrderID:   orderID,
		Recipient: req.To,
		Subject:   req.Subject,
		Content:   req.Content,
		Status:    models.NotificationPending,
	}

	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		return nil, appErrors.DatabaseError("Failed to create notification record").WithError(err)
	}

	if err := n.emailService.Send(ctx, req); err != nil {
		metrics.RecordNotification(string(models.NotificationFailed))

		notification.Status = models.NotificationFailed
		notification.ErrorMessage = err.Error()

		if updateErr := n.repo.UpdateNotificationStatus(ctx, notification.ID, models.NotificationFailed, notification.ErrorMessage); updateErr != nil {
			middleware.LoggerFromContext(ctx).Error("Failed to record notification failure",
				slog.String("notificationId", notification.ID.String()),
				slog.String("error", updateErr.Error()),
			)
		}

		return nil, appErrors.ThirdPartyError("Failed to send email").WithError(err)
	}

	metrics.RecordNotification(string(models.NotificationSent))

	notification.Status = models.NotificationSent

	if err := n.repo.UpdateNotificationStatus(ctx, notification.ID, models.NotificationSent, ""); err != nil {
		return nil, appErrors.DatabaseError("Email sent but failed to update notification status").WithError(err)
	}

	return notification, nil
}

func (n *notificationService) ListNotifications(ctx context.Context, page, limit int) ([]*models.Notification, int, error) {
	notifications, total, err := n.repo.ListNotifications(ctx, page, limit)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list notifications").WithError(err)
	}

	return notifications, total, nil
}

func (n *notificationService) Wait() {
	n.wg.Wait()
}
