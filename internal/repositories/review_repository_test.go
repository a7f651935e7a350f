package repository_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewReviewRepo(db)
	ctx := t.Context()

	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	t.Run("CreateReview - Already reviewed", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews (user_id, product_id, rating, comment)`)).
			WithArgs(userID, productID, 5, "Fresh").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.CreateReview(ctx, &models.Review{UserID: userID, ProductID: productID, Rating: 5, Comment: "Fresh"})

		require.ErrorIs(t, err, repository.ErrDuplicateEntry)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListReviewsByProduct", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reviews r WHERE r.product_id = $1`)).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.product_id = $1 ORDER BY r.created_at DESC, r.id LIMIT $2 OFFSET $3`)).
			WithArgs(productID, 10, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "rating", "comment", "username", "created_at", "updated_at"}).
				AddRow(uuid.NewString(), userID.String(), productID.String(), 4, "Good", "jane", now, now))

		// Act
		reviews, total, err := repo.ListReviewsByProduct(ctx, productID, 1, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, reviews, 1)
		assert.Equal(t, "jane", reviews[0].Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DeleteReview - Not Found", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reviews WHERE id = $1`)).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, repo.DeleteReview(ctx, id), repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNotificationRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewNotificationRepo(db)
	ctx := t.Context()

	orderID := uuid.New()
	notificationID := uuid.New()
	now := time.Now()

	t.Run("CreateNotification", func(t *testing.T) {
		// Arrange
		notification := &models.Notification{
			OrderID:   &orderID,
			Recipient: "admin@grocery.local",
			Subject:   "Order delivered",
			Content:   "Order has been delivered",
			Status:    models.NotificationPending,
		}

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO notifications (order_id, recipient, subject, content, status, error_message)`)).
			WithArgs(orderID, notification.Recipient, notification.Subject, notification.Content, notification.Status, "").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(notificationID.String(), now, now))

		// Act
		err := repo.CreateNotification(ctx, notification)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, notificationID, notification.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateNotificationStatus", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE notifications SET status = $1, error_message = $2`)).
			WithArgs(models.NotificationFailed, "timeout", notificationID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateNotificationStatus(ctx, notificationID, models.NotificationFailed, "timeout"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListNotifications", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM notifications`)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM notifications ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`)).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "recipient", "subject", "content", "status", "error_message", "created_at", "updated_at"}).
				AddRow(notificationID.String(), orderID.String(), "a@b.c", "s", "c", "sent", "", now, now).
				AddRow(uuid.NewString(), nil, "a@b.c", "s", "c", "failed", "boom", now, now))

		notifications, total, err := repo.ListNotifications(ctx, 1, 10)

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, notifications, 2)
		require.NotNil(t, notifications[0].OrderID)
		assert.Nil(t, notifications[1].OrderID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContactRepositoryCreateAndList(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewContactRepo(db)
	ctx := t.Context()
	now := time.Now()

	t.Run("CreateContact", func(t *testing.T) {
		contact := &models.Contact{Name: "Jane", Email: "jane@example.com", Subject: "Hi", Message: "Hello", Status: models.ContactStatusPending}
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO contacts (name, email, subject, message, status)`)).
			WithArgs("Jane", "jane@example.com", "Hi", "Hello", models.ContactStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), now))

		require.NoError(t, repo.CreateContact(ctx, contact))
		assert.Equal(t, id, contact.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListContacts - All statuses", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM contacts WHERE ($1::text = '' OR status = $1)`)).
			WithArgs(models.ContactStatus("")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts WHERE ($1::text = '' OR status = $1) ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`)).
			WithArgs(models.ContactStatus(""), 10, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "subject", "message", "status", "created_at"}))

		contacts, total, err := repo.ListContacts(ctx, "", 1, 10)

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, contacts)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
