package repository_test

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewContactRepo(db)
	ctx := t.Context()

	contactID := uuid.New()
	now := time.Now()

	t.Run("UpdateContactStatus", func(t *testing.T) {
		query := regexp.QuoteMeta(`UPDATE contacts SET status = $1 WHERE id = $2`)

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(query).
				WithArgs(models.ContactStatusRead, contactID).
				WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "subject", "message", "status", "created_at"}).
					AddRow(contactID.String(), "Jane", "jane@example.com", "Late delivery", "Where is my order?", "read", now))

			// Act
			contact, err := repo.UpdateContactStatus(ctx, contactID, models.ContactStatusRead)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, models.ContactStatusRead, contact.Status)
			assert.Equal(t, "Late delivery", contact.Subject)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Not Found", func(t *testing.T) {
			mock.ExpectQuery(query).WithArgs(models.ContactStatusReplied, contactID).WillReturnError(sql.ErrNoRows)

			contact, err := repo.UpdateContactStatus(ctx, contactID, models.ContactStatusReplied)

			require.ErrorIs(t, err, repository.ErrNotFound)
			assert.Nil(t, contact)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("DeleteContact", func(t *testing.T) {
		query := regexp.QuoteMeta(`DELETE FROM contacts WHERE id = $1`)

		t.Run("Success", func(t *testing.T) {
			mock.ExpectExec(query).WithArgs(contactID).WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.DeleteContact(ctx, contactID))
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Not Found", func(t *testing.T) {
			mock.ExpectExec(query).WithArgs(contactID).WillReturnResult(sqlmock.NewResult(0, 0))

			require.ErrorIs(t, repo.DeleteContact(ctx, contactID), repository.ErrNotFound)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})
}
