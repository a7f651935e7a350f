package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/google/uuid"
)

type ContactRepository interface {
	CreateContact(ctx context.Context, contact *models.Contact) error
	ListContacts(ctx context.Context, status models.ContactStatus, page, size int) ([]*models.Contact, int, error)
	UpdateContactStatus(ctx context.Context, id uuid.UUID, status models.ContactStatus) (*models.Contact, error)
	DeleteContact(ctx context.Context, id uuid.UUID) error
}

type contactRepository struct {
	DB *sql.DB
}

func NewContactRepo(db *sql.DB) ContactRepository {
	return &contactRepository{DB: db}
}

func (r *contactRepository) CreateContact(ctx context.Context, contact *models.Contact) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO contacts (name, email, subject, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, contact.Name, contact.Email, contact.Subject, contact.Message, contact.Status).
		Scan(&contact.ID, &contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	return nil
}

// ListContacts returns submissions newest first. An empty status lists all.
func (r *contactRepository) ListContacts(ctx context.Context, status models.ContactStatus, page, size int) ([]*models.Contact, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	db := conn(ctx, r.DB)

	where := `WHERE ($1::text = '' OR status = $1)`

	var total int
	if err := db.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM contacts `+where, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	query := `SELECT id, name, email, subject, message, status, created_at FROM contacts ` + where + `
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(dbCtx, query, status, size, models.Offset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0, size)

	for rows.Next() {
		contact := &models.Contact{}

		err := rows.Scan(&contact.ID, &contact.Name, &contact.Email, &contact.Subject, &contact.Message, &contact.Status, &contact.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact: %w", err)
		}

		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

func (r *contactRepository) UpdateContactStatus(ctx context.Context, id uuid.UUID, status models.ContactStatus) (*models.Contact, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE contacts SET status = $1 WHERE id = $2
		RETURNING id, name, email, subject, message, status, created_at`

	contact := &models.Contact{}

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, status, id).
		Scan(&contact.ID, &contact.Name, &contact.Email, &contact.Subject, &contact.Message, &contact.Status, &contact.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to update contact status: %w", err)
	}

	return contact, nil
}

func (r *contactRepository) DeleteContact(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	return expectOneRow(result)
}
