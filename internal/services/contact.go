package service

import (
	"context"
	"strings"

	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ContactService interface {
	SubmitContact(ctx context.Context, req *models.ContactRequest) (*models.Contact, error)
	ListContacts(ctx context.Context, status models.ContactStatus, page, limit int) ([]*models.Contact, int, error)
	UpdateContactStatus(ctx context.Context, id uuid.UUID, status models.ContactStatus) (*models.Contact, error)
	DeleteContact(ctx context.Context, id uuid.UUID) error
}

const invalidContactStatus = "Status must be one of: pending, read, replied"

type contactService struct {
	repo   repository.ContactRepository
	policy *bluemonday.Policy
}

func NewContactService(repo repository.ContactRepository) ContactService {
	return &contactService{repo: repo, policy: bluemonday.StrictPolicy()}
}

func (s *contactService) SubmitContact(ctx context.Context, req *models.ContactRequest) (*models.Contact, error) {
	contact := &models.Contact{
		Name:    s.policy.Sanitize(strings.TrimSpace(req.Name)),
		Email:   strings.ToLower(req.Email),
		Subject: s.policy.Sanitize(strings.TrimSpace(req.Subject)),
		Message: s.policy.Sanitize(req.Message),
		Status:  models.ContactStatusPending,
	}

	if contact.Message == "" {
		return nil, appErrors.ValidationError("Message cannot be empty")
	}

	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return nil, appErrors.DatabaseError("Failed to save contact request").WithError(err)
	}

	return contact, nil
}

func (s *contactService) ListContacts(ctx context.Context, status models.ContactStatus, page, limit int) ([]*models.Contact, int, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, appErrors.BadRequestError(invalidContactStatus)
	}

	contacts, total, err := s.repo.ListContacts(ctx, status, page, limit)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list contact requests").WithError(err)
	}

	return contacts, total, nil
}

func (s *contactService) UpdateContactStatus(ctx context.Context, id uuid.UUID, status models.ContactStatus) (*models.Contact, error) {
	if !status.IsValid() {
		return nil, appErrors.BadRequestError(invalidContactStatus)
	}

	contact, err := s.repo.UpdateContactStatus(ctx, id, status)
	if err != nil {
		return nil, repoError(err, "Contact submission not found", "Failed to update contact status")
	}

	return contact, nil
}

func (s *contactService) DeleteContact(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteContact(ctx, id); err != nil {
		return repoError(err, "Contact submission not found", "Failed to delete contact submission")
	}

	return nil
}
