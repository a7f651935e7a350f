package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ContactRepository struct {
	mock.Mock
}

func NewContactRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContactRepository {
	m := &ContactRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ContactRepository) CreateContact(ctx context.Context, contact *models.Contact) error {
	args := m.Called(ctx, contact)

	return args.Error(0)
}

func (m *ContactRepository) ListContacts(ctx context.Context, status models.ContactStatus, page int, size int) ([]*models.Contact, int, error) {
	args := m.Called(ctx, status, page, size)

	r0, _ := args.Get(0).([]*models.Contact)

	return r0, args.Int(1), args.Error(2)
}

func (m *ContactRepository) UpdateContactStatus(ctx context.Context, id uuid.UUID, status models.ContactStatus) (*models.Contact, error) {
	args := m.Called(ctx, id, status)

	r0, _ := args.Get(0).(*models.Contact)

	return r0, args.Error(1)
}

func (m *ContactRepository) DeleteContact(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}
