package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ContactService struct {
	mock.Mock
}

func NewContactService(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContactService {
	m := &ContactService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ContactService) SubmitContact(ctx context.Context, req *models.ContactRequest) (*models.Contact, error) {
	args := m.Called(ctx, req)

	r0, _ := args.Get(0).(*models.Contact)

	return r0, args.Error(1)
}

func (m *ContactService) ListContacts(ctx context.Context, status models.ContactStatus, page int, limit int) ([]*models.Contact, int, error) {
	args := m.Called(ctx, status, page, limit)

	r0, _ := args.Get(0).([]*models.Contact)

	return r0, args.Int(1), args.Error(2)
}

func (m *ContactService) UpdateContactStatus(ctx context.Context, id uuid.UUID, status models.ContactStatus) (*models.Contact, error) {
	args := m.Called(ctx, id, status)

	r0, _ := args.Get(0).(*models.Contact)

	return r0, args.Error(1)
}

func (m *ContactService) DeleteContact(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}
