package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserService struct {
	mock.Mock
}

func NewUserService(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserService {
	m := &UserService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)

	r0, _ := args.Get(0).(*models.User)

	return r0, args.Error(1)
}

func (m *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)

	r0, _ := args.Get(0).(*models.LoginResponse)

	return r0, args.Error(1)
}

func (m *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)

	r0, _ := args.Get(0).(*models.User)

	return r0, args.Error(1)
}

func (m *UserService) Logout(ctx context.Context, auth models.AuthContext) error {
	args := m.Called(ctx, auth)

	return args.Error(0)
}

func (m *UserService) VerifyEmail(ctx context.Context, token string) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

func (m *UserService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	args := m.Called(ctx, req)

	return args.Error(0)
}

func (m *UserService) ResetForgottenPassword(ctx context.Context, req *models.ResetForgottenPasswordRequest) error {
	args := m.Called(ctx, req)

	return args.Error(0)
}

func (m *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	args := m.Called(ctx, userID, req)

	return args.Error(0)
}

func (m *UserService) RequestProfileUpdate(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) error {
	args := m.Called(ctx, userID, req)

	return args.Error(0)
}

func (m *UserService) VerifyProfileUpdate(ctx context.Context, userID uuid.UUID, req *models.VerifyProfileRequest) (*models.User, error) {
	args := m.Called(ctx, userID, req)

	r0, _ := args.Get(0).(*models.User)

	return r0, args.Error(1)
}
