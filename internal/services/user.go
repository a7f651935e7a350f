package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/aaravmahajanofficial/grocery-store/pkg/sendgrid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	profileOTPTTL        = 10 * time.Minute
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, auth models.AuthContext) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error
	ResetForgottenPassword(ctx context.Context, req *models.ResetForgottenPasswordRequest) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error
	RequestProfileUpdate(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) error
	VerifyProfileUpdate(ctx context.Context, userID uuid.UUID, req *models.VerifyProfileRequest) (*models.User, error)
}

// AuthSettings carries the JWT signing setup and the frontend base URL used
// in emailed links.
type AuthSettings struct {
	JWTKey      []byte
	TokenTTL    time.Duration
	FrontendURL string
}

type userService struct {
	repo        repository.UserRepository
	rateLimiter repository.RateLimitRepository
	tokens      repository.TokenRepository
	mailer      sendgrid.EmailService
	settings    AuthSettings
}

func NewUserService(
	repo repository.UserRepository,
	rateLimiter repository.RateLimitRepository,
	tokens repository.TokenRepository,
	mailer sendgrid.EmailService,
	settings AuthSettings,
) UserService {
	settings.FrontendURL = strings.TrimRight(settings.FrontendURL, "/")

	return &userService{
		repo:        repo,
		rateLimiter: rateLimiter,
		tokens:      tokens,
		mailer:      mailer,
		settings:    settings,
	}
}

// Register creates the account and mails a verification link. The account
// exists even when the link could not be sent.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    strings.ToLower(req.Email),
		Password: hashedPassword,
		Role:     models.RoleCustomer,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, appErrors.DuplicateEntryError("Username or email already registered").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create user").WithError(err)
	}

	if err := s.sendVerificationLink(ctx, user); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Verification email not sent",
			slog.String("userId", user.ID.String()), slog.Any("error", err))
	}

	return user, nil
}

func (s *userService) sendVerificationLink(ctx context.Context, user *models.User) error {
	token := rand.Text()

	if err := s.tokens.SaveToken(ctx, models.TokenEmailVerification, token, user.ID.String(), verificationTokenTTL); err != nil {
		return err
	}

	link := s.settings.FrontendURL + "/verify-email?token=" + token

	return s.mailer.Send(ctx, &models.EmailNotificationRequest{
		To:          user.Email,
		Subject:     "Email Verification",
		Content:     "Verify your email address: " + link + "\nThis link expires in 24 hours.",
		HTMLContent: fmt.Sprintf(`<h1>Welcome!</h1><p><a href="%s">Verify Email</a></p><p>This link expires in 24 hours.</p>`, link),
	})
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	logger := middleware.LoggerFromContext(ctx)
	login := strings.TrimSpace(req.UsernameOrEmail)

	allowed, _, retryAfter, err := s.rateLimiter.CheckLoginRateLimit(ctx, strings.ToLower(login))
	if err != nil {
		return nil, appErrors.ThirdPartyError("Failed to check rate limit").WithError(err)
	}

	if !allowed {
		return nil, appErrors.TooManyRequestsError(
			fmt.Sprintf("Too many login attempts. Try again in %d seconds", retryAfter))
	}

	user, err := s.repo.GetUserByUsernameOrEmail(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Login attempt for unknown account")
			return nil, appErrors.UnauthorizedError("Invalid credentials")
		}

		return nil, appErrors.DatabaseError("Failed to load user").WithError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("Login attempt with wrong password", slog.String("userId", user.ID.String()))
		return nil, appErrors.UnauthorizedError("Invalid credentials")
	}

	now := time.Now()
	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.settings.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.settings.JWTKey)
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate token").WithError(err)
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int(s.settings.TokenTTL.Seconds()),
		User:      user,
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *userService) Logout(ctx context.Context, auth models.AuthContext) error {
	if auth.TokenID == "" {
		return appErrors.UnauthorizedError("Token cannot be revoked")
	}

	if err := s.tokens.RevokeToken(ctx, auth.TokenID, time.Until(auth.ExpiresAt)); err != nil {
		return appErrors.ThirdPartyError("Failed to log out").WithError(err)
	}

	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "User not found", "Failed to load user")
	}

	return user, nil
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.redeem(ctx, models.TokenEmailVerification, token, "Invalid token")
	if err != nil {
		return err
	}

	if err := s.repo.MarkEmailVerified(ctx, userID); err != nil {
		return repoError(err, "User not found", "Failed to verify email")
	}

	return nil
}

// ForgotPassword mails a reset link. Unknown addresses get the same answer
// as known ones so the endpoint cannot be used to discover accounts.
func (s *userService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.LoggerFromContext(ctx).Info("Password reset requested for unknown email")
			return nil
		}

		return appErrors.DatabaseError("Failed to load user").WithError(err)
	}

	token := rand.Text()

	if err := s.tokens.SaveToken(ctx, models.TokenPasswordReset, token, user.ID.String(), resetTokenTTL); err != nil {
		return appErrors.ThirdPartyError("Failed to create reset token").WithError(err)
	}

	link := s.settings.FrontendURL + "/reset-password?token=" + token

	err = s.mailer.Send(ctx, &models.EmailNotificationRequest{
		To:          user.Email,
		Subject:     "Password Reset",
		Content:     "Reset your password: " + link + "\nThis link expires in 1 hour.",
		HTMLContent: fmt.Sprintf(`<h1>Password Reset Request</h1><p><a href="%s">Reset Password</a></p><p>This link expires in 1 hour.</p>`, link),
	})
	if err != nil {
		return appErrors.ThirdPartyError("Failed to send password reset email").WithError(err)
	}

	return nil
}

func (s *userService) ResetForgottenPassword(ctx context.Context, req *models.ResetForgottenPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.BadRequestError("Passwords do not match")
	}

	userID, err := s.redeem(ctx, models.TokenPasswordReset, req.Token, "Invalid or expired token")
	if err != nil {
		return err
	}

	return s.setPassword(ctx, userID, req.NewPassword)
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return appErrors.BadRequestError("Incorrect old password")
	}

	if req.NewPassword != req.ConfirmPassword {
		return appErrors.BadRequestError("Passwords do not match")
	}

	return s.setPassword(ctx, user.ID, req.NewPassword)
}

func (s *userService) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, userID, hashed); err != nil {
		return repoError(err, "User not found", "Failed to update password")
	}

	return nil
}

// RequestProfileUpdate parks the new username and email behind a six digit
// code sent to the current address. A new request replaces the pending one.
func (s *userService) RequestProfileUpdate(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	otp, err := newOTP()
	if err != nil {
		return appErrors.InternalError("Failed to generate verification code").WithError(err)
	}

	pending, err := json.Marshal(models.PendingProfileChange{
		OTP:      otp,
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(req.Email),
	})
	if err != nil {
		return appErrors.InternalError("Failed to encode profile change").WithError(err)
	}

	if err := s.tokens.SaveToken(ctx, models.TokenProfileOTP, user.ID.String(), string(pending), profileOTPTTL); err != nil {
		return appErrors.ThirdPartyError("Failed to store verification code").WithError(err)
	}

	err = s.mailer.Send(ctx, &models.EmailNotificationRequest{
		To:          user.Email,
		Subject:     "Profile Update Verification",
		Content:     "Your verification code is " + otp + ". It expires in 10 minutes.",
		HTMLContent: fmt.Sprintf(`<h1>Profile Update Verification</h1><p>Your verification code is <strong>%s</strong></p><p>It expires in 10 minutes.</p>`, otp),
	})
	if err != nil {
		return appErrors.ThirdPartyError("Failed to send verification code").WithError(err)
	}

	return nil
}

// VerifyProfileUpdate applies the pending change. The pending change is
// consumed by the first attempt, right or wrong.
func (s *userService) VerifyProfileUpdate(ctx context.Context, userID uuid.UUID, req *models.VerifyProfileRequest) (*models.User, error) {
	raw, err := s.tokens.ConsumeToken(ctx, models.TokenProfileOTP, userID.String())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.BadRequestError("Invalid OTP")
		}

		return nil, appErrors.ThirdPartyError("Failed to load verification code").WithError(err)
	}

	var pending models.PendingProfileChange
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, appErrors.InternalError("Failed to decode profile change").WithError(err)
	}

	if subtle.ConstantTimeCompare([]byte(pending.OTP), []byte(req.OTP)) != 1 {
		middleware.LoggerFromContext(ctx).Warn("Wrong profile verification code", slog.String("userId", userID.String()))
		return nil, appErrors.BadRequestError("Invalid OTP")
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Username = pending.Username
	user.Email = pending.Email

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, appErrors.DuplicateEntryError("Username or email already registered").WithError(err)
		}

		return nil, repoError(err, "User not found", "Failed to update profile")
	}

	return user, nil
}

// redeem consumes a single-use token whose value is a user id.
func (s *userService) redeem(ctx context.Context, purpose models.TokenPurpose, token, invalid string) (uuid.UUID, error) {
	value, err := s.tokens.ConsumeToken(ctx, purpose, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, appErrors.BadRequestError(invalid)
		}

		return uuid.Nil, appErrors.ThirdPartyError("Failed to check token").WithError(err)
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, appErrors.InternalError("Stored token is corrupt").WithError(err)
	}

	return userID, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", appErrors.InternalError("Failed to process password").WithError(err)
	}

	return string(hashed), nil
}

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
