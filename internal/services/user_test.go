package service_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-store/internal/repositories"
	"github.com/aaravmahajanofficial/grocery-store/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	emailMocks "github.com/aaravmahajanofficial/grocery-store/pkg/sendgrid/mocks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testJwtKey = []byte("test-secret-key-123456789012345")

type userFixture struct {
	users   *mocks.UserRepository
	limiter *mocks.RateLimitRepository
	tokens  *mocks.TokenRepository
	mailer  *emailMocks.EmailService
	svc     service.UserService
}

func newUserFixture(t *testing.T, tokenTTL time.Duration) *userFixture {
	t.Helper()

	f := &userFixture{
		users:   mocks.NewUserRepository(t),
		limiter: mocks.NewRateLimitRepository(t),
		tokens:  mocks.NewTokenRepository(t),
		mailer:  emailMocks.NewEmailService(t),
	}

	f.svc = service.NewUserService(f.users, f.limiter, f.tokens, f.mailer, service.AuthSettings{
		JWTKey:      testJwtKey,
		TokenTTL:    tokenTTL,
		FrontendURL: "https://shop.example.com/",
	})

	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func TestUserService_Register(t *testing.T) {
	ctx := t.Context()
	req := &models.RegisterRequest{Username: "jane", Email: "Jane@Example.com", Password: "password123"}

	t.Run("Success - Password hashed and verification link mailed", func(t *testing.T) {
		// Arrange
		f := newUserFixture(t, time.Hour)
		userID := uuid.New()

		f.users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "jane@example.com" &&
				u.Role == models.RoleCustomer &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = userID
		}).Return(nil).Once()

		var token string

		f.tokens.On("SaveToken", mock.Anything, models.TokenEmailVerification, mock.AnythingOfType("string"), userID.String(), 24*time.Hour).
			Run(func(args mock.Arguments) { token = args.String(2) }).
			Return(nil).Once()
		f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *models.EmailNotificationRequest) bool {
			return m.To == "jane@example.com" && m.Subject == "Email Verification"
		})).Run(func(args mock.Arguments) {
			m := args.Get(1).(*models.EmailNotificationRequest)
			assert.Contains(t, m.Content, "https://shop.example.com/verify-email?token="+token)
		}).Return(nil).Once()

		// Act
		user, err := f.svc.Register(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "jane", user.Username)
		assert.NotEqual(t, "password123", user.Password)
		assert.NotEmpty(t, token)
	})

	t.Run("Success - Mail outage does not block registration", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)

		f.users.On("CreateUser", mock.Anything, mock.Anything).Return(nil).Once()
		f.tokens.On("SaveToken", mock.Anything, models.TokenEmailVerification, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		f.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("sendgrid: 503")).Once()

		user, err := f.svc.Register(ctx, req)

		require.NoError(t, err)
		assert.NotNil(t, user)
	})

	t.Run("Failure - Duplicate email", func(t *testing.T) {
		// Arrange
		f := newUserFixture(t, time.Hour)
		f.users.On("CreateUser", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEntry).Once()

		// Act
		user, err := f.svc.Register(ctx, req)

		// Assert
		assert.Nil(t, user)
		appErr := requireAppError(t, err, appErrors.ErrCodeDuplicateEntry)
		assert.Equal(t, 409, appErr.StatusCode)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := t.Context()
	user := &models.User{ID: uuid.New(), Username: "jane", Email: "jane@example.com", Password: hashed(t, "password123"), Role: models.RoleAdmin}

	t.Run("Success - Token carries role and a revocable id", func(t *testing.T) {
		// Arrange
		f := newUserFixture(t, 2*time.Hour)
		f.limiter.On("CheckLoginRateLimit", mock.Anything, "jane@example.com").Return(true, 4, 0, nil).Once()
		f.users.On("GetUserByUsernameOrEmail", mock.Anything, "JANE@example.com").Return(user, nil).Once()

		// Act
		resp, err := f.svc.Login(ctx, &models.LoginRequest{UsernameOrEmail: "JANE@example.com", Password: "password123"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 7200, resp.ExpiresIn)

		claims := &models.Claims{}
		_, err = jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (any, error) { return testJwtKey, nil })
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, models.RoleAdmin, claims.Role)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Success - By username", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.limiter.On("CheckLoginRateLimit", mock.Anything, "jane").Return(true, 4, 0, nil).Once()
		f.users.On("GetUserByUsernameOrEmail", mock.Anything, "jane").Return(user, nil).Once()

		resp, err := f.svc.Login(ctx, &models.LoginRequest{UsernameOrEmail: " jane ", Password: "password123"})

		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
	})

	t.Run("Failure - Wrong password", func(t *testing.T) {
		// Arrange
		f := newUserFixture(t, time.Hour)
		f.limiter.On("CheckLoginRateLimit", mock.Anything, mock.Anything).Return(true, 3, 0, nil).Once()
		f.users.On("GetUserByUsernameOrEmail", mock.Anything, mock.Anything).Return(user, nil).Once()

		// Act
		resp, err := f.svc.Login(ctx, &models.LoginRequest{UsernameOrEmail: user.Email, Password: "wrong"})

		// Assert
		assert.Nil(t, resp)
		appErr := requireAppError(t, err, appErrors.ErrCodeUnauthorized)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})

	t.Run("Failure - Unknown account looks like a wrong password", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.limiter.On("CheckLoginRateLimit", mock.Anything, mock.Anything).Return(true, 3, 0, nil).Once()
		f.users.On("GetUserByUsernameOrEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound).Once()

		_, err := f.svc.Login(ctx, &models.LoginRequest{UsernameOrEmail: "ghost@example.com", Password: "x"})

		appErr := requireAppError(t, err, appErrors.ErrCodeUnauthorized)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})

	t.Run("Failure - Rate limited", func(t *testing.T) {
		// Arrange
		f := newUserFixture(t, time.Hour)
		f.limiter.On("CheckLoginRateLimit", mock.Anything, mock.Anything).Return(false, 0, 42, nil).Once()

		// Act
		_, err := f.svc.Login(ctx, &models.LoginRequest{UsernameOrEmail: user.Email, Password: "password123"})

		// Assert
		appErr := requireAppError(t, err, appErrors.ErrCodeTooManyRequests)
		assert.Contains(t, appErr.Message, "42 seconds")
		f.users.AssertNotCalled(t, "GetUserByUsernameOrEmail", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Rate limiter unavailable", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.limiter.On("CheckLoginRateLimit", mock.Anything, mock.Anything).Return(false, 0, 0, errors.New("redis down")).Once()

		_, err := f.svc.Login(ctx, &models.LoginRequest{UsernameOrEmail: user.Email, Password: "password123"})

		requireAppError(t, err, appErrors.ErrCodeThirdPartyError)
	})
}

func TestUserService_Logout(t *testing.T) {
	ctx := t.Context()

	t.Run("Success - Revoked until expiry", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		auth := models.AuthContext{UserID: uuid.New(), TokenID: "jti-1", ExpiresAt: time.Now().Add(30 * time.Minute)}

		f.tokens.On("RevokeToken", mock.Anything, "jti-1", mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 29*time.Minute && ttl <= 30*time.Minute
		})).Return(nil).Once()

		require.NoError(t, f.svc.Logout(ctx, auth))
	})

	t.Run("Failure - Token without an id", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)

		err := f.svc.Logout(ctx, models.AuthContext{UserID: uuid.New()})

		requireAppError(t, err, appErrors.ErrCodeUnauthorized)
	})

	t.Run("Failure - Redis unavailable", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("RevokeToken", mock.Anything, "jti-1", mock.Anything).Return(errors.New("redis down")).Once()

		err := f.svc.Logout(ctx, models.AuthContext{TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Minute)})

		requireAppError(t, err, appErrors.ErrCodeThirdPartyError)
	})
}

func TestUserService_GetUserByID(t *testing.T) {
	f := newUserFixture(t, time.Hour)
	id := uuid.New()
	f.users.On("GetUserByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.GetUserByID(t.Context(), id)

	requireAppError(t, err, appErrors.ErrCodeNotFound)
}

func TestUserService_VerifyEmail(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenEmailVerification, "tok").Return(userID.String(), nil).Once()
		f.users.On("MarkEmailVerified", mock.Anything, userID).Return(nil).Once()

		require.NoError(t, f.svc.VerifyEmail(ctx, "tok"))
	})

	t.Run("Failure - Unknown or reused token", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenEmailVerification, "tok").Return("", repository.ErrNotFound).Once()

		err := f.svc.VerifyEmail(ctx, "tok")

		appErr := requireAppError(t, err, appErrors.ErrCodeBadRequest)
		assert.Equal(t, "Invalid token", appErr.Message)
	})

	t.Run("Failure - Account deleted after registration", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenEmailVerification, "tok").Return(userID.String(), nil).Once()
		f.users.On("MarkEmailVerified", mock.Anything, userID).Return(repository.ErrNotFound).Once()

		requireAppError(t, f.svc.VerifyEmail(ctx, "tok"), appErrors.ErrCodeNotFound)
	})
}

func TestUserService_ForgotPassword(t *testing.T) {
	ctx := t.Context()
	user := &models.User{ID: uuid.New(), Email: "jane@example.com"}

	t.Run("Success - Reset link valid for an hour", func(t *testing.T) {
		// Arrange
		f := newUserFixture(t, time.Hour)
		f.users.On("GetUserByEmail", mock.Anything, "jane@example.com").Return(user, nil).Once()

		var token string

		f.tokens.On("SaveToken", mock.Anything, models.TokenPasswordReset, mock.AnythingOfType("string"), user.ID.String(), time.Hour).
			Run(func(args mock.Arguments) { token = args.String(2) }).
			Return(nil).Once()
		f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *models.EmailNotificationRequest) bool {
			return m.To == "jane@example.com" && m.Subject == "Password Reset"
		})).Run(func(args mock.Arguments) {
			assert.Contains(t, args.Get(1).(*models.EmailNotificationRequest).Content, "/reset-password?token="+token)
		}).Return(nil).Once()

		// Act
		err := f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "Jane@example.com"})

		// Assert
		require.NoError(t, err)
	})

	t.Run("Success - Unknown email sends nothing", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound).Once()

		require.NoError(t, f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "ghost@example.com"}))
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Mail not delivered", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.users.On("GetUserByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.tokens.On("SaveToken", mock.Anything, models.TokenPasswordReset, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		f.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("sendgrid: 401")).Once()

		err := f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: user.Email})

		requireAppError(t, err, appErrors.ErrCodeThirdPartyError)
	})
}

func TestUserService_ResetForgottenPassword(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenPasswordReset, "tok").Return(userID.String(), nil).Once()
		f.users.On("UpdatePassword", mock.Anything, userID, mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword1")) == nil
		})).Return(nil).Once()

		err := f.svc.ResetForgottenPassword(ctx, &models.ResetForgottenPasswordRequest{
			Token: "tok", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
		})

		require.NoError(t, err)
	})

	t.Run("Failure - Mismatch keeps the token usable", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)

		err := f.svc.ResetForgottenPassword(ctx, &models.ResetForgottenPasswordRequest{
			Token: "tok", NewPassword: "newpassword1", ConfirmPassword: "newpassword2",
		})

		appErr := requireAppError(t, err, appErrors.ErrCodeBadRequest)
		assert.Equal(t, "Passwords do not match", appErr.Message)
		f.tokens.AssertNotCalled(t, "ConsumeToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Expired token", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenPasswordReset, "tok").Return("", repository.ErrNotFound).Once()

		err := f.svc.ResetForgottenPassword(ctx, &models.ResetForgottenPasswordRequest{
			Token: "tok", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
		})

		requireAppError(t, err, appErrors.ErrCodeBadRequest)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := t.Context()
	user := &models.User{ID: uuid.New(), Password: hashed(t, "oldpassword")}

	tests := []struct {
		name    string
		req     models.ChangePasswordRequest
		wantMsg string
	}{
		{
			name:    "Failure - Incorrect old password",
			req:     models.ChangePasswordRequest{OldPassword: "guess", NewPassword: "newpassword1", ConfirmPassword: "newpassword1"},
			wantMsg: "Incorrect old password",
		},
		{
			name:    "Failure - Passwords do not match",
			req:     models.ChangePasswordRequest{OldPassword: "oldpassword", NewPassword: "newpassword1", ConfirmPassword: "newpassword2"},
			wantMsg: "Passwords do not match",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newUserFixture(t, time.Hour)
			f.users.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

			err := f.svc.ChangePassword(ctx, user.ID, &tc.req)

			appErr := requireAppError(t, err, appErrors.ErrCodeBadRequest)
			assert.Equal(t, tc.wantMsg, appErr.Message)
		})
	}

	t.Run("Success", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.users.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()
		f.users.On("UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil).Once()

		err := f.svc.ChangePassword(ctx, user.ID, &models.ChangePasswordRequest{
			OldPassword: "oldpassword", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
		})

		require.NoError(t, err)
	})
}

func TestUserService_ProfileUpdate(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	current := func() *models.User {
		return &models.User{ID: userID, Username: "jane", Email: "jane@example.com", IsVerified: true}
	}

	pendingJSON := func(t *testing.T, otp string) string {
		t.Helper()

		raw, err := json.Marshal(models.PendingProfileChange{OTP: otp, Username: "janedoe", Email: "jane@new.example.com"})
		require.NoError(t, err)

		return string(raw)
	}

	t.Run("Request - Code mailed to the current address", func(t *testing.T) {
		// Arrange
		f := newUserFixture(t, time.Hour)
		f.users.On("GetUserByID", mock.Anything, userID).Return(current(), nil).Once()

		var pending models.PendingProfileChange

		f.tokens.On("SaveToken", mock.Anything, models.TokenProfileOTP, userID.String(), mock.AnythingOfType("string"), 10*time.Minute).
			Run(func(args mock.Arguments) {
				require.NoError(t, json.Unmarshal([]byte(args.String(3)), &pending))
			}).Return(nil).Once()
		f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *models.EmailNotificationRequest) bool {
			return m.To == "jane@example.com"
		})).Run(func(args mock.Arguments) {
			assert.Contains(t, args.Get(1).(*models.EmailNotificationRequest).Content, pending.OTP)
		}).Return(nil).Once()

		// Act
		err := f.svc.RequestProfileUpdate(ctx, userID, &models.UpdateProfileRequest{Username: "janedoe", Email: "Jane@New.example.com"})

		// Assert
		require.NoError(t, err)
		assert.Len(t, pending.OTP, 6)
		assert.Equal(t, "jane@new.example.com", pending.Email)
	})

	t.Run("Verify - Success", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenProfileOTP, userID.String()).Return(pendingJSON(t, "123456"), nil).Once()
		f.users.On("GetUserByID", mock.Anything, userID).Return(current(), nil).Once()
		f.users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Username == "janedoe" && u.Email == "jane@new.example.com"
		})).Return(nil).Once()

		user, err := f.svc.VerifyProfileUpdate(ctx, userID, &models.VerifyProfileRequest{OTP: "123456"})

		require.NoError(t, err)
		assert.Equal(t, "janedoe", user.Username)
	})

	t.Run("Verify - Wrong code", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenProfileOTP, userID.String()).Return(pendingJSON(t, "123456"), nil).Once()

		_, err := f.svc.VerifyProfileUpdate(ctx, userID, &models.VerifyProfileRequest{OTP: "654321"})

		appErr := requireAppError(t, err, appErrors.ErrCodeBadRequest)
		assert.Equal(t, "Invalid OTP", appErr.Message)
		f.users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	})

	t.Run("Verify - No pending change", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenProfileOTP, userID.String()).Return("", repository.ErrNotFound).Once()

		_, err := f.svc.VerifyProfileUpdate(ctx, userID, &models.VerifyProfileRequest{OTP: "123456"})

		requireAppError(t, err, appErrors.ErrCodeBadRequest)
	})

	t.Run("Verify - Username taken meanwhile", func(t *testing.T) {
		f := newUserFixture(t, time.Hour)
		f.tokens.On("ConsumeToken", mock.Anything, models.TokenProfileOTP, userID.String()).Return(pendingJSON(t, "123456"), nil).Once()
		f.users.On("GetUserByID", mock.Anything, userID).Return(current(), nil).Once()
		f.users.On("UpdateProfile", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEntry).Once()

		_, err := f.svc.VerifyProfileUpdate(ctx, userID, &models.VerifyProfileRequest{OTP: "123456"})

		requireAppError(t, err, appErrors.ErrCodeDuplicateEntry)
	})
}
