package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Password         string    `json:"-"`
	Role             Role      `json:"role"`
	StripeCustomerID string    `json:"-"`
	IsVerified       bool      `json:"isVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest identifies the account by username or email.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required,max=255"`
	Password        string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
	User      *User  `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetForgottenPasswordRequest redeems the token mailed by forgot-password.
type ResetForgottenPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
}

type VerifyProfileRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

// PendingProfileChange is held in Redis until the OTP mailed to the current
// address is confirmed.
type PendingProfileChange struct {
	OTP      string `json:"otp"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenPurpose namespaces single-use tokens in the token store.
type TokenPurpose string

const (
	TokenEmailVerification TokenPurpose = "verify_email"
	TokenPasswordReset     TokenPurpose = "reset_password"
	TokenProfileOTP        TokenPurpose = "profile_otp"
)

// Claims is the JWT payload issued on login. RegisteredClaims.ID is the
// token id checked against the revocation list on every request.
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	jwt.RegisteredClaims
}

// AuthContext identifies the caller of a request. It is built once from
// verified claims and passed by value.
type AuthContext struct {
	UserID    uuid.UUID
	Email     string
	IsAdmin   bool
	TokenID   string
	ExpiresAt time.Time
}

func NewAuthContext(claims *Claims) AuthContext {
	auth := AuthContext{
		UserID:  claims.UserID,
		Email:   claims.Email,
		IsAdmin: claims.Role == RoleAdmin,
		TokenID: claims.ID,
	}

	if claims.ExpiresAt != nil {
		auth.ExpiresAt = claims.ExpiresAt.Time
	}

	return auth
}

// CanAccess reports whether the caller may see a resource owned by ownerID.
func (a AuthContext) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin || a.UserID == ownerID
}
