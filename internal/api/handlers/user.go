package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	service "github.com/aaravmahajanofficial/grocery-store/internal/services"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService, validator: validator.New()}
}

// Register godoc
//
//	@Summary	Register a customer account
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		user	body		models.RegisterRequest	true	"Account details"
//	@Success	201		{object}	response.APIResponse{data=models.User}
//	@Failure	400		{object}	response.APIResponse
//	@Failure	409		{object}	response.APIResponse	"Username or email already registered"
//	@Router		/users/register [post]
func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.RegisterRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			fail(w, r, logger, "User registration failed", err)
			return
		}

		logger.Info("User registered", slog.String("userId", user.ID.String()))
		response.Success(w, http.StatusCreated, "User registered", user)
	}
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Accepts a username or an email. Returns a bearer token. Repeated attempts for the same identifier are rate limited.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		models.LoginRequest	true	"Username or email, and password"
//	@Success		200			{object}	response.APIResponse{data=models.LoginResponse}
//	@Failure		400			{object}	response.APIResponse
//	@Failure		401			{object}	response.APIResponse	"Invalid credentials"
//	@Failure		429			{object}	response.APIResponse	"Too many login attempts"
//	@Router			/users/login [post]
func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		resp, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			fail(w, r, logger, "Login failed", err)
			return
		}

		logger.Info("User logged in", slog.String("userId", resp.User.ID.String()))
		response.Success(w, http.StatusOK, "Login successful", resp)
	}
}

// Profile godoc
//
//	@Summary	Current user's profile
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	response.APIResponse{data=models.User}
//	@Failure	401	{object}	response.APIResponse
//	@Failure	404	{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/users/profile [get]
func (h *UserHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		user, err := h.userService.GetUserByID(r.Context(), auth.UserID)
		if err != nil {
			fail(w, r, logger, "Failed to load profile", err)
			return
		}

		response.Success(w, http.StatusOK, "Profile retrieved", user)
	}
}

// Logout godoc
//
//	@Summary	Log out
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	response.APIResponse
//	@Failure	401	{object}	response.APIResponse
//	@Security	BearerAuth
//	@Router		/users/logout [post]
func (h *UserHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		if err := h.userService.Logout(r.Context(), auth); err != nil {
			fail(w, r, logger, "Logout failed", err)
			return
		}

		logger.Info("User logged out")
		response.Success(w, http.StatusOK, "Logout successful", nil)
	}
}

// VerifyEmail godoc
//
//	@Summary	Confirm an email address
//	@Tags		Users
//	@Produce	json
//	@Param		token	path		string	true	"Token from the verification email"
//	@Success	200		{object}	response.APIResponse
//	@Failure	400		{object}	response.APIResponse	"Invalid token"
//	@Router		/users/verify-email/{token} [get]
func (h *UserHandler) VerifyEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		if err := h.userService.VerifyEmail(r.Context(), r.PathValue("token")); err != nil {
			fail(w, r, logger, "Email verification failed", err)
			return
		}

		response.Success(w, http.StatusOK, "Email verified", nil)
	}
}

// ForgotPassword godoc
//
//	@Summary		Request a password reset link
//	@Description	Answers the same way whether or not the address has an account.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	response.APIResponse
//	@Failure		400		{object}	response.APIResponse
//	@Router			/users/forgot-password [post]
func (h *UserHandler) ForgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.ForgotPasswordRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.ForgotPassword(r.Context(), &req); err != nil {
			fail(w, r, logger, "Forgot password failed", err)
			return
		}

		response.Success(w, http.StatusOK, "If the account exists, a password reset email has been sent", nil)
	}
}

// ResetForgottenPassword godoc
//
//	@Summary	Set a new password with an emailed reset token
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.ResetForgottenPasswordRequest	true	"Token and new password"
//	@Success	200		{object}	response.APIResponse
//	@Failure	400		{object}	response.APIResponse	"Invalid or expired token, or passwords do not match"
//	@Router		/users/forgot-password/reset [post]
func (h *UserHandler) ResetForgottenPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.ResetForgottenPasswordRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.ResetForgottenPassword(r.Context(), &req); err != nil {
			fail(w, r, logger, "Password reset failed", err)
			return
		}

		response.Success(w, http.StatusOK, "Password updated", nil)
	}
}

// ChangePassword godoc
//
//	@Summary	Change password
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.ChangePasswordRequest	true	"Old and new password"
//	@Success	200		{object}	response.APIResponse
//	@Failure	400		{object}	response.APIResponse	"Incorrect old password, or passwords do not match"
//	@Security	BearerAuth
//	@Router		/users/reset-password [put]
func (h *UserHandler) ChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.ChangePasswordRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.ChangePassword(r.Context(), auth.UserID, &req); err != nil {
			fail(w, r, logger, "Password change failed", err)
			return
		}

		logger.Info("Password changed")
		response.Success(w, http.StatusOK, "Password updated", nil)
	}
}

// UpdateProfile godoc
//
//	@Summary		Request a username or email change
//	@Description	Mails a six digit code to the current address. The change applies once the code is verified.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			profile	body		models.UpdateProfileRequest	true	"New username and email"
//	@Success		200		{object}	response.APIResponse
//	@Failure		400		{object}	response.APIResponse
//	@Security		BearerAuth
//	@Router			/users/profile [put]
func (h *UserHandler) UpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.UpdateProfileRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.RequestProfileUpdate(r.Context(), auth.UserID, &req); err != nil {
			fail(w, r, logger, "Profile update failed", err)
			return
		}

		response.Success(w, http.StatusOK, "OTP sent to your email", nil)
	}
}

// VerifyProfile godoc
//
//	@Summary	Apply a pending profile change
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		otp	body		models.VerifyProfileRequest	true	"Code from the email"
//	@Success	200	{object}	response.APIResponse{data=models.User}
//	@Failure	400	{object}	response.APIResponse	"Invalid OTP"
//	@Failure	409	{object}	response.APIResponse	"Username or email already registered"
//	@Security	BearerAuth
//	@Router		/users/profile/verify [post]
func (h *UserHandler) VerifyProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.VerifyProfileRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.VerifyProfileUpdate(r.Context(), auth.UserID, &req)
		if err != nil {
			fail(w, r, logger, "Profile verification failed", err)
			return
		}

		logger.Info("Profile updated")
		response.Success(w, http.StatusOK, "Profile updated", user)
	}
}
