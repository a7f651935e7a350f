package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const genericInternalMessage = "An unexpected error occurred"

type APIResponse struct {
	Status     string             `json:"status"`
	StatusCode int                `json:"statusCode"`
	Message    string             `json:"message"`
	Code       string             `json:"code,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

var exposeInternalErrors atomic.Bool

// ExposeInternalErrors controls whether 5xx responses carry the real message.
// Only development deployments should enable it.
func ExposeInternalErrors(enabled bool) {
	exposeInternalErrors.Store(enabled)
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data any) {
	write(w, APIResponse{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

func Paginated(w http.ResponseWriter, message string, data any, pagination *models.Pagination) {
	write(w, APIResponse{
		Status:     StatusSuccess,
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

func Error(w http.ResponseWriter, err error) {
	resp := APIResponse{
		Status:     StatusError,
		StatusCode: http.StatusInternalServerError,
		Message:    genericInternalMessage,
		Code:       errors.ErrCodeInternal,
	}

	if appErr, ok := errors.IsAppError(err); ok {
		resp.StatusCode = appErr.StatusCode
		resp.Code = appErr.Code
		resp.Message = appErr.Message

		if appErr.Detail != "" {
			resp.Errors = []string{appErr.Detail}
		}
	}

	if resp.StatusCode >= http.StatusInternalServerError && !exposeInternalErrors.Load() {
		resp.Message = genericInternalMessage
		resp.Errors = nil
	} else if resp.StatusCode >= http.StatusInternalServerError && err != nil {
		resp.Errors = append(resp.Errors, err.Error())
	}

	write(w, resp)
}

func ValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {
	errMsgs := make([]string, 0, len(errs))

	for _, err := range errs {
		var message string

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field %s is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field %s must be a valid email address", err.Field())
		case "url":
			message = fmt.Sprintf("Field %s must be a valid URL", err.Field())
		case "min":
			message = fmt.Sprintf("Field %s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field %s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("Field %s must be greater than or equal to %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field %s must be one of: %s", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field %s is invalid: %s=%s", err.Field(), err.Tag(), err.Param())
		}

		errMsgs = append(errMsgs, message)
	}

	write(w, APIResponse{
		Status:     StatusError,
		StatusCode: http.StatusBadRequest,
		Message:    "Validation failed",
		Code:       errors.ErrCodeValidation,
		Errors:     errMsgs,
	})
}

func write(w http.ResponseWriter, resp APIResponse) {
	if err := WriteJson(w, resp.StatusCode, resp); err != nil {
		slog.Error("Failed to write response", slog.String("error", err.Error()))
	}
}
