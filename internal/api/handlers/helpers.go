package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-store/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/google/uuid"
)

// authenticated returns the caller's auth context or writes a 401.
func authenticated(w http.ResponseWriter, r *http.Request) (models.AuthContext, *slog.Logger, bool) {
	logger := middleware.LoggerFromContext(r.Context())

	auth, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		logger.Warn("Missing authentication context")
		response.Error(w, appErrors.UnauthorizedError("Authentication required"))

		return models.AuthContext{}, logger, false
	}

	return auth, logger, true
}

// fail logs err at a level matching its status and writes the error envelope.
func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	level := slog.LevelError
	if appErr, ok := appErrors.IsAppError(err); ok && appErr.StatusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}

	logger.Log(r.Context(), level, msg, slog.Any("error", err))
	response.Error(w, err)
}

func pathID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	id, err := utils.ParseID(r, name)
	if err != nil {
		logger.Warn("Invalid path parameter", slog.String("param", name), slog.String("error", err.Error()))
		response.Error(w, err)

		return uuid.Nil, false
	}

	return id, true
}
