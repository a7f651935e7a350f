package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	appErrors "github.com/aaravmahajanofficial/grocery-store/internal/errors"
	"github.com/aaravmahajanofficial/grocery-store/internal/models"
	"github.com/aaravmahajanofficial/grocery-store/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
)

type authContextKey struct{}

var UserContextKey = authContextKey{}

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtKey  []byte
	revoked RevocationChecker
}

// NewAuthMiddleware validates bearer tokens. A nil checker skips the
// revocation lookup.
func NewAuthMiddleware(jwtKey []byte, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey, revoked: revoked}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, appErrors.UnauthorizedError("Authorization header is required"))
			return
		}

		// "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, appErrors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims := &models.Claims{}

		token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				logger.Error("Unexpected signing method used in JWT", slog.Any("alg", t.Header["alg"]))
				return nil, errUnexpectedSigningMethod
			}

			return m.jwtKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			logger.Warn("JWT validation failed", slog.Any("error", err))
			response.Error(w, appErrors.UnauthorizedError("Invalid or expired token"))
			return
		}

		if m.revoked != nil && claims.ID != "" {
			revoked, err := m.revoked.IsTokenRevoked(r.Context(), claims.ID)
			if err != nil {
				logger.Error("Token revocation lookup failed", slog.Any("error", err))
				response.Error(w, appErrors.ThirdPartyError("Failed to verify session"))
				return
			}

			if revoked {
				logger.Warn("Revoked token presented", slog.String("jti", claims.ID))
				response.Error(w, appErrors.UnauthorizedError("Invalid or expired token"))
				return
			}
		}

		auth := models.NewAuthContext(claims)

		ctx := ContextWithAuth(r.Context(), auth)

		requestScopedLogger := logger.With(slog.String("userId", auth.UserID.String()))
		ctx = WithLogger(ctx, requestScopedLogger)

		requestScopedLogger.Debug("User authenticated", slog.Bool("admin", auth.IsAdmin))

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireAdmin rejects authenticated callers without the admin role. It must
// run after Authenticate.
func RequireAdmin(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, ok := AuthFromContext(r.Context())
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		if !auth.IsAdmin {
			LoggerFromContext(r.Context()).Warn("Admin route denied")
			response.Error(w, appErrors.ForbiddenError("Admin access required"))
			return
		}

		next.ServeHTTP(w, r)
	}
}

func AuthFromContext(ctx context.Context) (models.AuthContext, bool) {
	auth, ok := ctx.Value(UserContextKey).(models.AuthContext)

	return auth, ok
}

func ContextWithAuth(ctx context.Context, auth models.AuthContext) context.Context {
	return context.WithValue(ctx, UserContextKey, auth)
}
