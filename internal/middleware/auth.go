package middleware

import (
	"net/http"
	"strings"

	"fanpulse/internal/contextutils"
	"fanpulse/internal/models"
	"fanpulse/internal/response"
	"fanpulse/internal/services"

	"go.uber.org/zap"
)

// AuthMiddleware verifies bearer tokens and loads the user identity into the
// request context.
type AuthMiddleware struct {
	auth    services.AuthService
	builder *response.Builder
	logger  *zap.Logger
}

// NewAuthMiddleware creates the authentication middleware
func NewAuthMiddleware(auth services.AuthService, builder *response.Builder, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		auth:    auth,
		builder: builder,
		logger:  logger,
	}
}

// RequireAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authenticate(r)
		if err != nil {
			m.builder.WriteError(w, r, err)
			return
		}

		ctx := contextutils.WithUserID(r.Context(), user.ID)
		ctx = contextutils.WithUserRole(ctx, user.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests unless the token belongs to an admin
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contextutils.GetUserRole(r.Context()) != models.RoleAdmin {
			m.builder.WriteError(w, r, services.NewForbiddenError("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// OptionalAuth loads the user identity when a valid token is present but
// lets anonymous requests through.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, err := m.authenticate(r); err == nil {
			ctx := contextutils.WithUserID(r.Context(), user.ID)
			ctx = contextutils.WithUserRole(ctx, user.Role)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request) (*models.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, services.NewUnauthorizedError("missing authorization header")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, services.NewUnauthorizedError("authorization header must use bearer scheme")
	}

	user, err := m.auth.VerifyToken(r.Context(), token)
	if err != nil {
		return nil, err
	}
	return user, nil
}
