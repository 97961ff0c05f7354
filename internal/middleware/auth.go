package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/model"
)

// Identity is what a verified credential says about its holder.
type Identity struct {
	UID     string
	Name    string
	Picture string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// UserEnsurer creates the local user row on first sight.
type UserEnsurer interface {
	Ensure(ctx context.Context, uid, displayName string) (*model.User, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	users    UserEnsurer
}

func NewAuthMiddleware(verifier TokenVerifier, users UserEnsurer) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, users: users}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenStr := BearerToken(c.Request())
		if tokenStr == "" {
			return c.JSON(http.StatusUnauthorized, authError("unauthorized", "missing bearer token"))
		}
		id, err := m.verifier.Verify(c.Request().Context(), tokenStr)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, authError("invalid_token", "token verification failed"))
		}
		if m.users != nil {
			if _, err := m.users.Ensure(c.Request().Context(), id.UID, id.Name); err != nil {
				log.Printf("[auth] uid=%s ensure user err=%v", id.UID, err)
				return c.JSON(http.StatusInternalServerError, authError("internal_error", "failed to load user"))
			}
		}
		c.Set("uid", id.UID)
		c.Set("name", id.Name)
		return next(c)
	}
}

// BearerToken reads the Authorization header, falling back to the token query
// parameter for websocket clients that cannot set headers.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func authError(code, message string) map[string]map[string]string {
	return map[string]map[string]string{"error": {"code": code, "message": message}}
}
