package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	seen []string
	err  error
}

func (f *fakeUsers) Ensure(_ context.Context, uid, name string) (*model.User, error) {
	f.seen = append(f.seen, uid+"/"+name)
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{UID: uid, DisplayName: name}, nil
}

func newVerifier(t *testing.T) *JWTVerifier {
	t.Helper()
	v, err := NewJWTVerifier("0123456789abcdef0123", "localaid")
	require.NoError(t, err)
	return v
}

func TestJWTVerifier(t *testing.T) {
	r := require.New(t)
	v := newVerifier(t)

	token, err := v.Issue("alice", "Alice", time.Hour)
	r.NoError(err)
	id, err := v.Verify(context.Background(), token)
	r.NoError(err)
	r.Equal(&Identity{UID: "alice", Name: "Alice"}, id)

	expired, err := v.Issue("alice", "Alice", -time.Minute)
	r.NoError(err)
	_, err = v.Verify(context.Background(), expired)
	r.Error(err)

	other, err := NewJWTVerifier("another-secret-value-xyz", "localaid")
	r.NoError(err)
	forged, err := other.Issue("alice", "Alice", time.Hour)
	r.NoError(err)
	_, err = v.Verify(context.Background(), forged)
	r.Error(err)

	foreign, err := (&JWTVerifier{secret: v.secret, issuer: "someone-else"}).Issue("alice", "", time.Hour)
	r.NoError(err)
	_, err = v.Verify(context.Background(), foreign)
	r.Error(err)

	_, err = NewJWTVerifier("short", "localaid")
	r.Error(err)
}

func TestRequireAuth(t *testing.T) {
	v := newVerifier(t)
	token, err := v.Issue("alice", "Alice", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		query      string
		usersErr   error
		wantStatus int
	}{
		{"bearer header", "Bearer " + token, "", nil, http.StatusOK},
		{"query token", "", token, nil, http.StatusOK},
		{"missing", "", "", nil, http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", nil, http.StatusUnauthorized},
		{"user store down", "Bearer " + token, "", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			users := &fakeUsers{err: tt.usersErr}
			m := NewAuthMiddleware(v, users)
			e := echo.New()
			target := "/api/me"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := m.RequireAuth(func(c echo.Context) error {
				r.Equal("alice", c.Get("uid"))
				return c.NoContent(http.StatusOK)
			})(c)

			r.NoError(err)
			r.Equal(tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				r.Equal([]string{"alice/Alice"}, users.seen)
			}
		})
	}
}
