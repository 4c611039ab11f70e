package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/botica-pos/botica/internal/shared"
)

type memRepo struct {
	users map[string]User
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (User, error) {
	u, ok := r.users[email]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func newTestAuth(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &memRepo{users: map[string]User{
		"ama@botica.test": {ID: "u1", Email: "ama@botica.test", Name: "Ama", Role: shared.RoleManager, PasswordHash: string(hash)},
	}}
	return NewService(repo, NewTokenManager(client, time.Hour), nil), mr
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newTestAuth(t)

	token, user, err := svc.Login(context.Background(), "ama@botica.test", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "u1", user.ID)
	require.Empty(t, user.PasswordHash)

	identity, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "u1", identity.UserID)
	require.Equal(t, shared.RoleManager, identity.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, _, err := svc.Login(context.Background(), "ama@botica.test", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email yields the same error as a wrong password.
	_, _, err = svc.Login(context.Background(), "nobody@botica.test", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestAuth(t)

	token, _, err := svc.Login(context.Background(), "ama@botica.test", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))
	_, err = svc.Resolve(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenExpires(t *testing.T) {
	svc, mr := newTestAuth(t)

	token, _, err := svc.Login(context.Background(), "ama@botica.test", "s3cret")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = svc.Resolve(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRequireAuthMiddleware(t *testing.T) {
	svc, _ := newTestAuth(t)

	token, _, err := svc.Login(context.Background(), "ama@botica.test", "s3cret")
	require.NoError(t, err)

	var captured shared.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := svc.RequireAuth(next)

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1", captured.UserID)

	// No token and garbage tokens both get a 401 problem response.
	for _, header := range []string{"", "Bearer nope", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}
