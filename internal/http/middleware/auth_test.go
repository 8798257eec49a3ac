package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openshelf/libris/internal/domain"
	mw "github.com/openshelf/libris/internal/http/middleware"
	"github.com/openshelf/libris/pkg/auth"
)

const testSecret = "test-secret"

// ---------- Mocks ----------

type mockUserRepo struct {
	users map[int64]*domain.User
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(context.Context, *domain.RegisterRequest, string) (*domain.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(context.Context, string) (*domain.User, error) { return nil, nil }

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) Update(context.Context, int64, *domain.UpdateUserRequest) (*domain.User, error) {
	return nil, nil
}

func (m *mockUserRepo) SetApproved(context.Context, int64) (*domain.User, error) { return nil, nil }
func (m *mockUserRepo) SetAdmin(context.Context, int64) (*domain.User, error)    { return nil, nil }
func (m *mockUserRepo) Delete(context.Context, int64) error                      { return nil }
func (m *mockUserRepo) List(context.Context, int, int) ([]domain.User, error)    { return nil, nil }

// ---------- Helpers ----------

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func identityEcho(t *testing.T, got *domain.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := mw.IdentityFrom(r)
		require.True(t, ok)
		*got = identity
		w.WriteHeader(http.StatusOK)
	})
}

func tokenFor(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := auth.NewAccessToken(u.ID, u.Email, u.IsAdmin, u.IsApproved, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func doRequest(handler http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (message, code string) {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"], body["code"]
}

// ---------- Tests ----------

func TestRequireAuthMissingHeader(t *testing.T) {
	guard := mw.NewGuard(newMockUserRepo(), testSecret)

	rec := doRequest(guard.RequireAuth(okHandler(t)), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	_, code := decodeError(t, rec)
	require.Equal(t, "UNAUTHORIZED", code)
}

func TestRequireAuthBadToken(t *testing.T) {
	guard := mw.NewGuard(newMockUserRepo(), testSecret)

	rec := doRequest(guard.RequireAuth(okHandler(t)), "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	_, code := decodeError(t, rec)
	require.Equal(t, "INVALID_TOKEN", code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	u := &domain.User{ID: 1, Email: "a@x.com", IsApproved: true}
	guard := mw.NewGuard(newMockUserRepo(u), testSecret)

	token, err := auth.NewAccessToken(u.ID, u.Email, false, true, testSecret, -time.Minute)
	require.NoError(t, err)

	rec := doRequest(guard.RequireAuth(okHandler(t)), token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthDeletedUser(t *testing.T) {
	u := &domain.User{ID: 1, Email: "a@x.com", IsApproved: true}
	guard := mw.NewGuard(newMockUserRepo(), testSecret)

	rec := doRequest(guard.RequireAuth(okHandler(t)), tokenFor(t, u))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	_, code := decodeError(t, rec)
	require.Equal(t, "INVALID_TOKEN", code)
}

func TestRequireAuthResolvesIdentityFromStore(t *testing.T) {
	// The token was issued before approval; the store row wins.
	u := &domain.User{ID: 1, Email: "a@x.com", IsApproved: false}
	repo := newMockUserRepo(u)
	guard := mw.NewGuard(repo, testSecret)
	token := tokenFor(t, u)

	u.IsApproved = true
	u.IsAdmin = true

	var got domain.Identity
	rec := doRequest(guard.RequireAuth(identityEcho(t, &got)), token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(1), got.UserID)
	require.True(t, got.Approved)
	require.True(t, got.Admin)
}

func TestRequireApprovedRejectsPending(t *testing.T) {
	u := &domain.User{ID: 1, Email: "a@x.com", IsApproved: false}
	guard := mw.NewGuard(newMockUserRepo(u), testSecret)

	handler := guard.RequireAuth(guard.RequireApproved(okHandler(t)))
	rec := doRequest(handler, tokenFor(t, u))
	require.Equal(t, http.StatusForbidden, rec.Code)
	message, code := decodeError(t, rec)
	require.Equal(t, "Your account is pending approval", message)
	require.Equal(t, "PENDING_APPROVAL", code)
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	// Approval state is irrelevant for admin checks.
	for _, approved := range []bool{true, false} {
		u := &domain.User{ID: 1, Email: "a@x.com", IsApproved: approved}
		guard := mw.NewGuard(newMockUserRepo(u), testSecret)

		handler := guard.RequireAuth(guard.RequireAdmin(okHandler(t)))
		rec := doRequest(handler, tokenFor(t, u))
		require.Equal(t, http.StatusForbidden, rec.Code)
		_, code := decodeError(t, rec)
		require.Equal(t, "FORBIDDEN", code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	u := &domain.User{ID: 1, Email: "admin@x.com", IsApproved: true, IsAdmin: true}
	guard := mw.NewGuard(newMockUserRepo(u), testSecret)

	handler := guard.RequireAuth(guard.RequireAdmin(okHandler(t)))
	rec := doRequest(handler, tokenFor(t, u))
	require.Equal(t, http.StatusOK, rec.Code)
}

// ---------- Rate limit ----------

type mockLimiter struct {
	allowed bool
	err     error
}

func (m *mockLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return m.allowed, m.err
}

func TestLoginRateLimitBlocks(t *testing.T) {
	limited := mw.LoginRateLimit(&mockLimiter{allowed: false}, 5, time.Minute)

	rec := doRequest(limited(okHandler(t)), "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	_, code := decodeError(t, rec)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", code)
}

func TestLoginRateLimitFailsOpen(t *testing.T) {
	limited := mw.LoginRateLimit(&mockLimiter{err: errors.New("redis down")}, 5, time.Minute)

	rec := doRequest(limited(okHandler(t)), "")
	require.Equal(t, http.StatusOK, rec.Code)
}
