package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/http/response"
	"github.com/openshelf/libris/internal/repo/postgres"
	"github.com/openshelf/libris/pkg/auth"
	"github.com/openshelf/libris/pkg/logger"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// Guard resolves bearer tokens to caller identities and enforces
// per-endpoint authorization. It never mutates state.
type Guard struct {
	userRepo  postgres.UserRepository
	jwtSecret string
}

func NewGuard(userRepo postgres.UserRepository, jwtSecret string) *Guard {
	return &Guard{userRepo: userRepo, jwtSecret: jwtSecret}
}

// RequireAuth resolves the Authorization header into an Identity and stores
// it in the request context. Role flags are read from the current user row,
// not the token, so approvals and grants take effect on the next request.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			response.WriteError(w, http.StatusUnauthorized, "Authentication required", response.CodeUnauthorized)
			return
		}

		raw := strings.TrimPrefix(authz, "Bearer ")
		claims, err := auth.Parse(raw, g.jwtSecret)
		if err != nil {
			response.WriteError(w, http.StatusUnauthorized, "Invalid token", response.CodeInvalidToken)
			return
		}

		user, err := g.userRepo.FindByID(r.Context(), claims.Sub)
		if err != nil {
			logger.ErrorContext(r.Context(), "failed to resolve token user", "error", err)
			response.WriteError(w, http.StatusInternalServerError, "Internal server error", response.CodeInternalError)
			return
		}
		if user == nil {
			// Token signed for a user that no longer exists.
			response.WriteError(w, http.StatusUnauthorized, "Invalid token", response.CodeInvalidToken)
			return
		}

		identity := domain.Identity{
			UserID:   user.ID,
			Email:    user.Email,
			Admin:    user.IsAdmin,
			Approved: user.IsApproved,
		}

		ctx := context.WithValue(r.Context(), ctxIdentity, identity)
		ctx = context.WithValue(ctx, logger.UserIDKey, identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireApproved rejects callers whose account is still pending approval.
// Must run after RequireAuth.
func (g *Guard) RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r)
		if !ok {
			response.WriteError(w, http.StatusUnauthorized, "Authentication required", response.CodeUnauthorized)
			return
		}
		if !identity.Approved {
			response.WriteError(w, http.StatusForbidden, "Your account is pending approval", response.CodePendingApproval)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects non-admin callers regardless of approval state.
// Must run after RequireAuth.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r)
		if !ok {
			response.WriteError(w, http.StatusUnauthorized, "Authentication required", response.CodeUnauthorized)
			return
		}
		if !identity.Admin {
			response.WriteError(w, http.StatusForbidden, "Forbidden", response.CodeForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFrom returns the caller identity resolved by RequireAuth.
func IdentityFrom(r *http.Request) (domain.Identity, bool) {
	identity, ok := r.Context().Value(ctxIdentity).(domain.Identity)
	return identity, ok
}
