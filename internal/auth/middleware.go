package auth

import (
	"net/http"
	"strings"

	"github.com/minhanh-dev/backend-moda/internal/common"
)

// Identity headers injected by the API gateway after it has verified the
// caller's session. This service trusts the gateway and never sees
// credentials itself.
const (
	UserHeader  = "X-User-Id"
	RolesHeader = "X-User-Roles"
)

// RoleAdmin marks back-office callers.
const RoleAdmin = "admin"

// Identity lifts the gateway identity headers into the request context.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if userID := strings.TrimSpace(r.Header.Get(UserHeader)); userID != "" {
			ctx = common.WithUserID(ctx, userID)
		}
		if raw := strings.TrimSpace(r.Header.Get(RolesHeader)); raw != "" {
			parts := strings.Split(raw, ",")
			roles := make([]string, 0, len(parts))
			for _, p := range parts {
				if role := strings.TrimSpace(p); role != "" {
					roles = append(roles, role)
				}
			}
			ctx = common.WithRoles(ctx, roles)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects requests without an authenticated identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := common.UserID(r.Context()); !ok {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose identity lacks the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := common.UserID(r.Context()); !ok {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
				return
			}
			if !common.HasRole(r.Context(), role) {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
