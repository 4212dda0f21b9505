package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/common"
)

func run(t *testing.T, handler http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIdentityLiftsHeaders(t *testing.T) {
	var gotUser string
	var gotRoles []string
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = common.UserID(r.Context())
		gotRoles = common.Roles(r.Context())
	}))
	run(t, h, map[string]string{
		UserHeader:  "0c7f1a4e-9a1b-4a58-9d3d-0c6a43a1c001",
		RolesHeader: "customer, admin",
	})
	require.Equal(t, "0c7f1a4e-9a1b-4a58-9d3d-0c6a43a1c001", gotUser)
	require.Equal(t, []string{"customer", "admin"}, gotRoles)
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := run(t, Identity(h), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleEnforcesAdmin(t *testing.T) {
	ok := false
	h := Identity(RequireRole(RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		ok = true
	})))

	rec := run(t, h, map[string]string{UserHeader: "u1", RolesHeader: "customer"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, ok)

	rec = run(t, h, map[string]string{UserHeader: "u1", RolesHeader: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
}
