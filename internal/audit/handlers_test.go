package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

func TestHandlerList(t *testing.T) {
	q := &stubQuerier{logs: []store.AuditLog{{Action: "TEST", Method: "GET"}}}
	h := Handler{Q: q}

	req := httptest.NewRequest(http.MethodGet, "/admin/audit-logs?page=2&limit=25", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int32(25), q.listLimit)
	require.Equal(t, int32(25), q.listOffset)

	var env common.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Pagination)
	require.Equal(t, 2, env.Pagination.CurrentPage)
}
