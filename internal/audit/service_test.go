package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/obs"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

type stubQuerier struct {
	lastInsert store.AuditLog
	called     bool
	logs       []store.AuditLog
	listLimit  int32
	listOffset int32
}

func (s *stubQuerier) InsertAuditLog(_ context.Context, a store.AuditLog) (store.AuditLog, error) {
	s.called = true
	s.lastInsert = a
	return a, nil
}

func (s *stubQuerier) CountAuditLogs(context.Context) (int64, error) {
	return int64(len(s.logs)), nil
}

func (s *stubQuerier) ListAuditLogs(_ context.Context, limit, offset int32) ([]store.AuditLog, error) {
	s.listLimit = limit
	s.listOffset = offset
	return s.logs, nil
}

func TestServiceRecord(t *testing.T) {
	q := &stubQuerier{}
	svc := Service{Q: q, Enabled: true, SamplingRate: 1}
	userID := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, "https://api.test/api/v1/admin/vouchers?status=active", nil)
	req.Header.Set("User-Agent", "tester")
	req.Header.Set("X-Request-ID", "req-123")
	req.RemoteAddr = "10.0.0.2:54321"
	ctx := common.WithUserID(req.Context(), userID)
	ctx = obs.WithRoutePattern(ctx, "/api/v1/admin/vouchers")
	req = req.WithContext(ctx)

	require.NoError(t, svc.Record(req.Context(), Actor{Kind: ActorKindUser, UserID: &userID}, "", "", "", req, http.StatusCreated, nil))
	require.True(t, q.called)
	require.Equal(t, string(ActorKindUser), q.lastInsert.ActorKind)
	require.NotNil(t, q.lastInsert.ActorUserID)
	require.Equal(t, userID, q.lastInsert.ActorUserID.String())
	require.Equal(t, "POST /api/v1/admin/vouchers", q.lastInsert.Action)
	require.Equal(t, "admin.vouchers", q.lastInsert.ResourceType)
	require.NotNil(t, q.lastInsert.IP)
	require.Equal(t, "10.0.0.2", *q.lastInsert.IP)
	require.NotNil(t, q.lastInsert.RequestID)
	require.Equal(t, "req-123", *q.lastInsert.RequestID)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(q.lastInsert.Metadata, &meta))
	require.Equal(t, "status=active", meta["query"])
}

func TestServiceRecordDisabled(t *testing.T) {
	q := &stubQuerier{}
	svc := Service{Q: q, Enabled: false}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, svc.Record(req.Context(), Actor{}, "", "", "", req, http.StatusOK, nil))
	require.False(t, q.called)
}
