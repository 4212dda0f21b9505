package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const auditCols = `id, actor_kind, actor_user_id, action, resource_type, resource_id, method, path, route, status, ip, user_agent, request_id, metadata, created_at`

// AuditLog is one recorded back-office or customer action.
type AuditLog struct {
	ID           uuid.UUID       `json:"id"`
	ActorKind    string          `json:"actorKind"`
	ActorUserID  *uuid.UUID      `json:"actorUserId,omitempty"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resourceType"`
	ResourceID   *string         `json:"resourceId,omitempty"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	Route        *string         `json:"route,omitempty"`
	Status       int32           `json:"status"`
	IP           *string         `json:"ip,omitempty"`
	UserAgent    *string         `json:"userAgent,omitempty"`
	RequestID    *string         `json:"requestId,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// InsertAuditLog appends one entry to the audit trail.
func (s *Store) InsertAuditLog(ctx context.Context, a AuditLog) (AuditLog, error) {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO audit_logs (actor_kind, actor_user_id, action, resource_type, resource_id, method, path, route, status, ip, user_agent, request_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+auditCols,
		a.ActorKind, a.ActorUserID, a.Action, a.ResourceType, a.ResourceID,
		a.Method, a.Path, a.Route, a.Status, a.IP, a.UserAgent, a.RequestID, a.Metadata,
	).Scan(&a.ID, &a.ActorKind, &a.ActorUserID, &a.Action, &a.ResourceType, &a.ResourceID,
		&a.Method, &a.Path, &a.Route, &a.Status, &a.IP, &a.UserAgent, &a.RequestID, &a.Metadata, &a.CreatedAt)
	return a, mapErr(err)
}

// CountAuditLogs returns the size of the audit trail.
func (s *Store) CountAuditLogs(ctx context.Context) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM audit_logs`).Scan(&n)
	return n, mapErr(err)
}

// ListAuditLogs returns entries newest first.
func (s *Store) ListAuditLogs(ctx context.Context, limit, offset int32) ([]AuditLog, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+auditCols+` FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	return collect(rows, func(rows pgx.Rows) (AuditLog, error) {
		var a AuditLog
		err := rows.Scan(&a.ID, &a.ActorKind, &a.ActorUserID, &a.Action, &a.ResourceType, &a.ResourceID,
			&a.Method, &a.Path, &a.Route, &a.Status, &a.IP, &a.UserAgent, &a.RequestID, &a.Metadata, &a.CreatedAt)
		return a, err
	})
}
