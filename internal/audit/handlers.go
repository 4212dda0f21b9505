package audit

import (
	"net/http"

	"github.com/minhanh-dev/backend-moda/internal/common"
)

// Handler exposes the audit trail to administrators.
type Handler struct {
	Q Querier
}

// List returns audit entries newest first.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "AUDIT_NOT_CONFIGURED", "audit store not configured", nil)
		return
	}
	page, limit := common.ParsePagination(r, 50)
	total, err := h.Q.CountAuditLogs(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	rows, err := h.Q.ListAuditLogs(r.Context(), int32(limit), int32((page-1)*limit))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, "audit logs", rows, common.NewPagination(page, limit, len(rows), total))
}
