package analytics

import (
	"net/http"
	"strconv"

	"github.com/minhanh-dev/backend-moda/internal/common"
)

// Handler exposes admin statistics endpoints.
type Handler struct {
	Service *Service
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// Overview handles GET /api/v1/admin/stats/overview.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Overview(r.Context(), queryInt(r, "days"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "overview", stats)
}

// SalesDaily handles GET /api/v1/admin/stats/sales-daily.
func (h *Handler) SalesDaily(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.SalesDaily(r.Context(), queryInt(r, "days"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "daily sales", rows)
}

// TopProducts handles GET /api/v1/admin/stats/top-products.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.TopProducts(r.Context(), queryInt(r, "days"), queryInt(r, "limit"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "top products", rows)
}
