package order

import (
	"encoding/json"
	"net/http"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// AdminHandler exposes back-office order management.
type AdminHandler struct {
	Service *Service
}

// List handles GET /api/v1/admin/orders with status filters.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, 20)
	f := store.OrderFilter{
		Status:        r.URL.Query().Get("status"),
		PaymentStatus: r.URL.Query().Get("paymentStatus"),
		Limit:         int32(limit),
		Offset:        int32((page - 1) * limit),
	}
	rows, total, err := h.Service.List(r.Context(), f)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, "orders", rows, common.NewPagination(page, limit, len(rows), total))
}

// Get handles GET /api/v1/admin/orders/{id}.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.Get(r.Context(), nil, id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "order", detail)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PUT /api/v1/admin/orders/{id}/status.
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "status is required", nil)
		return
	}
	o, err := h.Service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "order status updated", o)
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

// SetPaymentStatus handles PUT /api/v1/admin/orders/{id}/payment-status.
func (h *AdminHandler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req paymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentStatus == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "paymentStatus is required", nil)
		return
	}
	o, err := h.Service.SetPaymentStatus(r.Context(), id, req.PaymentStatus)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "payment status updated", o)
}
