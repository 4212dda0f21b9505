package returns

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// Handler exposes customer return endpoints and the admin review surface.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

// Create handles POST /api/v1/returns.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.Create(r.Context(), userID, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, "return request created", detail)
}

// Update handles PUT /api/v1/returns/{id} while the request is pending.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.Update(r.Context(), userID, id, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "return request updated", detail)
}

// Cancel handles POST /api/v1/returns/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, err := h.Service.Cancel(r.Context(), userID, id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "return request cancelled", req)
}

// Get handles GET /api/v1/returns/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.Get(r.Context(), &userID, id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "return request", detail)
}

// List handles GET /api/v1/returns for the authenticated customer.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	page, limit := common.ParsePagination(r, 20)
	f := store.ReturnFilter{UserID: &userID, Limit: int32(limit), Offset: int32((page - 1) * limit)}
	rows, total, err := h.Service.List(r.Context(), f)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, "return requests", rows, common.NewPagination(page, limit, len(rows), total))
}

// AdminList handles GET /api/v1/admin/returns with an optional status filter.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, 20)
	f := store.ReturnFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  int32(limit),
		Offset: int32((page - 1) * limit),
	}
	rows, total, err := h.Service.List(r.Context(), f)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, "return requests", rows, common.NewPagination(page, limit, len(rows), total))
}

// AdminGet handles GET /api/v1/admin/returns/{id}.
func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.Get(r.Context(), nil, id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "return request", detail)
}

// AdminRefund handles POST /api/v1/admin/returns/{id}/refund.
func (h *Handler) AdminRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, err := h.Service.Refund(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "return refunded", req)
}

// AdminCancel handles POST /api/v1/admin/returns/{id}/cancel.
func (h *Handler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, err := h.Service.Cancel(r.Context(), uuid.Nil, id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "return request cancelled", req)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user identity", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid return id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return in, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid return payload", err.Error())
			return in, false
		}
	}
	return in, true
}
