package cart

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/minhanh-dev/backend-moda/internal/common"
)

// AnonHeader carries the anonymous cart token for guests.
const AnonHeader = "X-Anon-Id"

// Handler exposes cart endpoints for both customers and guests.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

func identity(r *http.Request) (Identity, bool) {
	if raw, ok := common.UserID(r.Context()); ok {
		if id, err := uuid.Parse(raw); err == nil {
			return Identity{UserID: &id}, true
		}
	}
	anon := strings.TrimSpace(r.Header.Get(AnonHeader))
	if anon != "" {
		return Identity{AnonID: anon}, true
	}
	return Identity{}, false
}

func (h *Handler) requireIdentity(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	id, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "authenticate or send an "+AnonHeader+" header", nil)
	}
	return id, ok
}

// Get handles GET /api/v1/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	view, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "cart", view)
}

// Add handles POST /api/v1/cart/items.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	var in AddInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid cart item payload", err.Error())
			return
		}
	}
	view, err := h.Service.Add(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "item added", view)
}

type qtyRequest struct {
	Qty int32 `json:"qty" validate:"gte=0"`
}

// SetQty handles PUT /api/v1/cart/items/{itemId}.
func (h *Handler) SetQty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart item id", nil)
		return
	}
	var req qtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	view, err := h.Service.SetQty(r.Context(), id, itemID, req.Qty)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "quantity updated", view)
}

// Remove handles DELETE /api/v1/cart/items/{itemId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart item id", nil)
		return
	}
	view, err := h.Service.Remove(r.Context(), id, itemID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "item removed", view)
}

type voucherRequest struct {
	Code string `json:"code" validate:"required"`
}

// ApplyVoucher handles POST /api/v1/cart/voucher.
func (h *Handler) ApplyVoucher(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	var req voucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "code is required", err.Error())
			return
		}
	}
	view, err := h.Service.ApplyVoucher(r.Context(), id, req.Code)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "voucher applied", view)
}

// RemoveVoucher handles DELETE /api/v1/cart/voucher.
func (h *Handler) RemoveVoucher(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	view, err := h.Service.RemoveVoucher(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "voucher removed", view)
}
