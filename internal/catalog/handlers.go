package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhanh-dev/backend-moda/internal/common"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	Service *Service
}

// Brands handles GET /api/v1/brands.
func (h *Handler) Brands(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListBrands(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "brands", rows)
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListCategories(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "categories", rows)
}

// Sizes handles GET /api/v1/sizes.
func (h *Handler) Sizes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListSizes(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "sizes", rows)
}

// Colors handles GET /api/v1/colors.
func (h *Handler) Colors(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListColors(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "colors", rows)
}

// Products handles GET /api/v1/products with filters and pagination.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	params := h.Service.ParseListParams(r.URL.Query())
	result, err := h.Service.ListProducts(r.Context(), params)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, "products", result.Items,
		common.NewPagination(params.Page, params.Limit, len(result.Items), result.Total))
}

// ProductDetail handles GET /api/v1/products/{slug}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.GetProductDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "product", detail)
}

// Related handles GET /api/v1/products/{slug}/related.
func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListRelatedProducts(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, "related products", items)
}
