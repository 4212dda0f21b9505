package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/minhanh-dev/backend-moda/internal/cache"
	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/promo"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// Querier is the subset of store access the catalog service needs.
type Querier interface {
	ListBrands(ctx context.Context) ([]store.Brand, error)
	ListCategories(ctx context.Context) ([]store.Category, error)
	ListSizes(ctx context.Context) ([]store.Size, error)
	ListColors(ctx context.Context) ([]store.Color, error)
	CountProducts(ctx context.Context, f store.ProductFilter) (int64, error)
	ListProducts(ctx context.Context, f store.ProductFilter) ([]store.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (store.Product, error)
	ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]store.Variant, error)
	ListVariantsByProducts(ctx context.Context, productIDs []uuid.UUID) ([]store.Variant, error)
	ListImagesByProduct(ctx context.Context, productID uuid.UUID) ([]store.ProductImage, error)
	ListRelatedByCategory(ctx context.Context, categoryID uuid.UUID, excludeSlug string, limit int32) ([]store.Product, error)
}

// Promotions resolves discounted prices for catalog payloads.
type Promotions interface {
	ActiveSet(ctx context.Context) ([]store.Promotion, error)
	PriceFor(ctx context.Context, productID uuid.UUID, basePrice int64) (promo.Applied, error)
}

// Service assembles public catalog payloads with promotion pricing applied.
type Service struct {
	Q            Querier
	Promos       Promotions
	Cache        *cache.Cache
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query    string
	Category string
	Brand    string
	Page     int
	Limit    int
}

// ParseListParams normalises raw query values into typed filters.
func (s *Service) ParseListParams(values url.Values) ListParams {
	p := ListParams{
		Query:    strings.TrimSpace(values.Get("q")),
		Category: strings.TrimSpace(values.Get("category")),
		Brand:    strings.TrimSpace(values.Get("brand")),
		Page:     1,
		Limit:    s.DefaultLimit,
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if v := values.Get("page"); v != "" {
		if page, err := parsePositive(v); err == nil {
			p.Page = page
		}
	}
	if v := values.Get("limit"); v != "" {
		if limit, err := parsePositive(v); err == nil {
			p.Limit = limit
		}
	}
	if s.MaxLimit > 0 && p.Limit > s.MaxLimit {
		p.Limit = s.MaxLimit
	}
	return p
}

func parsePositive(v string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("not positive: %d", n)
	}
	return n, nil
}

// ProductListItem is one entry in list/related responses, priced with the
// winning promotion applied.
type ProductListItem struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Price           int64     `json:"price"`
	OriginalPrice   int64     `json:"originalPrice"`
	DiscountPercent int32     `json:"discountPercent"`
	InStock         bool      `json:"inStock"`
}

// VariantView is a variant with its promotion-adjusted price.
type VariantView struct {
	store.Variant
	FinalPrice int64 `json:"finalPrice"`
}

// ProductDetail aggregates the full detail payload.
type ProductDetail struct {
	ProductListItem
	Description string        `json:"description"`
	Variants    []VariantView `json:"variants"`
	Images      []string      `json:"images"`
}

// ListResult carries a product page plus its total for pagination.
type ListResult struct {
	Items []ProductListItem
	Total int64
}

// ListBrands returns all brands. Option lists change rarely and are served
// from cache when possible.
func (s *Service) ListBrands(ctx context.Context) ([]store.Brand, error) {
	return cachedList(ctx, s.Cache, "catalog:brands", func() ([]store.Brand, error) {
		return s.Q.ListBrands(ctx)
	})
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]store.Category, error) {
	return cachedList(ctx, s.Cache, "catalog:categories", func() ([]store.Category, error) {
		return s.Q.ListCategories(ctx)
	})
}

// ListSizes returns all size options.
func (s *Service) ListSizes(ctx context.Context) ([]store.Size, error) {
	return cachedList(ctx, s.Cache, "catalog:sizes", func() ([]store.Size, error) {
		return s.Q.ListSizes(ctx)
	})
}

// ListColors returns all color options.
func (s *Service) ListColors(ctx context.Context) ([]store.Color, error) {
	return cachedList(ctx, s.Cache, "catalog:colors", func() ([]store.Color, error) {
		return s.Q.ListColors(ctx)
	})
}

func cachedList[T any](ctx context.Context, c *cache.Cache, key string, load func() ([]T, error)) ([]T, error) {
	var cached []T
	if ok, err := c.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := load()
	if err != nil {
		return nil, err
	}
	_ = c.SetJSON(ctx, key, rows)
	return rows, nil
}

// ListProducts returns a filtered, promotion-priced product page.
func (s *Service) ListProducts(ctx context.Context, p ListParams) (ListResult, error) {
	filter := store.ProductFilter{
		Query:        p.Query,
		CategorySlug: p.Category,
		BrandSlug:    p.Brand,
		Limit:        int32(p.Limit),
		Offset:       int32((p.Page - 1) * p.Limit),
	}
	total, err := s.Q.CountProducts(ctx, filter)
	if err != nil {
		return ListResult{}, fmt.Errorf("count products: %w", err)
	}
	products, err := s.Q.ListProducts(ctx, filter)
	if err != nil {
		return ListResult{}, fmt.Errorf("list products: %w", err)
	}
	items, err := s.priceProducts(ctx, products)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total}, nil
}

// priceProducts resolves base prices from each product's first variant and
// applies the winning promotion. All products in one call are priced against
// the same promotion set.
func (s *Service) priceProducts(ctx context.Context, products []store.Product) ([]ProductListItem, error) {
	if len(products) == 0 {
		return []ProductListItem{}, nil
	}
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	variants, err := s.Q.ListVariantsByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	basePrice := make(map[uuid.UUID]int64, len(products))
	inStock := make(map[uuid.UUID]bool, len(products))
	for _, v := range variants {
		if _, ok := basePrice[v.ProductID]; !ok {
			basePrice[v.ProductID] = v.Price
		}
		if v.Stock > 0 {
			inStock[v.ProductID] = true
		}
	}
	items := make([]ProductListItem, 0, len(products))
	for _, p := range products {
		applied, err := s.Promos.PriceFor(ctx, p.ID, basePrice[p.ID])
		if err != nil {
			return nil, err
		}
		items = append(items, ProductListItem{
			ID:              p.ID,
			Title:           p.Title,
			Slug:            p.Slug,
			Price:           applied.FinalPrice,
			OriginalPrice:   applied.OriginalPrice,
			DiscountPercent: applied.DiscountPercent,
			InStock:         inStock[p.ID],
		})
	}
	return items, nil
}

// GetProductDetail returns the full detail payload for one product slug.
// Detail responses are not cached: promotion windows make prices time
// sensitive and the promotion active-set is already cached upstream.
func (s *Service) GetProductDetail(ctx context.Context, slug string) (ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDetail{}, common.NewAppError("BAD_REQUEST", "slug is required", http.StatusBadRequest, nil)
	}
	product, err := s.Q.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ProductDetail{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return ProductDetail{}, fmt.Errorf("get product by slug: %w", err)
	}
	variants, err := s.Q.ListVariantsByProduct(ctx, product.ID)
	if err != nil {
		return ProductDetail{}, fmt.Errorf("list variants: %w", err)
	}
	var base int64
	if len(variants) > 0 {
		base = variants[0].Price
	}
	inStock := false
	for _, v := range variants {
		if v.Stock > 0 {
			inStock = true
			break
		}
	}
	applied, err := s.Promos.PriceFor(ctx, product.ID, base)
	if err != nil {
		return ProductDetail{}, err
	}
	detail := ProductDetail{
		ProductListItem: ProductListItem{
			ID:              product.ID,
			Title:           product.Title,
			Slug:            product.Slug,
			Price:           applied.FinalPrice,
			OriginalPrice:   applied.OriginalPrice,
			DiscountPercent: applied.DiscountPercent,
			InStock:         inStock,
		},
		Description: product.Description,
	}
	detail.Variants = make([]VariantView, 0, len(variants))
	for _, v := range variants {
		detail.Variants = append(detail.Variants, VariantView{
			Variant:    v,
			FinalPrice: promo.DiscountedPrice(v.Price, applied.DiscountPercent),
		})
	}
	images, err := s.Q.ListImagesByProduct(ctx, product.ID)
	if err != nil {
		return ProductDetail{}, fmt.Errorf("list images: %w", err)
	}
	detail.Images = make([]string, 0, len(images))
	for _, img := range images {
		detail.Images = append(detail.Images, img.URL)
	}
	return detail, nil
}

// ListRelatedProducts fetches promotion-priced products from the same
// category.
func (s *Service) ListRelatedProducts(ctx context.Context, slug string) ([]ProductListItem, error) {
	product, err := s.Q.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	if product.CategoryID == nil {
		return []ProductListItem{}, nil
	}
	related, err := s.Q.ListRelatedByCategory(ctx, *product.CategoryID, product.Slug, 8)
	if err != nil {
		return nil, fmt.Errorf("list related products: %w", err)
	}
	return s.priceProducts(ctx, related)
}
