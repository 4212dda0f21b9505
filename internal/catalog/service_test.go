package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/promo"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

type stubQuerier struct {
	Querier
	products []store.Product
	variants []store.Variant
}

func (s *stubQuerier) CountProducts(context.Context, store.ProductFilter) (int64, error) {
	return int64(len(s.products)), nil
}

func (s *stubQuerier) ListProducts(context.Context, store.ProductFilter) ([]store.Product, error) {
	return s.products, nil
}

func (s *stubQuerier) ListVariantsByProducts(context.Context, []uuid.UUID) ([]store.Variant, error) {
	return s.variants, nil
}

type stubPromos struct {
	active []store.Promotion
	now    time.Time
}

func (s *stubPromos) ActiveSet(context.Context) ([]store.Promotion, error) {
	return s.active, nil
}

func (s *stubPromos) PriceFor(_ context.Context, productID uuid.UUID, basePrice int64) (promo.Applied, error) {
	return promo.Apply(s.active, productID, basePrice, s.now), nil
}

func TestListProductsAppliesWinningPromotion(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	productID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	q := &stubQuerier{
		products: []store.Product{{ID: productID, Title: "áo khoác", Slug: "ao-khoac"}},
		variants: []store.Variant{{ID: uuid.New(), ProductID: productID, Price: 400_000, Stock: 5, Position: 0}},
	}
	promos := &stubPromos{now: now, active: []store.Promotion{{
		ID:              uuid.New(),
		DiscountPercent: 25,
		StartDate:       now.Add(-time.Hour),
		EndDate:         now.Add(time.Hour),
		Status:          store.PromotionActive,
	}}}
	svc := &Service{Q: q, Promos: promos, DefaultLimit: 20}

	result, err := svc.ListProducts(context.Background(), ListParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	item := result.Items[0]
	require.Equal(t, int64(300_000), item.Price)
	require.Equal(t, int64(400_000), item.OriginalPrice)
	require.Equal(t, int32(25), item.DiscountPercent)
	require.True(t, item.InStock)
}

func TestListProductsIdentityWithoutPromotions(t *testing.T) {
	productID := uuid.New()
	q := &stubQuerier{
		products: []store.Product{{ID: productID, Title: "áo thun", Slug: "ao-thun"}},
		variants: []store.Variant{{ID: uuid.New(), ProductID: productID, Price: 150_000, Stock: 0}},
	}
	svc := &Service{Q: q, Promos: &stubPromos{now: time.Now()}, DefaultLimit: 20}

	result, err := svc.ListProducts(context.Background(), ListParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, int64(150_000), result.Items[0].Price)
	require.Equal(t, int32(0), result.Items[0].DiscountPercent)
	require.False(t, result.Items[0].InStock)
}

func TestParseListParamsClampsLimit(t *testing.T) {
	svc := &Service{DefaultLimit: 20, MaxLimit: 50}
	params := svc.ParseListParams(map[string][]string{"limit": {"500"}, "page": {"3"}})
	require.Equal(t, 50, params.Limit)
	require.Equal(t, 3, params.Page)
}
