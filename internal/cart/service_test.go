package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/promo"
	"github.com/minhanh-dev/backend-moda/internal/store"
	"github.com/minhanh-dev/backend-moda/internal/voucher"
)

type stubQuerier struct {
	Querier
	cart     store.Cart
	items    []store.CartItem
	product  store.Product
	variant  store.Variant
	upserted *store.CartItem
}

func (s *stubQuerier) GetOrCreateCartByUser(context.Context, uuid.UUID, time.Duration) (store.Cart, error) {
	return s.cart, nil
}

func (s *stubQuerier) ListCartItems(context.Context, uuid.UUID) ([]store.CartItem, error) {
	if s.upserted != nil {
		return append(s.items, *s.upserted), nil
	}
	return s.items, nil
}

func (s *stubQuerier) UpsertCartItem(_ context.Context, it store.CartItem) (store.CartItem, error) {
	it.ID = uuid.New()
	it.Subtotal = int64(it.Qty) * it.UnitPrice
	s.upserted = &it
	return it, nil
}

func (s *stubQuerier) GetProductByID(context.Context, uuid.UUID) (store.Product, error) {
	return s.product, nil
}

func (s *stubQuerier) GetVariant(context.Context, uuid.UUID) (store.Variant, error) {
	return s.variant, nil
}

type stubPromos struct{ percent int32 }

func (s *stubPromos) PriceFor(_ context.Context, _ uuid.UUID, basePrice int64) (promo.Applied, error) {
	applied := promo.Applied{OriginalPrice: basePrice, FinalPrice: basePrice}
	if s.percent > 0 {
		applied.DiscountPercent = s.percent
		applied.FinalPrice = promo.DiscountedPrice(basePrice, s.percent)
		applied.Promotion = &store.Promotion{DiscountPercent: s.percent}
	}
	return applied, nil
}

type stubVouchers struct{}

func (stubVouchers) Check(context.Context, string, int64) (voucher.Validation, error) {
	return voucher.Validation{}, nil
}

func TestAddCapturesDiscountedPrice(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	variantID := uuid.New()
	q := &stubQuerier{
		cart:    store.Cart{ID: uuid.New(), UserID: &userID},
		product: store.Product{ID: productID, Title: "áo sơ mi", Slug: "ao-so-mi"},
		variant: store.Variant{ID: variantID, ProductID: productID, Price: 250_000, Stock: 10},
	}
	svc := &Service{
		Q: q, Promos: &stubPromos{percent: 20}, Vouchers: stubVouchers{},
		Log: zerolog.Nop(), TaxRateBps: 900, Shipping: 30_000,
	}

	view, err := svc.Add(context.Background(), Identity{UserID: &userID}, AddInput{
		ProductID: productID, VariantID: &variantID, Qty: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, q.upserted)
	require.Equal(t, int64(200_000), q.upserted.UnitPrice)
	require.Equal(t, int64(250_000), q.upserted.OriginalPrice)
	require.Equal(t, int32(20), q.upserted.DiscountPercent)
	require.Equal(t, int64(400_000), view.Subtotal)
	require.Equal(t, int64(36_000), view.Tax)
	require.Equal(t, int64(400_000+36_000+30_000), view.Total)
}

func TestAddRejectsInsufficientStock(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	variantID := uuid.New()
	q := &stubQuerier{
		cart:    store.Cart{ID: uuid.New(), UserID: &userID},
		product: store.Product{ID: productID},
		variant: store.Variant{ID: variantID, ProductID: productID, Price: 100_000, Stock: 1},
	}
	svc := &Service{Q: q, Promos: &stubPromos{}, Vouchers: stubVouchers{}, Log: zerolog.Nop()}

	_, err := svc.Add(context.Background(), Identity{UserID: &userID}, AddInput{
		ProductID: productID, VariantID: &variantID, Qty: 3,
	})
	require.Error(t, err)
}

func TestEmptyCartHasNoShipping(t *testing.T) {
	userID := uuid.New()
	q := &stubQuerier{cart: store.Cart{ID: uuid.New(), UserID: &userID}}
	svc := &Service{Q: q, Promos: &stubPromos{}, Vouchers: stubVouchers{}, Log: zerolog.Nop(), Shipping: 30_000}

	view, err := svc.Get(context.Background(), Identity{UserID: &userID})
	require.NoError(t, err)
	require.Zero(t, view.Total)
	require.Zero(t, view.Shipping)
}
