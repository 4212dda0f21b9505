package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/pricing"
	"github.com/minhanh-dev/backend-moda/internal/promo"
	"github.com/minhanh-dev/backend-moda/internal/store"
	"github.com/minhanh-dev/backend-moda/internal/voucher"
)

// Identity selects the cart owner: an authenticated user or an anonymous
// visitor token. Exactly one side is set.
type Identity struct {
	UserID *uuid.UUID
	AnonID string
}

// Querier is the subset of store access the cart service needs.
type Querier interface {
	GetOrCreateCartByUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) (store.Cart, error)
	GetOrCreateCartByAnon(ctx context.Context, anonID string, ttl time.Duration) (store.Cart, error)
	ListCartItems(ctx context.Context, cartID uuid.UUID) ([]store.CartItem, error)
	UpsertCartItem(ctx context.Context, it store.CartItem) (store.CartItem, error)
	SetCartItemQty(ctx context.Context, cartID, itemID uuid.UUID, qty int32) (store.CartItem, error)
	DeleteCartItem(ctx context.Context, cartID, itemID uuid.UUID) error
	SetCartVoucher(ctx context.Context, cartID uuid.UUID, code *string) error
	GetProductByID(ctx context.Context, id uuid.UUID) (store.Product, error)
	GetVariant(ctx context.Context, id uuid.UUID) (store.Variant, error)
}

// Promotions resolves the discounted price captured onto cart lines.
type Promotions interface {
	PriceFor(ctx context.Context, productID uuid.UUID, basePrice int64) (promo.Applied, error)
}

// Vouchers validates codes before they are attached to a cart.
type Vouchers interface {
	Check(ctx context.Context, code string, orderValue int64) (voucher.Validation, error)
}

// Service manages carts. Line prices are captured at add time with the
// promotion then in effect; they do not drift when promotions change.
type Service struct {
	Q          Querier
	Promos     Promotions
	Vouchers   Vouchers
	Log        zerolog.Logger
	TTL        time.Duration
	TaxRateBps int64
	Shipping   int64
}

// View is the cart payload with a totals preview.
type View struct {
	Cart  store.Cart       `json:"cart"`
	Items []store.CartItem `json:"items"`
	Summary
}

// Summary mirrors the order totals a checkout would produce right now.
type Summary struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

func (s *Service) resolve(ctx context.Context, id Identity) (store.Cart, error) {
	if id.UserID != nil {
		return s.Q.GetOrCreateCartByUser(ctx, *id.UserID, s.TTL)
	}
	if id.AnonID == "" {
		return store.Cart{}, common.NewAppError("BAD_REQUEST", "missing cart identity", http.StatusBadRequest, nil)
	}
	return s.Q.GetOrCreateCartByAnon(ctx, id.AnonID, s.TTL)
}

// Get loads the cart with its items and a totals preview.
func (s *Service) Get(ctx context.Context, id Identity) (View, error) {
	c, err := s.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, c)
}

func (s *Service) view(ctx context.Context, c store.Cart) (View, error) {
	items, err := s.Q.ListCartItems(ctx, c.ID)
	if err != nil {
		return View{}, fmt.Errorf("list cart items: %w", err)
	}
	lines := make([]pricing.Item, 0, len(items))
	var subtotal int64
	for _, it := range items {
		lines = append(lines, pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice})
		subtotal += int64(it.Qty) * it.UnitPrice
	}
	var discount int64
	if c.AppliedVoucherCode != nil {
		check, err := s.Vouchers.Check(ctx, *c.AppliedVoucherCode, subtotal)
		if err != nil {
			// The voucher went stale since it was applied; drop it
			// rather than failing the whole cart read.
			s.Log.Info().Str("code", *c.AppliedVoucherCode).Err(err).Msg("dropping stale cart voucher")
			if err := s.Q.SetCartVoucher(ctx, c.ID, nil); err != nil {
				return View{}, fmt.Errorf("clear stale voucher: %w", err)
			}
			c.AppliedVoucherCode = nil
		} else {
			discount = check.DiscountValue
		}
	}
	summary := pricing.Compute(lines, discount, s.TaxRateBps, s.shippingFor(lines))
	return View{
		Cart:  c,
		Items: items,
		Summary: Summary{
			Subtotal: summary.Subtotal,
			Discount: summary.Discount,
			Tax:      summary.Tax,
			Shipping: summary.Shipping,
			Total:    summary.Total,
		},
	}, nil
}

func (s *Service) shippingFor(lines []pricing.Item) int64 {
	if len(lines) == 0 {
		return 0
	}
	return s.Shipping
}

// AddInput is the add-to-cart payload.
type AddInput struct {
	ProductID uuid.UUID  `json:"productId" validate:"required"`
	VariantID *uuid.UUID `json:"variantId"`
	Qty       int32      `json:"qty" validate:"gt=0"`
}

// Add puts a line in the cart, capturing the current promotion-adjusted
// price onto the line.
func (s *Service) Add(ctx context.Context, id Identity, in AddInput) (View, error) {
	c, err := s.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}
	product, err := s.Q.GetProductByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return View{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return View{}, fmt.Errorf("get product: %w", err)
	}
	var basePrice int64
	if in.VariantID != nil {
		v, err := s.Q.GetVariant(ctx, *in.VariantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return View{}, common.NewAppError("NOT_FOUND", "variant not found", http.StatusNotFound, err)
			}
			return View{}, fmt.Errorf("get variant: %w", err)
		}
		if v.ProductID != product.ID {
			return View{}, common.NewAppError("BAD_REQUEST", "variant does not belong to the product", http.StatusBadRequest, nil)
		}
		if v.Stock < in.Qty {
			return View{}, common.NewAppError("OUT_OF_STOCK", "not enough stock for the requested quantity", http.StatusUnprocessableEntity, nil)
		}
		basePrice = v.Price
	} else {
		return View{}, common.NewAppError("BAD_REQUEST", "variantId is required", http.StatusBadRequest, nil)
	}
	applied, err := s.Promos.PriceFor(ctx, product.ID, basePrice)
	if err != nil {
		return View{}, err
	}
	_, err = s.Q.UpsertCartItem(ctx, store.CartItem{
		CartID:          c.ID,
		ProductID:       product.ID,
		VariantID:       in.VariantID,
		Title:           product.Title,
		Slug:            product.Slug,
		Qty:             in.Qty,
		UnitPrice:       applied.FinalPrice,
		OriginalPrice:   applied.OriginalPrice,
		DiscountPercent: applied.DiscountPercent,
	})
	if err != nil {
		return View{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return s.view(ctx, c)
}

// SetQty replaces a line's quantity; zero removes the line.
func (s *Service) SetQty(ctx context.Context, id Identity, itemID uuid.UUID, qty int32) (View, error) {
	c, err := s.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}
	if qty < 0 {
		return View{}, common.NewAppError("BAD_REQUEST", "qty must not be negative", http.StatusBadRequest, nil)
	}
	if qty == 0 {
		if err := s.Q.DeleteCartItem(ctx, c.ID, itemID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return View{}, fmt.Errorf("delete cart item: %w", err)
		}
		return s.view(ctx, c)
	}
	if _, err := s.Q.SetCartItemQty(ctx, c.ID, itemID, qty); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return View{}, common.NewAppError("NOT_FOUND", "cart item not found", http.StatusNotFound, err)
		}
		return View{}, fmt.Errorf("set cart item qty: %w", err)
	}
	return s.view(ctx, c)
}

// Remove deletes one line from the cart.
func (s *Service) Remove(ctx context.Context, id Identity, itemID uuid.UUID) (View, error) {
	c, err := s.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.Q.DeleteCartItem(ctx, c.ID, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return View{}, common.NewAppError("NOT_FOUND", "cart item not found", http.StatusNotFound, err)
		}
		return View{}, fmt.Errorf("delete cart item: %w", err)
	}
	return s.view(ctx, c)
}

// ApplyVoucher validates a code against the current cart subtotal and
// attaches it.
func (s *Service) ApplyVoucher(ctx context.Context, id Identity, code string) (View, error) {
	c, err := s.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}
	items, err := s.Q.ListCartItems(ctx, c.ID)
	if err != nil {
		return View{}, fmt.Errorf("list cart items: %w", err)
	}
	var subtotal int64
	for _, it := range items {
		subtotal += int64(it.Qty) * it.UnitPrice
	}
	check, err := s.Vouchers.Check(ctx, code, subtotal)
	if err != nil {
		return View{}, err
	}
	if err := s.Q.SetCartVoucher(ctx, c.ID, &check.Voucher.Code); err != nil {
		return View{}, fmt.Errorf("set cart voucher: %w", err)
	}
	c.AppliedVoucherCode = &check.Voucher.Code
	return s.view(ctx, c)
}

// RemoveVoucher detaches the voucher from the cart.
func (s *Service) RemoveVoucher(ctx context.Context, id Identity) (View, error) {
	c, err := s.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.Q.SetCartVoucher(ctx, c.ID, nil); err != nil {
		return View{}, fmt.Errorf("clear cart voucher: %w", err)
	}
	c.AppliedVoucherCode = nil
	return s.view(ctx, c)
}
