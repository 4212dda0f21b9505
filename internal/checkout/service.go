package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/lock"
	"github.com/minhanh-dev/backend-moda/internal/notify"
	"github.com/minhanh-dev/backend-moda/internal/obs"
	"github.com/minhanh-dev/backend-moda/internal/pricing"
	"github.com/minhanh-dev/backend-moda/internal/store"
	"github.com/minhanh-dev/backend-moda/internal/voucher"
)

// Vouchers validates the cart voucher one final time inside checkout.
type Vouchers interface {
	Check(ctx context.Context, code string, orderValue int64) (voucher.Validation, error)
}

// Service turns a cart into an immutable order inside one transaction.
type Service struct {
	Store      *store.Store
	Vouchers   Vouchers
	Notify     *notify.Enqueuer
	Lock       *lock.Locker
	Log        zerolog.Logger
	TaxRateBps int64
	Shipping   int64
	Currency   string
	Now        func() time.Time
}

// Address is the shipping destination captured on the order.
type Address struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Line1    string `json:"line1" validate:"required"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	City     string `json:"city" validate:"required"`
}

// Input is the checkout payload.
type Input struct {
	Address Address `json:"address" validate:"required"`
	Notes   *string `json:"notes"`
}

// Result is the created order with its lines.
type Result struct {
	Order store.Order       `json:"order"`
	Items []store.OrderItem `json:"items"`
}

// Place converts the caller's cart into an order. Stock is reserved, the
// voucher is consumed, and the cart is cleared, all or nothing. A per-user
// lock serializes concurrent submits of the same cart.
func (s *Service) Place(ctx context.Context, userID uuid.UUID, in Input) (Result, error) {
	if s.Lock == nil {
		return s.place(ctx, userID, in)
	}
	var result Result
	err := s.Lock.WithLock(ctx, "checkout:user:"+userID.String(), 30*time.Second, func(ctx context.Context) error {
		var err error
		result, err = s.place(ctx, userID, in)
		return err
	})
	return result, err
}

func (s *Service) place(ctx context.Context, userID uuid.UUID, in Input) (Result, error) {
	cart, err := s.Store.GetOrCreateCartByUser(ctx, userID, time.Hour)
	if err != nil {
		return Result{}, fmt.Errorf("resolve cart: %w", err)
	}
	items, err := s.Store.ListCartItems(ctx, cart.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list cart items: %w", err)
	}
	if len(items) == 0 {
		s.count("empty_cart")
		return Result{}, common.NewAppError("EMPTY_CART", "cart has no items", http.StatusUnprocessableEntity, nil)
	}

	lines := make([]pricing.Item, 0, len(items))
	var subtotal int64
	for _, it := range items {
		lines = append(lines, pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice})
		subtotal += int64(it.Qty) * it.UnitPrice
	}

	var discount int64
	var voucherCode *string
	if cart.AppliedVoucherCode != nil {
		check, err := s.Vouchers.Check(ctx, *cart.AppliedVoucherCode, subtotal)
		if err != nil {
			s.count("voucher_rejected")
			return Result{}, err
		}
		discount = check.DiscountValue
		voucherCode = &check.Voucher.Code
	}

	summary := pricing.Compute(lines, discount, s.TaxRateBps, s.Shipping)
	address, err := json.Marshal(in.Address)
	if err != nil {
		return Result{}, fmt.Errorf("marshal address: %w", err)
	}

	var result Result
	err = s.Store.WithinTx(ctx, func(tx pgx.Tx) error {
		for _, it := range items {
			if it.VariantID == nil {
				continue
			}
			if err := s.Store.DecrementStockTx(ctx, tx, *it.VariantID, it.Qty); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return common.NewAppError("OUT_OF_STOCK",
						fmt.Sprintf("not enough stock for %q", it.Title), http.StatusConflict, err)
				}
				return err
			}
		}
		if voucherCode != nil {
			if err := s.Store.ConsumeVoucherTx(ctx, tx, *voucherCode); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return common.NewAppError("VOUCHER_EXHAUSTED", "voucher usage limit reached", http.StatusConflict, err)
				}
				return err
			}
		}
		order, err := s.Store.CreateOrderTx(ctx, tx, store.Order{
			UserID:             userID,
			Status:             store.OrderPendingConfirm,
			PaymentStatus:      store.PaymentUnpaid,
			Currency:           s.Currency,
			Subtotal:           summary.Subtotal,
			Discount:           summary.Discount,
			Tax:                summary.Tax,
			Shipping:           summary.Shipping,
			Total:              summary.Total,
			AppliedVoucherCode: voucherCode,
			ShippingAddress:    address,
			Notes:              in.Notes,
		})
		if err != nil {
			return err
		}
		result.Order = order
		for _, it := range items {
			saved, err := s.Store.CreateOrderItemTx(ctx, tx, store.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				VariantID: it.VariantID,
				Title:     it.Title,
				Slug:      it.Slug,
				Qty:       it.Qty,
				UnitPrice: it.UnitPrice,
			})
			if err != nil {
				return err
			}
			result.Items = append(result.Items, saved)
		}
		return s.Store.ClearCartTx(ctx, tx, cart.ID)
	})
	if err != nil {
		if common.IsAppError(err) {
			s.count("rejected")
			return Result{}, err
		}
		s.count("error")
		return Result{}, fmt.Errorf("place order: %w", err)
	}
	s.count("placed")
	s.Notify.OrderPlaced(ctx, notify.OrderPlacedPayload{
		OrderID: result.Order.ID,
		UserID:  userID,
		Total:   result.Order.Total,
	})
	s.Log.Info().
		Stringer("orderId", result.Order.ID).
		Int64("total", result.Order.Total).
		Msg("order placed")
	return result, nil
}

func (s *Service) count(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}
