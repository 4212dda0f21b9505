package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// statusFlow is the order fulfilment state machine. HOAN_THANH and DA_HUY
// are terminal.
var statusFlow = map[string][]string{
	store.OrderPendingConfirm: {store.OrderShipping, store.OrderCancelled},
	store.OrderShipping:       {store.OrderDelivered, store.OrderCancelled},
	store.OrderDelivered:      {store.OrderCompleted},
	store.OrderCompleted:      {},
	store.OrderCancelled:      {},
}

// paymentFlow is the payment state machine. Refunds happen through the
// returns flow, never directly from UNPAID.
var paymentFlow = map[string][]string{
	store.PaymentUnpaid:   {store.PaymentPaid},
	store.PaymentPaid:     {store.PaymentRefunded},
	store.PaymentRefunded: {},
}

// CanTransition reports whether an order may move between fulfilment
// statuses.
func CanTransition(from, to string) bool {
	for _, next := range statusFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether a payment status change is allowed.
func CanTransitionPayment(from, to string) bool {
	for _, next := range paymentFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Querier is the subset of store access the order service needs.
type Querier interface {
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error)
	CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]store.Order, error)
	CountOrders(ctx context.Context, f store.OrderFilter) (int64, error)
	ListOrders(ctx context.Context, f store.OrderFilter) ([]store.Order, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, status string) (store.Order, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (store.Order, error)
}

// Service reads orders and drives their status transitions.
type Service struct {
	Q   Querier
	Log zerolog.Logger
}

// Detail bundles an order with its frozen lines.
type Detail struct {
	store.Order
	Items []store.OrderItem `json:"items"`
}

// Get loads one order with its lines. A non-nil userID restricts access to
// the owner.
func (s *Service) Get(ctx context.Context, userID *uuid.UUID, id uuid.UUID) (Detail, error) {
	o, err := s.Q.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Detail{}, common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err)
		}
		return Detail{}, fmt.Errorf("get order: %w", err)
	}
	if userID != nil && o.UserID != *userID {
		return Detail{}, common.NewAppError("FORBIDDEN", "order belongs to another customer", http.StatusForbidden, nil)
	}
	items, err := s.Q.ListOrderItems(ctx, o.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("list order items: %w", err)
	}
	return Detail{Order: o, Items: items}, nil
}

// ListByUser returns a customer's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]store.Order, int64, error) {
	total, err := s.Q.CountOrdersByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := s.Q.ListOrdersByUser(ctx, userID, int32(limit), int32((page-1)*limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return rows, total, nil
}

// List returns orders matching the admin filter.
func (s *Service) List(ctx context.Context, f store.OrderFilter) ([]store.Order, int64, error) {
	total, err := s.Q.CountOrders(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := s.Q.ListOrders(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return rows, total, nil
}

// Cancel lets a customer cancel their own order while it is still pending
// confirmation.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (store.Order, error) {
	o, err := s.Q.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Order{}, common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err)
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}
	if o.UserID != userID {
		return store.Order{}, common.NewAppError("FORBIDDEN", "order belongs to another customer", http.StatusForbidden, nil)
	}
	if o.Status != store.OrderPendingConfirm {
		return store.Order{}, common.NewAppError("INVALID_TRANSITION",
			"only orders awaiting confirmation can be cancelled", http.StatusUnprocessableEntity, nil)
	}
	return s.setStatus(ctx, id, o.Status, store.OrderCancelled)
}

// SetStatus moves an order through the fulfilment state machine.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, to string) (store.Order, error) {
	o, err := s.Q.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Order{}, common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err)
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}
	return s.setStatus(ctx, id, o.Status, to)
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, from, to string) (store.Order, error) {
	if !CanTransition(from, to) {
		return store.Order{}, common.NewAppError("INVALID_TRANSITION",
			fmt.Sprintf("cannot move an order from %s to %s", from, to), http.StatusUnprocessableEntity, nil)
	}
	updated, err := s.Q.SetOrderStatus(ctx, id, to)
	if err != nil {
		return store.Order{}, fmt.Errorf("set order status: %w", err)
	}
	s.Log.Info().Stringer("orderId", id).Str("from", from).Str("to", to).Msg("order status changed")
	return updated, nil
}

// SetPaymentStatus moves an order's payment status.
func (s *Service) SetPaymentStatus(ctx context.Context, id uuid.UUID, to string) (store.Order, error) {
	o, err := s.Q.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Order{}, common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err)
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}
	if !CanTransitionPayment(o.PaymentStatus, to) {
		return store.Order{}, common.NewAppError("INVALID_TRANSITION",
			fmt.Sprintf("cannot move payment from %s to %s", o.PaymentStatus, to), http.StatusUnprocessableEntity, nil)
	}
	updated, err := s.Q.SetPaymentStatus(ctx, id, to)
	if err != nil {
		return store.Order{}, fmt.Errorf("set payment status: %w", err)
	}
	return updated, nil
}
