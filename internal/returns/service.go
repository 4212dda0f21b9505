package returns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/notify"
	"github.com/minhanh-dev/backend-moda/internal/obs"
	"github.com/minhanh-dev/backend-moda/internal/pricing"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// Service manages the return request lifecycle.
type Service struct {
	Store      *store.Store
	Notify     *notify.Enqueuer
	Log        zerolog.Logger
	WindowDays int
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// LineInput is one requested return line.
type LineInput struct {
	OrderItemID uuid.UUID `json:"orderItemId" validate:"required"`
	Qty         int32     `json:"qty" validate:"gt=0"`
	Reason      *string   `json:"reason"`
}

// Input is the create/update payload for a return request.
type Input struct {
	OrderID uuid.UUID   `json:"orderId" validate:"required"`
	Reason  *string     `json:"reason"`
	Lines   []LineInput `json:"items" validate:"required,min=1,dive"`
}

// Detail bundles a return request with its lines.
type Detail struct {
	store.ReturnRequest
	Items []store.ReturnItem `json:"items"`
}

// buildLines validates requested lines against the original order lines and
// freezes title/price/variant data onto the return lines.
func buildLines(orderItems []store.OrderItem, requested []LineInput) ([]store.ReturnItem, int64, error) {
	byID := make(map[uuid.UUID]store.OrderItem, len(orderItems))
	for _, it := range orderItems {
		byID[it.ID] = it
	}
	seen := make(map[uuid.UUID]bool, len(requested))
	lines := make([]store.ReturnItem, 0, len(requested))
	var refundItems []pricing.Item
	for _, req := range requested {
		orig, ok := byID[req.OrderItemID]
		if !ok {
			return nil, 0, common.NewAppError("BAD_REQUEST", "return line does not match an order line", http.StatusBadRequest, nil)
		}
		if seen[req.OrderItemID] {
			return nil, 0, common.NewAppError("BAD_REQUEST", "duplicate return line for the same order line", http.StatusBadRequest, nil)
		}
		seen[req.OrderItemID] = true
		if req.Qty < 1 || req.Qty > MaxReturnable(orig) {
			return nil, 0, common.NewAppError("BAD_REQUEST",
				fmt.Sprintf("return quantity for %q must be between 1 and %d", orig.Title, MaxReturnable(orig)),
				http.StatusBadRequest, nil)
		}
		lines = append(lines, store.ReturnItem{
			OrderItemID: orig.ID,
			ProductID:   orig.ProductID,
			VariantID:   orig.VariantID,
			Title:       orig.Title,
			Qty:         req.Qty,
			UnitPrice:   orig.UnitPrice,
			Reason:      req.Reason,
		})
		refundItems = append(refundItems, pricing.Item{Qty: req.Qty, UnitPrice: orig.UnitPrice})
	}
	return lines, pricing.RefundTotal(refundItems), nil
}

// Create opens a return request for an eligible order.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (Detail, error) {
	order, err := s.Store.GetOrder(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Detail{}, common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err)
		}
		return Detail{}, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != userID {
		return Detail{}, common.NewAppError("FORBIDDEN", "order belongs to another customer", http.StatusForbidden, nil)
	}
	if !Returnable(order, s.now(), s.WindowDays) {
		return Detail{}, common.NewAppError("NOT_RETURNABLE", "order is not eligible for return", http.StatusUnprocessableEntity, nil)
	}
	orderItems, err := s.Store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("list order items: %w", err)
	}
	lines, refund, err := buildLines(orderItems, in.Lines)
	if err != nil {
		return Detail{}, err
	}
	s.warnCumulative(ctx, order.ID, orderItems, lines)

	var detail Detail
	err = s.Store.WithinTx(ctx, func(tx pgx.Tx) error {
		created, err := s.Store.CreateReturnTx(ctx, tx, store.ReturnRequest{
			OrderID:     order.ID,
			UserID:      userID,
			Status:      store.ReturnPending,
			Reason:      in.Reason,
			TotalRefund: refund,
		})
		if err != nil {
			return err
		}
		detail.ReturnRequest = created
		for _, line := range lines {
			line.ReturnID = created.ID
			saved, err := s.Store.CreateReturnItemTx(ctx, tx, line)
			if err != nil {
				return err
			}
			detail.Items = append(detail.Items, saved)
		}
		return nil
	})
	if err != nil {
		return Detail{}, fmt.Errorf("create return: %w", err)
	}
	s.countTransition(store.ReturnPending)
	return detail, nil
}

// Update replaces the lines and reason of a pending return and recomputes
// the refund.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in Input) (Detail, error) {
	var detail Detail
	err := s.Store.WithinTx(ctx, func(tx pgx.Tx) error {
		req, err := s.Store.GetReturnTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return common.NewAppError("NOT_FOUND", "return request not found", http.StatusNotFound, err)
			}
			return err
		}
		if req.UserID != userID {
			return common.NewAppError("FORBIDDEN", "return belongs to another customer", http.StatusForbidden, nil)
		}
		if !Editable(req.Status) {
			return common.NewAppError("NOT_EDITABLE", "only pending returns can be edited", http.StatusUnprocessableEntity, nil)
		}
		orderItems, err := s.Store.ListOrderItems(ctx, req.OrderID)
		if err != nil {
			return err
		}
		lines, refund, err := buildLines(orderItems, in.Lines)
		if err != nil {
			return err
		}
		if err := s.Store.DeleteReturnItemsTx(ctx, tx, req.ID); err != nil {
			return err
		}
		for _, line := range lines {
			line.ReturnID = req.ID
			saved, err := s.Store.CreateReturnItemTx(ctx, tx, line)
			if err != nil {
				return err
			}
			detail.Items = append(detail.Items, saved)
		}
		if err := s.Store.SetReturnRefundTx(ctx, tx, req.ID, refund, in.Reason); err != nil {
			return err
		}
		req.TotalRefund = refund
		req.Reason = in.Reason
		detail.ReturnRequest = req
		return nil
	})
	if err != nil {
		if common.IsAppError(err) {
			return Detail{}, err
		}
		return Detail{}, fmt.Errorf("update return: %w", err)
	}
	return detail, nil
}

// Cancel moves a pending return to DA_HUY. Customers may cancel their own
// request; admins pass uuid.Nil to skip the ownership check.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (store.ReturnRequest, error) {
	return s.transition(ctx, userID, id, store.ReturnCancelled)
}

// Refund settles a pending return: it moves to DA_HOAN_TIEN, the order is
// marked refunded, and returned quantities go back into stock.
func (s *Service) Refund(ctx context.Context, id uuid.UUID) (store.ReturnRequest, error) {
	var result store.ReturnRequest
	err := s.Store.WithinTx(ctx, func(tx pgx.Tx) error {
		req, err := s.Store.GetReturnTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return common.NewAppError("NOT_FOUND", "return request not found", http.StatusNotFound, err)
			}
			return err
		}
		if !CanTransition(req.Status, store.ReturnRefunded) {
			return common.NewAppError("INVALID_TRANSITION",
				fmt.Sprintf("cannot refund a return in status %s", req.Status), http.StatusUnprocessableEntity, nil)
		}
		updated, err := s.Store.SetReturnStatusTx(ctx, tx, req.ID, store.ReturnRefunded)
		if err != nil {
			return err
		}
		if err := s.Store.SetPaymentStatusTx(ctx, tx, req.OrderID, store.PaymentRefunded); err != nil {
			return err
		}
		if err := s.Store.RestockReturnItemsTx(ctx, tx, req.ID); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		if common.IsAppError(err) {
			return store.ReturnRequest{}, err
		}
		return store.ReturnRequest{}, fmt.Errorf("refund return: %w", err)
	}
	s.countTransition(store.ReturnRefunded)
	if obs.RefundAmount != nil {
		obs.RefundAmount.Observe(float64(result.TotalRefund))
	}
	s.Notify.ReturnRefunded(ctx, notify.ReturnRefundedPayload{
		ReturnID:    result.ID,
		OrderID:     result.OrderID,
		UserID:      result.UserID,
		TotalRefund: result.TotalRefund,
	})
	return result, nil
}

func (s *Service) transition(ctx context.Context, userID, id uuid.UUID, to string) (store.ReturnRequest, error) {
	var result store.ReturnRequest
	err := s.Store.WithinTx(ctx, func(tx pgx.Tx) error {
		req, err := s.Store.GetReturnTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return common.NewAppError("NOT_FOUND", "return request not found", http.StatusNotFound, err)
			}
			return err
		}
		if userID != uuid.Nil && req.UserID != userID {
			return common.NewAppError("FORBIDDEN", "return belongs to another customer", http.StatusForbidden, nil)
		}
		if !CanTransition(req.Status, to) {
			return common.NewAppError("INVALID_TRANSITION",
				fmt.Sprintf("cannot move a return from %s to %s", req.Status, to), http.StatusUnprocessableEntity, nil)
		}
		result, err = s.Store.SetReturnStatusTx(ctx, tx, req.ID, to)
		return err
	})
	if err != nil {
		if common.IsAppError(err) {
			return store.ReturnRequest{}, err
		}
		return store.ReturnRequest{}, fmt.Errorf("transition return: %w", err)
	}
	s.countTransition(to)
	return result, nil
}

// Get loads a return request with its lines. A non-nil userID restricts
// access to the owner.
func (s *Service) Get(ctx context.Context, userID *uuid.UUID, id uuid.UUID) (Detail, error) {
	req, err := s.Store.GetReturn(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Detail{}, common.NewAppError("NOT_FOUND", "return request not found", http.StatusNotFound, err)
		}
		return Detail{}, fmt.Errorf("get return: %w", err)
	}
	if userID != nil && req.UserID != *userID {
		return Detail{}, common.NewAppError("FORBIDDEN", "return belongs to another customer", http.StatusForbidden, nil)
	}
	items, err := s.Store.ListReturnItems(ctx, req.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("list return items: %w", err)
	}
	return Detail{ReturnRequest: req, Items: items}, nil
}

// List returns a page of return requests matching the filter.
func (s *Service) List(ctx context.Context, f store.ReturnFilter) ([]store.ReturnRequest, int64, error) {
	total, err := s.Store.CountReturns(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count returns: %w", err)
	}
	rows, err := s.Store.ListReturns(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list returns: %w", err)
	}
	return rows, total, nil
}

// warnCumulative logs when the new lines push the cumulative requested
// quantity past the original order line. The request itself is still
// accepted: bounds apply per request, not across requests.
func (s *Service) warnCumulative(ctx context.Context, orderID uuid.UUID, orderItems []store.OrderItem, lines []store.ReturnItem) {
	already, err := s.Store.SumReturnedQtyByOrderItem(ctx, orderID)
	if err != nil {
		s.Log.Warn().Err(err).Msg("sum returned quantities")
		return
	}
	origQty := make(map[uuid.UUID]int32, len(orderItems))
	for _, it := range orderItems {
		origQty[it.ID] = it.Qty
	}
	for _, line := range lines {
		if prev := already[line.OrderItemID]; prev+line.Qty > origQty[line.OrderItemID] {
			s.Log.Warn().
				Stringer("orderId", orderID).
				Stringer("orderItemId", line.OrderItemID).
				Int32("requested", line.Qty).
				Int32("alreadyRequested", prev).
				Msg("cumulative return quantity exceeds the original line")
		}
	}
}

func (s *Service) countTransition(status string) {
	if obs.ReturnRequestTotal != nil {
		obs.ReturnRequestTotal.WithLabelValues(status).Inc()
	}
}
