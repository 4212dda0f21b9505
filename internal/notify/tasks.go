package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Task type names routed through asynq.
const (
	TypeOrderPlaced    = "notify:order_placed"
	TypeReturnRefunded = "notify:return_refunded"
)

// OrderPlacedPayload notifies a customer that their order was accepted.
type OrderPlacedPayload struct {
	OrderID uuid.UUID `json:"orderId"`
	UserID  uuid.UUID `json:"userId"`
	Total   int64     `json:"total"`
}

// ReturnRefundedPayload notifies a customer that a refund was settled.
type ReturnRefundedPayload struct {
	ReturnID    uuid.UUID `json:"returnId"`
	OrderID     uuid.UUID `json:"orderId"`
	UserID      uuid.UUID `json:"userId"`
	TotalRefund int64     `json:"totalRefund"`
}

// Enqueuer queues customer notifications for background delivery.
type Enqueuer struct {
	Client *asynq.Client
	Log    zerolog.Logger
}

func (e *Enqueuer) enqueue(ctx context.Context, taskType string, payload any) {
	if e == nil || e.Client == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		e.Log.Error().Err(err).Str("task", taskType).Msg("marshal notification payload")
		return
	}
	task := asynq.NewTask(taskType, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		// Notification delivery is best effort; the commerce flow
		// already committed.
		e.Log.Warn().Err(err).Str("task", taskType).Msg("enqueue notification")
	}
}

// OrderPlaced queues an order confirmation.
func (e *Enqueuer) OrderPlaced(ctx context.Context, p OrderPlacedPayload) {
	e.enqueue(ctx, TypeOrderPlaced, p)
}

// ReturnRefunded queues a refund confirmation.
func (e *Enqueuer) ReturnRefunded(ctx context.Context, p ReturnRefundedPayload) {
	e.enqueue(ctx, TypeReturnRefunded, p)
}

// Worker handles queued notification tasks.
type Worker struct {
	Log zerolog.Logger
}

// Register attaches the worker's handlers to an asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderPlaced, w.handleOrderPlaced)
	mux.HandleFunc(TypeReturnRefunded, w.handleReturnRefunded)
}

func (w *Worker) handleOrderPlaced(_ context.Context, t *asynq.Task) error {
	var p OrderPlacedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", TypeOrderPlaced, err)
	}
	// Delivery channel (email/SMS) is owned by an external service; this
	// worker records the intent and hands off.
	w.Log.Info().
		Stringer("orderId", p.OrderID).
		Stringer("userId", p.UserID).
		Int64("total", p.Total).
		Msg("order confirmation queued for delivery")
	return nil
}

func (w *Worker) handleReturnRefunded(_ context.Context, t *asynq.Task) error {
	var p ReturnRefundedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", TypeReturnRefunded, err)
	}
	w.Log.Info().
		Stringer("returnId", p.ReturnID).
		Stringer("orderId", p.OrderID).
		Int64("totalRefund", p.TotalRefund).
		Msg("refund confirmation queued for delivery")
	return nil
}
