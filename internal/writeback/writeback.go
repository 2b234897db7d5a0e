package writeback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
)

// Writeback statuses reported in the response envelope.
const (
	StatusWritten = "written"
	StatusQueued  = "queued"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Fixed messages reported to the webhook caller. Upstream detail stays in the log.
const (
	msgWriteFailed   = "unable to write reservation id to order"
	msgEnqueueFailed = "unable to enqueue reservation writeback"
)

// ErrUnknownSite is returned when no order store is configured for a job's site.
var ErrUnknownSite = errors.New("writeback: unknown site")

// Job is one confirmation id to write back. It is also the queue message body.
type Job struct {
	Site          string `json:"site"`
	OrderID       int64  `json:"order_id"`
	ReservationID string `json:"reservation_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Result is what the caller sees of a writeback.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Writer persists or schedules a writeback. Failures are reported in the Result.
type Writer interface {
	Write(ctx context.Context, job Job) Result
}

// OrderStore is the storefront side of a writeback.
type OrderStore interface {
	SetReservationID(ctx context.Context, orderID int64, reservationID string) error
}

// StoreLookup returns the order store for a site.
type StoreLookup func(site string) (OrderStore, bool)

// Inline writes the confirmation id during the request.
type Inline struct {
	stores StoreLookup
}

// NewInline returns an Inline writer.
func NewInline(stores StoreLookup) *Inline {
	return &Inline{stores: stores}
}

func (w *Inline) Write(ctx context.Context, job Job) Result {
	if r, ok := skip(ctx, job); ok {
		return r
	}
	if err := w.Apply(ctx, job); err != nil {
		logging.FromContext(ctx).Error("reservation writeback failed",
			zap.Int64("order_id", job.OrderID),
			zap.String("reservation_id", job.ReservationID),
			zap.Error(err),
		)
		return Result{Status: StatusFailed, Error: msgWriteFailed}
	}
	return Result{Status: StatusWritten}
}

// Apply performs the PUT and returns its error. The queue worker calls it directly.
func (w *Inline) Apply(ctx context.Context, job Job) error {
	store, ok := w.stores(job.Site)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownSite, job.Site)
	}
	if err := store.SetReservationID(ctx, job.OrderID, job.ReservationID); err != nil {
		return fmt.Errorf("set reservation id on order %d: %w", job.OrderID, err)
	}
	return nil
}

// Sender publishes a JSON message to the writeback queue.
type Sender interface {
	SendJSON(ctx context.Context, v any, attributes map[string]string) (string, error)
}

// Queue hands the writeback to the worker through SQS.
type Queue struct {
	sender Sender
}

// NewQueue returns a Queue writer.
func NewQueue(sender Sender) *Queue {
	return &Queue{sender: sender}
}

func (w *Queue) Write(ctx context.Context, job Job) Result {
	if r, ok := skip(ctx, job); ok {
		return r
	}
	msgID, err := w.sender.SendJSON(ctx, job, map[string]string{
		"site":           job.Site,
		"correlation_id": job.CorrelationID,
	})
	if err != nil {
		logging.FromContext(ctx).Error("enqueue reservation writeback failed",
			zap.Int64("order_id", job.OrderID),
			zap.Error(err),
		)
		return Result{Status: StatusFailed, Error: msgEnqueueFailed}
	}
	logging.FromContext(ctx).Info("reservation writeback queued",
		zap.Int64("order_id", job.OrderID),
		zap.String("message_id", msgID),
	)
	return Result{Status: StatusQueued}
}

func skip(ctx context.Context, job Job) (Result, bool) {
	if job.ReservationID != "" {
		return Result{}, false
	}
	logging.FromContext(ctx).Warn("reservation api returned no confirmation id; writeback skipped",
		zap.Int64("order_id", job.OrderID))
	return Result{Status: StatusSkipped}, true
}
