package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/metrics"
	"github.com/imrishuroy/woo-reservation-bridge/internal/requestctx"
	"github.com/imrishuroy/woo-reservation-bridge/internal/writeback"
)

// Applier performs a writeback job.
type Applier interface {
	Apply(ctx context.Context, job writeback.Job) error
}

// Processor consumes writeback jobs from SQS.
type Processor struct {
	applier Applier
	metrics metrics.Recorder
	logger  *zap.Logger
}

// NewProcessor returns a worker Processor.
func NewProcessor(applier Applier, recorder metrics.Recorder, logger *zap.Logger) *Processor {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{applier: applier, metrics: recorder, logger: logger}
}

// Handle processes a batch and reports only retryable failures back to SQS.
// Malformed messages and unknown sites are logged and dropped.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	p.logger.Info("received writeback batch", zap.Int("records", len(ev.Records)))

	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	logger := p.logger.With(zap.String("message_id", rec.MessageId))

	var job writeback.Job
	if err := json.Unmarshal([]byte(rec.Body), &job); err != nil {
		logger.Error("dropping malformed writeback message", zap.Error(err), zap.String("body", rec.Body))
		return nil
	}
	if job.ReservationID == "" || job.OrderID == 0 {
		logger.Error("dropping incomplete writeback message", zap.String("body", rec.Body))
		return nil
	}

	logger = logger.With(
		zap.String("correlation_id", job.CorrelationID),
		zap.String("site", job.Site),
		zap.Int64("order_id", job.OrderID),
	)
	ctx = logging.WithLogger(ctx, logger)
	ctx = requestctx.WithCorrelationID(ctx, job.CorrelationID)

	err := p.applier.Apply(ctx, job)
	switch {
	case errors.Is(err, writeback.ErrUnknownSite):
		logger.Error("dropping writeback for unknown site", zap.Error(err))
		p.metrics.Writeback(ctx, job.Site, writeback.StatusFailed)
		return nil
	case err != nil:
		logger.Error("reservation writeback failed; message will be retried", zap.Error(err))
		p.metrics.Writeback(ctx, job.Site, writeback.StatusFailed)
		return err
	}

	logger.Info("reservation id written", zap.String("reservation_id", job.ReservationID))
	p.metrics.Writeback(ctx, job.Site, writeback.StatusWritten)
	return nil
}
