package orders

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/enrichment"
	"github.com/imrishuroy/woo-reservation-bridge/internal/idempotency"
	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/metrics"
	"github.com/imrishuroy/woo-reservation-bridge/internal/requestctx"
	"github.com/imrishuroy/woo-reservation-bridge/internal/reservations"
	"github.com/imrishuroy/woo-reservation-bridge/internal/validation"
	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
	"github.com/imrishuroy/woo-reservation-bridge/internal/writeback"
)

// Options groups the Processor's dependencies. Ledger and Metrics are optional.
type Options struct {
	Validator           *validation.Validator
	Guard               *idempotency.Guard
	Sites               SiteLookup
	Writer              writeback.Writer
	Ledger              LedgerWriter
	Metrics             metrics.Recorder
	RequirePaymentEvent bool
}

// Processor runs a webhook delivery through validation, the idempotency
// check, enrichment, forwarding and writeback.
type Processor struct {
	opts    Options
	nowFunc func() time.Time
}

// NewProcessor returns a Processor.
func NewProcessor(opts Options) *Processor {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.Guard == nil {
		opts.Guard = idempotency.NewGuard(nil)
	}
	return &Processor{opts: opts, nowFunc: time.Now}
}

// run tracks the stages of one delivery.
type run struct {
	p     *Processor
	steps []Step
}

func (r *run) step(name string, fn func() error) error {
	start := r.p.nowFunc()
	err := fn()
	s := Step{Name: name, Status: StepOK, Duration: r.p.nowFunc().Sub(start)}
	if err != nil {
		s.Status = StepFailed
		s.Error = err.Error()
	}
	r.steps = append(r.steps, s)
	return err
}

func (r *run) skip(name string) {
	r.steps = append(r.steps, Step{Name: name, Status: StepSkipped})
}

// Process never fails: every path ends in a Result.
func (p *Processor) Process(ctx context.Context, req Request) Result {
	start := p.nowFunc()
	ctx = requestctx.WithCorrelationID(ctx, req.CorrelationID)
	ctx = logging.With(ctx,
		zap.String("correlation_id", req.CorrelationID),
		zap.String("site", req.Site),
	)
	logger := logging.FromContext(ctx)
	logger.Debug("data received", zap.ByteString("payload", req.Body))

	r := &run{p: p}
	res := p.process(ctx, r, req)
	res.Steps = r.steps

	elapsed := p.nowFunc().Sub(start)
	p.opts.Metrics.Outcome(ctx, req.Site, string(res.Outcome), elapsed)
	if res.Writeback != nil {
		p.opts.Metrics.Writeback(ctx, req.Site, res.Writeback.Status)
	}

	logging.FromContext(ctx).Info("webhook processed",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("status", res.Status),
		zap.Duration("elapsed", elapsed),
		zap.Any("steps", res.Steps),
	)
	return res
}

func (p *Processor) process(ctx context.Context, r *run, req Request) Result {
	logger := logging.FromContext(ctx)

	var (
		order   *woocommerce.Order
		clients SiteClients
	)
	err := r.step("validate", func() error {
		if err := p.opts.Validator.ValidateSite(req.Site); err != nil {
			return err
		}
		c, ok := p.opts.Sites(req.Site)
		if !ok {
			return validation.ErrInvalidPayload
		}
		clients = c

		o, err := validation.ParseOrder(req.Body)
		if err != nil {
			return err
		}
		order = o
		return p.opts.Validator.ValidateOrder(order)
	})
	switch {
	case errors.Is(err, validation.ErrInvalidOrder):
		logger.Info("invalid order information", zap.Error(err))
		return newResult(OutcomeInvalidOrder, nil)
	case err != nil:
		logger.Info("invalid payload", zap.Error(err))
		return newResult(OutcomeInvalidPayload, nil)
	}

	ctx = logging.With(ctx, zap.Int64("order_id", order.ID))
	logger = logging.FromContext(ctx)

	var decision idempotency.Decision
	_ = r.step("idempotency", func() error {
		decision = p.opts.Guard.Check(ctx, req.Site, order)
		return nil
	})
	if decision.AlreadyProcessed {
		logger.Info("order already processed",
			zap.String("reservation_id", decision.ReservationID),
			zap.String("source", decision.Source),
		)
		return newResult(OutcomeAlreadyProcessed, AlreadyProcessedData{
			OrderID:       decision.OrderID,
			OrderStatus:   decision.OrderStatus,
			ReservationID: decision.ReservationID,
		})
	}

	if !idempotency.ShouldForward(order, p.opts.RequirePaymentEvent) {
		r.skip("trigger")
		logger.Info("order neither paid nor cancelled; skipped", zap.String("order_status", order.EffectiveStatus()))
		return newResult(OutcomeSkipped, nil)
	}

	if err := r.step("enrich", func() error {
		return enrichment.Enrich(ctx, clients.Catalog, order)
	}); err != nil {
		logger.Error("unable to schedule: catalog enrichment failed", zap.Error(err))
		return newResult(OutcomeUnableToSchedule, nil)
	}

	var resp *reservations.Response
	if err := r.step("forward", func() error {
		out, err := clients.Forwarder.Forward(ctx, order)
		resp = out
		return err
	}); err != nil {
		logger.Error("unable to schedule: reservation api failed", zap.Error(err))
		return newResult(OutcomeUnableToSchedule, nil)
	}

	if resp.Cancelled() {
		p.markCancelled(ctx, r, req.Site, order.ID)
		logger.Info("reservation cancelled")
		return newResult(OutcomeCancelled, resp.Raw)
	}

	p.record(ctx, r, req.Site, order.ID, resp.Confirmation)

	var wb writeback.Result
	_ = r.step("writeback", func() error {
		wb = p.opts.Writer.Write(ctx, writeback.Job{
			Site:          req.Site,
			OrderID:       order.ID,
			ReservationID: resp.Confirmation,
			CorrelationID: req.CorrelationID,
		})
		if wb.Status == writeback.StatusFailed {
			return errors.New(wb.Error)
		}
		return nil
	})
	logger.Info("reservation scheduled",
		zap.String("reservation_id", resp.Confirmation),
		zap.String("writeback", wb.Status),
	)

	res := newResult(OutcomeScheduled, resp.Raw)
	res.Writeback = &wb
	return res
}

func (p *Processor) record(ctx context.Context, r *run, site string, orderID int64, reservationID string) {
	if p.opts.Ledger == nil || reservationID == "" {
		r.skip("ledger")
		return
	}
	if err := r.step("ledger", func() error {
		return p.opts.Ledger.Record(ctx, site, orderID, reservationID)
	}); err != nil {
		logging.FromContext(ctx).Error("record reservation in ledger failed", zap.Error(err))
	}
}

func (p *Processor) markCancelled(ctx context.Context, r *run, site string, orderID int64) {
	if p.opts.Ledger == nil {
		r.skip("ledger")
		return
	}
	if err := r.step("ledger", func() error {
		_, err := p.opts.Ledger.MarkCancelled(ctx, site, orderID)
		return err
	}); err != nil {
		logging.FromContext(ctx).Error("mark reservation cancelled in ledger failed", zap.Error(err))
	}
}

func newResult(o Outcome, data any) Result {
	m := outcomeMessages[o]
	return Result{Outcome: o, Message: m.message, Status: m.status, Data: data}
}
