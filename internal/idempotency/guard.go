package idempotency

import (
	"context"

	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
)

// LedgerReader is the read side of the Ledger.
type LedgerReader interface {
	Get(ctx context.Context, site string, orderID int64) (*Record, error)
}

// Guard decides whether an order has already been forwarded.
type Guard struct {
	ledger LedgerReader
}

// NewGuard returns a Guard. ledger may be nil.
func NewGuard(ledger LedgerReader) *Guard {
	return &Guard{ledger: ledger}
}

// LastReservationID returns the value of the last _reservation_id entry and
// whether one exists. An entry with an empty value still counts as found.
func LastReservationID(meta []woocommerce.MetaData) (string, bool) {
	for i := len(meta) - 1; i >= 0; i-- {
		if meta[i].Key == woocommerce.ReservationIDKey {
			return meta[i].Value.String(), true
		}
	}
	return "", false
}

// Check reports an order as already processed when it carries a _reservation_id
// entry and is not cancelled. A cancelled order is always let through.
func (g *Guard) Check(ctx context.Context, site string, order *woocommerce.Order) Decision {
	d := Decision{
		OrderID:     order.ID,
		OrderStatus: order.EffectiveStatus(),
	}
	if d.OrderStatus == woocommerce.StatusCancelled {
		return d
	}

	if id, found := LastReservationID(order.MetaData); found {
		d.AlreadyProcessed = true
		d.ReservationID = id
		d.Source = SourceOrderMeta
		return d
	}

	if g.ledger == nil {
		return d
	}
	rec, err := g.ledger.Get(ctx, site, order.ID)
	if err != nil {
		// the order metadata already said "not processed"; go with it
		logging.FromContext(ctx).Warn("reservation ledger lookup failed", zap.Error(err))
		return d
	}
	if rec != nil && rec.Status == StatusScheduled && rec.ReservationID != "" {
		d.AlreadyProcessed = true
		d.ReservationID = rec.ReservationID
		d.Source = SourceLedger
	}
	return d
}

// ShouldForward applies the payment/cancellation trigger. With requirePayment
// off every order is forwarded.
func ShouldForward(order *woocommerce.Order, requirePayment bool) bool {
	if !requirePayment {
		return true
	}
	return order.EffectiveStatus() == woocommerce.StatusCancelled || order.IsPaid()
}
