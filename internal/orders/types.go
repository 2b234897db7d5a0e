package orders

import (
	"context"
	"net/http"
	"time"

	"github.com/imrishuroy/woo-reservation-bridge/internal/config"
	"github.com/imrishuroy/woo-reservation-bridge/internal/enrichment"
	"github.com/imrishuroy/woo-reservation-bridge/internal/reservations"
	"github.com/imrishuroy/woo-reservation-bridge/internal/woocommerce"
	"github.com/imrishuroy/woo-reservation-bridge/internal/writeback"
)

// Outcome names the terminal state of one webhook delivery.
type Outcome string

const (
	OutcomeInvalidPayload   Outcome = "invalid_payload"
	OutcomeInvalidOrder     Outcome = "invalid_order"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeSkipped          Outcome = "skipped"
	OutcomeScheduled        Outcome = "scheduled"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeUnableToSchedule Outcome = "unable_to_schedule"
)

var outcomeMessages = map[Outcome]struct {
	message string
	status  int
}{
	OutcomeInvalidPayload:   {"Invalid payload.", http.StatusBadRequest},
	OutcomeInvalidOrder:     {"Invalid Order Information.", http.StatusUnprocessableEntity},
	OutcomeAlreadyProcessed: {"Order already processed.", http.StatusCreated},
	OutcomeSkipped:          {"Skipped.", http.StatusAccepted},
	OutcomeScheduled:        {"Scheduled.", http.StatusOK},
	OutcomeCancelled:        {"Cancelled.", http.StatusOK},
	OutcomeUnableToSchedule: {"Unable to schedule.", http.StatusUnprocessableEntity},
}

// Request is one inbound webhook delivery.
type Request struct {
	Site          string
	Body          []byte
	CorrelationID string
}

// Result is the pipeline's answer for a delivery.
type Result struct {
	Outcome   Outcome
	Message   string
	Status    int
	Data      any
	Writeback *writeback.Result
	Steps     []Step
}

// Envelope is the JSON body returned to the storefront.
type Envelope struct {
	Message   string            `json:"message"`
	Status    int               `json:"status"`
	Data      any               `json:"data"`
	Writeback *writeback.Result `json:"writeback,omitempty"`
}

// Envelope renders the response body.
func (r Result) Envelope() Envelope {
	data := r.Data
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Message: r.Message, Status: r.Status, Data: data, Writeback: r.Writeback}
}

// HTTPStatus is 200 in wrapped mode and the embedded status otherwise.
func (r Result) HTTPStatus(mode string) int {
	if mode == config.ResponseStatus {
		return r.Status
	}
	return http.StatusOK
}

// AlreadyProcessedData is the data of an already_processed envelope.
type AlreadyProcessedData struct {
	OrderID       int64  `json:"order_id"`
	OrderStatus   string `json:"order_status"`
	ReservationID string `json:"reservation_id"`
}

// Step statuses
const (
	StepOK      = "ok"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// Step records one pipeline stage.
type Step struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Forwarder sends an enriched order to the reservation API.
type Forwarder interface {
	Forward(ctx context.Context, order *woocommerce.Order) (*reservations.Response, error)
}

// LedgerWriter is the write side of the reservations ledger.
type LedgerWriter interface {
	Record(ctx context.Context, site string, orderID int64, reservationID string) error
	MarkCancelled(ctx context.Context, site string, orderID int64) (bool, error)
}

// SiteClients are the upstream clients for one storefront.
type SiteClients struct {
	Catalog   enrichment.Catalog
	Forwarder Forwarder
}

// SiteLookup resolves the clients of a configured site.
type SiteLookup func(site string) (SiteClients, bool)
