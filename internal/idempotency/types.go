package idempotency

import "time"

// Ledger record statuses
const (
	StatusScheduled = "SCHEDULED"
	StatusCancelled = "CANCELLED"
)

// Decision sources
const (
	SourceOrderMeta = "order_meta"
	SourceLedger    = "ledger"
)

// Record is the shape persisted in the reservations DynamoDB table.
type Record struct {
	OrderKey      string    `dynamodbav:"order_key"` // PK: site#order_id
	Site          string    `dynamodbav:"site"`
	OrderID       int64     `dynamodbav:"order_id"`
	ReservationID string    `dynamodbav:"reservation_id,omitempty"`
	Status        string    `dynamodbav:"status"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
	UpdatedAt     time.Time `dynamodbav:"updated_at"`
	ExpiresAt     int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}

// Decision is the outcome of the idempotency check.
type Decision struct {
	AlreadyProcessed bool
	OrderID          int64
	OrderStatus      string
	ReservationID    string
	Source           string
}
