package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestLedger_Record_Get_MarkCancelled(t *testing.T) {
	mock := newSimpleMock()
	l := NewLedger(mock, "reservations", 24*time.Hour)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	l.nowFunc = func() time.Time { return fixed }

	ctx := context.Background()

	rec, err := l.Get(ctx, "es", 727)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no record, got %+v", rec)
	}

	if err := l.Record(ctx, "es", 727, "R123"); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	rec, err = l.Get(ctx, "es", 727)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected record, got nil")
	}
	if rec.Status != StatusScheduled || rec.ReservationID != "R123" || rec.OrderKey != "es#727" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.ExpiresAt != fixed.Add(24*time.Hour).Unix() {
		t.Fatalf("expires_at = %d, want %d", rec.ExpiresAt, fixed.Add(24*time.Hour).Unix())
	}

	// same order id on another site is a different record
	if other, _ := l.Get(ctx, "en", 727); other != nil {
		t.Fatalf("expected site-scoped key, got %+v", other)
	}

	updated, err := l.MarkCancelled(ctx, "es", 727)
	if err != nil {
		t.Fatalf("MarkCancelled error: %v", err)
	}
	if !updated {
		t.Fatalf("expected updated=true")
	}
	item := mock.table["es#727"]
	if st, ok := item["status"].(*types.AttributeValueMemberS); !ok || st.Value != StatusCancelled {
		t.Fatalf("status not updated to CANCELLED, got %+v", item["status"])
	}
}

func TestLedger_MarkCancelled_Missing(t *testing.T) {
	mock := newSimpleMock()
	l := NewLedger(mock, "reservations", 0)

	updated, err := l.MarkCancelled(context.Background(), "es", 1)
	if err != nil {
		t.Fatalf("expected nil error on conditional failure, got %v", err)
	}
	if updated {
		t.Fatalf("expected updated=false for unknown order")
	}
}

func TestLedger_PropagatesErrors(t *testing.T) {
	mock := newSimpleMock()
	mock.err = errors.New("throttled")
	l := NewLedger(mock, "reservations", 0)

	if err := l.Record(context.Background(), "es", 1, "R1"); !errors.Is(err, mock.err) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, err := l.Get(context.Background(), "es", 1); !errors.Is(err, mock.err) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
