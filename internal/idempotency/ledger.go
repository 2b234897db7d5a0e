package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/woo-reservation-bridge/internal/aws"
)

// Ledger mirrors scheduled reservations in DynamoDB so that a failed or
// queued writeback does not let a redelivered order through.
type Ledger struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewLedger returns a Ledger. A zero ttlWindow disables expiry.
func NewLedger(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Ledger {
	return &Ledger{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// OrderKey builds the partition key for an order on a site.
func OrderKey(site string, orderID int64) string {
	return site + "#" + strconv.FormatInt(orderID, 10)
}

// Get returns the ledger record for an order, or (nil, nil) when absent.
func (l *Ledger) Get(ctx context.Context, site string, orderID int64) (*Record, error) {
	out, err := l.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &l.tableName,
		Key: map[string]types.AttributeValue{
			"order_key": &types.AttributeValueMemberS{Value: OrderKey(site, orderID)},
		},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// Record stores a scheduled reservation, replacing any earlier record for the order.
func (l *Ledger) Record(ctx context.Context, site string, orderID int64, reservationID string) error {
	now := l.nowFunc().UTC()
	rec := Record{
		OrderKey:      OrderKey(site, orderID),
		Site:          site,
		OrderID:       orderID,
		ReservationID: reservationID,
		Status:        StatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if l.ttlWindow > 0 {
		rec.ExpiresAt = now.Add(l.ttlWindow).Unix()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := l.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &l.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// MarkCancelled flips an existing record to CANCELLED.
// Returns (false, nil) when the order was never recorded.
func (l *Ledger) MarkCancelled(ctx context.Context, site string, orderID int64) (bool, error) {
	now := l.nowFunc().UTC()
	input := &dyn.UpdateItemInput{
		TableName: &l.tableName,
		Key: map[string]types.AttributeValue{
			"order_key": &types.AttributeValueMemberS{Value: OrderKey(site, orderID)},
		},
		UpdateExpression: awsString("SET #s = :cancelled, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled": &types.AttributeValueMemberS{Value: StatusCancelled},
			":ua":        &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("attribute_exists(order_key)"),
	}
	if _, err := l.client.UpdateItem(ctx, input); err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("update item (mark cancelled): %w", err)
	}
	return true, nil
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
