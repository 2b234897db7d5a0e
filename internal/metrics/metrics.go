package metrics

import (
	"context"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/imrishuroy/woo-reservation-bridge/internal/aws"
	"github.com/imrishuroy/woo-reservation-bridge/internal/logging"
)

// Recorder receives pipeline outcomes. Implementations never fail the caller.
type Recorder interface {
	Outcome(ctx context.Context, site, outcome string, elapsed time.Duration)
	Writeback(ctx context.Context, site, status string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Outcome(context.Context, string, string, time.Duration) {}
func (Nop) Writeback(context.Context, string, string) {}

// CloudWatch publishes counters and latencies with PutMetricData.
type CloudWatch struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// New returns a CloudWatch recorder, or Nop when namespace is empty.
func New(client aws.CloudWatchAPI, namespace string) Recorder {
	if namespace == "" || client == nil {
		return Nop{}
	}
	return &CloudWatch{client: client, namespace: namespace, nowFunc: time.Now}
}

func (c *CloudWatch) Outcome(ctx context.Context, site, outcome string, elapsed time.Duration) {
	now := c.nowFunc()
	dims := []cwtypes.Dimension{
		{Name: sdkaws.String("Site"), Value: sdkaws.String(site)},
		{Name: sdkaws.String("Outcome"), Value: sdkaws.String(outcome)},
	}
	c.put(ctx, []cwtypes.MetricDatum{
		{
			MetricName: sdkaws.String("WebhookOutcome"),
			Dimensions: dims,
			Unit:       cwtypes.StandardUnitCount,
			Value:      sdkaws.Float64(1),
			Timestamp:  &now,
		},
		{
			MetricName: sdkaws.String("WebhookLatency"),
			Dimensions: dims,
			Unit:       cwtypes.StandardUnitMilliseconds,
			Value:      sdkaws.Float64(float64(elapsed.Milliseconds())),
			Timestamp:  &now,
		},
	})
}

func (c *CloudWatch) Writeback(ctx context.Context, site, status string) {
	now := c.nowFunc()
	c.put(ctx, []cwtypes.MetricDatum{{
		MetricName: sdkaws.String("ReservationWriteback"),
		Dimensions: []cwtypes.Dimension{
			{Name: sdkaws.String("Site"), Value: sdkaws.String(site)},
			{Name: sdkaws.String("Status"), Value: sdkaws.String(status)},
		},
		Unit:      cwtypes.StandardUnitCount,
		Value:     sdkaws.Float64(1),
		Timestamp: &now,
	}})
}

func (c *CloudWatch) put(ctx context.Context, data []cwtypes.MetricDatum) {
	_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(c.namespace),
		MetricData: data,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("put metric data failed", zap.Error(err))
	}
}
