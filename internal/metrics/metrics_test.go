package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestNew_NopWithoutNamespace(t *testing.T) {
	_, ok := New(&mockCloudWatch{}, "").(Nop)
	assert.True(t, ok)
}

func TestCloudWatch_Outcome(t *testing.T) {
	mock := &mockCloudWatch{}
	r := New(mock, "WooBridge")

	r.Outcome(context.Background(), "es", "scheduled", 250*time.Millisecond)

	require.Len(t, mock.inputs, 1)
	in := mock.inputs[0]
	assert.Equal(t, "WooBridge", sdkaws.ToString(in.Namespace))
	require.Len(t, in.MetricData, 2)
	assert.Equal(t, "WebhookOutcome", sdkaws.ToString(in.MetricData[0].MetricName))
	assert.Equal(t, "scheduled", sdkaws.ToString(in.MetricData[0].Dimensions[1].Value))
	assert.Equal(t, float64(250), sdkaws.ToFloat64(in.MetricData[1].Value))
}

func TestCloudWatch_ErrorsAreSwallowed(t *testing.T) {
	mock := &mockCloudWatch{err: errors.New("denied")}
	r := New(mock, "WooBridge")

	r.Writeback(context.Background(), "es", "failed")
	assert.Len(t, mock.inputs, 1)
}
