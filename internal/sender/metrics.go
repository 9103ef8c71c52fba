package sender

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"appevents/internal/types"
)

// MetricResult labels a delivery outcome datapoint.
type MetricResult string

const (
	MetricSuccess MetricResult = "success"
	MetricFailed  MetricResult = "failed"
	MetricDropped MetricResult = "dropped"
)

// Metric and dimension names.
const (
	metricNamespace    = "AppEvents"
	metricDeliveryName = "DeliveryAttempt"
	metricLatencyName  = "DeliveryLatency"
	metricDimResult    = "Result"
)

// DeliveryMetrics records delivery outcomes for operators. It is internal
// bookkeeping only: delivery outcome is never surfaced to SendEvents callers.
type DeliveryMetrics interface {
	RecordDelivery(ctx context.Context, result MetricResult)
	RecordLatency(ctx context.Context, d time.Duration)
}

// NopMetrics discards all datapoints. It is the default sink.
type NopMetrics struct{}

func (NopMetrics) RecordDelivery(context.Context, MetricResult) {}
func (NopMetrics) RecordLatency(context.Context, time.Duration) {}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics emits delivery metrics to AWS CloudWatch.
//
// Metrics emitted:
//   - DeliveryAttempt: Dims {Result} -- on every delivery outcome
//   - DeliveryLatency: no dims -- wall time of a successful dispatch
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

var (
	_ DeliveryMetrics = NopMetrics{}
	_ DeliveryMetrics = (*CloudWatchMetrics)(nil)
)

// NewCloudWatchMetrics creates a sink publishing to the AppEvents namespace.
func NewCloudWatchMetrics(client CloudWatchClient, logger types.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &CloudWatchMetrics{
		client:    client,
		namespace: metricNamespace,
		logger:    logger,
	}
}

// RecordDelivery emits a DeliveryAttempt datapoint with the Result dimension.
func (m *CloudWatchMetrics) RecordDelivery(ctx context.Context, result MetricResult) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(metricDeliveryName),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{
						Name:  aws.String(metricDimResult),
						Value: aws.String(string(result)),
					},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record delivery metric",
			"error", err.Error(),
			"result", string(result),
		)
	}
}

// RecordLatency emits the dispatch wall time in milliseconds.
func (m *CloudWatchMetrics) RecordLatency(ctx context.Context, d time.Duration) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(metricLatencyName),
				Value:      aws.Float64(float64(d.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record latency metric",
			"error", err.Error(),
			"latency_ms", d.Milliseconds(),
		)
	}
}
