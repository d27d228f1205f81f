package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProviderMetrics records outbound calls to the geocoding and forecast
// providers. It satisfies weather.RequestRecorder.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// NewProviderMetrics creates the provider instruments on meter.
func NewProviderMetrics(meter metric.Meter) (*ProviderMetrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// RecordRequest records one provider call.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
		attribute.Bool("error", err != nil),
	)

	// The caller's context may already be cancelled.
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	m.requestTotal.Add(ctx, 1, attrs)
}

// AdvisoryMetrics counts advisory fetches by outcome.
type AdvisoryMetrics struct {
	fetchTotal metric.Int64Counter
}

// NewAdvisoryMetrics creates the advisory instruments on meter.
func NewAdvisoryMetrics(meter metric.Meter) (*AdvisoryMetrics, error) {
	fetchTotal, err := meter.Int64Counter(
		"advisory.fetch.total",
		metric.WithDescription("Total number of advisory fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}
	return &AdvisoryMetrics{fetchTotal: fetchTotal}, nil
}

// RecordFetch records one advisory fetch.
func (m *AdvisoryMetrics) RecordFetch(ok bool) {
	m.fetchTotal.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("success", ok)))
}
