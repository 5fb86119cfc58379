// Package telemetry provides OpenTelemetry metrics for the reasoning loop.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder receives loop measurements. MetricsProvider and NoopMetricsProvider implement it.
type Recorder interface {
	RecordStep(ctx context.Context, kind string)
	RecordDispatch(ctx context.Context, kind string, failure string, duration time.Duration)
	RecordPlanning(ctx context.Context, duration time.Duration, err error)
	RecordRun(ctx context.Context, status string, steps int, duration time.Duration)
	IncrementActiveRuns(ctx context.Context)
	DecrementActiveRuns(ctx context.Context)
}

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	steps      metric.Int64Counter
	dispatches metric.Int64Counter
	runs       metric.Int64Counter
	errors     metric.Int64Counter

	// Histograms
	dispatchDuration metric.Float64Histogram
	planningDuration metric.Float64Histogram
	runDuration      metric.Float64Histogram
	runSteps         metric.Int64Histogram

	// Gauges (using UpDownCounter for OpenTelemetry)
	activeRuns metric.Int64UpDownCounter

	initErr error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/sgr-go").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// MeterProvider overrides the global meter provider.
	MeterProvider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/sgr-go",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config.MeterName = DefaultMetricsConfig().MeterName
	}

	provider := config.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{meter: meter}
	mp.initErr = mp.initInstruments()
	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	mp.steps, err = mp.meter.Int64Counter(
		"sgr.steps",
		metric.WithDescription("Number of reasoning steps taken"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return err
	}

	mp.dispatches, err = mp.meter.Int64Counter(
		"sgr.action.dispatches",
		metric.WithDescription("Number of actions dispatched against the store"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return err
	}

	mp.runs, err = mp.meter.Int64Counter(
		"sgr.runs",
		metric.WithDescription("Number of finished runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	mp.errors, err = mp.meter.Int64Counter(
		"sgr.errors",
		metric.WithDescription("Number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	mp.dispatchDuration, err = mp.meter.Float64Histogram(
		"sgr.action.duration",
		metric.WithDescription("Duration of action dispatch"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.planningDuration, err = mp.meter.Float64Histogram(
		"sgr.planning.duration",
		metric.WithDescription("Duration of decision requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.runDuration, err = mp.meter.Float64Histogram(
		"sgr.run.duration",
		metric.WithDescription("Duration of runs"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.runSteps, err = mp.meter.Int64Histogram(
		"sgr.run.steps",
		metric.WithDescription("Steps consumed per run"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return err
	}

	mp.activeRuns, err = mp.meter.Int64UpDownCounter(
		"sgr.runs.active",
		metric.WithDescription("Number of active runs"),
		metric.WithUnit("{run}"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordStep records one step that chose the given action kind.
func (mp *MetricsProvider) RecordStep(ctx context.Context, kind string) {
	mp.steps.Add(ctx, 1, metric.WithAttributes(attribute.String("action.kind", kind)))
}

// RecordDispatch records a dispatch. An empty failure means the action succeeded.
func (mp *MetricsProvider) RecordDispatch(ctx context.Context, kind string, failure string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("action.kind", kind),
		attribute.Bool("success", failure == ""),
	}
	if failure != "" {
		attrs = append(attrs, attribute.String("failure.kind", failure))
	}

	mp.dispatches.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.dispatchDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
}

// RecordPlanning records a decision request and whether it failed.
func (mp *MetricsProvider) RecordPlanning(ctx context.Context, duration time.Duration, err error) {
	mp.planningDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
	if err != nil {
		mp.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", "planning")))
	}
}

// RecordRun records a finished run.
func (mp *MetricsProvider) RecordRun(ctx context.Context, status string, steps int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("run.status", status))
	mp.runs.Add(ctx, 1, attrs)
	mp.runSteps.Record(ctx, int64(steps), attrs)
	mp.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// IncrementActiveRuns increments the active runs gauge.
func (mp *MetricsProvider) IncrementActiveRuns(ctx context.Context) {
	mp.activeRuns.Add(ctx, 1)
}

// DecrementActiveRuns decrements the active runs gauge.
func (mp *MetricsProvider) DecrementActiveRuns(ctx context.Context) {
	mp.activeRuns.Add(ctx, -1)
}

var _ Recorder = (*MetricsProvider)(nil)

// NoopMetricsProvider is a no-op implementation for when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordStep is a no-op.
func (NoopMetricsProvider) RecordStep(context.Context, string) {}

// RecordDispatch is a no-op.
func (NoopMetricsProvider) RecordDispatch(context.Context, string, string, time.Duration) {}

// RecordPlanning is a no-op.
func (NoopMetricsProvider) RecordPlanning(context.Context, time.Duration, error) {}

// RecordRun is a no-op.
func (NoopMetricsProvider) RecordRun(context.Context, string, int, time.Duration) {}

// IncrementActiveRuns is a no-op.
func (NoopMetricsProvider) IncrementActiveRuns(context.Context) {}

// DecrementActiveRuns is a no-op.
func (NoopMetricsProvider) DecrementActiveRuns(context.Context) {}

var _ Recorder = NoopMetricsProvider{}
