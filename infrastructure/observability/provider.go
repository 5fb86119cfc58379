package observability

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Provider manages the observability infrastructure.
type Provider struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	meterProvider  metric.MeterProvider
	reader         *sdkmetric.ManualReader
	shutdownFuncs  []func(context.Context) error
}

// New creates a new observability provider. Extra span processors are
// registered alongside the configured exporter.
func New(opts []Option, processors ...sdktrace.SpanProcessor) (*Provider, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Provider{
		config:        cfg,
		tracer:        tracenoop.NewTracerProvider().Tracer(cfg.ServiceName),
		meterProvider: metricnoop.NewMeterProvider(),
	}

	if cfg.Tracing.Enabled || len(processors) > 0 {
		if err := p.setupTracing(processors); err != nil {
			return nil, err
		}
	}

	if cfg.Metrics.Enabled {
		p.setupMetrics()
	}

	return p, nil
}

func (p *Provider) resource() *resource.Resource {
	// We don't merge with Default() to avoid schema URL conflicts
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(p.config.ServiceName),
		semconv.ServiceVersion(p.config.ServiceVersion),
		semconv.DeploymentEnvironment(p.config.Environment),
	)
}

// setupTracing initializes the tracing infrastructure.
func (p *Provider) setupTracing(processors []sdktrace.SpanProcessor) error {
	ctx := context.Background()

	var exporter sdktrace.SpanExporter
	if p.config.Tracing.Enabled {
		switch p.config.Tracing.Exporter {
		case ExporterOTLP:
			opts := []otlptracegrpc.Option{
				otlptracegrpc.WithEndpoint(p.config.Tracing.Endpoint),
			}
			if p.config.Tracing.Insecure {
				opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
				opts = append(opts, otlptracegrpc.WithInsecure())
			}
			exp, err := otlptracegrpc.New(ctx, opts...)
			if err != nil {
				return fmt.Errorf("create otlp exporter: %w", err)
			}
			exporter = exp

		case ExporterStdout:
			w := p.config.Tracing.Writer
			if w == nil {
				w = os.Stdout
			}
			exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
			if err != nil {
				return fmt.Errorf("create stdout exporter: %w", err)
			}
			exporter = exp

		case ExporterNoop, "":

		default:
			return fmt.Errorf("%w: %q", ErrUnknownExporter, p.config.Tracing.Exporter)
		}
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(p.resource()),
		sdktrace.WithSampler(sampler(p.config.Tracing.SampleRate)),
	}
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(p.config.Tracing.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(p.config.Tracing.MaxExportBatchSize),
		))
	}
	for _, sp := range processors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)

	if p.config.Tracing.Global {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	p.tracerProvider = tp
	p.tracer = tp.Tracer(p.config.ServiceName)
	p.shutdownFuncs = append(p.shutdownFuncs, tp.Shutdown)

	return nil
}

// sampler maps a sample rate to a sampler.
func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// setupMetrics installs an SDK meter provider read on demand by CollectMetrics.
func (p *Provider) setupMetrics() {
	p.reader = sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(p.reader),
		sdkmetric.WithResource(p.resource()),
	)
	p.meterProvider = mp
	p.shutdownFuncs = append(p.shutdownFuncs, mp.Shutdown)
}

// Tracer returns the tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// MeterProvider returns the meter provider. It is a no-op provider unless
// metrics are enabled.
func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.meterProvider
}

// CollectMetrics reads the current metric state. It returns ErrMetricsDisabled
// when metrics were not enabled.
func (p *Provider) CollectMetrics(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	if p.reader == nil {
		return rm, ErrMetricsDisabled
	}
	err := p.reader.Collect(ctx, &rm)
	return rm, err
}

// Shutdown flushes exporters and releases resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// NewNoopProvider creates a provider with a no-op tracer and meter provider.
func NewNoopProvider() *Provider {
	return &Provider{
		config:        DefaultConfig(),
		tracer:        tracenoop.NewTracerProvider().Tracer("sgr"),
		meterProvider: metricnoop.NewMeterProvider(),
	}
}
