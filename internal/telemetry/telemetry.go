package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	ErrInvalidConfig         = errors.New("invalid telemetry configuration")
	ErrMissingServiceName    = errors.New("service name is required")
	ErrMissingServiceVersion = errors.New("service version is required")
	ErrInvalidSampleRate     = errors.New("sample rate must be between 0.0 and 1.0")
	ErrMissingEndpoint       = errors.New("otlp endpoint is required when exporting")
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	// Insecure sends OTLP over plaintext gRPC, as the local collector expects.
	Insecure      bool
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

func (c *Config) Validate() error {
	switch {
	case c.ServiceName == "":
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingServiceName)
	case c.ServiceVersion == "":
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingServiceVersion)
	case c.SampleRate < 0.0 || c.SampleRate > 1.0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidSampleRate)
	}
	return nil
}

// Telemetry owns the process-wide tracer and meter providers.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

type Option func(*exporters)

type exporters struct {
	trace  sdktrace.SpanExporter
	metric sdkmetric.Exporter
}

// WithTraceExporter replaces the OTLP span exporter, mainly for tests.
func WithTraceExporter(exporter sdktrace.SpanExporter) Option {
	return func(e *exporters) {
		e.trace = exporter
	}
}

// WithMetricExporter replaces the OTLP metric exporter, mainly for tests.
func WithMetricExporter(exporter sdkmetric.Exporter) Option {
	return func(e *exporters) {
		e.metric = exporter
	}
}

// Initialize installs global providers for whichever signals cfg enables.
// Disabled signals keep the global no-op providers.
func Initialize(ctx context.Context, cfg Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exp := &exporters{}
	for _, opt := range opts {
		opt(exp)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tel := &Telemetry{}

	if cfg.EnableTracing {
		if exp.trace == nil {
			if exp.trace, err = newTraceExporter(ctx, cfg); err != nil {
				return nil, err
			}
		}
		tel.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(createSampler(cfg.SampleRate)),
			sdktrace.WithBatcher(exp.trace),
		)
		otel.SetTracerProvider(tel.tracerProvider)
	}

	if cfg.EnableMetrics {
		if exp.metric == nil {
			if exp.metric, err = newMetricExporter(ctx, cfg); err != nil {
				return nil, errors.Join(err, tel.Shutdown(ctx))
			}
		}
		tel.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp.metric)),
		)
		otel.SetMeterProvider(tel.meterProvider)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tel, nil
}

func newTraceExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.OTLPEndpoint == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingEndpoint)
	}
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	return exporter, nil
}

func newMetricExporter(ctx context.Context, cfg Config) (sdkmetric.Exporter, error) {
	if cfg.OTLPEndpoint == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingEndpoint)
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}
	return exporter, nil
}

func createSampler(sampleRate float64) sdktrace.Sampler {
	switch {
	case sampleRate <= 0.0:
		return sdktrace.NeverSample()
	case sampleRate >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))
	}
}

// Meter returns a meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Shutdown flushes and stops the providers. Exporters are shut down by
// their providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}

	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (t *Telemetry) TracerProvider() *sdktrace.TracerProvider {
	return t.tracerProvider
}

func (t *Telemetry) MeterProvider() *sdkmetric.MeterProvider {
	return t.meterProvider
}
