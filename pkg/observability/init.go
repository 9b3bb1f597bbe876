package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	tracerName = "wrapgen"
	meterName  = "wrapgen"

	attrCLICommand = "cli.command"
)

// Providers holds the initialized observability providers.
type Providers struct {
	// Tracer is the named tracer for creating spans.
	Tracer trace.Tracer

	// Meter is the named meter for creating instruments.
	Meter metric.Meter

	// Logger is the context-aware structured logger.
	Logger *slog.Logger

	// Shutdown writes the metrics file, flushes exporters and releases
	// resources. Only the first call does work; later calls return its
	// result.
	Shutdown func(ctx context.Context) error
}

// Init initializes tracing, metrics and structured logging for one CLI run.
//
// Traces are exported only when an OTLP endpoint is set. Metrics get a
// reader per configured sink (OTLP, metrics file) and stay no-op when
// there is none.
func Init(cfg Config) (Providers, error) {
	ctx := context.Background()

	res, err := buildResource(cfg)
	if err != nil {
		return Providers{}, err
	}

	var chain shutdownChain

	tp, err := buildTracerProvider(ctx, cfg, res, &chain)
	if err != nil {
		return Providers{}, fmt.Errorf("build tracer provider: %w", err)
	}

	mp, err := buildMeterProvider(ctx, cfg, res, &chain)
	if err != nil {
		return Providers{}, errors.Join(fmt.Errorf("build meter provider: %w", err), chain.run(ctx))
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return Providers{
		Tracer:   tp.Tracer(tracerName),
		Meter:    mp.Meter(meterName),
		Logger:   newLogger(cfg),
		Shutdown: chain.once(cfg.shutdownTimeout()),
	}, nil
}

func buildResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	if cfg.Command != "" {
		attrs = append(attrs, attribute.String(attrCLICommand, cfg.Command))
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

func buildTracerProvider(
	ctx context.Context, cfg Config, res *resource.Resource, chain *shutdownChain,
) (trace.TracerProvider, error) {
	target, ok := cfg.otlp()
	if !ok {
		return nooptrace.NewTracerProvider(), nil
	}

	exporter, err := target.traceExporter(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(selectSampler(cfg)),
	)

	chain.add(tp.Shutdown)

	return tp, nil
}

// buildMeterProvider attaches one reader per metrics sink. The metrics file
// is written before the provider shuts down, while its reader can still
// collect.
func buildMeterProvider(
	ctx context.Context, cfg Config, res *resource.Resource, chain *shutdownChain,
) (metric.MeterProvider, error) {
	var opts []sdkmetric.Option

	if target, ok := cfg.otlp(); ok {
		reader, err := target.metricReader(ctx)
		if err != nil {
			return nil, err
		}

		opts = append(opts, sdkmetric.WithReader(reader))
	}

	var snapshot *textfileSnapshot

	if cfg.MetricsFile != "" {
		var err error

		snapshot, err = newTextfileSnapshot(cfg.MetricsFile)
		if err != nil {
			return nil, err
		}

		opts = append(opts, sdkmetric.WithReader(snapshot.reader))
	}

	if len(opts) == 0 {
		return noopmetric.NewMeterProvider(), nil
	}

	mp := sdkmetric.NewMeterProvider(append(opts, sdkmetric.WithResource(res))...)

	if snapshot != nil {
		chain.add(func(context.Context) error { return snapshot.write() })
	}

	chain.add(mp.Shutdown)

	return mp, nil
}

// shutdownChain runs teardown steps in registration order and joins their
// errors.
type shutdownChain []func(ctx context.Context) error

func (c *shutdownChain) add(fn func(ctx context.Context) error) {
	*c = append(*c, fn)
}

func (c shutdownChain) run(ctx context.Context) error {
	errs := make([]error, 0, len(c))

	for _, fn := range c {
		errs = append(errs, fn(ctx))
	}

	return errors.Join(errs...)
}

// once wraps the chain in a deadline-bounded function that runs it a
// single time.
func (c shutdownChain) once(timeout time.Duration) func(ctx context.Context) error {
	var (
		ran sync.Once
		err error
	)

	return func(ctx context.Context) error {
		ran.Do(func() {
			deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			err = c.run(deadlineCtx)
		})

		return err
	}
}
