package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRendersTotal   = "wrapgen.renders.total"
	metricRenderDuration = "wrapgen.render.duration.seconds"
	metricErrorsTotal    = "wrapgen.errors.total"
	metricFunctionsTotal = "wrapgen.functions.total"

	attrStage  = "stage"
	attrStatus = "status"

	// StatusOK marks a successful render.
	StatusOK = "ok"
	// StatusError marks a failed render.
	StatusError = "error"
)

// durationBucketBoundaries covers 1ms to 10s; a render of even a large
// header stays well inside it.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// RenderMetrics holds the OTel instruments recorded for each render.
type RenderMetrics struct {
	rendersTotal   metric.Int64Counter
	renderDuration metric.Float64Histogram
	errorsTotal    metric.Int64Counter
	functionsTotal metric.Int64Counter
}

// NewRenderMetrics creates render metric instruments from the given meter.
func NewRenderMetrics(mt metric.Meter) (*RenderMetrics, error) {
	renders, err := mt.Int64Counter(metricRendersTotal,
		metric.WithDescription("Total number of template renders"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRendersTotal, err)
	}

	duration, err := mt.Float64Histogram(metricRenderDuration,
		metric.WithDescription("Parse, build and render duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRenderDuration, err)
	}

	errs, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed renders by stage"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	funcs, err := mt.Int64Counter(metricFunctionsTotal,
		metric.WithDescription("Total number of function signatures extracted"),
		metric.WithUnit("{function}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFunctionsTotal, err)
	}

	return &RenderMetrics{
		rendersTotal:   renders,
		renderDuration: duration,
		errorsTotal:    errs,
		functionsTotal: funcs,
	}, nil
}

// RecordRender records one finished render. stage names where a failure
// happened ("parse", "render", "write") and is ignored on success.
// Safe to call on a nil receiver (no-op).
func (rm *RenderMetrics) RecordRender(ctx context.Context, status, stage string, functions int, duration time.Duration) {
	if rm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	rm.rendersTotal.Add(ctx, 1, attrs)
	rm.renderDuration.Record(ctx, duration.Seconds(), attrs)
	rm.functionsTotal.Add(ctx, int64(functions))

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStage, stage)))
	}
}
