// Package generator ties header extraction and template rendering together
// and runs configured generation jobs.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
	"github.com/Sumatoshi-tech/wrapgen/pkg/observability"
	"github.com/Sumatoshi-tech/wrapgen/pkg/render"
)

// Span names.
const (
	spanParse  = "wrapgen.parse"
	spanBuild  = "wrapgen.build"
	spanRender = "wrapgen.render"
)

// Failure stages reported in metrics.
const (
	stageParse  = "parse"
	stageRender = "render"
	stageRead   = "read"
	stageWrite  = "write"
)

// Names used when the caller supplies none.
const (
	defaultHeaderName   = "<input>"
	defaultTemplateName = "template"
)

// Input is one render request.
type Input struct {
	// HeaderName labels parse errors; typically the header path.
	HeaderName string
	// TemplateName labels template errors; typically the template path.
	TemplateName string
	Header       []byte
	Template     string
}

// Generator renders templates against C headers. The zero value is not
// usable; construct with New.
type Generator struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.RenderMetrics
	filters render.FilterMap
	workers int
	// batchCache bounds the per-RunJobs signature cache; 0 disables it.
	batchCache int
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTracer sets the tracer used for per-stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(g *Generator) {
		if tracer != nil {
			g.tracer = tracer
		}
	}
}

// WithMetrics sets the render metrics sink. Nil disables metrics.
func WithMetrics(metrics *observability.RenderMetrics) Option {
	return func(g *Generator) {
		g.metrics = metrics
	}
}

// WithFilters replaces the filter table handed to templates.
func WithFilters(filters render.FilterMap) Option {
	return func(g *Generator) {
		if filters != nil {
			g.filters = filters
		}
	}
}

// WithWorkers bounds how many jobs RunJobs renders at once. Values below 1
// mean one per CPU.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		g.workers = n
	}
}

// WithBatchCache bounds how many distinct headers one RunJobs call keeps
// parsed. Zero or less makes every job parse its header again. The cache
// lives only for the duration of the batch; single renders never cache.
func WithBatchCache(entries int) Option {
	return func(g *Generator) {
		g.batchCache = max(entries, 0)
	}
}

// New creates a Generator with a silent logger, a no-op tracer and the
// built-in filters.
func New(opts ...Option) *Generator {
	g := &Generator{
		logger:     slog.New(slog.DiscardHandler),
		tracer:     nooptrace.NewTracerProvider().Tracer("wrapgen"),
		filters:    render.Filters(),
		batchCache: defaultCacheEntries,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Render extracts the function signatures from sourceText and renders
// templateText against them with the built-in filters.
func Render(ctx context.Context, sourceText, templateText string) (string, error) {
	return New().Render(ctx, sourceText, templateText)
}

// Render is the method form of the package-level Render.
func (g *Generator) Render(ctx context.Context, sourceText, templateText string) (string, error) {
	return g.Generate(ctx, Input{Header: []byte(sourceText), Template: templateText})
}

// Generate parses the header, builds the signature collection and renders
// the template. No output is returned on failure.
func (g *Generator) Generate(ctx context.Context, in Input) (string, error) {
	return g.generate(ctx, in, nil)
}

// generate is Generate with an optional batch-scoped signature cache.
func (g *Generator) generate(ctx context.Context, in Input, cache *signatureCache) (string, error) {
	start := time.Now()

	funcs, err := g.extract(ctx, in, cache)
	if err != nil {
		g.metrics.RecordRender(ctx, observability.StatusError, stageParse, 0, time.Since(start))

		return "", err
	}

	out, err := g.render(ctx, in, funcs)
	if err != nil {
		g.metrics.RecordRender(ctx, observability.StatusError, stageRender, len(funcs), time.Since(start))

		return "", err
	}

	g.metrics.RecordRender(ctx, observability.StatusOK, "", len(funcs), time.Since(start))

	return out, nil
}

// Functions returns the signature collection of a header.
func (g *Generator) Functions(ctx context.Context, headerName string, header []byte) ([]cheader.Function, error) {
	return g.extract(ctx, Input{HeaderName: headerName, Header: header}, nil)
}

func (g *Generator) extract(ctx context.Context, in Input, cache *signatureCache) ([]cheader.Function, error) {
	name := in.HeaderName
	if name == "" {
		name = defaultHeaderName
	}

	var key digest

	if cache != nil {
		key = headerKey(in.Header)

		if funcs, ok := cache.get(key); ok {
			g.logger.DebugContext(ctx, "signature cache hit",
				slog.String("header", name),
				slog.Int("functions", len(funcs)),
			)

			return funcs, nil
		}
	}

	parseCtx, parseSpan := g.tracer.Start(ctx, spanParse, trace.WithAttributes(
		attribute.String("wrapgen.header", name),
		attribute.Int("wrapgen.header.bytes", len(in.Header)),
	))

	tree, err := cheader.Parse(parseCtx, in.HeaderName, in.Header)
	if err != nil {
		endWithError(parseSpan, err)

		return nil, fmt.Errorf("parse header %s: %w", name, err)
	}

	parseSpan.End()

	defer tree.Close()

	_, buildSpan := g.tracer.Start(ctx, spanBuild)
	funcs := cheader.Build(tree)
	buildSpan.SetAttributes(attribute.Int("wrapgen.functions", len(funcs)))
	buildSpan.End()

	if cache != nil {
		cache.put(key, funcs)
	}

	g.logger.DebugContext(ctx, "extracted functions",
		slog.String("header", name),
		slog.Int("functions", len(funcs)),
		slog.Int("variadic", len(funcs)-len(render.WithoutVariadic(funcs))),
	)

	return funcs, nil
}

func (g *Generator) render(ctx context.Context, in Input, funcs []cheader.Function) (string, error) {
	name := in.TemplateName
	if name == "" {
		name = defaultTemplateName
	}

	ctx, span := g.tracer.Start(ctx, spanRender, trace.WithAttributes(
		attribute.String("wrapgen.template", name),
	))
	defer span.End()

	tmpl, err := render.Parse(name, in.Template, g.filters)
	if err != nil {
		endWithError(span, err)

		return "", err
	}

	var sb strings.Builder

	err = tmpl.Execute(&sb, funcs)
	if err != nil {
		endWithError(span, err)

		return "", err
	}

	span.SetAttributes(attribute.Int("wrapgen.output.bytes", sb.Len()))

	g.logger.DebugContext(ctx, "rendered template",
		slog.String("template", name),
		slog.Int("bytes", sb.Len()),
	)

	return sb.String(), nil
}

// endWithError marks the span failed. Ending an already-ended span is a no-op.
func endWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
