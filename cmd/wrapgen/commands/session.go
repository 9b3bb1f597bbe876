package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/wrapgen/pkg/config"
	"github.com/Sumatoshi-tech/wrapgen/pkg/generator"
	"github.com/Sumatoshi-tech/wrapgen/pkg/observability"
	"github.com/Sumatoshi-tech/wrapgen/pkg/version"
)

// Standard OTel exporter variables, used when the config names no endpoint.
const (
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
)

// session is the per-invocation state shared by subcommands.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	gen       *generator.Generator
	logger    *slog.Logger
}

// open loads configuration, starts observability and builds a generator.
// The caller must close the session.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	providers, err := observability.Init(o.observabilityConfig(cmd, cfg))
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewRenderMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(cmd.Context()))
	}

	gen := generator.New(
		generator.WithLogger(providers.Logger),
		generator.WithTracer(providers.Tracer),
		generator.WithMetrics(metrics),
		generator.WithWorkers(cfg.Generate.Workers),
	)

	return &session{cfg: cfg, providers: providers, gen: gen, logger: providers.Logger}, nil
}

func (o *rootOptions) observabilityConfig(cmd *cobra.Command, cfg *config.Config) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Resolve()
	obsCfg.Command = cmd.Name()
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.DebugTrace = cfg.Telemetry.DebugTrace || o.debugTrace
	obsCfg.LogOutput = cmd.ErrOrStderr()
	obsCfg.LogJSON = cfg.Logging.JSON || o.logJSON
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)

	switch {
	case o.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case o.quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv(envOTLPEndpoint)
		obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv(envOTLPHeaders))
		obsCfg.OTLPInsecure = os.Getenv(envOTLPInsecure) == "true"
	}

	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile
	if o.metricsFile != "" {
		obsCfg.MetricsFile = o.metricsFile
	}

	return obsCfg
}

// close flushes telemetry. Flush failures are logged, never fatal.
func (s *session) close(ctx context.Context) {
	err := s.providers.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
	}
}

// run opens a session, calls fn and closes the session.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := o.open(cmd)
	if err != nil {
		return err
	}

	defer s.close(cmd.Context())

	ctx, span := s.providers.Tracer.Start(cmd.Context(), "wrapgen."+cmd.Name())
	defer span.End()

	return fn(ctx, s)
}
