// Package config loads and validates wrapgen project configuration.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Sentinel validation errors.
var (
	ErrNoJobs          = errors.New("no jobs configured")
	ErrJobField        = errors.New("job field is required")
	ErrDuplicateOutput = errors.New("duplicate job output")
	ErrInvalidWorkers  = errors.New("generate workers must not be negative")
	ErrInvalidRatio    = errors.New("sample ratio must be within [0, 1]")
	ErrSchema          = errors.New("config does not match schema")
)

// Config is the full wrapgen configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Jobs      []Job           `mapstructure:"jobs"`
	Generate  GenerateConfig  `mapstructure:"generate"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `mapstructure:"level" schema:"enum=debug|info|warn|warning|error"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	MetricsFile  string `mapstructure:"metrics_file"`
	// Environment labels logs and exported telemetry (e.g. "ci").
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio" schema:"min=0,max=1"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	// DebugTrace samples every trace regardless of sample_ratio.
	DebugTrace bool `mapstructure:"debug_trace"`
}

// GenerateConfig tunes batch generation.
type GenerateConfig struct {
	// Workers bounds concurrent jobs; 0 means one per CPU.
	Workers int `mapstructure:"workers" schema:"min=0"`
}

// DispatchConfig holds defaults for the coverage report.
type DispatchConfig struct {
	Prefix   string `mapstructure:"prefix"`
	Header   string `mapstructure:"header"`
	Wrappers string `mapstructure:"wrappers"`
}

// Job renders one template against one header into one output file.
type Job struct {
	Name     string `mapstructure:"name"`
	Header   string `mapstructure:"header" schema:"required"`
	Template string `mapstructure:"template" schema:"required"`
	Output   string `mapstructure:"output" schema:"required"`
}

// Label returns the job name, or the output file name when unnamed.
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}

	return filepath.Base(j.Output)
}

// Validate checks field ranges and job completeness.
func (c *Config) Validate() error {
	if c.Generate.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Generate.Workers)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidRatio, c.Telemetry.SampleRatio)
	}

	outputs := make(map[string]int, len(c.Jobs))

	for idx, job := range c.Jobs {
		err := job.validate()
		if err != nil {
			return fmt.Errorf("jobs[%d]: %w", idx, err)
		}

		out := filepath.Clean(job.Output)
		if prev, seen := outputs[out]; seen {
			return fmt.Errorf("jobs[%d]: %w: %s (also jobs[%d])", idx, ErrDuplicateOutput, job.Output, prev)
		}

		outputs[out] = idx
	}

	return nil
}

// RequireJobs reports ErrNoJobs when the configuration has nothing to generate.
func (c *Config) RequireJobs() error {
	if len(c.Jobs) == 0 {
		return ErrNoJobs
	}

	return nil
}

func (j Job) validate() error {
	var missing []string

	if strings.TrimSpace(j.Header) == "" {
		missing = append(missing, "header")
	}

	if strings.TrimSpace(j.Template) == "" {
		missing = append(missing, "template")
	}

	if strings.TrimSpace(j.Output) == "" {
		missing = append(missing, "output")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrJobField, strings.Join(missing, ", "))
	}

	return nil
}

// resolvePaths makes relative job and dispatch paths relative to baseDir.
func (c *Config) resolvePaths(baseDir string) {
	if baseDir == "" {
		return
	}

	for idx := range c.Jobs {
		c.Jobs[idx].Header = resolve(baseDir, c.Jobs[idx].Header)
		c.Jobs[idx].Template = resolve(baseDir, c.Jobs[idx].Template)
		c.Jobs[idx].Output = resolve(baseDir, c.Jobs[idx].Output)
	}

	c.Dispatch.Header = resolve(baseDir, c.Dispatch.Header)
	c.Dispatch.Wrappers = resolve(baseDir, c.Dispatch.Wrappers)
	c.Telemetry.MetricsFile = resolve(baseDir, c.Telemetry.MetricsFile)
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(baseDir, path)
}
