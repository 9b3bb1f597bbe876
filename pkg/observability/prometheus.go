package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
)

// textfileSnapshot collects OTel metrics into a private Prometheus registry
// and dumps them in text exposition format when the process finishes.
type textfileSnapshot struct {
	registry *prometheus.Registry
	reader   *promexporter.Exporter
	path     string
}

func newTextfileSnapshot(path string) (*textfileSnapshot, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &textfileSnapshot{registry: registry, reader: exporter, path: path}, nil
}

// write gathers the registry into the target file. The parent directory is
// created if missing; the write itself is atomic.
func (ts *textfileSnapshot) write() error {
	dir := filepath.Dir(ts.path)

	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	err = prometheus.WriteToTextfile(ts.path, ts.registry)
	if err != nil {
		return fmt.Errorf("write metrics file %s: %w", ts.path, err)
	}

	return nil
}
