package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/wrapgen/pkg/config"
	"github.com/Sumatoshi-tech/wrapgen/pkg/observability"
)

// outputPerm is the mode of generated files.
const outputPerm = 0o644

// Result describes one finished job.
type Result struct {
	Job      config.Job
	Bytes    int
	Duration time.Duration
	// Changed is false when the output already held the rendered text and
	// was left untouched.
	Changed bool
}

// Size returns the output size in human units, e.g. "12 kB".
func (r Result) Size() string {
	return humanize.Bytes(uint64(max(r.Bytes, 0))) //nolint:gosec // clamped to non-negative
}

// RunJobs renders every job and writes its output. Jobs run concurrently,
// bounded by the configured worker count. Results keep the order of jobs.
// The first failure cancels the remaining jobs and is returned. Jobs that
// share a header text parse it once; the signatures are dropped on return.
func (g *Generator) RunJobs(ctx context.Context, jobs []config.Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	cache := g.newBatchCache()

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(g.limit())

	for idx, job := range jobs {
		grp.Go(func() error {
			res, err := g.runJob(grpCtx, job, cache)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Label(), err)
			}

			results[idx] = res

			return nil
		})
	}

	err := grp.Wait()

	if cache != nil {
		stats := cache.stats()
		g.logger.DebugContext(ctx, "signature cache",
			slog.Int64("hits", stats.Hits),
			slog.Int64("misses", stats.Misses),
		)
	}

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (g *Generator) newBatchCache() *signatureCache {
	if g.batchCache == 0 {
		return nil
	}

	return newSignatureCache(g.batchCache)
}

func (g *Generator) runJob(ctx context.Context, job config.Job, cache *signatureCache) (Result, error) {
	err := ctx.Err()
	if err != nil {
		return Result{}, fmt.Errorf("job cancelled: %w", err)
	}

	start := time.Now()

	out, err := g.generateJob(ctx, job, cache)
	if err != nil {
		return Result{}, err
	}

	changed, err := writeIfChanged(job.Output, []byte(out))
	if err != nil {
		g.metrics.RecordRender(ctx, observability.StatusError, stageWrite, 0, time.Since(start))

		return Result{}, err
	}

	res := Result{Job: job, Bytes: len(out), Duration: time.Since(start), Changed: changed}

	g.logger.InfoContext(ctx, "generated",
		slog.String("job", job.Label()),
		slog.String("output", job.Output),
		slog.String("size", res.Size()),
		slog.Bool("changed", changed),
		slog.Duration("took", res.Duration),
	)

	return res, nil
}

// generateJob reads the job inputs and renders them.
func (g *Generator) generateJob(ctx context.Context, job config.Job, cache *signatureCache) (string, error) {
	header, err := os.ReadFile(job.Header)
	if err != nil {
		g.metrics.RecordRender(ctx, observability.StatusError, stageRead, 0, 0)

		return "", fmt.Errorf("read header: %w", err)
	}

	text, err := os.ReadFile(job.Template)
	if err != nil {
		g.metrics.RecordRender(ctx, observability.StatusError, stageRead, 0, 0)

		return "", fmt.Errorf("read template: %w", err)
	}

	return g.generate(ctx, Input{
		HeaderName:   job.Header,
		TemplateName: filepath.Base(job.Template),
		Header:       header,
		Template:     string(text),
	}, cache)
}

func (g *Generator) limit() int {
	if g.workers > 0 {
		return g.workers
	}

	return runtime.GOMAXPROCS(0)
}

// writeIfChanged atomically replaces path with data unless it already holds
// exactly data. It reports whether the file was written.
func writeIfChanged(path string, data []byte) (bool, error) {
	current, err := os.ReadFile(path)
	if err == nil && bytes.Equal(current, data) {
		return false, nil
	}

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("read output: %w", err)
	}

	err = WriteFileAtomic(path, data)
	if err != nil {
		return false, err
	}

	return true, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = tmp.Write(data)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write temp file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("close temp file: %w", err)
	}

	err = os.Chmod(tmp.Name(), outputPerm)
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("chmod temp file: %w", err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("rename output: %w", err)
	}

	return nil
}
