package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
	"github.com/Sumatoshi-tech/wrapgen/pkg/config"
	"github.com/Sumatoshi-tech/wrapgen/pkg/generator"
)

const namesTemplate = "{{range .funcs}}{{.Name}}\n{{end}}"

type fixture struct {
	dir    string
	header string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	header := filepath.Join(dir, "newt.h")
	require.NoError(t, os.WriteFile(header, []byte(newtHeader), 0o600))

	return fixture{dir: dir, header: header}
}

func (f fixture) template(t *testing.T, name, text string) string {
	t.Helper()

	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))

	return path
}

func (f fixture) job(t *testing.T, name, text string) config.Job {
	t.Helper()

	return config.Job{
		Name:     name,
		Header:   f.header,
		Template: f.template(t, name+".tmpl", text),
		Output:   filepath.Join(f.dir, "out", name+".c"),
	}
}

func TestRunJobs_WritesOutputs(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	jobs := []config.Job{
		fx.job(t, "names", namesTemplate),
		fx.job(t, "count", "{{len .funcs}}\n"),
		fx.job(t, "plain", "{{len (without_variadic .funcs)}}\n"),
	}

	results, err := generator.New(generator.WithWorkers(2)).RunJobs(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for idx, res := range results {
		assert.Equal(t, jobs[idx].Name, res.Job.Name)
		assert.True(t, res.Changed)
		assert.Positive(t, res.Duration)
	}

	count, err := os.ReadFile(jobs[1].Output)
	require.NoError(t, err)
	assert.Equal(t, "8\n", string(count))

	plain, err := os.ReadFile(jobs[2].Output)
	require.NoError(t, err)
	assert.Equal(t, "7\n", string(plain))

	assert.Equal(t, len("8\n"), results[1].Bytes)
	assert.Equal(t, "2 B", results[1].Size())
}

func TestRunJobs_UnchangedOutputNotRewritten(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	job := fx.job(t, "names", namesTemplate)
	gen := generator.New()

	_, err := gen.RunJobs(context.Background(), []config.Job{job})
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(job.Output, old, old))

	results, err := gen.RunJobs(context.Background(), []config.Job{job})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Changed)

	info, err := os.Stat(job.Output)
	require.NoError(t, err)
	assert.WithinDuration(t, old, info.ModTime(), time.Second)
}

func TestRunJobs_NoTempFilesLeft(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	job := fx.job(t, "names", namesTemplate)

	_, err := generator.New().RunJobs(context.Background(), []config.Job{job})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(job.Output))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "names.c", entries[0].Name())
}

func TestRunJobs_FailureNamesJob(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	good := fx.job(t, "good", namesTemplate)
	bad := fx.job(t, "bad", "{{.missing}}")

	_, err := generator.New(generator.WithWorkers(1)).RunJobs(context.Background(), []config.Job{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job bad")

	_, statErr := os.Stat(bad.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunJobs_MissingHeader(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	job := fx.job(t, "names", namesTemplate)
	job.Header = filepath.Join(fx.dir, "absent.h")

	_, err := generator.New().RunJobs(context.Background(), []config.Job{job})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read header")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunJobs_ParseErrorKeepsType(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	require.NoError(t, os.WriteFile(fx.header, []byte("int f(;\n"), 0o600))

	job := fx.job(t, "names", namesTemplate)

	_, err := generator.New().RunJobs(context.Background(), []config.Job{job})
	require.ErrorIs(t, err, cheader.ErrParse)
}

func TestRunJobs_CancelledContext(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	job := fx.job(t, "names", namesTemplate)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := generator.New().RunJobs(ctx, []config.Job{job})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunJobs_Empty(t *testing.T) {
	t.Parallel()

	results, err := generator.New().RunJobs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func countParseSpans(exporter *tracetest.InMemoryExporter) int {
	count := 0

	for _, span := range exporter.GetSpans() {
		if span.Name == "wrapgen.parse" {
			count++
		}
	}

	return count
}

func tracedGenerator(t *testing.T, opts ...generator.Option) (*generator.Generator, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	return generator.New(append([]generator.Option{generator.WithTracer(tp.Tracer("test"))}, opts...)...), exporter
}

func TestRunJobs_SharedHeaderParsedOnce(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	jobs := []config.Job{
		fx.job(t, "one", namesTemplate),
		fx.job(t, "two", "{{len .funcs}}\n"),
		fx.job(t, "three", "{{len (without_variadic .funcs)}}\n"),
	}

	gen, exporter := tracedGenerator(t, generator.WithWorkers(1))

	_, err := gen.RunJobs(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 1, countParseSpans(exporter))
}

func TestRunJobs_SignaturesNotKeptAcrossBatches(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	jobs := []config.Job{fx.job(t, "one", namesTemplate)}

	gen, exporter := tracedGenerator(t)

	_, err := gen.RunJobs(context.Background(), jobs)
	require.NoError(t, err)

	_, err = gen.RunJobs(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, 2, countParseSpans(exporter))
}

func TestGenerate_NeverCaches(t *testing.T) {
	t.Parallel()

	gen, exporter := tracedGenerator(t)

	for range 3 {
		_, err := gen.Render(context.Background(), newtHeader, "{{len .funcs}}")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, countParseSpans(exporter))
}

func TestRunJobs_BatchCacheDisabled(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	jobs := []config.Job{fx.job(t, "one", namesTemplate), fx.job(t, "two", namesTemplate)}

	gen, exporter := tracedGenerator(t, generator.WithBatchCache(0))

	_, err := gen.RunJobs(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 2, countParseSpans(exporter))
}
