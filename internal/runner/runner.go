// Package runner compiles benchmark templates with a Mojo toolchain and
// collects timing samples.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mojomark/mojomark/internal/cache"
	"github.com/mojomark/mojomark/internal/codegen"
	"github.com/mojomark/mojomark/internal/discovery"
	"github.com/mojomark/mojomark/internal/results"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSamples = 10
	DefaultWarmup  = 3
	DefaultJobs    = 1
)

// ParseMarker returns the value of the first "MOJOMARK_NS <int>" line in
// stdout. Lines whose value is not an integer are skipped.
func ParseMarker(stdout string) (int64, bool) {
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != codegen.TimingMarker {
			continue
		}
		ns, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		return ns, true
	}
	return 0, false
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

const (
	EventBenchmarkStart    EventType = "benchmark_start"
	EventBenchmarkComplete EventType = "benchmark_complete"
	EventBenchmarkFailed   EventType = "benchmark_failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	Benchmark string
	Num       int
	Total     int
	Cached    bool
	Sample    *results.Sample
	Err       error
	Duration  time.Duration
}

// Outcome is the result of running one benchmark.
type Outcome struct {
	Benchmark discovery.Benchmark
	Sample    results.Sample
	Err       error
}

// Runner executes benchmarks one process per sample.
type Runner struct {
	toolchain Toolchain
	catalog   codegen.Catalog
	version   string
	samples   int
	warmup    int
	jobs      int
	cache     *cache.Cache
	now       func() time.Time

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Option configures a Runner.
type Option func(*Runner)

// WithVersion renders templates for version before compiling. Without a
// version the template text is compiled as is.
func WithVersion(version string) Option {
	return func(r *Runner) {
		r.version = version
	}
}

// WithCatalog overrides the profile catalog used for rendering.
func WithCatalog(c codegen.Catalog) Option {
	return func(r *Runner) {
		r.catalog = c
	}
}

// WithSamples sets the number of timed executions.
func WithSamples(n int) Option {
	return func(r *Runner) {
		r.samples = n
	}
}

// WithWarmup sets the number of untimed executions before sampling.
func WithWarmup(n int) Option {
	return func(r *Runner) {
		r.warmup = n
	}
}

// WithJobs sets how many benchmarks RunAll compiles and runs at once.
func WithJobs(n int) Option {
	return func(r *Runner) {
		r.jobs = n
	}
}

// WithCache reuses compiled binaries across runs.
func WithCache(c *cache.Cache) Option {
	return func(r *Runner) {
		r.cache = c
	}
}

// New creates a runner for toolchain.
func New(toolchain Toolchain, opts ...Option) *Runner {
	r := &Runner{
		toolchain: toolchain,
		catalog:   codegen.DefaultCatalog(),
		samples:   DefaultSamples,
		warmup:    DefaultWarmup,
		jobs:      DefaultJobs,
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	if r.samples < 1 {
		r.samples = 1
	}
	if r.warmup < 0 {
		r.warmup = 0
	}
	if r.jobs < 1 {
		r.jobs = 1
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Source returns the program that will be compiled for b.
func (r *Runner) Source(b discovery.Benchmark) (string, error) {
	raw, err := b.Source()
	if err != nil {
		return "", err
	}
	if r.version == "" {
		return string(raw), nil
	}
	slog.Debug("Rendering template",
		"benchmark", b.Label(), "profile", r.catalog.Resolve(r.version).Name, "version", r.version)
	return codegen.RenderSource(string(raw), r.version, r.catalog), nil
}

// Run compiles b, executes the warmup runs and then the timed samples in
// order.
func (r *Runner) Run(ctx context.Context, b discovery.Benchmark) (results.Sample, error) {
	sample, _, err := r.run(ctx, b)
	return sample, err
}

func (r *Runner) run(ctx context.Context, b discovery.Benchmark) (results.Sample, bool, error) {
	sample := results.Sample{Name: b.Name, Category: b.Category, SamplesNs: []int64{}}

	source, err := r.Source(b)
	if err != nil {
		return sample, false, err
	}

	tmpDir, err := os.MkdirTemp("", "mojomark_")
	if err != nil {
		return sample, false, fmt.Errorf("creating build directory: %w", err)
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	bin, cached, err := r.build(ctx, b, source, tmpDir)
	if err != nil {
		return sample, false, err
	}

	for i := 0; i < r.warmup; i++ {
		if _, err := r.measure(ctx, bin); err != nil {
			return sample, cached, fmt.Errorf("warmup run %d of %s: %w", i+1, b.Label(), err)
		}
	}
	for i := 0; i < r.samples; i++ {
		ns, err := r.measure(ctx, bin)
		if err != nil {
			return sample, cached, fmt.Errorf("sample %d of %s: %w", i+1, b.Label(), err)
		}
		sample.SamplesNs = append(sample.SamplesNs, ns)
	}
	return sample, cached, nil
}

func (r *Runner) build(ctx context.Context, b discovery.Benchmark, source, tmpDir string) (string, bool, error) {
	var key string
	if r.cache != nil {
		k, err := cache.Key(r.toolchain.ID(), r.version, source)
		if err != nil {
			return "", false, fmt.Errorf("computing cache key: %w", err)
		}
		key = k
		if bin, ok := r.cache.Get(key); ok {
			slog.Debug("Using cached binary", "benchmark", b.Label(), "path", bin)
			return bin, true, nil
		}
	}

	src, err := codegen.WriteSource(source, tmpDir, b.Name+discovery.TemplateExt)
	if err != nil {
		return "", false, err
	}
	bin := filepath.Join(tmpDir, b.Name)
	if err := r.toolchain.Build(ctx, src, bin); err != nil {
		return "", false, err
	}

	if r.cache != nil {
		cachedBin, err := r.cache.Put(key, bin)
		if err != nil {
			slog.Warn("could not cache binary", "benchmark", b.Label(), "error", err)
			return bin, false, nil
		}
		return cachedBin, false, nil
	}
	return bin, false, nil
}

// measure runs bin once. The in-process marker wins over wall-clock time.
func (r *Runner) measure(ctx context.Context, bin string) (int64, error) {
	start := r.now()
	stdout, err := r.toolchain.Exec(ctx, bin)
	wall := r.now().Sub(start).Nanoseconds()
	if err != nil {
		return 0, err
	}
	if ns, ok := ParseMarker(stdout); ok {
		return ns, nil
	}
	slog.Debug("no timing marker, falling back to wall-clock", "binary", filepath.Base(bin), "ns", wall)
	return wall, nil
}

// RunAll runs every benchmark with at most Jobs in flight. Outcomes keep
// the input order. A failing benchmark is recorded in its Outcome and does
// not stop the others; only cancellation of ctx aborts the batch.
func (r *Runner) RunAll(ctx context.Context, benchmarks []discovery.Benchmark) ([]Outcome, error) {
	outcomes := make([]Outcome, len(benchmarks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)

	for i, b := range benchmarks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.notifyProgress(ProgressEvent{
				EventType: EventBenchmarkStart,
				Benchmark: b.Label(),
				Num:       i + 1,
				Total:     len(benchmarks),
			})

			start := time.Now()
			sample, cached, err := r.run(gctx, b)
			outcomes[i] = Outcome{Benchmark: b, Sample: sample, Err: err}

			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Debug("benchmark failed", "benchmark", b.Label(), "error", err)
				r.notifyProgress(ProgressEvent{
					EventType: EventBenchmarkFailed,
					Benchmark: b.Label(),
					Num:       i + 1,
					Total:     len(benchmarks),
					Err:       err,
					Duration:  time.Since(start),
				})
				return nil
			}
			r.notifyProgress(ProgressEvent{
				EventType: EventBenchmarkComplete,
				Benchmark: b.Label(),
				Num:       i + 1,
				Total:     len(benchmarks),
				Cached:    cached,
				Sample:    &sample,
				Duration:  time.Since(start),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Collect adds the successful outcomes to set and returns the failures.
func Collect(set *results.ResultSet, outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
			continue
		}
		if o.Benchmark.Name == "" {
			continue // never started
		}
		set.Add(o.Sample)
	}
	return failed
}
