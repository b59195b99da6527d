package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mojomark/mojomark/internal/cache"
	"github.com/mojomark/mojomark/internal/codegen"
	"github.com/mojomark/mojomark/internal/discovery"
	"github.com/mojomark/mojomark/internal/hooks"
	"github.com/mojomark/mojomark/internal/reporting"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/mojomark/mojomark/internal/runner"
	"github.com/mojomark/mojomark/internal/spinner"
)

// buildCacheDir holds compiled benchmark binaries below the cache root.
const buildCacheDir = "build-cache"

// discoverBenchmarks returns built-in and user templates, optionally
// narrowed to a category and to names or labels.
func discoverBenchmarks(e *env, category string, names []string) ([]discovery.Benchmark, error) {
	benchmarks, err := discovery.Discover(codegen.Builtin(), category, e.userBenchmarkDir())
	if err != nil {
		return nil, err
	}
	return discovery.Filter(benchmarks, names), nil
}

// runSuite builds and times benchmarks with binary and returns the
// measured set together with the outcomes that failed.
func runSuite(ctx context.Context, e *env, binary, version string, benchmarks []discovery.Benchmark, useCache bool) (*results.ResultSet, []runner.Outcome, error) {
	opts := []runner.Option{
		runner.WithVersion(version),
		runner.WithSamples(e.cfg.Benchmark.Samples),
		runner.WithWarmup(e.cfg.Warmup()),
		runner.WithJobs(e.cfg.Benchmark.Jobs),
	}
	if useCache {
		if root := newManager().Root(); root != "" {
			opts = append(opts, runner.WithCache(cache.New(filepath.Join(root, buildCacheDir))))
		}
	}
	r := runner.New(newToolchain(binary), opts...)

	c := e.console
	spin := spinner.Start(c.Writer(), "Preparing benchmarks...")
	defer spin.Stop()
	r.OnProgress(progressPrinter(c, spin))

	outcomes, err := r.RunAll(ctx, benchmarks)
	spin.Stop()
	if err != nil {
		return nil, nil, err
	}

	set := results.New(version, captureMachine(ctx).Map())
	failed := runner.Collect(set, outcomes)
	return set, failed, nil
}

// runHooks executes the configured hooks for one lifecycle point. Hook
// output is shown with --verbose. resultPath is empty before a run.
func runHooks(ctx context.Context, e *env, point, version, binary, resultPath string) error {
	var list []hooks.Hook
	switch point {
	case hooks.BeforeRun:
		list = e.cfg.Hooks.BeforeRun
	case hooks.AfterRun:
		list = e.cfg.Hooks.AfterRun
	}
	if len(list) == 0 {
		return nil
	}

	r := &hooks.Runner{Dir: e.cfg.Resolve(".")}
	if e.console.Verbosity() >= reporting.Verbose {
		r.Output = e.console.Writer()
	}
	env := map[string]string{
		"MOJOMARK_MOJO_VERSION": version,
		"MOJOMARK_MOJO_BINARY":  binary,
	}
	if resultPath != "" {
		env["MOJOMARK_RESULT_FILE"] = resultPath
	}
	return r.Execute(ctx, point, list, env)
}

// progressPrinter prints one line per finished benchmark. Listeners are
// called from worker goroutines; spinner.Do serializes the writes.
func progressPrinter(c *reporting.Console, spin *spinner.Spinner) runner.ProgressListener {
	return func(ev runner.ProgressEvent) {
		switch ev.EventType {
		case runner.EventBenchmarkStart:
			spin.Update(fmt.Sprintf("[%d/%d] %s", ev.Num, ev.Total, ev.Benchmark))
		case runner.EventBenchmarkComplete:
			spin.Do(func() {
				c.Printf("  %s %s  %s\n", c.Good("✓"), ev.Benchmark, reporting.FormatTime(ev.Sample.Mean()))
				if ev.Cached {
					c.Verbosef("      reused cached build\n")
				}
				c.Verbosef("      %d samples in %s\n", len(ev.Sample.SamplesNs), ev.Duration.Round(time.Millisecond))
			})
		case runner.EventBenchmarkFailed:
			spin.Do(func() {
				c.Printf("  %s %s %s — %v\n", c.Bad("✗"), ev.Benchmark, c.Bad("FAILED"), ev.Err)
			})
		}
	}
}
