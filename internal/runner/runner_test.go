package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/mojomark/mojomark/internal/cache"
	"github.com/mojomark/mojomark/internal/discovery"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const fibTemplate = `"""Fibonacci."""
# ==SETUP==
var n = 30
# ==WORKLOAD==
var total = 0
var xs = {{LIST}}[Int]()
for i in range(n):
    total += i
# KEEP: total int
`

func benchmarks(t *testing.T, names ...string) []discovery.Benchmark {
	t.Helper()
	fsys := fstest.MapFS{}
	for _, n := range names {
		fsys["compute/"+n+".mojo"] = &fstest.MapFile{Data: []byte(fibTemplate)}
	}
	found, err := discovery.Discover(fsys, "")
	require.NoError(t, err)
	require.Len(t, found, len(names))
	return found
}

// writeBinary makes Build produce an output file like the real compiler.
func writeBinary(_ context.Context, _ string, out string) error {
	return os.WriteFile(out, []byte("bin"), 0o755)
}

func TestParseMarker(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   int64
		ok     bool
	}{
		{"simple", "MOJOMARK_NS 12345\n", 12345, true},
		{"surrounded", "hello\nMOJOMARK_NS 42\nbye\n", 42, true},
		{"first wins", "MOJOMARK_NS 1\nMOJOMARK_NS 2\n", 1, true},
		{"non-integer skipped", "MOJOMARK_NS abc\nMOJOMARK_NS 7\n", 7, true},
		{"extra fields", "MOJOMARK_NS 99 ns\n", 99, true},
		{"leading spaces", "   MOJOMARK_NS 5", 5, true},
		{"missing value", "MOJOMARK_NS\n", 0, false},
		{"prefix only", "MOJOMARK_NSX 5\n", 0, false},
		{"empty", "", 0, false},
		{"no marker", "result: 832040\n", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseMarker(tc.stdout)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewClampsOptions(t *testing.T) {
	r := New(nil, WithSamples(0), WithWarmup(-2), WithJobs(0))
	assert.Equal(t, 1, r.samples)
	assert.Equal(t, 0, r.warmup)
	assert.Equal(t, 1, r.jobs)

	r = New(nil)
	assert.Equal(t, DefaultSamples, r.samples)
	assert.Equal(t, DefaultWarmup, r.warmup)
	assert.Equal(t, DefaultJobs, r.jobs)
}

func TestRun_RendersForVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	b := benchmarks(t, "fib")[0]

	tc.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, src, out string) error {
			data, err := os.ReadFile(src)
			require.NoError(t, err)
			assert.Equal(t, "fib.mojo", filepath.Base(src))
			assert.Equal(t, "fib", filepath.Base(out))
			assert.NotContains(t, string(data), "{{")
			assert.Contains(t, string(data), "var xs = List[Int]()")
			assert.Contains(t, string(data), "MOJOMARK_NS")
			return nil
		})
	tc.EXPECT().Exec(gomock.Any(), gomock.Any()).Return("MOJOMARK_NS 100\n", nil).Times(3)

	r := New(tc, WithVersion("0.26.1"), WithSamples(2), WithWarmup(1))
	sample, err := r.Run(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "fib", sample.Name)
	assert.Equal(t, "compute", sample.Category)
	assert.Equal(t, []int64{100, 100}, sample.SamplesNs)
}

func TestRun_WithoutVersionCompilesRawText(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	b := benchmarks(t, "fib")[0]

	tc.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, src, _ string) error {
			data, err := os.ReadFile(src)
			require.NoError(t, err)
			assert.Equal(t, fibTemplate, string(data))
			return nil
		})
	tc.EXPECT().Exec(gomock.Any(), gomock.Any()).Return("MOJOMARK_NS 1\n", nil)

	r := New(tc, WithSamples(1), WithWarmup(0))
	_, err := r.Run(context.Background(), b)
	require.NoError(t, err)
}

func TestRun_WarmupPrecedesSamples(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	b := benchmarks(t, "fib")[0]

	tc.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	call := 0
	tc.EXPECT().Exec(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string) (string, error) {
			call++
			return fmt.Sprintf("MOJOMARK_NS %d\n", call), nil
		}).Times(5)

	r := New(tc, WithVersion("0.26.1"), WithSamples(3), WithWarmup(2))
	sample, err := r.Run(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, sample.SamplesNs)
}

func TestRun_WallClockFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	b := benchmarks(t, "fib")[0]

	tc.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	tc.EXPECT().Exec(gomock.Any(), gomock.Any()).Return("no marker here\n", nil).Times(2)

	r := New(tc, WithSamples(2), WithWarmup(0))
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(5 * time.Millisecond)
		return clock
	}

	sample, err := r.Run(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []int64{5_000_000, 5_000_000}, sample.SamplesNs)
}

func TestRun_BuildFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	b := benchmarks(t, "fib")[0]

	buildErr := &BuildError{Source: "fib.mojo", Stderr: "error: bad", Err: errors.New("exit status 1")}
	tc.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(buildErr)

	_, err := New(tc).Run(context.Background(), b)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, err.Error(), "error: bad")
}

func TestRun_ExecFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	b := benchmarks(t, "fib")[0]

	tc.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	gomock.InOrder(
		tc.EXPECT().Exec(gomock.Any(), gomock.Any()).Return("MOJOMARK_NS 1\n", nil),
		tc.EXPECT().Exec(gomock.Any(), gomock.Any()).Return("", errors.New("segfault")),
	)

	_, err := New(tc, WithSamples(3), WithWarmup(0)).Run(context.Background(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample 2 of compute/fib")
	assert.Contains(t, err.Error(), "segfault")
}

func TestRun_UsesBuildCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	b := benchmarks(t, "fib")[0]
	c := cache.New(filepath.Join(t.TempDir(), "build-cache"))

	tc.EXPECT().ID().Return("/opt/mojo").Times(2)
	tc.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(writeBinary).Times(1)
	tc.EXPECT().Exec(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, bin string) (string, error) {
			assert.Equal(t, c.Dir(), filepath.Dir(bin))
			return "MOJOMARK_NS 9\n", nil
		}).Times(2)

	r := New(tc, WithVersion("0.26.1"), WithSamples(1), WithWarmup(0), WithCache(c))

	var events []ProgressEvent
	r.OnProgress(func(e ProgressEvent) { events = append(events, e) })

	outcomes, err := r.RunAll(context.Background(), []discovery.Benchmark{b})
	require.NoError(t, err)
	require.NoError(t, outcomes[0].Err)
	outcomes, err = r.RunAll(context.Background(), []discovery.Benchmark{b})
	require.NoError(t, err)
	require.NoError(t, outcomes[0].Err)

	require.Len(t, events, 4)
	assert.False(t, events[1].Cached)
	assert.True(t, events[3].Cached)
}

func TestRunAll_KeepsOrderAndRecordsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	bs := benchmarks(t, "a", "b", "c", "d")

	tc.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, out string) error {
			if filepath.Base(out) == "b" {
				return errors.New("does not compile")
			}
			return nil
		}).Times(4)
	tc.EXPECT().Exec(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, bin string) (string, error) {
			ns := map[string]int{"a": 1, "c": 3, "d": 4}[filepath.Base(bin)]
			return fmt.Sprintf("MOJOMARK_NS %d\n", ns), nil
		}).Times(3)

	r := New(tc, WithVersion("0.26.1"), WithSamples(1), WithWarmup(0), WithJobs(3))

	var mu sync.Mutex
	counts := map[EventType]int{}
	r.OnProgress(func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[e.EventType]++
		assert.Equal(t, 4, e.Total)
	})

	outcomes, err := r.RunAll(context.Background(), bs)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	for i, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, name, outcomes[i].Benchmark.Name)
	}
	assert.Equal(t, []int64{1}, outcomes[0].Sample.SamplesNs)
	assert.ErrorContains(t, outcomes[1].Err, "does not compile")
	assert.Equal(t, []int64{3}, outcomes[2].Sample.SamplesNs)
	assert.Equal(t, []int64{4}, outcomes[3].Sample.SamplesNs)

	assert.Equal(t, 4, counts[EventBenchmarkStart])
	assert.Equal(t, 3, counts[EventBenchmarkComplete])
	assert.Equal(t, 1, counts[EventBenchmarkFailed])

	set := results.New("0.26.1", nil)
	failed := Collect(set, outcomes)
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Benchmark.Name)
	assert.Len(t, set.Benchmarks, 3)
}

func TestRunAll_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	bs := benchmarks(t, "a", "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := New(tc).RunAll(ctx, bs)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, outcomes, 2)

	set := results.New("x", nil)
	assert.Empty(t, Collect(set, outcomes))
	assert.Empty(t, set.Benchmarks)
}

func TestMojoToolchainDefaults(t *testing.T) {
	tc := NewMojoToolchain("")
	assert.Equal(t, "mojo", tc.ID())
	assert.Equal(t, DefaultBuildTimeout, tc.BuildTimeout)
	assert.Equal(t, DefaultRunTimeout, tc.RunTimeout)
	assert.Equal(t, "/opt/mojo/bin/mojo", NewMojoToolchain("/opt/mojo/bin/mojo").ID())
	assert.Equal(t, 5*time.Second, orDefault(5*time.Second, time.Minute))
	assert.Equal(t, time.Minute, orDefault(0, time.Minute))
}

func TestMojoToolchainMissingBinary(t *testing.T) {
	tc := NewMojoToolchain(filepath.Join(t.TempDir(), "no-such-mojo"))
	assert.Equal(t, "unknown", tc.Version(context.Background()))

	err := tc.Build(context.Background(), "x.mojo", "x")
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "x.mojo", be.Source)

	_, err = tc.Exec(context.Background(), filepath.Join(t.TempDir(), "no-such-bin"))
	assert.Error(t, err)
}
