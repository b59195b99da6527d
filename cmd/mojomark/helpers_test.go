package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mojomark/mojomark/internal/codegen"
	"github.com/mojomark/mojomark/internal/machine"
	"github.com/mojomark/mojomark/internal/results"
	"github.com/mojomark/mojomark/internal/runner"
	"github.com/mojomark/mojomark/internal/versions"
	"github.com/stretchr/testify/require"
)

var testMachine = machine.Info{CPU: "Test CPU", Cores: 8, RAMGB: 16, OS: "Linux", Arch: "x86_64", HostnameHash: "abc123"}

// fakeToolchain "compiles" by writing the benchmark name into the output
// file and "runs" by printing the timing configured for that name.
type fakeToolchain struct {
	mu     sync.Mutex
	ns     map[string]int64
	fail   map[string]bool
	builds int
}

func (f *fakeToolchain) ID() string { return "fake" }

func (f *fakeToolchain) Version(context.Context) string { return "0.26.1" }

func (f *fakeToolchain) Build(_ context.Context, _, out string) error {
	name := filepath.Base(out)
	if f.fail[name] {
		return errors.New("use of unknown declaration 'List'")
	}
	f.mu.Lock()
	f.builds++
	f.mu.Unlock()
	return os.WriteFile(out, []byte(name), 0o755)
}

func (f *fakeToolchain) Exec(_ context.Context, bin string) (string, error) {
	data, err := os.ReadFile(bin)
	if err != nil {
		return "", err
	}
	ns, ok := f.ns[string(data)]
	if !ok {
		ns = 1_000_000
	}
	return fmt.Sprintf("%s %d\n", codegen.TimingMarker, ns), nil
}

// workspace is a temporary project directory with every external
// dependency of the CLI stubbed.
type workspace struct {
	dir       string
	home      string
	toolchain *fakeToolchain
	// toolchains overrides toolchain per binary path.
	toolchains map[string]*fakeToolchain
	// installed is what "mojo --version" reports per binary.
	installed map[string]string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	home := filepath.Join(dir, "home")
	t.Setenv(homeEnv, home)

	w := &workspace{
		dir:        dir,
		home:       home,
		toolchain:  &fakeToolchain{},
		toolchains: map[string]*fakeToolchain{},
		installed:  map[string]string{"mojo": "0.26.1"},
	}

	oldToolchain, oldDetect, oldMachine, oldIndex := newToolchain, detectVersion, captureMachine, newIndex
	t.Cleanup(func() {
		newToolchain, detectVersion, captureMachine, newIndex = oldToolchain, oldDetect, oldMachine, oldIndex
		debugLogging, verboseOutput = false, false
	})
	newToolchain = func(binary string) runner.Toolchain {
		if tc, ok := w.toolchains[binary]; ok {
			return tc
		}
		return w.toolchain
	}
	detectVersion = func(_ context.Context, binary string) string {
		if v, ok := w.installed[binary]; ok {
			return v
		}
		return "unknown"
	}
	captureMachine = func(context.Context) machine.Info { return testMachine }
	newIndex = func() *versions.Index {
		return &versions.Index{URL: "http://127.0.0.1:0/unreachable", Client: &http.Client{Timeout: time.Second}}
	}
	return w
}

// serveIndex points the package index at a test server.
func (w *workspace) serveIndex(t *testing.T, latest string, releases ...string) {
	t.Helper()
	var rel []string
	for _, r := range releases {
		rel = append(rel, fmt.Sprintf("%q: [{}]", r))
	}
	body := fmt.Sprintf(`{"info": {"version": %q}, "releases": {%s}}`, latest, strings.Join(rel, ", "))
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		fmt.Fprint(rw, body) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	newIndex = func() *versions.Index {
		return &versions.Index{URL: srv.URL, Client: srv.Client()}
	}
}

// installVersion creates a cached environment for version and returns its
// binary path.
func (w *workspace) installVersion(t *testing.T, version string) string {
	t.Helper()
	bin := filepath.Join(w.home, "venvs", "mojo-"+version, "bin", "mojo")
	require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o755))
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	w.installed[bin] = version
	return bin
}

// saveResult stores a result set with the given mean per "category/name".
func (w *workspace) saveResult(t *testing.T, version string, at time.Time, means map[string]int64) string {
	t.Helper()
	set := results.New(version, testMachine.Map())
	set.Timestamp = at
	for label, ns := range means {
		category, name, _ := strings.Cut(label, "/")
		set.Add(results.Sample{Name: name, Category: category, SamplesNs: []int64{ns, ns, ns}})
	}
	path, err := results.NewStore(filepath.Join(w.dir, "results")).Save(set)
	require.NoError(t, err)
	return path
}

// runCLI runs the CLI with args and returns everything it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
