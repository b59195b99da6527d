// Package projectconfig provides the ProjectConfig struct and loader for
// .mojomark.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/hooks"
	"github.com/mojomark/mojomark/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the working
// directory upwards.
const FileName = ".mojomark.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultSamples = 10
	DefaultWarmup  = 3
	DefaultJobs    = 1

	DefaultReportFormat    = "both"
	DefaultReportOutputDir = "reports/"

	DefaultBenchmarksDir = "benchmarks/"
	DefaultResultsDir    = "results/"

	DefaultPublishPrefix = "mojomark/"
)

// BenchmarkConfig holds sampling parameters.
type BenchmarkConfig struct {
	Samples int  `yaml:"samples,omitempty"`
	Warmup  *int `yaml:"warmup,omitempty"`
	Jobs    int  `yaml:"jobs,omitempty"`
}

// ThresholdsConfig holds the regression classification boundaries in
// percent. Positive is slower.
type ThresholdsConfig struct {
	Stable   *float64 `yaml:"stable,omitempty"`
	Warning  *float64 `yaml:"warning,omitempty"`
	Improved *float64 `yaml:"improved,omitempty"`
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	Format    string `yaml:"format,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
}

// BenchmarksConfig points at user-defined templates.
type BenchmarksConfig struct {
	UserDir string `yaml:"user_dir,omitempty"`
}

// ResultsConfig holds result storage settings.
type ResultsConfig struct {
	Dir      string `yaml:"dir,omitempty"`
	Compress *bool  `yaml:"compress,omitempty"`
}

// PublishConfig holds Azure Blob Storage upload settings.
type PublishConfig struct {
	ContainerURL string `yaml:"container_url,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .mojomark.yaml.
type ProjectConfig struct {
	Benchmark  BenchmarkConfig  `yaml:"benchmark,omitempty"`
	Thresholds ThresholdsConfig `yaml:"thresholds,omitempty"`
	Report     ReportConfig     `yaml:"report,omitempty"`
	Benchmarks BenchmarksConfig `yaml:"benchmarks,omitempty"`
	Results    ResultsConfig    `yaml:"results,omitempty"`
	Publish    PublishConfig    `yaml:"publish,omitempty"`
	Hooks      hooks.Config     `yaml:"hooks,omitempty"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Benchmark: BenchmarkConfig{
			Samples: DefaultSamples,
			Warmup:  intPtr(DefaultWarmup),
			Jobs:    DefaultJobs,
		},
		Thresholds: ThresholdsConfig{
			Stable:   floatPtr(compare.DefaultStable),
			Warning:  floatPtr(compare.DefaultWarning),
			Improved: floatPtr(compare.DefaultImproved),
		},
		Report: ReportConfig{
			Format:    DefaultReportFormat,
			OutputDir: DefaultReportOutputDir,
		},
		Benchmarks: BenchmarksConfig{
			UserDir: DefaultBenchmarksDir,
		},
		Results: ResultsConfig{
			Dir:      DefaultResultsDir,
			Compress: boolPtr(false),
		},
		Publish: PublishConfig{
			Prefix: DefaultPublishPrefix,
		},
	}
}

// InvalidError reports a configuration file that does not match the
// configuration schema.
type InvalidError struct {
	Path     string
	Problems []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid %s:\n  %s", e.Path, strings.Join(e.Problems, "\n  "))
}

// Load finds .mojomark.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	fileCfg, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded project config", "path", path)
	// Merge file values onto defaults.
	mergeConfig(cfg, fileCfg)
	cfg.Path = path
	return cfg, nil
}

// Parse validates and decodes configuration file contents without applying
// defaults. path is only used in error messages.
func Parse(path string, data []byte) (*ProjectConfig, error) {
	if problems := validation.ValidateConfigBytes(data); len(problems) > 0 {
		return nil, &InvalidError{Path: path, Problems: problems}
	}
	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &fileCfg, nil
}

// findConfigFile walks up from dir looking for .mojomark.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing
// them.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Benchmark
	if src.Benchmark.Samples != 0 {
		dst.Benchmark.Samples = src.Benchmark.Samples
	}
	if src.Benchmark.Warmup != nil {
		dst.Benchmark.Warmup = src.Benchmark.Warmup
	}
	if src.Benchmark.Jobs != 0 {
		dst.Benchmark.Jobs = src.Benchmark.Jobs
	}

	// Thresholds
	if src.Thresholds.Stable != nil {
		dst.Thresholds.Stable = src.Thresholds.Stable
	}
	if src.Thresholds.Warning != nil {
		dst.Thresholds.Warning = src.Thresholds.Warning
	}
	if src.Thresholds.Improved != nil {
		dst.Thresholds.Improved = src.Thresholds.Improved
	}

	// Report
	if src.Report.Format != "" {
		dst.Report.Format = src.Report.Format
	}
	if src.Report.OutputDir != "" {
		dst.Report.OutputDir = src.Report.OutputDir
	}

	// Benchmarks
	if src.Benchmarks.UserDir != "" {
		dst.Benchmarks.UserDir = src.Benchmarks.UserDir
	}

	// Results
	if src.Results.Dir != "" {
		dst.Results.Dir = src.Results.Dir
	}
	if src.Results.Compress != nil {
		dst.Results.Compress = src.Results.Compress
	}

	// Publish
	if src.Publish.ContainerURL != "" {
		dst.Publish.ContainerURL = src.Publish.ContainerURL
	}
	if src.Publish.Prefix != "" {
		dst.Publish.Prefix = src.Publish.Prefix
	}

	// Hooks
	if len(src.Hooks.BeforeRun) > 0 {
		dst.Hooks.BeforeRun = src.Hooks.BeforeRun
	}
	if len(src.Hooks.AfterRun) > 0 {
		dst.Hooks.AfterRun = src.Hooks.AfterRun
	}
}

// Warmup returns the configured warmup count.
func (c *ProjectConfig) Warmup() int {
	if c.Benchmark.Warmup == nil {
		return DefaultWarmup
	}
	return *c.Benchmark.Warmup
}

// Compress reports whether result files are written with zstd.
func (c *ProjectConfig) Compress() bool {
	return c.Results.Compress != nil && *c.Results.Compress
}

// ThresholdValues returns the thresholds as a comparator parameter.
func (c *ProjectConfig) ThresholdValues() compare.Thresholds {
	t := compare.DefaultThresholds()
	if c.Thresholds.Stable != nil {
		t.Stable = *c.Thresholds.Stable
	}
	if c.Thresholds.Warning != nil {
		t.Warning = *c.Thresholds.Warning
	}
	if c.Thresholds.Improved != nil {
		t.Improved = *c.Thresholds.Improved
	}
	return t
}

// Resolve makes a configured path relative to the directory holding the
// configuration file. Absolute paths, and all paths when no file was
// loaded, are returned unchanged.
func (c *ProjectConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.Path), p)
}

// Overrides are values given on the command line. Nil fields leave the
// loaded configuration untouched.
type Overrides struct {
	Samples   *int
	Warmup    *int
	Jobs      *int
	Format    *string
	OutputDir *string
	Stable    *float64
	Warning   *float64
	Improved  *float64
	Compress  *bool
}

// Apply overlays o onto cfg field by field.
func (o Overrides) Apply(cfg *ProjectConfig) {
	if o.Samples != nil {
		cfg.Benchmark.Samples = *o.Samples
	}
	if o.Warmup != nil {
		cfg.Benchmark.Warmup = intPtr(*o.Warmup)
	}
	if o.Jobs != nil {
		cfg.Benchmark.Jobs = *o.Jobs
	}
	if o.Format != nil {
		cfg.Report.Format = *o.Format
	}
	if o.OutputDir != nil {
		cfg.Report.OutputDir = *o.OutputDir
	}
	if o.Stable != nil {
		cfg.Thresholds.Stable = floatPtr(*o.Stable)
	}
	if o.Warning != nil {
		cfg.Thresholds.Warning = floatPtr(*o.Warning)
	}
	if o.Improved != nil {
		cfg.Thresholds.Improved = floatPtr(*o.Improved)
	}
	if o.Compress != nil {
		cfg.Results.Compress = boolPtr(*o.Compress)
	}
}

// DefaultFileContents is written by "mojomark init".
func DefaultFileContents() string {
	return `# mojomark configuration
# Precedence: command-line flags > this file > built-in defaults.

benchmark:
  samples: 10
  warmup: 3
  jobs: 1

thresholds:
  # Percentage change boundaries for regression classification.
  # Positive = slower, negative = faster.
  stable: 3.0     # |delta| < stable   ->  OK
  warning: 10.0   # delta >= warning   ->  XX REGRESSION
  improved: -5.0  # delta <= improved  ->  >> improved

report:
  format: both    # markdown | html | junit | both | all | none
  output_dir: reports/

benchmarks:
  user_dir: benchmarks/

results:
  dir: results/
  compress: false # write .json.zst files

# publish:
#   container_url: https://<account>.blob.core.windows.net/<container>
#   prefix: mojomark/

# hooks:
#   before_run:
#     - command: sudo cpupower frequency-set -g performance
#   after_run:
#     - command: ./scripts/notify.sh
#       error_on_fail: true
`
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}
