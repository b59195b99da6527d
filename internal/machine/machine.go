// Package machine captures a fingerprint of the host so results from
// different machines are not compared blindly.
package machine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

const probeTimeout = 5 * time.Second

// Info describes the host a result set was recorded on.
type Info struct {
	CPU          string  `mapstructure:"cpu"`
	Cores        int     `mapstructure:"cores"`
	RAMGB        float64 `mapstructure:"ram_gb"`
	OS           string  `mapstructure:"os"`
	Arch         string  `mapstructure:"arch"`
	HostnameHash string  `mapstructure:"hostname_hash"`
}

type commandFunc func(ctx context.Context, name string, args ...string) (string, error)

type prober struct {
	goos     string
	goarch   string
	hostname func() (string, error)
	command  commandFunc
}

// Capture probes the current host. Missing tools degrade to "unknown" or
// zero values instead of failing.
func Capture(ctx context.Context) Info {
	return prober{
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
		hostname: os.Hostname,
		command:  runCommand,
	}.capture(ctx)
}

func (p prober) capture(ctx context.Context) Info {
	host, _ := p.hostname()
	return Info{
		CPU:          p.cpuName(ctx),
		Cores:        runtime.NumCPU(),
		RAMGB:        math.Round(p.ramGB(ctx)*10) / 10,
		OS:           p.osName(ctx),
		Arch:         archName(p.goos, p.goarch),
		HostnameHash: HashHostname(host),
	}
}

func (p prober) cpuName(ctx context.Context) string {
	switch p.goos {
	case "darwin":
		if out, err := p.command(ctx, "sysctl", "-n", "machdep.cpu.brand_string"); err == nil && strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		}
	case "linux":
		if out, err := p.command(ctx, "lscpu"); err == nil {
			if name := parseLscpu(out); name != "" {
				return name
			}
		}
	}
	return "unknown"
}

func (p prober) ramGB(ctx context.Context) float64 {
	switch p.goos {
	case "darwin":
		if out, err := p.command(ctx, "sysctl", "-n", "hw.memsize"); err == nil {
			if b, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64); err == nil {
				return float64(b) / (1 << 30)
			}
		}
	case "linux":
		if out, err := p.command(ctx, "free", "-b"); err == nil {
			if b, ok := parseFree(out); ok {
				return float64(b) / (1 << 30)
			}
		}
	}
	return 0
}

func (p prober) osName(ctx context.Context) string {
	if out, err := p.command(ctx, "uname", "-sr"); err == nil && strings.TrimSpace(out) != "" {
		return strings.TrimSpace(out)
	}
	return p.goos
}

func parseLscpu(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Model name:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Model name:"))
		}
	}
	return ""
}

func parseFree(out string) (int64, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Mem:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		b, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return b, true
	}
	return 0, false
}

// archName reports the architecture the way uname does.
func archName(goos, goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		if goos == "linux" {
			return "aarch64"
		}
		return "arm64"
	case "386":
		return "i386"
	}
	return goarch
}

// HashHostname returns the first 12 hex characters of the SHA-256 of name.
func HashHostname(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])[:12]
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// Map converts i to the generic form stored in result files.
func (i Info) Map() map[string]any {
	return map[string]any{
		"cpu":           i.CPU,
		"cores":         i.Cores,
		"ram_gb":        i.RAMGB,
		"os":            i.OS,
		"arch":          i.Arch,
		"hostname_hash": i.HostnameHash,
	}
}

// FromMap decodes a stored machine block. Unknown keys are ignored and
// numbers decoded from JSON are converted as needed.
func FromMap(m map[string]any) (Info, error) {
	var info Info
	if len(m) == 0 {
		return info, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &info,
	})
	if err != nil {
		return info, err
	}
	if err := dec.Decode(m); err != nil {
		return info, fmt.Errorf("decoding machine info: %w", err)
	}
	return info, nil
}

// Summary renders a one-line description.
func (i Info) Summary() string {
	return fmt.Sprintf("%s, %d cores, %.1fGB RAM, %s (%s)", i.CPU, i.Cores, i.RAMGB, i.OS, i.Arch)
}

// Empty reports whether no fingerprint was recorded.
func (i Info) Empty() bool {
	return i == Info{}
}

// Match reports whether a and b are likely the same machine. RAM and OS
// version may change between runs and are not compared.
func Match(a, b Info) bool {
	return a.HostnameHash == b.HostnameHash && a.CPU == b.CPU && a.Cores == b.Cores
}
