// Package cache keeps compiled benchmark binaries so repeated runs of the
// same generated source against the same compiler skip the build step.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Cache stores binaries in a flat directory keyed by content hash.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory. An empty
// dir disables caching.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key identifies one build. It covers:
// - the compiler binary
// - the compiler version
// - the generated source
func Key(compiler, version, source string) (string, error) {
	h := sha256.New()
	for _, s := range []string{compiler, version, source} {
		if err := writeString(h, s); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the path of a cached binary.
func (c *Cache) Get(key string) (string, bool) {
	if c.dir == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.binaryPath(key)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return "", false
	}
	return path, true
}

// Put copies the binary at src into the cache and returns the cached path.
func (c *Cache) Put(key, src string) (string, error) {
	if c.dir == "" {
		return src, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	// Other processes may share the directory, so each writer gets its own
	// temporary file and the rename publishes it.
	tmp, err := os.CreateTemp(c.dir, key+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("writing cache entry: %w", err)
	}
	if err := fillFile(tmp, src); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing cache entry: %w", err)
	}
	dst := c.binaryPath(key)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing cache entry: %w", err)
	}
	return dst, nil
}

// Clear removes all cached binaries.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Only remove directories that look like a build cache.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if !isKey(entry.Name()) && !isLeftover(entry.Name()) {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

func (c *Cache) binaryPath(key string) string {
	return filepath.Join(c.dir, key)
}

func isKey(name string) bool {
	if len(name) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// isLeftover matches temporary files abandoned by an interrupted Put.
func isLeftover(name string) bool {
	key, rest, ok := strings.Cut(name, "-")
	return ok && isKey(key) && strings.HasSuffix(rest, ".tmp")
}

func writeString(w io.Writer, s string) error {
	// Write string with null byte delimiter to prevent hash collisions
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

// fillFile copies src into out, marks it executable and closes it.
func fillFile(out *os.File, src string) error {
	in, err := os.Open(src)
	if err != nil {
		out.Close() //nolint:errcheck
		return err
	}
	defer in.Close() //nolint:errcheck

	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return err
	}
	if err := out.Chmod(0755); err != nil {
		out.Close() //nolint:errcheck
		return err
	}
	return out.Close()
}
