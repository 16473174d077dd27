package report

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Increment when LastRun changes shape.
const lastRunSchema uint16 = 1

// LastRun remembers which fixtures failed in the previous run of a project.
type LastRun struct {
	Schema      uint16
	Root        string
	Target      string
	FailedFiles []string
	Finished    time.Time
}

// Cache stores LastRun entries under the user cache directory, one file per
// project root.
type Cache struct {
	dir string
}

// OpenCache returns the cache at $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCacheDir(filepath.Join(base, app))
}

// OpenCacheDir returns a cache rooted at dir.
func OpenCacheDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(c.dir, "runs", hex.EncodeToString(sum[:])+".mp")
}

// Put stores run as the last run of run.Root.
func (c *Cache) Put(run *LastRun) error {
	if c == nil {
		return nil
	}
	p := c.pathFor(run.Root)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name()) //nolint:errcheck
	}()

	stored := *run
	stored.Schema = lastRunSchema
	if err := msgpack.NewEncoder(f).Encode(&stored); err != nil {
		_ = f.Close() //nolint:errcheck
		return fmt.Errorf("encode last run: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the last run of root. Missing entries and entries written by a
// different schema report false.
func (c *Cache) Get(root string) (*LastRun, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	f, err := os.Open(c.pathFor(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		_ = f.Close() //nolint:errcheck
	}()

	var run LastRun
	if err := msgpack.NewDecoder(f).Decode(&run); err != nil {
		return nil, false, fmt.Errorf("decode last run: %w", err)
	}
	if run.Schema != lastRunSchema {
		return nil, false, nil
	}
	return &run, true, nil
}

// Failed returns the fixtures that failed last time, deduplicated and in
// their original order. Fixtures that no longer exist are dropped.
func (r *LastRun) Failed() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.FailedFiles))
	out := make([]string, 0, len(r.FailedFiles))
	for _, path := range r.FailedFiles {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		out = append(out, path)
	}
	return out
}
