// Package fixture discovers test fixtures on disk.
package fixture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExt is the extension that marks a source file as a fixture.
const DefaultExt = ".yt"

// ErrNotFixture is returned when a path does not name a fixture file.
var ErrNotFixture = errors.New("not a fixture file")

// IsFixture reports whether the file name carries the fixture extension.
func IsFixture(path, ext string) bool {
	return ext != "" && strings.HasSuffix(path, ext)
}

// CheckFile verifies that path is an existing regular file with the
// fixture extension.
func CheckFile(path, ext string) error {
	if !IsFixture(path, ext) {
		return fmt.Errorf("%s: %w (want *%s)", path, ErrNotFixture, ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w (not a regular file)", path, ErrNotFixture)
	}
	return nil
}

// VisitFunc is called once per fixture found by Walk.
type VisitFunc func(path string) error

// Walk visits every fixture under root depth-first. Entries of a directory
// are visited in lexical order; symbolic links are followed, and a directory
// already entered through another path is skipped. The first error returned
// by visit stops the walk.
func Walk(root, ext string, visit VisitFunc) error {
	w := walker{ext: ext, visit: visit, seen: make(map[string]struct{})}
	return w.dir(root)
}

type walker struct {
	ext   string
	visit VisitFunc
	seen  map[string]struct{}
}

func (w *walker) dir(dir string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	if _, ok := w.seen[resolved]; ok {
		return nil
	}
	w.seen[resolved] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := joinPath(dir, entry.Name())
		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				// Dangling link.
				continue
			}
			mode = info.Mode().Type()
		}
		switch {
		case mode.IsDir():
			if err := w.dir(path); err != nil {
				return err
			}
		case mode.IsRegular() && IsFixture(path, w.ext):
			if err := w.visit(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// joinPath appends name to dir without cleaning dir, so a root given as
// "./Example/" yields "./Example/x.yt". The compiler echoes the path it was
// given and recorded output depends on that exact spelling.
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) || strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}

// Collect returns every fixture under root in walk order.
func Collect(root, ext string) ([]string, error) {
	var out []string
	err := Walk(root, ext, func(path string) error {
		out = append(out, path)
		return nil
	})
	return out, err
}
