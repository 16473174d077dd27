package record

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads the record at path. A missing file yields ErrNotFound; any
// other failure is returned as is, with malformed content reported through
// *MalformedError.
func Load(path string) (*TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open record: %w", err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck
	}()

	tc, err := Decode(f)
	if err != nil {
		var m *MalformedError
		if errors.As(err, &m) {
			m.Path = path
			return nil, m
		}
		return nil, fmt.Errorf("%s: read record: %w", path, err)
	}
	return tc, nil
}

// LoadOrEmpty is Load with ErrNotFound replaced by the empty record.
func LoadOrEmpty(path string) (*TestCase, error) {
	tc, err := Load(path)
	if errors.Is(err, ErrNotFound) {
		return Empty(), nil
	}
	return tc, err
}

// Save overwrites the record at path. The content is written to a temporary
// file in the same directory and renamed into place.
func Save(path string, tc *TestCase) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp) //nolint:errcheck
		}
	}()

	if err = Encode(f, tc); err != nil {
		_ = f.Close() //nolint:errcheck
		return fmt.Errorf("%s: encode record: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%s: close record: %w", path, err)
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("%s: chmod record: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%s: replace record: %w", path, err)
	}
	return nil
}
