package fixture

import (
	"fmt"
	"os"
)

// TargetKind tells what a run or update target points at.
type TargetKind uint8

const (
	TargetFile TargetKind = iota + 1
	TargetDir
)

// InvalidTargetError reports a target that is neither a file nor a directory.
type InvalidTargetError struct {
	Path string
	Err  error
}

func (e *InvalidTargetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid target %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid target %q: not a file or directory", e.Path)
}

func (e *InvalidTargetError) Unwrap() error {
	return e.Err
}

// Resolve classifies target, following symbolic links.
func Resolve(target string) (TargetKind, error) {
	info, err := os.Stat(target)
	if err != nil {
		return 0, &InvalidTargetError{Path: target, Err: err}
	}
	switch {
	case info.IsDir():
		return TargetDir, nil
	case info.Mode().IsRegular():
		return TargetFile, nil
	default:
		return 0, &InvalidTargetError{Path: target}
	}
}
