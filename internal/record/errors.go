package record

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no record exists for a fixture and subcommand.
// Callers treat it as "nothing recorded yet", not as a failure.
var ErrNotFound = errors.New("record not found")

// MalformedError describes a record whose content does not follow the schema.
type MalformedError struct {
	Path   string // empty when decoding from memory
	Field  string // field being read when decoding stopped
	Offset int64  // byte offset of the offending field
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: malformed record at byte %d (field %s): %s", e.Path, e.Offset, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed record at byte %d (field %s): %s", e.Offset, e.Field, e.Reason)
}
