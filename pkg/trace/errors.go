package trace

import (
	"errors"
	"fmt"
)

// ErrFieldCount is returned for a line that does not hold exactly two fields.
var ErrFieldCount = errors.New("expected 2 tab-separated fields")

// ParseError describes a malformed line in a trace file.
type ParseError struct {
	Line int    // 1-based line number
	Text string // Offending line, whitespace trimmed
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newReadError(path string, err error) error {
	return fmt.Errorf("failed to read trace %q: %w", path, err)
}
