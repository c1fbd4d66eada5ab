package subtitle

import (
	"errors"
	"fmt"
)

// Sentinel errors for document operations.
var (
	ErrParse           = errors.New("malformed subtitle file")
	ErrSectionNotFound = errors.New("section not found")
	ErrTimestamp       = errors.New("invalid timestamp")
)

// ParseError describes why a file could not be loaded. It matches ErrParse
// with errors.Is.
type ParseError struct {
	Line   int // 1-based physical line, 0 when the error concerns the whole file
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", ErrParse, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrParse, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}
