package review

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQueue    = errors.New("no sections match the rule")
	ErrNotRunning    = errors.New("review session is not awaiting a decision")
	ErrStaleItem     = errors.New("queued section no longer exists")
	ErrMalformedEdit = errors.New("malformed edit")
)

// MalformedEditError reports edited text that cannot be split into index,
// time and text fields. It matches ErrMalformedEdit with errors.Is.
type MalformedEditError struct {
	Payload int // 0-based block within the edit
	Reason  string
}

func (e *MalformedEditError) Error() string {
	return fmt.Sprintf("%s: block %d: %s", ErrMalformedEdit, e.Payload+1, e.Reason)
}

func (e *MalformedEditError) Unwrap() error {
	return ErrMalformedEdit
}
