package assist

import (
	"errors"
	"fmt"

	"github.com/hay-kot/subassist/internal/core/charset"
	"github.com/hay-kot/subassist/internal/core/review"
	"github.com/hay-kot/subassist/internal/core/verify"
)

// ErrFileMissing is reported for queued paths that no longer exist.
var ErrFileMissing = errors.New("file missing")

// Status is the outcome of one file.
type Status string

const (
	StatusWritten   Status = "written"
	StatusNoMatches Status = "no-matches"
	StatusMissing   Status = "missing"
	StatusFailed    Status = "failed"
	StatusAborted   Status = "aborted"
)

// FileResult describes what happened to one file of the batch.
type FileResult struct {
	Path    string
	Output  string
	Status  Status
	Input   charset.Info
	Dropped int // characters the output encoding could not represent
	Changes []review.Change
	Verify  *verify.Report
	Err     error
}

// Summary describes a finished batch.
type Summary struct {
	RunID string
	Rule  string
	Files []FileResult
	Quit  bool
}

// Changes counts the changes applied across every file.
func (s Summary) Changes() int {
	n := 0
	for _, f := range s.Files {
		n += len(f.Changes)
	}
	return n
}

// Count returns the number of files with the given status.
func (s Summary) Count(status Status) int {
	n := 0
	for _, f := range s.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

func (s Summary) String() string {
	return fmt.Sprintf("%d file(s), %d written, %d change(s)", len(s.Files), s.Count(StatusWritten), s.Changes())
}
