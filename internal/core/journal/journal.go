// Package journal defines the record of approved edits kept across runs.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hay-kot/subassist/internal/core/review"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// Action describes what happened to a section.
type Action string

const (
	ActionApproved Action = "approved"
	ActionEdited   Action = "edited"
	ActionDeleted  Action = "deleted"
)

// Entry is one section changed during a run.
type Entry struct {
	ID        uuid.UUID
	RunID     string
	File      string
	Rule      string
	SectionID int
	Index     string
	Old       string
	New       string
	Action    Action
	CreatedAt time.Time
}

// Run summarizes one invocation of a rule over a set of files.
type Run struct {
	ID         string
	Rule       string
	Files      int
	Changes    int
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
}

// Finished reports whether the run completed.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// Store persists runs and their entries.
type Store interface {
	StartRun(ctx context.Context, run Run) error
	FinishRun(ctx context.Context, id string, files, changes int, at time.Time) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Record(ctx context.Context, entries []Entry) error
	ListByRun(ctx context.Context, runID string) ([]Entry, error)
	ListByFile(ctx context.Context, file string, limit int) ([]Entry, error)
}

// FromChanges converts session changes into journal entries stamped with at.
func FromChanges(runID, file, rule string, changes []review.Change, at time.Time) []Entry {
	entries := make([]Entry, 0, len(changes))
	for _, c := range changes {
		action := ActionApproved
		switch {
		case c.Deleted:
			action = ActionDeleted
		case c.Edited:
			action = ActionEdited
		}

		entries = append(entries, Entry{
			ID:        uuid.New(),
			RunID:     runID,
			File:      file,
			Rule:      rule,
			SectionID: c.SectionID,
			Index:     c.Index,
			Old:       c.Old,
			New:       c.New,
			Action:    action,
			CreatedAt: at,
		})
	}
	return entries
}
