package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hay-kot/subassist/internal/core/journal"
	"github.com/hay-kot/subassist/internal/data/db"
)

// JournalStore implements journal.Store using SQLite.
type JournalStore struct {
	db *db.DB
}

var _ journal.Store = (*JournalStore)(nil)

// NewJournalStore creates a new SQLite-backed journal store.
func NewJournalStore(db *db.DB) *JournalStore {
	return &JournalStore{db: db}
}

// StartRun records a new run.
func (s *JournalStore) StartRun(ctx context.Context, run journal.Run) error {
	_, err := s.db.Conn().ExecContext(ctx,
		"INSERT INTO runs (id, rule, files, changes, started_at) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.Rule, run.Files, run.Changes, run.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters of a run. Returns ErrNotFound if the
// run does not exist.
func (s *JournalStore) FinishRun(ctx context.Context, id string, files, changes int, at time.Time) error {
	res, err := s.db.Conn().ExecContext(ctx,
		"UPDATE runs SET files = ?, changes = ?, finished_at = ? WHERE id = ?",
		files, changes, at.UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return journal.ErrNotFound
	}
	return nil
}

// GetRun returns a run by ID. Returns ErrNotFound if not found.
func (s *JournalStore) GetRun(ctx context.Context, id string) (journal.Run, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		"SELECT id, rule, files, changes, started_at, finished_at FROM runs WHERE id = ?", id)

	run, err := scanRun(row)
	if IsNotFoundError(err) {
		return journal.Run{}, journal.ErrNotFound
	}
	if err != nil {
		return journal.Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *JournalStore) ListRuns(ctx context.Context, limit int) ([]journal.Run, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		"SELECT id, rule, files, changes, started_at, finished_at FROM runs ORDER BY started_at DESC LIMIT ?",
		sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []journal.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Record stores entries in a single transaction.
func (s *JournalStore) Record(ctx context.Context, entries []journal.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	return retryBusy(ctx, recordAttempts, func() error {
		return s.record(ctx, entries)
	})
}

// recordAttempts bounds retries when another process holds the write lock.
const recordAttempts = 4

func (s *JournalStore) record(ctx context.Context, entries []journal.Entry) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO journal_entries
				(id, run_id, file, rule, section_id, idx, old_text, new_text, action, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare journal insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range entries {
			_, err := stmt.ExecContext(ctx,
				e.ID.String(), e.RunID, e.File, e.Rule, e.SectionID, e.Index,
				e.Old, e.New, string(e.Action), e.CreatedAt.UnixNano(),
			)
			if err != nil {
				return fmt.Errorf("failed to record entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

const entryColumns = "id, run_id, file, rule, section_id, idx, old_text, new_text, action, created_at"

// ListByRun returns the entries of a run in the order they were recorded.
func (s *JournalStore) ListByRun(ctx context.Context, runID string) ([]journal.Entry, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		"SELECT "+entryColumns+" FROM journal_entries WHERE run_id = ? ORDER BY created_at, rowid",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for run: %w", err)
	}
	return collectEntries(rows)
}

// ListByFile returns the newest entries for a file first.
func (s *JournalStore) ListByFile(ctx context.Context, file string, limit int) ([]journal.Entry, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		"SELECT "+entryColumns+" FROM journal_entries WHERE file = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		file, sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for file: %w", err)
	}
	return collectEntries(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (journal.Run, error) {
	var (
		run      journal.Run
		started  int64
		finished sql.NullInt64
	)
	if err := row.Scan(&run.ID, &run.Rule, &run.Files, &run.Changes, &started, &finished); err != nil {
		return journal.Run{}, err
	}

	run.StartedAt = time.Unix(0, started)
	if finished.Valid {
		run.FinishedAt = time.Unix(0, finished.Int64)
	}
	return run, nil
}

func collectEntries(rows *sql.Rows) ([]journal.Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []journal.Entry
	for rows.Next() {
		var (
			e       journal.Entry
			id      string
			action  string
			created int64
		)
		err := rows.Scan(&id, &e.RunID, &e.File, &e.Rule, &e.SectionID, &e.Index,
			&e.Old, &e.New, &action, &created)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		e.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entry id %q: %w", id, err)
		}
		e.Action = journal.Action(action)
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
