package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/subassist/internal/core/journal"
	"github.com/hay-kot/subassist/internal/data/db"
)

func newTestJournalStore(t *testing.T) *JournalStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewJournalStore(database)
}

func entry(runID, file string, section int, at time.Time) journal.Entry {
	return journal.Entry{
		ID:        uuid.New(),
		RunID:     runID,
		File:      file,
		Rule:      "dash-space",
		SectionID: section,
		Index:     "1",
		Old:       "1\n00:00:01,000 --> 00:00:02,000\n-Hi",
		New:       "1\n00:00:01,000 --> 00:00:02,000\n- Hi",
		Action:    journal.ActionApproved,
		CreatedAt: at,
	}
}

func TestJournalStore_Runs(t *testing.T) {
	ctx := context.Background()
	store := newTestJournalStore(t)
	base := time.Unix(1700000000, 0)

	require.NoError(t, store.StartRun(ctx, journal.Run{ID: "old", Rule: "trim", StartedAt: base}))
	require.NoError(t, store.StartRun(ctx, journal.Run{ID: "new", Rule: "dash-space", StartedAt: base.Add(time.Minute)}))

	got, err := store.GetRun(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "dash-space", got.Rule)
	assert.False(t, got.Finished())

	require.NoError(t, store.FinishRun(ctx, "new", 2, 5, base.Add(2*time.Minute)))
	got, err = store.GetRun(ctx, "new")
	require.NoError(t, err)
	assert.True(t, got.Finished())
	assert.Equal(t, 2, got.Files)
	assert.Equal(t, 5, got.Changes)
	assert.True(t, got.FinishedAt.Equal(base.Add(2*time.Minute)))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)

	runs, err = store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestJournalStore_RunNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestJournalStore(t)

	_, err := store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, journal.ErrNotFound)

	err = store.FinishRun(ctx, "missing", 0, 0, time.Now())
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestJournalStore_Entries(t *testing.T) {
	ctx := context.Background()
	store := newTestJournalStore(t)
	base := time.Unix(1700000000, 0)

	first := entry("run1", "a.srt", 1, base)
	second := entry("run1", "b.srt", 2, base.Add(time.Second))
	second.Action = journal.ActionDeleted
	third := entry("run2", "a.srt", 3, base.Add(time.Hour))

	require.NoError(t, store.Record(ctx, []journal.Entry{first, second}))
	require.NoError(t, store.Record(ctx, []journal.Entry{third}))
	require.NoError(t, store.Record(ctx, nil))

	byRun, err := store.ListByRun(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, byRun, 2)
	assert.Equal(t, first.ID, byRun[0].ID)
	assert.Equal(t, first.Old, byRun[0].Old)
	assert.Equal(t, first.New, byRun[0].New)
	assert.Equal(t, journal.ActionDeleted, byRun[1].Action)
	assert.True(t, byRun[1].CreatedAt.Equal(second.CreatedAt))

	byFile, err := store.ListByFile(ctx, "a.srt", 0)
	require.NoError(t, err)
	require.Len(t, byFile, 2)
	assert.Equal(t, third.ID, byFile[0].ID, "newest first")

	byFile, err = store.ListByFile(ctx, "a.srt", 1)
	require.NoError(t, err)
	assert.Len(t, byFile, 1)

	none, err := store.ListByRun(ctx, "run3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournalStore_RecordDuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestJournalStore(t)

	e := entry("run1", "a.srt", 1, time.Now())
	require.Error(t, store.Record(ctx, []journal.Entry{entry("run1", "a.srt", 2, time.Now()), e, e}))

	got, err := store.ListByRun(ctx, "run1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
