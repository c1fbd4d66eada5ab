package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func openRawConn(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", dbPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newTestMigrator(t *testing.T, conn *sql.DB) *Migrator {
	t.Helper()
	m, err := NewMigrator(conn, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestMigrateUp_FreshDB(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// Verify schema_migrations has all versions recorded.
	rows, err := database.Conn().QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var versions []int
	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		versions = append(versions, v)
	}
	require.NoError(t, rows.Err())

	migrations, err := loadMigrations(migrationsFS, migrationsDir)
	require.NoError(t, err)

	require.Len(t, versions, len(migrations))
	for i, m := range migrations {
		assert.Equal(t, m.Version, versions[i])
	}

	_, err = database.Conn().ExecContext(ctx, "SELECT 1 FROM journal_entries LIMIT 0")
	require.NoError(t, err, "journal_entries table should exist")

	_, err = database.Conn().ExecContext(ctx, "SELECT 1 FROM runs LIMIT 0")
	require.NoError(t, err, "runs table should exist")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	n, err := newTestMigrator(t, database.Conn()).Up(ctx)
	require.NoError(t, err, "second Up should be idempotent")
	assert.Zero(t, n)
}

func TestMigrateUp_RawConn(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	n, err := newTestMigrator(t, conn).Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	applied, err := appliedVersions(ctx, conn)
	require.NoError(t, err)
	assert.True(t, applied[1])
	assert.True(t, applied[2])
}

func TestMigrateDown(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	conn := database.Conn()

	_, err := conn.ExecContext(ctx, `
		INSERT INTO journal_entries (id, run_id, file, rule, section_id, idx, old_text, new_text, action, created_at)
		VALUES ('e-1', 'run-1', 'a.srt', 'dash-space', 3, '3', 'old', 'new', 'approved', 1)
	`)
	require.NoError(t, err)

	// Revert the last migration (runs).
	err = newTestMigrator(t, conn).Down(ctx, 1)
	require.NoError(t, err)

	_, err = conn.ExecContext(ctx, "SELECT 1 FROM runs LIMIT 0")
	require.Error(t, err, "runs should not exist after down migration")

	var count int
	err = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM journal_entries").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "journal row should be preserved")
}

func TestWithTx_Rollback(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	err := database.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO runs (id, rule, started_at) VALUES ('r-1', 'dash-space', 1)")
		require.NoError(t, err)
		return fmt.Errorf("boom")
	})
	require.EqualError(t, err, "boom")

	var count int
	require.NoError(t, database.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestMigrateDown_InvalidN(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	m := newTestMigrator(t, conn)
	err := m.Down(ctx, 0)
	require.Error(t, err, "n=0 should fail")

	err = m.Down(ctx, -1)
	require.Error(t, err, "n=-1 should fail")
}

func TestMigrateDown_TooMany(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	migrations, err := loadMigrations(migrationsFS, migrationsDir)
	require.NoError(t, err)

	err = newTestMigrator(t, database.Conn()).Down(ctx, len(migrations)+1)
	assert.Error(t, err, "requesting more down migrations than applied should fail")
}

func TestLoadMigrations_Valid(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	// Verify ascending version order.
	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].Version, migrations[i-1].Version,
			"migrations should be in ascending version order")
	}

	// Every migration must have both up and down SQL.
	for _, m := range migrations {
		assert.NotEmpty(t, m.UpSQL, "migration %d up SQL should not be empty", m.Version)
		assert.NotEmpty(t, m.DownSQL, "migration %d down SQL should not be empty", m.Version)
		assert.NotEmpty(t, m.Name, "migration %d name should not be empty", m.Version)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename      string
		wantVersion   int
		wantName      string
		wantDirection string
		wantErr       bool
	}{
		{"0001_initial.up.sql", 1, "initial", "up", false},
		{"0001_initial.down.sql", 1, "initial", "down", false},
		{"0002_runs.up.sql", 2, "runs", "up", false},
		{"0100_big_version.down.sql", 100, "big_version", "down", false},
		{"bad.sql", 0, "", "", true},
		{"0001_initial.sql", 0, "", "", true},
		{"0000_zero.up.sql", 0, "", "", true},
		{"-1_negative.up.sql", 0, "", "", true},
		{"abc_notnumber.up.sql", 0, "", "", true},
		{"0001_.up.sql", 0, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, direction, err := parseFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantDirection, direction)
		})
	}
}

func TestSchemaVersion(t *testing.T) {
	database := openTestDB(t)

	latest, err := LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, latest)

	got, err := database.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, latest, got)
}

func TestMigrator_LogsToInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	database, err := Open(t.TempDir(), OpenOptions{MaxOpenConns: 1, MaxIdleConns: 1, BusyTimeout: 1000, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	var messages []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		messages = append(messages, entry["message"].(string))
	}
	assert.Equal(t, []string{"applying migration", "applying migration", "journal schema migrated"}, messages)

	buf.Reset()
	m, err := NewMigrator(database.Conn(), log)
	require.NoError(t, err)
	require.NoError(t, m.Down(context.Background(), 1))
	assert.Contains(t, buf.String(), `"message":"reverting migration"`)
	assert.Contains(t, buf.String(), `"version":2`)
}

func TestLoadMigrations_Invalid(t *testing.T) {
	file := func(body string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(body)} }

	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr string
	}{
		{
			name:    "missing down",
			files:   fstest.MapFS{"m/0001_a.up.sql": file("CREATE TABLE a (id INTEGER)")},
			wantErr: "no down file",
		},
		{
			name:    "missing up",
			files:   fstest.MapFS{"m/0001_a.down.sql": file("DROP TABLE a")},
			wantErr: "no up file",
		},
		{
			name: "mismatched names",
			files: fstest.MapFS{
				"m/0001_a.up.sql":   file("CREATE TABLE a (id INTEGER)"),
				"m/0001_b.down.sql": file("DROP TABLE a"),
			},
			wantErr: "mismatched names",
		},
		{
			name:    "bad filename",
			files:   fstest.MapFS{"m/readme.txt": file("notes")},
			wantErr: "invalid migration filename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMigrations(tt.files, "m")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	files := fstest.MapFS{
		"m/0010_c.up.sql":   {Data: []byte("c up")},
		"m/0010_c.down.sql": {Data: []byte("c down")},
		"m/0002_b.up.sql":   {Data: []byte("b up")},
		"m/0002_b.down.sql": {Data: []byte("b down")},
	}

	migrations, err := loadMigrations(files, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, Migration{Version: 2, Name: "b", UpSQL: "b up", DownSQL: "b down"}, migrations[0])
	assert.Equal(t, 10, migrations[1].Version)
}
