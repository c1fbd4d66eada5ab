package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/subassist/internal/core/config"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	return cfg
}

func statuses(r Result) map[string]Status {
	out := make(map[string]Status, len(r.Items))
	for _, item := range r.Items {
		out[item.Label] = item.Status
	}
	return out
}

func TestSummary(t *testing.T) {
	results := []Result{
		{Items: []CheckItem{{Status: StatusPass}, {Status: StatusWarn}}},
		{Items: []CheckItem{{Status: StatusFail}, {Status: StatusPass}}},
	}

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
}

func TestConfigCheck(t *testing.T) {
	cfg := defaultConfig(t)
	result := NewConfigCheck(cfg, filepath.Join(t.TempDir(), "config.yaml")).Run(context.Background())

	got := statuses(result)
	assert.Equal(t, StatusPass, got["config file"])
	assert.Equal(t, StatusPass, got["validation"])
	assert.Equal(t, StatusWarn, got["correct_extension"])
}

func TestConfigCheck_Invalid(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Output.Encoding = "klingon"

	result := NewConfigCheck(cfg, "").Run(context.Background())

	assert.Equal(t, StatusFail, statuses(result)["output.encoding"])
}

func TestEncodingCheck(t *testing.T) {
	cfg := defaultConfig(t)
	result := NewEncodingCheck(cfg).Run(context.Background())
	assert.Equal(t, map[string]Status{"output": StatusPass, "input": StatusPass}, statuses(result))

	off := false
	cfg.Input.DetectCharset = &off
	cfg.Output.Encoding = "nope"
	result = NewEncodingCheck(cfg).Run(context.Background())
	assert.Equal(t, map[string]Status{"output": StatusFail, "input": StatusWarn}, statuses(result))
}

func TestDataDirCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name string
		dir  string
		want Status
	}{
		{name: "writable", dir: dir, want: StatusPass},
		{name: "missing", dir: filepath.Join(dir, "nope"), want: StatusWarn},
		{name: "file", dir: file, want: StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewDataDirCheck(tt.dir).Run(context.Background())
			require.Len(t, result.Items, 1)
			assert.Equal(t, tt.want, result.Items[0].Status)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "probe file is removed")
}

type fakeSchema struct {
	version int
	err     error
}

func (f fakeSchema) SchemaVersion(context.Context) (int, error) { return f.version, f.err }

func TestJournalCheck(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		db      SchemaReader
		want    Status
	}{
		{name: "disabled", enabled: false, want: StatusWarn},
		{name: "not open", enabled: true, want: StatusFail},
		{name: "current", enabled: true, db: fakeSchema{version: 2}, want: StatusPass},
		{name: "behind", enabled: true, db: fakeSchema{version: 1}, want: StatusFail},
		{name: "error", enabled: true, db: fakeSchema{err: errors.New("locked")}, want: StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewJournalCheck(tt.enabled, tt.db, 2).Run(context.Background())
			require.Len(t, result.Items, 1)
			assert.Equal(t, tt.want, result.Items[0].Status)
		})
	}
}

func TestRunAll(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		NewDataDirCheck(t.TempDir()),
		NewJournalCheck(false, nil, 2),
	})

	require.Len(t, results, 2)
	assert.Equal(t, "Data Directory", results[0].Name)
	assert.Equal(t, "Journal", results[1].Name)
}
