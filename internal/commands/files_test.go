package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("1\n00:00:01,000 --> 00:00:02,000\nHi\n"), 0o644))
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.srt"))
	touch(t, filepath.Join(dir, "a.srt"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "season1", "e01.srt"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty.srt"), 0o755))

	j := func(parts ...string) string { return filepath.Join(append([]string{dir}, parts...)...) }

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "glob is sorted and skips directories",
			args: []string{j("*.srt")},
			want: []string{j("a.srt"), j("b.srt")},
		},
		{
			name: "double star descends",
			args: []string{j("**", "*.srt")},
			want: []string{j("a.srt"), j("b.srt"), j("season1", "e01.srt")},
		},
		{
			name: "plain paths keep argument order",
			args: []string{j("b.srt"), j("a.srt")},
			want: []string{j("b.srt"), j("a.srt")},
		},
		{
			name: "missing plain path is kept",
			args: []string{j("gone.srt")},
			want: []string{j("gone.srt")},
		},
		{
			name: "duplicates dropped",
			args: []string{j("a.srt"), j("*.srt")},
			want: []string{j("a.srt"), j("b.srt")},
		},
		{
			name:    "pattern without matches",
			args:    []string{j("*.vtt")},
			wantErr: true,
		},
		{
			name:    "no arguments",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandFiles(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasMeta(t *testing.T) {
	assert.True(t, hasMeta("*.srt"))
	assert.True(t, hasMeta("ep{1,2}.srt"))
	assert.True(t, hasMeta("ep?.srt"))
	assert.False(t, hasMeta("movie.srt"))
}

func TestRunPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    RunPlan
		field string
	}{
		{name: "valid", plan: RunPlan{Rule: "sanitize", Files: []string{"a.srt"}}},
		{name: "no files", plan: RunPlan{Rule: "sanitize"}, field: "files"},
		{name: "no rule", plan: RunPlan{Files: []string{"a.srt"}}, field: "rule"},
		{name: "blank file", plan: RunPlan{Rule: "sanitize", Files: []string{"a.srt", " "}}, field: "files[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var fes criterio.FieldErrors
			require.ErrorAs(t, err, &fes)
			require.Len(t, fes, 1)
			assert.Equal(t, tt.field, fes[0].Field)
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "Hello / World", summarize("1\n00:00:01,000 --> 00:00:02,000\nHello\nWorld"))
	long := "1\n00:00:01,000 --> 00:00:02,000\n" + "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabc"
	got := summarize(long)
	assert.Len(t, []rune(got), 60)
	assert.Contains(t, got, "...")
}
