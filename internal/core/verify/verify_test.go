package verify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overlapping = `1
00:00:01,000 --> 00:00:03,000
Hello there

2
00:00:02,500 --> 00:00:04,000
- General Kenobi!

3
00:00:05,000 --> 00:00:06,250
...you are a bold one.
`

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFile(t *testing.T) {
	for _, name := range []string{"movie.srt", "movie.str"} {
		t.Run(name, func(t *testing.T) {
			path := write(t, name, overlapping)

			r, err := File(path)
			require.NoError(t, err)
			assert.Equal(t, path, r.Path)
			assert.Equal(t, 3, r.Items)
			assert.Equal(t, 1, r.Overlaps)
			assert.Equal(t, 6250*time.Millisecond, r.Duration)
		})
	}
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "gone.srt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFile_UnknownExtension(t *testing.T) {
	_, err := File(write(t, "movie.doc", overlapping))
	assert.Error(t, err)
}
