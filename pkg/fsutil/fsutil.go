// Package fsutil contains file writing helpers.
package fsutil

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
)

// defaultPerm is the mode given to files that do not exist yet.
const defaultPerm os.FileMode = 0o644

// WriteFile writes data to path, keeping the mode of an existing file. New
// files get 0o644. When atomic is set the data goes to a temp file in the same
// directory that is synced and renamed over path, so readers never observe a
// partially written file.
func WriteFile(path string, data []byte, atomic bool) error {
	perm := defaultPerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if !atomic {
		return os.WriteFile(path, data, perm)
	}
	if err := renameio.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	return nil
}
