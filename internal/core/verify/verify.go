// Package verify re-reads written subtitle files with an independent parser.
package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
)

// Report summarizes a file that parsed cleanly.
type Report struct {
	Path     string
	Items    int
	Overlaps int           // cues starting before the previous cue ends
	Duration time.Duration // end of the last cue
}

// File parses path and reports what was found. Files with the legacy .str
// extension are read as SubRip.
func File(path string) (Report, error) {
	subs, err := open(path)
	if err != nil {
		return Report{}, fmt.Errorf("verify %s: %w", path, err)
	}

	r := Report{Path: path, Items: len(subs.Items)}
	var prev *astisub.Item
	for _, item := range subs.Items {
		if prev != nil && item.StartAt < prev.EndAt {
			r.Overlaps++
		}
		r.Duration = max(r.Duration, item.EndAt)
		prev = item
	}
	return r, nil
}

func open(path string) (*astisub.Subtitles, error) {
	if !strings.EqualFold(filepath.Ext(path), ".str") {
		return astisub.OpenFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return astisub.ReadFromSRT(f)
}
