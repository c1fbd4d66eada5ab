// Package subtitle defines the subtitle document model: timed sections,
// the block parser and the serializer that writes documents back to text.
package subtitle

import (
	"slices"
	"strings"
)

// Section is one timed caption block.
//
// ID is assigned when the section enters a Document and never changes, so it
// stays valid across renumbering and deletions. Index is the display number
// read from (or synthesized for) the source file.
type Section struct {
	ID         int
	Index      string
	Time       string
	Lines      []string
	SourceLine int // 1-based physical line of the block in the source file
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	s.Lines = slices.Clone(s.Lines)
	return s
}

// Render returns the section exactly as it is written to disk.
func (s Section) Render() string {
	return RenderSection(s.Index, s.Time, s.Lines)
}

// Equal reports whether two sections carry the same index, time and text.
func (s Section) Equal(o Section) bool {
	return s.Index == o.Index && s.Time == o.Time && slices.Equal(s.Lines, o.Lines)
}

// RenderSection joins an index line, a time line and the text lines of one block.
func RenderSection(index, timeRange string, lines []string) string {
	var b strings.Builder
	b.WriteString(index)
	b.WriteByte('\n')
	b.WriteString(timeRange)
	for _, line := range lines {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String()
}
