package subtitle

import (
	"strconv"
	"strings"
)

// Serialize renders the document as SubRip text. Sections are renumbered
// sequentially from 1; source index values are not preserved. The document
// itself is not modified.
func Serialize(doc *Document) string {
	var b strings.Builder
	for i, s := range doc.Sections() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(RenderSection(strconv.Itoa(i+1), s.Time, s.Lines))
	}
	if doc.Len() > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}
