package subtitle

import (
	"strconv"
	"strings"
)

// ParseOptions controls how raw subtitle text is split into sections.
type ParseOptions struct {
	// HeaderLines drops this many physical lines before parsing. Used to skip
	// the WebVTT header when converting to SubRip.
	HeaderLines int
}

// Parse splits raw subtitle text into a Document.
//
// Blocks are separated by blank lines. A block whose first line is purely
// numeric carries an explicit index followed by the time range; otherwise the
// index is synthesized from the section position and the first line is the
// time range. Blocks without text lines are dropped. A block with a single
// line has no time range and fails the whole file.
func Parse(raw string, opts ParseOptions) (*Document, error) {
	raw = strings.TrimPrefix(raw, "\uFEFF")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	physical := strings.Split(raw, "\n")
	first := min(max(opts.HeaderLines, 0), len(physical))

	var (
		doc        = NewDocument()
		block      []string
		blockStart int
	)

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		lines := block
		block = nil

		head := strings.TrimSpace(lines[0])
		if isNumeric(head) {
			if len(lines) < 2 {
				return &ParseError{Line: blockStart, Reason: "index " + head + " has no time range"}
			}
			if len(lines) == 2 {
				return nil
			}
			doc.Append(Section{
				Index:      head,
				Time:       strings.TrimSpace(lines[1]),
				Lines:      lines[2:],
				SourceLine: blockStart,
			})
			return nil
		}

		if len(lines) < 2 {
			return &ParseError{Line: blockStart, Reason: "block has no time range"}
		}
		doc.Append(Section{
			Index:      strconv.Itoa(doc.Len() + 1),
			Time:       head,
			Lines:      lines[1:],
			SourceLine: blockStart,
		})
		return nil
	}

	for i := first; i < len(physical); i++ {
		line := physical[i]
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if len(block) == 0 {
			blockStart = i + 1
		}
		block = append(block, line)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if doc.Len() == 0 {
		return nil, &ParseError{Reason: "no subtitle sections found"}
	}
	return doc, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
