package rules

import (
	"regexp"
	"strings"
	"time"

	"github.com/hay-kot/subassist/internal/core/subtitle"
)

// sectionGap returns b.start - a.end.
func sectionGap(a, b subtitle.Section) (time.Duration, bool) {
	ta, err := subtitle.ParseTimeRange(a.Time)
	if err != nil {
		return 0, false
	}
	tb, err := subtitle.ParseTimeRange(b.Time)
	if err != nil {
		return 0, false
	}
	return tb.Start - ta.End, true
}

func fixOverlaps() Rule {
	return Rule{
		Slug:        "fix-overlaps",
		Name:        "Fix time overlaps",
		Description: "Start the next section one millisecond after the current one ends.",
		Span:        2,
		PersistTime: true,
		Detect: func(s Subject) bool {
			gap, ok := sectionGap(s.Sections[0], s.Sections[1])
			return ok && gap < 0
		},
		Transform: func(s Subject) []subtitle.Section {
			a, b := s.Sections[0], s.Sections[1]
			ta, err := subtitle.ParseTimeRange(a.Time)
			if err != nil {
				return s.Sections
			}
			tb, err := subtitle.ParseTimeRange(b.Time)
			if err != nil || tb.Start >= ta.End {
				return s.Sections
			}
			tb.Start = ta.End + time.Millisecond
			b.Time = tb.String()
			return []subtitle.Section{a, b}
		},
	}
}

// WebVTT inline markup that SubRip players do not understand. Italic, bold
// and underline tags are kept.
var vttInlinePattern = regexp.MustCompile(`</?(?:c|v|lang|ruby|rt)(?:[.\s][^>]*)?>|<\d{1,2}:\d{2}(?::\d{2})?\.\d{3}>`)

func convertVTT(set Settings) Rule {
	return Rule{
		Slug:        "convert-vtt",
		Name:        "Convert VTT to SRT",
		Description: "Rewrite WebVTT cues as SubRip sections.",
		Span:        1,
		Always:      true,
		PersistTime: true,
		HeaderLines: set.HeaderLines,
		Converts:    true,
		Detect:      always,
		Transform: func(s Subject) []subtitle.Section {
			sec := s.Sections[0]
			timeLine, lines := sec.Time, sec.Lines

			// a cue identifier sits where the parser expected the time line
			if !strings.Contains(timeLine, "-->") && len(lines) > 0 && strings.Contains(lines[0], "-->") {
				timeLine, lines = lines[0], lines[1:]
			}

			tr, err := subtitle.ParseTimeRange(timeLine)
			if err != nil {
				// NOTE, STYLE and REGION blocks carry no cue; drop them
				sec.Lines = nil
				return []subtitle.Section{sec}
			}
			tr.Sep = ','
			tr.Settings = ""
			sec.Time = tr.String()

			out := make([]string, 0, len(lines))
			for _, line := range lines {
				line = strings.TrimSpace(vttInlinePattern.ReplaceAllString(line, ""))
				if line != "" {
					out = append(out, line)
				}
			}
			sec.Lines = out
			return []subtitle.Section{sec}
		},
	}
}

func sanitize() Rule {
	return Rule{
		Slug:        "sanitize",
		Name:        "Sanitize",
		Description: "Review every section without changing it.",
		Span:        1,
		Always:      true,
		Detect:      always,
		Transform:   identity,
	}
}
