package rules

import (
	"regexp"

	"github.com/hay-kot/subassist/internal/core/subtitle"
)

var dashSpacePattern = regexp.MustCompile(`^(\s*(?:<i>)?\s*(?:["']|\.\.\.)?)-([^\s-])`)

func dashSpace() Rule {
	return Rule{
		Slug:        "dash-space",
		Name:        "Add space after line starting dash",
		Description: "Insert one space between a leading dialogue dash and the text.",
		Span:        1,
		Detect:      anyLine(dashSpacePattern.MatchString),
		Transform:   regexLines(dashSpacePattern, "${1}- ${2}"),
	}
}

// Split-line detection looks at the last line of a section and the first
// line of the next. Positive patterns recognize lines that already carry the
// continuation dash, negative patterns recognize lines that plausibly
// continue but lack it.
var (
	positiveFirst  = regexp.MustCompile(`[^\s-]-\s*(?:</i>)?\s*$`)
	negativeFirst  = regexp.MustCompile(`[A-Za-z0-9,'"]\s*(?:</i>)?\s*$`)
	positiveSecond = regexp.MustCompile(`^\s*(?:<i>)?\s*-[^\s-]`)
	negativeSecond = regexp.MustCompile(`^\s*(?:<i>)?\s*(?:["']|\.\.\.)?\s*[a-z]`)
)

// appendDash adds the trailing dash to the first line of a split pair.
var appendDash = cascade{
	{name: "comma-italic", pattern: regexp.MustCompile(`^(.*?),\s*</i>\s*$`), replace: "$1,-</i>"},
	{name: "quote-italic", pattern: regexp.MustCompile(`^(.*?)(["'])\s*</i>\s*$`), replace: "$1$2-</i>"},
	{name: "italic", pattern: regexp.MustCompile(`^(.*?)\s*</i>\s*$`), replace: "$1-</i>"},
	{name: "comma", pattern: regexp.MustCompile(`^(.*?),\s*$`), replace: "$1,-"},
	{name: "quote", pattern: regexp.MustCompile(`^(.*?)(["'])\s*$`), replace: "$1$2-"},
	{name: "word", pattern: regexp.MustCompile(`^(.*?)\s*$`), replace: "$1-"},
}

// prependDash adds the leading dash to the second line of a split pair.
var prependDash = cascade{
	{name: "italic", pattern: regexp.MustCompile(`^\s*<i>\s*(.*)$`), replace: "<i>-$1"},
	{name: "plain", pattern: regexp.MustCompile(`^\s*(.*)$`), replace: "-$1"},
}

type splitState struct {
	posA, negA, posB, negB bool
}

func splitPair(a, b subtitle.Section) (splitState, bool) {
	last, ok := lastLine(a)
	if !ok {
		return splitState{}, false
	}
	first, ok := firstLine(b)
	if !ok {
		return splitState{}, false
	}
	return splitState{
		posA: positiveFirst.MatchString(last),
		negA: negativeFirst.MatchString(last),
		posB: positiveSecond.MatchString(first),
		negB: negativeSecond.MatchString(first),
	}, true
}

func (st splitState) needsDashes() bool {
	if st.posA && st.posB {
		return false
	}
	return (st.negA && st.negB) || (st.posA && st.negB) || (st.negA && st.posB)
}

func (st splitState) valid() bool {
	return st.posA && st.posB
}

func splitLineDashes() Rule {
	return Rule{
		Slug:        "split-line-dashes",
		Name:        "Add dashes to split lines",
		Description: "Mark a sentence that continues into the next section with dashes on both sides.",
		Span:        2,
		Detect: func(s Subject) bool {
			st, ok := splitPair(s.Sections[0], s.Sections[1])
			return ok && st.needsDashes()
		},
		Transform: func(s Subject) []subtitle.Section {
			a, b := s.Sections[0], s.Sections[1]
			st, ok := splitPair(a, b)
			if !ok || !st.needsDashes() {
				return s.Sections
			}
			if st.negA {
				a.Lines[len(a.Lines)-1], _ = appendDash.apply(a.Lines[len(a.Lines)-1])
			}
			if st.negB {
				b.Lines[0], _ = prependDash.apply(b.Lines[0])
			}
			return []subtitle.Section{a, b}
		},
	}
}

var (
	quickFirst  = regexp.MustCompile(`^(.*[^\s-])-\s*(</i>)?\s*$`)
	quickSecond = regexp.MustCompile(`^(\s*(?:<i>)?\s*)-([^\s-])`)
)

func quickDashes(set Settings) Rule {
	return Rule{
		Slug:        "quick-dashes",
		Name:        "Replace dashes with three dots for quick lines",
		Description: "Use an ellipsis instead of continuation dashes when the next section follows quickly.",
		Span:        2,
		Detect: func(s Subject) bool {
			a, b := s.Sections[0], s.Sections[1]
			st, ok := splitPair(a, b)
			if !ok || !st.valid() {
				return false
			}
			gap, ok := sectionGap(a, b)
			return ok && gap >= set.QuickGapMin && gap <= set.QuickGapMax
		},
		Transform: func(s Subject) []subtitle.Section {
			a, b := s.Sections[0], s.Sections[1]
			if len(a.Lines) == 0 || len(b.Lines) == 0 {
				return s.Sections
			}
			last := len(a.Lines) - 1
			a.Lines[last] = quickFirst.ReplaceAllString(a.Lines[last], "${1}...${2}")
			b.Lines[0] = quickSecond.ReplaceAllString(b.Lines[0], "${1}...${2}")
			return []subtitle.Section{a, b}
		},
	}
}
