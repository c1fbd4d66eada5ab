package rules

import (
	"regexp"
	"strings"

	"github.com/hay-kot/subassist/internal/core/subtitle"
)

var tagPattern = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// stripTags removes markup tags such as <i> and <font color="..."> from a line.
func stripTags(line string) string {
	return tagPattern.ReplaceAllString(line, "")
}

// visibleLen is the rune count of a line without markup.
func visibleLen(line string) int {
	return len([]rune(stripTags(line)))
}

// step is one entry of an ordered rewrite cascade.
type step struct {
	name    string
	pattern *regexp.Regexp
	replace string
}

// cascade is evaluated first-match-wins.
type cascade []step

// apply rewrites line with the first step whose pattern matches. It returns
// the name of that step, or "" when nothing matched.
func (c cascade) apply(line string) (string, string) {
	for _, st := range c {
		if st.pattern.MatchString(line) {
			return st.pattern.ReplaceAllString(line, st.replace), st.name
		}
	}
	return line, ""
}

// anyLine builds a span-1 detector that matches when pred holds for a line.
func anyLine(pred func(string) bool) DetectFunc {
	return func(s Subject) bool {
		for _, line := range s.Sections[0].Lines {
			if pred(line) {
				return true
			}
		}
		return false
	}
}

// mapLines builds a span-1 transformer that rewrites each line. Lines for
// which fn returns keep == false are removed.
func mapLines(fn func(line string) (out string, keep bool)) TransformFunc {
	return func(s Subject) []subtitle.Section {
		sec := s.Sections[0]
		lines := make([]string, 0, len(sec.Lines))
		for _, line := range sec.Lines {
			if out, keep := fn(line); keep {
				lines = append(lines, out)
			}
		}
		sec.Lines = lines
		return []subtitle.Section{sec}
	}
}

func regexLines(re *regexp.Regexp, repl string) TransformFunc {
	return mapLines(func(line string) (string, bool) {
		return re.ReplaceAllString(line, repl), true
	})
}

func identity(s Subject) []subtitle.Section {
	return s.Sections
}

func always(Subject) bool { return true }

func firstLine(s subtitle.Section) (string, bool) {
	if len(s.Lines) == 0 {
		return "", false
	}
	return s.Lines[0], true
}

func lastLine(s subtitle.Section) (string, bool) {
	if len(s.Lines) == 0 {
		return "", false
	}
	return s.Lines[len(s.Lines)-1], true
}

// isUpperLine reports whether every ASCII letter of the line, ignoring
// markup, is uppercase and there is at least one.
func isUpperLine(line string) bool {
	text := stripTags(line)
	hasUpper := false
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c >= 'a' && c <= 'z':
			return false
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		}
	}
	return hasUpper
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
