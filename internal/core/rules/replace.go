package rules

import (
	"regexp"
	"strings"

	"github.com/hay-kot/subassist/internal/core/subtitle"
)

var (
	emptyTagPairs = []*regexp.Regexp{
		regexp.MustCompile(`<i>\s*</i>`),
		regexp.MustCompile(`<b>\s*</b>`),
		regexp.MustCompile(`<u>\s*</u>`),
	}
	multiSpace   = regexp.MustCompile(`[ \t]{2,}`)
	openPadding  = regexp.MustCompile(`<([ibu])>\s+`)
	closePadding = regexp.MustCompile(`\s+</([ibu])>`)
)

var formatTags = []string{"i", "b", "u"}

// tidyRemoval cleans a line after text was cut out of it: empty tag pairs
// and doubled spaces go away, and tags left unbalanced by the cut are dropped.
func tidyRemoval(line, original string) string {
	for _, re := range emptyTagPairs {
		line = re.ReplaceAllString(line, "")
	}
	line = multiSpace.ReplaceAllString(line, " ")
	line = openPadding.ReplaceAllString(line, "<$1>")
	line = closePadding.ReplaceAllString(line, "</$1>")

	for _, tag := range formatTags {
		open, closing := "<"+tag+">", "</"+tag+">"
		balanced := strings.Count(original, open) == strings.Count(original, closing)
		if balanced && strings.Count(line, open) != strings.Count(line, closing) {
			line = strings.ReplaceAll(line, open, "")
			line = strings.ReplaceAll(line, closing, "")
		}
	}
	return strings.TrimSpace(line)
}

func findReplace() Rule {
	return Rule{
		Slug:        "find-replace",
		Name:        "Find and replace",
		Description: "Replace literal text; removing text also removes stranded tags and spaces.",
		Span:        1,
		NeedsParams: true,
		Detect: func(s Subject) bool {
			if s.Params.Find == "" {
				return false
			}
			for _, line := range s.Sections[0].Lines {
				if strings.Contains(line, s.Params.Find) {
					return true
				}
			}
			return false
		},
		Transform: func(s Subject) []subtitle.Section {
			p := s.Params
			return mapLines(func(line string) (string, bool) {
				if p.Find == "" || !strings.Contains(line, p.Find) {
					return line, true
				}
				out := strings.ReplaceAll(line, p.Find, p.Replace)
				if p.Replace == "" {
					out = tidyRemoval(out, line)
				}
				return out, strings.TrimSpace(out) != ""
			})(s)
		},
	}
}
