package rules

import "regexp"

var (
	upperRunPattern     = regexp.MustCompile(`[A-Z]{2,}`)
	speakerLabelPattern = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9'-]*:(?:\s|$)`)
	abbreviationPattern = regexp.MustCompile(`(?i)\b(mrs|mr|dr)\b(\.?)[ \t]*([a-z])`)
)

func removeUppercase() Rule {
	return Rule{
		Slug:        "remove-uppercase",
		Name:        "Remove uppercase words",
		Description: "Delete lines written entirely in capitals, such as sound descriptions.",
		Span:        1,
		Detect:      anyLine(isUpperLine),
		Transform: mapLines(func(line string) (string, bool) {
			return line, !isUpperLine(line)
		}),
	}
}

func editUppercase() Rule {
	return Rule{
		Slug:        "edit-uppercase",
		Name:        "Edit uppercase words",
		Description: "Review lines containing two or more consecutive capitals.",
		Span:        1,
		Detect: anyLine(func(line string) bool {
			return upperRunPattern.MatchString(stripTags(line))
		}),
		Transform: identity,
	}
}

func editSpeakerLabels() Rule {
	return Rule{
		Slug:        "edit-speaker-labels",
		Name:        "Edit speaker labels",
		Description: "Review lines containing a \"name:\" speaker label.",
		Span:        1,
		Detect: anyLine(func(line string) bool {
			return speakerLabelPattern.MatchString(stripTags(line))
		}),
		Transform: identity,
	}
}

func normalizeAbbreviation(match string) string {
	m := abbreviationPattern.FindStringSubmatch(match)
	return titleCase(m[1]) + ". " + m[3]
}

func capitalizeAbbreviations() Rule {
	return Rule{
		Slug:        "capitalize-abbreviations",
		Name:        "Capitalize abbreviations",
		Description: "Normalize Mr, Mrs and Dr to title case with a period.",
		Span:        1,
		Detect: anyLine(func(line string) bool {
			for _, m := range abbreviationPattern.FindAllString(line, -1) {
				if m != normalizeAbbreviation(m) {
					return true
				}
			}
			return false
		}),
		Transform: mapLines(func(line string) (string, bool) {
			return abbreviationPattern.ReplaceAllStringFunc(line, normalizeAbbreviation), true
		}),
	}
}
