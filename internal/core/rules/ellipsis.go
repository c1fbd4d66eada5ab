package rules

import "regexp"

var (
	ellipsisSpace      = regexp.MustCompile(`\.\.\. +(\S)`)
	ellipsisSpaceLower = regexp.MustCompile(`\.\.\. +([a-z])`)
	ellipsisSpaceUpper = regexp.MustCompile(`\.\.\. +([A-Z])`)
)

func ellipsisRule(slug, name, desc string, re *regexp.Regexp) Rule {
	return Rule{
		Slug:        slug,
		Name:        name,
		Description: desc,
		Span:        1,
		Detect:      anyLine(re.MatchString),
		Transform:   regexLines(re, "...$1"),
	}
}

func ellipsisRules() []Rule {
	return []Rule{
		ellipsisRule("ellipsis-space", "Remove space after ellipsis",
			"Join an ellipsis with the word that follows it.", ellipsisSpace),
		ellipsisRule("ellipsis-space-lower", "Remove space after ellipsis before lowercase",
			"Join an ellipsis with a following lowercase word.", ellipsisSpaceLower),
		ellipsisRule("ellipsis-space-upper", "Remove space after ellipsis before uppercase",
			"Join an ellipsis with a following capitalized word.", ellipsisSpaceUpper),
	}
}
