package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/hay-kot/subassist/internal/core/subtitle"
)

// speakerPairPattern matches a line holding two dash-prefixed speaker turns,
// e.g. "-Where are you going? -Home."
var speakerPairPattern = regexp.MustCompile(`^(\s*(?:<i>)?\s*-.*?[.?!"'])\s+(-.*)$`)

// splitLine breaks one line in two. Speaker pairs split at the second dash;
// other lines split at the last space at or before the midpoint (rounded up
// to an even index), or the first space after it when there is none.
func splitLine(line string) (string, string, bool) {
	if m := speakerPairPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}

	runes := []rune(line)
	mid := len(runes) / 2
	if mid%2 == 1 {
		mid++
	}

	at := -1
	for i := min(mid, len(runes)-1); i > 0; i-- {
		if runes[i] == ' ' {
			at = i
			break
		}
	}
	if at < 0 {
		for i := mid + 1; i < len(runes); i++ {
			if runes[i] == ' ' {
				at = i
				break
			}
		}
	}
	if at < 0 {
		return "", "", false
	}

	head := strings.TrimSpace(string(runes[:at]))
	tail := strings.TrimSpace(string(runes[at+1:]))
	if head == "" || tail == "" {
		return "", "", false
	}
	return head, tail, true
}

func needsSplit(line string, limit int) bool {
	if visibleLen(line) <= limit || positiveFirst.MatchString(line) {
		return false
	}
	_, _, ok := splitLine(line)
	return ok
}

// trimLines splits every over-long line, re-examining the pieces it
// creates. The worklist is bounded by twice the section's rune and line count.
func trimLines(lines []string, limit int) []string {
	lines = slices.Clone(lines)

	budget := len(lines)
	for _, l := range lines {
		budget += len([]rune(l))
	}
	budget *= 2

	for i := 0; i < len(lines) && budget > 0; budget-- {
		if !needsSplit(lines[i], limit) {
			i++
			continue
		}
		head, tail, _ := splitLine(lines[i])
		lines[i] = head
		lines = slices.Insert(lines, i+1, tail)
	}
	return lines
}

func trimLong(limit int) Rule {
	return Rule{
		Slug:        fmt.Sprintf("trim-long-%d", limit),
		Name:        fmt.Sprintf("Trim long lines (%d)", limit),
		Description: fmt.Sprintf("Split lines longer than %d characters near the middle.", limit),
		Span:        1,
		Iterative:   true,
		Detect: anyLine(func(line string) bool {
			return needsSplit(line, limit)
		}),
		Transform: func(s Subject) []subtitle.Section {
			sec := s.Sections[0]
			sec.Lines = trimLines(sec.Lines, limit)
			return []subtitle.Section{sec}
		},
	}
}
