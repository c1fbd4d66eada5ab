package review

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hay-kot/subassist/internal/core/rules"
	"github.com/hay-kot/subassist/internal/core/subtitle"
)

// DefaultMaxPasses bounds how often an iterative rule is re-applied to its
// own output.
const DefaultMaxPasses = 16

// Proposal is the engine's suggested replacement for one queue item. Old and
// New are rendered exactly as they would be written to disk; span-2 blocks
// are joined with a blank line.
type Proposal struct {
	Rule     rules.Rule
	Item     Item
	Cursor   int
	Old      string
	New      string
	Sections []subtitle.Section
}

// Changed reports whether the proposal differs from the current text.
func (p Proposal) Changed() bool {
	return p.Old != p.New
}

// Engine computes proposals without mutating the document.
type Engine struct {
	Rule      rules.Rule
	Params    rules.Params
	MaxPasses int
}

// Propose renders the current and proposed text for item.
func (e Engine) Propose(doc *subtitle.Document, item Item) (Proposal, error) {
	current := make([]subtitle.Section, 0, len(item.IDs))
	for _, id := range item.IDs {
		s, ok := doc.Get(id)
		if !ok {
			return Proposal{}, fmt.Errorf("propose section %d: %w", id, ErrStaleItem)
		}
		current = append(current, s)
	}

	proposed := e.transform(current)
	return Proposal{
		Rule:     e.Rule,
		Item:     item,
		Old:      renderBlocks(current),
		New:      renderBlocks(proposed),
		Sections: proposed,
	}, nil
}

func (e Engine) transform(sections []subtitle.Section) []subtitle.Section {
	subj := rules.Subject{Sections: sections, Params: e.Params}
	out := e.Rule.Apply(subj)
	if !e.Rule.Iterative {
		return out
	}

	passes := e.MaxPasses
	if passes <= 0 {
		passes = DefaultMaxPasses
	}
	for range passes - 1 {
		next := rules.Subject{Sections: out, Params: e.Params}
		if !e.Rule.Matches(next) {
			break
		}
		again := e.Rule.Apply(next)
		if sameSections(again, out) {
			break
		}
		out = again
	}
	return out
}

func sameSections(a, b []subtitle.Section) bool {
	return slices.EqualFunc(a, b, subtitle.Section.Equal)
}

func renderBlocks(sections []subtitle.Section) string {
	blocks := make([]string, len(sections))
	for i, s := range sections {
		blocks[i] = s.Render()
	}
	return strings.Join(blocks, "\n\n")
}
