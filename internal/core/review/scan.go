// Package review turns a rule and a document into a queue of proposals and
// drives the approve/skip workflow that commits them back into the document.
package review

import (
	"github.com/hay-kot/subassist/internal/core/rules"
	"github.com/hay-kot/subassist/internal/core/subtitle"
)

// Item is one pending queue entry: the stable IDs of one section, or of two
// adjacent sections for span-2 rules.
type Item struct {
	IDs []int
}

// Queue is the ordered list of items a rule matched in a document.
type Queue struct {
	Rule  rules.Rule
	Items []Item
}

// Len returns the number of items.
func (q Queue) Len() int {
	return len(q.Items)
}

// Total returns the number of sections the queue covers, the unit the
// session cursor counts in.
func (q Queue) Total() int {
	return len(q.Items) * q.Rule.Span
}

// Scan applies the rule's detector across the document in order.
func Scan(doc *subtitle.Document, rule rules.Rule, params rules.Params) Queue {
	q := Queue{Rule: rule}
	if rule.NeedsParams && params.Find == "" {
		return q
	}

	sections := doc.Sections()
	span := max(rule.Span, 1)
	for i := 0; i+span <= len(sections); i++ {
		window := sections[i : i+span]
		if !rule.Matches(rules.Subject{Sections: window, Params: params}) {
			continue
		}
		ids := make([]int, span)
		for j, s := range window {
			ids[j] = s.ID
		}
		q.Items = append(q.Items, Item{IDs: ids})
	}
	return q
}
