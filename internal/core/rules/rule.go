// Package rules holds the catalog of subtitle correction rules. Each rule
// pairs a detector with a transformer over one section or two adjacent
// sections. Rules are pure: they never mutate their inputs.
package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/subassist/internal/core/subtitle"
)

// ErrUnknownRule is returned by Lookup for names that are not in the catalog.
var ErrUnknownRule = errors.New("unknown rule")

// Params are the runtime parameters of rules that ask for them. They are
// supplied once per run and shared by every item of the queue.
type Params struct {
	Find    string
	Replace string
}

// Settings tune rules that depend on configuration.
type Settings struct {
	QuickGapMin time.Duration
	QuickGapMax time.Duration
	HeaderLines int
}

// DefaultSettings returns the built-in rule settings.
func DefaultSettings() Settings {
	return Settings{
		QuickGapMin: 1200 * time.Millisecond,
		QuickGapMax: 10 * time.Second,
		HeaderLines: 3,
	}
}

// Subject is what a detector or transformer looks at: one section, or a
// section and its successor for span-2 rules.
type Subject struct {
	Sections []subtitle.Section
	Params   Params
}

type (
	DetectFunc    func(Subject) bool
	TransformFunc func(Subject) []subtitle.Section
)

// Rule describes one correction operation.
type Rule struct {
	Slug        string
	Name        string
	Description string
	Span        int

	// Always rules match every section regardless of content.
	Always bool
	// Iterative rules are re-applied to their own output until it settles.
	Iterative bool
	// PersistTime rules may rewrite the time range line on approval.
	PersistTime bool
	// NeedsParams rules require find/replace parameters before scanning.
	NeedsParams bool
	// HeaderLines physical lines are dropped before parsing a file for this rule.
	HeaderLines int
	// Converts rules write a sibling file instead of overwriting the input.
	Converts bool

	Detect    DetectFunc
	Transform TransformFunc
}

// Matches reports whether the rule applies to the subject.
func (r Rule) Matches(s Subject) bool {
	if len(s.Sections) != r.Span {
		return false
	}
	if r.Always {
		return true
	}
	return r.Detect(s)
}

// Apply runs the transformer on copies of the subject sections.
func (r Rule) Apply(s Subject) []subtitle.Section {
	in := make([]subtitle.Section, len(s.Sections))
	for i, sec := range s.Sections {
		in[i] = sec.Clone()
	}
	return r.Transform(Subject{Sections: in, Params: s.Params})
}

// Registry is the immutable rule catalog.
type Registry struct {
	rules  []Rule
	bySlug map[string]int
	byName map[string]int
}

// NewRegistry builds the catalog with the given settings.
func NewRegistry(s Settings) *Registry {
	all := catalog(s)
	r := &Registry{
		rules:  all,
		bySlug: make(map[string]int, len(all)),
		byName: make(map[string]int, len(all)),
	}
	for i, rule := range all {
		r.bySlug[rule.Slug] = i
		r.byName[strings.ToLower(rule.Name)] = i
	}
	return r
}

// Lookup finds a rule by slug or by display name (case-insensitive).
func (r *Registry) Lookup(name string) (Rule, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if i, ok := r.bySlug[key]; ok {
		return r.rules[i], nil
	}
	if i, ok := r.byName[key]; ok {
		return r.rules[i], nil
	}
	return Rule{}, fmt.Errorf("%w: %q", ErrUnknownRule, name)
}

// All returns the rules in catalog order.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
