package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/subassist/internal/core/subtitle"
)

var registry = NewRegistry(DefaultSettings())

func section(time string, lines ...string) subtitle.Section {
	return subtitle.Section{Index: "1", Time: time, Lines: lines}
}

func one(lines ...string) Subject {
	return Subject{Sections: []subtitle.Section{section("00:00:01,000 --> 00:00:02,000", lines...)}}
}

func pair(a, b subtitle.Section) Subject {
	return Subject{Sections: []subtitle.Section{a, b}}
}

func mustRule(t *testing.T, slug string) Rule {
	t.Helper()
	r, err := registry.Lookup(slug)
	require.NoError(t, err)
	return r
}

func TestRegistry_Lookup(t *testing.T) {
	bySlug, err := registry.Lookup("dash-space")
	require.NoError(t, err)

	byName, err := registry.Lookup("add space after line starting dash")
	require.NoError(t, err)
	assert.Equal(t, bySlug.Slug, byName.Slug)

	_, err = registry.Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestRegistry_AllIsComplete(t *testing.T) {
	all := registry.All()
	require.Len(t, all, 16)

	seen := map[string]bool{}
	for _, r := range all {
		assert.False(t, seen[r.Slug], "duplicate slug %s", r.Slug)
		seen[r.Slug] = true
		assert.Contains(t, []int{1, 2}, r.Span, r.Slug)
		assert.NotNil(t, r.Detect, r.Slug)
		assert.NotNil(t, r.Transform, r.Slug)
		assert.NotEmpty(t, r.Name, r.Slug)
	}

	all[0].Slug = "mutated"
	assert.Equal(t, "remove-uppercase", registry.All()[0].Slug)
}

func TestLineRules(t *testing.T) {
	tests := []struct {
		rule   string
		params Params
		in     []string
		want   []string
	}{
		{rule: "remove-uppercase", in: []string{"[DOOR SLAMS]", "Who's there?"}, want: []string{"Who's there?"}},
		{rule: "remove-uppercase", in: []string{"<i>MUSIC PLAYING</i>"}, want: []string{}},
		{rule: "dash-space", in: []string{"-Hi there"}, want: []string{"- Hi there"}},
		{rule: "dash-space", in: []string{"<i>-Hi there</i>"}, want: []string{"<i>- Hi there</i>"}},
		{rule: "dash-space", in: []string{`"-Quoted`, "...-Trailing"}, want: []string{`"- Quoted`, "...- Trailing"}},
		{rule: "ellipsis-space", in: []string{"Wait... what? ... Yes"}, want: []string{"Wait...what? ...Yes"}},
		{rule: "ellipsis-space-lower", in: []string{"So... then... Bob"}, want: []string{"So...then... Bob"}},
		{rule: "ellipsis-space-upper", in: []string{"So... then... Bob"}, want: []string{"So... then...Bob"}},
		{rule: "capitalize-abbreviations", in: []string{"Ask mr smith and DR.jones"}, want: []string{"Ask Mr. smith and Dr. jones"}},
		{rule: "capitalize-abbreviations", in: []string{"mrs.  Doubtfire"}, want: []string{"Mrs. Doubtfire"}},
		{
			rule:   "find-replace",
			params: Params{Find: "Hello", Replace: "Hi"},
			in:     []string{"Hello, Hello", "Bye"},
			want:   []string{"Hi, Hi", "Bye"},
		},
		{
			rule:   "find-replace",
			params: Params{Find: "John", Replace: ""},
			in:     []string{"<i>Hey, John</i>", "<i>John</i>", "and  John  too"},
			want:   []string{"<i>Hey,</i>", "and too"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+strings.Join(tt.in, "|"), func(t *testing.T) {
			r := mustRule(t, tt.rule)
			subj := one(tt.in...)
			subj.Params = tt.params

			require.True(t, r.Matches(subj))
			out := r.Apply(subj)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Lines)

			// idempotence: the fixed output no longer matches
			again := Subject{Sections: out, Params: tt.params}
			assert.False(t, r.Matches(again))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	r := mustRule(t, "dash-space")
	subj := one("-Hi")

	_ = r.Apply(subj)
	assert.Equal(t, "-Hi", subj.Sections[0].Lines[0])
}

func TestCapitalizeAbbreviations_LeavesOtherWords(t *testing.T) {
	tests := []string{
		"I need 5 ms more",
		"Ms. Jones arrived",
		"The drum and the mrsa ward",
		"Mr. Smith and Dr. Who",
	}

	r := mustRule(t, "capitalize-abbreviations")
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			assert.False(t, r.Matches(one(line)))
		})
	}
}

func TestEditRules_AreIdentity(t *testing.T) {
	tests := []struct {
		rule  string
		match string
		miss  string
	}{
		{rule: "edit-uppercase", match: "I saw the FBI", miss: "I saw him"},
		{rule: "edit-speaker-labels", match: "JOHN: Get down!", miss: "At 10:30 sharp"},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r := mustRule(t, tt.rule)
			assert.True(t, r.Matches(one(tt.match)))
			assert.False(t, r.Matches(one(tt.miss)))
			assert.Equal(t, []string{tt.match}, r.Apply(one(tt.match))[0].Lines)
		})
	}
}

func TestFindReplace_EmptyFindNeverMatches(t *testing.T) {
	r := mustRule(t, "find-replace")
	assert.False(t, r.Matches(one("anything")))
}

func TestSplitLineDashes(t *testing.T) {
	r := mustRule(t, "split-line-dashes")
	ts := "00:00:01,000 --> 00:00:02,000"

	tests := []struct {
		name      string
		a, b      string
		wantMatch bool
		wantA     string
		wantB     string
	}{
		{name: "both sides missing", a: "He said", b: "hello there", wantMatch: true, wantA: "He said-", wantB: "-hello there"},
		{name: "first side missing", a: "He said", b: "-hello there", wantMatch: true, wantA: "He said-", wantB: "-hello there"},
		{name: "second side missing", a: "He said-", b: "hello there", wantMatch: true, wantA: "He said-", wantB: "-hello there"},
		{name: "comma before italic close", a: "<i>Well,</i>", b: "<i>maybe not</i>", wantMatch: true, wantA: "<i>Well,-</i>", wantB: "<i>-maybe not</i>"},
		{name: "trailing quote", a: `He said "go"`, b: "now", wantMatch: true, wantA: `He said "go"-`, wantB: "-now"},
		{name: "trailing comma", a: "Well,", b: "maybe", wantMatch: true, wantA: "Well,-", wantB: "-maybe"},
		{name: "already correct", a: "He said-", b: "-hello", wantMatch: false},
		{name: "sentence ends", a: "He left.", b: "hello there", wantMatch: false},
		{name: "next is capitalized", a: "He said", b: "Hello there", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subj := pair(section(ts, "first", tt.a), section(ts, tt.b, "rest"))
			require.Equal(t, tt.wantMatch, r.Matches(subj))
			if !tt.wantMatch {
				return
			}

			out := r.Apply(subj)
			require.Len(t, out, 2)
			assert.Equal(t, []string{"first", tt.wantA}, out[0].Lines)
			assert.Equal(t, []string{tt.wantB, "rest"}, out[1].Lines)
			assert.False(t, r.Matches(pair(out[0], out[1])))
		})
	}
}

func TestFixOverlaps(t *testing.T) {
	r := mustRule(t, "fix-overlaps")
	a := section("00:00:01,000 --> 00:00:02,000", "a")
	b := section("00:00:01,500 --> 00:00:03,000", "b")

	require.True(t, r.Matches(pair(a, b)))
	out := r.Apply(pair(a, b))
	assert.Equal(t, "00:00:02,001 --> 00:00:03,000", out[1].Time)
	assert.Equal(t, a.Time, out[0].Time)
	assert.False(t, r.Matches(pair(out[0], out[1])))

	assert.False(t, r.Matches(pair(a, section("00:00:02,000 --> 00:00:03,000", "c"))))
	assert.False(t, r.Matches(pair(a, section("garbage", "c"))))
}

func TestQuickDashes(t *testing.T) {
	r := mustRule(t, "quick-dashes")
	a := section("00:00:01,000 --> 00:00:02,000", "I was going-")
	tests := []struct {
		name      string
		bTime     string
		wantMatch bool
	}{
		{name: "gap inside window", bTime: "00:00:04,000 --> 00:00:05,000", wantMatch: true},
		{name: "gap at lower bound", bTime: "00:00:03,200 --> 00:00:05,000", wantMatch: true},
		{name: "gap too short", bTime: "00:00:02,500 --> 00:00:05,000", wantMatch: false},
		{name: "gap too long", bTime: "00:00:13,000 --> 00:00:15,000", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := section(tt.bTime, "<i>-to say</i>")
			require.Equal(t, tt.wantMatch, r.Matches(pair(a, b)))
			if !tt.wantMatch {
				return
			}
			out := r.Apply(pair(a, b))
			assert.Equal(t, []string{"I was going..."}, out[0].Lines)
			assert.Equal(t, []string{"<i>...to say</i>"}, out[1].Lines)
			assert.False(t, r.Matches(pair(out[0], out[1])))
		})
	}
}

func TestTrimLong(t *testing.T) {
	r := mustRule(t, "trim-long-45")

	// 50 characters with the only space at position 22
	line := strings.Repeat("a", 22) + " " + strings.Repeat("b", 27)
	require.Len(t, line, 50)

	subj := one(line)
	require.True(t, r.Matches(subj))

	out := r.Apply(subj)
	assert.Equal(t, []string{strings.Repeat("a", 22), strings.Repeat("b", 27)}, out[0].Lines)
	assert.False(t, r.Matches(Subject{Sections: out}))
}

func TestTrimLong_Cases(t *testing.T) {
	tests := []struct {
		name  string
		rule  string
		in    []string
		want  []string
		match bool
	}{
		{
			name:  "short line untouched",
			rule:  "trim-long-45",
			in:    []string{"Short enough."},
			match: false,
		},
		{
			name:  "dash continuation exempt",
			rule:  "trim-long-40",
			in:    []string{"This line is long enough to be split in two-"},
			match: false,
		},
		{
			name:  "single long word cannot split",
			rule:  "trim-long-40",
			in:    []string{strings.Repeat("x", 60)},
			match: false,
		},
		{
			name:  "speaker pair splits at second dash",
			rule:  "trim-long-40",
			in:    []string{"-Where are you going tonight? -Home, I guess."},
			want:  []string{"-Where are you going tonight?", "-Home, I guess."},
			match: true,
		},
		{
			name: "very long line splits repeatedly",
			rule: "trim-long-40",
			in:   []string{strings.TrimSpace(strings.Repeat("word ", 30))},
			want: []string{
				"word word word word word word word",
				"word word word word word word word word",
				"word word word word word word word",
				"word word word word word word word word",
			},
			match: true,
		},
		{
			name:  "tags do not count toward length",
			rule:  "trim-long-40",
			in:    []string{"<i>" + strings.Repeat("a", 18) + " " + strings.Repeat("b", 18) + "</i>"},
			match: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRule(t, tt.rule)
			subj := one(tt.in...)
			require.Equal(t, tt.match, r.Matches(subj))
			if !tt.match {
				return
			}
			out := r.Apply(subj)
			assert.Equal(t, tt.want, out[0].Lines)
			assert.False(t, r.Matches(Subject{Sections: out}))
		})
	}
}

func TestConvertVTT(t *testing.T) {
	r := mustRule(t, "convert-vtt")
	assert.Equal(t, 3, r.HeaderLines)

	tests := []struct {
		name      string
		sec       subtitle.Section
		wantTime  string
		wantLines []string
	}{
		{
			name:      "settings dropped and separator changed",
			sec:       section("00:01.500 --> 00:02.000 align:start position:0%", "<c.yellow>Hello</c> <i>there</i>"),
			wantTime:  "00:00:01,500 --> 00:00:02,000",
			wantLines: []string{"Hello <i>there</i>"},
		},
		{
			name:      "cue identifier skipped",
			sec:       section("intro", "00:00:03.000 --> 00:00:04.000", "<v Roger>Hi"),
			wantTime:  "00:00:03,000 --> 00:00:04,000",
			wantLines: []string{"Hi"},
		},
		{
			name:      "note block emptied",
			sec:       section("NOTE", "written by hand"),
			wantTime:  "NOTE",
			wantLines: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subj := Subject{Sections: []subtitle.Section{tt.sec}}
			assert.True(t, r.Matches(subj))
			out := r.Apply(subj)
			assert.Equal(t, tt.wantTime, out[0].Time)
			assert.Equal(t, tt.wantLines, out[0].Lines)
		})
	}
}

func TestSanitize(t *testing.T) {
	r := mustRule(t, "sanitize")
	subj := one("anything at all")
	assert.True(t, r.Matches(subj))
	assert.Equal(t, subj.Sections, r.Apply(subj))
}

func TestCascade_FirstMatchWins(t *testing.T) {
	out, name := appendDash.apply(`"Quoted,"</i>`)
	assert.Equal(t, "quote-italic", name)
	assert.Equal(t, `"Quoted,"-</i>`, out)

	out, name = appendDash.apply("Well, </i>")
	assert.Equal(t, "comma-italic", name)
	assert.Equal(t, "Well,-</i>", out)
}
