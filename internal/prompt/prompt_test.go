package prompt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/internal/core/review"
	"github.com/hay-kot/subassist/internal/core/rules"
)

func proposal(old, new string) review.Proposal {
	return review.Proposal{
		Rule: rules.Rule{Slug: "dash-space", Name: "Dash spacing"},
		Old:  old,
		New:  new,
	}
}

func TestHeader(t *testing.T) {
	got := Header(proposal("a", "b"), assist.Progress{
		File:      "/tmp/movies/heat.srt",
		FileIndex: 1,
		FileCount: 3,
		Cursor:    4,
		Total:     10,
	})

	assert.Contains(t, got, "[2/3] heat.srt")
	assert.Contains(t, got, "Dash spacing")
	assert.Contains(t, got, "5/10")
}

func TestProposal(t *testing.T) {
	old := "1\n00:00:01,000 --> 00:00:02,000\n-Hi"
	proposed := "1\n00:00:01,000 --> 00:00:02,000\n- Hi"

	for _, width := range []int{0, 120} {
		got := Proposal(proposal(old, proposed), width)
		assert.Contains(t, got, "Current")
		assert.Contains(t, got, "Proposed")
		assert.Contains(t, got, "-Hi")
		assert.Contains(t, got, "- Hi")
		assert.NotContains(t, got, "no automatic change")
	}
}

func TestProposal_Unchanged(t *testing.T) {
	got := Proposal(proposal("same", "same"), 0)
	assert.Contains(t, got, "no automatic change")
}

func TestEditLines(t *testing.T) {
	assert.Equal(t, 5, editLines("1\n2\n3"))
	assert.Equal(t, 20, editLines(string(bytes.Repeat([]byte("\n"), 40))))
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.OnFileMissing("gone.srt")
	p.OnFileError("bad.srt", errors.New("parse failed"))
	p.OnFileDone(assist.FileResult{Path: "a.srt", Output: "a.srt", Status: assist.StatusWritten, Changes: make([]review.Change, 2)})
	p.OnFileDone(assist.FileResult{Path: "b.srt", Status: assist.StatusNoMatches})
	p.OnComplete(assist.Summary{Files: []assist.FileResult{{Status: assist.StatusWritten}}})

	out := buf.String()
	assert.Contains(t, out, "gone.srt is missing")
	assert.Contains(t, out, "bad.srt: parse failed")
	assert.Contains(t, out, "a.srt (2 change(s))")
	assert.Contains(t, out, "b.srt has nothing to correct")
	assert.Contains(t, out, "1 file(s), 1 written")
}

func TestChoiceActions(t *testing.T) {
	for c, a := range choiceActions {
		assert.Equal(t, string(c), a.String())
	}
	_, ok := choiceActions[choiceEdit]
	assert.False(t, ok, "edit is resolved by the reviewer")
}
