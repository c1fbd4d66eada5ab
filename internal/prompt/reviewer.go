// Package prompt is the terminal collaborator: it shows proposals, asks the
// operator for decisions and prints batch progress.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/internal/core/review"
	"github.com/hay-kot/subassist/internal/core/rules"
	"github.com/hay-kot/subassist/internal/core/validate"
)

type choice string

const (
	choiceApprove    choice = "approve"
	choiceEdit       choice = "edit"
	choiceSkip       choice = "skip"
	choicePrevious   choice = "previous"
	choiceApproveAll choice = "approve-all"
	choiceSkipAll    choice = "skip-all"
	choiceQuit       choice = "quit"
)

var choiceActions = map[choice]assist.Action{
	choiceApprove:    assist.ActionApprove,
	choiceSkip:       assist.ActionSkip,
	choicePrevious:   assist.ActionPrevious,
	choiceApproveAll: assist.ActionApproveAll,
	choiceSkipAll:    assist.ActionSkipAll,
	choiceQuit:       assist.ActionQuit,
}

// Terminal asks the operator through huh forms.
type Terminal struct {
	out   io.Writer
	width int
}

var (
	_ assist.Reviewer       = (*Terminal)(nil)
	_ assist.ParamsProvider = (*Terminal)(nil)
)

// NewTerminal creates a Terminal writing proposals to out. width is the
// terminal width in columns; zero stacks panes vertically.
func NewTerminal(out io.Writer, width int) *Terminal {
	return &Terminal{out: out, width: width}
}

// Review shows the proposal and waits for a decision. Aborting the form
// (ctrl+c) quits the batch.
func (t *Terminal) Review(ctx context.Context, p review.Proposal, prog assist.Progress) (assist.Decision, error) {
	_, _ = fmt.Fprintln(t.out)
	_, _ = fmt.Fprintln(t.out, Header(p, prog))
	_, _ = fmt.Fprintln(t.out, Proposal(p, t.width))

	for {
		selected, err := t.decide(ctx, p, prog)
		if err != nil {
			return assist.Decision{}, err
		}
		if selected != choiceEdit {
			return assist.Decision{Action: choiceActions[selected]}, nil
		}

		text := p.New
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewText().
					Title("Edit").
					Description("Keep the index and time lines; separate sections with a blank line").
					Lines(editLines(text)).
					Value(&text),
			),
		).RunWithContext(ctx)
		if errors.Is(err, huh.ErrUserAborted) {
			// back out of the edit and ask again
			continue
		}
		if err != nil {
			return assist.Decision{}, fmt.Errorf("edit form: %w", err)
		}
		return assist.ApproveEdited(text), nil
	}
}

func (t *Terminal) decide(ctx context.Context, p review.Proposal, prog assist.Progress) (choice, error) {
	selected := choiceApprove
	if !p.Changed() {
		selected = choiceEdit
	}

	options := []huh.Option[choice]{
		huh.NewOption("Approve", choiceApprove),
		huh.NewOption("Edit then approve", choiceEdit),
		huh.NewOption("Skip", choiceSkip),
	}
	if prog.Cursor > 0 {
		options = append(options, huh.NewOption("Previous", choicePrevious))
	}
	options = append(options,
		huh.NewOption("Approve all remaining", choiceApproveAll),
		huh.NewOption("Skip rest of file", choiceSkipAll),
		huh.NewOption("Quit", choiceQuit),
	)

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[choice]().
				Title("Decision").
				Options(options...).
				Value(&selected),
		),
	).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return choiceQuit, nil
	}
	if err != nil {
		return "", fmt.Errorf("decision form: %w", err)
	}
	return selected, nil
}

// FindReplace asks for the text to find and its replacement. An empty
// replacement removes the found text.
func (t *Terminal) FindReplace(ctx context.Context) (rules.Params, error) {
	var p rules.Params
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Find").
				Description("Literal text to search for").
				Validate(validate.NotEmpty).
				Value(&p.Find),
			huh.NewInput().
				Title("Replace").
				Description("Leave empty to remove the text").
				Value(&p.Replace),
		),
	).RunWithContext(ctx)
	if err != nil {
		return rules.Params{}, fmt.Errorf("find/replace form: %w", err)
	}
	return p, nil
}
