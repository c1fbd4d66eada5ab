package assist

import (
	"context"
	"fmt"

	"github.com/hay-kot/subassist/internal/core/review"
	"github.com/hay-kot/subassist/internal/core/rules"
)

// Action is the operator's answer to a proposal.
type Action int

const (
	ActionApprove Action = iota
	ActionSkip
	ActionPrevious
	ActionApproveAll
	ActionSkipAll
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionSkip:
		return "skip"
	case ActionPrevious:
		return "previous"
	case ActionApproveAll:
		return "approve-all"
	case ActionSkipAll:
		return "skip-all"
	case ActionQuit:
		return "quit"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision answers one proposal. Text, when set, replaces the proposed text
// on approval.
type Decision struct {
	Action Action
	Text   *string
}

// Approve returns a decision approving the proposal unchanged.
func Approve() Decision { return Decision{Action: ActionApprove} }

// ApproveEdited returns a decision approving text in place of the proposal.
func ApproveEdited(text string) Decision { return Decision{Action: ActionApprove, Text: &text} }

// Progress locates a proposal within the batch.
type Progress struct {
	File      string
	FileIndex int // 0-based
	FileCount int
	Cursor    int
	Total     int
}

// Reviewer decides on proposals. Implementations may block waiting for a
// human.
type Reviewer interface {
	Review(ctx context.Context, p review.Proposal, prog Progress) (Decision, error)
}

// ReviewerFunc adapts a function to Reviewer.
type ReviewerFunc func(ctx context.Context, p review.Proposal, prog Progress) (Decision, error)

func (f ReviewerFunc) Review(ctx context.Context, p review.Proposal, prog Progress) (Decision, error) {
	return f(ctx, p, prog)
}

// AutoApprove approves every proposal unchanged.
type AutoApprove struct{}

func (AutoApprove) Review(context.Context, review.Proposal, Progress) (Decision, error) {
	return Decision{Action: ActionApproveAll}, nil
}

// ParamsProvider supplies find/replace parameters. It is asked once per run.
type ParamsProvider interface {
	FindReplace(ctx context.Context) (rules.Params, error)
}

// StaticParams is a ParamsProvider with fixed values.
type StaticParams rules.Params

func (p StaticParams) FindReplace(context.Context) (rules.Params, error) {
	return rules.Params(p), nil
}

// Observer is notified as the batch progresses.
type Observer interface {
	OnProgress(prog Progress)
	OnFileMissing(path string)
	OnFileError(path string, err error)
	OnEditRejected(prog Progress, err error)
	OnFileDone(res FileResult)
	OnComplete(sum Summary)
}

// NopObserver ignores every notification.
type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) OnProgress(Progress) {}
func (NopObserver) OnFileMissing(string) {}
func (NopObserver) OnFileError(string, error) {}
func (NopObserver) OnEditRejected(Progress, error) {}
func (NopObserver) OnFileDone(FileResult) {}
func (NopObserver) OnComplete(Summary) {}
