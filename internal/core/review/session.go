package review

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/hay-kot/subassist/internal/core/subtitle"
)

// State of a review session.
type State int

const (
	StateIdle State = iota
	StateProposed
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProposed:
		return "proposed"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Change records one section modified by an approval.
type Change struct {
	SectionID int
	Index     string
	Old       string
	New       string
	Deleted   bool
	Edited    bool // the operator changed the proposal before approving
}

// CommitFunc persists a document once its queue is exhausted.
type CommitFunc func(doc *subtitle.Document, changes []Change) error

// Option configures a Session.
type Option func(*Session)

// WithCommit sets the hook invoked when the session completes.
func WithCommit(fn CommitFunc) Option {
	return func(s *Session) {
		s.commit = fn
	}
}

// Session walks a queue one item at a time, waiting for an external decision
// on each proposal. A Session is not safe for concurrent use.
type Session struct {
	engine Engine
	commit CommitFunc

	doc     *subtitle.Document
	queue   Queue
	state   State
	pos     int
	current Proposal
	changes []Change
}

// NewSession creates an idle session for the engine's rule.
func NewSession(engine Engine, opts ...Option) *Session {
	s := &Session{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load attaches a document and its queue, returning the session to idle.
func (s *Session) Load(doc *subtitle.Document, queue Queue) error {
	if s.state == StateProposed {
		return fmt.Errorf("load: %w", ErrNotRunning)
	}
	s.doc = doc
	s.queue = queue
	s.state = StateIdle
	s.pos = 0
	s.current = Proposal{}
	s.changes = nil
	return nil
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Cursor is the number of sections already decided, stepping by the rule span.
func (s *Session) Cursor() int { return s.pos * s.span() }

// Total is the number of sections covered by the queue.
func (s *Session) Total() int { return s.queue.Total() }

// Document returns the document under review.
func (s *Session) Document() *subtitle.Document { return s.doc }

// Changes returns the changes applied so far.
func (s *Session) Changes() []Change { return slices.Clone(s.changes) }

// Current returns the proposal awaiting a decision.
func (s *Session) Current() (Proposal, bool) {
	if s.state != StateProposed {
		return Proposal{}, false
	}
	return s.current, true
}

func (s *Session) span() int {
	return max(s.engine.Rule.Span, 1)
}

// Start proposes the first item. An empty queue fails with ErrEmptyQueue and
// leaves the session untouched.
func (s *Session) Start() error {
	if s.state != StateIdle {
		return fmt.Errorf("start: %w", ErrNotRunning)
	}
	if s.queue.Len() == 0 {
		return ErrEmptyQueue
	}
	s.pos = 0
	return s.advance()
}

// Approve applies text to the sections of the current item and moves on. A nil
// text approves the engine's proposal unchanged. Malformed text fails with a
// *MalformedEditError; nothing is modified and the cursor stays put.
func (s *Session) Approve(text *string) error {
	if s.state != StateProposed {
		return fmt.Errorf("approve: %w", ErrNotRunning)
	}

	blob, edited := s.current.New, false
	if text != nil {
		blob, edited = *text, *text != s.current.New
	}

	payloads, err := parseEdit(blob, s.span(), s.engine.Rule.PersistTime)
	if err != nil {
		return err
	}

	for i, id := range s.current.Item.IDs {
		if err := s.apply(id, payloads[i], edited); err != nil {
			return err
		}
	}

	s.pos++
	return s.advance()
}

func (s *Session) apply(id int, p payload, edited bool) error {
	old, ok := s.doc.Get(id)
	if !ok {
		return nil
	}

	if len(p.Lines) == 0 {
		if err := s.doc.Delete(id); err != nil {
			return err
		}
		s.changes = append(s.changes, Change{
			SectionID: id,
			Index:     old.Index,
			Old:       old.Render(),
			Deleted:   true,
			Edited:    edited,
		})
		return nil
	}

	if err := s.doc.SetLines(id, p.Lines); err != nil {
		return err
	}
	if s.engine.Rule.PersistTime && p.Time != old.Time {
		if err := s.doc.SetTime(id, p.Time); err != nil {
			return err
		}
	}

	updated, _ := s.doc.Get(id)
	if updated.Render() != old.Render() {
		s.changes = append(s.changes, Change{
			SectionID: id,
			Index:     old.Index,
			Old:       old.Render(),
			New:       updated.Render(),
			Edited:    edited,
		})
	}
	return nil
}

// Skip discards the current proposal.
func (s *Session) Skip() error {
	if s.state != StateProposed {
		return fmt.Errorf("skip: %w", ErrNotRunning)
	}
	s.pos++
	return s.advance()
}

// Previous steps back one item and re-proposes it from the current document,
// so earlier approvals stay visible.
func (s *Session) Previous() error {
	if s.state != StateProposed {
		return fmt.Errorf("previous: %w", ErrNotRunning)
	}
	s.pos = max(s.pos-1, 0)
	return s.advance()
}

// SkipAll abandons the rest of the queue and completes the session.
func (s *Session) SkipAll() error {
	if s.state != StateProposed {
		return fmt.Errorf("skip all: %w", ErrNotRunning)
	}
	s.pos = s.queue.Len()
	return s.complete()
}

// ApproveAll approves every remaining proposal unchanged.
func (s *Session) ApproveAll() error {
	if s.state != StateProposed {
		return fmt.Errorf("approve all: %w", ErrNotRunning)
	}
	for s.state == StateProposed {
		if err := s.Approve(nil); err != nil {
			return err
		}
	}
	return nil
}

// advance proposes the item at pos, skipping items whose sections were
// deleted, and completes the session when the queue is exhausted.
func (s *Session) advance() error {
	for s.pos < s.queue.Len() {
		p, err := s.engine.Propose(s.doc, s.queue.Items[s.pos])
		if errors.Is(err, ErrStaleItem) {
			s.pos++
			continue
		}
		if err != nil {
			return err
		}
		p.Cursor = s.Cursor()
		s.current = p
		s.state = StateProposed
		return nil
	}
	return s.complete()
}

func (s *Session) complete() error {
	s.state = StateCompleted
	s.current = Proposal{}
	s.queue = Queue{Rule: s.queue.Rule}
	s.pos = 0

	if s.commit == nil {
		return nil
	}
	if err := s.commit(s.doc, slices.Clone(s.changes)); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type payload struct {
	Index string
	Time  string
	Lines []string
}

var blockSeparator = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

// parseEdit splits approved text into one payload per section.
func parseEdit(blob string, span int, persistTime bool) ([]payload, error) {
	blob = strings.ReplaceAll(blob, "\r\n", "\n")
	blob = strings.Trim(blob, "\n")

	blocks := []string{blob}
	if span > 1 {
		blocks = blockSeparator.Split(blob, -1)
		if len(blocks) != span {
			return nil, &MalformedEditError{
				Reason: fmt.Sprintf("expected %d blocks separated by a blank line, got %d", span, len(blocks)),
			}
		}
	}

	out := make([]payload, 0, len(blocks))
	for i, block := range blocks {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) < 2 {
			return nil, &MalformedEditError{Payload: i, Reason: "an index and a time line are required"}
		}

		p := payload{
			Index: strings.TrimSpace(lines[0]),
			Time:  strings.TrimSpace(lines[1]),
			Lines: lines[2:],
		}
		if persistTime && len(p.Lines) > 0 {
			if _, err := subtitle.ParseTimeRange(p.Time); err != nil {
				return nil, &MalformedEditError{Payload: i, Reason: err.Error()}
			}
		}
		out = append(out, p)
	}
	return out, nil
}
