// Package assist runs a correction rule over a batch of subtitle files,
// handing every proposal to a Reviewer and writing the approved result.
package assist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/subassist/internal/core/charset"
	"github.com/hay-kot/subassist/internal/core/config"
	"github.com/hay-kot/subassist/internal/core/journal"
	"github.com/hay-kot/subassist/internal/core/logging"
	"github.com/hay-kot/subassist/internal/core/review"
	"github.com/hay-kot/subassist/internal/core/rules"
	"github.com/hay-kot/subassist/internal/core/subtitle"
	"github.com/hay-kot/subassist/internal/core/verify"
	"github.com/hay-kot/subassist/pkg/fsutil"
	"github.com/hay-kot/subassist/pkg/randid"
)

// errQuit stops the batch without writing the file under review.
var errQuit = errors.New("quit")

// Options control reading and writing files.
type Options struct {
	Encoding         string
	AtomicWrite      bool
	Verify           bool
	DetectCharset    bool
	ConvertExtension string
	MaxPasses        int
}

// OptionsFromConfig maps configuration onto runner options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Encoding:         cfg.Output.Encoding,
		AtomicWrite:      cfg.AtomicWrite(),
		Verify:           cfg.Output.Verify,
		DetectCharset:    cfg.DetectCharset(),
		ConvertExtension: cfg.ConvertExtension(),
		MaxPasses:        cfg.Rules.MaxPasses,
	}
}

// RunRequest names the rule and files of one batch. Nil collaborators fall
// back to AutoApprove and NopObserver; a nil Params provider leaves find
// empty, which matches nothing.
type RunRequest struct {
	Rule     string
	Files    []string
	Reviewer Reviewer
	Params   ParamsProvider
	Observer Observer
}

// Runner processes batches. A Runner may be reused but runs one batch at a
// time.
type Runner struct {
	registry *rules.Registry
	opts     Options
	journal  journal.Store
	log      zerolog.Logger
	now      func() time.Time
}

// NewRunner creates a runner. A nil store disables the journal.
func NewRunner(registry *rules.Registry, opts Options, store journal.Store, log zerolog.Logger) *Runner {
	if store == nil {
		store = journal.Nop{}
	}
	if opts.Encoding == "" {
		opts.Encoding = charset.UTF8
	}
	if opts.ConvertExtension == "" {
		opts.ConvertExtension = config.LegacyConvertExtension
	}
	return &Runner{
		registry: registry,
		opts:     opts,
		journal:  store,
		log:      log,
		now:      time.Now,
	}
}

// Plan scans files without reviewing or writing anything.
func (r *Runner) Plan(ctx context.Context, ruleName string, params rules.Params, files []string) ([]Plan, error) {
	rule, err := r.registry.Lookup(ruleName)
	if err != nil {
		return nil, err
	}

	plans := make([]Plan, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return plans, err
		}

		p := Plan{Path: path, Output: r.outputPath(path, rule)}
		doc, info, err := r.load(path, rule)
		switch {
		case err != nil:
			p.Err = err
		default:
			p.Input = info
			p.Sections = doc.Len()
			p.Queue = review.Scan(doc, rule, params)
			p.Labels = make(map[int]string, p.Sections)
			for _, s := range doc.Sections() {
				p.Labels[s.ID] = s.Index
			}
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Plan is the dry-run result for one file.
type Plan struct {
	Path     string
	Output   string
	Input    charset.Info
	Sections int
	Queue    review.Queue
	Labels   map[int]string // section ID to index label
	Err      error
}

// Run processes req.Files strictly in order. Per-file failures are reported
// to the observer and never stop the batch. Run returns early on context
// cancellation, on a reviewer error, or when the reviewer quits; in every
// case the summary covers the files handled so far.
func (r *Runner) Run(ctx context.Context, req RunRequest) (Summary, error) {
	rule, err := r.registry.Lookup(req.Rule)
	if err != nil {
		return Summary{}, err
	}

	b := &batch{
		runner:   r,
		rule:     rule,
		reviewer: req.Reviewer,
		obs:      req.Observer,
		count:    len(req.Files),
	}
	if b.reviewer == nil {
		b.reviewer = AutoApprove{}
	}
	if b.obs == nil {
		b.obs = NopObserver{}
	}

	if rule.NeedsParams && req.Params != nil {
		b.params, err = req.Params.FindReplace(ctx)
		if err != nil {
			return Summary{}, fmt.Errorf("find/replace parameters: %w", err)
		}
	}

	runID := randid.Generate(8)
	ctx = logging.WithRunID(ctx, runID)
	sum := Summary{RunID: runID, Rule: rule.Slug}

	r.log.Info().Ctx(ctx).Str("rule", rule.Slug).Int("files", len(req.Files)).Msg("starting run")
	if err := r.journal.StartRun(ctx, journal.Run{ID: runID, Rule: rule.Slug, StartedAt: r.now()}); err != nil {
		r.log.Warn().Ctx(ctx).Err(err).Msg("failed to start journal run")
	}

	engine := review.Engine{Rule: rule, Params: b.params, MaxPasses: r.opts.MaxPasses}
	session := review.NewSession(engine, review.WithCommit(b.commit))

	var runErr error
	for i, path := range req.Files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		res, err := b.process(ctx, session, i, path)
		sum.Files = append(sum.Files, res)
		b.obs.OnFileDone(res)

		if errors.Is(err, errQuit) {
			sum.Quit = true
			break
		}
		if err != nil {
			runErr = err
			break
		}
	}

	// journal bookkeeping outlives cancellation of the batch
	jctx := context.WithoutCancel(ctx)
	if err := r.journal.FinishRun(jctx, runID, len(sum.Files), sum.Changes(), r.now()); err != nil {
		r.log.Warn().Ctx(ctx).Err(err).Msg("failed to finish journal run")
	}

	r.log.Info().Ctx(ctx).
		Int("files", len(sum.Files)).
		Int("written", sum.Count(StatusWritten)).
		Int("changes", sum.Changes()).
		Bool("quit", sum.Quit).
		Msg("run finished")

	b.obs.OnComplete(sum)
	return sum, runErr
}

// load reads, decodes and parses one file.
func (r *Runner) load(path string, rule rules.Rule) (*subtitle.Document, charset.Info, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, charset.Info{}, fmt.Errorf("%s: %w", path, ErrFileMissing)
	}
	if err != nil {
		return nil, charset.Info{}, fmt.Errorf("read %s: %w", path, err)
	}

	text, info, err := charset.Decode(raw, r.opts.DetectCharset)
	if err != nil {
		return nil, info, fmt.Errorf("decode %s: %w", path, err)
	}

	doc, err := subtitle.Parse(text, subtitle.ParseOptions{HeaderLines: rule.HeaderLines})
	if err != nil {
		return nil, info, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, info, nil
}

// outputPath is where the corrected file for path is written.
func (r *Runner) outputPath(path string, rule rules.Rule) string {
	if !rule.Converts {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + r.opts.ConvertExtension
}

// batch carries the state of one Run call.
type batch struct {
	runner   *Runner
	rule     rules.Rule
	params   rules.Params
	reviewer Reviewer
	obs      Observer
	count    int

	// set for the file under review; read by commit
	ctx     context.Context
	current *FileResult
}

func (b *batch) process(ctx context.Context, session *review.Session, i int, path string) (FileResult, error) {
	ctx = logging.WithFile(ctx, path)
	log := b.runner.log
	res := &FileResult{Path: path, Output: b.runner.outputPath(path, b.rule)}

	doc, info, err := b.runner.load(path, b.rule)
	res.Input = info
	switch {
	case errors.Is(err, ErrFileMissing):
		log.Warn().Ctx(ctx).Msg("file missing, skipping")
		res.Status, res.Err = StatusMissing, err
		b.obs.OnFileMissing(path)
		return *res, nil
	case err != nil:
		log.Error().Ctx(ctx).Err(err).Msg("failed to load file")
		res.Status, res.Err = StatusFailed, err
		b.obs.OnFileError(path, err)
		return *res, nil
	}

	if info.Replaced {
		log.Warn().Ctx(ctx).Msg("input is not valid utf-8; invalid bytes were replaced")
	}

	queue := review.Scan(doc, b.rule, b.params)
	if queue.Len() == 0 {
		log.Info().Ctx(ctx).Msg("no sections match the rule")
		res.Status = StatusNoMatches
		return *res, nil
	}

	b.ctx, b.current = ctx, res
	defer func() { b.ctx, b.current = nil, nil }()

	if err := session.Load(doc, queue); err != nil {
		return *res, fmt.Errorf("load %s: %w", path, err)
	}
	if err := session.Start(); err != nil {
		res.Status, res.Err = StatusFailed, err
		b.obs.OnFileError(path, err)
		return *res, nil
	}

	err = b.review(ctx, session, i, res)
	return *res, err
}

func (b *batch) review(ctx context.Context, session *review.Session, i int, res *FileResult) error {
	for session.State() == review.StateProposed {
		if err := ctx.Err(); err != nil {
			res.Status = StatusAborted
			return err
		}

		p, _ := session.Current()
		prog := Progress{
			File:      res.Path,
			FileIndex: i,
			FileCount: b.count,
			Cursor:    session.Cursor(),
			Total:     session.Total(),
		}
		b.obs.OnProgress(prog)

		d, err := b.reviewer.Review(ctx, p, prog)
		if err != nil {
			res.Status = StatusAborted
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("review %s: %w", res.Path, err)
		}

		err = decide(session, d)
		switch {
		case errors.Is(err, errQuit):
			b.runner.log.Info().Ctx(ctx).Int("cursor", prog.Cursor).Msg("review quit, file left unchanged")
			res.Status = StatusAborted
			return errQuit
		case errors.Is(err, review.ErrMalformedEdit):
			b.runner.log.Debug().Ctx(ctx).Err(err).Msg("edit rejected")
			b.obs.OnEditRejected(prog, err)
		case err != nil:
			b.runner.log.Error().Ctx(ctx).Err(err).Msg("failed to apply decision")
			res.Status, res.Err = StatusFailed, err
			b.obs.OnFileError(res.Path, err)
			return nil
		}
	}
	return nil
}

func decide(s *review.Session, d Decision) error {
	switch d.Action {
	case ActionApprove:
		return s.Approve(d.Text)
	case ActionSkip:
		return s.Skip()
	case ActionPrevious:
		return s.Previous()
	case ActionApproveAll:
		return s.ApproveAll()
	case ActionSkipAll:
		return s.SkipAll()
	case ActionQuit:
		return errQuit
	default:
		return fmt.Errorf("unsupported decision %s", d.Action)
	}
}

// commit writes the reviewed document once its queue is exhausted.
func (b *batch) commit(doc *subtitle.Document, changes []review.Change) error {
	ctx, res, r := b.ctx, b.current, b.runner

	data, dropped, err := charset.Encode(subtitle.Serialize(doc), r.opts.Encoding)
	if err != nil {
		return fmt.Errorf("encode %s: %w", res.Output, err)
	}
	if dropped > 0 {
		r.log.Warn().Ctx(ctx).Int("dropped", dropped).Str("encoding", r.opts.Encoding).
			Msg("characters not representable in the output encoding were dropped")
	}

	if err := fsutil.WriteFile(res.Output, data, r.opts.AtomicWrite); err != nil {
		return fmt.Errorf("write %s: %w", res.Output, err)
	}
	res.Status, res.Dropped, res.Changes = StatusWritten, dropped, changes
	r.log.Info().Ctx(ctx).Str("output", res.Output).Int("changes", len(changes)).Msg("file written")

	if r.opts.Verify {
		report, err := verify.File(res.Output)
		if err != nil {
			r.log.Warn().Ctx(ctx).Err(err).Msg("written file failed verification")
		} else {
			res.Verify = &report
			r.log.Debug().Ctx(ctx).Int("items", report.Items).Int("overlaps", report.Overlaps).Msg("written file verified")
		}
	}

	recorded := res.Output
	if abs, err := filepath.Abs(recorded); err == nil {
		recorded = abs
	}
	entries := journal.FromChanges(logging.GetRunID(ctx), recorded, b.rule.Slug, changes, r.now())
	if err := r.journal.Record(context.WithoutCancel(ctx), entries); err != nil {
		r.log.Warn().Ctx(ctx).Err(err).Msg("failed to record journal entries")
	}
	return nil
}
