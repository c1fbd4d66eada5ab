package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/internal/core/journal"
	"github.com/hay-kot/subassist/internal/core/styles"
	"github.com/hay-kot/subassist/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags
	app   *assist.App

	// flags
	runID      string
	file       string
	limit      int
	jsonOutput bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags, app *assist.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "history",
		Usage: "Show runs and the edits they approved",
		UsageText: `subassist history                 # recent runs
subassist history --run <id>      # edits made by one run
subassist history --file <path>   # edits made to one file`,
		Description: `Reads the journal of approved edits. Each run records the rule, the
number of files and the sections that were changed, removed or edited by
hand before approval.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "run",
				Usage:       "show the edits of a run",
				Destination: &cmd.runID,
			},
			&cli.StringFlag{
				Name:        "file",
				Usage:       "show the edits made to a file",
				Destination: &cmd.file,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "maximum rows to show (0 for all)",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// runInfo is the JSON output format for runs.
type runInfo struct {
	ID         string     `json:"id"`
	Rule       string     `json:"rule"`
	Files      int        `json:"files"`
	Changes    int        `json:"changes"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// entryInfo is the JSON output format for journal entries.
type entryInfo struct {
	RunID     string    `json:"run_id"`
	File      string    `json:"file"`
	Rule      string    `json:"rule"`
	Index     string    `json:"index"`
	Action    string    `json:"action"`
	Old       string    `json:"old"`
	New       string    `json:"new,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer
	if !cmd.app.Config.JournalEnabled() {
		_, _ = fmt.Fprintln(out, styles.MutedStyle.Render("journal disabled; set journal.enabled to record edits"))
		return nil
	}

	switch {
	case cmd.runID != "":
		run, err := cmd.app.Journal.GetRun(ctx, cmd.runID)
		if errors.Is(err, journal.ErrNotFound) {
			return fmt.Errorf("run %q not found", cmd.runID)
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		entries, err := cmd.app.Journal.ListByRun(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		if !cmd.jsonOutput {
			_, _ = fmt.Fprintln(out, styles.HeaderStyle.Render(fmt.Sprintf("%s  %s  %s", run.ID, run.Rule, run.StartedAt.Format(time.DateTime))))
		}
		return cmd.printEntries(c, entries)
	case cmd.file != "":
		path, err := filepath.Abs(cmd.file)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", cmd.file, err)
		}
		entries, err := cmd.app.Journal.ListByFile(ctx, path, cmd.limit)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		return cmd.printEntries(c, entries)
	default:
		runs, err := cmd.app.Journal.ListRuns(ctx, cmd.limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		return cmd.printRuns(c, runs)
	}
}

func (cmd *HistoryCmd) printRuns(c *cli.Command, runs []journal.Run) error {
	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, r := range runs {
			info := runInfo{ID: r.ID, Rule: r.Rule, Files: r.Files, Changes: r.Changes, StartedAt: r.StartedAt}
			if r.Finished() {
				info.FinishedAt = &r.FinishedAt
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode run: %w", err)
			}
		}
		return nil
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN\tRULE\tFILES\tCHANGES\tSTARTED\tSTATUS")
	for _, r := range runs {
		status := styles.SuccessStyle.Render("done")
		if !r.Finished() {
			status = styles.WarningStyle.Render("incomplete")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.Rule, r.Files, r.Changes, r.StartedAt.Local().Format(time.DateTime), status)
	}
	return w.Flush()
}

func (cmd *HistoryCmd) printEntries(c *cli.Command, entries []journal.Entry) error {
	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, e := range entries {
			info := entryInfo{
				RunID:     e.RunID,
				File:      e.File,
				Rule:      e.Rule,
				Index:     e.Index,
				Action:    string(e.Action),
				Old:       e.Old,
				New:       e.New,
				CreatedAt: e.CreatedAt,
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode entry: %w", err)
			}
		}
		return nil
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No edits recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN\tFILE\tINDEX\tACTION\tTEXT")
	for _, e := range entries {
		text := e.New
		if e.Action == journal.ActionDeleted {
			text = e.Old
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.RunID, filepath.Base(e.File), e.Index, e.Action, summarize(text))
	}
	return w.Flush()
}

// summarize flattens a rendered section to its text lines for table output.
func summarize(rendered string) string {
	lines := strings.Split(rendered, "\n")
	if len(lines) > 2 {
		lines = lines[2:]
	}
	s := strings.Join(lines, " / ")
	if r := []rune(s); len(r) > 60 {
		s = string(r[:57]) + "..."
	}
	return s
}
