package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/internal/core/styles"
	"github.com/hay-kot/subassist/internal/core/verify"
	"github.com/hay-kot/subassist/pkg/iojson"
)

type LintCmd struct {
	flags *Flags
	app   *assist.App

	// flags
	jsonOutput bool
}

// NewLintCmd creates a new lint command
func NewLintCmd(flags *Flags, app *assist.App) *LintCmd {
	return &LintCmd{flags: flags, app: app}
}

// Register adds the lint command to the application
func (cmd *LintCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "lint",
		Usage:     "Check that subtitle files parse with a standard reader",
		UsageText: "subassist lint [--json] <files or globs...>",
		Description: `Parses each file with an independent subtitle reader and reports the
number of cues, overlapping cues and the end of the last cue.

Exits non-zero when any file fails to parse.`,
		Flags: []cli.Flag{
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

// lintResult is the JSON output format for subassist lint --json.
type lintResult struct {
	Path     string `json:"path"`
	OK       bool   `json:"ok"`
	Items    int    `json:"items"`
	Overlaps int    `json:"overlaps"`
	Duration string `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (cmd *LintCmd) run(ctx context.Context, c *cli.Command) error {
	files, err := expandFiles(c.Args().Slice())
	if err != nil {
		return err
	}

	results := make([]lintResult, 0, len(files))
	failed := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := verify.File(path)
		if err != nil {
			failed++
			results = append(results, lintResult{Path: path, Error: err.Error()})
			continue
		}
		results = append(results, lintResult{
			Path:     path,
			OK:       true,
			Items:    report.Items,
			Overlaps: report.Overlaps,
			Duration: report.Duration.Truncate(time.Millisecond).String(),
		})
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, r := range results {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
		}
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "STATUS\tITEMS\tOVERLAPS\tLENGTH\tPATH")
		for _, r := range results {
			if !r.OK {
				_, _ = fmt.Fprintf(w, "%s\t-\t-\t-\t%s\n", styles.ErrorStyle.Render(styles.IconMissing), r.Error)
				continue
			}
			status := styles.SuccessStyle.Render(styles.IconApproved)
			if r.Overlaps > 0 {
				status = styles.WarningStyle.Render(styles.IconWarning)
			}
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", status, r.Items, r.Overlaps, r.Duration, r.Path)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
