package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/internal/core/rules"
	"github.com/hay-kot/subassist/pkg/iojson"
)

type ScanCmd struct {
	flags *Flags
	app   *assist.App

	// flags
	rule    string
	find    string
	replace string
}

// NewScanCmd creates a new scan command
func NewScanCmd(flags *Flags, app *assist.App) *ScanCmd {
	return &ScanCmd{flags: flags, app: app}
}

// Register adds the scan command to the application
func (cmd *ScanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "scan",
		Usage:     "Show which sections a rule would touch",
		UsageText: "subassist scan --rule <slug> [--find text --replace text] <files or globs...>",
		Description: `Scans files without prompting or writing anything and prints a JSON
report per file: the sections parsed, the encoding that was read and the
section indexes the rule would propose changes for.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "rule",
				Aliases:     []string{"r"},
				Usage:       "rule slug or name",
				Required:    true,
				Destination: &cmd.rule,
			},
			&cli.StringFlag{
				Name:        "find",
				Usage:       "text to find (find-replace)",
				Destination: &cmd.find,
			},
			&cli.StringFlag{
				Name:        "replace",
				Usage:       "replacement text (find-replace)",
				Destination: &cmd.replace,
			},
		},
		ShellComplete: RuleCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

// scanResult is the JSON output format for one file of subassist scan.
type scanResult struct {
	Path     string     `json:"path"`
	Output   string     `json:"output"`
	Encoding string     `json:"encoding,omitempty"`
	Sections int        `json:"sections"`
	Matches  [][]string `json:"matches"`
	Error    string     `json:"error,omitempty"`
}

func (cmd *ScanCmd) run(ctx context.Context, c *cli.Command) error {
	files, err := expandFiles(c.Args().Slice())
	if err != nil {
		return err
	}

	params := rules.Params{Find: cmd.find, Replace: cmd.replace}
	plans, err := cmd.app.Runner.Plan(ctx, cmd.rule, params, files)
	if err != nil {
		return err
	}

	results := make([]scanResult, 0, len(plans))
	for _, p := range plans {
		res := scanResult{
			Path:     p.Path,
			Output:   p.Output,
			Encoding: p.Input.Encoding,
			Sections: p.Sections,
			Matches:  [][]string{},
		}
		if p.Err != nil {
			res.Error = p.Err.Error()
			results = append(results, res)
			continue
		}

		for _, item := range p.Queue.Items {
			res.Matches = append(res.Matches, indexesOf(p, item.IDs))
		}
		results = append(results, res)
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, results)
}

// indexesOf maps section IDs to the index labels shown in the file.
func indexesOf(p assist.Plan, ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if label, ok := p.Labels[id]; ok {
			out = append(out, label)
		}
	}
	return out
}
