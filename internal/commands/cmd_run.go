package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/internal/core/styles"
	"github.com/hay-kot/subassist/internal/core/validate"
	"github.com/hay-kot/subassist/internal/prompt"
	"github.com/hay-kot/subassist/pkg/iojson"
)

type RunCmd struct {
	flags *Flags
	app   *assist.App
	fr    *iojson.FileReader[RunPlan]

	// flags
	rule    string
	find    string
	replace string
	yes     bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags, app *assist.App) *RunCmd {
	return &RunCmd{
		flags: flags,
		app:   app,
		fr: &iojson.FileReader[RunPlan]{
			Name:  "plan",
			Usage: "read rule and files from a JSON file (- for stdin)",
		},
	}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "run",
		Usage: "Review and apply a rule to subtitle files",
		UsageText: `subassist run --rule <slug> [options] <files or globs...>

Interactive review:
  subassist run --rule dash-space movies/*.srt

Headless, approving every proposal:
  subassist run --rule find-replace --find colour --replace color --yes '**/*.srt'

From a plan file:
  subassist run --plan plan.json`,
		Description: `Scans each file for sections the rule matches and walks through the
proposals one by one. Files are processed in the order given; a file is
written only once every proposal for it has been decided.

Without a terminal on stdin, or with --yes, every proposal is approved.

Plan JSON schema:
  {
    "rule": "find-replace",
    "files": ["a.srt", "season1/**/*.srt"],
    "find": "colour",
    "replace": "color"
  }`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "rule",
				Aliases:     []string{"r"},
				Usage:       "rule slug or name (see subassist rules)",
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
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "approve every proposal without asking",
				Destination: &cmd.yes,
			},
			cmd.fr.Flag(),
		},
		ShellComplete: RuleCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

// RunPlan is the JSON input schema for subassist run --plan.
type RunPlan struct {
	Rule    string   `json:"rule"`
	Files   []string `json:"files"`
	Find    string   `json:"find,omitempty"`
	Replace string   `json:"replace,omitempty"`
}

// Validate checks the plan for errors using criterio.
func (p RunPlan) Validate() error {
	if len(p.Files) == 0 {
		return criterio.NewFieldErrors("files", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	if err := validate.NotEmpty(p.Rule); err != nil {
		errs = errs.Append("rule", err)
	}
	for i, f := range p.Files {
		if err := validate.NotEmpty(f); err != nil {
			errs = errs.Append(fmt.Sprintf("files[%d]", i), err)
		}
	}
	return errs.ToError()
}

// resolve merges the plan with command line flags and arguments; flags win.
func (cmd *RunCmd) resolve(args []string) (RunPlan, error) {
	// plan is the zero value when --plan is not given
	plan, _, err := cmd.fr.Read()
	if err != nil {
		return RunPlan{}, fmt.Errorf("read plan: %w", err)
	}

	if cmd.rule != "" {
		plan.Rule = cmd.rule
	}
	if cmd.find != "" {
		plan.Find, plan.Replace = cmd.find, cmd.replace
	}
	plan.Files = append(plan.Files, args...)

	if err := plan.Validate(); err != nil {
		return RunPlan{}, err
	}

	plan.Files, err = expandFiles(plan.Files)
	if err != nil {
		return RunPlan{}, err
	}
	return plan, nil
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	plan, err := cmd.resolve(c.Args().Slice())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	req := assist.RunRequest{
		Rule:     plan.Rule,
		Files:    plan.Files,
		Observer: prompt.NewPrinter(out),
		Reviewer: assist.AutoApprove{},
	}

	interactive := !cmd.yes && term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 0
		}
		terminal := prompt.NewTerminal(out, width)
		req.Reviewer = terminal
		req.Params = terminal
	}
	if plan.Find != "" {
		req.Params = assist.StaticParams{Find: plan.Find, Replace: plan.Replace}
	}

	log.Debug().Str("rule", plan.Rule).Int("files", len(plan.Files)).Bool("interactive", interactive).Msg("run")

	sum, err := cmd.app.Runner.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("run %s: %w", plan.Rule, err)
	}
	if sum.Quit {
		_, _ = fmt.Fprintln(out, styles.WarningStyle.Render("stopped before the end of the batch"))
	}
	if sum.Count(assist.StatusFailed) > 0 || sum.Count(assist.StatusMissing) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
