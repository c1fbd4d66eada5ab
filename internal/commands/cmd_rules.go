package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/pkg/iojson"
)

type RulesCmd struct {
	flags *Flags
	app   *assist.App

	// flags
	jsonOutput bool
}

// NewRulesCmd creates a new rules command
func NewRulesCmd(flags *Flags, app *assist.App) *RulesCmd {
	return &RulesCmd{flags: flags, app: app}
}

// Register adds the rules command to the application
func (cmd *RulesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rules",
		Usage:     "List correction rules",
		UsageText: "subassist rules [--json]",
		Description: `Lists every rule in catalog order with its slug, span and description.

Span 2 rules look at a section and the one after it together.`,
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

// ruleInfo is the JSON output format for subassist rules --json.
type ruleInfo struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Span        int    `json:"span"`
	NeedsParams bool   `json:"needs_params,omitempty"`
}

func (cmd *RulesCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer
	all := cmd.app.Rules.All()

	if cmd.jsonOutput {
		for _, r := range all {
			info := ruleInfo{
				Slug:        r.Slug,
				Name:        r.Name,
				Description: r.Description,
				Span:        r.Span,
				NeedsParams: r.NeedsParams,
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode rule: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SLUG\tNAME\tSPAN\tDESCRIPTION")
	for _, r := range all {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Slug, r.Name, r.Span, r.Description)
	}
	return w.Flush()
}
