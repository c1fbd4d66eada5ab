package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/subassist/internal/assist"
)

// RuleCompleter returns a ShellCompleteFunc that suggests rule slugs after
// --rule. Anything else falls back to the default flag completion.
func RuleCompleter(app *assist.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		args := cmd.Args()
		if !args.Present() {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		last := args.Slice()[args.Len()-1]
		if last != "--rule" && last != "-r" {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		w := cmd.Root().Writer
		for _, r := range app.Rules.All() {
			_, _ = fmt.Fprintln(w, r.Slug)
		}
	}
}
