package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/subassist/internal/assist"
)

// NewRoot builds the root command with the global flags bound to flags and
// every subcommand registered. Callers attach Before/After hooks.
func NewRoot(flags *Flags, app *assist.App, version string) *cli.Command {
	root := &cli.Command{
		Name:      "subassist",
		Usage:     "Review and correct subtitle files rule by rule",
		UsageText: "subassist [global options] command [command options]",
		Description: `subassist scans SubRip files for common mistakes (stray spaces, broken
dashes, overlapping cues, shouted captions) and proposes a fix for each
match. You approve, edit or skip every proposal before the file is
written.

Run 'subassist rules' to list the available rules.
Run 'subassist run --rule <slug> <files...>' to start reviewing.`,
		Version:               version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SUBASSIST_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/subassist.log)",
				Sources:     cli.EnvVars("SUBASSIST_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SUBASSIST_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SUBASSIST_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
	}

	root = NewRulesCmd(flags, app).Register(root)
	root = NewRunCmd(flags, app).Register(root)
	root = NewScanCmd(flags, app).Register(root)
	root = NewLintCmd(flags, app).Register(root)
	root = NewHistoryCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)
	root = NewConfigCmd(flags).Register(root)

	return root
}
