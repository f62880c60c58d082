package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/logger"
	"github.com/gantryci/gantry/pkg/config"
	"github.com/gantryci/gantry/pkg/errors"
	"github.com/gantryci/gantry/pkg/lint"
)

// NewCheckCmd creates the 'check' command: the format/lint gate.
func NewCheckCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Run the format/lint gate",
		Long: `Run every configured lint and format rule over the repository and
aggregate a single pass/fail result. The command exits non-zero when any
non-ignored rule reports a violation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Settings.MaxWorkers = workers
			}
			if len(args) > 0 {
				cfg.Lint.Paths = args
			}
			return runCheck(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of check workers (default: one per CPU)")

	return cmd
}

// runCheck executes the lint gate with the given configuration and writes
// the report to out. It is shared by 'check' and 'run'.
func runCheck(ctx context.Context, cfg *config.Config, out io.Writer) error {
	scripted, err := lint.LoadScriptedRules(cfg.Settings.RulesDir)
	if err != nil {
		return err
	}

	runner := lint.NewRunner(&cfg.Lint, scripted...)
	runner.Workers = cfg.Settings.MaxWorkers

	logger.Debug("running lint gate", logger.Fields{
		"paths":   cfg.Lint.Paths,
		"rules":   len(runner.Rules),
		"workers": cfg.Settings.MaxWorkers,
	})

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Settings.OutputFormat == "json" {
		if err := report.WriteJSON(out); err != nil {
			return err
		}
	} else {
		if err := report.WriteText(out); err != nil {
			return err
		}
	}

	if !report.Pass() {
		return errors.Wrapf(errors.ErrLintFailed, "%d violations in %d files",
			len(report.Violations), report.FilesChecked)
	}

	logger.Success("lint gate passed", logger.Fields{"files": report.FilesChecked})
	return nil
}
