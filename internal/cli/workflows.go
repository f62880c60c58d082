package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/logger"
	"github.com/gantryci/gantry/pkg/workflow"
)

// NewWorkflowsCmd creates the workflows command with subcommands.
func NewWorkflowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Manage workflow definitions",
		Long:  "List and validate the workflow definitions of a repository",
	}

	cmd.AddCommand(
		newWorkflowsListCmd(),
		newWorkflowsValidateCmd(),
	)

	return cmd
}

func newWorkflowsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflow definitions",
		Long:  "Display the workflows found in the configured workflows directory",
		RunE:  runWorkflowsList,
	}

	return cmd
}

func newWorkflowsValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate workflow definitions",
		Long:  "Parse and validate every workflow in the configured workflows directory",
		RunE:  runWorkflowsValidate,
	}

	return cmd
}

func runWorkflowsList(*cobra.Command, []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	workflows, err := workflow.LoadDir(cfg.Settings.WorkflowsDir)
	if err != nil {
		return err
	}

	if len(workflows) == 0 {
		fmt.Printf("No workflows found in %s\n", cfg.Settings.WorkflowsDir)
		return nil
	}

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "NAME\tTRIGGER\tJOB")
	_, _ = fmt.Fprintln(tabWriter, "----\t-------\t---")

	for _, w := range workflows {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\n", w.Name, describeTrigger(w.On), w.Job)
	}

	_ = tabWriter.Flush()
	return nil
}

func runWorkflowsValidate(*cobra.Command, []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	workflows, err := workflow.LoadDir(cfg.Settings.WorkflowsDir)
	if err != nil {
		return err
	}

	logger.Success("workflows valid", logger.Fields{
		"dir":   cfg.Settings.WorkflowsDir,
		"count": len(workflows),
	})
	return nil
}

func describeTrigger(t workflow.Trigger) string {
	switch {
	case t.PullRequest != nil:
		return fmt.Sprintf("pull_request [%s]", strings.Join(t.PullRequest.Branches, ", "))
	case t.Release != nil:
		return fmt.Sprintf("release [%s]", strings.Join(t.Release.Types, ", "))
	default:
		return "none"
	}
}
