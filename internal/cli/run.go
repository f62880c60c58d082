package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/logger"
	"github.com/gantryci/gantry/pkg/errors"
	"github.com/gantryci/gantry/pkg/workflow"
)

// NewRunCmd creates the 'run' command: the CI trigger surface. An event is
// evaluated against the workflow definitions and every matching workflow's
// job is executed.
func NewRunCmd() *cobra.Command {
	var (
		eventType string
		branch    string
		tag       string
		action    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dispatch a repository event to the matching workflows",
		Long: `Evaluate a repository event against the workflow definitions and run
the jobs of every matching workflow. Events that match no workflow are a
no-op and exit zero.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ev, err := buildEvent(eventType, branch, tag, action)
			if err != nil {
				return err
			}

			workflows, err := workflow.LoadDir(cfg.Settings.WorkflowsDir)
			if err != nil {
				return err
			}

			matched := workflow.Dispatch(workflows, ev)
			if len(matched) == 0 {
				logger.Info("no workflow matched", logger.Fields{
					"event":  string(ev.Type),
					"branch": ev.Branch,
					"tag":    ev.Tag,
				})
				return nil
			}

			for _, w := range matched {
				logger.Info("running workflow", logger.Fields{"workflow": w.Name, "job": w.Job})
				switch w.Job {
				case workflow.JobCheck:
					err = runCheck(cmd.Context(), cfg, cmd.OutOrStdout())
				case workflow.JobPublish:
					err = runPublish(cmd.Context(), cfg, ev.Tag)
				default:
					err = errors.Wrapf(errors.ErrUnknownJob, "%s", w.Job)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&eventType, "event", "e", "", "event type (pull_request or release)")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "target branch of a pull_request event")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "tag of a release event")
	cmd.Flags().StringVar(&action, "action", workflow.ReleasePublished, "action of a release event")

	if err := cmd.MarkFlagRequired("event"); err != nil {
		panic(err)
	}

	return cmd
}

func buildEvent(eventType, branch, tag, action string) (workflow.Event, error) {
	switch workflow.EventType(eventType) {
	case workflow.EventPullRequest:
		if branch == "" {
			return workflow.Event{}, errors.Wrap(errors.ErrValidation, "pull_request events require --branch")
		}
		return workflow.Event{Type: workflow.EventPullRequest, Branch: branch}, nil
	case workflow.EventRelease:
		if tag == "" {
			return workflow.Event{}, errors.Wrap(errors.ErrValidation, "release events require --tag")
		}
		return workflow.Event{Type: workflow.EventRelease, Tag: tag, Action: action}, nil
	default:
		return workflow.Event{}, errors.Wrapf(errors.ErrUnknownEvent, "%q", eventType)
	}
}
