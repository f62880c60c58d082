// Package workflow loads and evaluates the declarative workflow definitions
// that bind repository events to harness jobs. A workflow names the event it
// reacts to (pull requests into selected branches, published releases) and
// the job that must run when the event matches.
package workflow

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/gantryci/gantry/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EventType identifies the kind of repository event being dispatched.
type EventType string

// Supported event types.
const (
	EventPullRequest EventType = "pull_request"
	EventRelease     EventType = "release"
)

// Release actions.
const (
	ReleasePublished = "published"
)

// Job names a workflow can dispatch to.
const (
	JobCheck   = "check"
	JobPublish = "publish"
)

var knownJobs = []string{JobCheck, JobPublish}

// Event is a single repository event presented to the trigger surface.
type Event struct {
	Type   EventType
	Branch string // target branch, set for pull_request events
	Tag    string // release tag, set for release events
	Action string // release action, e.g. "published"
}

// PullRequestTrigger fires for pull requests whose target branch matches one
// of the listed patterns.
type PullRequestTrigger struct {
	Branches []string `yaml:"branches"`
}

// ReleaseTrigger fires for release events with one of the listed actions.
type ReleaseTrigger struct {
	Types []string `yaml:"types"`
}

// Trigger is the event filter of a workflow. Exactly one of its fields must
// be set.
type Trigger struct {
	PullRequest *PullRequestTrigger `yaml:"pull_request,omitempty"`
	Release     *ReleaseTrigger     `yaml:"release,omitempty"`
}

// Workflow binds a trigger to a job.
type Workflow struct {
	Name string  `yaml:"name"`
	On   Trigger `yaml:"on"`
	Job  string  `yaml:"job"`
}

// Matches reports whether the workflow should run for the given event.
func (w *Workflow) Matches(ev Event) bool {
	switch ev.Type {
	case EventPullRequest:
		if w.On.PullRequest == nil {
			return false
		}
		for _, pattern := range w.On.PullRequest.Branches {
			if MatchBranch(pattern, ev.Branch) {
				return true
			}
		}
		return false
	case EventRelease:
		if w.On.Release == nil {
			return false
		}
		if len(w.On.Release.Types) == 0 {
			return ev.Action == ReleasePublished
		}
		return slices.Contains(w.On.Release.Types, ev.Action)
	default:
		return false
	}
}

// Validate checks the workflow definition for structural errors.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return errors.Wrap(errors.ErrWorkflowValidation, "workflow name is required")
	}
	triggers := 0
	if w.On.PullRequest != nil {
		triggers++
		if len(w.On.PullRequest.Branches) == 0 {
			return errors.Wrapf(errors.ErrWorkflowValidation,
				"workflow %s: pull_request trigger requires at least one branch pattern", w.Name)
		}
	}
	if w.On.Release != nil {
		triggers++
		for _, action := range w.On.Release.Types {
			if action != ReleasePublished {
				return errors.Wrapf(errors.ErrWorkflowValidation,
					"workflow %s: unsupported release action %q", w.Name, action)
			}
		}
	}
	if triggers != 1 {
		return errors.Wrapf(errors.ErrWorkflowValidation,
			"workflow %s: exactly one trigger must be set, got %d", w.Name, triggers)
	}
	if !slices.Contains(knownJobs, w.Job) {
		return errors.Wrapf(errors.ErrUnknownJob, "workflow %s: job %q", w.Name, w.Job)
	}
	return nil
}

// LoadFile parses and validates a single workflow definition. A parse or
// validation error here is fatal before any job step runs.
func LoadFile(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read workflow file %s", path)
	}

	var w Workflow
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&w); err != nil {
		return nil, errors.Wrapf(errors.ErrWorkflowParse, "%s: %v", path, err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// LoadDir loads all workflow definitions (*.yaml, *.yml) from a directory,
// sorted by file name so dispatch order is stable.
func LoadDir(dir string) ([]*Workflow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read workflows directory %s", dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	workflows := make([]*Workflow, 0, len(paths))
	for _, path := range paths {
		w, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, nil
}

// Dispatch returns the workflows that match the event, in load order.
func Dispatch(workflows []*Workflow, ev Event) []*Workflow {
	var matched []*Workflow
	for _, w := range workflows {
		if w.Matches(ev) {
			matched = append(matched, w)
		}
	}
	return matched
}
