package lint

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/gantryci/gantry/pkg/errors"
)

// Runner distributes source files across a pool of workers and aggregates
// rule findings into a single Report. Results are deterministic: the same
// input always produces the same report regardless of worker scheduling.
type Runner struct {
	RuleSet *RuleSet
	Rules   []Rule

	// Workers is the number of concurrent check workers. Zero means one per
	// logical CPU.
	Workers int
}

// NewRunner builds a runner for the rule set with the built-in rules plus
// any extra (e.g. scripted) rules.
func NewRunner(rs *RuleSet, extra ...Rule) *Runner {
	return &Runner{
		RuleSet: rs,
		Rules:   append(BuiltinRules(rs), extra...),
	}
}

// skipDirs are never descended into during file discovery.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
}

// Run discovers the configured files and checks them, returning the
// aggregated report. Rule findings do not produce an error; only
// infrastructure failures (unreadable files, cancelled context) do.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	files, err := r.DiscoverFiles()
	if err != nil {
		return nil, err
	}
	return r.Check(ctx, files)
}

// DiscoverFiles walks the rule set's paths and returns the files to lint,
// sorted. Excluded and binary files are skipped.
func (r *Runner) DiscoverFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range r.RuleSet.Paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidPath, "lint path %s: %v", root, err)
		}

		if !info.IsDir() {
			if !seen[root] {
				seen[root] = true
				files = append(files, root)
			}
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if r.excluded(filepath.ToSlash(rel)) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, errors.Wrapf(walkErr, "failed to walk lint path %s", root)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (r *Runner) excluded(relPath string) bool {
	for _, pattern := range r.RuleSet.Exclude {
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return true
		}
		// Also match against the base name so patterns like "*.min.js"
		// apply at any depth.
		if ok, _ := filepath.Match(pattern, filepath.Base(relPath)); ok {
			return true
		}
	}
	return false
}

// Check runs the enabled rules over the given files with the worker pool.
func (r *Runner) Check(ctx context.Context, files []string) (*Report, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	enabled := r.enabledRules()

	tasks := make(chan string)
	var (
		mu         sync.Mutex
		violations []Violation
		runErr     *multierror.Error
		wg         sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				found, err := r.checkFile(path, enabled)
				mu.Lock()
				if err != nil {
					runErr = multierror.Append(runErr, err)
				} else {
					violations = append(violations, found...)
				}
				mu.Unlock()
			}
		}()
	}

	var ctxErr error
feed:
	for _, path := range files {
		select {
		case tasks <- path:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		}
	}
	close(tasks)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	if err := runErr.ErrorOrNil(); err != nil {
		return nil, errors.Wrap(err, "lint run failed")
	}

	violations = r.filter(violations)
	sortViolations(violations)

	return &Report{
		FilesChecked: len(files),
		Violations:   violations,
	}, nil
}

func (r *Runner) enabledRules() []Rule {
	enabled := make([]Rule, 0, len(r.Rules))
	for _, rule := range r.Rules {
		if r.RuleSet.Enabled(rule.Code()) {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

func (r *Runner) checkFile(path string, rules []Rule) ([]Violation, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	if isBinary(content) {
		return nil, nil
	}

	src := NewSource(filepath.ToSlash(path), content)
	var violations []Violation
	for _, rule := range rules {
		violations = append(violations, rule.Check(src)...)
	}
	return violations, nil
}

// filter drops violations for ignored codes and suppressed messages. Scripted
// rules are registered after the rule set is validated, so their codes are
// filtered here rather than at rule-selection time.
func (r *Runner) filter(violations []Violation) []Violation {
	filtered := violations[:0]
	for _, v := range violations {
		if !r.RuleSet.Enabled(v.Code) {
			continue
		}
		if r.RuleSet.Suppressed(v.Message) {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered
}

func sortViolations(violations []Violation) {
	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// isBinary applies the git heuristic: a NUL byte in the first 8000 bytes
// marks the file as binary.
func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
