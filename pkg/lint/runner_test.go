package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestRunner(t *testing.T, rs *RuleSet) *Runner {
	t.Helper()
	rs.ApplyDefaults()
	require.NoError(t, rs.Validate())
	return NewRunner(rs)
}

func TestRunnerCleanTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "all good\n")
	writeFile(t, dir, "sub/b.txt", "also fine\n")

	runner := newTestRunner(t, &RuleSet{Paths: []string{dir}})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Pass())
	assert.Equal(t, 2, report.FilesChecked)
	assert.Empty(t, report.Violations)
}

func TestRunnerReportsViolatingCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.txt", "trailing space here \n")

	runner := newTestRunner(t, &RuleSet{Paths: []string{dir}})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Pass())
	require.Len(t, report.Violations, 1)
	assert.Equal(t, CodeTrailingSpace, report.Violations[0].Code)
	assert.Equal(t, 1, report.Violations[0].Line)
}

func TestRunnerIgnoredCodeProducesNoViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.txt", "trailing space here \n")

	runner := newTestRunner(t, &RuleSet{
		Paths:  []string{dir},
		Ignore: []string{CodeTrailingSpace},
	})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Pass())
	for _, v := range report.Violations {
		assert.NotEqual(t, CodeTrailingSpace, v.Code)
	}
}

func TestRunnerSuppressionsFilterFindings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.txt", "x \ny\t\n")

	runner := newTestRunner(t, &RuleSet{
		Paths:        []string{dir},
		Suppressions: []string{`^trailing`},
	})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	// The trailing-whitespace findings are suppressed; nothing else fires.
	assert.True(t, report.Pass())
}

func TestRunnerIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "line with trailing space \nno newline at end")
	writeFile(t, dir, "b.txt", "\tindented with tab\n")
	writeFile(t, dir, "c/d.txt", "DO NOT MERGE\n")

	runner := newTestRunner(t, &RuleSet{Paths: []string{dir}})
	// Many workers to exercise nondeterministic scheduling.
	runner.Workers = 8

	first, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.False(t, first.Pass())

	for i := 0; i < 5; i++ {
		again, err := runner.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRunnerExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "checked.txt", "bad \n")
	writeFile(t, dir, "generated.min.js", "bad \n")
	writeFile(t, dir, "sub/generated.min.js", "bad \n")

	runner := newTestRunner(t, &RuleSet{
		Paths:   []string{dir},
		Exclude: []string{"*.min.js"},
	})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesChecked)
	require.Len(t, report.Violations, 1)
	assert.Contains(t, report.Violations[0].File, "checked.txt")
}

func TestRunnerSkipsBinaryFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin.dat"), []byte{0x00, 0x01, 'x', ' ', '\n'}, 0o644))

	runner := newTestRunner(t, &RuleSet{Paths: []string{dir}})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Pass())
}

func TestRunnerSkipsVCSDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/config", "bad \n")
	writeFile(t, dir, "ok.txt", "fine\n")

	runner := newTestRunner(t, &RuleSet{Paths: []string{dir}})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesChecked)
	assert.True(t, report.Pass())
}

func TestRunnerCancelledContext(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, dir, filepath.Join("files", string(rune('a'+i))+".txt"), "content\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(t, &RuleSet{Paths: []string{dir}})
	runner.Workers = 1
	_, err := runner.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerMissingPath(t *testing.T) {
	runner := newTestRunner(t, &RuleSet{Paths: []string{filepath.Join(t.TempDir(), "nope")}})
	_, err := runner.Run(context.Background())
	require.Error(t, err)
}
