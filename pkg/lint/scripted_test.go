package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gantryci/gantry/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noPrintScript = `
text := import("text")
for i := 0; i < len(lines); i++ {
	if text.contains(lines[i], "print(") {
		violations = append(violations, {line: i + 1, message: "print call found"})
	}
}
`

func TestScriptedRule(t *testing.T) {
	rule, err := NewScriptedRule("no_print.tengo", []byte(noPrintScript))
	require.NoError(t, err)
	assert.Equal(t, "X-NO_PRINT", rule.Code())

	src := NewSource("main.py", []byte("x = 1\nprint(x)\n"))
	violations := rule.Check(src)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].Line)
	assert.Equal(t, "X-NO_PRINT", violations[0].Code)
	assert.Equal(t, "print call found", violations[0].Message)

	clean := NewSource("main.py", []byte("x = 1\n"))
	assert.Empty(t, rule.Check(clean))
}

func TestScriptedRuleStringFindings(t *testing.T) {
	script := `
if len(content) == 0 {
	violations = append(violations, "file is empty")
}
`
	rule, err := NewScriptedRule("no_empty.tengo", []byte(script))
	require.NoError(t, err)

	violations := rule.Check(NewSource("empty.txt", nil))
	require.Len(t, violations, 1)
	assert.Equal(t, "file is empty", violations[0].Message)
	assert.Equal(t, 0, violations[0].Line)
}

func TestScriptedRuleCompileError(t *testing.T) {
	_, err := NewScriptedRule("broken.tengo", []byte("if {"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRuleLoad)
}

func TestScriptedRuleRuntimeErrorFailsTheFile(t *testing.T) {
	// Calling an array is a runtime error, not a compile error.
	rule, err := NewScriptedRule("crashy.tengo", []byte(`x := lines()`))
	require.NoError(t, err)

	violations := rule.Check(NewSource("f.txt", []byte("one line\n")))
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "rule script failed")
}

func TestLoadScriptedRules(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_rule.tengo"), []byte(noPrintScript), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_rule.tengo"), []byte(noPrintScript), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a rule"), 0o644))

	rules, err := LoadScriptedRules(dir)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "X-A_RULE", rules[0].Code())
	assert.Equal(t, "X-B_RULE", rules[1].Code())
}

func TestLoadScriptedRulesMissingDir(t *testing.T) {
	rules, err := LoadScriptedRules(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRunnerWithScriptedRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "print(42)\n")

	rule, err := NewScriptedRule("no_print.tengo", []byte(noPrintScript))
	require.NoError(t, err)

	rs := &RuleSet{Paths: []string{dir}}
	rs.ApplyDefaults()
	require.NoError(t, rs.Validate())

	runner := NewRunner(rs, rule)
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Pass())
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "X-NO_PRINT", report.Violations[0].Code)
}
