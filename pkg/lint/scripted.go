package lint

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/gantryci/gantry/pkg/errors"
)

// ScriptedRule is a lint rule written in Tengo. The script is compiled once
// and run per file with the file's path, content and lines bound in. It
// reports findings by assigning an array to the `violations` variable: each
// entry is either a message string (file-level) or a map with `line` and
// `message` keys.
type ScriptedRule struct {
	code        string
	description string
	compiled    *tengo.Compiled
}

// ScriptExt is the file extension of scripted rules.
const ScriptExt = ".tengo"

// NewScriptedRule compiles a Tengo rule script. The rule code is derived
// from the script file name: `no_print.tengo` becomes `X-NO_PRINT`.
func NewScriptedRule(name string, script []byte) (*ScriptedRule, error) {
	base := strings.TrimSuffix(filepath.Base(name), ScriptExt)
	code := "X-" + strings.ToUpper(base)

	s := tengo.NewScript(script)
	s.SetImports(stdlib.GetModuleMap("fmt", "text"))
	// Placeholders so the script compiles against the variables the runner
	// will bind per file.
	_ = s.Add("path", "")
	_ = s.Add("content", "")
	_ = s.Add("lines", []interface{}{})
	_ = s.Add("violations", []interface{}{})

	compiled, err := s.Compile()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRuleLoad, "%s: %v", name, err)
	}

	return &ScriptedRule{
		code:        code,
		description: "scripted rule " + base,
		compiled:    compiled,
	}, nil
}

// LoadScriptedRules loads all *.tengo rule scripts from a directory, sorted
// by file name. A missing directory yields no rules.
func LoadScriptedRules(dir string) ([]Rule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read rules directory %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ScriptExt) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		script, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrRuleLoad, "%s: %v", name, err)
		}
		rule, err := NewScriptedRule(name, script)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r *ScriptedRule) Code() string        { return r.code }
func (r *ScriptedRule) Description() string { return r.description }

// Check runs the script against the source. Script runtime errors surface as
// a violation of the rule's own code so a broken custom rule fails the gate
// loudly instead of silently passing.
func (r *ScriptedRule) Check(src *Source) []Violation {
	compiled := r.compiled.Clone()

	lines := make([]interface{}, len(src.Lines))
	for i, line := range src.Lines {
		lines[i] = line
	}

	_ = compiled.Set("path", src.Path)
	_ = compiled.Set("content", string(src.Content))
	_ = compiled.Set("lines", lines)
	_ = compiled.Set("violations", []interface{}{})

	if err := compiled.Run(); err != nil {
		return []Violation{{
			File:    src.Path,
			Code:    r.code,
			Message: "rule script failed: " + err.Error(),
		}}
	}

	return r.collect(src, compiled.Get("violations"))
}

func (r *ScriptedRule) collect(src *Source, result *tengo.Variable) []Violation {
	if result == nil {
		return nil
	}
	raw, ok := result.Value().([]interface{})
	if !ok {
		return nil
	}

	var violations []Violation
	for _, entry := range raw {
		switch v := entry.(type) {
		case string:
			violations = append(violations, Violation{
				File:    src.Path,
				Code:    r.code,
				Message: v,
			})
		case map[string]interface{}:
			violation := Violation{File: src.Path, Code: r.code}
			if line, ok := v["line"].(int64); ok {
				violation.Line = int(line)
			}
			if msg, ok := v["message"].(string); ok {
				violation.Message = msg
			}
			if violation.Message != "" {
				violations = append(violations, violation)
			}
		}
	}
	return violations
}
