package lint

import (
	"regexp"
	"slices"

	"github.com/gantryci/gantry/pkg/errors"
)

// Default rule set values.
const (
	DefaultMaxLineLength = 100
	DefaultMaxFileLines  = 2000
)

// RuleSet is the static lint configuration: which paths to check, which rule
// codes are enabled or ignored, and which findings to suppress. It is read
// once per invocation and never mutated at runtime.
type RuleSet struct {
	// Paths lists the files or directories to lint. Directories are walked
	// recursively.
	Paths []string `yaml:"paths"`

	// Exclude lists glob patterns (matched against slash-separated relative
	// paths) for files that must not be linted.
	Exclude []string `yaml:"exclude,omitempty"`

	// Select, when non-empty, restricts checking to the listed rule codes.
	Select []string `yaml:"select,omitempty"`

	// Ignore lists rule codes whose violations are dropped entirely. An
	// ignored code can never contribute a violation to the report.
	Ignore []string `yaml:"ignore,omitempty"`

	// Suppressions lists regular expressions; violations whose message
	// matches any of them are dropped from the report.
	Suppressions []string `yaml:"suppressions,omitempty"`

	MaxLineLength int `yaml:"max_line_length,omitempty"`
	MaxFileLines  int `yaml:"max_file_lines,omitempty"`

	suppressions []*regexp.Regexp
}

// DefaultRuleSet returns a rule set with sensible defaults, linting the
// current directory.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Paths:         []string{"."},
		MaxLineLength: DefaultMaxLineLength,
		MaxFileLines:  DefaultMaxFileLines,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (rs *RuleSet) ApplyDefaults() {
	if len(rs.Paths) == 0 {
		rs.Paths = []string{"."}
	}
	if rs.MaxLineLength <= 0 {
		rs.MaxLineLength = DefaultMaxLineLength
	}
	if rs.MaxFileLines <= 0 {
		rs.MaxFileLines = DefaultMaxFileLines
	}
}

// Validate compiles the suppression patterns and checks the configuration
// for contradictions. It must be called before the rule set is used.
func (rs *RuleSet) Validate() error {
	for _, code := range rs.Select {
		if slices.Contains(rs.Ignore, code) {
			return errors.Wrapf(errors.ErrRuleConfig, "code %s is both selected and ignored", code)
		}
	}
	rs.suppressions = rs.suppressions[:0]
	for _, pattern := range rs.Suppressions {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return errors.Wrapf(errors.ErrRuleConfig, "bad suppression pattern %q: %v", pattern, err)
		}
		rs.suppressions = append(rs.suppressions, re)
	}
	return nil
}

// Enabled reports whether a rule code participates in checking.
func (rs *RuleSet) Enabled(code string) bool {
	if slices.Contains(rs.Ignore, code) {
		return false
	}
	if len(rs.Select) > 0 {
		return slices.Contains(rs.Select, code)
	}
	return true
}

// Suppressed reports whether a violation message matches a warning-filter
// suppression.
func (rs *RuleSet) Suppressed(message string) bool {
	for _, re := range rs.suppressions {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}
