package lint

import (
	"fmt"
	"strings"
)

// Built-in rule codes.
const (
	CodeLineLength      = "GL101"
	CodeTrailingSpace   = "GL102"
	CodeTabIndent       = "GL103"
	CodeMissingNewline  = "GL104"
	CodeConflictMarker  = "GL105"
	CodeForbiddenMarker = "GL106"
	CodeFileLength      = "GL107"
)

// BuiltinRules returns the built-in rules configured from the rule set.
func BuiltinRules(rs *RuleSet) []Rule {
	return []Rule{
		LineLengthRule{Max: rs.MaxLineLength},
		TrailingSpaceRule{},
		TabIndentRule{},
		MissingNewlineRule{},
		ConflictMarkerRule{},
		ForbiddenMarkerRule{},
		FileLengthRule{Max: rs.MaxFileLines},
	}
}

// LineLengthRule flags lines longer than Max runes.
type LineLengthRule struct {
	Max int
}

func (r LineLengthRule) Code() string        { return CodeLineLength }
func (r LineLengthRule) Description() string { return "line is longer than the configured maximum" }

func (r LineLengthRule) Check(src *Source) []Violation {
	var violations []Violation
	for i, line := range src.Lines {
		if length := len([]rune(line)); length > r.Max {
			violations = append(violations, Violation{
				File:    src.Path,
				Line:    i + 1,
				Code:    r.Code(),
				Message: fmt.Sprintf("line too long (%d > %d)", length, r.Max),
			})
		}
	}
	return violations
}

// TrailingSpaceRule flags trailing whitespace.
type TrailingSpaceRule struct{}

func (r TrailingSpaceRule) Code() string        { return CodeTrailingSpace }
func (r TrailingSpaceRule) Description() string { return "line has trailing whitespace" }

func (r TrailingSpaceRule) Check(src *Source) []Violation {
	var violations []Violation
	for i, line := range src.Lines {
		if line != strings.TrimRight(line, " \t") {
			violations = append(violations, Violation{
				File:    src.Path,
				Line:    i + 1,
				Code:    r.Code(),
				Message: "trailing whitespace",
			})
		}
	}
	return violations
}

// TabIndentRule flags tab characters used for indentation.
type TabIndentRule struct{}

func (r TabIndentRule) Code() string        { return CodeTabIndent }
func (r TabIndentRule) Description() string { return "line is indented with tabs" }

func (r TabIndentRule) Check(src *Source) []Violation {
	var violations []Violation
	for i, line := range src.Lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "\t") {
			violations = append(violations, Violation{
				File:    src.Path,
				Line:    i + 1,
				Code:    r.Code(),
				Message: "tab used for indentation",
			})
		}
	}
	return violations
}

// MissingNewlineRule flags files that do not end with a newline.
type MissingNewlineRule struct{}

func (r MissingNewlineRule) Code() string        { return CodeMissingNewline }
func (r MissingNewlineRule) Description() string { return "file does not end with a newline" }

func (r MissingNewlineRule) Check(src *Source) []Violation {
	if len(src.Content) == 0 || src.EndsWithNewline {
		return nil
	}
	return []Violation{{
		File:    src.Path,
		Line:    len(src.Lines),
		Code:    r.Code(),
		Message: "no newline at end of file",
	}}
}

// ConflictMarkerRule flags unresolved merge conflict markers.
type ConflictMarkerRule struct{}

func (r ConflictMarkerRule) Code() string        { return CodeConflictMarker }
func (r ConflictMarkerRule) Description() string { return "line contains a merge conflict marker" }

var conflictMarkers = []string{"<<<<<<< ", ">>>>>>> ", "======="}

func (r ConflictMarkerRule) Check(src *Source) []Violation {
	var violations []Violation
	for i, line := range src.Lines {
		for _, marker := range conflictMarkers {
			if line == strings.TrimRight(marker, " ") || strings.HasPrefix(line, marker) {
				violations = append(violations, Violation{
					File:    src.Path,
					Line:    i + 1,
					Code:    r.Code(),
					Message: "merge conflict marker",
				})
				break
			}
		}
	}
	return violations
}

// ForbiddenMarkerRule flags markers that must never land on a gated branch.
type ForbiddenMarkerRule struct{}

func (r ForbiddenMarkerRule) Code() string        { return CodeForbiddenMarker }
func (r ForbiddenMarkerRule) Description() string { return "line contains a do-not-merge marker" }

var forbiddenMarkers = []string{"DO NOT MERGE", "DO NOT SUBMIT", "FIXME!"}

func (r ForbiddenMarkerRule) Check(src *Source) []Violation {
	var violations []Violation
	for i, line := range src.Lines {
		for _, marker := range forbiddenMarkers {
			if strings.Contains(line, marker) {
				violations = append(violations, Violation{
					File:    src.Path,
					Line:    i + 1,
					Code:    r.Code(),
					Message: fmt.Sprintf("forbidden marker %q", marker),
				})
				break
			}
		}
	}
	return violations
}

// FileLengthRule flags files longer than Max lines.
type FileLengthRule struct {
	Max int
}

func (r FileLengthRule) Code() string        { return CodeFileLength }
func (r FileLengthRule) Description() string { return "file is longer than the configured maximum" }

func (r FileLengthRule) Check(src *Source) []Violation {
	if len(src.Lines) <= r.Max {
		return nil
	}
	return []Violation{{
		File:    src.Path,
		Line:    r.Max + 1,
		Code:    r.Code(),
		Message: fmt.Sprintf("file too long (%d > %d lines)", len(src.Lines), r.Max),
	}}
}
