// Package lint implements the format/lint gate: a configurable set of rules
// run over a repository's text files by a pool of workers, aggregated into a
// single deterministic pass/fail report.
package lint

import "fmt"

// Source is one file presented to the rules. Lines are split without their
// trailing newline; EndsWithNewline records whether the raw content had one.
type Source struct {
	Path            string
	Content         []byte
	Lines           []string
	EndsWithNewline bool
}

// Violation is a single rule finding attributable to a rule code.
type Violation struct {
	File    string `json:"file"`
	Line    int    `json:"line"` // 1-based, 0 for file-level findings
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("%s:%d: %s %s", v.File, v.Line, v.Code, v.Message)
	}
	return fmt.Sprintf("%s: %s %s", v.File, v.Code, v.Message)
}

// Rule checks a single source file and reports violations. Implementations
// must be safe for concurrent use; the runner calls Check from multiple
// workers.
type Rule interface {
	// Code returns the stable rule identifier used in ignore tables and
	// reports.
	Code() string

	// Description returns a one-line human description of the rule.
	Description() string

	// Check inspects the source and returns any violations.
	Check(src *Source) []Violation
}

// NewSource builds a Source from raw file content.
func NewSource(path string, content []byte) *Source {
	src := &Source{
		Path:    path,
		Content: content,
	}
	if len(content) == 0 {
		return src
	}
	src.EndsWithNewline = content[len(content)-1] == '\n'

	text := string(content)
	if src.EndsWithNewline {
		text = text[:len(text)-1]
	}
	src.Lines = splitLines(text)
	return src
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line := text[start:i]
			// Tolerate CRLF input.
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	last := text[start:]
	if len(last) > 0 && last[len(last)-1] == '\r' {
		last = last[:len(last)-1]
	}
	lines = append(lines, last)
	return lines
}
