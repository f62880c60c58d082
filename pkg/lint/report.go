package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Report is the aggregated result of one lint gate run.
type Report struct {
	FilesChecked int         `json:"files_checked"`
	Violations   []Violation `json:"violations"`
}

// Pass reports whether the gate passed: no violations after ignore and
// suppression filtering.
func (r *Report) Pass() bool {
	return len(r.Violations) == 0
}

// CountByCode returns the number of violations per rule code.
func (r *Report) CountByCode() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.Violations {
		counts[v.Code]++
	}
	return counts
}

// WriteText writes a human-readable report: one line per violation followed
// by a per-code summary.
func (r *Report) WriteText(w io.Writer) error {
	for _, v := range r.Violations {
		if _, err := fmt.Fprintln(w, v.String()); err != nil {
			return err
		}
	}

	if r.Pass() {
		_, err := fmt.Fprintf(w, "checked %d files: ok\n", r.FilesChecked)
		return err
	}

	counts := r.CountByCode()
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if _, err := fmt.Fprintf(w, "checked %d files: %d violations\n", r.FilesChecked, len(r.Violations)); err != nil {
		return err
	}
	for _, code := range codes {
		if _, err := fmt.Fprintf(w, "  %s: %d\n", code, counts[code]); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
