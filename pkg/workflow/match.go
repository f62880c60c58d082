package workflow

import "strings"

// MatchBranch reports whether a branch name matches a trigger pattern.
// Patterns are matched per path segment: `*` and `?` match within a single
// segment, while `**` matches any number of segments (including none). A
// literal pattern matches only the identical branch name.
func MatchBranch(pattern, branch string) bool {
	if pattern == "" || branch == "" {
		return false
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(branch, "/"))
}

func matchSegments(pattern, name []string) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	if pattern[0] == "**" {
		// `**` absorbs zero or more leading segments.
		for skip := 0; skip <= len(name); skip++ {
			if matchSegments(pattern[1:], name[skip:]) {
				return true
			}
		}
		return false
	}
	if len(name) == 0 {
		return false
	}
	if !matchSegment(pattern[0], name[0]) {
		return false
	}
	return matchSegments(pattern[1:], name[1:])
}

// matchSegment matches a single path segment against a pattern containing
// `*` and `?` wildcards.
func matchSegment(pattern, segment string) bool {
	// Iterative glob match with single-star backtracking.
	pi, si := 0, 0
	starPi, starSi := -1, -1
	for si < len(segment) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == segment[si]):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			starPi, starSi = pi, si
			pi++
		case starPi >= 0:
			starSi++
			pi = starPi + 1
			si = starSi
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
