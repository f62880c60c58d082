package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantLines   []string
		wantNewline bool
	}{
		{
			name:        "terminated file",
			content:     "a\nb\n",
			wantLines:   []string{"a", "b"},
			wantNewline: true,
		},
		{
			name:        "unterminated file",
			content:     "a\nb",
			wantLines:   []string{"a", "b"},
			wantNewline: false,
		},
		{
			name:        "crlf input",
			content:     "a\r\nb\r\n",
			wantLines:   []string{"a", "b"},
			wantNewline: true,
		},
		{
			name:      "empty file",
			content:   "",
			wantLines: nil,
		},
		{
			name:        "single newline",
			content:     "\n",
			wantLines:   []string{""},
			wantNewline: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSource("f.txt", []byte(tt.content))
			assert.Equal(t, tt.wantLines, src.Lines)
			assert.Equal(t, tt.wantNewline, src.EndsWithNewline)
		})
	}
}

func TestLineLengthRule(t *testing.T) {
	rule := LineLengthRule{Max: 10}
	src := NewSource("f.txt", []byte("short\nthis line is far too long\nok\n"))

	violations := rule.Check(src)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].Line)
	assert.Equal(t, CodeLineLength, violations[0].Code)
	assert.Contains(t, violations[0].Message, "line too long (25 > 10)")
}

func TestLineLengthRuleCountsRunes(t *testing.T) {
	rule := LineLengthRule{Max: 4}
	// Five multibyte runes, fifteen bytes.
	src := NewSource("f.txt", []byte("ééééé\n"))
	violations := rule.Check(src)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "(5 > 4)")
}

func TestTrailingSpaceRule(t *testing.T) {
	rule := TrailingSpaceRule{}
	src := NewSource("f.txt", []byte("clean\ndirty \ntabbed\t\n"))

	violations := rule.Check(src)
	require.Len(t, violations, 2)
	assert.Equal(t, 2, violations[0].Line)
	assert.Equal(t, 3, violations[1].Line)
	for _, v := range violations {
		assert.Equal(t, CodeTrailingSpace, v.Code)
	}
}

func TestTabIndentRule(t *testing.T) {
	rule := TabIndentRule{}
	src := NewSource("f.txt", []byte("    spaces\n\ttab\nmid\tdle\n  \tmixed\n"))

	violations := rule.Check(src)
	require.Len(t, violations, 2)
	assert.Equal(t, 2, violations[0].Line)
	assert.Equal(t, 4, violations[1].Line)
}

func TestMissingNewlineRule(t *testing.T) {
	rule := MissingNewlineRule{}

	assert.Empty(t, rule.Check(NewSource("f.txt", []byte("ok\n"))))
	assert.Empty(t, rule.Check(NewSource("f.txt", nil)))

	violations := rule.Check(NewSource("f.txt", []byte("no newline")))
	require.Len(t, violations, 1)
	assert.Equal(t, CodeMissingNewline, violations[0].Code)
	assert.Equal(t, 1, violations[0].Line)
}

func TestConflictMarkerRule(t *testing.T) {
	rule := ConflictMarkerRule{}
	content := "clean\n<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n"

	violations := rule.Check(NewSource("f.txt", []byte(content)))
	require.Len(t, violations, 3)
	assert.Equal(t, []int{2, 4, 6}, []int{violations[0].Line, violations[1].Line, violations[2].Line})
}

func TestForbiddenMarkerRule(t *testing.T) {
	rule := ForbiddenMarkerRule{}
	src := NewSource("f.txt", []byte("fine\n// DO NOT MERGE yet\n"))

	violations := rule.Check(src)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].Line)
	assert.Contains(t, violations[0].Message, "DO NOT MERGE")
}

func TestFileLengthRule(t *testing.T) {
	rule := FileLengthRule{Max: 2}

	assert.Empty(t, rule.Check(NewSource("f.txt", []byte("a\nb\n"))))

	violations := rule.Check(NewSource("f.txt", []byte("a\nb\nc\n")))
	require.Len(t, violations, 1)
	assert.Equal(t, CodeFileLength, violations[0].Code)
	assert.Equal(t, 3, violations[0].Line)
}
