package parser

import (
	"regexp"
	"strings"
)

var (
	reLineBreak = regexp.MustCompile(`\r\n?|[\v\f\x1c\x1d\x1e\x85\x{2028}\x{2029}]`)
	reSpaceRun  = regexp.MustCompile(`\s+`)
)

// Text is a normalized ticket document.
type Text struct {
	// Upper is the whole document upper-cased, original line breaks kept.
	Upper string
	// Lines are the non-empty lines of Upper with whitespace runs collapsed.
	Lines []string
}

// Normalize upper-cases raw text and splits it into collapsed, non-empty lines.
func Normalize(raw string) Text {
	upper := strings.ToUpper(reLineBreak.ReplaceAllString(raw, "\n"))
	var lines []string
	for _, l := range strings.Split(upper, "\n") {
		l = strings.TrimSpace(reSpaceRun.ReplaceAllString(l, " "))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return Text{Upper: upper, Lines: lines}
}

// IsEmpty reports whether the document has no visible content.
func (t Text) IsEmpty() bool {
	return len(t.Lines) == 0
}
