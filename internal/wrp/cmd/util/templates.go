package util

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
)

const indentation = `  `

// LongDesc normalizes a command's long description to follow the
// conventions.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.TrimSpace(heredoc.Doc(s))
}

// Examples normalizes a command's examples to follow the conventions.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}
	trimmed := strings.TrimSpace(heredoc.Doc(s))
	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indentation + line
		}
	}
	return strings.Join(lines, "\n")
}
