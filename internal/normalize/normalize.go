// Package normalize converts model-emitted pseudo-markup into plain text.
package normalize

import (
	"regexp"
	"strings"
)

// Tag patterns are matched over the whole string, before line splitting, so
// tag bodies spanning multiple lines are handled. (?s) makes . match newlines.
var (
	underlineTag = regexp.MustCompile(`(?is)<u>(.*?)</u>`)
	boldTag      = regexp.MustCompile(`(?is)<b>(.*?)</b>`)
	italicTag    = regexp.MustCompile(`(?is)<i>(.*?)</i>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
)

// Normalize rewrites the small set of inline HTML-like tags the vision model
// sometimes emits into plain-text emphasis conventions, strips any other tags,
// and re-indents lines: each line keeps its leading-whitespace run length as
// spaces, with the trimmed content following. Empty input is returned
// unchanged.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}

	text := underlineTag.ReplaceAllString(raw, "_$1_")
	text = boldTag.ReplaceAllString(text, "**$1**")
	text = italicTag.ReplaceAllString(text, "*$1*")
	text = anyTag.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		content := strings.TrimSpace(line)
		if content == "" {
			lines[i] = ""
			continue
		}
		leading := len(line) - len(strings.TrimLeft(line, " \t"))
		lines[i] = strings.Repeat(" ", leading) + content
	}
	return strings.Join(lines, "\n")
}
