// Package markdown provides best-effort plain-text conversion of issue and comment bodies.
package markdown

import (
	"regexp"
	"strings"
)

var (
	// fencedBlockPattern matches a ``` fence through the next ```, across lines.
	fencedBlockPattern = regexp.MustCompile("```[\\s\\S]*?```")

	// headerLinePattern matches the text of an ATX header line. The line break is kept.
	headerLinePattern = regexp.MustCompile(`(?m)^[ \t]*#+.*$`)

	// blockquoteLinePattern matches the text of a blockquote line. The line break is kept.
	blockquoteLinePattern = regexp.MustCompile(`(?m)^[ \t]*>.*$`)

	// lineBreakPattern matches LF and CRLF line endings.
	lineBreakPattern = regexp.MustCompile(`\r?\n`)
)

// Strip removes fenced code blocks, header lines and blockquote lines from text and
// collapses every remaining line break into a single space, producing one line.
//
// Inline code, emphasis, links and nested fences are left alone; the result is meant for
// short plain-text summaries, not faithful rendering.
func Strip(text string) string {
	if text == "" {
		return ""
	}

	text = fencedBlockPattern.ReplaceAllString(text, "")
	text = headerLinePattern.ReplaceAllString(text, "")
	text = blockquoteLinePattern.ReplaceAllString(text, "")
	text = lineBreakPattern.ReplaceAllString(text, " ")

	// A lone \r that was not part of CRLF still counts as a break.
	text = strings.ReplaceAll(text, "\r", " ")

	return strings.TrimSpace(text)
}
