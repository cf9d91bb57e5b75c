// Package markdown reduces raw markdown to plain text for the content
// search index. The reduction is lossy and regex-based on purpose: snippet
// extraction and substring matching depend on this exact transformation
// order, so a general-purpose markdown parser must not be substituted.
package markdown

import (
	"regexp"
	"strings"
)

// The passes run in order; later passes assume earlier syntax is gone.
var (
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]+`")
	imageRe      = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\(.*?\)`)
	headingRe    = regexp.MustCompile(`#{1,6}\s+`)
	emphasisRe   = regexp.MustCompile(`[*_~]{1,3}(.*?)[*_~]{1,3}`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	orderedRe    = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	quoteRe      = regexp.MustCompile(`(?m)^\s*>\s+`)
	tableRowRe   = regexp.MustCompile(`\|.*\|`)
	ruleRe       = regexp.MustCompile(`[-=]{3,}`)
	blankRe      = regexp.MustCompile(`\n{2,}`)
)

// Strip converts markdown to plain text: code blocks and images are
// dropped entirely, links keep only their label, and structural markers
// (headings, emphasis, lists, quotes, tables, rules) are removed.
// Strip is idempotent on its own output.
func Strip(text string) string {
	text = codeBlockRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "")
	text = imageRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "${1}")
	text = headingRe.ReplaceAllString(text, "")
	text = emphasisRe.ReplaceAllString(text, "${1}")
	text = bulletRe.ReplaceAllString(text, "")
	text = orderedRe.ReplaceAllString(text, "")
	text = quoteRe.ReplaceAllString(text, "")
	text = tableRowRe.ReplaceAllString(text, "")
	text = ruleRe.ReplaceAllString(text, "")
	text = blankRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
