package utils

import (
	"regexp"
	"strings"
)

var (
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	emphasisPattern   = regexp.MustCompile(`(\*\*|\*|__|_|~~)`)
	bulletPattern     = regexp.MustCompile(`(?m)^\s*•\s+`)
	quotePattern      = regexp.MustCompile(`(?m)^>\s*`)
	inlineCodePattern = regexp.MustCompile("`([^`]*)`")
	rulePattern       = regexp.MustCompile(`(?m)^-{3,}$`)
)

// SanitizeMarkdown strips markdown markup that Google Docs would otherwise
// show literally: headings, emphasis, quotes, inline code and rules. Bullet
// dots become hyphens.
func SanitizeMarkdown(text string) string {
	text = headingPattern.ReplaceAllString(text, "")
	text = emphasisPattern.ReplaceAllString(text, "")
	text = bulletPattern.ReplaceAllString(text, "- ")
	text = quotePattern.ReplaceAllString(text, "")
	text = inlineCodePattern.ReplaceAllString(text, "$1")
	text = rulePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Truncate cuts text to at most limit runes, appending suffix when it cuts.
func Truncate(text string, limit int, suffix string) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + suffix
}

// StripCodeFence removes a surrounding ```json / ``` fence from an LLM reply.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
