package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once

	// Closing block tags and line breaks become newlines before stripping.
	blockBoundary = regexp.MustCompile(`(?i)(<br\s*/?>|</(p|div|h[1-6]|li|tr|table|blockquote|pre|section|article|header|footer|ul|ol)\s*>)`)
	spaceRun      = regexp.MustCompile(`[ \t\f\v]+`)
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML, returns plain text
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// PlainText converts an HTML document into a readable plain-text alternative.
// Block boundaries turn into line breaks, entities are decoded, runs of
// horizontal whitespace collapse to one space and empty lines are dropped.
// Script and style contents never reach the output.
func PlainText(s string) string {
	initPolicies()

	marked := blockBoundary.ReplaceAllString(s, "$1\n")
	text := html.UnescapeString(strictPolicy.Sanitize(marked))

	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
