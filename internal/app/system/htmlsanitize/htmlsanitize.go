// Package htmlsanitize cleans user-supplied free text before it is stored.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// PlainText strips every tag from s and returns the remaining text with HTML
// entities decoded and surrounding whitespace trimmed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}

// IsPlainText reports whether s contains no markup that PlainText would drop.
func IsPlainText(s string) bool {
	return PlainText(s) == strings.TrimSpace(s)
}
