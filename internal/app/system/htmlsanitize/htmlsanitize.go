// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Application descriptions and other free-text fields arrive from clients
// as arbitrary strings. StripTags reduces them to plain text so nothing a
// client submits can smuggle markup into API responses or notification
// emails. Sanitize keeps a small safe subset of formatting for fields that
// are rendered as HTML in outbound mail.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	mail   = mailPolicy()
)

// mailPolicy allows the basic formatting used in notification email bodies.
func mailPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "ul", "ol", "li", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireNoFollowOnLinks(true)
	return p
}

// StripTags removes all markup from s, returning plain text.
// Entities produced by escaping are left as-is; callers store the result.
func StripTags(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Sanitize keeps the formatting subset allowed in notification emails and
// removes everything else, including scripts and event handler attributes.
func Sanitize(s string) string {
	return mail.Sanitize(s)
}

// IsPlainText reports whether s contains no markup at all.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
