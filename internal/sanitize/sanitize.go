// Package sanitize cleans source-document HTML before it reaches a page.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// HTML keeps the markup goldmark produces (headings, lists, tables, code,
// links) and drops scripts, event handlers and unsafe URLs.
func HTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(documentPolicy().Sanitize(trimmed))
}

func documentPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("del", "input")
		p.AllowAttrs("type", "checked", "disabled").OnElements("input")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

var (
	textOnce   sync.Once
	textPolicy *bluemonday.Policy
)

// Text strips all markup, leaving the readable text of a fragment.
func Text(raw string) string {
	textOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(raw)))
}
