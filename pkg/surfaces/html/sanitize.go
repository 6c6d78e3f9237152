package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	inlinePolicyOnce sync.Once
	inlinePolicy     *bluemonday.Policy
)

// sanitizeTooltip strips all markup so the result is safe inside a quoted
// attribute.
func sanitizeTooltip(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(strictPolicy.Sanitize(trimmed))
}

// sanitizeDescription keeps a small set of inline formatting elements.
func sanitizeDescription(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	inlinePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "kbd", "br", "small")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		inlinePolicy = policy
	})
	return strings.TrimSpace(inlinePolicy.Sanitize(trimmed))
}
