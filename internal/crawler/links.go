package crawler

import (
	"net/url"
	"strings"
)

// ResolveLink resolves a possibly-relative href against a base URL.
func ResolveLink(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// Allowed applies the site's URL filters. Patterns are plain substrings;
// exclusions win over allowances, and an empty allow list permits
// everything not excluded.
func Allowed(rawURL string, allowed, excluded []string) bool {
	for _, pattern := range excluded {
		if pattern != "" && strings.Contains(rawURL, pattern) {
			return false
		}
	}

	if len(allowed) == 0 {
		return true
	}
	for _, pattern := range allowed {
		if pattern != "" && strings.Contains(rawURL, pattern) {
			return true
		}
	}
	return false
}
