package crawler

import (
	"net/url"
	"strings"
	"sync"
)

// VisitedSet deduplicates entity URLs for the lifetime of a run. Keys are
// normalized so trivially different spellings of the same detail page
// (fragment, trailing slash, host case) collapse to one visit.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
	hits int
}

// NewVisitedSet creates an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// Add records a URL. It returns true when the URL is new.
func (v *VisitedSet) Add(rawURL string) bool {
	key := NormalizeURL(rawURL)

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[key]; ok {
		v.hits++
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// Len returns how many distinct URLs have been recorded.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// Duplicates returns how many already-seen URLs were offered again.
func (v *VisitedSet) Duplicates() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hits
}

// NormalizeURL canonicalizes a URL for dedup purposes: lowercase scheme and
// host, drop the fragment, and trim one trailing slash off non-root paths.
// Unparseable input is keyed verbatim; rejecting it here would just move
// the failure somewhere less visible.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String()
}
