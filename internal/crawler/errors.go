package crawler

import (
	"errors"
	"fmt"
)

// Sentinel errors the orchestrator branches on.
var (
	// ErrSelectorTimeout means an expected DOM element never appeared.
	// Fatal at the first listing page, a terminal signal afterwards.
	ErrSelectorTimeout = errors.New("expected element never appeared")
	// ErrNoListingLinks means a listing page rendered but held no entity links.
	ErrNoListingLinks = errors.New("no listing links found")
	// ErrConsecutiveFailures aborts a run that keeps failing entity after
	// entity, usually a sign the site has started blocking wholesale.
	ErrConsecutiveFailures = errors.New("consecutive entity failure limit exceeded")
)

// Phase names the crawl state a failure occurred in.
type Phase string

const (
	PhaseListing    Phase = "listing"
	PhaseExtracting Phase = "extracting"
	PhasePaginating Phase = "paginating"
)

// CrawlError carries enough context (URL, phase, page) for the caller to
// log and diagnose; the core itself only emits structured reasons.
type CrawlError struct {
	Phase Phase
	URL   string
	Page  int
	Err   error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl failed in %s phase (page %d, %s): %v", e.Phase, e.Page, e.URL, e.Err)
}

func (e *CrawlError) Unwrap() error { return e.Err }
