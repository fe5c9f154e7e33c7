package models

import "time"

// Validity classifies how much of an entity page survived the extraction gate.
type Validity string

const (
	ValidityValid   Validity = "valid"
	ValidityPartial Validity = "partial"
	ValidityInvalid Validity = "invalid"
)

// EntityLink is a detail-page URL discovered on a listing page.
type EntityLink struct {
	URL         string `json:"url"`
	ListingPage int    `json:"listing_page"`
}

// Attribute is one key/value row extracted from a detail-page table.
// Attributes keep their on-page order, which a map would lose.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Record is the extraction result for a single entity page.
// It is created once by the extraction pipeline and never mutated after.
type Record struct {
	URL        string            `json:"url"`
	ScrapedAt  time.Time         `json:"scraped_at"`
	Name       string            `json:"name,omitempty"`
	Specialty  string            `json:"specialty,omitempty"`
	Contacts   []string          `json:"contacts,omitempty"`
	Attributes []Attribute       `json:"attributes,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
	Validity   Validity          `json:"validity"`
}

// HasSubstance reports whether the record carries at least one of the fields
// that justify keeping it. A record failing this check is dropped rather than
// stored as an empty shell.
func (r *Record) HasSubstance() bool {
	return r.Name != "" || r.Specialty != "" || len(r.Contacts) > 0
}

// OutcomeStatus is the result kind of a single selector attempt.
type OutcomeStatus int

const (
	OutcomeNotFound OutcomeStatus = iota
	OutcomeFound
	OutcomeError
)

// FieldOutcome is the typed result of one field-extraction attempt.
// Fallback chains fold a sequence of these instead of catching errors.
type FieldOutcome struct {
	Status OutcomeStatus
	Value  string
	// Source names the selector or heuristic that produced the value.
	Source string
}

// Found builds a successful outcome.
func Found(value, source string) FieldOutcome {
	return FieldOutcome{Status: OutcomeFound, Value: value, Source: source}
}

// NotFound builds an empty outcome.
func NotFound() FieldOutcome {
	return FieldOutcome{Status: OutcomeNotFound}
}

// PageValidation is the typed result of the page-validity gate.
type PageValidation struct {
	Valid      bool   `json:"valid"`
	Borderline bool   `json:"borderline"`
	Reason     string `json:"reason,omitempty"`
	TextLength int    `json:"text_length"`
}

// TerminationReason explains why a crawl run ended.
type TerminationReason string

const (
	TermCompleted        TerminationReason = "completed"
	TermNoNextControl    TerminationReason = "no_next_control"
	TermContentUnchanged TerminationReason = "content_unchanged"
	TermURLFiltered      TerminationReason = "url_filtered"
	TermLastPageMarker   TerminationReason = "last_page_marker"
	TermNoListingLinks   TerminationReason = "no_listing_links"
	TermListingUnreach   TerminationReason = "listing_unreachable"
	TermMaxPages         TerminationReason = "max_pages"
	TermCancelled        TerminationReason = "cancelled"
	TermFailureLimit     TerminationReason = "failure_limit"
)

// RunSummary is returned to the caller when a crawl reaches its terminal state.
type RunSummary struct {
	Site              string            `json:"site"`
	PagesProcessed    int               `json:"pages_processed"`
	RecordsExtracted  int               `json:"records_extracted"`
	EntitiesSeen      int               `json:"entities_seen"`
	EntitiesSkipped   int               `json:"entities_skipped"`
	TerminationReason TerminationReason `json:"termination_reason"`
	StartedAt         time.Time         `json:"started_at"`
	FinishedAt        time.Time         `json:"finished_at"`
}

// Duration returns the wall-clock length of the run.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
