// Package pagination computes listing-page state and URLs for the three
// pagination mechanisms: query parameter, URL path segment, and AJAX
// in-place replacement.
//
// Strategy methods are pure URL/state computation; the DOM-probing "has
// next" predicate and the AJAX click-and-verify protocol live alongside in
// ajax.go because only that mechanism needs a live page.
package pagination

import (
	"fmt"

	"github.com/docdex/harvest/internal/config"
)

// Strategy answers page-number and page-URL questions for one site.
type Strategy interface {
	// CurrentPage derives the page number from a listing URL. URLs without
	// an explicit page component parse as the configured start page.
	CurrentPage(pageURL string) (int, error)
	// NextPageURL computes the following page's URL. The empty string
	// means the mechanism has no URL-level next page (AJAX).
	NextPageURL(pageURL string) (string, error)
	// PageURL builds the URL for an absolute page number.
	PageURL(n int) (string, error)
}

// Error is a pagination failure. Pagination errors are fatal to the run:
// silently restarting from page 1 would duplicate already-extracted data.
type Error struct {
	Op  string
	URL string
	Err error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("pagination %s (%s): %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("pagination %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds the strategy for a site's pagination descriptor.
func New(cfg config.Pagination) (Strategy, error) {
	switch cfg.Type {
	case config.PaginationQuery:
		return newQueryStrategy(cfg)
	case config.PaginationPath:
		return newPathStrategy(cfg)
	case config.PaginationAjax:
		return NewAjaxStrategy(cfg.StartPage), nil
	default:
		return nil, &Error{Op: "new", Err: fmt.Errorf("unknown pagination type %q", cfg.Type)}
	}
}
