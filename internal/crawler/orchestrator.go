// Package crawler runs the listing → extract → paginate loop for one site.
// The orchestrator is pure control flow over narrow interfaces; everything
// that touches a browser lives behind the Driver so the state machine can be
// exercised with fakes.
package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/docdex/harvest/internal/config"
	"github.com/docdex/harvest/internal/ratelimit"
	"github.com/docdex/harvest/pkg/models"
)

// Driver is the site-facing surface of the crawl loop.
type Driver interface {
	// LoadListing makes the listing page's entity links available in DOM
	// order. A non-empty pageURL means navigate there first; an empty one
	// means the content is already in place (AJAX pagination).
	LoadListing(ctx context.Context, pageURL string, pageNum int) ([]models.EntityLink, error)
	// ExtractEntity visits one detail page and returns its record. A nil
	// record with a nil error means the page was rejected, not that the
	// visit failed.
	ExtractEntity(ctx context.Context, link models.EntityLink) (*models.Record, error)
	// NextPage advances pagination. ok=false ends the run with the given
	// reason; next is the URL of the following listing page, or empty when
	// the content was replaced in place.
	NextPage(ctx context.Context, pageURL string, pageNum int) (next string, ok bool, reason models.TerminationReason, err error)
}

// Sink receives records as they are extracted. Persistence is incremental:
// an aborted run keeps everything extracted before the abort.
type Sink interface {
	Persist(ctx context.Context, rec *models.Record) error
}

// History is the optional cross-run ledger consulted for resume. A nil
// History disables resume.
type History interface {
	Seen(url string) (bool, error)
	MarkExtracted(url string, found bool) error
}

// Hooks are optional progress callbacks for the UI layer. Nil funcs are
// skipped.
type Hooks struct {
	OnPage   func(pageNum, links int)
	OnRecord func(rec *models.Record)
}

// Orchestrator drives one crawl run.
type Orchestrator struct {
	site    *config.Site
	driver  Driver
	sink    Sink
	limiter ratelimit.Waiter
	history History
	hooks   Hooks
	visited *VisitedSet
}

// New assembles an orchestrator. driver and sink are required; limiter,
// history, and hooks may be zero.
func New(site *config.Site, driver Driver, sink Sink, limiter ratelimit.Waiter, history History, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		site:    site,
		driver:  driver,
		sink:    sink,
		limiter: limiter,
		history: history,
		hooks:   hooks,
		visited: NewVisitedSet(),
	}
}

// Run executes the crawl until a terminal condition and returns the summary.
// The summary is meaningful even when err is non-nil: it reflects everything
// processed up to the abort. Cancellation is honored between entities; an
// in-flight extraction is allowed to finish.
func (o *Orchestrator) Run(ctx context.Context) (models.RunSummary, error) {
	summary := models.RunSummary{
		Site:      o.site.Name,
		StartedAt: time.Now(),
	}
	defer func() { summary.FinishedAt = time.Now() }()

	pageURL := o.site.StartURL
	pageNum := o.site.Pagination.StartPage
	consecutiveFailures := 0

	for {
		if ctx.Err() != nil {
			summary.TerminationReason = models.TermCancelled
			return summary, nil
		}

		links, err := o.driver.LoadListing(ctx, pageURL, pageNum)
		if err != nil {
			if pageNum == o.site.Pagination.StartPage {
				// Nothing was crawled yet; a broken start is operator error,
				// not a degraded run.
				return summary, &CrawlError{Phase: PhaseListing, URL: pageURL, Page: pageNum, Err: err}
			}
			if errors.Is(err, ErrSelectorTimeout) || errors.Is(err, ErrNoListingLinks) {
				log.Info().Int("page", pageNum).Msg("Listing page is empty, ending run")
				summary.TerminationReason = models.TermNoListingLinks
			} else {
				log.Warn().Err(err).Int("page", pageNum).Msg("Listing page unreachable, ending run")
				summary.TerminationReason = models.TermListingUnreach
			}
			return summary, nil
		}

		summary.PagesProcessed++
		if o.hooks.OnPage != nil {
			o.hooks.OnPage(pageNum, len(links))
		}
		log.Info().
			Int("page", pageNum).
			Int("links", len(links)).
			Msg("Processing listing page")

		for _, link := range links {
			if ctx.Err() != nil {
				summary.TerminationReason = models.TermCancelled
				return summary, nil
			}

			if !o.visited.Add(link.URL) {
				continue
			}
			summary.EntitiesSeen++

			if o.history != nil {
				if seen, err := o.history.Seen(link.URL); err != nil {
					log.Warn().Err(err).Str("url", link.URL).Msg("Ledger lookup failed")
				} else if seen {
					summary.EntitiesSkipped++
					continue
				}
			}

			if o.limiter != nil {
				if err := o.limiter.Wait(ctx); err != nil {
					summary.TerminationReason = models.TermCancelled
					return summary, nil
				}
			}

			// In-flight extraction runs to completion even when the run is
			// cancelled; the next loop iteration observes the cancellation.
			rec, err := o.driver.ExtractEntity(context.WithoutCancel(ctx), link)
			if err != nil || rec == nil {
				summary.EntitiesSkipped++
				consecutiveFailures++
				if err != nil {
					log.Warn().Err(err).Str("url", link.URL).Msg("Entity extraction failed")
				} else {
					log.Debug().Str("url", link.URL).Msg("Entity page rejected")
				}
				o.markHistory(link.URL, false)

				if consecutiveFailures >= o.site.Limits.ConsecutiveFailureLimit {
					summary.TerminationReason = models.TermFailureLimit
					return summary, &CrawlError{
						Phase: PhaseExtracting,
						URL:   link.URL,
						Page:  pageNum,
						Err:   ErrConsecutiveFailures,
					}
				}
				continue
			}
			consecutiveFailures = 0

			if err := o.sink.Persist(ctx, rec); err != nil {
				// Losing records silently is worse than stopping.
				return summary, &CrawlError{Phase: PhaseExtracting, URL: link.URL, Page: pageNum, Err: err}
			}
			summary.RecordsExtracted++
			o.markHistory(link.URL, true)
			if o.hooks.OnRecord != nil {
				o.hooks.OnRecord(rec)
			}
		}

		if ctx.Err() != nil {
			summary.TerminationReason = models.TermCancelled
			return summary, nil
		}

		if max := o.site.Limits.MaxPages; max > 0 && summary.PagesProcessed >= max {
			summary.TerminationReason = models.TermMaxPages
			return summary, nil
		}

		next, ok, reason, err := o.driver.NextPage(ctx, pageURL, pageNum)
		if err != nil {
			// Pagination failures are fatal: restarting from page 1 would
			// re-extract everything already persisted.
			return summary, &CrawlError{Phase: PhasePaginating, URL: pageURL, Page: pageNum, Err: err}
		}
		if !ok {
			summary.TerminationReason = reason
			return summary, nil
		}

		pageURL = next
		pageNum++
	}
}

func (o *Orchestrator) markHistory(url string, found bool) {
	if o.history == nil {
		return
	}
	if err := o.history.MarkExtracted(url, found); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Ledger write failed")
	}
}
