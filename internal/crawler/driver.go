package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/docdex/harvest/internal/browser"
	"github.com/docdex/harvest/internal/config"
	"github.com/docdex/harvest/internal/extract"
	"github.com/docdex/harvest/internal/fingerprint"
	"github.com/docdex/harvest/internal/pagination"
	"github.com/docdex/harvest/internal/session"
	"github.com/docdex/harvest/internal/stealth"
	"github.com/docdex/harvest/pkg/models"
)

// Archiver optionally stores the raw page behind each extracted record.
type Archiver interface {
	ArchivePage(url, title, html string) error
}

// SiteDriver is the production Driver: a long-lived listing session plus a
// provider-managed detail-page session, wired to the pagination strategy and
// extraction pipeline for one site.
type SiteDriver struct {
	site     *config.Site
	mgr      *browser.Manager
	provider browser.Provider
	pipeline *extract.Pipeline
	strategy pagination.Strategy
	ajax     *pagination.AjaxStrategy
	fp       fingerprint.Fingerprint
	archiver Archiver

	mu      sync.Mutex
	listing *browser.Session
}

// NewSiteDriver wires the browser stack to a site descriptor. archiver may
// be nil.
func NewSiteDriver(site *config.Site, mgr *browser.Manager, provider browser.Provider, fp fingerprint.Fingerprint, archiver Archiver) (*SiteDriver, error) {
	strategy, err := pagination.New(site.Pagination)
	if err != nil {
		return nil, err
	}

	d := &SiteDriver{
		site:     site,
		mgr:      mgr,
		provider: provider,
		pipeline: extract.New(site),
		strategy: strategy,
		fp:       fp,
		archiver: archiver,
	}
	if ajax, ok := strategy.(*pagination.AjaxStrategy); ok {
		d.ajax = ajax
	}
	return d, nil
}

// Close tears down the listing session and the detail-page provider.
func (d *SiteDriver) Close() {
	d.mu.Lock()
	if d.listing != nil {
		d.listing.Close()
		d.listing = nil
	}
	d.mu.Unlock()

	d.provider.Close()
}

// Cookies reads the current cookies off the listing session so the CLI can
// persist them for the next run.
func (d *SiteDriver) Cookies(ctx context.Context) ([]session.Cookie, error) {
	d.mu.Lock()
	s := d.listing
	d.mu.Unlock()
	if s == nil || !s.IsAlive() {
		return nil, fmt.Errorf("no live listing session")
	}
	return s.CollectCookies(ctx)
}

// listingSession returns the live listing session, launching or replacing it
// as needed. The listing page must stay open across the whole run: for AJAX
// pagination the next page only exists inside it.
func (d *SiteDriver) listingSession(ctx context.Context) (*browser.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listing != nil && d.listing.IsAlive() {
		return d.listing, nil
	}
	if d.listing != nil {
		log.Warn().Msg("Listing session died, replacing")
		d.listing.Close()
		d.listing = nil
	}

	s, err := d.mgr.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch listing session: %w", err)
	}
	d.listing = s
	return s, nil
}

// LoadListing navigates to a listing page (when pageURL is non-empty), waits
// for the listing links to render, and returns them in DOM order after URL
// filtering.
func (d *SiteDriver) LoadListing(ctx context.Context, pageURL string, pageNum int) ([]models.EntityLink, error) {
	s, err := d.listingSession(ctx)
	if err != nil {
		return nil, err
	}

	if pageURL != "" {
		if err := d.mgr.SafeGoto(ctx, s, pageURL); err != nil {
			return nil, err
		}
	}

	sel := d.site.Selectors.ListingLinks
	waitCtx, cancel := context.WithTimeout(s.Context(), d.site.Timing.SelectorTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitReady(sel, chromedp.ByQuery))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %q on page %d", ErrSelectorTimeout, sel, pageNum)
	}

	title, bodyText, finalURL := d.snapshot(s)
	if det := stealth.Detect(title, bodyText, pageURL, finalURL); det.Flagged {
		log.Warn().Str("reason", det.Reason).Int("page", pageNum).Msg("Possible block on listing page")
		stealth.Countermeasure(s.Context(), d.site.Selectors.LoadMore)
	}

	hrefs, err := pagination.CollectHrefs(s.Context(), sel, d.site.Timing.SelectorTimeout)
	if err != nil {
		return nil, fmt.Errorf("collect listing links: %w", err)
	}

	base := finalURL
	if base == "" {
		base = pageURL
	}

	links := make([]models.EntityLink, 0, len(hrefs))
	for _, href := range hrefs {
		resolved := ResolveLink(base, href)
		if !Allowed(resolved, d.site.AllowedURLPatterns, d.site.ExcludedURLPatterns) {
			continue
		}
		links = append(links, models.EntityLink{URL: resolved, ListingPage: pageNum})
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("%w: page %d", ErrNoListingLinks, pageNum)
	}
	return links, nil
}

// ExtractEntity opens a detail page on a provider session, runs the human
// simulation and block check, and hands the page to the extraction pipeline.
func (d *SiteDriver) ExtractEntity(ctx context.Context, link models.EntityLink) (*models.Record, error) {
	s, release, err := d.provider.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}
	defer release()

	if err := d.mgr.SafeGoto(ctx, s, link.URL); err != nil {
		return nil, err
	}

	stealth.Simulate(s.Context(), d.fp)

	title, bodyText, finalURL := d.snapshot(s)
	if det := stealth.Detect(title, bodyText, link.URL, finalURL); det.Flagged {
		log.Warn().Str("reason", det.Reason).Str("url", link.URL).Msg("Possible block on entity page")
		stealth.Countermeasure(s.Context(), d.site.Selectors.LoadMore)
	}

	outcome, err := d.pipeline.Extract(s.Context(), link.URL)
	if err != nil {
		return nil, err
	}

	if d.archiver != nil && outcome.HTML != "" && outcome.Record != nil {
		if err := d.archiver.ArchivePage(link.URL, outcome.Title, outcome.HTML); err != nil {
			log.Warn().Err(err).Str("url", link.URL).Msg("Page archive failed")
		}
	}

	return outcome.Record, nil
}

// NextPage advances pagination. URL mechanisms compute the next URL; the
// AJAX mechanism runs click-and-verify against the live listing session.
func (d *SiteDriver) NextPage(ctx context.Context, pageURL string, pageNum int) (string, bool, models.TerminationReason, error) {
	if marker := d.site.Selectors.LastPageText; marker != "" {
		if d.lastPageMarkerPresent(marker) {
			return "", false, models.TermLastPageMarker, nil
		}
	}

	if d.ajax != nil {
		return d.nextPageAjax(ctx)
	}

	next, err := d.strategy.NextPageURL(pageURL)
	if err != nil {
		return "", false, "", err
	}
	if !Allowed(next, d.site.AllowedURLPatterns, d.site.ExcludedURLPatterns) {
		return "", false, models.TermURLFiltered, nil
	}
	return next, true, "", nil
}

func (d *SiteDriver) nextPageAjax(ctx context.Context) (string, bool, models.TerminationReason, error) {
	s, err := d.listingSession(ctx)
	if err != nil {
		return "", false, "", err
	}

	usable, err := pagination.HasNext(s.Context(), d.site.Selectors.NextButton)
	if err != nil {
		return "", false, "", err
	}
	if !usable {
		return "", false, models.TermNoNextControl, nil
	}

	changed, err := pagination.ClickAndVerify(s.Context(), d.site.Selectors, d.site.Timing)
	if err != nil {
		return "", false, "", err
	}
	if !changed {
		return "", false, models.TermContentUnchanged, nil
	}

	d.ajax.Advance()
	return "", true, "", nil
}

// lastPageMarkerPresent checks the listing page body for the configured
// terminal marker. Best-effort: a failed read never ends the run early.
func (d *SiteDriver) lastPageMarkerPresent(marker string) bool {
	d.mu.Lock()
	s := d.listing
	d.mu.Unlock()
	if s == nil {
		return false
	}

	_, bodyText, _ := d.snapshot(s)
	return strings.Contains(strings.ToLower(bodyText), strings.ToLower(marker))
}

// snapshot grabs title, body text, and the final URL for block detection.
// Failures yield empty strings; the heuristics tolerate them.
func (d *SiteDriver) snapshot(s *browser.Session) (title, bodyText, finalURL string) {
	snapCtx, cancel := context.WithTimeout(s.Context(), 10*time.Second)
	defer cancel()

	err := chromedp.Run(snapCtx,
		chromedp.Title(&title),
		chromedp.Text("body", &bodyText, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		log.Debug().Err(err).Msg("Page snapshot failed")
	}
	return title, bodyText, finalURL
}
