package pagination

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/docdex/harvest/internal/config"
)

// AjaxStrategy covers sites that replace listing content in place. There is
// no URL to compute; the page number is an explicit counter advanced after
// each successful click-and-verify.
type AjaxStrategy struct {
	mu   sync.Mutex
	page int
}

// NewAjaxStrategy starts the counter at the configured start page.
func NewAjaxStrategy(startPage int) *AjaxStrategy {
	if startPage <= 0 {
		startPage = 1
	}
	return &AjaxStrategy{page: startPage}
}

// CurrentPage returns the counter; the URL carries no page information.
func (a *AjaxStrategy) CurrentPage(string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page, nil
}

// NextPageURL is always empty: AJAX pagination never changes the URL.
func (a *AjaxStrategy) NextPageURL(string) (string, error) { return "", nil }

// PageURL cannot be computed for in-place pagination.
func (a *AjaxStrategy) PageURL(int) (string, error) {
	return "", &Error{Op: "page_url", Err: fmt.Errorf("ajax pagination has no page URLs")}
}

// Advance bumps the counter after a verified pagination.
func (a *AjaxStrategy) Advance() {
	a.mu.Lock()
	a.page++
	a.mu.Unlock()
}

// HasNext probes the DOM for a usable "next" control: present, enabled, and
// not marked disabled via class or ARIA.
func HasNext(ctx context.Context, nextSelector string) (bool, error) {
	script := fmt.Sprintf(`(() => {
  const el = document.querySelector(%q);
  if (!el) return false;
  if (el.disabled) return false;
  if (el.getAttribute('aria-disabled') === 'true') return false;
  if (/\bdisabled\b/.test(String(el.className || ''))) return false;
  return true;
})()`, nextSelector)

	var usable bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &usable)); err != nil {
		return false, &Error{Op: "has_next", Err: err}
	}
	return usable, nil
}

// ClickAndVerify runs the click-wait-verify protocol on a live listing page:
// snapshot the listing hrefs, click the next control, wait for the loading
// indicator to attach and detach (with a fixed fallback delay when it never
// shows), then re-snapshot. Success requires the href set to have changed —
// a clickable control that yields identical content is pagination failure,
// not success, otherwise a broken "next" button loops forever.
func ClickAndVerify(ctx context.Context, sel config.Selectors, timing config.Timing) (bool, error) {
	before, err := CollectHrefs(ctx, sel.ListingLinks, timing.SelectorTimeout)
	if err != nil {
		return false, &Error{Op: "ajax_snapshot", Err: err}
	}

	clickCtx, cancel := context.WithTimeout(ctx, timing.SelectorTimeout)
	err = chromedp.Run(clickCtx, chromedp.Click(sel.NextButton, chromedp.ByQuery, chromedp.NodeVisible))
	cancel()
	if err != nil {
		return false, &Error{Op: "ajax_click", Err: err}
	}

	waitForSettle(ctx, sel.LoadingIndicator, timing)

	after, err := CollectHrefs(ctx, sel.ListingLinks, timing.SelectorTimeout)
	if err != nil {
		return false, &Error{Op: "ajax_resnapshot", Err: err}
	}

	if SameLinkSet(before, after) {
		log.Debug().
			Int("links", len(after)).
			Msg("AJAX pagination click produced identical content")
		return false, nil
	}
	return true, nil
}

// waitForSettle waits for the loading indicator to appear then disappear.
// Either phase can time out without failing the protocol: some sites skip
// the indicator entirely, so a fixed fallback delay covers that case.
func waitForSettle(ctx context.Context, indicator string, timing config.Timing) {
	if indicator == "" {
		sleep(ctx, timing.AjaxFallbackDelay)
		return
	}

	appearCtx, cancel := context.WithTimeout(ctx, timing.SelectorTimeout)
	appeared := chromedp.Run(appearCtx, chromedp.WaitVisible(indicator, chromedp.ByQuery)) == nil
	cancel()

	if !appeared {
		sleep(ctx, timing.AjaxFallbackDelay)
		return
	}

	goneCtx, cancel := context.WithTimeout(ctx, timing.AjaxSettleTimeout)
	gone := chromedp.Run(goneCtx, chromedp.WaitNotPresent(indicator, chromedp.ByQuery)) == nil
	cancel()

	if !gone {
		sleep(ctx, timing.AjaxFallbackDelay)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// CollectHrefs snapshots the hrefs matched by a listing-link selector, in
// DOM order. The evaluation runs under its own deadline so a wedged renderer
// cannot stall the caller.
func CollectHrefs(ctx context.Context, selector string, timeout time.Duration) ([]string, error) {
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(a => a.href).filter(h => h)`,
		selector)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var hrefs []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &hrefs)); err != nil {
		return nil, err
	}
	return hrefs, nil
}

// SameLinkSet compares two href snapshots as sets: order and duplicates are
// irrelevant, only membership matters.
func SameLinkSet(a, b []string) bool {
	as := uniqueSorted(a)
	bs := uniqueSorted(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
