package stealth

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// blockMarkers are the body/title fragments that indicate a challenge or
// block page rather than real content.
var blockMarkers = []string{
	"access denied",
	"you have been blocked",
	"too many requests",
	"rate limit",
	"unusual traffic",
	"verify you are human",
	"are you a robot",
	"checking your browser",
	"request blocked",
	"temporarily unavailable",
	"captcha",
}

// minBlockedBodyLength: a block interstitial is usually near-empty; real
// listing/detail pages are not.
const minBlockedBodyLength = 80

// Detection is the outcome of the bot-detection heuristic.
type Detection struct {
	Flagged bool
	Reason  string
}

// Detect flags a page as likely blocked. It is a heuristic only: markers in
// title or body, a near-empty body, or a redirect away from the requested
// host.
func Detect(title, bodyText, requestedURL, finalURL string) Detection {
	lt := strings.ToLower(title)
	lb := strings.ToLower(bodyText)

	for _, marker := range blockMarkers {
		if strings.Contains(lt, marker) || strings.Contains(lb, marker) {
			return Detection{Flagged: true, Reason: "marker: " + marker}
		}
	}

	if len(strings.TrimSpace(bodyText)) < minBlockedBodyLength {
		return Detection{Flagged: true, Reason: "minimal content"}
	}

	if requestedURL != "" && finalURL != "" && hostOf(finalURL) != "" &&
		hostOf(requestedURL) != hostOf(finalURL) {
		return Detection{Flagged: true, Reason: "unexpected redirect to " + hostOf(finalURL)}
	}

	return Detection{}
}

func hostOf(raw string) string {
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

// Countermeasure runs the single bounded remediation pass after a detection:
// an extra wait, a scroll, and a probe for "load more" style controls. It
// runs once and the crawl proceeds regardless of outcome, so detection can
// never become an infinite retry loop.
func Countermeasure(ctx context.Context, loadMoreSelectors []string) {
	log.Debug().Msg("Running bot-detection countermeasure")

	pause(ctx, 2000, 5000)

	if err := scrollPage(ctx); err != nil {
		log.Debug().Err(err).Msg("Countermeasure scroll failed")
	}

	for _, sel := range loadMoreSelectors {
		clickCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := chromedp.Run(clickCtx, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible))
		cancel()
		if err == nil {
			log.Debug().Str("selector", sel).Msg("Countermeasure clicked load-more control")
			pause(ctx, 1000, 2500)
			break
		}
	}
}
