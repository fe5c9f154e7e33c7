// Package preflight checks a target site is reachable over plain HTTP before
// a browser is ever launched. A dead host should fail in a second, not after
// a full Chrome startup and navigation-retry cycle.
package preflight

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	probeTimeout = 10 * time.Second
	probeRetries = 2
)

// Result is what the probe learned about the target.
type Result struct {
	StatusCode int
	FinalURL   string
	Elapsed    time.Duration
}

// Check issues a GET against the start URL with the crawl's user agent.
// Server-side errors (5xx) fail the check; 4xx does not, because bot
// defenses routinely answer plain HTTP clients with 403 while serving a
// real browser fine.
func Check(ctx context.Context, startURL, userAgent string) (Result, error) {
	client := resty.New().
		SetTimeout(probeTimeout).
		SetRetryCount(probeRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("User-Agent", userAgent)

	start := time.Now()
	resp, err := client.R().SetContext(ctx).Get(startURL)
	if err != nil {
		return Result{}, fmt.Errorf("site unreachable: %w", err)
	}

	result := Result{
		StatusCode: resp.StatusCode(),
		FinalURL:   resp.RawResponse.Request.URL.String(),
		Elapsed:    time.Since(start),
	}

	if resp.StatusCode() >= 500 {
		return result, fmt.Errorf("site returned %d", resp.StatusCode())
	}

	log.Debug().
		Int("status", result.StatusCode).
		Dur("elapsed", result.Elapsed).
		Str("final_url", result.FinalURL).
		Msg("Preflight check passed")

	return result, nil
}
