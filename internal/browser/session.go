// Package browser owns browser and page process lifecycle: launch with
// stealth arguments, liveness checks, safe navigation with retry, and
// guaranteed teardown on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/docdex/harvest/internal/fingerprint"
	"github.com/docdex/harvest/internal/proxy"
	"github.com/docdex/harvest/internal/retry"
	"github.com/docdex/harvest/internal/session"
	"github.com/docdex/harvest/internal/stealth"
)

// NavError is a navigation failure after retries were exhausted.
type NavError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavError) Error() string {
	return fmt.Sprintf("navigation to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *NavError) Unwrap() error { return e.Err }

// ErrSessionDead indicates the liveness check failed and the session must be
// replaced rather than retried.
var ErrSessionDead = errors.New("browser session is dead")

// Options configures browser launches for a crawl.
type Options struct {
	Headless          bool
	ChromePath        string
	Proxies           *proxy.Pool
	Cookies           []session.Cookie
	NavigationTimeout time.Duration
	Retry             retry.Config
}

// Manager launches and navigates browser sessions carrying one fingerprint.
type Manager struct {
	opts Options
	fp   fingerprint.Fingerprint
}

// NewManager creates a session manager. The fingerprint is fixed for the
// manager's lifetime so every session presents the same identity.
func NewManager(fp fingerprint.Fingerprint, opts Options) (*Manager, error) {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.ChromePath == "" {
		opts.ChromePath = FindChrome()
	}

	// A broken stealth template would silently leave every page with the
	// default headless signature; fail launch instead.
	if err := stealth.CheckScript(stealth.BuildScript(fp)); err != nil {
		return nil, err
	}

	return &Manager{opts: opts, fp: fp}, nil
}

// Session is one live browser process plus its single page target. Owned
// exclusively by whichever component acquired it; Close is safe to call more
// than once and on every exit path.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	proxyURL    string

	mu          sync.Mutex
	closed      bool
	pagesServed int
}

// Context returns the chromedp context for running actions on the session's page.
func (s *Session) Context() context.Context { return s.ctx }

// PagesServed reports how many pages this session has navigated.
func (s *Session) PagesServed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagesServed
}

func (s *Session) countPage() {
	s.mu.Lock()
	s.pagesServed++
	s.mu.Unlock()
}

// IsAlive performs a trivial in-page evaluation. A session that cannot read
// its own document title is dead; callers must replace it, not retry
// navigation against it.
func (s *Session) IsAlive() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	var title string
	if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
		log.Debug().Err(err).Msg("Liveness check failed")
		return false
	}
	return true
}

// Close tears the session down. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.allocCancel()
	log.Debug().Int("pages_served", s.pagesServed).Msg("Browser session closed")
}

// Launch starts a browser with stealth arguments, installs the fingerprint
// overrides and request blocklist, and injects any saved session cookies.
// The returned session is warmed on about:blank and ready to navigate.
func (m *Manager) Launch(ctx context.Context) (*Session, error) {
	start := time.Now()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-ipc-flooding-protection", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("force-color-profile", "srgb"),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", fmt.Sprintf("%d,%d", m.fp.ViewportWidth, m.fp.ViewportHeight)),
		chromedp.Flag("lang", m.fp.Locale),
		chromedp.Flag("disk-cache-size", "0"),
		chromedp.Flag("media-cache-size", "0"),
		chromedp.UserAgent(m.fp.UserAgent),
	}

	if m.opts.ChromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(m.opts.ChromePath)}, allocOpts...)
	}

	if m.opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	proxyURL := ""
	if m.opts.Proxies != nil {
		proxyURL = m.opts.Proxies.Next()
	}
	if proxyURL != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(proxyURL))
	}

	// The allocator hangs off Background, not the caller's operation
	// context: a session outlives the navigation that created it and is
	// torn down only through Close.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		proxyURL:    proxyURL,
	}

	tasks := chromedp.Tasks{
		network.Enable(),
		network.SetBlockedURLs(BlockedPatterns()),
		stealth.Apply(m.fp),
	}
	if cookies := toCookieParams(m.opts.Cookies); len(cookies) > 0 {
		tasks = append(tasks, network.SetCookies(cookies))
	}
	tasks = append(tasks, chromedp.Navigate("about:blank"))

	warmCtx, warmCancel := context.WithTimeout(browserCtx, m.opts.NavigationTimeout)
	defer warmCancel()

	if err := chromedp.Run(warmCtx, tasks); err != nil {
		s.Close()
		if m.opts.Proxies != nil && proxyURL != "" {
			m.opts.Proxies.MarkFailed(proxyURL)
		}
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	if m.opts.Proxies != nil && proxyURL != "" {
		m.opts.Proxies.MarkHealthy(proxyURL)
	}

	log.Debug().
		Dur("elapsed", time.Since(start)).
		Bool("headless", m.opts.Headless).
		Str("proxy", proxyURL).
		Msg("Browser session launched")

	return s, nil
}

// SafeGoto navigates the session to url, retrying with exponential backoff.
// A dead session is reported as ErrSessionDead without retrying; retrying
// navigation against a dead target only burns the backoff budget.
func (m *Manager) SafeGoto(ctx context.Context, s *Session, url string) error {
	if !s.IsAlive() {
		return &NavError{URL: url, Attempts: 0, Err: ErrSessionDead}
	}

	attempts := 0
	err := retry.WithRetry(ctx, m.opts.Retry, func() error {
		attempts++

		navCtx, cancel := context.WithTimeout(s.ctx, m.opts.NavigationTimeout)
		defer cancel()

		err := chromedp.Run(navCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
		if err != nil {
			if !s.IsAlive() {
				return retry.Permanent{Err: ErrSessionDead}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return &NavError{URL: url, Attempts: attempts, Err: err}
	}

	s.countPage()
	return nil
}

// CollectCookies reads the browser's current cookies for persistence.
func (s *Session) CollectCookies(ctx context.Context) ([]session.Cookie, error) {
	var out []session.Cookie
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			out = append(out, session.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
				SameSite: string(c.SameSite),
			})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to collect cookies: %w", err)
	}
	return out, nil
}

func toCookieParams(cookies []session.Cookie) []*network.CookieParam {
	var params []*network.CookieParam
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			t := time.Unix(int64(c.Expires), 0)
			expires := cdp.TimeSinceEpoch(t)
			p.Expires = &expires
		}
		switch c.SameSite {
		case "Strict":
			p.SameSite = network.CookieSameSiteStrict
		case "Lax":
			p.SameSite = network.CookieSameSiteLax
		case "None":
			p.SameSite = network.CookieSameSiteNone
		}
		params = append(params, p)
	}
	return params
}
