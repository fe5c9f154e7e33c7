package pagination

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/docdex/harvest/internal/config"
)

// pathStrategy embeds the page number in a path segment matched by the
// pattern, e.g. "/page/{page}" or "/list-{page}.html".
type pathStrategy struct {
	pattern   string
	baseURL   string
	startPage int
	pageRe    *regexp.Regexp
}

func newPathStrategy(cfg config.Pagination) (*pathStrategy, error) {
	if !strings.Contains(cfg.PathPattern, "{page}") {
		return nil, &Error{Op: "new", Err: fmt.Errorf("path pattern %q missing {page}", cfg.PathPattern)}
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Host == "" {
		return nil, &Error{Op: "new", URL: cfg.BaseURL, Err: fmt.Errorf("invalid base URL: %v", err)}
	}

	// Substitute {page} with a capture group inside the quoted pattern.
	quoted := regexp.QuoteMeta(cfg.PathPattern)
	quoted = strings.Replace(quoted, regexp.QuoteMeta("{page}"), `(\d+)`, 1)
	re, err := regexp.Compile(quoted + `$`)
	if err != nil {
		return nil, &Error{Op: "new", Err: err}
	}

	return &pathStrategy{
		pattern:   cfg.PathPattern,
		baseURL:   cfg.BaseURL,
		startPage: cfg.StartPage,
		pageRe:    re,
	}, nil
}

func (p *pathStrategy) CurrentPage(pageURL string) (int, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return 0, &Error{Op: "current_page", URL: pageURL, Err: err}
	}

	m := p.pageRe.FindStringSubmatch(parsed.Path)
	if m == nil {
		// No page segment: this is the entry URL.
		return p.startPage, nil
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &Error{Op: "current_page", URL: pageURL, Err: err}
	}
	return n, nil
}

func (p *pathStrategy) NextPageURL(pageURL string) (string, error) {
	cur, err := p.CurrentPage(pageURL)
	if err != nil {
		return "", err
	}
	return p.PageURL(cur + 1)
}

// PageURL concatenates the substituted pattern onto the base URL, stripping
// exactly one trailing slash from the base first so "/site/" + "/page/3"
// does not produce a double slash.
func (p *pathStrategy) PageURL(n int) (string, error) {
	base := strings.TrimSuffix(p.baseURL, "/")
	segment := strings.Replace(p.pattern, "{page}", strconv.Itoa(n), 1)
	built := base + segment

	if _, err := url.Parse(built); err != nil {
		return "", &Error{Op: "page_url", URL: built, Err: err}
	}
	return built, nil
}
