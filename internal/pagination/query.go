package pagination

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/docdex/harvest/internal/config"
)

// queryStrategy keeps the page number in a query parameter named by the
// pattern, e.g. "page={page}".
type queryStrategy struct {
	param     string
	baseURL   string
	startPage int
	// paramRe matches the parameter inside a raw query string so a rewrite
	// can preserve the original parameter order.
	paramRe *regexp.Regexp
}

func newQueryStrategy(cfg config.Pagination) (*queryStrategy, error) {
	idx := strings.Index(cfg.QueryPattern, "={page}")
	if idx <= 0 {
		return nil, &Error{Op: "new", Err: fmt.Errorf("query pattern %q must look like name={page}", cfg.QueryPattern)}
	}
	param := cfg.QueryPattern[:idx]

	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, &Error{Op: "new", URL: cfg.BaseURL, Err: fmt.Errorf("invalid base URL: %v", err)}
	}

	re, err := regexp.Compile(`(^|&)` + regexp.QuoteMeta(param) + `=[^&]*`)
	if err != nil {
		return nil, &Error{Op: "new", Err: err}
	}

	return &queryStrategy{
		param:     param,
		baseURL:   cfg.BaseURL,
		startPage: cfg.StartPage,
		paramRe:   re,
	}, nil
}

func (q *queryStrategy) CurrentPage(pageURL string) (int, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return 0, &Error{Op: "current_page", URL: pageURL, Err: err}
	}

	raw := parsed.Query().Get(q.param)
	if raw == "" {
		return q.startPage, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &Error{Op: "current_page", URL: pageURL, Err: fmt.Errorf("non-numeric page value %q", raw)}
	}
	return n, nil
}

func (q *queryStrategy) NextPageURL(pageURL string) (string, error) {
	cur, err := q.CurrentPage(pageURL)
	if err != nil {
		return "", err
	}
	return q.PageURL(cur + 1)
}

// PageURL rewrites the page parameter on the base URL, preserving the order
// of the query parameters the site already carries (some backends are
// order-sensitive; rebuilt, sorted queries also stand out in access logs).
func (q *queryStrategy) PageURL(n int) (string, error) {
	parsed, err := url.Parse(q.baseURL)
	if err != nil {
		return "", &Error{Op: "page_url", URL: q.baseURL, Err: err}
	}

	pair := q.param + "=" + strconv.Itoa(n)
	switch {
	case parsed.RawQuery == "":
		parsed.RawQuery = pair
	case q.paramRe.MatchString(parsed.RawQuery):
		parsed.RawQuery = q.paramRe.ReplaceAllString(parsed.RawQuery, "${1}"+pair)
	default:
		parsed.RawQuery = parsed.RawQuery + "&" + pair
	}

	return parsed.String(), nil
}
