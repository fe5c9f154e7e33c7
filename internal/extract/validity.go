package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/docdex/harvest/pkg/models"
)

// errorMarkers in the title or first chunk of body text mean the server
// rendered an error page behind a 200.
var errorMarkers = []string{
	"404",
	"not found",
	"page not found",
	"server error",
	"forbidden",
	"access denied",
	"something went wrong",
}

// trackingMarkers identify analytics/pixel/tag-manager boilerplate. Text
// consisting of nothing else is machinery, not content.
var trackingMarkers = []string{
	"googletagmanager",
	"google-analytics",
	"gtag(",
	"ga('create'",
	"fbq(",
	"datalayer",
	"hotjar",
	"doubleclick",
	"pixel",
	"_gaq",
}

// domainKeywords suggest the page carries directory content even when the
// text is thin; their absence alongside tracking boilerplate marks a page
// borderline rather than invalid outright.
var domainKeywords = []string{
	"doctor", "dr.", "clinic", "specialist", "physician", "dentist",
	"profile", "contact", "appointment", "tel", "phone", "email", "address",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Validate classifies a captured page. The gate runs before any field
// extraction so selectors never run against error shells.
func Validate(doc *goquery.Document, title, rawHTML string, minTextLength int) models.PageValidation {
	lt := strings.ToLower(title)
	for _, marker := range errorMarkers {
		if strings.Contains(lt, marker) {
			return models.PageValidation{Reason: "error title: " + marker}
		}
	}

	text := MeaningfulText(rawHTML)
	v := models.PageValidation{TextLength: len(text)}

	lb := strings.ToLower(text)
	for _, marker := range errorMarkers {
		// Only the head of the body: a legit profile can mention "error"
		// somewhere deep in a review.
		head := lb
		if len(head) > 300 {
			head = head[:300]
		}
		if strings.Contains(head, marker) {
			v.Reason = "error body: " + marker
			return v
		}
	}

	if isIframeShell(doc, text) {
		v.Reason = "iframe shell"
		return v
	}

	if len(text) < minTextLength {
		v.Reason = "below meaningful-text threshold"
		// Tracking machinery without domain keywords: the real content may
		// simply not have lazy-loaded yet, which is worth one remediation
		// pass before giving up.
		if hasTrackingBoilerplate(rawHTML) && !hasDomainKeywords(lb) {
			v.Borderline = true
		}
		return v
	}

	v.Valid = true
	return v
}

// MeaningfulText extracts the visible text of a page, skipping script,
// style, noscript, and iframe subtrees, then drops lines that are tracking
// boilerplate and collapses whitespace.
func MeaningfulText(rawHTML string) string {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var kept []string
	for _, line := range strings.Split(b.String(), "\n") {
		ll := strings.ToLower(line)
		drop := false
		for _, marker := range trackingMarkers {
			if strings.Contains(ll, marker) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, line)
		}
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.Join(kept, " "), " "))
}

func hasTrackingBoilerplate(rawHTML string) bool {
	lh := strings.ToLower(rawHTML)
	for _, marker := range trackingMarkers {
		if strings.Contains(lh, marker) {
			return true
		}
	}
	return false
}

func hasDomainKeywords(lowerText string) bool {
	for _, kw := range domainKeywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

// isIframeShell reports whether the body is effectively just an iframe
// wrapper: at least one iframe, almost no other element structure, and no
// meaningful text of its own.
func isIframeShell(doc *goquery.Document, text string) bool {
	body := doc.Find("body")
	if body.Length() == 0 {
		return false
	}

	iframes := body.Find("iframe").Length()
	if iframes == 0 {
		return false
	}

	structural := 0
	body.Find("p, h1, h2, h3, table, ul, ol, article, section").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) != "" {
			structural++
		}
	})

	return structural == 0 && len(text) < 60
}
