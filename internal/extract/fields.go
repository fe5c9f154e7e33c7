package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/docdex/harvest/pkg/models"
)

// boilerplateDenylist holds link/label texts that selectors routinely catch
// instead of real field values. A match here does not short-circuit the
// fallback chain: the chain prefers the first semantically valid result over
// the first non-empty one.
var boilerplateDenylist = []string{
	"view profile",
	"click here",
	"read more",
	"learn more",
	"more info",
	"see more",
	"contact us",
	"book appointment",
	"book now",
	"enquire now",
	"n/a",
	"-",
	"...",
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-().]{6,}\d`)
)

// IsBoilerplate reports whether a candidate value is generic UI text.
func IsBoilerplate(s string) bool {
	c := strings.ToLower(strings.TrimSpace(s))
	for _, deny := range boilerplateDenylist {
		if c == deny {
			return true
		}
	}
	return false
}

// cleanText collapses whitespace and trims a candidate value.
func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// ResolveField walks the ordered selector chain and returns the first
// semantically valid match: non-empty after cleaning and not on the
// boilerplate denylist. When the chain is exhausted the lastResort
// heuristic, if any, gets its turn.
func ResolveField(doc *goquery.Document, selectors []string, lastResort func() models.FieldOutcome) models.FieldOutcome {
	for _, sel := range selectors {
		found := doc.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		text := cleanText(found.Text())
		if text == "" || IsBoilerplate(text) {
			continue
		}
		return models.Found(text, sel)
	}

	if lastResort != nil {
		return lastResort()
	}
	return models.NotFound()
}

// ValidName applies the minimal sanity checks a person/practice name must
// pass before the record-acceptance policy counts it.
func ValidName(s string) bool {
	s = cleanText(s)
	if len(s) < 2 || len(s) > 120 {
		return false
	}
	if IsBoilerplate(s) {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasLetter = true
			break
		}
	}
	return hasLetter
}

// titleSeparators split a page title into segments; the entity name is
// nearly always the first one.
var titleSeparators = []string{"|", " - ", "–", "—", "::"}

// NameFromTitle is the last-resort name heuristic: take the first title
// segment and keep it only if it survives validation.
func NameFromTitle(title string) models.FieldOutcome {
	candidate := cleanText(title)
	for _, sep := range titleSeparators {
		if idx := strings.Index(candidate, sep); idx > 0 {
			candidate = cleanText(candidate[:idx])
		}
	}
	if candidate == "" || !ValidName(candidate) {
		return models.NotFound()
	}
	return models.Found(candidate, "title")
}

// ContactsFromSelectors gathers contact strings from every selector in the
// chain, preferring tel:/mailto: hrefs over display text when present.
func ContactsFromSelectors(doc *goquery.Document, selectors []string) []string {
	var out []string
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				lower := strings.ToLower(href)
				if strings.HasPrefix(lower, "tel:") {
					out = append(out, cleanText(href[4:]))
					return
				}
				if strings.HasPrefix(lower, "mailto:") {
					out = append(out, cleanText(href[7:]))
					return
				}
			}
			text := cleanText(s.Text())
			if text != "" && !IsBoilerplate(text) {
				out = append(out, text)
			}
		})
	}
	return dedupeStrings(out)
}

// ContactsFromText is the last-resort contact heuristic: regex-scan the full
// body text for phone and email patterns.
func ContactsFromText(text string) []string {
	var out []string
	out = append(out, emailRe.FindAllString(text, 5)...)
	for _, m := range phoneRe.FindAllString(text, 5) {
		// Require enough digits that order numbers and years don't match.
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 7 {
			out = append(out, cleanText(m))
		}
	}
	return dedupeStrings(out)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
