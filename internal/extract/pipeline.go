// Package extract turns a live entity page into a validated Record or a
// typed refusal. Failures are values, not panics: the orchestrator treats
// every entity uniformly as record-or-skip.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"

	"github.com/docdex/harvest/internal/config"
	"github.com/docdex/harvest/pkg/models"
)

// Pipeline extracts records from entity pages for one site.
type Pipeline struct {
	selectors config.Selectors
	timing    config.Timing
	minText   int
}

// New builds a pipeline bound to a site's selector set.
func New(site *config.Site) *Pipeline {
	return &Pipeline{
		selectors: site.Selectors,
		timing:    site.Timing,
		minText:   site.Limits.MinTextLength,
	}
}

// Outcome is what one entity page yielded. Record is nil when the page was
// rejected; HTML is kept for the optional page archive.
type Outcome struct {
	Record     *models.Record
	Validation models.PageValidation
	Title      string
	HTML       string
}

// Extract captures the page reachable through the chromedp context and runs
// the gate, one optional remediation pass, and field extraction. It returns
// an error only for browser-level failures; rejected pages come back with a
// nil Record.
func (p *Pipeline) Extract(ctx context.Context, pageURL string) (Outcome, error) {
	title, rawHTML, err := p.capture(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("capture %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Outcome{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	validation := Validate(doc, title, rawHTML, p.minText)
	if !validation.Valid && validation.Borderline {
		log.Debug().Str("url", pageURL).Str("reason", validation.Reason).Msg("Borderline page, remediating")
		title, rawHTML, doc, validation = p.remediate(ctx, pageURL, title, rawHTML, doc, validation)
	}

	out := Outcome{Validation: validation, Title: title, HTML: rawHTML}
	if !validation.Valid {
		log.Debug().Str("url", pageURL).Str("reason", validation.Reason).Msg("Page rejected by validity gate")
		return out, nil
	}

	out.Record = p.BuildRecord(doc, title, pageURL, time.Now())
	return out, nil
}

// capture reads the title and full HTML of the current page. The read runs
// under its own deadline: extraction is detached from the crawl context, so a
// wedged renderer must not be able to stall the run here.
func (p *Pipeline) capture(ctx context.Context) (title, rawHTML string, err error) {
	capCtx, cancel := context.WithTimeout(ctx, p.timing.SelectorTimeout)
	defer cancel()

	err = chromedp.Run(capCtx,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &rawHTML, chromedp.ByQuery),
	)
	return title, rawHTML, err
}

// remediate runs the single recovery pass for borderline pages: strip
// tracking iframes and noscript blocks, scroll to trigger lazy-load, wait,
// then recapture and re-validate. Readability measures what the pass
// actually recovered; a page that still reads as empty article text stays
// rejected.
func (p *Pipeline) remediate(ctx context.Context, pageURL, title, rawHTML string, doc *goquery.Document, validation models.PageValidation) (string, string, *goquery.Document, models.PageValidation) {
	strip := `document.querySelectorAll('noscript, iframe[src*="track"], iframe[src*="pixel"], iframe[src*="analytics"]').forEach(el => el.remove());`

	remCtx, cancel := context.WithTimeout(ctx, p.timing.SelectorTimeout)
	defer cancel()

	err := chromedp.Run(remCtx,
		chromedp.Evaluate(strip, nil),
		chromedp.Evaluate(`window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'});`, nil),
		chromedp.Sleep(p.timing.AjaxFallbackDelay),
		chromedp.Evaluate(`window.scrollTo({top: 0});`, nil),
	)
	if err != nil {
		log.Debug().Err(err).Msg("Remediation actions failed")
		return title, rawHTML, doc, validation
	}

	newTitle, newHTML, err := p.capture(ctx)
	if err != nil {
		return title, rawHTML, doc, validation
	}

	newDoc, err := goquery.NewDocumentFromReader(strings.NewReader(newHTML))
	if err != nil {
		return title, rawHTML, doc, validation
	}

	newValidation := Validate(newDoc, newTitle, newHTML, p.minText)
	if !newValidation.Valid {
		if n := readableTextLength(newHTML, pageURL); n >= p.minText {
			newValidation.Valid = true
			newValidation.Borderline = false
			newValidation.Reason = ""
			newValidation.TextLength = n
		}
	}

	return newTitle, newHTML, newDoc, newValidation
}

// readableTextLength runs readability over the captured HTML and returns
// the extracted article-text length, 0 when extraction fails.
func readableTextLength(rawHTML, pageURL string) int {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return 0
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		return 0
	}
	return len(strings.TrimSpace(article.TextContent))
}

// BuildRecord assembles a Record from a parsed document. Pure DOM work, no
// browser involved. Returns nil when the acceptance policy rejects the
// page: a structurally present but empty shell pollutes the output.
func (p *Pipeline) BuildRecord(doc *goquery.Document, title, pageURL string, now time.Time) *models.Record {
	bodyText := MeaningfulText(docHTML(doc))

	nameOutcome := ResolveField(doc, p.selectors.Name, func() models.FieldOutcome {
		return NameFromTitle(title)
	})
	specialtyOutcome := ResolveField(doc, p.selectors.Specialty, nil)

	contacts := ContactsFromSelectors(doc, p.selectors.Contact)
	if len(contacts) == 0 {
		contacts = ContactsFromText(bodyText)
	}

	attributes := Attributes(doc, p.selectors.AttributeRows)

	// Inline-script data fills whatever the DOM selectors missed.
	if nameOutcome.Status != models.OutcomeFound || specialtyOutcome.Status != models.OutcomeFound || len(contacts) == 0 {
		scriptData := FromScripts(doc)
		if nameOutcome.Status != models.OutcomeFound && scriptData.Name != "" {
			nameOutcome = models.Found(scriptData.Name, "script-data")
		}
		if specialtyOutcome.Status != models.OutcomeFound && scriptData.Specialty != "" {
			specialtyOutcome = models.Found(scriptData.Specialty, "script-data")
		}
		if len(contacts) == 0 {
			contacts = scriptData.Contacts
		}
	}

	record := &models.Record{
		URL:        pageURL,
		ScrapedAt:  now,
		Contacts:   contacts,
		Attributes: attributes,
		Validity:   models.ValidityValid,
	}
	if nameOutcome.Status == models.OutcomeFound && ValidName(nameOutcome.Value) {
		record.Name = nameOutcome.Value
	}
	if specialtyOutcome.Status == models.OutcomeFound {
		record.Specialty = specialtyOutcome.Value
	}

	if !record.HasSubstance() {
		return nil
	}

	// A record missing its name, or built from heuristics alone, is kept
	// but flagged so consumers can weigh it accordingly.
	if record.Name == "" || nameOutcome.Source == "title" || nameOutcome.Source == "script-data" {
		record.Validity = models.ValidityPartial
	}

	return record
}

func docHTML(doc *goquery.Document) string {
	out, err := doc.Html()
	if err != nil {
		return ""
	}
	return out
}
