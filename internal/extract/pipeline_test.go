package extract

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/docdex/harvest/internal/config"
	"github.com/docdex/harvest/pkg/models"
)

func testPipeline() *Pipeline {
	return New(&config.Site{
		Selectors: config.Selectors{
			Name:          []string{".cta", "h1.profile-name"},
			Specialty:     []string{".specialty"},
			Contact:       []string{".contact"},
			AttributeRows: "table.details tr",
		},
		Limits: config.Limits{MinTextLength: 120},
	})
}

func TestBuildRecord_FullProfile(t *testing.T) {
	doc := parseDoc(t, `
		<html><body>
			<a class="cta">View Profile</a>
			<h1 class="profile-name">Dr. Amelia Tan</h1>
			<div class="specialty">Cardiology</div>
			<a class="contact" href="tel:+6561234567">Call</a>
			<table class="details">
				<tr><td>Clinic</td><td>Central Heart Clinic</td></tr>
				<tr><td>Languages</td><td>English, Mandarin</td></tr>
			</table>
		</body></html>`)

	rec := testPipeline().BuildRecord(doc, "Dr. Amelia Tan | Directory", "https://x.test/e/1", time.Now())
	if rec == nil {
		t.Fatal("record rejected")
	}

	if rec.Name != "Dr. Amelia Tan" {
		t.Errorf("Name = %q", rec.Name)
	}
	if rec.Specialty != "Cardiology" {
		t.Errorf("Specialty = %q", rec.Specialty)
	}
	if len(rec.Contacts) != 1 || rec.Contacts[0] != "+6561234567" {
		t.Errorf("Contacts = %v", rec.Contacts)
	}
	if len(rec.Attributes) != 2 {
		t.Errorf("Attributes = %v", rec.Attributes)
	}
	if rec.Validity != models.ValidityValid {
		t.Errorf("Validity = %q, want valid", rec.Validity)
	}
}

func TestBuildRecord_TitleFallbackIsPartial(t *testing.T) {
	doc := parseDoc(t, `
		<html><body>
			<div class="specialty">Dermatology</div>
		</body></html>`)

	rec := testPipeline().BuildRecord(doc, "Dr. Ben Ong | Directory", "https://x.test/e/2", time.Now())
	if rec == nil {
		t.Fatal("record rejected")
	}

	if rec.Name != "Dr. Ben Ong" {
		t.Errorf("Name = %q, want title-derived name", rec.Name)
	}
	if rec.Validity != models.ValidityPartial {
		t.Errorf("Validity = %q, want partial for heuristic-only name", rec.Validity)
	}
}

func TestBuildRecord_RejectsEmptyShell(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>Opening hours vary.</p></body></html>`)

	rec := testPipeline().BuildRecord(doc, "Directory", "https://x.test/e/3", time.Now())
	if rec != nil {
		t.Errorf("structurally present but empty page produced a record: %+v", rec)
	}
}

func TestBuildRecord_ContactRegexFallback(t *testing.T) {
	doc := parseDoc(t, `
		<html><body>
			<h1 class="profile-name">Dr. Chen</h1>
			<p>For appointments email frontdesk@clinic.test or call +65 6123 4567.</p>
		</body></html>`)

	rec := testPipeline().BuildRecord(doc, "", "https://x.test/e/4", time.Now())
	if rec == nil {
		t.Fatal("record rejected")
	}
	if len(rec.Contacts) != 2 {
		t.Errorf("Contacts = %v, want email and phone from body text", rec.Contacts)
	}
}

func TestBuildRecord_ScriptDataFillsGaps(t *testing.T) {
	doc := parseDoc(t, `
		<html><head>
			<script type="application/ld+json">
			{"@type": "Physician", "name": "Dr. Dana Lim", "medicalSpecialty": "Neurology", "telephone": "+65 6777 8888"}
			</script>
		</head><body><p>Profile loads dynamically.</p></body></html>`)

	rec := testPipeline().BuildRecord(doc, "", "https://x.test/e/5", time.Now())
	if rec == nil {
		t.Fatal("record rejected")
	}
	if rec.Name != "Dr. Dana Lim" {
		t.Errorf("Name = %q, want script-data name", rec.Name)
	}
	if rec.Specialty != "Neurology" {
		t.Errorf("Specialty = %q", rec.Specialty)
	}
	if rec.Validity != models.ValidityPartial {
		t.Errorf("Validity = %q, want partial for script-data name", rec.Validity)
	}
}

func TestExtract_CaptureBoundedByTimeout(t *testing.T) {
	p := testPipeline()
	p.timing.SelectorTimeout = time.Millisecond

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// Extraction runs detached from the crawl context, so the capture step
	// must enforce its own deadline rather than wait on the session forever.
	start := time.Now()
	_, err := p.Extract(ctx, "https://x.test/e/1")
	if err == nil {
		t.Fatal("Extract succeeded without a live page")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("Extract took %v despite a 1ms capture budget", elapsed)
	}
}
