package extract

import (
	"strings"
	"testing"
)

const minTextForTest = 120

func TestValidate_RejectsErrorTitle(t *testing.T) {
	html := `<html><head><title>404 Not Found</title></head><body><p>gone</p></body></html>`
	doc := parseDoc(t, html)

	v := Validate(doc, "404 Not Found", html, minTextForTest)
	if v.Valid {
		t.Error("error page validated as usable")
	}
	if !strings.Contains(v.Reason, "error title") {
		t.Errorf("reason = %q, want error title", v.Reason)
	}
}

func TestValidate_RejectsTrackingOnlyPage(t *testing.T) {
	// A structurally complete page whose only content is analytics
	// machinery. Meaningful text excludes scripts, so the page lands under
	// the threshold, and the boilerplate without domain keywords marks it
	// borderline for one remediation pass.
	html := `<html><head><title>Listing</title>
		<script src="https://www.googletagmanager.com/gtag/js"></script>
		<script>window.dataLayer = window.dataLayer || []; gtag('config', 'G-1');</script>
	</head><body>
		<noscript><iframe src="https://www.googletagmanager.com/ns.html"></iframe></noscript>
	</body></html>`
	doc := parseDoc(t, html)

	v := Validate(doc, "Listing", html, minTextForTest)
	if v.Valid {
		t.Error("tracking-boilerplate page validated as usable")
	}
	if !v.Borderline {
		t.Errorf("expected borderline classification, got %+v", v)
	}
}

func TestValidate_AcceptsSubstantivePage(t *testing.T) {
	body := strings.Repeat("Dr. Amelia Tan practices cardiology at the Central Heart Clinic. ", 5)
	html := `<html><head><title>Dr. Amelia Tan</title></head><body><p>` + body + `</p></body></html>`
	doc := parseDoc(t, html)

	v := Validate(doc, "Dr. Amelia Tan", html, minTextForTest)
	if !v.Valid {
		t.Errorf("substantive page rejected: %+v", v)
	}
	if v.TextLength < minTextForTest {
		t.Errorf("text length = %d, want >= %d", v.TextLength, minTextForTest)
	}
}

func TestValidate_RejectsIframeShell(t *testing.T) {
	html := `<html><head><title>Profile</title></head><body>
		<iframe src="https://legacy.x.test/profile?id=1"></iframe>
	</body></html>`
	doc := parseDoc(t, html)

	v := Validate(doc, "Profile", html, minTextForTest)
	if v.Valid {
		t.Error("iframe shell validated as usable")
	}
	if v.Reason != "iframe shell" {
		t.Errorf("reason = %q, want iframe shell", v.Reason)
	}
}

func TestMeaningfulText_SkipsScriptsAndTracking(t *testing.T) {
	html := `<html><body>
		<script>var secret = "should never appear";</script>
		<style>.x { color: red }</style>
		<p>Visible   content
		here.</p>
	</body></html>`

	text := MeaningfulText(html)
	if strings.Contains(text, "should never appear") {
		t.Error("script text leaked into meaningful text")
	}
	if strings.Contains(text, "color") {
		t.Error("style text leaked into meaningful text")
	}
	if text != "Visible content here." {
		t.Errorf("text = %q, want collapsed visible content", text)
	}
}
