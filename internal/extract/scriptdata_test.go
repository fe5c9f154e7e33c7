package extract

import (
	"strings"
	"testing"
)

func TestFromScripts_JSONLD(t *testing.T) {
	doc := parseDoc(t, `
		<html><head>
		<script type="application/ld+json">
		{
		  "@context": "https://schema.org",
		  "@type": "Physician",
		  "name": "Dr. Amelia Tan",
		  "medicalSpecialty": "Cardiology",
		  "telephone": "+65 6123 4567",
		  "address": {"streetAddress": "1 Clinic Way"}
		}
		</script>
		</head><body></body></html>`)

	data := FromScripts(doc)
	if data.Name != "Dr. Amelia Tan" {
		t.Errorf("Name = %q", data.Name)
	}
	if data.Specialty != "Cardiology" {
		t.Errorf("Specialty = %q", data.Specialty)
	}
	if len(data.Contacts) != 1 || data.Contacts[0] != "+65 6123 4567" {
		t.Errorf("Contacts = %v", data.Contacts)
	}
}

func TestFromScripts_WindowGlobals(t *testing.T) {
	doc := parseDoc(t, `
		<html><body>
		<script>
		window.__PROFILE__ = {
		  doctor: { fullName: "Dr. Ben Ong", specialty: "Dermatology", phone: "+65 6999 0000" }
		};
		</script>
		</body></html>`)

	data := FromScripts(doc)
	if data.Name != "Dr. Ben Ong" {
		t.Errorf("Name = %q", data.Name)
	}
	if data.Specialty != "Dermatology" {
		t.Errorf("Specialty = %q", data.Specialty)
	}
}

func TestFromScripts_IgnoresBrokenAndForeignScripts(t *testing.T) {
	doc := parseDoc(t, `
		<html><body>
		<script>this is not javascript at all {{{</script>
		<script>window.uninteresting = 42;</script>
		</body></html>`)

	data := FromScripts(doc)
	if !data.Empty() {
		t.Errorf("expected nothing mined, got %+v", data)
	}
}

func TestFromScripts_SkipsOversizeScripts(t *testing.T) {
	blob := "window.x = { name: 'Dr. Huge' }; //" + strings.Repeat("x", maxScriptLen)
	doc := parseDoc(t, `<html><body><script>`+blob+`</script></body></html>`)

	data := FromScripts(doc)
	if data.Name != "" {
		t.Errorf("oversize script should be skipped, mined %q", data.Name)
	}
}
