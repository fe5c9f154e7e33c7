package stealth

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	longBody := strings.Repeat("Dr. Tan sees patients at the Central Clinic on weekdays. ", 5)

	tests := []struct {
		name      string
		title     string
		body      string
		requested string
		final     string
		flagged   bool
	}{
		{
			name:    "clean page",
			title:   "Dr. Tan | Directory",
			body:    longBody,
			flagged: false,
		},
		{
			name:    "challenge marker in title",
			title:   "Checking your browser before accessing",
			body:    longBody,
			flagged: true,
		},
		{
			name:    "captcha marker in body",
			title:   "Directory",
			body:    longBody + " please solve the CAPTCHA to continue",
			flagged: true,
		},
		{
			name:    "near-empty body",
			title:   "Directory",
			body:    "  \n ",
			flagged: true,
		},
		{
			name:      "redirect off the requested host",
			title:     "Welcome",
			body:      longBody,
			requested: "https://x.test/doctors/1",
			final:     "https://blockpage.example/denied",
			flagged:   true,
		},
		{
			name:      "redirect within the host",
			title:     "Dr. Tan",
			body:      longBody,
			requested: "https://x.test/doctors/1",
			final:     "https://x.test/doctors/1?ref=listing",
			flagged:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := Detect(tt.title, tt.body, tt.requested, tt.final)
			if det.Flagged != tt.flagged {
				t.Errorf("Detect() = %+v, want flagged=%v", det, tt.flagged)
			}
		})
	}
}
