package stealth

import (
	"strings"
	"testing"

	"github.com/docdex/harvest/internal/fingerprint"
)

func testFingerprint() fingerprint.Fingerprint {
	return fingerprint.Fingerprint{
		ViewportWidth:       1920,
		ViewportHeight:      1080,
		HardwareConcurrency: 8,
		DeviceMemory:        16,
		Timezone:            "Asia/Singapore",
		Locale:              "en-SG",
		Languages:           []string{"en-SG", "en"},
		WebGLVendor:         "Google Inc. (Intel)",
		WebGLRenderer:       "ANGLE (Intel, Mesa Intel(R) UHD Graphics)",
		Platform:            "Linux x86_64",
		UserAgent:           "Mozilla/5.0 test",
		BatteryLevel:        0.83,
	}
}

func TestBuildScript_CompilesAndCarriesOverrides(t *testing.T) {
	script := BuildScript(testFingerprint())

	if err := CheckScript(script); err != nil {
		t.Fatalf("generated script does not compile: %v", err)
	}

	// Spot-check the overrides the fingerprint is supposed to drive.
	for _, want := range []string{
		"'webdriver'",
		"'languages'",
		`["en-SG","en"]`,
		"'hardwareConcurrency'",
		"() => 8",
		"'deviceMemory'",
		"getBattery",
		"37445",
		"37446",
		"Google Inc. (Intel)",
		"cdc_",
		"toDataURL",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestCheckScript_RejectsBrokenJS(t *testing.T) {
	if err := CheckScript("function ( {"); err == nil {
		t.Error("expected a compile error for broken JS")
	}
}

func TestAcceptLanguage(t *testing.T) {
	fp := testFingerprint()
	if got := acceptLanguage(fp); got != "en-SG,en" {
		t.Errorf("acceptLanguage = %q", got)
	}

	fp.Languages = nil
	if got := acceptLanguage(fp); got != "en-SG" {
		t.Errorf("acceptLanguage fallback = %q, want the locale", got)
	}
}
