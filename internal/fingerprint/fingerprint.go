// Package fingerprint produces a self-consistent browser session identity.
//
// A Fingerprint is generated once at crawl start and lives for the whole
// run: every page the target site sees carries the same viewport, hardware
// profile, timezone, and user agent.
package fingerprint

import (
	"math/rand"
	"time"

	random "github.com/mazen160/go-random"
	"github.com/rs/zerolog/log"
)

// Fingerprint is the bundle of session-identity parameters presented to a
// target site. Immutable for the lifetime of a crawl.
type Fingerprint struct {
	ViewportWidth       int
	ViewportHeight      int
	HardwareConcurrency int
	DeviceMemory        int
	Timezone            string
	Locale              string
	Languages           []string
	WebGLVendor         string
	WebGLRenderer       string
	Platform            string
	UserAgent           string
	BatteryLevel        float64
}

// Generate draws one profile from each pool and combines them. Pools are
// sampled independently; a session is plausible, not a replica of any real
// device.
func Generate() Fingerprint {
	vp := viewportPool[pick(len(viewportPool))]
	hw := hardwarePool[pick(len(hardwarePool))]
	gl := webglPool[pick(len(webglPool))]
	loc := localePool[pick(len(localePool))]
	plat := platformPool[pick(len(platformPool))]

	fp := Fingerprint{
		ViewportWidth:       vp.Width,
		ViewportHeight:      vp.Height,
		HardwareConcurrency: hw.Concurrency,
		DeviceMemory:        hw.DeviceMemory,
		Timezone:            loc.Timezone,
		Locale:              loc.Locale,
		Languages:           loc.Languages,
		WebGLVendor:         gl.Vendor,
		WebGLRenderer:       gl.Renderer,
		Platform:            plat.Platform,
		UserAgent:           plat.UserAgent,
		BatteryLevel:        batteryLevels[pick(len(batteryLevels))],
	}

	log.Debug().
		Int("viewport_w", fp.ViewportWidth).
		Int("viewport_h", fp.ViewportHeight).
		Int("cores", fp.HardwareConcurrency).
		Str("timezone", fp.Timezone).
		Str("platform", fp.Platform).
		Msg("Fingerprint generated")

	return fp
}

// pick returns a random index in [0, n). go-random draws from crypto/rand;
// on failure we fall back to math/rand rather than aborting the crawl over
// an identity detail.
func pick(n int) int {
	if n <= 1 {
		return 0
	}
	i, err := random.IntRange(0, n)
	if err != nil {
		return fallbackRng.Intn(n)
	}
	return i
}

var fallbackRng = rand.New(rand.NewSource(time.Now().UnixNano()))
