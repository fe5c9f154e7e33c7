// Package stealth hides automation markers from in-page detection scripts.
//
// The injector installs navigator/window overrides before any page script
// executes, so detection code observes the values from the session
// fingerprint instead of default headless signatures.
package stealth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/dop251/goja"

	"github.com/docdex/harvest/internal/fingerprint"
)

// BuildScript renders the pre-navigation override script for a fingerprint.
func BuildScript(fp fingerprint.Fingerprint) string {
	languages, _ := json.Marshal(fp.Languages)
	vendor, _ := json.Marshal(fp.WebGLVendor)
	renderer, _ := json.Marshal(fp.WebGLRenderer)
	platform, _ := json.Marshal(fp.Platform)

	return fmt.Sprintf(`(() => {
  Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
  Object.defineProperty(navigator, 'languages', { get: () => %s });
  Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => %d });
  Object.defineProperty(navigator, 'deviceMemory', { get: () => %d });
  Object.defineProperty(navigator, 'platform', { get: () => %s });

  // Headless Chrome ships zero plugins; real profiles never do.
  Object.defineProperty(navigator, 'plugins', {
    get: () => {
      const fake = [
        { name: 'PDF Viewer', filename: 'internal-pdf-viewer' },
        { name: 'Chrome PDF Viewer', filename: 'internal-pdf-viewer' },
        { name: 'Chromium PDF Viewer', filename: 'internal-pdf-viewer' },
      ];
      fake.item = i => fake[i];
      fake.namedItem = n => fake.find(p => p.name === n) || null;
      return fake;
    },
  });

  navigator.getBattery = () => Promise.resolve({
    charging: true,
    chargingTime: 0,
    dischargingTime: Infinity,
    level: %.2f,
    addEventListener: () => {},
    removeEventListener: () => {},
  });

  // UNMASKED_VENDOR_WEBGL / UNMASKED_RENDERER_WEBGL
  const patchGL = proto => {
    const orig = proto.getParameter;
    proto.getParameter = function (p) {
      if (p === 37445) return %s;
      if (p === 37446) return %s;
      return orig.call(this, p);
    };
  };
  if (window.WebGLRenderingContext) patchGL(WebGLRenderingContext.prototype);
  if (window.WebGL2RenderingContext) patchGL(WebGL2RenderingContext.prototype);

  // Per-session canvas noise: nudge one channel of one pixel.
  const origToDataURL = HTMLCanvasElement.prototype.toDataURL;
  HTMLCanvasElement.prototype.toDataURL = function (...args) {
    try {
      const gctx = this.getContext('2d');
      if (gctx && this.width > 2 && this.height > 2) {
        const img = gctx.getImageData(0, 0, 2, 2);
        img.data[0] = (img.data[0] + 1) %% 256;
        gctx.putImageData(img, 0, 0);
      }
    } catch (e) {}
    return origToDataURL.apply(this, args);
  };

  // ChromeDriver leaves cdc_ globals on document and window.
  for (const key of Object.keys(window)) {
    if (key.startsWith('cdc_') || key.startsWith('$cdc_')) delete window[key];
  }
  for (const key of Object.keys(document)) {
    if (key.startsWith('cdc_') || key.startsWith('$cdc_')) delete document[key];
  }

  if (!window.chrome) window.chrome = {};
  if (!window.chrome.runtime) window.chrome.runtime = {};
})();`,
		languages, fp.HardwareConcurrency, fp.DeviceMemory, platform,
		fp.BatteryLevel, vendor, renderer)
}

// CheckScript compiles a generated override script in a goja VM. A template
// edit that breaks the JS would otherwise fail silently inside the browser
// and leave every page with the default headless signature.
func CheckScript(script string) error {
	if _, err := goja.Compile("stealth.js", script, true); err != nil {
		return fmt.Errorf("stealth script does not compile: %w", err)
	}
	return nil
}

// Apply returns the chromedp tasks that install the fingerprint on a fresh
// browser context: environment overrides plus the pre-navigation script.
// Must run before the first Navigate.
func Apply(fp fingerprint.Fingerprint) chromedp.Tasks {
	script := BuildScript(fp)

	return chromedp.Tasks{
		emulation.SetUserAgentOverride(fp.UserAgent).
			WithAcceptLanguage(acceptLanguage(fp)).
			WithPlatform(fp.Platform),
		emulation.SetTimezoneOverride(fp.Timezone),
		emulation.SetDeviceMetricsOverride(int64(fp.ViewportWidth), int64(fp.ViewportHeight), 1, false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}),
	}
}

func acceptLanguage(fp fingerprint.Fingerprint) string {
	if len(fp.Languages) == 0 {
		return fp.Locale
	}
	out := ""
	for i, l := range fp.Languages {
		if i > 0 {
			out += ","
		}
		out += l
	}
	return out
}
