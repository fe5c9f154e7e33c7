package fingerprint

// Curated value pools. Entries are combined independently per session; they
// come from common real-world configurations, not from device telemetry.

type viewport struct {
	Width  int
	Height int
}

var viewportPool = []viewport{
	{1920, 1080},
	{1680, 1050},
	{1600, 900},
	{1536, 864},
	{1440, 900},
	{1366, 768},
}

type hardwareProfile struct {
	Concurrency  int
	DeviceMemory int
}

var hardwarePool = []hardwareProfile{
	{4, 4},
	{4, 8},
	{8, 8},
	{8, 16},
	{12, 16},
	{16, 32},
}

type webglProfile struct {
	Vendor   string
	Renderer string
}

var webglPool = []webglProfile{
	{"Google Inc. (Intel)", "ANGLE (Intel, Intel(R) UHD Graphics 620 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
	{"Google Inc. (Intel)", "ANGLE (Intel, Intel(R) Iris(R) Xe Graphics Direct3D11 vs_5_0 ps_5_0, D3D11)"},
	{"Google Inc. (NVIDIA)", "ANGLE (NVIDIA, NVIDIA GeForce GTX 1650 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
	{"Google Inc. (NVIDIA)", "ANGLE (NVIDIA, NVIDIA GeForce RTX 3060 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
	{"Google Inc. (AMD)", "ANGLE (AMD, AMD Radeon(TM) Graphics Direct3D11 vs_5_0 ps_5_0, D3D11)"},
}

type localeProfile struct {
	Timezone  string
	Locale    string
	Languages []string
}

var localePool = []localeProfile{
	{"America/New_York", "en-US", []string{"en-US", "en"}},
	{"America/Chicago", "en-US", []string{"en-US", "en"}},
	{"America/Los_Angeles", "en-US", []string{"en-US", "en"}},
	{"Europe/London", "en-GB", []string{"en-GB", "en"}},
	{"Asia/Singapore", "en-SG", []string{"en-SG", "en", "zh-SG"}},
	{"Australia/Sydney", "en-AU", []string{"en-AU", "en"}},
}

type platformProfile struct {
	Platform  string
	UserAgent string
}

var platformPool = []platformProfile{
	{
		"Win32",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	},
	{
		"Win32",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	},
	{
		"MacIntel",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	},
	{
		"Linux x86_64",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	},
}

// batteryLevels are plausible charge levels for the navigator.getBattery stub.
var batteryLevels = []float64{0.42, 0.55, 0.67, 0.78, 0.86, 0.93, 1.0}
