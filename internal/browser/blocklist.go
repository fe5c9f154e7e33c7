package browser

// blockedURLPatterns are aborted at the CDP routing layer before a request
// leaves the browser. This is noise reduction, not content blocking: ad and
// tracker frames interfere with rendering and trip the extraction pipeline's
// boilerplate heuristics.
var blockedURLPatterns = []string{
	"*doubleclick.net*",
	"*googlesyndication.com*",
	"*googleadservices.com*",
	"*google-analytics.com*",
	"*googletagmanager.com*",
	"*googletagservices.com*",
	"*connect.facebook.net*",
	"*facebook.com/tr*",
	"*adservice.google.*",
	"*amazon-adsystem.com*",
	"*scorecardresearch.com*",
	"*quantserve.com*",
	"*hotjar.com*",
	"*criteo.com*",
	"*criteo.net*",
	"*taboola.com*",
	"*outbrain.com*",
	"*adnxs.com*",
	"*rubiconproject.com*",
	"*pubmatic.com*",
	"*moatads.com*",
	"*chartbeat.com*",
}

// BlockedPatterns returns a copy of the routing-layer blocklist.
func BlockedPatterns() []string {
	out := make([]string, len(blockedURLPatterns))
	copy(out, blockedURLPatterns)
	return out
}
