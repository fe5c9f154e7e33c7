package config

import "github.com/spf13/cobra"

// RegisterFlags registers the shared persistent flags on the root command.
func RegisterFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Only log errors")
	pf.Bool("json", false, "Emit logs as JSON")
	pf.Bool("headless", DefaultHeadless, "Run the browser headless")
	pf.String("chrome-path", "", "Path to the Chrome/Chromium executable")
	pf.String("proxy", "", "Proxy server URL for browser traffic")
	pf.StringP("output", "o", DefaultOutputDir, "Directory for extracted records")
	pf.String("session", "", "Named cookie session to load/save")
	pf.Bool("xlsx", false, "Also export records as an XLSX workbook")
	pf.Bool("archive", false, "Archive each entity page as markdown")
	pf.String("ledger", "", "Path to the sqlite crawl ledger")
	pf.Bool("resume", false, "Skip entities already recorded in the ledger")
}
