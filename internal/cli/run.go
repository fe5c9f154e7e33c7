package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/docdex/harvest/internal/browser"
	"github.com/docdex/harvest/internal/config"
	"github.com/docdex/harvest/internal/crawler"
	"github.com/docdex/harvest/internal/fingerprint"
	"github.com/docdex/harvest/internal/ledger"
	"github.com/docdex/harvest/internal/persist"
	"github.com/docdex/harvest/internal/preflight"
	"github.com/docdex/harvest/internal/proxy"
	"github.com/docdex/harvest/internal/ratelimit"
	"github.com/docdex/harvest/internal/session"
	"github.com/docdex/harvest/internal/ui"
	"github.com/docdex/harvest/pkg/models"
)

var skipPreflight bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <site.yaml>",
	Short: "Crawl a site described by a YAML descriptor",
	Long: `Run walks the site's listing pages, visits every entity detail page, and
writes extracted records to the output directory as they arrive. The run
ends when pagination is exhausted, a configured limit is reached, or the
process receives an interrupt.`,
	Example: `  # Crawl a site
  harvest run sites/doctors.yaml

  # Crawl with a visible browser and debug logging
  harvest run sites/doctors.yaml --headless=false -v

  # Resume a previous run, also exporting a spreadsheet
  harvest run sites/doctors.yaml --ledger=doctors.db --resume --xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip the HTTP reachability check")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := appCfg
	site, err := config.LoadSite(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fp := fingerprint.Generate()

	if !skipPreflight {
		if _, err := preflight.Check(ctx, site.StartURL, fp.UserAgent); err != nil {
			return err
		}
	}

	var cookies []session.Cookie
	if cfg.SessionName != "" {
		if data, err := session.Load(cfg.SessionName); err != nil {
			log.Warn().Err(err).Str("session", cfg.SessionName).Msg("No saved session, starting fresh")
		} else {
			cookies = data.Cookies
			log.Info().Int("cookies", len(cookies)).Str("session", cfg.SessionName).Msg("Loaded saved session")
		}
	}

	var pool *proxy.Pool
	if len(cfg.Proxies) > 0 {
		pool = proxy.NewPool(cfg.Proxies)
	}

	mgr, err := browser.NewManager(fp, browser.Options{
		Headless:          cfg.Headless,
		ChromePath:        cfg.ChromePath,
		Proxies:           pool,
		Cookies:           cookies,
		NavigationTimeout: site.Timing.NavigationTimeout,
	})
	if err != nil {
		return err
	}

	var provider browser.Provider
	switch site.Lifecycle.Mode {
	case config.LifecycleFresh:
		provider = browser.NewFreshProvider(mgr)
	default:
		provider = browser.NewPooledProvider(mgr, site.Lifecycle.RetireAfterPages)
	}

	sink, err := persist.NewJSONSink(cfg.OutputDir, site.Name)
	if err != nil {
		return err
	}

	var archiver crawler.Archiver
	if cfg.ArchivePages {
		a, err := persist.NewPageArchive(filepath.Join(cfg.OutputDir, site.Name+"-pages"))
		if err != nil {
			return err
		}
		archiver = a
	}

	var history crawler.History
	var led *ledger.Ledger
	if cfg.LedgerPath != "" {
		led, err = ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer led.Close()
		if cfg.Resume {
			history = led
			if n, err := led.Count(); err == nil {
				log.Info().Int("known_urls", n).Msg("Resuming from ledger")
			}
		} else {
			history = writeOnlyHistory{led}
		}
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(os.Stderr), spinner.WithSuffix(" Launching browser..."))
	spin.Start()

	driver, err := crawler.NewSiteDriver(site, mgr, provider, fp, archiver)
	if err != nil {
		spin.Stop()
		return err
	}
	defer driver.Close()

	spin.Stop()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("crawling"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
	)
	hooks := crawler.Hooks{
		OnPage: func(pageNum, links int) {
			bar.Describe(fmt.Sprintf("page %d (%d links)", pageNum, links))
		},
		OnRecord: func(*models.Record) { _ = bar.Add(1) },
	}

	limiter := ratelimit.NewPoliteness(
		config.DefaultPolitenessRPS, config.DefaultPolitenessBurst,
		site.Timing.MinDelay, site.Timing.MaxDelay,
	)

	orch := crawler.New(site, driver, sink, limiter, history, hooks)
	summary, runErr := orch.Run(ctx)
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	// Persist whatever we have before reporting errors: cookies, summary,
	// optional exports.
	if cfg.SessionName != "" {
		saveCookies(driver, cfg.SessionName, site.StartURL)
	}
	if err := persist.WriteSummary(cfg.OutputDir, site.Name, summary); err != nil {
		log.Warn().Err(err).Msg("Could not write run summary")
	}
	if cfg.ExportXLSX {
		path := filepath.Join(cfg.OutputDir, site.Name+".xlsx")
		if err := persist.ExportXLSX(path, sink.Records()); err != nil {
			log.Warn().Err(err).Msg("XLSX export failed")
		} else {
			fmt.Printf("Spreadsheet: %s\n", path)
		}
	}

	printSummary(summary, sink.Path())
	return runErr
}

func saveCookies(driver *crawler.SiteDriver, name, siteURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cookies, err := driver.Cookies(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Could not collect cookies for session save")
		return
	}
	err = session.Save(&session.Data{Name: name, SiteURL: siteURL, Cookies: cookies})
	if err != nil {
		log.Warn().Err(err).Msg("Could not save session")
		return
	}
	log.Info().Int("cookies", len(cookies)).Str("session", name).Msg("Session saved")
}

func printSummary(s models.RunSummary, outputPath string) {
	fmt.Println()
	fmt.Println(ui.Bold("Crawl finished: " + s.Site))
	fmt.Printf("  Pages processed:   %d\n", s.PagesProcessed)
	fmt.Printf("  Entities seen:     %d\n", s.EntitiesSeen)
	fmt.Printf("  Records extracted: %s\n", ui.Success(fmt.Sprintf("%d", s.RecordsExtracted)))
	if s.EntitiesSkipped > 0 {
		fmt.Printf("  Entities skipped:  %s\n", ui.Warn(fmt.Sprintf("%d", s.EntitiesSkipped)))
	}
	fmt.Printf("  Duration:          %s\n", s.Duration().Round(time.Second))
	fmt.Printf("  Ended because:     %s\n", string(s.TerminationReason))
	fmt.Printf("  Output:            %s\n", outputPath)
	fmt.Println()
}

// writeOnlyHistory records outcomes without skipping anything: the ledger
// fills up during a non-resume run so a later --resume can use it.
type writeOnlyHistory struct {
	led *ledger.Ledger
}

func (h writeOnlyHistory) Seen(string) (bool, error) { return false, nil }

func (h writeOnlyHistory) MarkExtracted(url string, found bool) error {
	return h.led.MarkExtracted(url, found)
}
