package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application-level configuration values. Site-specific values
// live in Site and are loaded separately from a descriptor file.
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Browser
	Headless   bool
	ChromePath string
	Proxies    []string

	// Session cookies persisted between runs
	SessionName string

	// Output
	OutputDir    string
	ExportXLSX   bool
	ArchivePages bool

	// Resume ledger (empty = disabled)
	LedgerPath string
	Resume     bool
}

// Load builds a Config by combining defaults, environment variables, and CLI
// flags. Caller should pass the command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:  DefaultLogLevel,
		JSONLog:   DefaultJSONLog,
		Headless:  DefaultHeadless,
		OutputDir: DefaultOutputDir,
	}

	if v := os.Getenv("HARVEST_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("HARVEST_PROXY"); v != "" {
		cfg.Proxies = []string{v}
	}
	if v := os.Getenv("HARVEST_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	if cmd != nil {
		if f := cmd.Flags().Lookup("headless"); f != nil && f.Changed {
			cfg.Headless = f.Value.String() == "true"
		}
		if f := cmd.Flags().Lookup("chrome-path"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.ChromePath = s
			}
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxies = []string{s}
			}
		}
		if f := cmd.Flags().Lookup("output"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.OutputDir = s
			}
		}
		if f := cmd.Flags().Lookup("session"); f != nil {
			cfg.SessionName = f.Value.String()
		}
		if f := cmd.Flags().Lookup("xlsx"); f != nil {
			cfg.ExportXLSX = f.Value.String() == "true"
		}
		if f := cmd.Flags().Lookup("archive"); f != nil {
			cfg.ArchivePages = f.Value.String() == "true"
		}
		if f := cmd.Flags().Lookup("ledger"); f != nil {
			cfg.LedgerPath = f.Value.String()
		}
		if f := cmd.Flags().Lookup("resume"); f != nil {
			cfg.Resume = f.Value.String() == "true"
		}
		if f := cmd.Flags().Lookup("json"); f != nil && f.Value.String() == "true" {
			cfg.JSONLog = true
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "error"
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Timing groups the per-operation timeouts and delays for a crawl.
// Each timeout is scoped to one operation; there is no global crawl deadline.
type Timing struct {
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SelectorTimeout   time.Duration `yaml:"selector_timeout"`
	AjaxSettleTimeout time.Duration `yaml:"ajax_settle_timeout"`
	AjaxFallbackDelay time.Duration `yaml:"ajax_fallback_delay"`
	MinDelay          time.Duration `yaml:"min_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
}

func (t *Timing) applyDefaults() {
	if t.NavigationTimeout <= 0 {
		t.NavigationTimeout = DefaultNavigationTimeout
	}
	if t.SelectorTimeout <= 0 {
		t.SelectorTimeout = DefaultSelectorTimeout
	}
	if t.AjaxSettleTimeout <= 0 {
		t.AjaxSettleTimeout = DefaultAjaxSettleTimeout
	}
	if t.AjaxFallbackDelay <= 0 {
		t.AjaxFallbackDelay = DefaultAjaxFallbackDelay
	}
	if t.MinDelay <= 0 {
		t.MinDelay = DefaultMinDelay
	}
	if t.MaxDelay < t.MinDelay {
		t.MaxDelay = t.MinDelay + DefaultMaxDelay - DefaultMinDelay
	}
}
