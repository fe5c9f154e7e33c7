// Package cli wires the cobra command tree: run, validate, and sessions.
package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/docdex/harvest/internal/config"
)

// appCfg is populated before any command runs.
var appCfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "harvest",
	Short:   "A polite headless-browser crawler for paginated listing sites",
	Long: `Harvest walks a paginated listing site, visits each entity detail page in
a stealth-hardened headless browser, and extracts structured records with
selector fallback chains and a page-validity gate.

Site structure (pagination mechanism, selectors, timing) is described in a
YAML descriptor; the binary itself is site-agnostic.`,
	Version: "0.1.0",
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		appCfg = cfg
		initLogger(cfg)
		return nil
	}
}

// initLogger configures the global zerolog logger from config: console
// writer for humans, plain JSON when requested or piped.
func initLogger(cfg *config.Config) {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if cfg.JSONLog {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
