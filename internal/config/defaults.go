package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultHeadless          = true
	DefaultOutputDir         = "output"
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSelectorTimeout   = 10 * time.Second
	DefaultAjaxSettleTimeout = 15 * time.Second
	DefaultAjaxFallbackDelay = 3 * time.Second
	DefaultMinDelay          = 1 * time.Second
	DefaultMaxDelay          = 4 * time.Second
	DefaultStartPage         = 1
	DefaultFailureLimit      = 5
	DefaultRetireAfterPages  = 25
	DefaultPolitenessRPS     = 0.5
	DefaultPolitenessBurst   = 1
	DefaultMinTextLength     = 120
)
