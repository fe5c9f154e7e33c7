package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PaginationType selects how a site advances through listing pages.
type PaginationType string

const (
	PaginationQuery PaginationType = "query"
	PaginationPath  PaginationType = "path"
	PaginationAjax  PaginationType = "ajax"
)

// Pagination describes how listing pages are numbered for one site.
type Pagination struct {
	Type PaginationType `yaml:"type"`
	// QueryPattern names the page query parameter, e.g. "page={page}".
	QueryPattern string `yaml:"query_pattern,omitempty"`
	// PathPattern embeds the page number in a path segment, e.g. "/page/{page}".
	PathPattern string `yaml:"path_pattern,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	StartPage   int    `yaml:"start_page"`
}

// Selectors holds the per-site CSS selectors consumed by the crawl core.
// The core treats these as opaque configuration.
type Selectors struct {
	ListingLinks     string   `yaml:"listing_links"`
	NextButton       string   `yaml:"next_button,omitempty"`
	LoadingIndicator string   `yaml:"loading_indicator,omitempty"`
	LoadMore         []string `yaml:"load_more,omitempty"`
	Name             []string `yaml:"name,omitempty"`
	Specialty        []string `yaml:"specialty,omitempty"`
	Contact          []string `yaml:"contact,omitempty"`
	AttributeRows    string   `yaml:"attribute_rows,omitempty"`
	// LastPageText, when present in the page body, is an explicit terminal marker.
	LastPageText string `yaml:"last_page_text,omitempty"`
}

// Limits bounds a crawl run.
type Limits struct {
	// MaxPages caps the number of listing pages; 0 means unlimited.
	MaxPages int `yaml:"max_pages"`
	// ConsecutiveFailureLimit aborts the run after this many entity
	// failures in a row.
	ConsecutiveFailureLimit int `yaml:"consecutive_failure_limit"`
	// MinTextLength is the meaningful-text threshold for the validity gate.
	MinTextLength int `yaml:"min_text_length"`
}

// LifecycleMode selects the browser lifecycle policy.
type LifecycleMode string

const (
	// LifecycleFresh launches and tears down a browser around every entity.
	LifecycleFresh LifecycleMode = "fresh"
	// LifecyclePooled reuses one browser, restarting after RetireAfterPages.
	LifecyclePooled LifecycleMode = "pooled"
)

// Lifecycle configures browser reuse. The choice is a knob, not a code fork.
type Lifecycle struct {
	Mode             LifecycleMode `yaml:"mode"`
	RetireAfterPages int           `yaml:"retire_after_pages"`
}

// Site is the immutable per-run descriptor of one target site. It is built
// once at startup and passed explicitly to every component.
type Site struct {
	Name                string     `yaml:"name"`
	StartURL            string     `yaml:"start_url"`
	AllowedURLPatterns  []string   `yaml:"allowed_url_patterns,omitempty"`
	ExcludedURLPatterns []string   `yaml:"excluded_url_patterns,omitempty"`
	Pagination          Pagination `yaml:"pagination"`
	Selectors           Selectors  `yaml:"selectors"`
	Timing              Timing     `yaml:"timing"`
	Limits              Limits     `yaml:"limits"`
	Lifecycle           Lifecycle  `yaml:"lifecycle"`
}

// LoadSite reads, defaults, and validates a site descriptor from a YAML file.
func LoadSite(path string) (*Site, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}

	var site Site
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}

	site.applyDefaults()
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Site) applyDefaults() {
	if s.Pagination.StartPage <= 0 {
		s.Pagination.StartPage = DefaultStartPage
	}
	if s.Pagination.BaseURL == "" {
		s.Pagination.BaseURL = s.StartURL
	}
	if s.Limits.ConsecutiveFailureLimit <= 0 {
		s.Limits.ConsecutiveFailureLimit = DefaultFailureLimit
	}
	if s.Limits.MinTextLength <= 0 {
		s.Limits.MinTextLength = DefaultMinTextLength
	}
	if s.Lifecycle.Mode == "" {
		s.Lifecycle.Mode = LifecyclePooled
	}
	if s.Lifecycle.RetireAfterPages <= 0 {
		s.Lifecycle.RetireAfterPages = DefaultRetireAfterPages
	}
	s.Timing.applyDefaults()
}

// Validate checks the descriptor for the mistakes that would otherwise only
// surface mid-crawl.
func (s *Site) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("site name is required")
	}
	if err := checkURL(s.StartURL); err != nil {
		return fmt.Errorf("start_url: %w", err)
	}
	if s.Selectors.ListingLinks == "" {
		return fmt.Errorf("selectors.listing_links is required")
	}

	switch s.Pagination.Type {
	case PaginationQuery:
		if !strings.Contains(s.Pagination.QueryPattern, "{page}") {
			return fmt.Errorf("pagination.query_pattern must contain {page}")
		}
	case PaginationPath:
		if !strings.Contains(s.Pagination.PathPattern, "{page}") {
			return fmt.Errorf("pagination.path_pattern must contain {page}")
		}
		if err := checkURL(s.Pagination.BaseURL); err != nil {
			return fmt.Errorf("pagination.base_url: %w", err)
		}
	case PaginationAjax:
		if s.Selectors.NextButton == "" {
			return fmt.Errorf("ajax pagination requires selectors.next_button")
		}
	default:
		return fmt.Errorf("pagination.type must be one of query, path, ajax")
	}

	switch s.Lifecycle.Mode {
	case LifecycleFresh, LifecyclePooled:
	default:
		return fmt.Errorf("lifecycle.mode must be fresh or pooled")
	}

	return nil
}

func checkURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}
