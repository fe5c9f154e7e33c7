package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSite(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return path
}

func TestLoadSite_AppliesDefaults(t *testing.T) {
	path := writeSite(t, `
name: doctors
start_url: https://x.test/list
pagination:
  type: query
  query_pattern: page={page}
selectors:
  listing_links: ".results a"
`)

	site, err := LoadSite(path)
	if err != nil {
		t.Fatalf("LoadSite failed: %v", err)
	}

	if site.Pagination.StartPage != 1 {
		t.Errorf("StartPage = %d, want default 1", site.Pagination.StartPage)
	}
	if site.Pagination.BaseURL != site.StartURL {
		t.Errorf("BaseURL = %q, want start URL", site.Pagination.BaseURL)
	}
	if site.Limits.ConsecutiveFailureLimit != DefaultFailureLimit {
		t.Errorf("ConsecutiveFailureLimit = %d, want %d", site.Limits.ConsecutiveFailureLimit, DefaultFailureLimit)
	}
	if site.Lifecycle.Mode != LifecyclePooled {
		t.Errorf("Lifecycle.Mode = %q, want pooled default", site.Lifecycle.Mode)
	}
	if site.Timing.NavigationTimeout != DefaultNavigationTimeout {
		t.Errorf("NavigationTimeout = %v, want default", site.Timing.NavigationTimeout)
	}
}

func TestLoadSite_ParsesFullDescriptor(t *testing.T) {
	path := writeSite(t, `
name: doctors
start_url: https://x.test/list?ssic=1
allowed_url_patterns: ["/doctors/"]
excluded_url_patterns: ["/ads/"]
pagination:
  type: ajax
  start_page: 1
selectors:
  listing_links: ".results a"
  next_button: ".pager .next"
  loading_indicator: ".spinner"
  name: ["h1.profile-name", ".doctor-title"]
  attribute_rows: "table.details tr"
  last_page_text: "End of results"
timing:
  navigation_timeout: 45s
  min_delay: 2s
  max_delay: 6s
limits:
  max_pages: 10
lifecycle:
  mode: fresh
`)

	site, err := LoadSite(path)
	if err != nil {
		t.Fatalf("LoadSite failed: %v", err)
	}

	if site.Pagination.Type != PaginationAjax {
		t.Errorf("pagination type = %q", site.Pagination.Type)
	}
	if site.Timing.NavigationTimeout != 45*time.Second {
		t.Errorf("NavigationTimeout = %v", site.Timing.NavigationTimeout)
	}
	if len(site.Selectors.Name) != 2 {
		t.Errorf("name selector chain = %v", site.Selectors.Name)
	}
	if site.Limits.MaxPages != 10 {
		t.Errorf("MaxPages = %d", site.Limits.MaxPages)
	}
	if site.Lifecycle.Mode != LifecycleFresh {
		t.Errorf("Lifecycle.Mode = %q", site.Lifecycle.Mode)
	}
	if site.Selectors.LastPageText != "End of results" {
		t.Errorf("LastPageText = %q", site.Selectors.LastPageText)
	}
}

func TestLoadSite_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"missing name",
			`
start_url: https://x.test/list
pagination: {type: query, query_pattern: "page={page}"}
selectors: {listing_links: "a"}
`,
		},
		{
			"bad scheme",
			`
name: s
start_url: ftp://x.test/list
pagination: {type: query, query_pattern: "page={page}"}
selectors: {listing_links: "a"}
`,
		},
		{
			"query pattern without placeholder",
			`
name: s
start_url: https://x.test/list
pagination: {type: query, query_pattern: "page"}
selectors: {listing_links: "a"}
`,
		},
		{
			"ajax without next button",
			`
name: s
start_url: https://x.test/list
pagination: {type: ajax}
selectors: {listing_links: "a"}
`,
		},
		{
			"unknown pagination type",
			`
name: s
start_url: https://x.test/list
pagination: {type: cursor}
selectors: {listing_links: "a"}
`,
		},
		{
			"missing listing links selector",
			`
name: s
start_url: https://x.test/list
pagination: {type: query, query_pattern: "page={page}"}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadSite(writeSite(t, tt.yaml)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
