package pagination

import (
	"errors"
	"testing"

	"github.com/docdex/harvest/internal/config"
)

func queryCfg(pattern, base string) config.Pagination {
	return config.Pagination{
		Type:         config.PaginationQuery,
		QueryPattern: pattern,
		BaseURL:      base,
		StartPage:    1,
	}
}

func TestQueryStrategy_NextIncrementsCurrentPage(t *testing.T) {
	s, err := New(queryCfg("page={page}", "https://x.test/list"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	urls := []string{
		"https://x.test/list",
		"https://x.test/list?page=1",
		"https://x.test/list?page=7&sort=name",
		"https://x.test/list?sort=name&page=42",
	}
	for _, u := range urls {
		cur, err := s.CurrentPage(u)
		if err != nil {
			t.Fatalf("CurrentPage(%s) failed: %v", u, err)
		}
		next, err := s.NextPageURL(u)
		if err != nil {
			t.Fatalf("NextPageURL(%s) failed: %v", u, err)
		}
		got, err := s.CurrentPage(next)
		if err != nil {
			t.Fatalf("CurrentPage(%s) failed: %v", next, err)
		}
		if got != cur+1 {
			t.Errorf("%s -> %s: page went %d -> %d, want %d", u, next, cur, got, cur+1)
		}
	}
}

func TestQueryStrategy_PreservesExistingParams(t *testing.T) {
	s, err := New(queryCfg("page={page}", "https://x.test/list?ssic=1"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := s.PageURL(3)
	if err != nil {
		t.Fatalf("PageURL failed: %v", err)
	}
	want := "https://x.test/list?ssic=1&page=3"
	if got != want {
		t.Errorf("PageURL(3) = %s, want %s", got, want)
	}
}

func TestQueryStrategy_RewritesExistingPageParam(t *testing.T) {
	s, err := New(queryCfg("page={page}", "https://x.test/list?ssic=1&page=9&sort=name"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := s.PageURL(2)
	if err != nil {
		t.Fatalf("PageURL failed: %v", err)
	}
	want := "https://x.test/list?ssic=1&page=2&sort=name"
	if got != want {
		t.Errorf("PageURL(2) = %s, want %s", got, want)
	}
}

func TestQueryStrategy_NonNumericPageValue(t *testing.T) {
	s, err := New(queryCfg("page={page}", "https://x.test/list"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := s.CurrentPage("https://x.test/list?page=banana"); err == nil {
		t.Error("expected error for non-numeric page value, got nil")
	}
	var pe *Error
	if _, err := s.NextPageURL("https://x.test/list?page=banana"); !errors.As(err, &pe) {
		t.Errorf("expected *pagination.Error, got %v", err)
	}
}

func TestQueryStrategy_MissingParamIsStartPage(t *testing.T) {
	cfg := queryCfg("page={page}", "https://x.test/list")
	cfg.StartPage = 5
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := s.CurrentPage("https://x.test/list?sort=name")
	if err != nil {
		t.Fatalf("CurrentPage failed: %v", err)
	}
	if got != 5 {
		t.Errorf("CurrentPage without param = %d, want start page 5", got)
	}
}

func pathCfg(pattern, base string) config.Pagination {
	return config.Pagination{
		Type:        config.PaginationPath,
		PathPattern: pattern,
		BaseURL:     base,
		StartPage:   1,
	}
}

func TestPathStrategy_RoundTrip(t *testing.T) {
	s, err := New(pathCfg("/page/{page}", "https://x.test/directory"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	u, err := s.PageURL(4)
	if err != nil {
		t.Fatalf("PageURL failed: %v", err)
	}
	if u != "https://x.test/directory/page/4" {
		t.Errorf("PageURL(4) = %s", u)
	}

	n, err := s.CurrentPage(u)
	if err != nil {
		t.Fatalf("CurrentPage failed: %v", err)
	}
	if n != 4 {
		t.Errorf("CurrentPage(%s) = %d, want 4", u, n)
	}

	next, err := s.NextPageURL(u)
	if err != nil {
		t.Fatalf("NextPageURL failed: %v", err)
	}
	if next != "https://x.test/directory/page/5" {
		t.Errorf("NextPageURL = %s", next)
	}
}

func TestPathStrategy_TrimsSingleTrailingSlash(t *testing.T) {
	s, err := New(pathCfg("/page/{page}", "https://x.test/directory/"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	u, err := s.PageURL(2)
	if err != nil {
		t.Fatalf("PageURL failed: %v", err)
	}
	if u != "https://x.test/directory/page/2" {
		t.Errorf("PageURL(2) = %s, want no double slash", u)
	}
}

func TestPathStrategy_EntryURLIsStartPage(t *testing.T) {
	s, err := New(pathCfg("/page/{page}", "https://x.test/directory"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	n, err := s.CurrentPage("https://x.test/directory")
	if err != nil {
		t.Fatalf("CurrentPage failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CurrentPage(entry URL) = %d, want 1", n)
	}
}

func TestAjaxStrategy_Counter(t *testing.T) {
	s, err := New(config.Pagination{Type: config.PaginationAjax, StartPage: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ajax, ok := s.(*AjaxStrategy)
	if !ok {
		t.Fatalf("expected *AjaxStrategy, got %T", s)
	}

	if n, _ := ajax.CurrentPage("https://x.test/list"); n != 1 {
		t.Errorf("initial page = %d, want 1", n)
	}
	ajax.Advance()
	ajax.Advance()
	if n, _ := ajax.CurrentPage("https://x.test/list"); n != 3 {
		t.Errorf("page after two advances = %d, want 3", n)
	}

	if next, err := ajax.NextPageURL("https://x.test/list"); err != nil || next != "" {
		t.Errorf("NextPageURL = (%q, %v), want empty and nil", next, err)
	}
	if _, err := ajax.PageURL(2); err == nil {
		t.Error("PageURL should fail for ajax pagination")
	}
}

func TestNew_UnknownType(t *testing.T) {
	if _, err := New(config.Pagination{Type: "cursor"}); err == nil {
		t.Error("expected error for unknown pagination type")
	}
}

func TestSameLinkSet(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"identical", []string{"/a", "/b"}, []string{"/a", "/b"}, true},
		{"reordered", []string{"/a", "/b"}, []string{"/b", "/a"}, true},
		{"duplicates collapse", []string{"/a", "/a", "/b"}, []string{"/b", "/a"}, true},
		{"different member", []string{"/a", "/b"}, []string{"/a", "/c"}, false},
		{"subset", []string{"/a", "/b"}, []string{"/a"}, false},
		{"both empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameLinkSet(tt.a, tt.b); got != tt.want {
				t.Errorf("SameLinkSet(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
