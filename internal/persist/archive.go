package persist

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// PageArchive stores a markdown rendering of every extracted page. Markdown
// keeps the archive greppable and diffable where raw HTML snapshots are
// neither.
type PageArchive struct {
	dir  string
	conv *md.Converter
}

// NewPageArchive creates the archive directory and a converter.
func NewPageArchive(dir string) (*PageArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &PageArchive{
		dir:  dir,
		conv: md.NewConverter("", true, nil),
	}, nil
}

// ArchivePage converts a page to markdown and writes it with a small header
// identifying the source.
func (a *PageArchive) ArchivePage(pageURL, title, html string) error {
	body, err := a.conv.ConvertString(html)
	if err != nil {
		return fmt.Errorf("convert page to markdown: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("url: " + pageURL + "\n")
	if title != "" {
		b.WriteString("title: " + title + "\n")
	}
	b.WriteString("archived_at: " + time.Now().Format(time.RFC3339) + "\n")
	b.WriteString("---\n\n")
	b.WriteString(body)
	b.WriteString("\n")

	path := filepath.Join(a.dir, archiveFilename(pageURL))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write archive page: %w", err)
	}
	return nil
}

// archiveFilename builds a stable, filesystem-safe name from the page URL: a
// readable slug from the path plus a short hash to avoid collisions.
func archiveFilename(pageURL string) string {
	sum := sha1.Sum([]byte(pageURL))
	short := hex.EncodeToString(sum[:])[:10]

	slug := "page"
	if parsed, err := url.Parse(pageURL); err == nil {
		raw := strings.Trim(parsed.Path, "/")
		if raw != "" {
			raw = strings.Map(func(r rune) rune {
				switch {
				case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
					return r
				case r >= 'A' && r <= 'Z':
					return r + ('a' - 'A')
				default:
					return '-'
				}
			}, raw)
			raw = strings.Trim(raw, "-")
			if len(raw) > 60 {
				raw = raw[:60]
			}
			if raw != "" {
				slug = raw
			}
		}
	}

	return slug + "-" + short + ".md"
}
