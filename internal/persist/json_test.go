package persist

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/harvest/pkg/models"
)

func TestJSONSink_PersistsIncrementally(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewJSONSink(dir, "doctors")
	require.NoError(t, err)

	rec1 := &models.Record{URL: "https://x.test/e/1", Name: "Dr. A", ScrapedAt: time.Now(), Validity: models.ValidityValid}
	require.NoError(t, sink.Persist(context.Background(), rec1))

	// The file is complete and parseable after every persist, not just at
	// the end of the run.
	var onDisk []models.Record
	raw, err := os.ReadFile(sink.Path())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, "Dr. A", onDisk[0].Name)

	rec2 := &models.Record{URL: "https://x.test/e/2", Name: "Dr. B", ScrapedAt: time.Now(), Validity: models.ValidityValid}
	require.NoError(t, sink.Persist(context.Background(), rec2))

	raw, err = os.ReadFile(sink.Path())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 2)
	assert.Equal(t, "https://x.test/e/2", onDisk[1].URL)

	assert.Len(t, sink.Records(), 2)
}

func TestNewJSONSink_RotatesPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doctors.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"url":"old"}]`), 0o644))

	sink, err := NewJSONSink(dir, "doctors")
	require.NoError(t, err)

	// The previous run's file moved to .1; the new sink starts empty.
	rotated, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Contains(t, string(rotated), "old")

	_, err = os.Stat(sink.Path())
	assert.True(t, os.IsNotExist(err), "new output file should not exist before the first persist")
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	summary := models.RunSummary{
		Site:              "doctors",
		PagesProcessed:    3,
		RecordsExtracted:  12,
		TerminationReason: models.TermNoNextControl,
	}

	require.NoError(t, WriteSummary(dir, "doctors", summary))

	raw, err := os.ReadFile(filepath.Join(dir, "doctors.summary.json"))
	require.NoError(t, err)

	var got models.RunSummary
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 12, got.RecordsExtracted)
	assert.Equal(t, models.TermNoNextControl, got.TerminationReason)
}

func TestArchiveFilename(t *testing.T) {
	a := archiveFilename("https://x.test/doctors/amelia-tan")
	b := archiveFilename("https://x.test/doctors/amelia-tan")
	c := archiveFilename("https://x.test/doctors/ben-ong")

	assert.Equal(t, a, b, "same URL must map to the same file")
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "doctors-amelia-tan")
	assert.Contains(t, a, ".md")
}

func TestPageArchive_WritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewPageArchive(dir)
	require.NoError(t, err)

	html := `<html><body><h1>Dr. Amelia Tan</h1><p>Cardiology at <strong>Central Clinic</strong>.</p></body></html>`
	require.NoError(t, archive.ArchivePage("https://x.test/doctors/amelia-tan", "Dr. Amelia Tan", html))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "url: https://x.test/doctors/amelia-tan")
	assert.Contains(t, content, "# Dr. Amelia Tan")
	assert.Contains(t, content, "**Central Clinic**")
}
