package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	led, err := Open(filepath.Join(t.TempDir(), "crawl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })
	return led
}

func TestLedger_SeenAndMark(t *testing.T) {
	led := openTestLedger(t)

	seen, err := led.Seen("https://x.test/e/1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, led.MarkExtracted("https://x.test/e/1", true))

	seen, err = led.Seen("https://x.test/e/1")
	require.NoError(t, err)
	assert.True(t, seen)

	n, err := led.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLedger_MarkIsIdempotent(t *testing.T) {
	led := openTestLedger(t)

	require.NoError(t, led.MarkExtracted("https://x.test/e/1", false))
	require.NoError(t, led.MarkExtracted("https://x.test/e/1", true))

	n, err := led.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLedger_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.db")

	led, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, led.MarkExtracted("https://x.test/e/9", true))
	require.NoError(t, led.Close())

	led, err = Open(path)
	require.NoError(t, err)
	defer led.Close()

	seen, err := led.Seen("https://x.test/e/9")
	require.NoError(t, err)
	assert.True(t, seen)
}
