package pagination

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

func TestCollectHrefs_BoundedByTimeout(t *testing.T) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// The parent context carries no deadline; the snapshot must still give
	// up on its own budget instead of blocking forever.
	start := time.Now()
	_, err := CollectHrefs(ctx, ".results a", time.Millisecond)
	if err == nil {
		t.Fatal("CollectHrefs succeeded without a live page")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("CollectHrefs took %v despite a 1ms budget", elapsed)
	}
}
