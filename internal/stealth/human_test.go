package stealth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chromedp/chromedp"
)

func TestMousePath_StaysInsideViewport(t *testing.T) {
	for i := 0; i < 25; i++ {
		pts := mousePath(1280, 800)
		if len(pts) < 24 {
			t.Fatalf("path has %d points, want at least 24", len(pts))
		}
		for _, p := range pts {
			if p.x < 0 || p.x > 1280 || p.y < 0 || p.y > 800 {
				t.Fatalf("point (%v, %v) outside the 1280x800 viewport", p.x, p.y)
			}
		}
	}
}

func TestMoveMouse_DispatchReachesExecutor(t *testing.T) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
		chromedp.ExecPath(filepath.Join(t.TempDir(), "no-such-browser")))
	defer cancelAlloc()
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	err := moveMouse(ctx, testFingerprint())
	if err == nil {
		t.Fatal("moveMouse succeeded without a browser")
	}
	// Events must be dispatched through the session executor: failing before
	// that surfaces as "invalid context" rather than a launch failure.
	if strings.Contains(err.Error(), "invalid context") {
		t.Fatalf("mouse events never reached the executor: %v", err)
	}
}
