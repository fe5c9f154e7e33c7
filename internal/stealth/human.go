package stealth

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/docdex/harvest/internal/fingerprint"
)

var (
	humanMu  sync.Mutex
	humanRng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func humanIntn(n int) int {
	humanMu.Lock()
	defer humanMu.Unlock()
	return humanRng.Intn(n)
}

func humanFloat() float64 {
	humanMu.Lock()
	defer humanMu.Unlock()
	return humanRng.Float64()
}

// Simulate runs an opportunistic burst of human-like interaction: a mouse
// path along interpolated waypoints, a randomized scroll, and randomized
// pauses. It is best-effort; any failure is swallowed because realism must
// never abort extraction.
func Simulate(ctx context.Context, fp fingerprint.Fingerprint) {
	if err := moveMouse(ctx, fp); err != nil {
		log.Debug().Err(err).Msg("Mouse simulation failed, continuing")
	}

	pause(ctx, 150, 600)

	if err := scrollPage(ctx); err != nil {
		log.Debug().Err(err).Msg("Scroll simulation failed, continuing")
	}

	pause(ctx, 200, 900)
}

// moveMouse walks the cursor through 3-5 waypoints with per-step jitter.
// The whole path runs as one action list so every event travels through the
// session executor; a raw cdproto dispatch outside chromedp.Run never reaches
// the browser.
func moveMouse(ctx context.Context, fp fingerprint.Fingerprint) error {
	pts := mousePath(float64(fp.ViewportWidth), float64(fp.ViewportHeight))

	actions := make([]chromedp.Action, 0, len(pts)*2)
	for _, p := range pts {
		actions = append(actions,
			chromedp.MouseEvent(input.MouseMoved, p.x, p.y),
			chromedp.Sleep(time.Duration(5+humanIntn(18))*time.Millisecond),
		)
	}
	return chromedp.Run(ctx, actions...)
}

type point struct{ x, y float64 }

// mousePath interpolates 3-5 waypoints into eased move coordinates with
// per-step pixel jitter, all inside the viewport.
func mousePath(w, h float64) []point {
	x := w * (0.1 + 0.2*humanFloat())
	y := h * (0.1 + 0.2*humanFloat())

	var pts []point
	waypoints := 3 + humanIntn(3)
	for i := 0; i < waypoints; i++ {
		tx := w * (0.1 + 0.8*humanFloat())
		ty := h * (0.1 + 0.8*humanFloat())

		steps := 8 + humanIntn(8)
		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps)
			// Ease-in-out along the segment.
			ease := t * t * (3 - 2*t)
			px := x + (tx-x)*ease + (humanFloat()-0.5)*3
			py := y + (ty-y)*ease + (humanFloat()-0.5)*3
			pts = append(pts, point{math.Round(px), math.Round(py)})
		}
		x, y = tx, ty
	}
	return pts
}

// scrollPage scrolls down a randomized distance over a randomized duration,
// in small increments like a wheel or trackpad would produce.
func scrollPage(ctx context.Context) error {
	total := 300 + humanIntn(900)
	chunks := 4 + humanIntn(5)

	for i := 0; i < chunks; i++ {
		step := total / chunks
		if err := chromedp.Run(ctx,
			chromedp.Evaluate(jsScrollBy(step), nil),
		); err != nil {
			return err
		}

		select {
		case <-time.After(time.Duration(60+humanIntn(180)) * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func jsScrollBy(px int) string {
	return fmt.Sprintf("window.scrollBy({top: %d, behavior: 'smooth'});", px)
}

// pause sleeps a random duration between min and max milliseconds, honoring
// cancellation.
func pause(ctx context.Context, minMs, maxMs int) {
	d := time.Duration(minMs+humanIntn(maxMs-minMs+1)) * time.Millisecond
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
