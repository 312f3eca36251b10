package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// SettleOptions tunes the post-navigation stabilization pass. The
// defaults are calibrated against the target marketplace: reviews and
// the rating histogram only enter the DOM once the viewport has
// scrolled past them.
type SettleOptions struct {
	ScrollStep     int           // pixels per scroll tick
	ScrollInterval time.Duration // pause between ticks
	ScrollLimit    int           // stop scrolling past this depth even if the page is taller
	Marker         string        // visible-text marker that signals the review section rendered
	MarkerTimeout  time.Duration // how long to poll for the marker
	SettleDelay    time.Duration // final unconditional wait for late XHR content
}

// DefaultSettleOptions returns the tuned settle pass.
func DefaultSettleOptions() SettleOptions {
	return SettleOptions{
		ScrollStep:     150,
		ScrollInterval: 100 * time.Millisecond,
		ScrollLimit:    4000,
		Marker:         "Ratings",
		MarkerTimeout:  5 * time.Second,
		SettleDelay:    4 * time.Second,
	}
}

// Settle drives the page to a stable state: incremental scroll to fire
// lazy-loaders, a poll for the review-section marker, then a fixed
// delay for whatever XHR content is still arriving. Every step is
// best-effort; a page that never shows the marker is still scraped.
func Settle(ctx context.Context, sess *Session, opts SettleOptions) {
	if opts.ScrollStep > 0 {
		scrollCtx, cancel := context.WithTimeout(ctx, scrollBudget(opts))
		var done bool
		err := sess.EvaluateAsync(scrollCtx, scrollScript(opts), &done)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Incremental scroll failed, lazy content may be missing")
		}
	}

	if opts.Marker != "" && opts.MarkerTimeout > 0 {
		waitForMarker(ctx, sess, opts)
	}

	if opts.SettleDelay > 0 {
		select {
		case <-time.After(opts.SettleDelay):
		case <-ctx.Done():
		}
	}
}

// scrollBudget bounds the in-page scroll promise: worst case is every
// tick up to the depth limit, plus slack for a slow renderer.
func scrollBudget(opts SettleOptions) time.Duration {
	ticks := opts.ScrollLimit/opts.ScrollStep + 1
	return time.Duration(ticks)*opts.ScrollInterval + 5*time.Second
}

// scrollScript returns a promise that scrolls the page in fixed steps
// until it reaches the bottom or the depth limit, whichever first.
func scrollScript(opts SettleOptions) string {
	return fmt.Sprintf(`new Promise((resolve) => {
		let total = 0;
		const step = %d;
		const limit = %d;
		const timer = setInterval(() => {
			window.scrollBy(0, step);
			total += step;
			const height = document.body ? document.body.scrollHeight : 0;
			if (total + window.innerHeight >= height || total >= limit) {
				clearInterval(timer);
				resolve(true);
			}
		}, %d);
	})`, opts.ScrollStep, opts.ScrollLimit, opts.ScrollInterval.Milliseconds())
}

// waitForMarker polls the rendered text for the marker string. Finding
// it means the review section mounted; not finding it is logged and
// ignored, since many valid product pages carry no reviews at all.
func waitForMarker(ctx context.Context, sess *Session, opts SettleOptions) {
	deadline := time.Now().Add(opts.MarkerTimeout)
	probe := fmt.Sprintf(`document.body ? document.body.innerText.includes(%q) : false`, opts.Marker)

	for time.Now().Before(deadline) {
		var found bool
		if err := sess.Evaluate(ctx, probe, &found); err != nil {
			log.Debug().Err(err).Msg("Marker probe failed")
			return
		}
		if found {
			log.Debug().Str("marker", opts.Marker).Msg("Review section marker rendered")
			return
		}
		select {
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return
		}
	}
	log.Debug().Str("marker", opts.Marker).Msg("Marker never rendered, continuing without it")
}
