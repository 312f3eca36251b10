// Package extract recovers structured product facts from a rendered
// marketplace page. It layers three sources by confidence: embedded
// machine-readable metadata, known CSS selectors, and text-pattern
// mining over the full rendered text. Every layer degrades gracefully;
// a field that cannot be recovered stays at its zero value instead of
// failing the scan.
package extract

import (
	"context"
	"fmt"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/rs/zerolog/log"

	"github.com/flipintegrity/flipscan/internal/auth"
	"github.com/flipintegrity/flipscan/internal/browser"
	"github.com/flipintegrity/flipscan/internal/ratelimit"
	"github.com/flipintegrity/flipscan/internal/retry"
	urlutil "github.com/flipintegrity/flipscan/internal/utils/url"
	"github.com/flipintegrity/flipscan/pkg/models"
)

// Options holds the empirically tuned extraction constants. The price
// bounds and the feature lookahead window have no derivation beyond
// field experience with the target marketplace; they are configuration,
// not invariants.
type Options struct {
	PriceMin         int // accepted prices are strictly above this
	PriceMax         int // and strictly below this
	FeatureLookahead int // slack between a feature label and its score, in chars
	MaxReviews       int // cap on collected reviews per scan
	MinReviewLen     int // review text at or below this length is discarded
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		PriceMin:         500,
		PriceMax:         1000000,
		FeatureLookahead: 20,
		MaxReviews:       9,
		MinReviewLen:     10,
	}
}

// Sessions provides isolated browser sessions. Implemented by
// browser.Launcher; each scan owns its session exclusively until Close.
type Sessions interface {
	Session(ctx context.Context, proxy string) (*browser.Session, error)
}

// Auditor runs complete product-page scans: render, settle, snapshot,
// extract, validate.
type Auditor struct {
	sessions   Sessions
	limiter    ratelimit.RateLimiter
	settle     browser.SettleOptions
	navTimeout time.Duration
	opts       Options
	md         *md.Converter
	features   []featurePatterns
}

// New creates an Auditor.
func New(sessions Sessions, limiter ratelimit.RateLimiter, settle browser.SettleOptions, navTimeout time.Duration, opts Options) *Auditor {
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	return &Auditor{
		sessions:   sessions,
		limiter:    limiter,
		settle:     settle,
		navTimeout: navTimeout,
		opts:       opts,
		md:         md.NewConverter("", true, nil),
		features:   compileFeaturePatterns(opts.FeatureLookahead),
	}
}

// Audit scans one product page and returns the assembled record.
//
// The browser session is a scoped acquisition: it is released on every
// exit path, including validation failure and panics escaping the
// extraction body. Navigation and settle failures are absorbed, since
// partially loaded markup often still yields a usable record; the only
// expected terminal failure is *NoUsableDataError.
func (a *Auditor) Audit(ctx context.Context, opts models.ScanOptions) (*models.Product, error) {
	start := time.Now()

	if err := urlutil.ValidateURL(opts.URL); err != nil {
		return nil, err
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var sess *browser.Session
	err := retry.WithRetry(ctx, retry.SessionConfig(), func() error {
		var err error
		sess, err = a.sessions.Session(ctx, opts.Proxy)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire browser session: %w", err)
	}
	defer sess.Close()

	a.prepareSession(ctx, sess, opts)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = a.navTimeout
	}
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	err = sess.Navigate(navCtx, opts.URL)
	cancel()
	if err != nil {
		// Heavy pages regularly blow the navigation deadline while the
		// DOM already holds most of the content. Scrape what loaded.
		log.Warn().Err(err).Str("url", opts.URL).Msg("Navigation did not complete, scraping partial DOM")
	}

	browser.Settle(ctx, sess, a.settle)

	capture, err := sess.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture rendered page: %w", err)
	}

	snap, err := NewSnapshot(opts.URL, capture.Title, capture.Text, capture.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered page: %w", err)
	}

	product := a.FromSnapshot(snap)
	product.FetchedAt = time.Now()
	product.ResponseTime = time.Since(start).Milliseconds()

	if !product.Usable() {
		log.Error().
			Str("url", opts.URL).
			Str("title", capture.Title).
			Str("page_preview", snap.TextPreview(500)).
			Msg("Scan produced no usable product data")
		return nil, &NoUsableDataError{URL: opts.URL, Preview: snap.TextPreview(500)}
	}

	log.Info().
		Str("url", opts.URL).
		Str("name", product.Name).
		Int("price", product.Price).
		Int("reviews", len(product.RecentReviews)).
		Int64("elapsed_ms", product.ResponseTime).
		Msg("Scan completed")

	return product, nil
}

// prepareSession injects saved auth cookies and extra headers. Both are
// best-effort: a missing session or a header failure downgrades the
// scan, it does not abort it.
func (a *Auditor) prepareSession(ctx context.Context, sess *browser.Session, opts models.ScanOptions) {
	if opts.SessionName != "" {
		saved, err := auth.LoadSession(opts.SessionName)
		if err != nil {
			log.Warn().Err(err).Str("session", opts.SessionName).Msg("Failed to load auth session")
		} else if err := sess.SetCookies(ctx, saved.Cookies); err != nil {
			log.Warn().Err(err).Str("session", opts.SessionName).Msg("Failed to inject session cookies")
		} else {
			log.Debug().Int("cookies", len(saved.Cookies)).Msg("Session cookies injected")
		}
	}
	if len(opts.Headers) > 0 {
		if err := sess.SetExtraHeaders(ctx, opts.Headers); err != nil {
			log.Warn().Err(err).Msg("Failed to set extra headers")
		}
	}
}

// FromSnapshot runs the full extraction over an existing snapshot. It
// is deterministic: the same snapshot always yields the same record.
func (a *Auditor) FromSnapshot(snap *Snapshot) *models.Product {
	meta := parseJSONLD(snap)
	if meta.Name == "" || meta.Price == 0 {
		meta = mergeStructured(meta, parseEmbeddedState(snap))
	}

	return &models.Product{
		URL:             snap.URL,
		Name:            a.extractName(snap, meta),
		Price:           a.extractPrice(snap, meta),
		Rating:          a.extractRating(snap, meta),
		RatingCount:     a.extractRatingCount(snap, meta),
		ReviewCount:     a.extractReviewCount(snap, meta),
		Image:           a.extractImage(snap, meta),
		Description:     a.extractDescription(snap, meta),
		RatingBreakdown: a.extractRatingBreakdown(snap),
		FeatureRatings:  a.extractFeatureRatings(snap),
		RecentReviews:   a.extractReviews(snap),
	}
}

// mergeStructured fills zero fields of the primary record from the
// secondary one. JSON-LD stays authoritative where present.
func mergeStructured(primary, secondary structuredProduct) structuredProduct {
	if !secondary.found {
		return primary
	}
	out := primary
	out.found = true
	if out.Name == "" {
		out.Name = secondary.Name
	}
	if out.Price == 0 {
		out.Price = secondary.Price
	}
	if out.Rating == 0 {
		out.Rating = secondary.Rating
	}
	if out.RatingCount == 0 {
		out.RatingCount = secondary.RatingCount
	}
	if out.ReviewCount == 0 {
		out.ReviewCount = secondary.ReviewCount
	}
	if out.Image == "" {
		out.Image = secondary.Image
	}
	if out.Description == "" {
		out.Description = secondary.Description
	}
	return out
}
