// Package browser wraps headless Chrome behind the small surface a
// product-page scan needs: navigate, settle, read the rendered page,
// run in-page scripts, close. Sessions are isolated; no two concurrent
// scans share one.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/flipintegrity/flipscan/internal/auth"
)

// defaultOpTimeout bounds individual DOM reads when the caller did not
// set a deadline; a wedged renderer must never stall the caller.
const defaultOpTimeout = 15 * time.Second

// Session is one exclusive browser context. It must be closed on every
// exit path of the scan that acquired it; Close releases the context
// back to its pool or tears down the dedicated allocator.
type Session struct {
	ctx     context.Context
	release func()
}

// Capture is the read-only snapshot material taken from a rendered
// page: title, visible text as the browser computes it, and the outer
// HTML for selector queries.
type Capture struct {
	Title string
	Text  string
	HTML  string
}

// run executes chromedp actions against this session, honoring the
// deadline of the caller's context (the chromedp context itself cannot
// be swapped for the caller's).
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	cancel := func() {}
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
	} else {
		runCtx, cancel = context.WithTimeout(s.ctx, defaultOpTimeout)
	}
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL. The page may keep loading after an error
// return; callers are expected to scrape whatever made it into the DOM.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// Capture reads title, rendered text, and markup in one round trip.
func (s *Session) Capture(ctx context.Context) (*Capture, error) {
	var c Capture
	err := s.run(ctx,
		chromedp.Title(&c.Title),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &c.Text),
		chromedp.OuterHTML("html", &c.HTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Evaluate runs a read-only script in the page and decodes the result.
func (s *Session) Evaluate(ctx context.Context, js string, res any) error {
	return s.run(ctx, chromedp.Evaluate(js, res))
}

// EvaluateAsync runs a promise-returning script and waits for it to
// settle before decoding the result.
func (s *Session) EvaluateAsync(ctx context.Context, js string, res any) error {
	return s.run(ctx, chromedp.Evaluate(js, res,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
}

// SetCookies injects saved auth cookies before navigation, so the scan
// sees the page a logged-in customer sees.
func (s *Session) SetCookies(ctx context.Context, cookies []auth.Cookie) error {
	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			err := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure).
				WithExpires(&expires).
				Do(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	}))
}

// SetExtraHeaders adds headers to every request the session makes.
func (s *Session) SetExtraHeaders(ctx context.Context, headers map[string]string) error {
	h := make(network.Headers, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return s.run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(h),
	)
}

// Cookies reads the session's current cookies, used when persisting an
// interactive login.
func (s *Session) Cookies(ctx context.Context) ([]auth.Cookie, error) {
	var out []auth.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			out = append(out, auth.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
			})
		}
		return nil
	}))
	return out, err
}

// Close releases the underlying browser context. Safe to call once per
// session; always called via defer by the owning scan.
func (s *Session) Close() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
}
