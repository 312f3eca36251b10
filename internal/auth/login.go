package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// LoginOptions configures interactive marketplace login.
type LoginOptions struct {
	// SessionName to save the captured session as.
	SessionName string
	// URL of the marketplace login page.
	URL string
	// WaitSelector is a CSS selector that appears only after a
	// successful login. Empty means wait for manual confirmation.
	WaitSelector string
	// Timeout for the entire login process.
	Timeout time.Duration
	// Headers to store alongside the cookies.
	Headers map[string]string
	// ChromePath overrides browser discovery.
	ChromePath string
}

// InteractiveLogin opens a visible browser, lets the operator log in to
// the marketplace by hand, and captures the resulting cookies. Scans
// run with these cookies see member pricing and can read reviews gated
// behind login.
func InteractiveLogin(opts LoginOptions) (*SessionData, error) {
	if opts.SessionName == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}

	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("interactive login requires a display server (DISPLAY not set)\n\n" +
			"In headless environments, use:\n" +
			"   flipscan sessions import <name> --url=<url> --cookies=<file>\n\n" +
			"   This imports cookies exported from your browser's DevTools.")
	}

	log.Info().
		Str("session", opts.SessionName).
		Str("url", opts.URL).
		Msg("Starting interactive login")

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(1280, 720),
	}
	if opts.ChromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(opts.ChromePath)}, allocOpts...)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	log.Info().Msg("Opening browser for login")
	fmt.Println("\nBrowser opened. Please complete the login process manually.")
	fmt.Println("   The browser will close automatically once you're logged in.")

	if err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(opts.URL),
	); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	if opts.WaitSelector != "" {
		log.Info().Str("selector", opts.WaitSelector).Msg("Waiting for login completion")
		fmt.Printf("   Waiting for element: %s\n", opts.WaitSelector)

		if err := chromedp.Run(browserCtx,
			chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery),
		); err != nil {
			return nil, fmt.Errorf("login timeout or failed: %w", err)
		}
	} else {
		fmt.Println("\n   Press Enter once you have completed login...")
		fmt.Scanln()
	}

	log.Info().Msg("Login completed, extracting cookies")

	var cookies []*network.Cookie
	err := chromedp.Run(browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract cookies: %w", err)
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found - login may have failed")
	}

	log.Info().Int("cookie_count", len(cookies)).Msg("Cookies extracted")

	sessionCookies := make([]Cookie, len(cookies))
	for i, c := range cookies {
		sessionCookies[i] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
	}

	session := &SessionData{
		Name:      opts.SessionName,
		URL:       opts.URL,
		Cookies:   sessionCookies,
		Headers:   opts.Headers,
		CreatedAt: time.Now(),
	}

	// Session validity tracks the longest-lived cookie.
	maxExpires := 0.0
	for _, c := range cookies {
		if c.Expires > maxExpires {
			maxExpires = c.Expires
		}
	}
	if maxExpires > 0 {
		session.ExpiresAt = time.Unix(int64(maxExpires), 0)
	}

	return session, nil
}
