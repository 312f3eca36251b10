package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Config controls how browser sessions are created. The user agent and
// fixed viewport matter: a default headless identity gets blocked by
// marketplace anti-automation, and lazy-loading is layout-dependent, so
// the viewport must be deterministic.
type Config struct {
	Headless       bool
	UserAgent      string
	Proxy          string
	ChromePath     string
	ViewportWidth  int
	ViewportHeight int
}

// Launcher hands out isolated browser sessions, preferring a warm pool
// when one has been attached and falling back to a dedicated allocator
// per session otherwise.
type Launcher struct {
	cfg  Config
	mu   sync.Mutex
	pool *Pool
}

// NewLauncher creates a Launcher with the given session config.
func NewLauncher(cfg Config) *Launcher {
	if cfg.ViewportWidth <= 0 {
		cfg.ViewportWidth = 1920
	}
	if cfg.ViewportHeight <= 0 {
		cfg.ViewportHeight = 1080
	}
	return &Launcher{cfg: cfg}
}

// SetPool attaches a warm pool. Thread-safe; may be called after
// sessions have already been handed out.
func (l *Launcher) SetPool(p *Pool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool = p
}

// Session returns an exclusive browser session. A per-scan proxy forces
// the dedicated-allocator path, since the proxy is an allocator-level
// setting the shared pool cannot honor.
func (l *Launcher) Session(ctx context.Context, proxy string) (*Session, error) {
	l.mu.Lock()
	pool := l.pool
	l.mu.Unlock()

	if pool != nil && (proxy == "" || proxy == l.cfg.Proxy) {
		sess, err := pool.Acquire(ctx)
		if err == nil {
			return sess, l.applyViewport(ctx, sess)
		}
		log.Warn().Err(err).Msg("Pool acquire failed, creating dedicated session")
	}

	cfg := l.cfg
	if proxy != "" {
		cfg.Proxy = proxy
	}
	sess, err := newDedicatedSession(cfg)
	if err != nil {
		return nil, err
	}
	return sess, l.applyViewport(ctx, sess)
}

func (l *Launcher) applyViewport(ctx context.Context, sess *Session) error {
	err := sess.run(ctx, emulation.SetDeviceMetricsOverride(
		int64(l.cfg.ViewportWidth), int64(l.cfg.ViewportHeight), 1.0, false))
	if err != nil {
		// Layout-dependent lazy-loading may behave differently, but the
		// session is still usable.
		log.Warn().Err(err).Msg("Failed to fix viewport size")
	}
	return nil
}

// newDedicatedSession builds a session with its own allocator. Slower
// than the pool (full Chrome startup) but fully isolated, including the
// proxy setting.
func newDedicatedSession(cfg Config) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser now so failures surface here, not mid-scan.
	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	return &Session{
		ctx: browserCtx,
		release: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

// allocatorOptions is the shared Chrome flag set. The automation-
// concealment and stability flags follow what survives contact with
// real marketplace pages; window-size pins layout for lazy-loading.
func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", windowSize(cfg)),
		chromedp.Flag("disk-cache-size", "0"),
		chromedp.UserAgent(cfg.UserAgent),
	}

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}
	if chromePath != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, opts...)
	}

	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	if cfg.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.Proxy))
	}

	return opts
}

func windowSize(cfg Config) string {
	w, h := cfg.ViewportWidth, cfg.ViewportHeight
	if w <= 0 {
		w = 1920
	}
	if h <= 0 {
		h = 1080
	}
	return fmt.Sprintf("%d,%d", w, h)
}
