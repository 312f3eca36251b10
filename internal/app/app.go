// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flipintegrity/flipscan/internal/browser"
	"github.com/flipintegrity/flipscan/internal/cache"
	"github.com/flipintegrity/flipscan/internal/config"
	"github.com/flipintegrity/flipscan/internal/extract"
	"github.com/flipintegrity/flipscan/internal/ratelimit"
)

// Application holds all application dependencies and manages their
// lifecycle. It is created once at startup and shared across the CLI
// commands and the HTTP server. Use Close() on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       *cache.MemoryCache
	Launcher    *browser.Launcher
	RateLimiter ratelimit.RateLimiter
	Auditor     *extract.Auditor

	poolMu    sync.Mutex
	pool      *browser.Pool
	startTime time.Time
}

// New creates and initializes an Application. The browser pool is NOT
// started here: one-shot CLI scans use dedicated sessions, and the pool
// only pays off for the long-running server, which calls
// EnsureBrowserPool itself.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := initLogger(cfg)

	memCache := cache.NewMemoryCache(cfg.CacheMaxEntries)
	logger.Debug().
		Int("max_entries", cfg.CacheMaxEntries).
		Msg("Memory cache initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	launcher := browser.NewLauncher(browser.Config{
		Headless:       cfg.BrowserHeadless,
		UserAgent:      cfg.UserAgent,
		Proxy:          cfg.Proxy,
		ChromePath:     cfg.ChromePath,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
	})

	auditor := extract.New(
		launcher,
		rateLimiter,
		browser.SettleOptions{
			ScrollStep:     cfg.ScrollStep,
			ScrollInterval: cfg.ScrollInterval,
			ScrollLimit:    cfg.ScrollLimit,
			Marker:         cfg.SettleMarker,
			MarkerTimeout:  cfg.MarkerTimeout,
			SettleDelay:    cfg.SettleDelay,
		},
		cfg.NavTimeout,
		extract.Options{
			PriceMin:         cfg.PriceMin,
			PriceMax:         cfg.PriceMax,
			FeatureLookahead: cfg.FeatureLookahead,
			MaxReviews:       cfg.MaxReviews,
			MinReviewLen:     cfg.MinReviewLen,
		},
	)

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		Launcher:    launcher,
		RateLimiter: rateLimiter,
		Auditor:     auditor,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

func initLogger(cfg *config.Config) zerolog.Logger {
	logLevel := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	return logger
}

// EnsureBrowserPool lazily warms the browser pool and attaches it to
// the launcher. Safe to call more than once.
func (a *Application) EnsureBrowserPool(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("application is nil")
	}

	a.poolMu.Lock()
	defer a.poolMu.Unlock()

	if a.pool != nil {
		return nil
	}

	a.Logger.Debug().Msg("Initializing browser pool on demand")
	pool, err := browser.NewPool(
		browser.Config{
			Headless:       a.Config.BrowserHeadless,
			UserAgent:      a.Config.UserAgent,
			Proxy:          a.Config.Proxy,
			ChromePath:     a.Config.ChromePath,
			ViewportWidth:  a.Config.ViewportWidth,
			ViewportHeight: a.Config.ViewportHeight,
		},
		browser.PoolConfig{
			Size:           a.Config.BrowserPoolSize,
			AcquireTimeout: a.Config.PoolAcquireTimeout,
		},
	)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to create browser pool on demand")
		return err
	}

	a.pool = pool
	a.Launcher.SetPool(pool)

	a.Logger.Info().Int("pool_size", a.Config.BrowserPoolSize).Msg("Browser pool initialized on demand")
	return nil
}

// Close gracefully shuts down the application: the browser pool first
// (it interrupts running scans), then the cache. Errors are logged but
// never block the remaining steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	a.poolMu.Lock()
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	a.poolMu.Unlock()

	if a.Cache != nil {
		a.Cache.Close()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
