package config

import "time"

// Default constants for application configuration. The user agent is a
// real desktop Chrome identity; the marketplace serves a degraded page
// to anything that looks headless.
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	DefaultListenAddr = ":8080"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultNavTimeout         = 30 * time.Second
	DefaultBrowserPoolSize    = 3
	DefaultMaxBrowserPoolSize = 10
	DefaultBrowserHeadless    = true
	DefaultPoolAcquireTTL     = 30 * time.Second
	DefaultViewportWidth      = 1920
	DefaultViewportHeight     = 1080

	DefaultScrollStep     = 150
	DefaultScrollInterval = 100 * time.Millisecond
	DefaultScrollLimit    = 4000
	DefaultSettleMarker   = "Ratings"
	DefaultMarkerTimeout  = 5 * time.Second
	DefaultSettleDelay    = 4 * time.Second

	DefaultPriceMin         = 500
	DefaultPriceMax         = 1000000
	DefaultFeatureLookahead = 20
	DefaultMaxReviews       = 9
	DefaultMinReviewLen     = 10

	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 2

	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 1000
)
