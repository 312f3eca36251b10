package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds application configuration values. The extraction and
// settle knobs are tuned empirically against the target marketplace;
// they live here rather than as hardcoded constants so a layout change
// can be absorbed with a config edit instead of a release.
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP server
	ListenAddr string

	// Browser
	UserAgent          string
	Proxy              string
	ChromePath         string
	BrowserPoolSize    int
	BrowserHeadless    bool
	ViewportWidth      int
	ViewportHeight     int
	NavTimeout         time.Duration
	PoolAcquireTimeout time.Duration

	// Page settle
	ScrollStep     int
	ScrollInterval time.Duration
	ScrollLimit    int
	SettleMarker   string
	MarkerTimeout  time.Duration
	SettleDelay    time.Duration

	// Extraction
	PriceMin         int
	PriceMax         int
	FeatureLookahead int
	MaxReviews       int
	MinReviewLen     int

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Caching
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// Load builds a Config layering defaults, an optional config file,
// FLIPSCAN_* environment variables, and CLI flags, in rising
// precedence. Caller passes the root *cobra.Command so flags can be
// read.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FLIPSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := flagString(cmd, "config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("flipscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.flipscan")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		LogLevel:           v.GetString("log.level"),
		JSONLog:            v.GetBool("log.json"),
		ListenAddr:         v.GetString("server.listen_addr"),
		UserAgent:          v.GetString("browser.user_agent"),
		Proxy:              v.GetString("browser.proxy"),
		ChromePath:         v.GetString("browser.chrome_path"),
		BrowserPoolSize:    v.GetInt("browser.pool_size"),
		BrowserHeadless:    v.GetBool("browser.headless"),
		ViewportWidth:      v.GetInt("browser.viewport_width"),
		ViewportHeight:     v.GetInt("browser.viewport_height"),
		NavTimeout:         v.GetDuration("browser.nav_timeout"),
		PoolAcquireTimeout: v.GetDuration("browser.pool_acquire_timeout"),
		ScrollStep:         v.GetInt("settle.scroll_step"),
		ScrollInterval:     v.GetDuration("settle.scroll_interval"),
		ScrollLimit:        v.GetInt("settle.scroll_limit"),
		SettleMarker:       v.GetString("settle.marker"),
		MarkerTimeout:      v.GetDuration("settle.marker_timeout"),
		SettleDelay:        v.GetDuration("settle.delay"),
		PriceMin:           v.GetInt("extract.price_min"),
		PriceMax:           v.GetInt("extract.price_max"),
		FeatureLookahead:   v.GetInt("extract.feature_lookahead"),
		MaxReviews:         v.GetInt("extract.max_reviews"),
		MinReviewLen:       v.GetInt("extract.min_review_len"),
		RateLimitRPS:       v.GetFloat64("ratelimit.rps"),
		RateLimitBurst:     v.GetInt("ratelimit.burst"),
		CacheTTL:           v.GetDuration("cache.ttl"),
		CacheMaxEntries:    v.GetInt("cache.max_entries"),
	}

	applyFlags(cmd, cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultJSONLog)
	v.SetDefault("server.listen_addr", DefaultListenAddr)
	v.SetDefault("browser.user_agent", DefaultUserAgent)
	v.SetDefault("browser.proxy", "")
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.pool_size", DefaultBrowserPoolSize)
	v.SetDefault("browser.headless", DefaultBrowserHeadless)
	v.SetDefault("browser.viewport_width", DefaultViewportWidth)
	v.SetDefault("browser.viewport_height", DefaultViewportHeight)
	v.SetDefault("browser.nav_timeout", DefaultNavTimeout)
	v.SetDefault("browser.pool_acquire_timeout", DefaultPoolAcquireTTL)
	v.SetDefault("settle.scroll_step", DefaultScrollStep)
	v.SetDefault("settle.scroll_interval", DefaultScrollInterval)
	v.SetDefault("settle.scroll_limit", DefaultScrollLimit)
	v.SetDefault("settle.marker", DefaultSettleMarker)
	v.SetDefault("settle.marker_timeout", DefaultMarkerTimeout)
	v.SetDefault("settle.delay", DefaultSettleDelay)
	v.SetDefault("extract.price_min", DefaultPriceMin)
	v.SetDefault("extract.price_max", DefaultPriceMax)
	v.SetDefault("extract.feature_lookahead", DefaultFeatureLookahead)
	v.SetDefault("extract.max_reviews", DefaultMaxReviews)
	v.SetDefault("extract.min_review_len", DefaultMinReviewLen)
	v.SetDefault("ratelimit.rps", DefaultRateLimitRPS)
	v.SetDefault("ratelimit.burst", DefaultRateLimitBurst)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.max_entries", DefaultCacheMaxEntries)
}

// applyFlags lets explicitly set CLI flags win over file and env.
func applyFlags(cmd *cobra.Command, cfg *Config) {
	if cmd == nil {
		return
	}

	if s := flagString(cmd, "listen"); s != "" {
		cfg.ListenAddr = s
	}
	if s := flagString(cmd, "user-agent"); s != "" {
		cfg.UserAgent = s
	}
	if s := flagString(cmd, "proxy"); s != "" {
		cfg.Proxy = s
	}
	if s := flagString(cmd, "chrome-path"); s != "" {
		cfg.ChromePath = s
	}
	if s := flagString(cmd, "timeout"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.NavTimeout = d
		}
	}
	if flagBool(cmd, "json") {
		cfg.JSONLog = true
	}
	if flagBool(cmd, "verbose") {
		cfg.LogLevel = "debug"
	}
	if flagBool(cmd, "quiet") {
		cfg.LogLevel = "error"
	}
	if cmd.Flags().Lookup("headless") != nil && cmd.Flags().Changed("headless") {
		cfg.BrowserHeadless = flagBool(cmd, "headless")
	}
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func flagBool(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String() == "true"
	}
	return false
}
