package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.BrowserPoolSize != DefaultBrowserPoolSize {
		t.Errorf("BrowserPoolSize = %d", cfg.BrowserPoolSize)
	}
	if cfg.NavTimeout != DefaultNavTimeout {
		t.Errorf("NavTimeout = %v", cfg.NavTimeout)
	}
	if cfg.PriceMin != DefaultPriceMin || cfg.PriceMax != DefaultPriceMax {
		t.Errorf("price bounds = %d/%d", cfg.PriceMin, cfg.PriceMax)
	}
	if cfg.SettleMarker != DefaultSettleMarker {
		t.Errorf("SettleMarker = %q", cfg.SettleMarker)
	}
	if cfg.MaxReviews != DefaultMaxReviews {
		t.Errorf("MaxReviews = %d", cfg.MaxReviews)
	}
	if !cfg.BrowserHeadless {
		t.Error("headless should default to true")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FLIPSCAN_EXTRACT_PRICE_MIN", "100")
	t.Setenv("FLIPSCAN_BROWSER_POOL_SIZE", "5")
	t.Setenv("FLIPSCAN_SETTLE_MARKER", "Reviews")
	t.Setenv("FLIPSCAN_CACHE_TTL", "10m")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PriceMin != 100 {
		t.Errorf("PriceMin = %d, want env override 100", cfg.PriceMin)
	}
	if cfg.BrowserPoolSize != 5 {
		t.Errorf("BrowserPoolSize = %d, want 5", cfg.BrowserPoolSize)
	}
	if cfg.SettleMarker != "Reviews" {
		t.Errorf("SettleMarker = %q", cfg.SettleMarker)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			NavTimeout:      DefaultNavTimeout,
			BrowserPoolSize: 3,
			PriceMin:        500,
			PriceMax:        1000000,
			MaxReviews:      9,
			CacheMaxEntries: 1000,
			ScrollStep:      150,
			ScrollLimit:     4000,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero nav timeout", func(c *Config) { c.NavTimeout = 0 }, true},
		{"pool too large", func(c *Config) { c.BrowserPoolSize = DefaultMaxBrowserPoolSize + 1 }, true},
		{"pool zero", func(c *Config) { c.BrowserPoolSize = 0 }, true},
		{"inverted price bounds", func(c *Config) { c.PriceMin = 100; c.PriceMax = 50 }, true},
		{"negative max reviews", func(c *Config) { c.MaxReviews = -1 }, true},
		{"zero cache entries", func(c *Config) { c.CacheMaxEntries = 0 }, true},
		{"scroll step over limit", func(c *Config) { c.ScrollStep = 5000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
