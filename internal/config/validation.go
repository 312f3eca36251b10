package config

import "fmt"

func validate(c *Config) error {
	if c.NavTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	if c.BrowserPoolSize <= 0 || c.BrowserPoolSize > DefaultMaxBrowserPoolSize {
		return fmt.Errorf("browser pool size must be between 1 and %d", DefaultMaxBrowserPoolSize)
	}
	if c.PriceMin < 0 || c.PriceMax <= c.PriceMin {
		return fmt.Errorf("price bounds must satisfy 0 <= min < max")
	}
	if c.MaxReviews < 0 {
		return fmt.Errorf("max reviews must be >= 0")
	}
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be > 0")
	}
	if c.ScrollStep <= 0 || c.ScrollLimit < c.ScrollStep {
		return fmt.Errorf("scroll step must be > 0 and <= scroll limit")
	}
	return nil
}
