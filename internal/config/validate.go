package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

const minSecretLength = 16

// Validate returns every problem found in c; nil when it is usable.
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[strings.ToLower(c.Server.LogLevel)] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	switch {
	case c.Auth.JWTSecret == "":
		errs = append(errs, "auth.jwt_secret: required")
	case strings.HasPrefix(c.Auth.JWTSecret, "${"):
		// already reported as a missing variable
	case len(c.Auth.JWTSecret) < minSecretLength:
		errs = append(errs, fmt.Sprintf("auth.jwt_secret: must be at least %d characters", minSecretLength))
	}
	if c.Auth.TokenTTL.Duration < 0 {
		errs = append(errs, "auth.token_ttl: must be positive")
	}

	if u, err := url.Parse(c.Scraper.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("scraper.base_url: must be an absolute http(s) URL, got %q", c.Scraper.BaseURL))
	}
	if !strings.HasPrefix(c.Scraper.ListingPath, "/") {
		errs = append(errs, fmt.Sprintf("scraper.listing_path: must start with /, got %q", c.Scraper.ListingPath))
	}
	if c.Scraper.PoolSize < 1 || c.Scraper.PoolSize > 64 {
		errs = append(errs, fmt.Sprintf("scraper.pool_size: must be between 1 and 64, got %d", c.Scraper.PoolSize))
	}
	if c.Scraper.Timeout.Duration < 0 {
		errs = append(errs, "scraper.timeout: must be positive")
	}
	if c.Scraper.RateLimit < 0 {
		errs = append(errs, "scraper.rate_limit: must not be negative")
	}
	if c.Scraper.BreakerFailures < 0 {
		errs = append(errs, "scraper.breaker_failures: must not be negative")
	}

	if c.Counter.Retries < 0 {
		errs = append(errs, "counter.retries: must not be negative")
	}

	return errs
}
