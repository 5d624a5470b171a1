// Package config loads the kinocat TOML configuration, substituting
// environment variables and applying defaults.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Scraper  ScraperConfig  `toml:"scraper"`
	Counter  CounterConfig  `toml:"counter"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl"`
	// AdminUser is promoted to admin at startup when it exists.
	AdminUser string `toml:"admin_user"`
}

type ScraperConfig struct {
	BaseURL         string   `toml:"base_url"`
	ListingPath     string   `toml:"listing_path"`
	PoolSize        int      `toml:"pool_size"`
	Timeout         Duration `toml:"timeout"`
	RateLimit       float64  `toml:"rate_limit"`
	UserAgent       string   `toml:"user_agent"`
	BreakerFailures int      `toml:"breaker_failures"`
}

type CounterConfig struct {
	Path       string   `toml:"path"`
	Retries    int      `toml:"retries"`
	RetryDelay Duration `toml:"retry_delay"`
}

// Duration decodes TOML strings such as "15s" or "10m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load reads, substitutes, defaults and validates the config at path.
// Any unresolved variable or validation problem is reported as a
// *ConfigError.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}
	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return cfg, nil
}

// LoadWithoutValidation parses path and applies defaults only.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8484
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/kinocat.db"
	}
	if c.Auth.TokenTTL.Duration == 0 {
		c.Auth.TokenTTL.Duration = 10 * time.Minute
	}
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = "https://kino.mail.ru"
	}
	if c.Scraper.ListingPath == "" {
		c.Scraper.ListingPath = "/cinema/top/"
	}
	if c.Scraper.PoolSize == 0 {
		c.Scraper.PoolSize = 5
	}
	if c.Scraper.Timeout.Duration == 0 {
		c.Scraper.Timeout.Duration = 15 * time.Second
	}
	if c.Scraper.BreakerFailures == 0 {
		c.Scraper.BreakerFailures = 5
	}
	if c.Counter.Path == "" {
		c.Counter.Path = "./data/counter"
	}
	if c.Counter.Retries == 0 {
		c.Counter.Retries = 5
	}
	if c.Counter.RetryDelay.Duration == 0 {
		c.Counter.RetryDelay.Duration = 500 * time.Millisecond
	}
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars expands environment references in content. Unset
// variables without a default are left in place and listed in missing;
// ${VAR:?msg} reports "VAR: msg" instead.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case "-":
			if !ok || value == "" {
				return arg
			}
			return value
		case "?":
			if !ok || value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		}
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
