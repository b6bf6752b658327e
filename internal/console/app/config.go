package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/proxyconsole/pkg/httpx"
	"github.com/caarlos0/env/v10"
)

// Config holds the console configuration. Fields are populated from
// environment variables and may be overridden by global flags.
type Config struct {
	// Backend API root, including the /api prefix.
	APIBaseURL string `env:"CONSOLE_API_BASE_URL" envDefault:"http://localhost:8000/api"`

	// Token database. Defaults to <user config dir>/proxyconsole/console.db.
	TokenDB string `env:"CONSOLE_TOKEN_DB"`
	// TokenKey seals the stored token when set.
	TokenKey string `env:"CONSOLE_TOKEN_KEY"`

	// Outbound rate limit. RateRPS 0 disables it.
	RateRPS   int `env:"CONSOLE_RATE_RPS" envDefault:"10"`
	RateBurst int `env:"CONSOLE_RATE_BURST" envDefault:"10"`

	// MetricsFile receives a Prometheus textfile on exit when set.
	MetricsFile string `env:"CONSOLE_METRICS_FILE"`

	// Logging
	Env       string `env:"ENV" envDefault:"prod"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig parses the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.TokenDB == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to locate config dir: %w", err)
		}
		cfg.TokenDB = filepath.Join(dir, "proxyconsole", "console.db")
	}

	return cfg, cfg.Validate()
}

// BindFlags registers the global flags on fs, defaulting to the current
// values so flags override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.APIBaseURL, "api", c.APIBaseURL, "Backend API base URL")
	fs.StringVar(&c.TokenDB, "db", c.TokenDB, "Token database file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.MetricsFile, "metrics-file", c.MetricsFile, "Write Prometheus metrics to this file on exit")
}

// Validate reports configuration errors that would only surface later as
// confusing call failures.
func (c Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		errs = append(errs, fmt.Errorf("api base url %q must start with http:// or https://", c.APIBaseURL))
	}
	if c.RateRPS < 0 || c.RateBurst < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	return errors.Join(errs...)
}

// RateLimit converts the flat env settings into the limiter config.
func (c Config) RateLimit() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{
		RequestsPerWindow: c.RateRPS,
		Window:            time.Second,
		Burst:             c.RateBurst,
	}
}
