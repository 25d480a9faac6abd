// Package config loads application configuration from defaults, an optional
// YAML file and SAFETY_DASHBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
// Nested keys are separated by a double underscore:
// SAFETY_DASHBOARD_SERVER__PORT sets server.port.
const EnvPrefix = "SAFETY_DASHBOARD_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Server    ServerConfig    `koanf:"server"`
	CORS      CORSConfig      `koanf:"cors"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File receives log output; "-" means stderr. The terminal itself belongs to the UI.
	File string `koanf:"file"`
}

// DashboardConfig controls the interactive dashboard.
type DashboardConfig struct {
	SeedPath        string        `koanf:"seed_path"`
	SubmitDelay     time.Duration `koanf:"submit_delay"`
	IntroDelay      time.Duration `koanf:"intro_delay"`
	DefaultSeverity string        `koanf:"default_severity"`
	DefaultSort     string        `koanf:"default_sort"`
	DateFormat      string        `koanf:"date_format"`
	MouseEnabled    bool          `koanf:"mouse_enabled"`
}

// ServerConfig controls the optional read-only HTTP API and metrics endpoint.
type ServerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RateLimit         float64       `koanf:"rate_limit"`
	RateBurst         int           `koanf:"rate_burst"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "safety-dashboard.log",
		},
		Dashboard: DashboardConfig{
			SubmitDelay:     500 * time.Millisecond,
			IntroDelay:      300 * time.Millisecond,
			DefaultSeverity: string(domain.SeverityMedium),
			DefaultSort:     string(domain.SortNewest),
			DateFormat:      "Jan 2, 2006, 03:04 PM",
			MouseEnabled:    true,
		},
		Server: ServerConfig{
			Enabled:           false,
			Host:              "127.0.0.1",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			RateLimit:         20,
			RateBurst:         40,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{},
		},
	}
}

// Load builds the configuration: defaults, then path (if not empty), then environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps SAFETY_DASHBOARD_SERVER__RATE_LIMIT to server.rate_limit.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate checks values that cannot be expressed by types alone.
func (c *Config) Validate() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	if !domain.Severity(c.Dashboard.DefaultSeverity).IsValid() {
		errs = append(errs, fmt.Errorf("dashboard.default_severity: %q is not Low, Medium or High", c.Dashboard.DefaultSeverity))
	}
	if !domain.SortOrder(c.Dashboard.DefaultSort).IsValid() {
		errs = append(errs, fmt.Errorf("dashboard.default_sort: %q is not newest or oldest", c.Dashboard.DefaultSort))
	}
	if c.Dashboard.SubmitDelay < 0 {
		errs = append(errs, errors.New("dashboard.submit_delay: must not be negative"))
	}
	if c.Dashboard.IntroDelay < 0 {
		errs = append(errs, errors.New("dashboard.intro_delay: must not be negative"))
	}
	if c.Dashboard.DateFormat == "" {
		errs = append(errs, errors.New("dashboard.date_format: must not be empty"))
	}

	if c.Server.Enabled {
		if err := validatePort(c.Server.Port); err != nil {
			errs = append(errs, fmt.Errorf("server.port: %w", err))
		}
		if err := validatePort(c.Server.MetricsPort); err != nil {
			errs = append(errs, fmt.Errorf("server.metrics_port: %w", err))
		}
		if c.Server.Port != "" && c.Server.Port == c.Server.MetricsPort {
			errs = append(errs, errors.New("server.metrics_port: must differ from server.port"))
		}
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit: must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validatePort(port string) error {
	if port == "" {
		return errors.New("required when server is enabled")
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%q is not a port number in 1-65535", port)
	}
	return nil
}
