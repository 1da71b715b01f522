// Package config provides configuration management for the application.
//
// Values are layered: built-in defaults, then an optional YAML file with
// ${VAR} and ${VAR:-default} expansion, then environment variables. A .env
// file in the working directory is loaded first and never overrides
// variables that are already set.
//
// Provider credentials are not part of Config; they are read per call.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBodySizeLimit is the default max request body size (10MB)
	DefaultBodySizeLimit int64 = 10 * 1024 * 1024
	// MinBodySizeLimit is the smallest accepted body limit (1KB)
	MinBodySizeLimit int64 = 1024
	// MaxBodySizeLimit is the largest accepted body limit (100MB)
	MaxBodySizeLimit int64 = 100 * 1024 * 1024

	defaultConfigFile = "config.yaml"
)

// AdminSecretEnv names the shared secret guarding /admin routes. It is also
// read on every admin request, so the loaded value is only a fallback.
const AdminSecretEnv = "ADMIN_AI_SHARED_SECRET"

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LogConfig     `yaml:"logging"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
	// BodySizeLimit accepts a byte count or a K/M suffixed size ("10M")
	BodySizeLimit string `yaml:"body_size_limit"`
	// AdminSecret guards /admin routes when non-empty
	AdminSecret string `yaml:"admin_secret"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// LogConfig selects log format (auto, text, json) and level
type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// HTTPConfig holds upstream HTTP client timeouts in seconds
type HTTPConfig struct {
	Timeout               int `yaml:"timeout"`
	ResponseHeaderTimeout int `yaml:"response_header_timeout"`
}

// buildDefaultConfig returns the configuration used when nothing is set.
func buildDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
		Logging: LogConfig{
			Format: "auto",
			Level:  "info",
		},
		HTTP: HTTPConfig{
			Timeout:               600,
			ResponseHeaderTimeout: 600,
		},
	}
}

// Load reads configuration. An empty path reads ./config.yaml if it exists;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := buildDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(expandString(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := ValidateBodySizeLimit(cfg.Server.BodySizeLimit); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides copies set environment variables over cfg.
func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	setString("PORT", &cfg.Server.Port)
	setString("BODY_SIZE_LIMIT", &cfg.Server.BodySizeLimit)
	setString(AdminSecretEnv, &cfg.Server.AdminSecret)
	setString("METRICS_ENDPOINT", &cfg.Metrics.Endpoint)
	setString("LOG_FORMAT", &cfg.Logging.Format)
	setString("LOG_LEVEL", &cfg.Logging.Level)

	if err := setBool("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	if err := setInt("HTTP_TIMEOUT", &cfg.HTTP.Timeout); err != nil {
		return err
	}
	return setInt("HTTP_RESPONSE_HEADER_TIMEOUT", &cfg.HTTP.ResponseHeaderTimeout)
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString resolves ${VAR} and ${VAR:-default}. A placeholder whose
// variable is unset or empty and has no default is left as written.
func expandString(s string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		if v := os.Getenv(groups[1]); v != "" {
			return v
		}
		if groups[2] != "" {
			return groups[3]
		}
		return match
	})
}

var bodySizePattern = regexp.MustCompile(`^(\d+)([KkMm][Bb]?)?$`)

// ParseBodySizeLimit converts "1048576", "100K", "10MB" and similar to bytes.
// An empty string yields DefaultBodySizeLimit.
func ParseBodySizeLimit(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultBodySizeLimit, nil
	}
	m := bodySizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid body size limit %q: expected a number with optional K or M suffix", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid body size limit %q: %w", s, err)
	}
	switch strings.ToUpper(m[2]) {
	case "K", "KB":
		n *= 1024
	case "M", "MB":
		n *= 1024 * 1024
	}
	return n, nil
}

// ValidateBodySizeLimit checks format and bounds (1KB to 100MB).
func ValidateBodySizeLimit(s string) error {
	n, err := ParseBodySizeLimit(s)
	if err != nil {
		return err
	}
	if n < MinBodySizeLimit || n > MaxBodySizeLimit {
		return fmt.Errorf("body size limit %q out of range: must be between 1K and 100M", s)
	}
	return nil
}

// BodySizeLimitBytes returns the parsed body limit, falling back to the default.
func (c *ServerConfig) BodySizeLimitBytes() int64 {
	n, err := ParseBodySizeLimit(c.BodySizeLimit)
	if err != nil {
		return DefaultBodySizeLimit
	}
	return n
}
