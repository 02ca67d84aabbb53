// Package config loads the settings of the finagle CLI and server.
//
// Settings are layered: defaults, then an optional YAML file, then the
// environment. A .env file, when present, is loaded into the environment first
// and never overrides variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/etnz/finagle/logger"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FINAGLE_"

// Config holds the application settings.
type Config struct {
	DatabasePath   string        `yaml:"database_path"`
	Addr           string        `yaml:"addr"`
	APIKey         string        `yaml:"api_key"` // empty disables the API key check
	LogLevel       string        `yaml:"log_level"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RateLimit      float64       `yaml:"rate_limit"` // requests per second, server wide
	RateBurst      int           `yaml:"rate_burst"`
	ReportCacheTTL time.Duration `yaml:"report_cache_ttl"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	User           string        `yaml:"user"` // default username of the CLI
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		DatabasePath:   "finagle.db",
		Addr:           ":8000",
		LogLevel:       "info",
		MaxUploadBytes: 10 << 20,
		RateLimit:      10,
		RateBurst:      30,
		ReportCacheTTL: 15 * time.Minute,
		CORSOrigins:    []string{"http://localhost:5173"},
	}
}

// Load builds the configuration. If path is empty, FINAGLE_CONFIG names the
// YAML file, if any. envFiles default to ".env"; missing env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

// applyEnv overrides the settings with the FINAGLE_* variables found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("DATABASE_PATH"); ok {
		c.DatabasePath = v
	}
	if v, ok := get("ADDR"); ok {
		c.Addr = v
	}
	if v, ok := get("API_KEY"); ok {
		c.APIKey = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("USER"); ok {
		c.User = v
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
	if v, ok := get("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_UPLOAD_BYTES %q: %w", EnvPrefix, v, err)
		}
		c.MaxUploadBytes = n
	}
	if v, ok := get("RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sRATE_LIMIT %q: %w", EnvPrefix, v, err)
		}
		c.RateLimit = f
	}
	if v, ok := get("RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sRATE_BURST %q: %w", EnvPrefix, v, err)
		}
		c.RateBurst = n
	}
	if v, ok := get("REPORT_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sREPORT_CACHE_TTL %q: %w", EnvPrefix, v, err)
		}
		c.ReportCacheTTL = d
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabasePath) == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("rate burst must be positive, got %d", c.RateBurst))
	}
	if c.ReportCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("report cache ttl must not be negative, got %v", c.ReportCacheTTL))
	}
	return errors.Join(errs...)
}
