package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"evenex/internal/domain/calendar"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EVENEX_"

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// CalendarConfig controls artifact rendering.
type CalendarConfig struct {
	// TimestampMode is "literal" (wall-clock fields plus Z) or "utc".
	TimestampMode string `yaml:"timestamp_mode"`
	// Timezone is the IANA zone event times are rendered in (e.g. "Pacific/Auckland").
	Timezone string `yaml:"timezone"`
}

// EmailConfig holds the transactional mail settings.
type EmailConfig struct {
	ResendKey string `yaml:"resend_key"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Interval time.Duration `yaml:"interval"`
}

// Config is the top-level server configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	DBPath   string `yaml:"db_path"`

	// PublicBaseURL, when set, replaces the request origin in event URLs.
	PublicBaseURL string `yaml:"public_base_url"`
	// TrustProxy honours X-Forwarded-Proto from a reverse proxy in front of the server.
	TrustProxy bool `yaml:"trust_proxy"`

	Calendar  CalendarConfig  `yaml:"calendar"`
	Email     EmailConfig     `yaml:"email"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// CSRFKey is 64 hex characters (32 bytes). Required in production;
	// development generates a random key per start.
	CSRFKey string `yaml:"csrf_key"`

	SlowQueryMs   int  `yaml:"slow_query_ms"`
	SlowRequestMs int  `yaml:"slow_request_ms"`
	DebugPerf     bool `yaml:"debug_perf"`
	SeedSamples   bool `yaml:"seed_samples"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{SeedSamples: true}
	c.Normalize()
	return c
}

// Normalize fills in missing or zero values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DBPath == "" {
		c.DBPath = "evenex.db"
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	if c.Calendar.TimestampMode == "" {
		c.Calendar.TimestampMode = calendar.TimestampLiteral
	}
	if c.Calendar.Timezone == "" {
		c.Calendar.Timezone = "UTC"
	}
	if c.Email.From == "" {
		c.Email.From = "EveNex <events@evenex.com>"
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 60
	}
	if c.RateLimit.Interval <= 0 {
		c.RateLimit.Interval = time.Minute
	}
	if c.SlowQueryMs <= 0 {
		c.SlowQueryMs = 50
	}
	if c.SlowRequestMs <= 0 {
		c.SlowRequestMs = 200
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if !calendar.ValidTimestampMode(c.Calendar.TimestampMode) {
		return fmt.Errorf("calendar.timestamp_mode must be %q or %q, got %q",
			calendar.TimestampLiteral, calendar.TimestampUTC, c.Calendar.TimestampMode)
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("calendar.timezone: %w", err)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.CSRFKey != "" {
		if _, err := c.CSRFKeyBytes(); err != nil {
			return err
		}
	} else if c.IsProduction() {
		return errors.New("csrf_key is required in production")
	}
	if c.PublicBaseURL != "" && !strings.HasPrefix(c.PublicBaseURL, "http://") && !strings.HasPrefix(c.PublicBaseURL, "https://") {
		return fmt.Errorf("public_base_url must start with http:// or https://, got %q", c.PublicBaseURL)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location loads the display zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Calendar.Timezone)
}

// CSRFKeyBytes decodes CSRFKey. An empty key yields a fresh random one.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		return key, nil
	}
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("csrf_key must be 64 hex characters (32 bytes)")
	}
	return key, nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// Load reads the YAML file at path (a missing file yields defaults),
// applies EVENEX_* environment overrides, normalizes and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{SeedSamples: true}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config_file_missing", "path", path)
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays EVENEX_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDR":            &c.Listen,
		"ENV":             &c.Env,
		"LOG_LEVEL":       &c.LogLevel,
		"DB_PATH":         &c.DBPath,
		"PUBLIC_BASE_URL": &c.PublicBaseURL,
		"TIMESTAMP_MODE":  &c.Calendar.TimestampMode,
		"TIMEZONE":        &c.Calendar.Timezone,
		"RESEND_KEY":      &c.Email.ResendKey,
		"RESEND_FROM":     &c.Email.From,
		"REPLY_TO":        &c.Email.ReplyTo,
		"CSRF_KEY":        &c.CSRFKey,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SLOW_QUERY_MS":   &c.SlowQueryMs,
		"SLOW_REQUEST_MS": &c.SlowRequestMs,
		"RATE_LIMIT":      &c.RateLimit.Requests,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"DEBUG_PERF":   &c.DebugPerf,
		"SEED_SAMPLES": &c.SeedSamples,
		"TRUST_PROXY":  &c.TrustProxy,
	}
	for name, dst := range bools {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}
	return nil
}
