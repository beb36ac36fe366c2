// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads connector settings from YAML, .env files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	connerrors "github.com/tombee/humio-connector/pkg/errors"
)

// Config represents the complete connector configuration.
type Config struct {
	Humio         HumioConfig         `yaml:"humio"`
	Incidents     IncidentsConfig     `yaml:"incidents"`
	State         StateConfig         `yaml:"state"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// HumioConfig holds the cluster connection settings.
type HumioConfig struct {
	// URL is the cluster root, e.g. https://cloud.humio.com.
	URL string `yaml:"url" validate:"required,url"`

	// APIKey is a literal key, ${ENV_VAR}, or keychain:<name>.
	APIKey string `yaml:"api_key" validate:"required"`

	// Insecure disables TLS certificate verification.
	Insecure bool `yaml:"insecure"`

	// Proxy routes requests through HTTP_PROXY / HTTPS_PROXY.
	Proxy bool `yaml:"proxy"`

	// Proxies sets explicit per-scheme proxies, overriding Proxy.
	Proxies map[string]string `yaml:"proxies,omitempty" validate:"omitempty,dive,keys,oneof=http https,endkeys,url"`

	// RateLimit caps requests per second; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit,omitempty" validate:"gte=0"`

	// Burst is the rate limiter bucket size.
	Burst int `yaml:"burst,omitempty" validate:"gte=0"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
}

// IncidentsConfig holds the fetch-incidents query.
type IncidentsConfig struct {
	QueryParameter             string        `yaml:"query_parameter"`
	QueryRepository            string        `yaml:"query_repository"`
	QueryStartTime             string        `yaml:"query_start_time"`
	QueryTimeZoneOffsetMinutes int           `yaml:"query_timezone_offset_minutes" validate:"gte=-720,lte=840"`
	Interval                   time.Duration `yaml:"interval,omitempty" validate:"gte=0"`
}

// StateConfig locates the last-run database.
type StateConfig struct {
	Path        string `yaml:"path,omitempty"`
	Integration string `yaml:"integration,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level     string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format    string `yaml:"format" validate:"omitempty,oneof=json text"`
	AddSource bool   `yaml:"add_source"`
}

// ObservabilityConfig configures metrics and tracing.
type ObservabilityConfig struct {
	// MetricsAddr serves /metrics and /healthz when set, e.g. ":9090".
	MetricsAddr string        `yaml:"metrics_addr,omitempty" validate:"omitempty,hostname_port"`
	Tracing     TracingConfig `yaml:"tracing"`
}

// TracingConfig selects a span exporter.
type TracingConfig struct {
	Exporter    string  `yaml:"exporter" validate:"omitempty,oneof=none stdout otlp-http otlp-grpc"`
	Endpoint    string  `yaml:"endpoint,omitempty"`
	Insecure    bool    `yaml:"insecure,omitempty"`
	SampleRatio float64 `yaml:"sample_ratio,omitempty" validate:"gte=0,lte=1"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Humio: HumioConfig{
			Timeout: 60 * time.Second,
		},
		Incidents: IncidentsConfig{
			QueryStartTime: "24h",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Observability: ObservabilityConfig{
			Tracing: TracingConfig{
				Exporter:    "none",
				SampleRatio: 1,
			},
		},
	}
}

// Load loads configuration from configPath (or the default XDG path when
// empty), then .env files, then environment variables, and validates the
// result. A missing default config file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		if p, err := ConfigPath(); err == nil {
			configPath = p
		}
	}

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, &connerrors.ConfigError{
					Key:    "config_file",
					Reason: fmt.Sprintf("failed to load from %s", configPath),
					Cause:  err,
				}
			}
		}
	}

	cfg.applyDefaults()

	if err := LoadDotEnv(filepath.Dir(configPath)); err != nil {
		return nil, &connerrors.ConfigError{
			Key:    "dotenv",
			Reason: "failed to load .env",
			Cause:  err,
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &connerrors.ConfigError{
			Key:    firstInvalidKey(err),
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// LoadDotEnv loads .env from the working directory and from dirs, skipping
// files that don't exist. Variables already set in the environment win.
func LoadDotEnv(dirs ...string) error {
	candidates := []string{".env"}
	for _, d := range dirs {
		if d != "" && d != "." {
			candidates = append(candidates, filepath.Join(d, ".env"))
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Humio.Timeout == 0 {
		c.Humio.Timeout = defaults.Humio.Timeout
	}
	if c.Incidents.QueryStartTime == "" {
		c.Incidents.QueryStartTime = defaults.Incidents.QueryStartTime
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Observability.Tracing.Exporter == "" {
		c.Observability.Tracing.Exporter = defaults.Observability.Tracing.Exporter
	}
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv applies environment overrides. Names follow the integration
// parameters: url, API-key, insecure, proxy, queryParameter, queryRepository,
// queryStartTime, queryTimeZoneOffsetMinutes.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("HUMIO_URL"); val != "" {
		c.Humio.URL = val
	}
	if val := os.Getenv("HUMIO_API_KEY"); val != "" {
		c.Humio.APIKey = val
	}
	if val := os.Getenv("HUMIO_INSECURE"); val != "" {
		c.Humio.Insecure = parseFlag(val)
	}
	if val := os.Getenv("HUMIO_PROXY"); val != "" {
		c.Humio.Proxy = parseFlag(val)
	}
	if val := os.Getenv("HUMIO_RATE_LIMIT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Humio.RateLimit = f
		}
	}

	if val := os.Getenv("HUMIO_QUERY_PARAMETER"); val != "" {
		c.Incidents.QueryParameter = val
	}
	if val := os.Getenv("HUMIO_QUERY_REPOSITORY"); val != "" {
		c.Incidents.QueryRepository = val
	}
	if val := os.Getenv("HUMIO_QUERY_START_TIME"); val != "" {
		c.Incidents.QueryStartTime = val
	}
	if val := os.Getenv("HUMIO_QUERY_TIMEZONE_OFFSET_MINUTES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Incidents.QueryTimeZoneOffsetMinutes = n
		}
	}

	if val := os.Getenv("HUMIO_STATE_PATH"); val != "" {
		c.State.Path = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = parseFlag(val)
	}

	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" && c.Observability.Tracing.Endpoint == "" {
		c.Observability.Tracing.Endpoint = val
	}
}

func parseFlag(val string) bool {
	switch strings.ToLower(val) {
	case "1", "true", "yes", "y", "t":
		return true
	}
	return false
}

// EffectiveProxies returns the per-scheme proxy map for the HTTP client.
// Explicit Proxies win; otherwise Proxy pulls HTTP_PROXY and HTTPS_PROXY
// from the environment. Nil means no proxy.
func (h HumioConfig) EffectiveProxies() map[string]string {
	if len(h.Proxies) > 0 {
		return h.Proxies
	}
	if !h.Proxy {
		return nil
	}

	out := map[string]string{}
	for scheme, names := range map[string][]string{
		"http":  {"HTTP_PROXY", "http_proxy"},
		"https": {"HTTPS_PROXY", "https_proxy"},
	} {
		for _, name := range names {
			if v := os.Getenv(name); v != "" {
				out[scheme] = v
				break
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ValidateIncidents checks the settings fetch-incidents needs beyond Validate.
func (c *Config) ValidateIncidents() error {
	var errs connerrors.ValidationErrors
	if c.Incidents.QueryParameter == "" {
		errs = append(errs, &connerrors.ValidationError{
			Field:   "incidents.query_parameter",
			Message: "query_parameter is required",
			Hint:    "Set HUMIO_QUERY_PARAMETER or incidents.query_parameter",
		})
	}
	if c.Incidents.QueryRepository == "" {
		errs = append(errs, &connerrors.ValidationError{
			Field:   "incidents.query_repository",
			Message: "query_repository is required",
			Hint:    "Set HUMIO_QUERY_REPOSITORY or incidents.query_repository",
		})
	}
	if len(errs) > 0 {
		return &connerrors.ConfigError{Key: errs[0].Field, Reason: "incident settings are incomplete", Cause: errs}
	}
	return nil
}
