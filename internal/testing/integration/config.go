package integration

import (
	"os"
	"testing"
)

// TestConfig holds live-cluster settings loaded from the environment.
type TestConfig struct {
	// URL is the Humio cluster root.
	URL string

	// APIKey authenticates against URL.
	APIKey string

	// Repository is queried by live tests (default "sandbox").
	Repository string
}

// LoadConfig loads test configuration from environment variables.
// Does not fail if values are missing; live tests should call SkipWithoutHumio.
func LoadConfig() *TestConfig {
	cfg := &TestConfig{
		URL:        os.Getenv("HUMIO_TEST_URL"),
		APIKey:     os.Getenv("HUMIO_TEST_API_KEY"),
		Repository: os.Getenv("HUMIO_TEST_REPOSITORY"),
	}
	if cfg.Repository == "" {
		cfg.Repository = "sandbox"
	}
	return cfg
}

// SkipWithoutEnv skips the test if the specified environment variable is not set.
func SkipWithoutEnv(t *testing.T, envVar string) {
	t.Helper()

	if os.Getenv(envVar) == "" {
		t.Skipf("Skipping test: %s not set", envVar)
	}
}

// SkipWithoutHumio skips unless a live cluster is configured and returns
// its settings.
func SkipWithoutHumio(t *testing.T) *TestConfig {
	t.Helper()

	SkipWithoutEnv(t, "HUMIO_TEST_URL")
	SkipWithoutEnv(t, "HUMIO_TEST_API_KEY")
	return LoadConfig()
}

// connectorEnv lists every variable the connector reads.
var connectorEnv = []string{
	"HUMIO_URL", "HUMIO_API_KEY", "HUMIO_INSECURE", "HUMIO_PROXY", "HUMIO_RATE_LIMIT",
	"HUMIO_QUERY_PARAMETER", "HUMIO_QUERY_REPOSITORY", "HUMIO_QUERY_START_TIME",
	"HUMIO_QUERY_TIMEZONE_OFFSET_MINUTES", "HUMIO_STATE_PATH",
	"HUMIO_CONNECTOR_DEBUG", "HUMIO_CONNECTOR_LOG_LEVEL",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE", "OTEL_EXPORTER_OTLP_ENDPOINT",
	"HTTP_PROXY", "http_proxy", "HTTPS_PROXY", "https_proxy",
}

// IsolateEnv clears connector variables, points the config directory at a
// temp dir and changes into another temp dir so no .env file is picked up.
// Values are restored when the test ends.
func IsolateEnv(t *testing.T) {
	t.Helper()

	for _, key := range connectorEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

// SetEnv sets each pair for the duration of the test.
func SetEnv(t *testing.T, kv map[string]string) {
	t.Helper()

	for k, v := range kv {
		t.Setenv(k, v)
	}
}
