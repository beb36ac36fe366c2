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

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("expected default format 'json', got %q", cfg.Format)
	}
	if cfg.Output != os.Stderr {
		t.Errorf("expected default output to be os.Stderr")
	}
	if cfg.AddSource {
		t.Errorf("expected default AddSource to be false")
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		envVars   map[string]string
		level     string
		format    Format
		addSource bool
	}{
		{
			name:    "defaults when no env vars",
			envVars: map[string]string{},
			level:   "info",
			format:  FormatJSON,
		},
		{
			name:    "LOG_LEVEL lowercased",
			envVars: map[string]string{"LOG_LEVEL": "WARN"},
			level:   "warn",
			format:  FormatJSON,
		},
		{
			name: "connector log level wins over LOG_LEVEL",
			envVars: map[string]string{
				"LOG_LEVEL":                 "error",
				"HUMIO_CONNECTOR_LOG_LEVEL": "trace",
			},
			level:  "trace",
			format: FormatJSON,
		},
		{
			name: "debug flag enables source",
			envVars: map[string]string{
				"HUMIO_CONNECTOR_DEBUG":     "1",
				"HUMIO_CONNECTOR_LOG_LEVEL": "error",
			},
			level:     "debug",
			format:    FormatJSON,
			addSource: true,
		},
		{
			name:    "text format",
			envVars: map[string]string{"LOG_FORMAT": "TEXT"},
			level:   "info",
			format:  FormatText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"HUMIO_CONNECTOR_DEBUG", "HUMIO_CONNECTOR_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := FromEnv()
			if cfg.Level != tt.level {
				t.Errorf("expected level %q, got %q", tt.level, cfg.Level)
			}
			if cfg.Format != tt.format {
				t.Errorf("expected format %q, got %q", tt.format, cfg.Format)
			}
			if cfg.AddSource != tt.addSource {
				t.Errorf("expected AddSource %v, got %v", tt.addSource, cfg.AddSource)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	logger.Info("test message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	if entry["msg"] != "test message" {
		t.Errorf("expected msg 'test message', got %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key 'value', got %v", entry["key"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})

	logger.Info("test message", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "msg=\"test message\"") {
		t.Errorf("expected text output to contain message, got %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected text output to contain key=value, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}

	for input, expected := range tests {
		if got := parseLevel(input); got != expected {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestTrace_FilteredAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Output: &buf})

	Trace(logger, "hidden body")
	if buf.Len() != 0 {
		t.Errorf("expected trace to be filtered, got %q", buf.String())
	}

	logger = New(&Config{Level: "trace", Output: &buf})
	Trace(logger, "visible body", String("body", "{}"))
	if !strings.Contains(buf.String(), "visible body") {
		t.Errorf("expected trace output, got %q", buf.String())
	}
}

func TestWithCommand(t *testing.T) {
	var buf bytes.Buffer
	logger := WithCommand(New(&Config{Output: &buf}), "humio-query", "inv-1")

	logger.Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	if entry[CommandKey] != "humio-query" {
		t.Errorf("expected command field, got %v", entry[CommandKey])
	}
	if entry[InvocationIDKey] != "inv-1" {
		t.Errorf("expected invocation id field, got %v", entry[InvocationIDKey])
	}
}

func TestLogInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Output: &buf})
	inv := &Invocation{Command: "humio-poll", InvocationID: "abc", Metadata: map[string]any{"repository": "sandbox"}}

	LogInvocationStart(logger, inv)
	LogInvocationResult(logger, inv, errors.New("boom"), 15*time.Millisecond)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), buf.String())
	}

	var failed map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &failed); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	if failed["level"] != "ERROR" {
		t.Errorf("expected ERROR level for failure, got %v", failed["level"])
	}
	if failed["error"] != "boom" {
		t.Errorf("expected error field 'boom', got %v", failed["error"])
	}
	if failed["repository"] != "sandbox" {
		t.Errorf("expected metadata to be logged, got %v", failed["repository"])
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sk-1234567890abcdef", "...cdef"},
		{"abc", "[REDACTED]"},
		{"abcd", "[REDACTED]"},
		{"", "[REDACTED]"},
		{"abcde", "...bcde"},
	}

	for _, tt := range tests {
		if got := SanitizeAPIKey(tt.input); got != tt.expected {
			t.Errorf("SanitizeAPIKey(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNilConfig(t *testing.T) {
	if New(nil) == nil {
		t.Fatal("expected logger for nil config")
	}
}
