package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "hello")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "hello"},
		{"${TEST_VAR:default}", "hello"},
		{"${UNSET_VAR:fallback}", "fallback"},
		{"${UNSET_VAR}", ""},
		{"no vars here", "no vars here"},
		{"prefix-${TEST_VAR}-suffix", "prefix-hello-suffix"},
	}

	for _, tt := range tests {
		got := expandEnvVars(tt.input)
		if got != tt.expected {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLoadFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	content := `
server:
  host: "0.0.0.0"
  port: 9999
`
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	tmpFile.Close()

	var cfg Config
	if err := LoadFile(tmpFile.Name(), &cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
}

func TestLoadFile_WithEnvVars(t *testing.T) {
	os.Setenv("TEST_API_KEY", "sk-test-123")
	defer os.Unsetenv("TEST_API_KEY")

	tmpFile, err := os.CreateTemp("", "test-config-env-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	content := `
provider:
  base_url: "${TEST_BASE_URL:https://api.openai.com/v1}"
  api_key: ${TEST_API_KEY}
`
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	tmpFile.Close()

	var cfg Config
	if err := LoadFile(tmpFile.Name(), &cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Provider.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base_url, got %s", cfg.Provider.BaseURL)
	}
	if cfg.Provider.APIKey != "sk-test-123" {
		t.Errorf("expected api_key from env, got %s", cfg.Provider.APIKey)
	}
}

func TestDefaultConfig_Budgets(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		class string
		want  int
	}{
		{"health", 60},
		{"transcribe", 10},
		{"chat", 30},
		{"default", 100},
		{"unlisted", 100},
	}
	for _, tt := range tests {
		if got := cfg.Limits.Budget(tt.class); got != tt.want {
			t.Errorf("Budget(%q) = %d, want %d", tt.class, got, tt.want)
		}
	}
	if cfg.Limits.Window != time.Minute {
		t.Errorf("expected one-minute window, got %s", cfg.Limits.Window)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoader_SecurityDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	gateway := `
server:
  port: 8001
`
	if err := os.WriteFile(filepath.Join(dir, "gateway.yaml"), []byte(gateway), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir, testLogger())
	if err := loader.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sec := loader.Security()
	if sec.MaxUploadBytes != 25*1024*1024 {
		t.Errorf("expected 25 MiB upload limit, got %d", sec.MaxUploadBytes)
	}
	if sec.MaxMessageChars != 4000 {
		t.Errorf("expected 4000 char message limit, got %d", sec.MaxMessageChars)
	}
	if len(sec.SQLPatterns) == 0 || len(sec.MarkupPatterns) == 0 {
		t.Error("expected default pattern lists")
	}
}

func TestLoader_SecurityOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gateway.yaml"), []byte("server:\n  port: 8002\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	security := `
max_message_chars: 500
sql_patterns:
  - '(?i)\bTRUNCATE\b'
`
	if err := os.WriteFile(filepath.Join(dir, "security.yaml"), []byte(security), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir, testLogger())
	if err := loader.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sec := loader.Security()
	if sec.MaxMessageChars != 500 {
		t.Errorf("expected overridden limit 500, got %d", sec.MaxMessageChars)
	}
	if len(sec.SQLPatterns) != 1 {
		t.Errorf("expected pattern list replaced, got %d patterns", len(sec.SQLPatterns))
	}
	// Untouched fields keep their defaults.
	if sec.MaxInputChars != 10000 {
		t.Errorf("expected default input ceiling, got %d", sec.MaxInputChars)
	}
}

func TestLoader_MissingGatewayConfig(t *testing.T) {
	loader := NewLoader(t.TempDir(), testLogger())
	if err := loader.Load(); err == nil {
		t.Error("expected error for missing gateway.yaml")
	}
}
