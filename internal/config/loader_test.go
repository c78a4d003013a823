package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setupTestHome points HOME at a temp directory and returns the config dir
// created inside it.
func setupTestHome(t *testing.T) string {
	t.Helper()

	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	configDir := filepath.Join(tmpHome, ".config", "regwatch")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	return configDir
}

// setRequiredEnv sets the env vars Validate demands so tests can focus on
// the field under test.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_REGWATCH_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_ECOSYSTEM_URI", "mongodb://localhost:27018")
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("LLM_MODEL", "test-model")
}

func TestLoad_ValidYAML(t *testing.T) {
	configDir := setupTestHome(t)
	setRequiredEnv(t)

	configPath := filepath.Join(configDir, "config.yaml")
	yamlContent := `server:
  http_port: 9191
  shutdown_timeout: 5s

match:
  fallback_country: Ghana
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Match.FallbackCountry != "Ghana" {
		t.Errorf("Match.FallbackCountry = %q, want Ghana", cfg.Match.FallbackCountry)
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	configDir := setupTestHome(t)
	setRequiredEnv(t)

	configPath := filepath.Join(configDir, "config.yaml")
	yamlContent := `server:
  http_port: 9191
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("SERVER_HTTP_PORT", "7777")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want env override 7777", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model = %q, want gpt-4o-mini", cfg.LLM.Model)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setupTestHome(t)
	setRequiredEnv(t)

	// No config file: defaults plus required env vars.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Mongo.RegwatchDatabase != "regwatch_staging" {
		t.Errorf("Mongo.RegwatchDatabase = %q, want regwatch_staging", cfg.Mongo.RegwatchDatabase)
	}
	if cfg.Mongo.EcosystemDatabase != "rtbe" {
		t.Errorf("Mongo.EcosystemDatabase = %q, want rtbe", cfg.Mongo.EcosystemDatabase)
	}
	if cfg.LLM.CompletionTimeout != 60*time.Second {
		t.Errorf("LLM.CompletionTimeout = %v, want 60s", cfg.LLM.CompletionTimeout)
	}
	if cfg.Match.FallbackCountry != "Nigeria" {
		t.Errorf("Match.FallbackCountry = %q, want Nigeria", cfg.Match.FallbackCountry)
	}
	if cfg.Webhook.Timeout != 30*time.Second {
		t.Errorf("Webhook.Timeout = %v, want 30s", cfg.Webhook.Timeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setupTestHome(t)
	// Only one of the required values set.
	t.Setenv("MONGO_REGWATCH_URI", "mongodb://localhost:27017")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() error = nil, want validation failure")
	}
	if !strings.Contains(err.Error(), "mongo.ecosystem_uri") {
		t.Errorf("error %q does not mention mongo.ecosystem_uri", err)
	}
}

func TestLoad_RejectsInsecurePermissions(t *testing.T) {
	configDir := setupTestHome(t)
	setRequiredEnv(t)

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  http_port: 9191\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() error = nil, want permission rejection")
	}
	if !strings.Contains(err.Error(), "permissions") {
		t.Errorf("error %q does not mention permissions", err)
	}
}

func TestLoad_RejectsPathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)
	setRequiredEnv(t)

	outside := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(outside, []byte("server: {}\n"), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := Load(outside)
	if err == nil {
		t.Fatal("Load() error = nil, want path rejection")
	}
}

func TestEnvTransform(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"SERVER_HTTP_PORT", "server.http_port"},
		{"MONGO_REGWATCH_URI", "mongo.regwatch_uri"},
		{"LLM_COMPLETION_TIMEOUT", "llm.completion_timeout"},
		{"WEBHOOK_REGCOMPLY_URL", "webhook.regcomply_url"},
		{"HOME", "home"},
	}
	for _, tc := range cases {
		if got := envTransform(tc.in); got != tc.want {
			t.Errorf("envTransform(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
