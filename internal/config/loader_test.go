package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
source:
  host: localhost
  port: 3306
  user: testuser
  password: testpass
  database: testdb
  tls: disable
  max_connections: 5
  max_idle_connections: 2

target:
  host: warehouse-host
  port: 3307
  user: loaduser
  password: loadpass
  database: warehousedb

migration:
  source_table: customers
  target_table: customers_clean
  chunk_size: 500
  sleep_seconds: 0.5
  null_if_empty:
    - customer_lname
    - customer_street
    - customer_zipcode

logging:
  level: debug
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify source config
	if cfg.Source.Host != "localhost" {
		t.Errorf("expected source host 'localhost', got %s", cfg.Source.Host)
	}
	if cfg.Source.Port != 3306 {
		t.Errorf("expected source port 3306, got %d", cfg.Source.Port)
	}
	if cfg.Source.User != "testuser" {
		t.Errorf("expected source user 'testuser', got %s", cfg.Source.User)
	}
	if cfg.Source.MaxConnections != 5 {
		t.Errorf("expected source max_connections 5, got %d", cfg.Source.MaxConnections)
	}

	// Verify target config
	if cfg.Target.Host != "warehouse-host" {
		t.Errorf("expected target host 'warehouse-host', got %s", cfg.Target.Host)
	}
	if cfg.Target.Port != 3307 {
		t.Errorf("expected target port 3307, got %d", cfg.Target.Port)
	}

	// Verify migration config
	if cfg.Migration.SourceTable != "customers" {
		t.Errorf("expected source_table 'customers', got %s", cfg.Migration.SourceTable)
	}
	if cfg.Migration.TargetTable != "customers_clean" {
		t.Errorf("expected target_table 'customers_clean', got %s", cfg.Migration.TargetTable)
	}
	if cfg.Migration.ChunkSize != 500 {
		t.Errorf("expected chunk_size 500, got %d", cfg.Migration.ChunkSize)
	}
	if len(cfg.Migration.NullIfEmpty) != 3 {
		t.Errorf("expected 3 null_if_empty columns, got %d", len(cfg.Migration.NullIfEmpty))
	}

	// Verify logging config
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	// An empty path loads defaults plus environment only.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config without file: %v", err)
	}

	if cfg.Migration.ChunkSize != 5000 {
		t.Errorf("expected default chunk_size 5000, got %d", cfg.Migration.ChunkSize)
	}
	if cfg.Source.Port != 3306 {
		t.Errorf("expected default source port 3306, got %d", cfg.Source.Port)
	}
}

func TestLoadFromFlatEnvironment(t *testing.T) {
	env := map[string]string{
		"SOURCE_DB_HOST":     "src-host",
		"SOURCE_DB_PORT":     "3310",
		"SOURCE_DB_USER":     "src-user",
		"SOURCE_DB_PASSWORD": "src-pass",
		"SOURCE_DB_NAME":     "srcdb",
		"TARGET_DB_HOST":     "tgt-host",
		"TARGET_DB_USER":     "tgt-user",
		"TARGET_DB_NAME":     "tgtdb",
		"SOURCE_TABLE_NAME":  "customers",
		"TARGET_TABLE_NAME":  "customers_clean",
		"CHUNK_SIZE":         "7500",
	}
	for k, v := range env {
		os.Setenv(k, v)
	}
	defer func() {
		for k := range env {
			os.Unsetenv(k)
		}
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config from environment: %v", err)
	}

	if cfg.Source.Host != "src-host" {
		t.Errorf("expected source host 'src-host', got %s", cfg.Source.Host)
	}
	if cfg.Source.Port != 3310 {
		t.Errorf("expected source port 3310, got %d", cfg.Source.Port)
	}
	if cfg.Source.Database != "srcdb" {
		t.Errorf("expected source database 'srcdb', got %s", cfg.Source.Database)
	}
	if cfg.Target.Host != "tgt-host" {
		t.Errorf("expected target host 'tgt-host', got %s", cfg.Target.Host)
	}
	if cfg.Target.Port != 3306 {
		t.Errorf("expected target port to fall back to 3306, got %d", cfg.Target.Port)
	}
	if cfg.Migration.SourceTable != "customers" {
		t.Errorf("expected source_table 'customers', got %s", cfg.Migration.SourceTable)
	}
	if cfg.Migration.TargetTable != "customers_clean" {
		t.Errorf("expected target_table 'customers_clean', got %s", cfg.Migration.TargetTable)
	}
	if cfg.Migration.ChunkSize != 7500 {
		t.Errorf("expected chunk_size 7500, got %d", cfg.Migration.ChunkSize)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	os.Setenv("CHUNK_SIZE", "250")
	defer os.Unsetenv("CHUNK_SIZE")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-precedence.yaml")

	configContent := `
migration:
  source_table: customers
  target_table: customers_clean
  chunk_size: 9000
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Migration.ChunkSize != 250 {
		t.Errorf("expected environment chunk_size 250 to win over file, got %d", cfg.Migration.ChunkSize)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	// Set environment variables for test
	os.Setenv("TEST_DB_HOST", "env-host")
	os.Setenv("TEST_DB_USER", "env-user")
	os.Setenv("TEST_DB_PASS", "env-pass")
	defer func() {
		os.Unsetenv("TEST_DB_HOST")
		os.Unsetenv("TEST_DB_USER")
		os.Unsetenv("TEST_DB_PASS")
	}()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-env.yaml")

	configContent := `
source:
  host: ${TEST_DB_HOST}
  port: 3306
  user: ${TEST_DB_USER}
  password: ${TEST_DB_PASS}
  database: testdb
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Source.Host != "env-host" {
		t.Errorf("expected source host 'env-host', got %s", cfg.Source.Host)
	}
	if cfg.Source.User != "env-user" {
		t.Errorf("expected source user 'env-user', got %s", cfg.Source.User)
	}
	if cfg.Source.Password != "env-pass" {
		t.Errorf("expected source password 'env-pass', got %s", cfg.Source.Password)
	}
}

func TestExpandEnvVar(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "test-value"},
		{"$TEST_VAR", "test-value"},
		{"prefix-${TEST_VAR}-suffix", "prefix-test-value-suffix"},
		{"${NONEXISTENT}", "${NONEXISTENT}"}, // Unset vars remain unchanged
		{"no-vars-here", "no-vars-here"},
	}

	for _, tt := range tests {
		result := expandEnvVar(tt.input)
		if result != tt.expected {
			t.Errorf("expandEnvVar(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestApplyOverrides(t *testing.T) {
	// Start with a default config
	cfg := DefaultConfig()

	// Verify defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Migration.ChunkSize != 5000 {
		t.Errorf("expected default chunk size 5000, got %d", cfg.Migration.ChunkSize)
	}

	// Apply some overrides
	cfg.ApplyOverrides("debug", "text", 500, 2.5)

	// Verify overrides were applied
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug' after override, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected log format 'text' after override, got %s", cfg.Logging.Format)
	}
	if cfg.Migration.ChunkSize != 500 {
		t.Errorf("expected chunk size 500 after override, got %d", cfg.Migration.ChunkSize)
	}
	if cfg.Migration.SleepSeconds != 2.5 {
		t.Errorf("expected sleep seconds 2.5 after override, got %f", cfg.Migration.SleepSeconds)
	}
}

func TestApplyOverridesZeroValues(t *testing.T) {
	// Start with a custom config
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
		Migration: MigrationConfig{
			ChunkSize:    2000,
			SleepSeconds: 5.0,
		},
	}

	// Apply zero values (should NOT override)
	cfg.ApplyOverrides("", "", 0, 0)

	// Verify original values are preserved
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn' to be preserved, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json' to be preserved, got %s", cfg.Logging.Format)
	}
	if cfg.Migration.ChunkSize != 2000 {
		t.Errorf("expected chunk size 2000 to be preserved, got %d", cfg.Migration.ChunkSize)
	}
	if cfg.Migration.SleepSeconds != 5.0 {
		t.Errorf("expected sleep seconds 5.0 to be preserved, got %f", cfg.Migration.SleepSeconds)
	}
}

func TestApplyOverridesPartial(t *testing.T) {
	// Start with a default config
	cfg := DefaultConfig()

	// Apply only some overrides
	cfg.ApplyOverrides("error", "", 0, 1.5)

	// Verify only specified overrides were applied
	if cfg.Logging.Level != "error" {
		t.Errorf("expected log level 'error' after override, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" { // Should keep default
		t.Errorf("expected log format to remain 'json', got %s", cfg.Logging.Format)
	}
	if cfg.Migration.ChunkSize != 5000 { // Should keep default (0 doesn't override)
		t.Errorf("expected chunk size to remain 5000, got %d", cfg.Migration.ChunkSize)
	}
	if cfg.Migration.SleepSeconds != 1.5 {
		t.Errorf("expected sleep seconds 1.5 after override, got %f", cfg.Migration.SleepSeconds)
	}
}
