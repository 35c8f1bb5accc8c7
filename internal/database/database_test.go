package database

import (
	"testing"

	"github.com/dbsmedya/gomigrator/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.DatabaseConfig
		expected string
	}{
		{
			name: "basic DSN",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "retaildb",
				TLS:      "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/retaildb?parseTime=true&tls=preferred",
		},
		{
			name: "DSN without database",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				TLS:      "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/?parseTime=true&tls=preferred",
		},
		{
			name: "DSN with TLS disabled",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "retaildb",
				TLS:      "disable",
			},
			expected: "root:secret@tcp(localhost:3306)/retaildb?parseTime=true&tls=false",
		},
		{
			name: "DSN with TLS required",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "retaildb",
				TLS:      "required",
			},
			expected: "root:secret@tcp(localhost:3306)/retaildb?parseTime=true&tls=true",
		},
		{
			name: "DSN with custom port",
			cfg: &config.DatabaseConfig{
				Host:     "remote-host",
				Port:     3307,
				User:     "admin",
				Password: "p@ssw0rd!",
				Database: "mydb",
				TLS:      "preferred",
			},
			expected: "admin:p@ssw0rd!@tcp(remote-host:3307)/mydb?parseTime=true&tls=preferred",
		},
		{
			name: "Empty password",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "",
				Database: "retaildb",
				TLS:      "preferred",
			},
			expected: "root:@tcp(localhost:3306)/retaildb?parseTime=true&tls=preferred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildDSN(tt.cfg)
			if result != tt.expected {
				t.Errorf("BuildDSN() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestBuildDSN_TLSVariants(t *testing.T) {
	tests := []struct {
		name        string
		tlsValue    string
		expectedTLS string
	}{
		{name: "TLS preferred", tlsValue: "preferred", expectedTLS: "tls=preferred"},
		{name: "TLS disable", tlsValue: "disable", expectedTLS: "tls=false"},
		{name: "TLS required", tlsValue: "required", expectedTLS: "tls=true"},
		{name: "TLS empty defaults to preferred", tlsValue: "", expectedTLS: "tls=preferred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "retaildb",
				TLS:      tt.tlsValue,
			}
			result := BuildDSN(cfg)
			if !contains(result, tt.expectedTLS) {
				t.Errorf("BuildDSN() = %q, should contain %q", result, tt.expectedTLS)
			}
		})
	}
}

func TestBuildDSN_ParseTimeAlwaysOn(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "secret",
		Database: "retaildb",
		TLS:      "preferred",
	}

	dsn := BuildDSN(cfg)

	if !contains(dsn, "parseTime=true") {
		t.Errorf("BuildDSN() should contain %q", "parseTime=true")
	}
}

func TestNewManager(t *testing.T) {
	cfg := &config.Config{
		Source: config.DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "secret",
			Database: "retaildb",
		},
		Target: config.DatabaseConfig{
			Host:     "warehouse-host",
			Port:     3306,
			User:     "root",
			Password: "secret",
			Database: "warehousedb",
		},
	}

	manager := NewManager(cfg)
	if manager == nil {
		t.Fatal("NewManager() returned nil")
	}

	if manager.config != cfg {
		t.Error("manager.config should point to provided config")
	}

	if manager.Source != nil {
		t.Error("Source should be nil before Connect()")
	}

	if manager.Target != nil {
		t.Error("Target should be nil before Connect()")
	}
}

func TestNewManager_NilConfig(t *testing.T) {
	manager := NewManager(nil)
	if manager == nil {
		t.Fatal("NewManager() should not return nil even with nil config")
	}
	if manager.config != nil {
		t.Error("manager.config should be nil when provided nil config")
	}
}

func TestManagerCloseWithoutConnect(t *testing.T) {
	cfg := &config.Config{
		Source: config.DatabaseConfig{Host: "localhost"},
		Target: config.DatabaseConfig{Host: "warehouse"},
	}

	manager := NewManager(cfg)

	// Should not panic when closing unconnected manager
	err := manager.Close()
	if err != nil {
		t.Errorf("Close() returned error for unconnected manager: %v", err)
	}
}

func TestManager_FieldsInitialization(t *testing.T) {
	cfg := &config.Config{
		Source: config.DatabaseConfig{Host: "localhost"},
		Target: config.DatabaseConfig{Host: "warehouse"},
	}

	manager := NewManager(cfg)

	// Verify all connection fields are nil initially
	if manager.Source != nil {
		t.Error("Source should be nil before Connect()")
	}
	if manager.Target != nil {
		t.Error("Target should be nil before Connect()")
	}

	// Verify config is set
	if manager.config == nil {
		t.Error("config should not be nil")
	}
	if manager.config.Source.Host != "localhost" {
		t.Error("Source host should match config")
	}
}

// Helper function
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > len(substr) && (s[:len(substr)] == substr || s[len(s)-len(substr):] == substr || containsSubstring(s, substr)))
}

func containsSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
