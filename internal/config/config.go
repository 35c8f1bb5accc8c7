// Package config provides configuration structures and loading for the
// migration tool.
package config

// Config represents the complete application configuration.
type Config struct {
	Source    DatabaseConfig  `yaml:"source" mapstructure:"source"`
	Target    DatabaseConfig  `yaml:"target" mapstructure:"target"`
	Migration MigrationConfig `yaml:"migration" mapstructure:"migration"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// MigrationConfig represents the table pair and chunking settings for one run.
type MigrationConfig struct {
	SourceTable  string   `yaml:"source_table" mapstructure:"source_table"`
	TargetTable  string   `yaml:"target_table" mapstructure:"target_table"`
	ChunkSize    int      `yaml:"chunk_size" mapstructure:"chunk_size"`
	SleepSeconds float64  `yaml:"sleep_seconds" mapstructure:"sleep_seconds"`
	NullIfEmpty  []string `yaml:"null_if_empty" mapstructure:"null_if_empty"` // columns set to NULL when empty after trimming
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Target: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Migration: MigrationConfig{
			ChunkSize:    5000,
			SleepSeconds: 0,
			NullIfEmpty:  []string{"customer_lname", "customer_street"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}
