package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// envBindings maps config keys to the flat environment variable names the
// tool has always been driven by. Environment values override file values.
var envBindings = map[string]string{
	"source.host":             "SOURCE_DB_HOST",
	"source.port":             "SOURCE_DB_PORT",
	"source.user":             "SOURCE_DB_USER",
	"source.password":         "SOURCE_DB_PASSWORD",
	"source.database":         "SOURCE_DB_NAME",
	"target.host":             "TARGET_DB_HOST",
	"target.port":             "TARGET_DB_PORT",
	"target.user":             "TARGET_DB_USER",
	"target.password":         "TARGET_DB_PASSWORD",
	"target.database":         "TARGET_DB_NAME",
	"migration.source_table":  "SOURCE_TABLE_NAME",
	"migration.target_table":  "TARGET_TABLE_NAME",
	"migration.chunk_size":    "CHUNK_SIZE",
	"migration.null_if_empty": "NULL_IF_EMPTY",
}

// Load reads configuration from the optional YAML file at configPath plus the
// environment. An empty path means environment variables and defaults alone.
// Environment values take precedence over file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	bindEnvironment(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Perform environment variable substitution
	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

// bindEnvironment registers the flat environment variable names with viper so
// they flow through Unmarshal like any other key.
func bindEnvironment(v *viper.Viper) {
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	// Substitute in source config
	cfg.Source.Host = expandEnvVar(cfg.Source.Host)
	cfg.Source.User = expandEnvVar(cfg.Source.User)
	cfg.Source.Password = expandEnvVar(cfg.Source.Password)
	cfg.Source.Database = expandEnvVar(cfg.Source.Database)

	// Substitute in target config
	cfg.Target.Host = expandEnvVar(cfg.Target.Host)
	cfg.Target.User = expandEnvVar(cfg.Target.User)
	cfg.Target.Password = expandEnvVar(cfg.Target.Password)
	cfg.Target.Database = expandEnvVar(cfg.Target.Database)

	// Substitute in table names and logging output
	cfg.Migration.SourceTable = expandEnvVar(cfg.Migration.SourceTable)
	cfg.Migration.TargetTable = expandEnvVar(cfg.Migration.TargetTable)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, chunkSize int, sleepSeconds float64) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if chunkSize > 0 {
		c.Migration.ChunkSize = chunkSize
	}
	if sleepSeconds > 0 {
		c.Migration.SleepSeconds = sleepSeconds
	}
}
