package config

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/gomigrator/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// It reports every problem at once so a bad config can be fixed in one pass.
func (c *Config) Validate() error {
	var errors ValidationErrors

	// Validate source database
	if err := c.validateDatabase("source", &c.Source); err != nil {
		errors = append(errors, err...)
	}

	// Validate target database
	if err := c.validateDatabase("target", &c.Target); err != nil {
		errors = append(errors, err...)
	}

	// Validate migration settings
	if err := c.validateMigration(); err != nil {
		errors = append(errors, err...)
	}

	// Validate logging settings
	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateMigration() ValidationErrors {
	var errors ValidationErrors

	if c.Migration.SourceTable == "" {
		errors = append(errors, ValidationError{
			Field:   "migration.source_table",
			Message: "source_table is required",
		})
	} else if !sqlutil.IsValidIdentifier(c.Migration.SourceTable) {
		errors = append(errors, ValidationError{
			Field:   "migration.source_table",
			Message: "source_table must contain only alphanumeric characters and underscores",
		})
	}

	if c.Migration.TargetTable == "" {
		errors = append(errors, ValidationError{
			Field:   "migration.target_table",
			Message: "target_table is required",
		})
	} else if !sqlutil.IsValidIdentifier(c.Migration.TargetTable) {
		errors = append(errors, ValidationError{
			Field:   "migration.target_table",
			Message: "target_table must contain only alphanumeric characters and underscores",
		})
	}

	if c.Migration.ChunkSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "migration.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Migration.SleepSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "migration.sleep_seconds",
			Message: "sleep_seconds cannot be negative",
		})
	}

	for i, col := range c.Migration.NullIfEmpty {
		if !sqlutil.IsValidIdentifier(col) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("migration.null_if_empty[%d]", i),
				Message: fmt.Sprintf("%q is not a valid column name", col),
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
