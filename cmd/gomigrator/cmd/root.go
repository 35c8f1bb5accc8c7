package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomigrator/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile      string
	envFile      string
	logLevel     string
	logFormat    string
	chunkSize    int
	sleepSeconds float64
)

var rootCmd = &cobra.Command{
	Use:   "gomigrator",
	Short: "MySQL Chunked Table Migrator",
	Long: `A CLI tool for moving one MySQL table into another in fixed-size
chunks, cleaning each row on the way through.

Features:
  - Paginated extraction (LIMIT/OFFSET) with bounded memory
  - Per-value cleanup rules (whitespace trim, empty-to-NULL)
  - Multi-row INSERT loading with per-chunk progress logging
  - Advisory run lock against concurrent duplicate migrations
  - Dry-run execution plan and post-run row count verification`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config sources
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "migrator.yaml",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Path to env file with connection settings")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Processing overrides
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 0,
		"Override chunk size (rows per fetch)")
	rootCmd.PersistentFlags().Float64Var(&sleepSeconds, "sleep", 0,
		"Override sleep seconds between chunks")
}

// GetConfigFile returns the config file path to read, or "" for an
// environment-only run. The default migrator.yaml is skipped when absent; a
// file named explicitly via --config must exist.
func GetConfigFile() string {
	if rootCmd.PersistentFlags().Changed("config") {
		return cfgFile
	}
	if _, err := os.Stat(cfgFile); err != nil {
		return ""
	}
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel     string
	LogFormat    string
	ChunkSize    int
	SleepSeconds float64
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		ChunkSize:    chunkSize,
		SleepSeconds: sleepSeconds,
	}
}

// loadEnvFile loads connection settings from the env file before the config
// layer reads the environment. The default file is optional; a file named
// explicitly via --env-file must exist.
func loadEnvFile() error {
	if err := godotenv.Load(envFile); err != nil {
		if rootCmd.PersistentFlags().Changed("env-file") {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}
	return nil
}

// loadConfig runs the env file, config file, override and validation sequence
// shared by the commands.
func loadConfig() (*config.Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.ChunkSize, overrides.SleepSeconds)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
