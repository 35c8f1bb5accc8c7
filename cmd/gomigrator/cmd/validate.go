package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomigrator/internal/config"
	"github.com/dbsmedya/gomigrator/internal/database"
	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/migrator"
	"github.com/dbsmedya/gomigrator/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the configuration and probes the databases to make
sure a migration could run.

Checks performed:
  - Configuration completeness (tables, chunk size, credentials)
  - Database connectivity (source and target)
  - Table readability probes (SELECT ... LIMIT 0)
  - Column comparison between source and target

Example:
  gomigrator validate --config migrator.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if err := loadEnvFile(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.ChunkSize, overrides.SleepSeconds)

	report.Section(out, "Configuration Validation")
	configFile := GetConfigFile()
	if configFile == "" {
		configFile = "(environment only)"
	}
	report.RenderKeyValues(out, []report.KeyValue{
		{Key: "Config file", Value: configFile},
		{Key: "Source", Value: fmt.Sprintf("%s:%d/%s", cfg.Source.Host, cfg.Source.Port, cfg.Source.Database)},
		{Key: "Target", Value: fmt.Sprintf("%s:%d/%s", cfg.Target.Host, cfg.Target.Port, cfg.Target.Database)},
		{Key: "Migration", Value: fmt.Sprintf("%s -> %s", cfg.Migration.SourceTable, cfg.Migration.TargetTable)},
	})

	if err := cfg.Validate(); err != nil {
		report.Failuref(out, "Configuration invalid: %v", err)
		return fmt.Errorf("configuration validation failed")
	}
	report.Successf(out, "Configuration valid")

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Connectivity
	report.Section(out, "Connectivity")
	dbManager := database.NewManager(cfg)
	ctx := context.Background()

	if err := dbManager.Connect(ctx); err != nil {
		report.Failuref(out, "Connection failed: %v", err)
		return fmt.Errorf("failed to connect to databases: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		report.Failuref(out, "Ping failed: %v", err)
		return fmt.Errorf("database connection failed: %w", err)
	}
	report.Successf(out, "Source and target reachable")

	// Preflight probes
	report.Section(out, "Preflight")
	checker, err := migrator.NewPreflightChecker(dbManager.Source, dbManager.Target,
		cfg.Migration.SourceTable, cfg.Migration.TargetTable, log)
	if err != nil {
		return fmt.Errorf("failed to create preflight checker: %w", err)
	}
	if err := checker.RunAllChecks(ctx); err != nil {
		report.Failuref(out, "Preflight checks failed: %v", err)
		return fmt.Errorf("preflight checks failed")
	}
	report.Successf(out, "Both tables readable")

	return nil
}
