package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomigrator/internal/config"
	"github.com/dbsmedya/gomigrator/internal/database"
	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/migrator"
	"github.com/dbsmedya/gomigrator/internal/report"
	"github.com/dbsmedya/gomigrator/internal/verifier"
)

var dryrunCmd = &cobra.Command{
	Use:   "dry-run",
	Short: "Show the execution plan without migrating anything",
	Long: `Dry-run counts the source table and reports how the migration would
be chunked, without writing a single row.

The plan shows:
  - Current row counts of the source and target tables
  - Number of chunks and the size of the final short chunk
  - Effective chunk size after flag overrides

Example:
  gomigrator dry-run --config migrator.yaml`,
	RunE: runDryrun,
}

func init() {
	rootCmd.AddCommand(dryrunCmd)
}

func runDryrun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Connect to databases (reads only)
	dbManager := database.NewManager(cfg)
	ctx := context.Background()

	if err := dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to databases: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if _, err := displayPlan(ctx, cfg, dbManager, log, out); err != nil {
		return err
	}

	report.Successf(out, "Dry run complete - no rows were written")
	return nil
}

// displayPlan estimates the chunk plan and renders it together with the
// current table counts. Both the dry-run command and migrate's --dry-run and
// confirmation paths go through here.
func displayPlan(ctx context.Context, cfg *config.Config, dbManager *database.Manager, log *logger.Logger, out io.Writer) (*migrator.EstimateResult, error) {
	estimator := migrator.NewEstimator(dbManager.Source, cfg, log)
	plan, err := estimator.Estimate(ctx)
	if err != nil {
		return nil, fmt.Errorf("estimation failed: %w", err)
	}

	mig := cfg.Migration
	ver, err := verifier.NewVerifier(dbManager.Source, dbManager.Target,
		mig.SourceTable, mig.TargetTable, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create verifier: %w", err)
	}
	targetRows, err := ver.CountTarget(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count target table: %w", err)
	}

	report.Section(out, "Migration Plan")

	tables := report.NewTable("TABLE", "ROLE", "ROWS")
	tables.AddRow(plan.SourceTable, "source", strconv.FormatInt(plan.SourceRows, 10))
	tables.AddRow(plan.TargetTable, "target", strconv.FormatInt(targetRows, 10))
	tables.Render(out)

	pairs := []report.KeyValue{
		{Key: "Chunk size", Value: strconv.Itoa(plan.ChunkSize)},
		{Key: "Chunks", Value: strconv.FormatInt(plan.Chunks, 10)},
		{Key: "Last chunk", Value: fmt.Sprintf("%d rows", plan.LastChunkSize)},
	}
	if mig.SleepSeconds > 0 {
		pairs = append(pairs, report.KeyValue{
			Key:   "Sleep between chunks",
			Value: fmt.Sprintf("%.2fs", mig.SleepSeconds),
		})
	}
	if len(mig.NullIfEmpty) > 0 {
		pairs = append(pairs, report.KeyValue{
			Key:   "NULL-if-empty columns",
			Value: strconv.Itoa(len(mig.NullIfEmpty)),
		})
	}
	fmt.Fprintln(out)
	report.RenderKeyValues(out, pairs)

	return plan, nil
}
