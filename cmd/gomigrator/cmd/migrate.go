package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomigrator/internal/database"
	"github.com/dbsmedya/gomigrator/internal/lock"
	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/migrator"
	"github.com/dbsmedya/gomigrator/internal/report"
	"github.com/dbsmedya/gomigrator/internal/verifier"
)

var (
	migrateDryRun bool
	migrateVerify bool
	migrateForce  bool
	migrateYes    bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the source table into the target table",
	Long: `Migrate moves rows from the source table into the target table in
fixed-size chunks, applying cleanup rules to every value on the way.

The migration process follows these steps:
  1. Estimate the chunk plan and run preflight probes on both tables
  2. Acquire the advisory run lock on the target server
  3. Fetch chunks with LIMIT/OFFSET, transform, INSERT into the target
  4. Optionally reconcile row counts (--verify)

Rows are appended as-is: rerunning a completed migration inserts every
row a second time.

Example:
  gomigrator migrate --config migrator.yaml --verify`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false,
		"Show the execution plan without writing any rows")
	migrateCmd.Flags().BoolVar(&migrateVerify, "verify", false,
		"Reconcile row counts after the run")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false,
		"Force execution even if the run lock cannot be acquired (use with caution)")
	migrateCmd.Flags().BoolVarP(&migrateYes, "yes", "y", false,
		"Skip the confirmation prompt")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
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

	mig := cfg.Migration
	log.Infow("Starting migration",
		"source_table", mig.SourceTable,
		"target_table", mig.TargetTable,
		"config", GetConfigFile(),
	)

	// Setup context cancelled on SIGINT/SIGTERM
	ctx := database.SetupSignalHandlerWithCallback(func(sig os.Signal) {
		log.Warnf("Received %s - finishing current chunk before stopping", sig)
	})

	// Connect to databases
	dbManager := database.NewManager(cfg)
	if err := dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to databases: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	// Show the execution plan; the dry-run path stops here
	plan, err := displayPlan(ctx, cfg, dbManager, log, out)
	if err != nil {
		return err
	}
	if migrateDryRun {
		report.Successf(out, "Dry run complete - no rows were written")
		return nil
	}

	if !migrateYes {
		ok, err := confirmMigration(cmd, plan)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Migration aborted")
			return nil
		}
	}

	// Acquire advisory lock to prevent concurrent duplicate runs
	if !migrateForce {
		runLock := lock.NewMigrationLock(dbManager.Target, mig.SourceTable, mig.TargetTable)
		if err := runLock.AcquireOrFail(ctx); err != nil {
			if errors.Is(err, lock.ErrLockTimeout) {
				return fmt.Errorf("migration %s -> %s is already running on another instance (use --force to override)",
					mig.SourceTable, mig.TargetTable)
			}
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer runLock.ReleaseLock(context.Background())
		log.Infow("Acquired advisory run lock", "lock", runLock.LockName())
	} else {
		log.Warnw("Skipping advisory lock acquisition (--force flag used)",
			"source_table", mig.SourceTable,
			"target_table", mig.TargetTable,
		)
	}

	// Preflight probes on both tables
	checker, err := migrator.NewPreflightChecker(dbManager.Source, dbManager.Target,
		mig.SourceTable, mig.TargetTable, log)
	if err != nil {
		return fmt.Errorf("failed to create preflight checker: %w", err)
	}
	if err := checker.RunAllChecks(ctx); err != nil {
		return fmt.Errorf("preflight checks failed: %w", err)
	}

	// Capture the verification baseline before any rows move
	var ver *verifier.Verifier
	var targetRowsBefore int64
	if migrateVerify {
		ver, err = verifier.NewVerifier(dbManager.Source, dbManager.Target,
			mig.SourceTable, mig.TargetTable, log)
		if err != nil {
			return fmt.Errorf("failed to create verifier: %w", err)
		}
		targetRowsBefore, err = ver.CountTarget(ctx)
		if err != nil {
			return fmt.Errorf("failed to count target table before run: %w", err)
		}
	}

	// Execute the migration
	orch, err := migrator.NewOrchestrator(cfg, dbManager, log)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	result, err := orch.Run(ctx)
	if result != nil {
		displaySummary(out, result)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Migration cancelled - the target keeps every chunk already loaded")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	// Reconcile row counts
	if migrateVerify {
		if err := displayVerification(ctx, ver, out, targetRowsBefore, result.RowsLoaded); err != nil {
			return err
		}
	}

	return nil
}

// confirmMigration prompts before rows start moving. Declining is not an
// error.
func confirmMigration(cmd *cobra.Command, plan *migrator.EstimateResult) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "\nMigrate %d rows from %s to %s in %d chunks? [y/N]: ",
		plan.SourceRows, plan.SourceTable, plan.TargetTable, plan.Chunks)

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func displaySummary(out io.Writer, result *migrator.MigrationResult) {
	report.Section(out, "Migration Summary")
	report.RenderKeyValues(out, []report.KeyValue{
		{Key: "Source table", Value: result.SourceTable},
		{Key: "Target table", Value: result.TargetTable},
		{Key: "Duration", Value: result.Duration.Round(time.Millisecond).String()},
		{Key: "Batches", Value: strconv.Itoa(result.Batches)},
		{Key: "Rows extracted", Value: strconv.FormatInt(result.RowsExtracted, 10)},
		{Key: "Rows loaded", Value: strconv.FormatInt(result.RowsLoaded, 10)},
		{Key: "State", Value: result.State.String()},
	})

	switch result.State {
	case migrator.StateCompleted:
		report.Successf(out, "Migrated %d rows in %d batches", result.RowsLoaded, result.Batches)
	case migrator.StateFailed:
		report.Failuref(out, "Migration failed after %d completed batches: %v", result.Batches, result.Err)
	}
}

func displayVerification(ctx context.Context, ver *verifier.Verifier, out io.Writer, targetRowsBefore, rowsLoaded int64) error {
	vres, err := ver.Verify(ctx, targetRowsBefore, rowsLoaded)
	if vres != nil {
		report.Section(out, "Verification")
		report.RenderKeyValues(out, []report.KeyValue{
			{Key: "Target rows before", Value: strconv.FormatInt(vres.TargetRowsBefore, 10)},
			{Key: "Target rows after", Value: strconv.FormatInt(vres.TargetRowsAfter, 10)},
			{Key: "Target delta", Value: strconv.FormatInt(vres.TargetDelta(), 10)},
			{Key: "Rows loaded", Value: strconv.FormatInt(vres.RowsLoaded, 10)},
			{Key: "Source rows now", Value: strconv.FormatInt(vres.SourceRows, 10)},
		})
	}
	if err != nil {
		report.Failuref(out, "Row count verification failed")
		return fmt.Errorf("verification failed: %w", err)
	}

	report.Successf(out, "Row counts verified")
	if vres.SourceRows != vres.RowsLoaded {
		report.Warningf(out, "Source table now has %d rows (loaded %d) - it changed during the run",
			vres.SourceRows, vres.RowsLoaded)
	}
	return nil
}
