package migrator

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/gomigrator/internal/config"
	"github.com/dbsmedya/gomigrator/internal/database"
	"github.com/dbsmedya/gomigrator/internal/logger"
)

// State tracks where a migration run is in its lifecycle. Completed and
// Failed are terminal; an orchestrator runs at most once.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

// String returns the state name used in logs and reports.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MigrationResult contains statistics and status of a migration run. Batches
// counts only the batches that finished loading. On failure the totals cover
// the work done before the error, so a run that failed loading its second
// 5000-row batch still reports one batch and the 5000 rows it moved, while
// RowsExtracted includes the rows the failed batch fetched.
type MigrationResult struct {
	SourceTable   string
	TargetTable   string
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	Batches       int
	RowsExtracted int64
	RowsLoaded    int64
	State         State
	Err           error
}

// Orchestrator drives the extract, transform and load loop for one migration
// run. Batches move strictly one at a time: a chunk is fully loaded before
// the next fetch starts.
type Orchestrator struct {
	config    *config.Config
	dbManager *database.Manager
	logger    *logger.Logger
	state     State
}

// NewOrchestrator creates an orchestrator for the configured migration.
func NewOrchestrator(cfg *config.Config, dbManager *database.Manager, log *logger.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &Orchestrator{
		config:    cfg,
		dbManager: dbManager,
		logger:    log.WithMigration(cfg.Migration.SourceTable, cfg.Migration.TargetTable),
		state:     StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the migration until the source is exhausted or a component
// fails. The returned result is never nil once the run has started; on error
// it carries the partial totals together with the triggering error.
func (o *Orchestrator) Run(ctx context.Context) (*MigrationResult, error) {
	if o.state != StateIdle {
		return nil, fmt.Errorf("orchestrator already ran (state: %s)", o.state)
	}
	if ctx == nil {
		return nil, fmt.Errorf("context is nil")
	}

	o.state = StateRunning
	mig := o.config.Migration

	result := &MigrationResult{
		SourceTable: mig.SourceTable,
		TargetTable: mig.TargetTable,
		StartedAt:   time.Now(),
		State:       StateRunning,
	}

	o.logger.Infow("Starting migration",
		"chunk_size", mig.ChunkSize,
		"sleep_seconds", mig.SleepSeconds,
		"null_if_empty", mig.NullIfEmpty,
	)

	extractor, err := NewChunkExtractor(o.dbManager.Source, mig.SourceTable, mig.ChunkSize, o.logger)
	if err != nil {
		return o.fail(result, err)
	}

	transformer := NewRowTransformer(mig.NullIfEmpty, o.logger)

	loader, err := NewBatchLoader(o.dbManager.Target, mig.TargetTable, o.logger)
	if err != nil {
		return o.fail(result, err)
	}

	for {
		select {
		case <-ctx.Done():
			o.logger.Warnf("Migration interrupted between chunks: %v", ctx.Err())
			return o.fail(result, ctx.Err())
		default:
		}

		fetchStart := time.Now()
		batch, err := extractor.Next(ctx)
		if err != nil {
			return o.fail(result, err)
		}

		// Empty fetch = source exhausted
		if batch == nil {
			break
		}
		fetchElapsed := time.Since(fetchStart)

		batchNum := result.Batches + 1
		result.RowsExtracted += int64(batch.Len())
		batchLogger := o.logger.WithBatch(batchNum)

		transformStart := time.Now()
		transformed, err := transformer.Transform(batch)
		if err != nil {
			return o.fail(result, err)
		}
		transformElapsed := time.Since(transformStart)

		loadStart := time.Now()
		loaded, err := loader.Load(ctx, transformed)
		if err != nil {
			return o.fail(result, err)
		}
		loadElapsed := time.Since(loadStart)
		result.Batches = batchNum
		result.RowsLoaded += loaded

		batchLogger.Infow("Batch migrated",
			"rows", batch.Len(),
			"next_offset", extractor.Offset(),
			"total_loaded", result.RowsLoaded,
			"fetch", fetchElapsed,
			"transform", transformElapsed,
			"load", loadElapsed,
		)

		// Sleep between chunks to reduce load on the source
		if mig.SleepSeconds > 0 {
			sleep := time.Duration(mig.SleepSeconds * float64(time.Second))
			select {
			case <-ctx.Done():
				o.logger.Warnf("Migration interrupted during sleep: %v", ctx.Err())
				return o.fail(result, ctx.Err())
			case <-time.After(sleep):
			}
		}
	}

	o.state = StateCompleted
	result.State = StateCompleted
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	o.logger.Infow("Migration completed",
		"batches", result.Batches,
		"rows_extracted", result.RowsExtracted,
		"rows_loaded", result.RowsLoaded,
		"duration", result.Duration,
	)

	return result, nil
}

// fail records the terminal failure state and returns the partial result
// alongside the error.
func (o *Orchestrator) fail(result *MigrationResult, err error) (*MigrationResult, error) {
	o.state = StateFailed
	result.State = StateFailed
	result.Err = err
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	o.logger.Errorw("Migration failed",
		"error", err,
		"batches", result.Batches,
		"rows_loaded", result.RowsLoaded,
		"duration", result.Duration,
	)

	return result, err
}
