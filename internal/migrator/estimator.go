package migrator

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/gomigrator/internal/config"
	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/sqlutil"
)

// EstimateResult holds the dry-run execution plan for a migration.
type EstimateResult struct {
	SourceTable   string
	TargetTable   string
	SourceRows    int64
	ChunkSize     int
	Chunks        int64
	LastChunkSize int64
}

// Estimator computes the execution plan for a migration without moving any
// data. The row count is a snapshot; concurrent writes to the source shift
// the real chunk count.
type Estimator struct {
	db     *sql.DB
	cfg    *config.Config
	logger *logger.Logger
}

// NewEstimator creates a new estimator reading from the source database.
func NewEstimator(db *sql.DB, cfg *config.Config, log *logger.Logger) *Estimator {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Estimator{
		db:     db,
		cfg:    cfg,
		logger: log,
	}
}

// Estimate counts the source rows and derives the chunk plan: total chunks is
// the row count divided by chunk size, rounded up, and the last chunk carries
// the remainder (a full chunk when the count divides evenly).
func (e *Estimator) Estimate(ctx context.Context) (*EstimateResult, error) {
	mig := e.cfg.Migration

	if mig.ChunkSize <= 0 {
		return nil, &ConfigError{
			Setting: "chunk_size",
			Message: fmt.Sprintf("must be positive, got %d", mig.ChunkSize),
		}
	}

	result := &EstimateResult{
		SourceTable: mig.SourceTable,
		TargetTable: mig.TargetTable,
		ChunkSize:   mig.ChunkSize,
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqlutil.QuoteIdentifier(mig.SourceTable))

	var count int64
	if err := e.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count source table %s: %w", mig.SourceTable, err)
	}
	result.SourceRows = count

	if count > 0 {
		chunkSize := int64(mig.ChunkSize)
		result.Chunks = (count + chunkSize - 1) / chunkSize
		result.LastChunkSize = count % chunkSize
		if result.LastChunkSize == 0 {
			result.LastChunkSize = chunkSize
		}
	}

	e.logger.Debugf("Estimated %d rows in %s (%d chunks of %d)",
		result.SourceRows, result.SourceTable, result.Chunks, result.ChunkSize)

	return result, nil
}
