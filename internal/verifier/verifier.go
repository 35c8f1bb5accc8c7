// Package verifier reconciles row counts after a migration run.
package verifier

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/sqlutil"
)

// VerifyResult holds the counts gathered during reconciliation.
type VerifyResult struct {
	SourceTable string
	TargetTable string

	// SourceRows is the source table count at verification time. The source
	// is not frozen during a run, so this can legitimately differ from
	// RowsLoaded.
	SourceRows int64

	// TargetRowsBefore is the target count captured before the run started.
	TargetRowsBefore int64

	// TargetRowsAfter is the target count after the run finished.
	TargetRowsAfter int64

	// RowsLoaded is what the loader reported across all batches.
	RowsLoaded int64

	Match        bool
	ErrorMessage string
}

// TargetDelta returns how many rows the run added to the target.
func (r *VerifyResult) TargetDelta() int64 {
	return r.TargetRowsAfter - r.TargetRowsBefore
}

// Verifier compares loader totals against actual table counts.
type Verifier struct {
	source      *sql.DB
	target      *sql.DB
	sourceTable string
	targetTable string
	logger      *logger.Logger
}

// NewVerifier creates a verifier for one source/target table pair.
func NewVerifier(source, target *sql.DB, sourceTable, targetTable string, log *logger.Logger) (*Verifier, error) {
	if source == nil {
		return nil, fmt.Errorf("source database is nil")
	}
	if target == nil {
		return nil, fmt.Errorf("target database is nil")
	}
	if sourceTable == "" {
		return nil, fmt.Errorf("source table is required")
	}
	if targetTable == "" {
		return nil, fmt.Errorf("target table is required")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &Verifier{
		source:      source,
		target:      target,
		sourceTable: sourceTable,
		targetTable: targetTable,
		logger:      log,
	}, nil
}

// CountSource returns the current row count of the source table.
func (v *Verifier) CountSource(ctx context.Context) (int64, error) {
	return countRows(ctx, v.source, v.sourceTable)
}

// CountTarget returns the current row count of the target table. Callers
// capture this before the run so Verify can compute the delta afterwards.
func (v *Verifier) CountTarget(ctx context.Context) (int64, error) {
	return countRows(ctx, v.target, v.targetTable)
}

// Verify recounts both tables and reconciles them against the loader total.
//
// The hard check is loader integrity: the target must have grown by exactly
// RowsLoaded, anything else is an error. The soft check compares RowsLoaded
// with the source count; rows written or deleted during the run make those
// diverge without any data having been lost, so a difference is only logged.
func (v *Verifier) Verify(ctx context.Context, targetRowsBefore, rowsLoaded int64) (*VerifyResult, error) {
	v.logger.Infof("Verifying row counts for %s -> %s", v.sourceTable, v.targetTable)

	targetRowsAfter, err := v.CountTarget(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count target table %s: %w", v.targetTable, err)
	}

	sourceRows, err := v.CountSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count source table %s: %w", v.sourceTable, err)
	}

	result := &VerifyResult{
		SourceTable:      v.sourceTable,
		TargetTable:      v.targetTable,
		SourceRows:       sourceRows,
		TargetRowsBefore: targetRowsBefore,
		TargetRowsAfter:  targetRowsAfter,
		RowsLoaded:       rowsLoaded,
		Match:            true,
	}

	if delta := result.TargetDelta(); delta != rowsLoaded {
		result.Match = false
		result.ErrorMessage = fmt.Sprintf("loaded %d rows but target grew by %d (before=%d, after=%d)",
			rowsLoaded, delta, targetRowsBefore, targetRowsAfter)
		v.logger.Errorf("Verification FAILED for table %q: %s", v.targetTable, result.ErrorMessage)
		return result, fmt.Errorf("verification mismatch in table %s: %s", v.targetTable, result.ErrorMessage)
	}

	if sourceRows != rowsLoaded {
		v.logger.Warnf("Source table %q now has %d rows but %d were loaded; the table changed during the run",
			v.sourceTable, sourceRows, rowsLoaded)
	}

	v.logger.Infof("Verification PASSED: target %q grew by %d rows", v.targetTable, rowsLoaded)
	return result, nil
}

func countRows(ctx context.Context, db *sql.DB, table string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqlutil.QuoteIdentifier(table))

	var count int64
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
