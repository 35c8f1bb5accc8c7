package migrator

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/sqlutil"
)

// PreflightError represents a preflight check failure.
type PreflightError struct {
	Check   string
	Table   string
	Message string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("%s: %s (table: %s)", e.Check, e.Message, e.Table)
}

// PreflightChecker verifies that both tables are readable before any data
// moves. It probes each side with a zero-row SELECT, which confirms the table
// exists and yields its column set without transferring data.
type PreflightChecker struct {
	source      *sql.DB
	target      *sql.DB
	sourceTable string
	targetTable string
	logger      *logger.Logger
}

// NewPreflightChecker creates a new preflight checker.
func NewPreflightChecker(source, target *sql.DB, sourceTable, targetTable string, log *logger.Logger) (*PreflightChecker, error) {
	if source == nil {
		return nil, fmt.Errorf("source database is nil")
	}
	if target == nil {
		return nil, fmt.Errorf("target database is nil")
	}
	if sourceTable == "" || targetTable == "" {
		return nil, fmt.Errorf("source and target tables are required")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &PreflightChecker{
		source:      source,
		target:      target,
		sourceTable: sourceTable,
		targetTable: targetTable,
		logger:      log,
	}, nil
}

// RunAllChecks probes both tables. An unreadable table fails the checks;
// source columns absent from the target are reported as a warning only, since
// a SELECT * extraction will still attempt to insert them.
func (p *PreflightChecker) RunAllChecks(ctx context.Context) error {
	p.logger.Info("Running preflight checks...")

	sourceColumns, err := p.probe(ctx, p.source, p.sourceTable, "SOURCE_TABLE_PROBE")
	if err != nil {
		return err
	}
	p.logger.Debugf("Source table %s readable (%d columns)", p.sourceTable, len(sourceColumns))

	targetColumns, err := p.probe(ctx, p.target, p.targetTable, "TARGET_TABLE_PROBE")
	if err != nil {
		return err
	}
	p.logger.Debugf("Target table %s readable (%d columns)", p.targetTable, len(targetColumns))

	if missing := missingColumns(sourceColumns, targetColumns); len(missing) > 0 {
		p.logger.Warnf("Source columns not present in target table %s: %v (inserts will fail if these columns are extracted)",
			p.targetTable, missing)
	}

	p.logger.Info("All preflight checks PASSED")
	return nil
}

// probe runs a zero-row SELECT against the table and returns its column set.
func (p *PreflightChecker) probe(ctx context.Context, db *sql.DB, table, check string) ([]string, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT 0", sqlutil.QuoteIdentifier(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &PreflightError{
			Check:   check,
			Table:   table,
			Message: fmt.Sprintf("table is not readable: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &PreflightError{
			Check:   check,
			Table:   table,
			Message: fmt.Sprintf("failed to read column names: %v", err),
		}
	}

	if err := rows.Err(); err != nil {
		return nil, &PreflightError{
			Check:   check,
			Table:   table,
			Message: err.Error(),
		}
	}

	return columns, nil
}

// missingColumns returns the source columns absent from the target set.
func missingColumns(source, target []string) []string {
	present := make(map[string]bool, len(target))
	for _, column := range target {
		present[column] = true
	}

	var missing []string
	for _, column := range source {
		if !present[column] {
			missing = append(missing, column)
		}
	}
	return missing
}
