package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/sqlutil"
	"github.com/dbsmedya/gomigrator/internal/types"
)

// maxStatementParams is the most placeholders MySQL accepts in a single
// prepared statement; the protocol carries the parameter count as a uint16.
const maxStatementParams = 65535

// BatchLoader appends batches to the target table. A batch whose placeholders
// fit in one prepared statement is written as a single multi-row INSERT; a
// wider batch is split across several INSERTs inside one transaction. Either
// way a failed write leaves the run totals without any of that batch's rows.
// The loader never creates, truncates or upserts; re-running a migration
// against the same target duplicates rows.
type BatchLoader struct {
	db     *sql.DB
	table  string
	logger *logger.Logger
}

// execer is the subset of sql.DB and sql.Tx the loader writes through.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// NewBatchLoader creates a loader for the given target table.
func NewBatchLoader(db *sql.DB, table string, log *logger.Logger) (*BatchLoader, error) {
	if db == nil {
		return nil, fmt.Errorf("target database is nil")
	}
	if table == "" {
		return nil, fmt.Errorf("target table is required")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &BatchLoader{
		db:     db,
		table:  table,
		logger: log,
	}, nil
}

// Load writes the batch into the target table and returns the number of rows
// the server reports as inserted. An empty or nil batch returns 0 without
// issuing any SQL. Values are bound by column name; a column a record does
// not hold binds as SQL NULL.
func (l *BatchLoader) Load(ctx context.Context, batch *types.Batch) (int64, error) {
	if batch.Len() == 0 {
		return 0, nil
	}
	if len(batch.Columns) == 0 {
		return 0, &LoadError{Table: l.table, BatchSize: batch.Len(), Err: fmt.Errorf("batch has no columns")}
	}

	rowsPerStatement := maxStatementParams / len(batch.Columns)
	if rowsPerStatement < 1 {
		rowsPerStatement = 1
	}

	if batch.Len() <= rowsPerStatement {
		affected, err := l.insertRecords(ctx, l.db, batch.Columns, batch.Records)
		if err != nil {
			return 0, &LoadError{Table: l.table, BatchSize: batch.Len(), Err: err}
		}
		l.logger.Debugf("Inserted %d rows into %s", affected, l.table)
		return affected, nil
	}

	return l.loadInTransaction(ctx, batch, rowsPerStatement)
}

// loadInTransaction writes a batch too wide for one statement as several
// INSERTs in a single transaction, so a mid-batch failure rolls back to the
// batch boundary.
func (l *BatchLoader) loadInTransaction(ctx context.Context, batch *types.Batch, rowsPerStatement int) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &LoadError{Table: l.table, BatchSize: batch.Len(), Err: err}
	}

	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.logger.Errorf("Failed to rollback load transaction: %v", rbErr)
			}
		}
	}()

	var affected int64
	statements := 0
	for start := 0; start < batch.Len(); start += rowsPerStatement {
		end := start + rowsPerStatement
		if end > batch.Len() {
			end = batch.Len()
		}

		n, err := l.insertRecords(ctx, tx, batch.Columns, batch.Records[start:end])
		if err != nil {
			return 0, &LoadError{Table: l.table, BatchSize: batch.Len(), Err: err}
		}
		affected += n
		statements++
	}

	if err := tx.Commit(); err != nil {
		return 0, &LoadError{Table: l.table, BatchSize: batch.Len(), Err: err}
	}
	tx = nil

	l.logger.Debugf("Inserted %d rows into %s across %d statements", affected, l.table, statements)
	return affected, nil
}

// insertRecords writes one multi-row INSERT for the given records.
func (l *BatchLoader) insertRecords(ctx context.Context, db execer, columns []string, records []*types.Record) (int64, error) {
	query := l.buildInsertQuery(columns, len(records))

	args := make([]interface{}, 0, len(columns)*len(records))
	for _, record := range records {
		for _, column := range columns {
			value, _ := record.Get(column)
			args = append(args, value.Driver())
		}
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// buildInsertQuery constructs the multi-row INSERT statement.
// Example: INSERT INTO `customers_clean` (`id`, `name`) VALUES (?, ?), (?, ?)
func (l *BatchLoader) buildInsertQuery(columns []string, rowCount int) string {
	rowPlaceholders := "(" + sqlutil.Placeholders(len(columns)) + ")"
	valueRows := make([]string, rowCount)
	for i := range valueRows {
		valueRows[i] = rowPlaceholders
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		sqlutil.QuoteIdentifier(l.table),
		sqlutil.QuoteColumns(columns),
		strings.Join(valueRows, ", "),
	)
}

// Table returns the target table name.
func (l *BatchLoader) Table() string {
	return l.table
}
