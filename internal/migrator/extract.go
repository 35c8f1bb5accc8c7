package migrator

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/sqlutil"
	"github.com/dbsmedya/gomigrator/internal/types"
)

// ChunkExtractor pulls rows from the source table one chunk at a time using
// LIMIT/OFFSET pagination. It holds the pagination offset, advancing it by the
// chunk size after every non-empty fetch, so repeated Next calls walk the
// table front to back.
//
// Rows are read without an ORDER BY, so cross-chunk ordering is only as stable
// as the server's scan order. Rows inserted or deleted mid-run can be missed
// or seen twice.
type ChunkExtractor struct {
	db        *sql.DB
	table     string
	chunkSize int
	offset    int64
	logger    *logger.Logger
}

// NewChunkExtractor creates an extractor for the given source table.
// The chunk size must be positive; anything else is rejected before a single
// query runs.
func NewChunkExtractor(db *sql.DB, table string, chunkSize int, log *logger.Logger) (*ChunkExtractor, error) {
	if db == nil {
		return nil, fmt.Errorf("source database is nil")
	}
	if table == "" {
		return nil, fmt.Errorf("source table is required")
	}
	if chunkSize <= 0 {
		return nil, &ConfigError{
			Setting: "chunk_size",
			Message: fmt.Sprintf("must be positive, got %d", chunkSize),
		}
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &ChunkExtractor{
		db:        db,
		table:     table,
		chunkSize: chunkSize,
		logger:    log,
	}, nil
}

// Next fetches the next chunk of rows. It returns (nil, nil) once a fetch
// comes back empty; that is the end of the sequence, not an error. Column
// names and order are taken from each fetch's result metadata rather than
// cached, so the batch schema always reflects what the server returned.
func (e *ChunkExtractor) Next(ctx context.Context) (*types.Batch, error) {
	query := fmt.Sprintf(
		"SELECT * FROM %s LIMIT ? OFFSET ?",
		sqlutil.QuoteIdentifier(e.table),
	)

	rows, err := e.db.QueryContext(ctx, query, e.chunkSize, e.offset)
	if err != nil {
		return nil, &DataAccessError{Table: e.table, Offset: e.offset, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &DataAccessError{
			Table:  e.table,
			Offset: e.offset,
			Err:    fmt.Errorf("failed to read column names: %w", err),
		}
	}

	var records []*types.Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, &DataAccessError{
				Table:  e.table,
				Offset: e.offset,
				Err:    fmt.Errorf("failed to scan row: %w", err),
			}
		}

		record := types.NewRecord()
		for i, column := range columns {
			record.Set(column, types.FromDriver(values[i]))
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{
			Table:  e.table,
			Offset: e.offset,
			Err:    fmt.Errorf("error iterating rows: %w", err),
		}
	}

	if len(records) == 0 {
		e.logger.Debugf("Empty fetch at offset %d, extraction complete", e.offset)
		return nil, nil
	}

	e.logger.Debugf("Fetched %d rows from %s at offset %d", len(records), e.table, e.offset)
	e.offset += int64(e.chunkSize)

	return &types.Batch{Columns: columns, Records: records}, nil
}

// Reset moves the cursor back to offset 0 so the next call to Next starts the
// table over.
func (e *ChunkExtractor) Reset() {
	e.offset = 0
}

// Offset returns the offset the next fetch will use.
func (e *ChunkExtractor) Offset() int64 {
	return e.offset
}

// ChunkSize returns the configured chunk size.
func (e *ChunkExtractor) ChunkSize() int {
	return e.chunkSize
}
