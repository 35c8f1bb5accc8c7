// Package migrator implements the chunked extract, transform and load
// pipeline that moves one table's rows into another.
package migrator

import "fmt"

// ConfigError reports a setting that makes the run impossible. It is returned
// before any query executes.
type ConfigError struct {
	Setting string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Setting, e.Message)
}

// DataAccessError reports a failed extraction read. Offset is the pagination
// offset of the fetch that failed.
type DataAccessError struct {
	Table  string
	Offset int64
	Err    error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("failed to read from %s at offset %d: %v", e.Table, e.Offset, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// TransformError reports a structurally broken batch that could not be
// transformed. Per-value rule failures are logged and passed through instead.
type TransformError struct {
	BatchSize int
	Err       error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to transform batch of %d rows: %v", e.BatchSize, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// LoadError reports a failed batch write. The batch is counted all-or-nothing,
// so none of its rows are included in the run totals.
type LoadError struct {
	Table     string
	BatchSize int
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load batch of %d rows into %s: %v", e.BatchSize, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
