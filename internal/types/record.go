package types

import (
	"github.com/elliotchance/orderedmap/v2"
)

// Record is one source row: column names mapped to values, preserving the
// column order of the query result it was scanned from.
type Record struct {
	cols *orderedmap.OrderedMap[string, Value]
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{cols: orderedmap.NewOrderedMap[string, Value]()}
}

// Set stores a value under a column name, appending the column if new.
func (r *Record) Set(column string, v Value) {
	r.cols.Set(column, v)
}

// Get returns the value for a column. For columns the record does not hold,
// the zero Value (NULL) is returned with ok false.
func (r *Record) Get(column string) (Value, bool) {
	return r.cols.Get(column)
}

// Columns returns the column names in insertion order.
func (r *Record) Columns() []string {
	return r.cols.Keys()
}

// Len returns the number of columns.
func (r *Record) Len() int {
	return r.cols.Len()
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	return &Record{cols: r.cols.Copy()}
}

// Batch is an ordered group of records sharing one column schema, produced by
// a single paginated fetch. Columns holds that fetch's result schema in
// driver order.
type Batch struct {
	Columns []string
	Records []*Record
}

// Len returns the number of records in the batch. A nil batch has length 0.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}
