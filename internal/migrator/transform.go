package migrator

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/gomigrator/internal/logger"
	"github.com/dbsmedya/gomigrator/internal/types"
)

// Rule rewrites a single column value. Rules must be idempotent: applying a
// rule to its own output returns that output unchanged.
type Rule interface {
	Name() string
	Apply(column string, v types.Value) (types.Value, error)
}

// TrimSpaceRule strips leading and trailing whitespace from text values.
// Non-text values pass through untouched.
type TrimSpaceRule struct{}

// Name returns the rule name used in log output.
func (TrimSpaceRule) Name() string { return "trim_space" }

// Apply trims the value if it is text.
func (TrimSpaceRule) Apply(column string, v types.Value) (types.Value, error) {
	s, ok := v.Text()
	if !ok {
		return v, nil
	}
	return types.TextValue(strings.TrimSpace(s)), nil
}

// NullIfEmptyRule converts empty text values to NULL for a configured set of
// columns. It runs after trimming, so whitespace-only values become NULL too.
type NullIfEmptyRule struct {
	columns map[string]bool
}

// NewNullIfEmptyRule creates the rule for the given column names.
func NewNullIfEmptyRule(columns []string) *NullIfEmptyRule {
	set := make(map[string]bool, len(columns))
	for _, column := range columns {
		set[column] = true
	}
	return &NullIfEmptyRule{columns: set}
}

// Name returns the rule name used in log output.
func (r *NullIfEmptyRule) Name() string { return "null_if_empty" }

// Apply replaces an empty text value with NULL when the column is configured.
func (r *NullIfEmptyRule) Apply(column string, v types.Value) (types.Value, error) {
	if !r.columns[column] {
		return v, nil
	}
	s, ok := v.Text()
	if !ok {
		return v, nil
	}
	if s == "" {
		return types.NullValue(), nil
	}
	return v, nil
}

// RowTransformer applies an ordered rule chain to every value of a batch.
// The input batch is never mutated; transformed rows are built into a new
// batch sharing the same column schema.
type RowTransformer struct {
	rules  []Rule
	logger *logger.Logger
}

// NewRowTransformer creates a transformer with the default rule chain:
// trim whitespace on text values, then NULL out post-trim empty strings in
// the nullIfEmpty columns.
func NewRowTransformer(nullIfEmpty []string, log *logger.Logger) *RowTransformer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &RowTransformer{
		rules: []Rule{
			TrimSpaceRule{},
			NewNullIfEmptyRule(nullIfEmpty),
		},
		logger: log,
	}
}

// AddRule appends a rule to the end of the chain.
func (t *RowTransformer) AddRule(r Rule) {
	t.rules = append(t.rules, r)
}

// Transform runs the rule chain over every value of the batch and returns the
// rewritten batch.
//
// A rule failing on one value is recoverable: the failure is logged and the
// value passes through unchanged. A batch that is structurally broken (nil,
// a nil record, or a record missing a schema column) aborts with a
// TransformError.
func (t *RowTransformer) Transform(batch *types.Batch) (*types.Batch, error) {
	if batch == nil {
		return nil, &TransformError{Err: fmt.Errorf("batch is nil")}
	}

	out := &types.Batch{
		Columns: append([]string(nil), batch.Columns...),
		Records: make([]*types.Record, 0, len(batch.Records)),
	}

	for i, record := range batch.Records {
		if record == nil {
			return nil, &TransformError{
				BatchSize: batch.Len(),
				Err:       fmt.Errorf("record %d is nil", i),
			}
		}

		transformed := types.NewRecord()
		for _, column := range batch.Columns {
			value, ok := record.Get(column)
			if !ok {
				return nil, &TransformError{
					BatchSize: batch.Len(),
					Err:       fmt.Errorf("record %d is missing column %q", i, column),
				}
			}

			for _, rule := range t.rules {
				next, err := rule.Apply(column, value)
				if err != nil {
					t.logger.Warnf("Rule %q failed on column %q: %v (value passed through unchanged)",
						rule.Name(), column, err)
					continue
				}
				value = next
			}

			transformed.Set(column, value)
		}

		out.Records = append(out.Records, transformed)
	}

	return out, nil
}
