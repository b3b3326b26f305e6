// Package sample fetches small bounded row previews from data files.
//
// Sampling is strictly best-effort: a sampler may return fewer rows than
// requested, zero rows, or an error, and callers treat all failures as
// "no rows". The production implementation queries Parquet files through
// an embedded DuckDB; tests and row-less builds use fakes or NullSampler.
package sample

import (
	"context"
	"fmt"
	"sort"
)

// Row is one sampled row: column name to value.
type Row map[string]any

// CellString formats a cell value for display and matching.
// Nil cells render as an empty string.
func CellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Sampler fetches up to limit rows from the data file at path.
type Sampler interface {
	Sample(ctx context.Context, path string, limit int) ([]Row, error)
}

// NullSampler never returns rows. Used when row sampling is disabled.
type NullSampler struct{}

// NewNullSampler creates a sampler that always returns zero rows.
func NewNullSampler() Sampler { return &NullSampler{} }

// Sample returns no rows and no error.
func (NullSampler) Sample(ctx context.Context, path string, limit int) ([]Row, error) {
	return nil, nil
}

var _ Sampler = (*NullSampler)(nil)
