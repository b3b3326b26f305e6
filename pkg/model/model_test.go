package model

import (
	"context"
	"testing"

	"github.com/icemap-dev/icemap/pkg/errors"
	"github.com/icemap-dev/icemap/pkg/sample"
)

// countingSampler counts Sample invocations.
type countingSampler struct {
	calls int
	rows  []sample.Row
	err   error
}

func (s *countingSampler) Sample(ctx context.Context, path string, limit int) ([]sample.Row, error) {
	s.calls++
	return s.rows, s.err
}

func TestDataFileEntryRowsCached(t *testing.T) {
	sampler := &countingSampler{rows: []sample.Row{{"id": int64(1)}}}
	entry := &DataFileEntry{Path: "data/a.parquet"}
	ctx := context.Background()

	first := entry.Rows(ctx, sampler, 5)
	second := entry.Rows(ctx, sampler, 5)

	if sampler.calls != 1 {
		t.Errorf("sampler called %d times, want 1", sampler.calls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("rows = %d then %d, want 1 and 1", len(first), len(second))
	}
}

func TestDataFileEntryRowsErrorDegradesToZeroRows(t *testing.T) {
	sampler := &countingSampler{err: errors.New(errors.ErrCodeSamplingFailed, "boom")}
	entry := &DataFileEntry{Path: "data/a.parquet"}
	ctx := context.Background()

	if rows := entry.Rows(ctx, sampler, 5); rows != nil {
		t.Errorf("Rows() = %v, want nil on sampling failure", rows)
	}
	// Failure is cached too: the entry never re-samples.
	entry.Rows(ctx, sampler, 5)
	if sampler.calls != 1 {
		t.Errorf("sampler called %d times, want 1", sampler.calls)
	}
}
