package sample

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/icemap-dev/icemap/pkg/errors"
)

// DuckDBSampler reads row previews from Parquet files through an embedded,
// in-memory DuckDB instance. One instance can serve many files; the
// underlying database holds no state between queries.
type DuckDBSampler struct {
	db *sql.DB
}

// NewDuckDBSampler opens an in-memory DuckDB for Parquet sampling.
func NewDuckDBSampler() (*DuckDBSampler, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSamplingFailed, err, "open duckdb")
	}
	return &DuckDBSampler{db: db}, nil
}

// Close releases the embedded database.
func (s *DuckDBSampler) Close() error {
	return s.db.Close()
}

// Sample fetches up to limit rows from the Parquet file at path.
// Any failure (file missing, not Parquet, query error) is reported as a
// SAMPLING_FAILED error; callers degrade it to zero rows.
func (s *DuckDBSampler) Sample(ctx context.Context, path string, limit int) ([]Row, error) {
	if limit <= 0 {
		return nil, nil
	}

	// read_parquet takes a string literal; escape embedded quotes.
	quoted := strings.ReplaceAll(path, "'", "''")
	query := fmt.Sprintf("SELECT * FROM read_parquet('%s') LIMIT %d", quoted, limit)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSamplingFailed, err, "sample %s", path)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSamplingFailed, err, "columns of %s", path)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSamplingFailed, err, "scan row of %s", path)
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return out, errors.Wrap(errors.ErrCodeSamplingFailed, err, "read rows of %s", path)
	}
	return out, nil
}

var _ Sampler = (*DuckDBSampler)(nil)
