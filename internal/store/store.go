// Package store keeps a validated annotation table in DuckDB and answers
// shell queries with SQL.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/grit/internal/annotation"
	"github.com/inodb/grit/internal/query"
)

// Store manages a DuckDB connection holding one annotation table.
type Store struct {
	db   *sql.DB
	path string
}

var _ query.Querier = (*Store)(nil)

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS annotations (
		row_idx BIGINT PRIMARY KEY,
		chrom VARCHAR,
		chromosome BIGINT,
		start_pos BIGINT,
		end_pos BIGINT,
		feature_name VARCHAR,
		strand VARCHAR
	)`)
	return err
}

// Load replaces the stored table with t using the Appender API.
// Only normalized records are written.
func (s *Store) Load(ctx context.Context, t *annotation.Table) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM annotations"); err != nil {
		return fmt.Errorf("clear annotations: %w", err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "annotations")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := range t.Records {
		r := &t.Records[i]
		if !r.Normalized() {
			return fmt.Errorf("row %d: chromosome %q is not normalized", i, r.Chrom)
		}
		if err := appender.AppendRow(
			int64(i), r.Chrom, int64(r.Chromosome),
			r.Start, r.End, r.Feature, r.Strand,
		); err != nil {
			return fmt.Errorf("append annotation: %w", err)
		}
	}

	return appender.Flush()
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM annotations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count annotations: %w", err)
	}
	return n, nil
}

const selectRecords = `SELECT chrom, chromosome, start_pos, end_pos, feature_name, strand
	FROM annotations`

// ByPosition implements query.Querier.
func (s *Store) ByPosition(chrom int, pos *int64) ([]annotation.Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if pos == nil {
		rows, err = s.db.Query(selectRecords+` WHERE chromosome=? ORDER BY row_idx`, chrom)
	} else {
		rows, err = s.db.Query(selectRecords+` WHERE chromosome=? AND start_pos < ? AND end_pos > ?
			ORDER BY row_idx`, chrom, *pos, *pos)
	}
	if err != nil {
		return nil, fmt.Errorf("query by position: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ByFeature implements query.Querier.
func (s *Store) ByFeature(name string) ([]annotation.Record, error) {
	rows, err := s.db.Query(selectRecords+` WHERE feature_name=? ORDER BY row_idx`, name)
	if err != nil {
		return nil, fmt.Errorf("query by feature: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Stats implements query.Querier.
func (s *Store) Stats() (*query.Stats, error) {
	st := &query.Stats{}

	var (
		minLen, maxLen sql.NullInt64
		meanLen        sql.NullFloat64
	)
	if err := s.db.QueryRow(`SELECT
		COUNT(*),
		(SELECT COUNT(*) FROM (SELECT DISTINCT chromosome, start_pos FROM annotations)),
		MIN(end_pos - start_pos),
		MAX(end_pos - start_pos),
		AVG(end_pos - start_pos)
		FROM annotations`).Scan(&st.Records, &st.Features, &minLen, &maxLen, &meanLen); err != nil {
		return nil, fmt.Errorf("query length stats: %w", err)
	}
	st.MinLength = minLen.Int64
	st.MaxLength = maxLen.Int64
	st.MeanLength = meanLen.Float64

	rows, err := s.db.Query(`SELECT chromosome, strand, COUNT(*)
		FROM annotations
		GROUP BY chromosome, strand
		ORDER BY chromosome, strand`)
	if err != nil {
		return nil, fmt.Errorf("query strand counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c query.StrandCount
		if err := rows.Scan(&c.Chromosome, &c.Strand, &c.Count); err != nil {
			return nil, fmt.Errorf("scan strand count: %w", err)
		}
		st.Strands = append(st.Strands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strand counts: %w", err)
	}
	// DuckDB collation may differ from byte order for strand symbols.
	query.SortStrandCounts(st.Strands)

	return st, nil
}

// scanRecords scans rows into annotation records.
func scanRecords(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]annotation.Record, error) {
	var records []annotation.Record
	for rows.Next() {
		var (
			chrom, feature, strand string
			chromosome             int
			start, end             int64
		)
		if err := rows.Scan(&chrom, &chromosome, &start, &end, &feature, &strand); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		r := annotation.NewRecord(chrom, start, end, feature, strand)
		r.Chromosome = chromosome
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}
	return records, nil
}
