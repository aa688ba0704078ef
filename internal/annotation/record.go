// Package annotation provides the in-memory annotation table and the
// tab-separated file loader that fills it.
package annotation

import "fmt"

// Column positions in the five-column annotation format.
const (
	ColChromosome = iota
	ColStartPos
	ColEndPos
	ColFeatureName
	ColStrand

	NumColumns
)

// ColumnNames holds the display name of each column, indexed by position.
var ColumnNames = [NumColumns]string{
	"chromosome",
	"start_pos",
	"end_pos",
	"feature_name",
	"strand",
}

// Record is one annotation row.
type Record struct {
	Chrom      string // as read, e.g. "chr7"
	Chromosome int    // normalized chromosome number; 0 until normalized
	Start      int64
	End        int64
	Feature    string
	Strand     string

	raw [NumColumns]string
}

// NewRecord builds a record from already-typed values. The raw column text
// is derived from the values, so Value reports what a file would contain.
func NewRecord(chrom string, start, end int64, feature, strand string) Record {
	r := Record{
		Chrom:   chrom,
		Start:   start,
		End:     end,
		Feature: feature,
		Strand:  strand,
	}
	r.raw = [NumColumns]string{
		chrom,
		fmt.Sprintf("%d", start),
		fmt.Sprintf("%d", end),
		feature,
		strand,
	}
	return r
}

// Value returns the column text exactly as it appeared in the input.
func (r *Record) Value(col int) string {
	if col < 0 || col >= NumColumns {
		return ""
	}
	return r.raw[col]
}

// Normalized reports whether the chromosome has been converted to a number.
func (r *Record) Normalized() bool {
	return r.Chromosome > 0
}

// Length returns End - Start.
func (r *Record) Length() int64 {
	return r.End - r.Start
}

// Table is an ordered set of records. The index of a record is its row
// number in error reports.
type Table struct {
	Records []Record
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Records)
}

// Row returns a pointer to the record at index i so callers can update it in place.
func (t *Table) Row(i int) *Record {
	return &t.Records[i]
}

// Append adds a record to the end of the table.
func (t *Table) Append(r Record) {
	t.Records = append(t.Records, r)
}
