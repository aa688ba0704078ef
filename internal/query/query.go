// Package query provides filters and summary statistics over a validated
// annotation table.
package query

import (
	"sort"

	"github.com/inodb/grit/internal/annotation"
)

// Querier answers the shell's questions about a validated table.
type Querier interface {
	// ByPosition returns records on chrom. When pos is non-nil only
	// records with Start < *pos < End are returned.
	ByPosition(chrom int, pos *int64) ([]annotation.Record, error)
	// ByFeature returns records whose feature name equals name.
	ByFeature(name string) ([]annotation.Record, error)
	// Stats summarizes the whole table.
	Stats() (*Stats, error)
}

// Memory filters an in-memory table directly.
type Memory struct {
	table *annotation.Table
}

// NewMemory creates a Querier over t. The table must already be validated.
func NewMemory(t *annotation.Table) *Memory {
	return &Memory{table: t}
}

// ByPosition implements Querier.
func (m *Memory) ByPosition(chrom int, pos *int64) ([]annotation.Record, error) {
	return m.filter(func(r *annotation.Record) bool {
		if r.Chromosome != chrom {
			return false
		}
		return pos == nil || (r.Start < *pos && *pos < r.End)
	}), nil
}

// ByFeature implements Querier.
func (m *Memory) ByFeature(name string) ([]annotation.Record, error) {
	return m.filter(func(r *annotation.Record) bool {
		return r.Feature == name
	}), nil
}

// Stats implements Querier.
func (m *Memory) Stats() (*Stats, error) {
	return Compute(m.table), nil
}

func (m *Memory) filter(keep func(r *annotation.Record) bool) []annotation.Record {
	var out []annotation.Record
	for i := range m.table.Records {
		r := &m.table.Records[i]
		if keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

// Stats holds table-wide summary values.
type Stats struct {
	Records    int
	Features   int // distinct (chromosome, start) pairs
	MinLength  int64
	MaxLength  int64
	MeanLength float64
	Strands    []StrandCount
}

// StrandCount is the number of records on one strand of one chromosome.
type StrandCount struct {
	Chromosome int
	Strand     string
	Count      int
}

type featureKey struct {
	chrom int
	start int64
}

// Compute derives Stats from t. Lengths are End - Start per record.
func Compute(t *annotation.Table) *Stats {
	s := &Stats{Records: t.Len()}
	if t.Len() == 0 {
		return s
	}

	features := make(map[featureKey]struct{}, t.Len())
	strands := make(map[StrandCount]int)
	var sum float64

	for i := range t.Records {
		r := &t.Records[i]
		features[featureKey{r.Chromosome, r.Start}] = struct{}{}
		strands[StrandCount{Chromosome: r.Chromosome, Strand: r.Strand}]++

		l := r.Length()
		if i == 0 || l < s.MinLength {
			s.MinLength = l
		}
		if i == 0 || l > s.MaxLength {
			s.MaxLength = l
		}
		sum += float64(l)
	}

	s.Features = len(features)
	s.MeanLength = sum / float64(t.Len())

	s.Strands = make([]StrandCount, 0, len(strands))
	for k, n := range strands {
		k.Count = n
		s.Strands = append(s.Strands, k)
	}
	SortStrandCounts(s.Strands)

	return s
}

// SortStrandCounts orders counts by chromosome, then strand.
func SortStrandCounts(c []StrandCount) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].Chromosome != c[j].Chromosome {
			return c[i].Chromosome < c[j].Chromosome
		}
		return c[i].Strand < c[j].Strand
	})
}
