// Package output renders annotation tables, validation summaries and
// statistics as plain console text.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/inodb/grit/internal/annotation"
)

// Styles holds the text styles used for section banners and status lines.
type Styles struct {
	Banner lipgloss.Style
	OK     lipgloss.Style
	Error  lipgloss.Style
	Muted  lipgloss.Style
}

// NewStyles creates styles bound to w. Color is only emitted when w is a terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Banner: r.NewStyle().Bold(true),
		OK:     r.NewStyle().Foreground(lipgloss.Color("2")),
		Error:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Muted:  r.NewStyle().Faint(true),
	}
}

// TableWriter writes annotation records as an aligned table with a row index.
type TableWriter struct {
	w *tabwriter.Writer
}

// NewTableWriter creates a new table writer.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{
		w: tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight),
	}
}

// WriteHeader writes the column header line.
func (tw *TableWriter) WriteHeader() error {
	_, err := fmt.Fprintln(tw.w, "\t"+strings.Join(annotation.ColumnNames[:], "\t")+"\t")
	return err
}

// Write writes one record under the given row index.
func (tw *TableWriter) Write(row int, r *annotation.Record) error {
	chrom := r.Chrom
	if r.Normalized() {
		chrom = strconv.Itoa(r.Chromosome)
	}
	_, err := fmt.Fprintf(tw.w, "%d\t%s\t%d\t%d\t%s\t%s\t\n",
		row, chrom, r.Start, r.End, r.Feature, r.Strand)
	return err
}

// Flush flushes the writer.
func (tw *TableWriter) Flush() error {
	return tw.w.Flush()
}

// WriteRecords writes a full table of records, or a short notice when there are none.
func WriteRecords(w io.Writer, records []annotation.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No matching records.")
		return err
	}

	tw := NewTableWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for i := range records {
		if err := tw.Write(i, &records[i]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteTable writes every record of t keyed by its row index.
func WriteTable(w io.Writer, t *annotation.Table) error {
	tw := NewTableWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for i := range t.Records {
		if err := tw.Write(i, &t.Records[i]); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n[%d rows x %d columns]\n", t.Len(), annotation.NumColumns)
	return err
}
