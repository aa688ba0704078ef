package output

import (
	"fmt"
	"io"

	"github.com/inodb/grit/internal/annotation"
	"github.com/inodb/grit/internal/query"
	"github.com/inodb/grit/internal/validate"
)

// WriteValidationSummary writes one status line per column followed by
// the overall outcome.
func WriteValidationSummary(w io.Writer, r *validate.Report) {
	st := NewStyles(w)

	for col, name := range annotation.ColumnNames {
		n := r.Counts[col]
		switch {
		case n == 0:
			fmt.Fprintln(w, st.OK.Render(fmt.Sprintf("%s field reported no errors!", name)))
		case n == 1:
			fmt.Fprintln(w, st.Error.Render(fmt.Sprintf("%s field reported 1 error", name)))
		default:
			fmt.Fprintln(w, st.Error.Render(fmt.Sprintf("%s field reported %d errors", name, n)))
		}
	}

	if r.OK() {
		fmt.Fprintf(w, "\nData validation complete! %d rows checked.\n", r.Rows)
		return
	}
	fmt.Fprintf(w, "\nValidation found %d errors in %d rows.\n", r.Total(), r.Rows)
}

// WriteStats writes the metrics report for the statistics action.
func WriteStats(w io.Writer, s *query.Stats) error {
	st := NewStyles(w)

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.Banner.Render("================== Your Metrics ======================"))
	fmt.Fprintln(w)

	if s.Records == 0 {
		_, err := fmt.Fprintln(w, "No records in data set.")
		return err
	}

	fmt.Fprintf(w, "Features in data set: %d\n", s.Features)
	fmt.Fprintf(w, "The smallest length is: %d\n", s.MinLength)
	fmt.Fprintf(w, "The largest length is: %d\n", s.MaxLength)
	fmt.Fprintf(w, "The average length is: %.2f\n", s.MeanLength)

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.Banner.Render("==== Features per Strand ===="))
	fmt.Fprintln(w)

	tw := NewTableWriter(w)
	fmt.Fprintln(tw.w, "chromosome\tstrand\tcount\t")
	for _, c := range s.Strands {
		fmt.Fprintf(tw.w, "%d\t%s\t%d\t\n", c.Chromosome, c.Strand, c.Count)
	}
	return tw.Flush()
}
