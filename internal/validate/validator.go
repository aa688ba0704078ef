package validate

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/grit/internal/annotation"
)

// ErrFieldValidation is matched by every *FieldError.
var ErrFieldValidation = errors.New("field validation failed")

// Mode selects how a Validator reacts to a bad value.
type Mode int

const (
	// FailFast stops at the first bad value and returns it as an error.
	FailFast Mode = iota
	// CollectAll checks every value, logs and counts each failure.
	CollectAll
)

func (m Mode) String() string {
	switch m {
	case FailFast:
		return "fail-fast"
	case CollectAll:
		return "collect-all"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a config or flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail-fast", "failfast", "fast":
		return FailFast, nil
	case "collect-all", "collectall", "all", "":
		return CollectAll, nil
	default:
		return 0, fmt.Errorf("unknown validation mode %q (want fail-fast or collect-all)", s)
	}
}

// FieldError identifies one bad value by its row and column.
type FieldError struct {
	Value string
	Row   int
	Col   int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("Your value, %s, at row %d and col %d does not contain appropriate data", e.Value, e.Row, e.Col)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrFieldValidation
}

// Report summarizes a validation pass.
type Report struct {
	Mode     Mode
	Rows     int // rows scanned
	Counts   [annotation.NumColumns]int
	Failures []*FieldError
}

// Total returns the number of failures across all columns.
func (r *Report) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// OK reports whether the pass found no failures.
func (r *Report) OK() bool {
	return r.Total() == 0
}

func (r *Report) add(fe *FieldError) {
	r.Counts[fe.Col]++
	r.Failures = append(r.Failures, fe)
}

// ErrorLog receives every failure found in CollectAll mode.
type ErrorLog interface {
	Record(fe *FieldError) error
}

// Validator applies the column predicates to a table.
type Validator struct {
	mode   Mode
	errLog ErrorLog
	logger *zap.Logger
}

// New creates a validator in the given mode with no error log.
func New(mode Mode) *Validator {
	return &Validator{
		mode:   mode,
		logger: zap.NewNop(),
	}
}

// SetErrorLog sets where CollectAll failures are written.
func (v *Validator) SetErrorLog(l ErrorLog) {
	v.errLog = l
}

// SetLogger sets the logger for progress and debug messages.
func (v *Validator) SetLogger(l *zap.Logger) {
	v.logger = l
}

// Validate checks every row of t in order. A row whose chromosome passes is
// normalized in place before its remaining columns are checked.
//
// In FailFast mode the first failure is returned as a *FieldError. In
// CollectAll mode field failures never produce an error; only a failure to
// write the error log does.
func (v *Validator) Validate(t *annotation.Table) (*Report, error) {
	report := &Report{Mode: v.mode}

	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		report.Rows++

		for _, col := range v.checkRow(r) {
			fe := &FieldError{Value: r.Value(col), Row: i, Col: col}
			report.add(fe)

			if v.mode == FailFast {
				v.logger.Debug("validation stopped",
					zap.Int("row", i),
					zap.String("column", annotation.ColumnNames[col]),
					zap.String("value", fe.Value))
				return report, fe
			}

			v.logger.Debug("invalid value",
				zap.Int("row", i),
				zap.String("column", annotation.ColumnNames[col]),
				zap.String("value", fe.Value))
			if v.errLog != nil {
				if err := v.errLog.Record(fe); err != nil {
					return report, fmt.Errorf("write error log: %w", err)
				}
			}
		}
	}

	v.logger.Info("validation finished",
		zap.Stringer("mode", v.mode),
		zap.Int("rows", report.Rows),
		zap.Int("errors", report.Total()))

	return report, nil
}

// checkRow returns the failing columns of r in column order. In FailFast
// mode it stops at the first one.
func (v *Validator) checkRow(r *annotation.Record) []int {
	var bad []int
	fail := func(col int) bool {
		bad = append(bad, col)
		return v.mode == FailFast
	}

	if n, ok := ValidChrom(r.Chrom); ok {
		r.Chromosome = n
	} else if fail(annotation.ColChromosome) {
		return bad
	}
	if !ValidStartPosition(r.Start) && fail(annotation.ColStartPos) {
		return bad
	}
	if !ValidEndPosition(r.End, r.Start) && fail(annotation.ColEndPos) {
		return bad
	}
	if !ValidFeatureName(r.Feature) && fail(annotation.ColFeatureName) {
		return bad
	}
	if !ValidStrand(r.Strand) {
		fail(annotation.ColStrand)
	}
	return bad
}
