// Package shell provides the interactive query loop over a validated table.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/grit/internal/output"
	"github.com/inodb/grit/internal/query"
	"github.com/inodb/grit/internal/validate"
)

// DefaultMaxAttempts is how many invalid answers a sub-prompt accepts
// before returning to the main menu.
const DefaultMaxAttempts = 5

// errTooManyAttempts ends a sub-prompt and returns to the main menu.
var errTooManyAttempts = errors.New("too many invalid attempts")

// Shell reads commands from in and writes results to out.
type Shell struct {
	in          *bufio.Scanner
	lines       chan string
	out         io.Writer
	q           query.Querier
	maxAttempts int
	logger      *zap.Logger
}

// New creates a shell answering queries with q.
func New(in io.Reader, out io.Writer, q query.Querier) *Shell {
	return &Shell{
		in:          bufio.NewScanner(in),
		out:         out,
		q:           q,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
}

// SetMaxAttempts sets the number of invalid answers allowed per sub-prompt.
// Values below 1 keep the current setting.
func (s *Shell) SetMaxAttempts(n int) {
	if n > 0 {
		s.maxAttempts = n
	}
}

// SetLogger sets the logger for query diagnostics.
func (s *Shell) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Run loops over the main menu until the user exits, input ends or ctx is
// cancelled. Exit and end of input both return nil. Cancellation returns
// ctx.Err() even while a prompt is waiting for input.
func (s *Shell) Run(ctx context.Context) error {
	if s.lines == nil {
		s.lines = make(chan string)
		go s.readLines()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := s.prompt(ctx, "Query data, get stats, or exit? (q/s/x): ")
		if err != nil {
			return endOfInput(err)
		}

		switch choice {
		case "q":
			err = s.querySubmenu(ctx)
		case "s":
			err = s.stats()
		case "x":
			fmt.Fprintln(s.out, "All done.")
			return nil
		default:
			fmt.Fprintln(s.out, "invalid input, please try again")
			continue
		}

		switch {
		case err == nil:
		case errors.Is(err, errTooManyAttempts):
			fmt.Fprintln(s.out, "too many invalid attempts, returning to main menu")
		default:
			return endOfInput(err)
		}
	}
}

func (s *Shell) querySubmenu(ctx context.Context) error {
	choice, err := ask(ctx, s, "Search by pos or feat? (pos/feat): ",
		"invalid input please try again (pos/feat)",
		func(in string) (string, bool) {
			return in, in == "pos" || in == "feat"
		})
	if err != nil {
		return err
	}

	if choice == "pos" {
		return s.queryPosition(ctx)
	}
	return s.queryFeature(ctx)
}

func (s *Shell) queryPosition(ctx context.Context) error {
	chrom, err := ask(ctx, s, "Enter chromosome value (format chr##): ",
		"invalid input, please try again",
		validate.ValidChrom)
	if err != nil {
		return err
	}

	pos, err := ask(ctx, s, "OPTIONAL: Enter position value. Must be a number 1 - 2^32. Or enter no: ",
		"invalid input, value must be 1 - 2^32. Please try again",
		parsePosition)
	if err != nil {
		return err
	}

	s.logger.Debug("query by position", zap.Int("chromosome", chrom), zap.Int64p("position", pos))
	records, err := s.q.ByPosition(chrom, pos)
	if err != nil {
		return fmt.Errorf("query by position: %w", err)
	}
	return output.WriteRecords(s.out, records)
}

func (s *Shell) queryFeature(ctx context.Context) error {
	feature, err := ask(ctx, s, "Enter feature name: ",
		"invalid input, please try again",
		func(in string) (string, bool) {
			return in, validate.ValidFeatureName(in)
		})
	if err != nil {
		return err
	}

	s.logger.Debug("query by feature", zap.String("feature", feature))
	records, err := s.q.ByFeature(feature)
	if err != nil {
		return fmt.Errorf("query by feature: %w", err)
	}
	return output.WriteRecords(s.out, records)
}

func (s *Shell) stats() error {
	st, err := s.q.Stats()
	if err != nil {
		return fmt.Errorf("compute statistics: %w", err)
	}
	return output.WriteStats(s.out, st)
}

// parsePosition accepts "no" (unconstrained) or a valid start position.
func parsePosition(in string) (*int64, bool) {
	switch in {
	case "no", "No", "NO", "n", "N":
		return nil, true
	}
	v, err := strconv.ParseInt(in, 10, 64)
	if err != nil || !validate.ValidStartPosition(v) {
		return nil, false
	}
	return &v, true
}

// ask prompts until parse accepts the answer, at most maxAttempts times.
func ask[T any](ctx context.Context, s *Shell, question, retry string, parse func(string) (T, bool)) (T, error) {
	var zero T
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		in, err := s.prompt(ctx, question)
		if err != nil {
			return zero, err
		}
		if v, ok := parse(in); ok {
			return v, nil
		}
		fmt.Fprintln(s.out, retry)
	}
	return zero, errTooManyAttempts
}

// readLines feeds input lines to prompt until the scanner stops.
func (s *Shell) readLines() {
	defer close(s.lines)
	for s.in.Scan() {
		s.lines <- s.in.Text()
	}
}

// prompt writes question and waits for one trimmed line. It returns io.EOF
// at the end of input and ctx.Err() on cancellation.
func (s *Shell) prompt(ctx context.Context, question string) (string, error) {
	fmt.Fprint(s.out, question)
	select {
	case <-ctx.Done():
		fmt.Fprintln(s.out)
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			fmt.Fprintln(s.out)
			if err := s.in.Err(); err != nil {
				return "", fmt.Errorf("read input: %w", err)
			}
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// endOfInput maps a clean end of input to nil.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
