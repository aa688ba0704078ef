// Package validate checks annotation tables against the five-column schema.
//
// Each column has an independent predicate. A Validator applies them row by
// row in one of two modes: FailFast stops at the first bad value, CollectAll
// checks everything and counts failures per column.
package validate

import (
	"regexp"
	"strconv"
	"strings"
)

// ChromPrefix is the literal prefix every chromosome value carries in the input.
const ChromPrefix = "chr"

// MaxChromosome is the highest autosome number accepted.
const MaxChromosome = 22

// MaxPosition is the highest coordinate accepted for start and end (2^32).
const MaxPosition int64 = 1 << 32

var featureNameRe = regexp.MustCompile(`^[\w_()-]*$`)

// ValidChrom reports whether s is "chr" followed by a number in 1..22 and
// returns that number.
func ValidChrom(s string) (int, bool) {
	rest, ok := strings.CutPrefix(s, ChromPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > MaxChromosome {
		return 0, false
	}
	return n, true
}

// ValidStartPosition reports whether 0 < v < 2^32+1.
func ValidStartPosition(v int64) bool {
	return v > 0 && v <= MaxPosition
}

// ValidEndPosition reports whether end is in range and past start.
func ValidEndPosition(end, start int64) bool {
	return end > 0 && end <= MaxPosition && end > start
}

// ValidFeatureName reports whether s contains only word characters,
// parentheses and hyphens. The empty string is valid.
func ValidFeatureName(s string) bool {
	return featureNameRe.MatchString(s)
}

// ValidStrand reports whether s is "+" or "-".
func ValidStrand(s string) bool {
	return s == "+" || s == "-"
}
