// Package docid implements the document identifier scheme used by the
// catalog: "stp<YYYYMM>_<NNNN>", where the month stub is derived from the
// storage engine's clock and the 4-digit sequence number restarts at 0001 at
// the beginning of each calendar month.
package docid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Prefix is the fixed leading tag shared by all document identifiers.
const Prefix = "stp"

// SequenceDigits is the width of the zero-padded sequence suffix.
const SequenceDigits = 4

// MaxSequence is the largest sequence number representable in a single month.
const MaxSequence = 9999

var identifierRE = regexp.MustCompile(`^stp\d{6}_\d{4}$`)

// MonthStub returns the month-scoped identifier prefix for t, e.g.
// "stp202608_" for any time in August 2026.
func MonthStub(t time.Time) string {
	return fmt.Sprintf("%s%s_", Prefix, t.Format("200601"))
}

// Valid reports whether id is a well-formed document identifier.
func Valid(id string) bool {
	return identifierRE.MatchString(id)
}

// Sequence parses the numeric suffix of id. An identifier that does not match
// the expected format yields an error; callers treat this as a data-integrity
// failure because it means a malformed identifier was previously stored.
func Sequence(id string) (int, error) {
	if !Valid(id) {
		return 0, fmt.Errorf("malformed document identifier %q", id)
	}
	suffix := id[strings.LastIndex(id, "_")+1:]
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("parsing sequence suffix of %q: %w", id, err)
	}
	return seq, nil
}

// Format renders an identifier from a month stub and sequence number.
func Format(stub string, seq int) (string, error) {
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("sequence number %d out of range [1, %d]", seq, MaxSequence)
	}
	return fmt.Sprintf("%s%0*d", stub, SequenceDigits, seq), nil
}
