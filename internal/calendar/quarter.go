// Package calendar implements quarter arithmetic: labels, linear indices,
// ordering and ranges.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/akyairhashvil/roadmap/internal/apperr"
)

// BaseYear anchors the linear index. Index 0 is Q1 of BaseYear.
const BaseYear = 2000

var labelPattern = regexp.MustCompile(`^[Qq]([1-4])\s+(\d{4})$`)

// Quarter is a calendar quarter. The zero value is not a valid quarter.
type Quarter struct {
	Year   int
	Number int
}

// New returns the quarter for year and number without validation.
func New(year, number int) Quarter {
	return Quarter{Year: year, Number: number}
}

// Valid reports whether q can be rendered as a label and parsed back.
func (q Quarter) Valid() bool {
	return q.Number >= 1 && q.Number <= 4 && q.Year >= 0 && q.Year <= 9999
}

// ParseLabel parses "Q<n> <yyyy>", case-insensitively, ignoring
// surrounding whitespace.
func ParseLabel(text string) (Quarter, error) {
	m := labelPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Quarter{}, apperr.Formatf("quarter label %q must look like \"Q1 2025\"", text)
	}
	number, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	return Quarter{Year: year, Number: number}, nil
}

// FormatLabel renders q as "Q<n> <yyyy>".
func FormatLabel(q Quarter) string {
	return fmt.Sprintf("Q%d %04d", q.Number, q.Year)
}

func (q Quarter) String() string { return FormatLabel(q) }

// ToIndex linearizes q relative to BaseYear.
func ToIndex(q Quarter) int {
	return (q.Year-BaseYear)*4 + (q.Number - 1)
}

// Index is shorthand for ToIndex(q).
func (q Quarter) Index() int { return ToIndex(q) }

// FromIndex is the inverse of ToIndex. Negative indices map to years
// before BaseYear.
func FromIndex(index int) Quarter {
	years := index / 4
	rem := index % 4
	if rem < 0 {
		rem += 4
		years--
	}
	return Quarter{Year: BaseYear + years, Number: rem + 1}
}

// Compare orders quarters by index, returning -1, 0 or 1.
func Compare(a, b Quarter) int {
	ai, bi := ToIndex(a), ToIndex(b)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	}
	return 0
}

// Before reports whether q sorts strictly before other.
func (q Quarter) Before(other Quarter) bool { return Compare(q, other) < 0 }

// After reports whether q sorts strictly after other.
func (q Quarter) After(other Quarter) bool { return Compare(q, other) > 0 }

// Add moves q by n quarters.
func (q Quarter) Add(n int) Quarter { return FromIndex(ToIndex(q) + n) }

// Next returns the following quarter.
func (q Quarter) Next() Quarter { return q.Add(1) }

// Span counts the quarters in [start, end]; it is zero or negative when
// start is after end.
func Span(start, end Quarter) int {
	return ToIndex(end) - ToIndex(start) + 1
}

// Range lists every quarter from start to end inclusive.
func Range(start, end Quarter) ([]Quarter, error) {
	if start.After(end) {
		return nil, apperr.Rangef("quarter range", "%s is after %s", start, end)
	}
	out := make([]Quarter, 0, Span(start, end))
	for i := ToIndex(start); i <= ToIndex(end); i++ {
		out = append(out, FromIndex(i))
	}
	return out, nil
}

// Of returns the quarter containing t.
func Of(t time.Time) Quarter {
	return Quarter{Year: t.Year(), Number: (int(t.Month())-1)/3 + 1}
}

// Window returns the earliest and latest of qs. ok is false when qs is empty.
func Window(qs ...Quarter) (lo, hi Quarter, ok bool) {
	if len(qs) == 0 {
		return Quarter{}, Quarter{}, false
	}
	lo, hi = qs[0], qs[0]
	for _, q := range qs[1:] {
		if q.Before(lo) {
			lo = q
		}
		if q.After(hi) {
			hi = q
		}
	}
	return lo, hi, true
}

// MarshalText encodes q as its label.
func (q Quarter) MarshalText() ([]byte, error) {
	if !q.Valid() {
		return nil, apperr.Formatf("cannot encode invalid quarter %d/%d", q.Year, q.Number)
	}
	return []byte(FormatLabel(q)), nil
}

// UnmarshalText decodes a label produced by MarshalText.
func (q *Quarter) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
