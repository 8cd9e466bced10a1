// Package validation holds the name, progress and quarter-range rules
// shared by live edits and document import.
package validation

import (
	"math"
	"strings"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/calendar"
)

// Progress bounds, inclusive.
const (
	MinProgress = 0
	MaxProgress = 100
)

// NormalizeName trims text and collapses internal whitespace runs to a
// single space.
func NormalizeName(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NameKey is the comparison key used for uniqueness checks.
func NameKey(text string) string {
	return strings.ToLower(NormalizeName(text))
}

// EnsureUniqueName fails when candidate matches any existing name after
// normalization, ignoring case.
func EnsureUniqueName(candidate string, existing []string, label string) error {
	key := NameKey(candidate)
	for _, name := range existing {
		if NameKey(name) == key {
			return apperr.Duplicate(label)
		}
	}
	return nil
}

// EnsureNamePresent returns the normalized candidate, failing when nothing
// is left.
func EnsureNamePresent(candidate, label string) (string, error) {
	name := NormalizeName(candidate)
	if name == "" {
		return "", apperr.Required(label)
	}
	return name, nil
}

// EnsureProgressInRange checks 0 <= value <= 100.
func EnsureProgressInRange(value int) error {
	if value < MinProgress || value > MaxProgress {
		return apperr.Rangef("progress", "must be between %d and %d, got %d", MinProgress, MaxProgress, value)
	}
	return nil
}

// EnsureProgressNumber accepts untrusted numeric progress. Non-integral or
// out-of-range values fail.
func EnsureProgressNumber(value float64) (int, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, apperr.Rangef("progress", "must be an integer, got %v", value)
	}
	if value < MinProgress || value > MaxProgress {
		return 0, apperr.Rangef("progress", "must be between %d and %d, got %v", MinProgress, MaxProgress, value)
	}
	return int(value), nil
}

// EnsureQuarterOrder fails when start is after end.
func EnsureQuarterOrder(start, end calendar.Quarter) error {
	if calendar.ToIndex(start) > calendar.ToIndex(end) {
		return apperr.Rangef("quarter range", "start %s is after end %s", start, end)
	}
	return nil
}

// ValidateTaskFields runs the task checks in order: name, progress, quarter
// range. existing holds the other task names in the same scope.
func ValidateTaskFields(name string, existing []string, progress int, start, end calendar.Quarter) (string, error) {
	normalized, err := EnsureNamePresent(name, "task name")
	if err != nil {
		return "", err
	}
	if err := EnsureUniqueName(normalized, existing, "task name"); err != nil {
		return "", err
	}
	if err := EnsureProgressInRange(progress); err != nil {
		return "", err
	}
	if err := EnsureQuarterOrder(start, end); err != nil {
		return "", err
	}
	return normalized, nil
}
