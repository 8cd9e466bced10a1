package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/calendar"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  Define   Goals ": "Define Goals",
		"\tA\n B":           "A B",
		"":                  "",
		"   ":               "",
		"Single":            "Single",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnsureUniqueName(t *testing.T) {
	existing := []string{"Platform", "Data  Science"}
	if err := EnsureUniqueName("Mobile", existing, "team name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, candidate := range []string{"platform", "  PLATFORM ", "data science", "Data\tScience"} {
		err := EnsureUniqueName(candidate, existing, "team name")
		if !errors.Is(err, apperr.ErrDuplicateName) {
			t.Fatalf("expected duplicate for %q, got %v", candidate, err)
		}
		if apperr.Field(err) != "team name" {
			t.Fatalf("expected label to be carried, got %q", apperr.Field(err))
		}
	}
}

func TestEnsureNamePresent(t *testing.T) {
	name, err := EnsureNamePresent("  Roadmap  2025 ", "timeline name")
	if err != nil {
		t.Fatalf("EnsureNamePresent failed: %v", err)
	}
	if name != "Roadmap 2025" {
		t.Fatalf("expected normalized name, got %q", name)
	}
	if _, err := EnsureNamePresent(" \t ", "timeline name"); !errors.Is(err, apperr.ErrRequiredField) {
		t.Fatalf("expected ErrRequiredField, got %v", err)
	}
}

func TestProgressChecks(t *testing.T) {
	for _, v := range []int{0, 50, 100} {
		if err := EnsureProgressInRange(v); err != nil {
			t.Fatalf("progress %d rejected: %v", v, err)
		}
	}
	for _, v := range []int{-1, 101, 150} {
		if err := EnsureProgressInRange(v); !errors.Is(err, apperr.ErrRange) {
			t.Fatalf("expected ErrRange for %d, got %v", v, err)
		}
	}
	if got, err := EnsureProgressNumber(60); err != nil || got != 60 {
		t.Fatalf("EnsureProgressNumber(60) = %d, %v", got, err)
	}
	for _, v := range []float64{12.5, -3, 150, math.NaN(), math.Inf(1)} {
		if _, err := EnsureProgressNumber(v); !errors.Is(err, apperr.ErrRange) {
			t.Fatalf("expected ErrRange for %v, got %v", v, err)
		}
	}
}

func TestEnsureQuarterOrder(t *testing.T) {
	q1, q2 := calendar.New(2025, 1), calendar.New(2025, 2)
	if err := EnsureQuarterOrder(q1, q2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := EnsureQuarterOrder(q1, q1); err != nil {
		t.Fatalf("equal quarters should pass: %v", err)
	}
	if err := EnsureQuarterOrder(q2, q1); !errors.Is(err, apperr.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
}

func TestValidateTaskFieldsOrder(t *testing.T) {
	q1, q2 := calendar.New(2025, 1), calendar.New(2025, 2)
	existing := []string{"Define Goals"}

	name, err := ValidateTaskFields("  Ship  Beta ", existing, 10, q1, q2)
	if err != nil {
		t.Fatalf("ValidateTaskFields failed: %v", err)
	}
	if name != "Ship Beta" {
		t.Fatalf("expected normalized name, got %q", name)
	}

	// Everything invalid: the name is reported first.
	if _, err := ValidateTaskFields(" ", existing, 150, q2, q1); !errors.Is(err, apperr.ErrRequiredField) {
		t.Fatalf("expected name error first, got %v", err)
	}
	if _, err := ValidateTaskFields("define goals", existing, 150, q2, q1); !errors.Is(err, apperr.ErrDuplicateName) {
		t.Fatalf("expected duplicate error first, got %v", err)
	}
	// Progress before quarter order.
	_, err = ValidateTaskFields("New", existing, 150, q2, q1)
	if !errors.Is(err, apperr.ErrRange) || apperr.Field(err) != "progress" {
		t.Fatalf("expected progress error, got %v", err)
	}
	_, err = ValidateTaskFields("New", existing, 50, q2, q1)
	if !errors.Is(err, apperr.ErrRange) || apperr.Field(err) != "quarter range" {
		t.Fatalf("expected quarter range error, got %v", err)
	}
}
