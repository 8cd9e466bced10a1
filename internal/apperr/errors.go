// Package apperr defines the error kinds shared by the roadmap core.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrFormat        = errors.New("invalid format")
	ErrDuplicateName = errors.New("duplicate name")
	ErrRequiredField = errors.New("required field")
	ErrRange         = errors.New("out of range")
	ErrNotFound      = errors.New("not found")
)

// Error carries a kind plus the field or resource it concerns.
// errors.Is(err, ErrXxx) matches on Kind.
type Error struct {
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind.Error(), e.Field, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Field)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

// Formatf reports malformed external input.
func Formatf(format string, args ...any) error {
	return &Error{Kind: ErrFormat, Msg: fmt.Sprintf(format, args...)}
}

// Duplicate reports a uniqueness violation on the labelled field.
func Duplicate(label string) error {
	return &Error{Kind: ErrDuplicateName, Field: label, Msg: "name already in use"}
}

// Required reports a field that is empty after normalization.
func Required(label string) error {
	return &Error{Kind: ErrRequiredField, Field: label, Msg: "must not be empty"}
}

// Rangef reports a progress or ordering violation on the labelled field.
func Rangef(label, format string, args ...any) error {
	return &Error{Kind: ErrRange, Field: label, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced id that does not exist.
func NotFound(resource, id string) error {
	return &Error{Kind: ErrNotFound, Field: resource, Msg: fmt.Sprintf("%q does not exist", id)}
}

// Field returns the field or resource label carried by err, if any.
func Field(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// Kind returns the sentinel kind of err, or nil when err is not one of ours.
func Kind(err error) error {
	for _, kind := range []error{ErrFormat, ErrDuplicateName, ErrRequiredField, ErrRange, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
