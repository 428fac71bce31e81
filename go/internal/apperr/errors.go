// Package apperr defines the error taxonomy shared by the group and timer
// mutation paths. Handlers map these onto HTTP status codes; everything else
// wraps them with fmt.Errorf("...: %w", err) for context.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a group or timer id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is not a member of the group.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when a transition guard is violated, e.g.
	// pausing an already-paused timer or reusing a group name.
	ErrConflict = errors.New("conflict")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// NewValidation creates a validation error for a single field.
func NewValidation(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// Add records a field level validation error.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
