package services

import "errors"

var (
	// ErrNotFound covers rows that do not exist or belong to another teacher.
	ErrNotFound = errors.New("not found")
	// ErrNoPayments is the non-fatal "nothing to undo" condition, distinct
	// from a store failure.
	ErrNoPayments = errors.New("no payments recorded")
)

// ValidationError carries per-field violations detected before any write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// AsValidation returns the embedded field map when err is a ValidationError.
func AsValidation(err error) (map[string]string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}
