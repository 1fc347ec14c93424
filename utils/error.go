package utils

import (
	"errors"
	"fmt"
)

// Error taxonomy:
// - ErrorRecordNotFound: referenced report/profile is absent. Permanent; do not retry.
// - ValidationError: missing/invalid required field. Permanent for the given input.
// - ErrorUnauthorized: role/ownership mismatch.
// - ErrorStoreUnavailable: transient store/network failure; caller may retry.
var (
	ErrorRecordNotFound   = errors.New("record not found")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorStoreUnavailable = errors.New("store unavailable")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
