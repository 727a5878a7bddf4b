package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store, the engines and the API.
var (
	ErrNotFound            = errors.New("not found")
	ErrInUse               = errors.New("cannot delete, still in use")
	ErrConflict            = errors.New("already exists")
	ErrDocumentApplied     = errors.New("document already applied")
	ErrUnknownDocumentType = errors.New("unknown document type")
)

// ValidationError reports an invalid field value. It is always returned
// before any state has been changed.
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

// Invalid is shorthand for constructing a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
