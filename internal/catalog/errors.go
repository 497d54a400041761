package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField marks a record that lacks a required field and is
	// dropped from the batch.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidEncoding marks an embedded sub-document that is not
	// decodable under any known shape; the sub-field degrades to empty.
	ErrInvalidEncoding = errors.New("invalid embedded encoding")
)

// MissingFieldError names the field a record lacked.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
