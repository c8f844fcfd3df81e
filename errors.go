package jwtcodec

import (
	"errors"
	"fmt"

	"github.com/cybergodev/jwtcodec/internal/core"
	"github.com/cybergodev/jwtcodec/internal/signing"
)

// Errors returned by the codec. All of them match under errors.Is, also when
// they arrive wrapped in a *SegmentError or *ValidationError.
var (
	// Token structure and segment errors
	ErrMalformedToken = core.ErrMalformedToken
	ErrInvalidBase64  = core.ErrInvalidBase64
	ErrInvalidJSON    = core.ErrInvalidJSON
	ErrSerialization  = core.ErrSerialization

	// Input limits
	ErrTokenTooLarge = errors.New("input exceeds the configured maximum size")

	// Verification errors, only returned by Verify
	ErrSignatureInvalid = signing.ErrSignatureInvalid
	ErrSignatureMissing = errors.New("token has no signature")

	// Configuration errors
	ErrUnsupportedAlgorithm = signing.ErrUnsupportedAlgorithm
	ErrInvalidConfig        = errors.New("invalid configuration")

	// Inspection errors
	ErrNotInspectable = errors.New("token cannot be inspected")
)

// SegmentError reports which token segment an encode or decode failure
// belongs to. It unwraps to one of ErrInvalidBase64, ErrInvalidJSON or
// ErrSerialization and to the underlying cause.
type SegmentError = core.SegmentError

// ValidationError represents a validation error for a specific field.
// It provides detailed information about what validation failed and why.
type ValidationError struct {
	Field   string // The field that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for field '%s': %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
