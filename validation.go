package jwtcodec

import (
	"fmt"
)

// checkSize rejects input longer than limit. A limit of zero disables the
// check.
func checkSize(field string, input string, limit int) error {
	if limit <= 0 || len(input) <= limit {
		return nil
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%d bytes exceeds the limit of %d", len(input), limit),
		Err:     ErrTokenTooLarge,
	}
}
