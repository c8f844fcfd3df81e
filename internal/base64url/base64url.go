// Package base64url implements the unpadded, URL-safe base64 alphabet used by
// compact JWT segments.
package base64url

import (
	"errors"
	"fmt"

	asmbase64 "github.com/segmentio/asm/base64"
)

// ErrInvalidBase64 is wrapped by every error returned from Decode.
var ErrInvalidBase64 = errors.New("invalid base64url")

var enc = asmbase64.RawURLEncoding

// Encode returns the unpadded URL-safe encoding of src. It never fails.
func Encode(src []byte) string {
	return enc.EncodeToString(src)
}

// EncodeString encodes the bytes of s.
func EncodeString(s string) string {
	return enc.EncodeToString([]byte(s))
}

// Decode decodes s, accepting only the canonical unpadded URL-safe form.
// Padding, whitespace, foreign characters, impossible lengths and non-zero
// trailing bits are all rejected.
func Decode(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if !isAlphabet(s[i]) {
			return nil, fmt.Errorf("%w: illegal character %q at offset %d", ErrInvalidBase64, s[i], i)
		}
	}

	if len(s)%4 == 1 {
		return nil, fmt.Errorf("%w: length %d is not a valid unpadded encoding", ErrInvalidBase64, len(s))
	}

	out, err := enc.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}

	// A tail with non-zero discarded bits decodes, but does not re-encode to
	// the same text.
	if len(s)%4 != 0 && enc.EncodeToString(out) != s {
		return nil, fmt.Errorf("%w: non-canonical trailing bits at offset %d", ErrInvalidBase64, len(s)-1)
	}

	return out, nil
}

func isAlphabet(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_'
}
