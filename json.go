package jwtcodec

import (
	"github.com/cybergodev/jwtcodec/internal/transcode"
)

// ParseLenient parses hand-edited JSON: comments, unquoted keys, single
// quotes, trailing commas, hexadecimal numbers, Infinity and NaN are
// accepted. Blank text returns (nil, nil).
func ParseLenient(text string) (*Value, error) {
	return transcode.ParseLenient(text)
}

// ParseStrict parses RFC 8259 JSON.
func ParseStrict(data []byte) (*Value, error) {
	return transcode.ParseStrict(data)
}

// Compact serializes v without insignificant whitespace, keeping key order.
func Compact(v *Value) ([]byte, error) {
	return transcode.Compact(v)
}

// Pretty serializes v with indent spaces per level.
func Pretty(v *Value, indent int) ([]byte, error) {
	return transcode.Pretty(v, indent)
}

// FromGo converts a Go value (struct, map, slice, scalar) to a Value.
func FromGo(v any) (*Value, error) {
	return transcode.FromGo(v)
}

// Equal reports whether a and b hold the same JSON value, ignoring object
// key order. Nil equals JSON null.
func Equal(a, b *Value) bool {
	return transcode.Equal(a, b)
}
