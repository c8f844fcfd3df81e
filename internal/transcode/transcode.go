// Package transcode converts between JSON text and ordered fastjson values.
//
// Two grammars are exposed on purpose: ParseLenient accepts the relaxed,
// JSON5-style text a person types into an editor, and ParseStrict accepts only
// RFC 8259 JSON as found inside token segments. Serialization always produces
// strict JSON and keeps object keys in insertion order.
package transcode

import (
	"errors"
	"fmt"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

var (
	// ErrSyntax is wrapped by every parse failure, lenient or strict.
	ErrSyntax = errors.New("invalid JSON")

	// ErrUnsupportedValue reports a value strict JSON cannot carry,
	// such as NaN or Infinity.
	ErrUnsupportedValue = errors.New("value cannot be represented as JSON")
)

// SyntaxError describes where lenient parsing stopped.
type SyntaxError struct {
	Offset int // byte offset into the input
	Line   int // 1-based
	Column int // 1-based, in runes
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// ParseStrict parses data as RFC 8259 JSON.
// The returned tree is fully materialised, so reading it from several
// goroutines does not race on fastjson's lazy unescaping.
func ParseStrict(data []byte) (*fastjson.Value, error) {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if !gojson.Valid(data) {
		return nil, fmt.Errorf("%w: input is not RFC 8259 JSON", ErrSyntax)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrSyntax)
	}
	if err := materialize(v); err != nil {
		return nil, err
	}
	return v, nil
}

// FromGo converts an arbitrary Go value into an ordered JSON value.
// Struct fields keep declaration order; map keys come out sorted.
func FromGo(v any) (*fastjson.Value, error) {
	data, err := gojson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return ParseStrict(data)
}

// materialize forces lazy unescaping across the tree and rejects number
// forms fastjson tolerates but RFC 8259 does not, such as 01 or 1.
func materialize(v *fastjson.Value) error {
	switch v.Type() {
	case fastjson.TypeNumber:
		if raw := v.MarshalTo(nil); !validNumber(raw) {
			return fmt.Errorf("%w: invalid number %q", ErrSyntax, raw)
		}
	case fastjson.TypeObject:
		o, _ := v.Object()
		var err error
		o.Visit(func(_ []byte, child *fastjson.Value) {
			if err == nil {
				err = materialize(child)
			}
		})
		return err
	case fastjson.TypeArray:
		items, _ := v.Array()
		for _, item := range items {
			if err := materialize(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsNull reports whether v is absent or JSON null.
func IsNull(v *fastjson.Value) bool {
	return v == nil || v.Type() == fastjson.TypeNull
}

// Equal reports JSON value equality. Object key order is ignored, numbers are
// compared by value and a nil value equals JSON null.
func Equal(a, b *fastjson.Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Type() {
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return true
	case fastjson.TypeNumber:
		ra, rb := a.MarshalTo(nil), b.MarshalTo(nil)
		if string(ra) == string(rb) {
			return true
		}
		fa, errA := a.Float64()
		fb, errB := b.Float64()
		return errA == nil && errB == nil && fa == fb
	case fastjson.TypeString:
		sa, _ := a.StringBytes()
		sb, _ := b.StringBytes()
		return string(sa) == string(sb)
	case fastjson.TypeArray:
		ia, _ := a.Array()
		ib, _ := b.Array()
		if len(ia) != len(ib) {
			return false
		}
		for i := range ia {
			if !Equal(ia[i], ib[i]) {
				return false
			}
		}
		return true
	case fastjson.TypeObject:
		oa, _ := a.Object()
		ob, _ := b.Object()
		if oa.Len() != ob.Len() {
			return false
		}
		equal := true
		oa.Visit(func(key []byte, va *fastjson.Value) {
			if !equal {
				return
			}
			vb := ob.Get(string(key))
			if vb == nil || !Equal(va, vb) {
				equal = false
			}
		})
		return equal
	}
	return false
}
