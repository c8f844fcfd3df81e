package transcode

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/valyala/fastjson"
)

// DefaultIndent is the number of spaces Pretty uses per nesting level.
const DefaultIndent = 2

// Compact serializes v as minimal-whitespace JSON. A nil value is "null".
func Compact(v *fastjson.Value) ([]byte, error) {
	e := encoder{}
	if err := e.value(v, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// Pretty serializes v with one line per member and indent spaces per level.
func Pretty(v *fastjson.Value, indent int) ([]byte, error) {
	if indent <= 0 {
		indent = DefaultIndent
	}
	e := encoder{indent: strings.Repeat(" ", indent)}
	if err := e.value(v, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type encoder struct {
	buf    []byte
	indent string
}

func (e *encoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf = append(e.buf, '\n')
	for i := 0; i < depth; i++ {
		e.buf = append(e.buf, e.indent...)
	}
}

func (e *encoder) colon() {
	if e.indent == "" {
		e.buf = append(e.buf, ':')
		return
	}
	e.buf = append(e.buf, ':', ' ')
}

func (e *encoder) value(v *fastjson.Value, depth int) error {
	if v == nil {
		e.buf = append(e.buf, "null"...)
		return nil
	}

	switch v.Type() {
	case fastjson.TypeNull:
		e.buf = append(e.buf, "null"...)
	case fastjson.TypeTrue:
		e.buf = append(e.buf, "true"...)
	case fastjson.TypeFalse:
		e.buf = append(e.buf, "false"...)
	case fastjson.TypeNumber:
		start := len(e.buf)
		e.buf = v.MarshalTo(e.buf)
		if !validNumber(e.buf[start:]) {
			return fmt.Errorf("%w: number %q", ErrUnsupportedValue, e.buf[start:])
		}
	case fastjson.TypeString:
		s, err := v.StringBytes()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		e.buf = appendString(e.buf, s)
	case fastjson.TypeArray:
		items, err := v.Array()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		if len(items) == 0 {
			e.buf = append(e.buf, '[', ']')
			return nil
		}
		e.buf = append(e.buf, '[')
		for i, item := range items {
			if i > 0 {
				e.buf = append(e.buf, ',')
			}
			e.newline(depth + 1)
			if err := e.value(item, depth+1); err != nil {
				return err
			}
		}
		e.newline(depth)
		e.buf = append(e.buf, ']')
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		if o.Len() == 0 {
			e.buf = append(e.buf, '{', '}')
			return nil
		}
		e.buf = append(e.buf, '{')
		first := true
		var visitErr error
		o.Visit(func(key []byte, member *fastjson.Value) {
			if visitErr != nil {
				return
			}
			if !first {
				e.buf = append(e.buf, ',')
			}
			first = false
			e.newline(depth + 1)
			e.buf = appendString(e.buf, key)
			e.colon()
			visitErr = e.value(member, depth+1)
		})
		if visitErr != nil {
			return visitErr
		}
		e.newline(depth)
		e.buf = append(e.buf, '}')
	default:
		return fmt.Errorf("%w: unknown value type %s", ErrUnsupportedValue, v.Type())
	}
	return nil
}

const hexDigits = "0123456789abcdef"

// appendString quotes s like encoding/json with HTML escaping disabled.
// Invalid UTF-8 becomes U+FFFD.
func appendString(dst, s []byte) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				i++
				continue
			}
			dst = append(dst, s[start:i]...)
			switch c {
			case '"', '\\':
				dst = append(dst, '\\', c)
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			default:
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRune(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, s[start:i]...)
			dst = append(dst, `\ufffd`...)
			i += size
			start = i
			continue
		}
		i += size
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

// validNumber matches the RFC 8259 number production.
func validNumber(b []byte) bool {
	i := 0
	if i < len(b) && b[i] == '-' {
		i++
	}
	if i >= len(b) {
		return false
	}
	switch {
	case b[i] == '0':
		i++
	case b[i] >= '1' && b[i] <= '9':
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(b) && b[i] == '.' {
		i++
		if i >= len(b) || !isDigit(b[i]) {
			return false
		}
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	}
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		if i >= len(b) || !isDigit(b[i]) {
			return false
		}
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	}
	return i == len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
