package transcode

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/valyala/fastjson"
)

// MaxDepth bounds object and array nesting for both grammars.
const MaxDepth = 300

// ParseLenient parses human-edited text. On top of strict JSON it accepts
// comments, unquoted identifier keys, single-quoted strings, trailing commas,
// JSON5 string escapes and JSON5 number forms (hex, leading '+', bare decimal
// points, Infinity, NaN).
//
// Text holding only whitespace and comments yields (nil, nil): the value is
// absent, which is not an error.
func ParseLenient(text string) (*fastjson.Value, error) {
	p := &lenientParser{src: text, arena: &fastjson.Arena{}}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, nil
	}

	v, err := p.parseValue(0)
	if err != nil {
		return nil, err
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("unexpected %s after top-level value", p.describe())
	}
	return v, nil
}

type lenientParser struct {
	src   string
	pos   int
	arena *fastjson.Arena
}

func (p *lenientParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *lenientParser) peek() rune {
	if p.eof() {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *lenientParser) next() rune {
	if p.eof() {
		return -1
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r
}

func (p *lenientParser) describe() string {
	if p.eof() {
		return "end of input"
	}
	return "character " + quoteRune(p.peek())
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}

func (p *lenientParser) errorf(msg string, args ...any) error {
	return p.errorAt(p.pos, msg, args...)
}

func (p *lenientParser) errorAt(offset int, msg string, args ...any) error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	line, col := 1, 1
	for _, r := range p.src[:offset] {
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return &SyntaxError{Offset: offset, Line: line, Column: col, Msg: msg}
}

func isSpace(r rune) bool {
	return r == '\uFEFF' || unicode.IsSpace(r)
}

func (p *lenientParser) skipSpace() error {
	for !p.eof() {
		r := p.peek()
		switch {
		case isSpace(r):
			p.next()
		case r == '/' && strings.HasPrefix(p.src[p.pos:], "//"):
			end := strings.IndexAny(p.src[p.pos:], "\n\r\u2028\u2029")
			if end < 0 {
				p.pos = len(p.src)
			} else {
				p.pos += end
			}
		case r == '/' && strings.HasPrefix(p.src[p.pos:], "/*"):
			start := p.pos
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				return p.errorAt(start, "unterminated block comment")
			}
			p.pos += 2 + end + 2
		default:
			return nil
		}
	}
	return nil
}

func (p *lenientParser) parseValue(depth int) (*fastjson.Value, error) {
	if depth >= MaxDepth {
		return nil, p.errorf("nesting deeper than %d levels", MaxDepth)
	}

	r := p.peek()
	switch {
	case r == '{':
		return p.parseObject(depth)
	case r == '[':
		return p.parseArray(depth)
	case r == '"' || r == '\'':
		start := p.pos
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		v, err := newString(s)
		if err != nil {
			return nil, p.errorAt(start, "%v", err)
		}
		return v, nil
	case r == '-' || r == '+' || r == '.' || (r >= '0' && r <= '9'):
		return p.parseNumber()
	case r == 'I' || r == 'N':
		return p.parseNumber()
	case isIdentStart(r):
		start := p.pos
		word, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		switch word {
		case "true":
			return p.arena.NewTrue(), nil
		case "false":
			return p.arena.NewFalse(), nil
		case "null":
			return p.arena.NewNull(), nil
		}
		return nil, p.errorAt(start, "unexpected identifier %q", word)
	case r < 0:
		return nil, p.errorf("unexpected end of input, expected a value")
	}
	return nil, p.errorf("unexpected %s, expected a value", p.describe())
}

func (p *lenientParser) parseObject(depth int) (*fastjson.Value, error) {
	p.next() // '{'
	obj := p.arena.NewObject()

	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.peek() == '}' {
			p.next()
			return obj, nil
		}

		var key string
		var err error
		switch r := p.peek(); {
		case r == '"' || r == '\'':
			key, err = p.parseString()
		case isIdentStart(r) || r == '\\':
			key, err = p.parseIdentifier()
		default:
			return nil, p.errorf("unexpected %s, expected a property name", p.describe())
		}
		if err != nil {
			return nil, err
		}

		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.peek() != ':' {
			return nil, p.errorf("unexpected %s, expected ':' after property name", p.describe())
		}
		p.next()

		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		member, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		obj.Set(key, member)

		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		switch p.peek() {
		case ',':
			p.next()
		case '}':
			p.next()
			return obj, nil
		default:
			return nil, p.errorf("unexpected %s, expected ',' or '}'", p.describe())
		}
	}
}

func (p *lenientParser) parseArray(depth int) (*fastjson.Value, error) {
	p.next() // '['
	arr := p.arena.NewArray()

	for idx := 0; ; idx++ {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.peek() == ']' {
			p.next()
			return arr, nil
		}

		item, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		arr.SetArrayItem(idx, item)

		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		switch p.peek() {
		case ',':
			p.next()
		case ']':
			p.next()
			return arr, nil
		default:
			return nil, p.errorf("unexpected %s, expected ',' or ']'", p.describe())
		}
	}
}

func (p *lenientParser) parseString() (string, error) {
	start := p.pos
	quote := p.next()
	var sb strings.Builder

	for {
		if p.eof() {
			return "", p.errorAt(start, "unterminated string")
		}
		r := p.next()
		switch {
		case r == quote:
			return sb.String(), nil
		case r == '\n' || r == '\r':
			return "", p.errorAt(p.pos-1, "line break inside string")
		case r == '\\':
			if err := p.parseEscape(&sb); err != nil {
				return "", err
			}
		default:
			sb.WriteRune(r)
		}
	}
}

func (p *lenientParser) parseEscape(sb *strings.Builder) error {
	at := p.pos - 1
	if p.eof() {
		return p.errorAt(at, "unterminated escape sequence")
	}

	r := p.next()
	switch r {
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		if r := p.peek(); r >= '0' && r <= '9' {
			return p.errorAt(at, "octal escape sequences are not allowed")
		}
		sb.WriteByte(0)
	case 'x':
		v, ok := p.readHex(2)
		if !ok {
			return p.errorAt(at, "invalid \\x escape")
		}
		sb.WriteRune(rune(v))
	case 'u':
		r1, err := p.readUnicodeEscape(at)
		if err != nil {
			return err
		}
		sb.WriteRune(r1)
	case '\r':
		// line continuation; "\r\n" counts as one break
		if p.peek() == '\n' {
			p.next()
		}
	case '\n', '\u2028', '\u2029':
		// line continuation
	default:
		if r >= '1' && r <= '9' {
			return p.errorAt(at, "octal escape sequences are not allowed")
		}
		sb.WriteRune(r)
	}
	return nil
}

// readUnicodeEscape reads the XXXX of \uXXXX, joining a following low
// surrogate escape when present.
func (p *lenientParser) readUnicodeEscape(at int) (rune, error) {
	v, ok := p.readHex(4)
	if !ok {
		return 0, p.errorAt(at, "invalid \\u escape")
	}
	r1 := rune(v)
	if !utf16.IsSurrogate(r1) {
		return r1, nil
	}
	if strings.HasPrefix(p.src[p.pos:], `\u`) {
		save := p.pos
		p.pos += 2
		if v2, ok := p.readHex(4); ok {
			if r := utf16.DecodeRune(r1, rune(v2)); r != unicode.ReplacementChar {
				return r, nil
			}
		}
		p.pos = save
	}
	return unicode.ReplacementChar, nil
}

func (p *lenientParser) readHex(n int) (uint32, bool) {
	if p.pos+n > len(p.src) {
		return 0, false
	}
	var v uint32
	for i := 0; i < n; i++ {
		d, ok := hexValue(p.src[p.pos+i])
		if !ok {
			return 0, false
		}
		v = v<<4 | uint32(d)
	}
	p.pos += n
	return v, true
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) ||
		unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc) ||
		r == '\u200C' || r == '\u200D'
}

// parseIdentifier reads an ECMAScript IdentifierName, resolving \uXXXX
// escapes.
func (p *lenientParser) parseIdentifier() (string, error) {
	start := p.pos
	var sb strings.Builder

	for !p.eof() {
		r := p.peek()
		if r == '\\' {
			at := p.pos
			p.next()
			if p.next() != 'u' {
				return "", p.errorAt(at, "invalid escape in identifier")
			}
			v, ok := p.readHex(4)
			if !ok {
				return "", p.errorAt(at, "invalid \\u escape in identifier")
			}
			r = rune(v)
			if (sb.Len() == 0 && !isIdentStart(r)) || !isIdentPart(r) {
				return "", p.errorAt(at, "escaped character %s is not valid in an identifier", quoteRune(r))
			}
			sb.WriteRune(r)
			continue
		}
		if sb.Len() == 0 && !isIdentStart(r) {
			break
		}
		if !isIdentPart(r) {
			break
		}
		sb.WriteRune(p.next())
	}

	if sb.Len() == 0 {
		return "", p.errorAt(start, "expected an identifier")
	}
	return sb.String(), nil
}

// parseNumber reads a JSON5 number and stores it as strict JSON number text
// where possible. Infinity and NaN are kept verbatim; serialization rejects
// them later.
func (p *lenientParser) parseNumber() (*fastjson.Value, error) {
	start := p.pos
	negative := false
	switch p.peek() {
	case '-':
		negative = true
		p.next()
	case '+':
		p.next()
	}

	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "Infinity"):
		p.pos += len("Infinity")
		if negative {
			return p.number("-Infinity", start)
		}
		return p.number("Infinity", start)
	case strings.HasPrefix(rest, "NaN"):
		p.pos += len("NaN")
		return p.number("NaN", start)
	case strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X"):
		p.pos += 2
		digitsStart := p.pos
		for !p.eof() {
			if _, ok := hexValue(p.src[p.pos]); !ok {
				break
			}
			p.pos++
		}
		if p.pos == digitsStart {
			return nil, p.errorAt(start, "hexadecimal number without digits")
		}
		n, _ := new(big.Int).SetString(p.src[digitsStart:p.pos], 16)
		if negative {
			n.Neg(n)
		}
		return p.number(n.String(), start)
	}

	intPart := p.digits()
	if len(intPart) > 1 && intPart[0] == '0' {
		return nil, p.errorAt(start, "leading zeros are not allowed")
	}

	var fracPart string
	hasDot := false
	if p.peek() == '.' {
		hasDot = true
		p.next()
		fracPart = p.digits()
	}
	if intPart == "" && fracPart == "" {
		return nil, p.errorAt(start, "invalid number")
	}

	var exp string
	if r := p.peek(); r == 'e' || r == 'E' {
		expStart := p.pos
		p.next()
		sign := ""
		if r := p.peek(); r == '+' || r == '-' {
			p.next()
			if r == '-' {
				sign = "-"
			}
		}
		expDigits := p.digits()
		if expDigits == "" {
			return nil, p.errorAt(expStart, "exponent without digits")
		}
		exp = "e" + sign + expDigits
	}

	var sb strings.Builder
	if negative {
		sb.WriteByte('-')
	}
	if intPart == "" {
		intPart = "0"
	}
	sb.WriteString(intPart)
	if hasDot {
		if fracPart == "" {
			fracPart = "0"
		}
		sb.WriteByte('.')
		sb.WriteString(fracPart)
	}
	sb.WriteString(exp)

	return p.number(sb.String(), start)
}

func (p *lenientParser) digits() string {
	start := p.pos
	for !p.eof() && isDigit(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// newString builds a string node from its JSON-quoted form.
// Arena.NewString quotes with Go escapes (\x01, \v), which fastjson
// later reads back verbatim.
func newString(s string) (*fastjson.Value, error) {
	v, err := fastjson.ParseBytes(appendString(nil, []byte(s)))
	if err != nil {
		return nil, err
	}
	v.Type() // unescape now so concurrent readers never do
	return v, nil
}

// number wraps text once the literal is known to end at a delimiter.
func (p *lenientParser) number(text string, start int) (*fastjson.Value, error) {
	if r := p.peek(); r >= 0 && (isIdentPart(r) || r == '.') {
		return nil, p.errorAt(start, "invalid number")
	}
	return p.arena.NewNumberString(text), nil
}
