package configset

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// writeLiteral renders v as a Python literal.
func writeLiteral(b *strings.Builder, v any) error {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case string:
		return writeString(b, x)
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case int:
		b.WriteString(strconv.Itoa(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		writeFloat(b, x)
	case []string:
		b.WriteByte('[')
		for i, s := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeString(b, s); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeLiteral(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case [][]string:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeLiteral(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]string:
		b.WriteByte('{')
		for i, k := range slices.Sorted(maps.Keys(x)) {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeString(b, k); err != nil {
				return err
			}
			b.WriteString(": ")
			if err := writeString(b, x[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case map[string][]string:
		b.WriteByte('{')
		for i, k := range slices.Sorted(maps.Keys(x)) {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeString(b, k); err != nil {
				return err
			}
			b.WriteString(": ")
			if err := writeLiteral(b, x[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case map[string]any:
		b.WriteByte('{')
		for i, k := range slices.Sorted(maps.Keys(x)) {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeString(b, k); err != nil {
				return err
			}
			b.WriteString(": ")
			if err := writeLiteral(b, x[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func writeFloat(b *strings.Builder, f float64) {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	b.WriteString(s)
}

// writeString renders s like Python's ascii(): single quotes unless the
// string contains a single quote and no double quote, non-ASCII escaped.
// Invalid UTF-8 is rejected since it cannot round-trip.
func writeString(b *strings.Builder, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("invalid UTF-8 in string %q", s)
	}
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteByte(quote)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(b, `\x%02x`, r)
		case r < 0x7f:
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(b, `\u%04x`, r)
		default:
			fmt.Fprintf(b, `\U%08x`, r)
		}
	}
	b.WriteByte(quote)
	return nil
}

// parser decodes a single Python literal.
type parser struct {
	s   string
	pos int
}

func parseLiteral(s string) (any, error) {
	p := &parser{s: s}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, p.errorf("trailing data %q", p.s[p.pos:])
	}
	return v, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) value() (any, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == 0:
		return nil, p.errorf("unexpected end of value")
	case c == '\'' || c == '"':
		return p.str()
	case c == 'u' || c == 'b' || c == 'r':
		if p.pos+1 < len(p.s) && (p.s[p.pos+1] == '\'' || p.s[p.pos+1] == '"') {
			if c == 'r' {
				return nil, p.errorf("raw strings are not supported")
			}
			p.pos++
			return p.str()
		}
		return p.ident()
	case c == '[':
		p.pos++
		return p.sequence(']')
	case c == '(':
		p.pos++
		return p.sequence(')')
	case c == '{':
		p.pos++
		return p.dictOrSet()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.ident()
	}
}

func (p *parser) ident() (any, error) {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	switch word := p.s[start:p.pos]; word {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	case "":
		return nil, p.errorf("unexpected character %q", p.s[start])
	default:
		p.pos = start
		return nil, p.errorf("unsupported name %q", word)
	}
}

func (p *parser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c >= '0' && c <= '9', c == '_':
		case c == '.' || c == 'e' || c == 'E':
			isFloat = true
		case (c == '-' || c == '+') && (p.s[p.pos-1] == 'e' || p.s[p.pos-1] == 'E'):
		default:
			goto done
		}
		p.pos++
	}
done:
	text := strings.ReplaceAll(p.s[start:p.pos], "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", text)
		}
		return f, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return n, nil
}

func (p *parser) str() (string, error) {
	quote := p.s[p.pos]
	p.pos++
	var b strings.Builder
	for {
		if p.pos >= len(p.s) {
			return "", p.errorf("unterminated string")
		}
		c := p.s[p.pos]
		if c == quote {
			p.pos++
			return b.String(), nil
		}
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(p.s[p.pos:])
			b.WriteRune(r)
			p.pos += size
			continue
		}
		p.pos++
		if p.pos >= len(p.s) {
			return "", p.errorf("unterminated escape")
		}
		e := p.s[p.pos]
		p.pos++
		switch e {
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case 'x':
			r, err := p.hex(2)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		case 'u':
			r, err := p.hex(4)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		case 'U':
			r, err := p.hex(8)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		default:
			// Python keeps unknown escapes verbatim.
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
}

func (p *parser) hex(n int) (rune, error) {
	if p.pos+n > len(p.s) {
		return 0, p.errorf("truncated escape")
	}
	v, err := strconv.ParseUint(p.s[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return 0, p.errorf("invalid escape %q", p.s[p.pos:p.pos+n])
	}
	p.pos += n
	return rune(v), nil
}

func (p *parser) sequence(end byte) ([]any, error) {
	out := []any{}
	for {
		p.skipSpace()
		if p.peek() == end {
			p.pos++
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case end:
		default:
			return nil, p.errorf("expected ',' or %q", end)
		}
	}
}

func (p *parser) dictOrSet() (any, error) {
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return map[string]any{}, nil
	}
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != ':' {
		rest, err := p.sequenceAfter(first)
		if err != nil {
			return nil, err
		}
		return rest, nil
	}

	out := map[string]any{}
	key := first
	for {
		k, ok := key.(string)
		if !ok {
			return nil, p.errorf("dict keys must be strings, got %T", key)
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[k] = v
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		if key, err = p.value(); err != nil {
			return nil, err
		}
	}
}

// sequenceAfter finishes a set literal whose first element is already parsed.
func (p *parser) sequenceAfter(first any) ([]any, error) {
	out := []any{first}
	p.skipSpace()
	switch p.peek() {
	case '}':
		p.pos++
		return out, nil
	case ',':
		p.pos++
	default:
		return nil, p.errorf("expected ',' or '}'")
	}
	rest, err := p.sequence('}')
	if err != nil {
		return nil, err
	}
	return append(out, rest...), nil
}
