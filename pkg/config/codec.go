package config

import (
	"math"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/quantfoundry/treeconf/pkg/errors"
	"github.com/quantfoundry/treeconf/pkg/logger"
	stringpool "github.com/quantfoundry/treeconf/pkg/strings"
)

// The wire format is a single-line constructor-call expression: a call to
// the Config constructor with a list of (key, value) tuples, nested
// configs appearing as nested calls, in insertion order. It is parsed by
// the small recursive-descent parser below rather than a general-purpose
// evaluator, so wire text can never execute anything.

// Serialize produces the wire text for the config. With check=true the
// text is immediately parsed back and compared against the original
// rendering, making serialization self-verifying; configs holding live
// objects (functions, handles) need check=false for best-effort output.
func (c *Config) Serialize(check bool) (string, error) {
	text := c.serialize()
	if !check {
		return text, nil
	}
	parsed, err := parseText(text)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeSerialization,
			stringpool.Sprintf("serialized form does not parse back: %s", text))
	}
	if parsed.String() != c.String() {
		return "", errors.Newf(errors.ErrorTypeSerialization,
			"serialization round-trip mismatch\noriginal=\n%s\nround-trip=\n%s",
			c.String(), parsed.String())
	}
	return text, nil
}

func (c *Config) serialize() string {
	b := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(b, stringpool.Medium)

	c.serializeInto(b)
	return stringpool.Clone(b.String())
}

func (c *Config) serializeInto(b *stringpool.Builder) {
	b.WriteString("Config([")
	for i, key := range c.entries.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		b.WriteString(keyRepr(key))
		b.WriteString(", ")
		value := c.entries.values[key]
		if child, ok := value.(*Config); ok {
			child.serializeInto(b)
		} else {
			b.WriteString(reprValue(value))
		}
		b.WriteByte(')')
	}
	b.WriteString("])")
}

// IsSerializable reports whether the config survives a serialize/parse
// round-trip with an identical rendering. Plain-data trees do; trees
// holding live objects normalize to address-free text that cannot be
// parsed back, and report false.
func (c *Config) IsSerializable() bool {
	parsed, err := parseText(c.serialize())
	if err != nil {
		return false
	}
	return parsed.String() == c.String()
}

// Parse reconstructs a Config from wire text. Malformed text is a data
// problem, not a crash: the syntax error is logged and returned, with a
// nil config.
func Parse(text string) (*Config, error) {
	cfg, err := parseText(text)
	if err != nil {
		logger.Error("failed to parse config text",
			zap.String("text", text),
			zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// FromEnvVar reads wire text from the named environment variable and
// parses it. An unset variable yields a nil config and a warning, not an
// error.
func FromEnvVar(name string) (*Config, error) {
	text, ok := os.LookupEnv(name)
	if !ok {
		logger.Warn("environment variable not set", zap.String("name", name))
		return nil, nil
	}
	return Parse(text)
}

// --- lexer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokString
	tokInt
	tokFloat
	tokIdent
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpaceByte(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	ch := l.input[l.pos]
	switch {
	case ch == '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case ch == ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case ch == '[':
		l.pos++
		return token{kind: tokLBracket, pos: start}, nil
	case ch == ']':
		l.pos++
		return token{kind: tokRBracket, pos: start}, nil
	case ch == ',':
		l.pos++
		return token{kind: tokComma, pos: start}, nil
	case ch == '\'' || ch == '"':
		return l.lexString(ch)
	case ch == '-' || ch == '+' || (ch >= '0' && ch <= '9'):
		return l.lexNumber()
	case isIdentByte(ch):
		for l.pos < len(l.input) && isIdentByte(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.input[start:l.pos], pos: start}, nil
	}
	return token{}, errors.Newf(errors.ErrorTypeSyntax,
		"unexpected character %q at offset %d", string(ch), start)
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case quote:
			l.pos++
			return token{kind: tokString, text: stringpool.Clone(b.String()), pos: start}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return token{}, errors.Newf(errors.ErrorTypeSyntax,
					"unterminated escape at offset %d", l.pos)
			}
			switch l.input[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '\'', '"':
				b.WriteByte(l.input[l.pos])
			default:
				return token{}, errors.Newf(errors.ErrorTypeSyntax,
					"unknown escape %q at offset %d", string(l.input[l.pos]), l.pos)
			}
			l.pos++
		default:
			b.WriteByte(ch)
			l.pos++
		}
	}
	return token{}, errors.Newf(errors.ErrorTypeSyntax,
		"unterminated string starting at offset %d", start)
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' || l.input[l.pos] == '+' {
		l.pos++
		// signed special floats: -inf, -nan
		if rest := l.input[l.pos:]; len(rest) >= 3 && rest[:3] == "inf" {
			l.pos += 3
			sign := 1
			if l.input[start] == '-' {
				sign = -1
			}
			return token{kind: tokFloat, num: math.Inf(sign), pos: start}, nil
		}
	}
	isFloat := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch >= '0' && ch <= '9' {
			l.pos++
			continue
		}
		if ch == '.' || ch == 'e' || ch == 'E' {
			isFloat = true
			l.pos++
			if ch != '.' && l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
				l.pos++
			}
			continue
		}
		break
	}
	text := l.input[start:l.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, errors.Newf(errors.ErrorTypeSyntax,
				"bad float literal %q at offset %d", text, start)
		}
		return token{kind: tokFloat, num: f, pos: start}, nil
	}
	i, err := strconv.Atoi(text)
	if err != nil {
		return token{}, errors.Newf(errors.ErrorTypeSyntax,
			"bad int literal %q at offset %d", text, start)
	}
	return token{kind: tokInt, num: float64(i), text: text, pos: start}, nil
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// --- parser ---

type parser struct {
	lex lexer
	tok token
	err error
}

func parseText(text string) (*Config, error) {
	p := &parser{lex: lexer{input: text}}
	p.advance()
	cfg, err := p.parseConfigCall()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, errors.Newf(errors.ErrorTypeSyntax,
			"trailing input at offset %d", p.tok.pos)
	}
	return cfg, nil
}

func (p *parser) advance() {
	if p.err != nil {
		return
	}
	p.tok, p.err = p.lex.next()
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.err != nil {
		return p.err
	}
	if p.tok.kind != kind {
		return errors.Newf(errors.ErrorTypeSyntax,
			"expected %s at offset %d", what, p.tok.pos)
	}
	p.advance()
	return p.err
}

func (p *parser) parseConfigCall() (*Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind != tokIdent || p.tok.text != "Config" {
		return nil, errors.Newf(errors.ErrorTypeSyntax,
			"expected Config constructor at offset %d", p.tok.pos)
	}
	p.advance()
	if err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	if err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	cfg := New()
	for p.err == nil && p.tok.kind != tokRBracket {
		key, value, err := p.parseEntry()
		if err != nil {
			return nil, err
		}
		if err := cfg.Set(key, value); err != nil {
			return nil, err
		}
		if p.tok.kind == tokComma {
			p.advance()
		}
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (p *parser) parseEntry() (interface{}, interface{}, error) {
	if err := p.expect(tokLParen, "'('"); err != nil {
		return nil, nil, err
	}
	var key interface{}
	switch p.tok.kind {
	case tokString:
		key = p.tok.text
	case tokInt:
		key = int(p.tok.num)
	default:
		return nil, nil, errors.Newf(errors.ErrorTypeSyntax,
			"expected string or int key at offset %d", p.tok.pos)
	}
	p.advance()
	if err := p.expect(tokComma, "','"); err != nil {
		return nil, nil, err
	}
	value, err := p.parseValue()
	if err != nil {
		return nil, nil, err
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, nil, err
	}
	return key, value, nil
}

func (p *parser) parseValue() (interface{}, error) {
	if p.err != nil {
		return nil, p.err
	}
	switch p.tok.kind {
	case tokString:
		s := p.tok.text
		p.advance()
		return s, p.err
	case tokInt:
		i := int(p.tok.num)
		p.advance()
		return i, p.err
	case tokFloat:
		f := p.tok.num
		p.advance()
		return f, p.err
	case tokIdent:
		switch p.tok.text {
		case "Config":
			return p.parseConfigCall()
		case "True":
			p.advance()
			return true, p.err
		case "False":
			p.advance()
			return false, p.err
		case "None":
			p.advance()
			return nil, p.err
		case "nan":
			p.advance()
			return math.NaN(), p.err
		case "inf":
			p.advance()
			return math.Inf(1), p.err
		}
		return nil, errors.Newf(errors.ErrorTypeSyntax,
			"unknown identifier %q at offset %d", p.tok.text, p.tok.pos)
	case tokLBracket:
		p.advance()
		values := []interface{}{}
		for p.err == nil && p.tok.kind != tokRBracket {
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if p.tok.kind == tokComma {
				p.advance()
			}
		}
		if err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		return values, nil
	case tokLParen:
		p.advance()
		values := Tuple{}
		for p.err == nil && p.tok.kind != tokRParen {
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if p.tok.kind == tokComma {
				p.advance()
			}
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return values, nil
	}
	return nil, errors.Newf(errors.ErrorTypeSyntax,
		"unexpected token at offset %d", p.tok.pos)
}
