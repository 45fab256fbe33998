package formats

import (
	"fmt"
	"strconv"
	"strings"
)

type aseTokenKind int

const (
	tokEOF aseTokenKind = iota
	tokDirective
	tokOpen
	tokClose
	tokString
	tokWord
)

func (k aseTokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokDirective:
		return "directive"
	case tokOpen:
		return "'{'"
	case tokClose:
		return "'}'"
	case tokString:
		return "string"
	default:
		return "value"
	}
}

type aseToken struct {
	kind aseTokenKind
	text []byte // directive name without '*', string contents, or word
	line int
}

// aseLexer splits ASE text into directives, braces, quoted strings and
// bare words. Whitespace, including newlines, only separates tokens.
type aseLexer struct {
	data   []byte
	pos    int
	line   int
	peeked *aseToken
}

func newASELexer(data []byte) *aseLexer {
	return &aseLexer{data: data, line: 1}
}

func (l *aseLexer) peek() aseToken {
	if l.peeked == nil {
		t := l.scan()
		l.peeked = &t
	}
	return *l.peeked
}

func (l *aseLexer) next() aseToken {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t
	}
	return l.scan()
}

func isASESpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v' || c == 0
}

func (l *aseLexer) scan() aseToken {
	for l.pos < len(l.data) && isASESpace(l.data[l.pos]) {
		if l.data[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
	if l.pos >= len(l.data) {
		return aseToken{kind: tokEOF, line: l.line}
	}

	start := l.pos
	switch c := l.data[l.pos]; c {
	case '{':
		l.pos++
		return aseToken{kind: tokOpen, line: l.line}
	case '}':
		l.pos++
		return aseToken{kind: tokClose, line: l.line}
	case '"':
		l.pos++
		line := l.line
		for l.pos < len(l.data) && l.data[l.pos] != '"' {
			if l.data[l.pos] == '\n' {
				l.line++
			}
			l.pos++
		}
		text := l.data[start+1 : l.pos]
		if l.pos < len(l.data) {
			l.pos++ // closing quote
		}
		return aseToken{kind: tokString, text: text, line: line}
	case '*':
		l.pos++
		l.scanWord()
		return aseToken{kind: tokDirective, text: l.data[start+1 : l.pos], line: l.line}
	default:
		l.scanWord()
		return aseToken{kind: tokWord, text: l.data[start:l.pos], line: l.line}
	}
}

func (l *aseLexer) scanWord() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isASESpace(c) || c == '{' || c == '}' || c == '"' {
			return
		}
		l.pos++
	}
}

// errorf builds a parse error carrying the line of tok.
func (l *aseLexer) errorf(tok aseToken, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedASE, tok.line, fmt.Sprintf(format, args...))
}

// value consumes a word or string.
func (l *aseLexer) readValue(what string) (aseToken, error) {
	tok := l.peek()
	switch tok.kind {
	case tokWord, tokString:
		return l.next(), nil
	case tokEOF:
		return tok, fmt.Errorf("%w: line %d: missing %s", ErrTruncatedASE, tok.line, what)
	default:
		return tok, l.errorf(tok, "expected %s, found %s", what, tok.kind)
	}
}

func (l *aseLexer) readFloat(what string) (float32, error) {
	tok, err := l.readValue(what)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(string(tok.text), 32)
	if err != nil {
		return 0, l.errorf(tok, "invalid %s %q", what, tok.text)
	}
	return float32(f), nil
}

func (l *aseLexer) readVec3(what string) ([3]float32, error) {
	var v [3]float32
	for i := range v {
		f, err := l.readFloat(what)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

func (l *aseLexer) readInt(what string) (int, error) {
	tok, err := l.readValue(what)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSuffix(string(tok.text), ":")
	n, err := strconv.Atoi(s)
	if err != nil {
		// Some exporters write integral values as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, l.errorf(tok, "invalid %s %q", what, tok.text)
		}
		n = int(f)
	}
	return n, nil
}

func (l *aseLexer) readUint(what string) (uint32, error) {
	n, err := l.readInt(what)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: line %d: negative %s %d", ErrMalformedASE, l.line, what, n)
	}
	return uint32(n), nil
}

// skipArgs consumes the values of the current directive, including any
// nested block.
func (l *aseLexer) skipArgs() error {
	for {
		switch l.peek().kind {
		case tokWord, tokString:
			l.next()
		case tokOpen:
			l.next()
			if err := l.skipBlock(); err != nil {
				return err
			}
			return nil
		default:
			return nil
		}
	}
}

// skipBlock consumes tokens up to the '}' matching an already consumed '{'.
func (l *aseLexer) skipBlock() error {
	depth := 1
	for depth > 0 {
		tok := l.next()
		switch tok.kind {
		case tokOpen:
			depth++
		case tokClose:
			depth--
		case tokEOF:
			return fmt.Errorf("%w: line %d: unterminated block", ErrTruncatedASE, tok.line)
		}
	}
	return nil
}
