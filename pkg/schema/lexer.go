package schema

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	}
	return "punctuation"
}

type token struct {
	kind  tokenKind
	value string
	pos   int
}

func (t token) is(kind tokenKind, values ...string) bool {
	if t.kind != kind {
		return false
	}
	return len(values) == 0 || slices.Contains(values, t.value)
}

func (t token) String() string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%s %q", t.kind, t.value)
}

const eof rune = -1

type stateFn func(*lexer) stateFn

type lexer struct {
	source     []rune
	tokens     []token
	start, end int
	err        *ParseError
}

// lex splits a type expression into tokens.
func lex(expr string) ([]token, error) {
	l := &lexer{source: []rune(expr)}
	for state := root; state != nil; {
		state = state(l)
	}
	if l.err != nil {
		l.err.Expr = expr
		return nil, l.err
	}
	return l.tokens, nil
}

func (l *lexer) next() rune {
	if l.end >= len(l.source) {
		l.end++
		return eof
	}
	r := l.source[l.end]
	l.end++
	return r
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) backup() { l.end-- }

func (l *lexer) skip() { l.start = l.end }

func (l *lexer) word() string { return string(l.source[l.start:l.end]) }

func (l *lexer) emit(kind tokenKind) { l.emitValue(kind, l.word()) }

func (l *lexer) emitValue(kind tokenKind, value string) {
	l.tokens = append(l.tokens, token{kind: kind, value: value, pos: l.start})
	l.start = l.end
}

func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func (l *lexer) error(format string, args ...any) stateFn {
	if l.err == nil {
		l.err = &ParseError{Pos: l.start, Msg: fmt.Sprintf(format, args...)}
	}
	return nil
}

func root(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		l.start = len(l.source)
		l.emitValue(tokEOF, "")
		return nil
	case unicode.IsSpace(r):
		l.skip()
	case r == '"' || r == '\'':
		return quoted(r)
	case r == '-' || ('0' <= r && r <= '9'):
		l.backup()
		return number
	case r == '.':
		if !l.accept(".") || !l.accept(".") {
			return l.error("unexpected %q", l.word())
		}
		l.emit(tokPunct)
	case strings.ContainsRune("[]{},:|?", r):
		l.emit(tokPunct)
	case r == '_' || unicode.IsLetter(r):
		l.backup()
		return identifier
	default:
		return l.error("unrecognized character %#U", r)
	}
	return root
}

func identifier(l *lexer) stateFn {
	for {
		r := l.next()
		if r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		l.backup()
		break
	}
	if strings.HasSuffix(l.word(), ".") {
		return l.error("identifier %q ends with a dot", l.word())
	}
	l.emit(tokIdent)
	return root
}

func number(l *lexer) stateFn {
	l.accept("-")
	digits := "0123456789_"
	if l.accept("0") && l.accept("xX") {
		digits = "0123456789abcdefABCDEF_"
	}
	l.acceptRun(digits)
	if l.peek() == '.' {
		l.next()
		if l.peek() == '.' {
			// "1..." is a number followed by an ellipsis.
			l.backup()
		} else {
			l.acceptRun(digits)
		}
	}
	if l.accept("eE") {
		l.accept("+-")
		l.acceptRun("0123456789_")
	}
	if w := l.word(); w == "-" {
		return l.error("bad number syntax %q", w)
	}
	l.emit(tokNumber)
	return root
}

func quoted(quote rune) stateFn {
	return func(l *lexer) stateFn {
		var b strings.Builder
		for {
			switch r := l.next(); r {
			case eof:
				return l.error("unterminated string")
			case '\\':
				esc := l.next()
				switch esc {
				case 'n':
					b.WriteRune('\n')
				case 't':
					b.WriteRune('\t')
				case '\\', '"', '\'':
					b.WriteRune(esc)
				default:
					return l.error("unknown escape \\%c", esc)
				}
			case quote:
				l.emitValue(tokString, b.String())
				return root
			default:
				b.WriteRune(r)
			}
		}
	}
}
