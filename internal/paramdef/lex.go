package paramdef

import (
	"strconv"
	"strings"
	"unicode"
)

// Token types.
//
const (
	EOF Type = iota
	Raw
	Ident
	Number
	Newline
)

// Type is a token type.
//
type Type int

func (t Type) String() string {
	switch t {
	case EOF:
		return "end of input"
	case Raw:
		return "character"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case Newline:
		return "end of line"
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Pos is a 1 based line and column position.
//
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// An Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{} // string for Ident and Raw, float64 for Number
}

func (i Item) String() string {
	switch i.Type {
	case Ident, Raw:
		return i.Type.String() + " " + strconv.Quote(i.Value.(string))
	case Number:
		return i.Type.String() + " " + strconv.FormatFloat(i.Value.(float64), 'g', -1, 64)
	}
	return i.Type.String()
}

type stateFn func(l *lexer) stateFn

// lexer splits a parameter definition file into tokens. Comments start with
// '#' and run to the end of the line.
//
type lexer struct {
	in    []rune
	pos   int
	start int
	line  int
	col   int // column of in[start]
	items []Item
	state stateFn
}

func newLexer(input string) *lexer {
	return &lexer{in: []rune(input), line: 1, col: 1, state: lexInit}
}

// Lex returns the next token.
//
func (l *lexer) Lex() Item {
	for len(l.items) == 0 {
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

const eof = -1

func (l *lexer) next() rune {
	if l.pos >= len(l.in) {
		l.pos++
		return eof
	}
	r := l.in[l.pos]
	l.pos++
	return r
}

func (l *lexer) backup() { l.pos-- }

func (l *lexer) current() rune { return l.in[l.pos-1] }

func (l *lexer) emit(t Type, v interface{}) {
	l.items = append(l.items, Item{t, Pos{l.line, l.col}, v})
	l.ignore()
}

// ignore skips the pending input.
//
func (l *lexer) ignore() {
	if l.pos > len(l.in) {
		l.pos = len(l.in)
	}
	l.col += l.pos - l.start
	l.start = l.pos
}

func isIdent(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

func lexInit(l *lexer) stateFn {
	r := l.next()
	switch {
	case r == eof:
		return lexEOF
	case r == '\n':
		l.emit(Newline, "\n")
		l.line++
		l.col = 1
	case r == '#':
		for r = l.next(); r != '\n' && r != eof; r = l.next() {
		}
		l.backup()
		l.ignore()
	case unicode.IsSpace(r):
		for r = l.next(); r != '\n' && unicode.IsSpace(r); r = l.next() {
		}
		l.backup()
		l.ignore()
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case '0' <= r && r <= '9' || r == '-' || r == '+' || r == '.':
		return lexNumber
	default:
		l.emit(Raw, string(r))
		return lexEOF
	}
	return lexInit
}

func lexIdent(l *lexer) stateFn {
	r := l.next()
	for isIdent(r) {
		r = l.next()
	}
	l.backup()
	l.emit(Ident, string(l.in[l.start:l.pos]))
	return lexInit
}

func lexNumber(l *lexer) stateFn {
	r := l.current()
	for isIdent(r) || r == '-' || r == '+' {
		r = l.next()
	}
	l.backup()
	s := string(l.in[l.start:l.pos])
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil {
		l.emit(Raw, s)
		return lexEOF
	}
	l.emit(Number, v)
	return lexInit
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *lexer) stateFn {
	l.emit(EOF, "end of input")
	return lexEOF
}
