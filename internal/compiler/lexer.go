package compiler

import (
	"strings"

	"github.com/jorgicor/bas55/internal/datalex"
	"github.com/jorgicor/bas55/internal/vars"
)

// Lexer tokenizes one BASIC source line (the part after the line number).
// Like the reference scanner, it switches into DATA-literal mode once it
// has seen the DATA keyword on the current line, so the remainder of the
// line is read through the data lexer instead of the ordinary token
// grammar.
type Lexer struct {
	src    string
	pos    int
	inData bool
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer { return &Lexer{src: src} }

func isSpace(c byte) bool { return c == ' ' || c == '\t' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool { return c >= 'A' && c <= 'Z' }
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

// Next returns the next token. At end of line it returns TEOF repeatedly.
func (l *Lexer) Next() Token {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}

	col := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: TEOF, Column: col}
	}

	c := l.src[l.pos]

	if c == '"' {
		return l.lexQuotedStr(col)
	}

	if l.inData {
		return l.lexDataElem(col)
	}

	switch {
	case c == '.' || isDigit(c):
		return l.lexNumber(col)
	case isAlpha(c):
		return l.lexID(col)
	}

	switch {
	case c == '<' && l.peek(1) == '=':
		l.pos += 2
		return Token{Kind: TLessEq, Column: col}
	case c == '<' && l.peek(1) == '>':
		l.pos += 2
		return Token{Kind: TNotEq, Column: col}
	case c == '>' && l.peek(1) == '=':
		l.pos += 2
		return Token{Kind: TGreaterEq, Column: col}
	}

	l.pos++
	switch c {
	case ',':
		return Token{Kind: TComma, Column: col}
	case ';':
		return Token{Kind: TSemicolon, Column: col}
	case '(':
		return Token{Kind: TLParen, Column: col}
	case ')':
		return Token{Kind: TRParen, Column: col}
	case '=':
		return Token{Kind: TEq, Column: col}
	case '<':
		return Token{Kind: TLess, Column: col}
	case '>':
		return Token{Kind: TGreater, Column: col}
	case '+':
		return Token{Kind: TPlus, Column: col}
	case '-':
		return Token{Kind: TMinus, Column: col}
	case '*':
		return Token{Kind: TStar, Column: col}
	case '/':
		return Token{Kind: TSlash, Column: col}
	case '^':
		return Token{Kind: TCaret, Column: col}
	case ':':
		return Token{Kind: TColon, Column: col}
	default:
		return Token{Kind: TInvalChar, Str: string(c), Column: col}
	}
}

func (l *Lexer) peek(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) lexQuotedStr(col int) Token {
	l.pos++ // opening quote
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		l.pos++
	}
	s := l.src[start:l.pos]
	if l.pos >= len(l.src) {
		// unterminated: the string runs to the end of the line and is
		// returned like a terminated one; no error is reported for the
		// missing quote.
		return Token{Kind: TQuotedStr, Str: s, Column: col}
	}
	l.pos++ // closing quote
	return Token{Kind: TQuotedStr, Str: s, Column: col}
}

func (l *Lexer) lexNumber(col int) Token {
	rest := l.src[l.pos:]
	if !numberLooksValid(rest) {
		c := l.src[l.pos]
		l.pos++
		return Token{Kind: TInvalChar, Str: string(c), Column: col}
	}

	elem, tail := datalex.Next(rest, false)
	consumed := rest[:len(rest)-len(tail)]
	l.pos += len(consumed)

	kind := TNum
	if !strings.ContainsAny(consumed, ".eE") {
		kind = TInt
	}

	return Token{Kind: kind, Num: elem.Num, Column: col}
}

func numberLooksValid(s string) bool {
	elem, _ := datalex.Next(s, false)
	return elem.Type == datalex.Number
}

const maxNameLen = 9

func (l *Lexer) lexID(col int) Token {
	start := l.pos
	for l.pos < len(l.src) && (isAlnum(l.src[l.pos]) || l.src[l.pos] == '$') {
		l.pos++
	}
	name := l.src[start:l.pos]
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	// NUMVAR: single letter, or letter+digit.
	if len(name) == 1 || (len(name) == 2 && isDigit(name[1])) {
		suffix := byte(0)
		if len(name) == 2 {
			suffix = name[1]
		}
		return Token{Kind: TNumVar, Coded: uint16(vars.Encode(name[0], suffix)), Column: col}
	}

	// STRVAR: letter + '$'.
	if len(name) == 2 && name[1] == '$' {
		return Token{Kind: TStrVar, Coded: uint16(vars.Encode(name[0], '$')), Column: col}
	}

	// USRFN: FN + letter.
	if len(name) == 3 && name[0] == 'F' && name[1] == 'N' && isAlpha(name[2]) {
		return Token{Kind: TUsrFn, Str: string(name[2]), Column: col}
	}

	if kw, ok := keywords[name]; ok {
		if kw == TData {
			l.inData = true
		}
		if kw == TRem {
			l.pos = len(l.src)
		}
		return Token{Kind: kw, Str: name, Column: col}
	}

	if ifuns[name] {
		return Token{Kind: TIfun, Str: name, Column: col}
	}

	return Token{Kind: TBadID, Str: name, Column: col}
}

// lexDataElem delegates to the data lexer once DATA has put the line
// scanner into data mode; literals inside DATA are STR/NUM/comma tokens
// even though they would otherwise look like identifiers or numbers.
func (l *Lexer) lexDataElem(col int) Token {
	rest := l.src[l.pos:]
	elem, tail := datalex.Next(rest, datalex.AsUnquoted(true))
	l.pos += len(rest) - len(tail)

	switch elem.Type {
	case datalex.EOF:
		return Token{Kind: TEOF, Column: col}
	case datalex.Comma:
		return Token{Kind: TComma, Column: col}
	case datalex.QuotedStr:
		return Token{Kind: TQuotedStr, Str: elem.Str, Column: col}
	case datalex.InvalidChar:
		return Token{Kind: TInvalChar, Str: elem.Str, Column: col}
	default: // UnquotedStr (data-mode never returns Number, by AsUnquoted)
		return Token{Kind: TUnquotedStr, Str: strings.TrimRight(elem.Str, " "), Column: col}
	}
}
