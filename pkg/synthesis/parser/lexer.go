package parser

import (
	"fmt"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokComma
	tokSemi
	tokSep      // **
	tokPointsTo // :->
	tokPlus
	tokMinus
	tokEq
	tokNe
	tokLe
	tokLt
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1, col: 1}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '#' { // comment to end of line
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		if !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

// next returns the next token; scanning errors surface as positions in
// the returned error.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	tok := token{line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		return tok, nil
	}
	r := l.peek()
	switch {
	case unicode.IsLetter(r) || r == '_':
		var text []rune
		for l.pos < len(l.src) && (unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_') {
			text = append(text, l.advance())
		}
		tok.kind, tok.text = tokIdent, string(text)
		return tok, nil
	case unicode.IsDigit(r):
		var text []rune
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			text = append(text, l.advance())
		}
		tok.kind, tok.text = tokInt, string(text)
		return tok, nil
	}
	l.advance()
	two := string(r)
	if l.pos < len(l.src) {
		two += string(l.peek())
	}
	switch two {
	case "**":
		l.advance()
		tok.kind, tok.text = tokSep, "**"
		return tok, nil
	case "==":
		l.advance()
		tok.kind, tok.text = tokEq, "=="
		return tok, nil
	case "!=":
		l.advance()
		tok.kind, tok.text = tokNe, "!="
		return tok, nil
	case "<=":
		l.advance()
		tok.kind, tok.text = tokLe, "<="
		return tok, nil
	case "&&":
		l.advance()
		tok.kind, tok.text = tokAnd, "&&"
		return tok, nil
	case "||":
		l.advance()
		tok.kind, tok.text = tokOr, "||"
		return tok, nil
	case ":-":
		l.advance()
		if l.peek() != '>' {
			return tok, fmt.Errorf("%d:%d: expected :-> operator", tok.line, tok.col)
		}
		l.advance()
		tok.kind, tok.text = tokPointsTo, ":->"
		return tok, nil
	}
	switch r {
	case '(':
		tok.kind = tokLParen
	case ')':
		tok.kind = tokRParen
	case '{':
		tok.kind = tokLBrace
	case '}':
		tok.kind = tokRBrace
	case '[':
		tok.kind = tokLBracket
	case ']':
		tok.kind = tokRBracket
	case ',':
		tok.kind = tokComma
	case ';':
		tok.kind = tokSemi
	case '+':
		tok.kind = tokPlus
	case '-':
		tok.kind = tokMinus
	case '<':
		tok.kind = tokLt
	case '!':
		tok.kind = tokNot
	default:
		return tok, fmt.Errorf("%d:%d: unexpected character %q", tok.line, tok.col, r)
	}
	tok.text = string(r)
	return tok, nil
}
