package php

import (
	"fmt"
	"unicode"
)

// Lex tokenizes PHP source text. It is line-aware but layout-tolerant:
// comments and whitespace vanish, strings and heredocs collapse to single
// tokens, and everything else becomes the smallest operator or literal that
// matches. The only failures are unterminated constructs and characters the
// grammar has no token for.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: []rune(src), line: 1}
	var tokens []Token
	for {
		tok, ok, err := l.scan()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

type lexer struct {
	src  []rune
	pos  int
	line int
}

func (l *lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) advance() rune {
	c := l.src[l.pos]
	if c == '\n' {
		l.line++
	}
	l.pos++
	return c
}

func (l *lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekNext() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *lexer) match(c rune) bool {
	if l.atEnd() || l.src[l.pos] != c {
		return false
	}
	l.advance()
	return true
}

func (l *lexer) token(t TokenType, lexeme string) Token {
	return Token{Type: t, Line: l.line, Lexeme: lexeme}
}

func (l *lexer) errorf(format string, args ...any) error {
	return &SyntaxError{Line: l.line, Msg: fmt.Sprintf(format, args...)}
}

// scan returns the next token, ok=false at end of input.
func (l *lexer) scan() (Token, bool, error) {
	for !l.atEnd() {
		c := l.advance()
		switch c {
		case ' ', '\r', '\t', '\n':
			continue
		case '{':
			return l.token(TokenLeftBrace, "{"), true, nil
		case '}':
			return l.token(TokenRightBrace, "}"), true, nil
		case '(':
			return l.token(TokenLeftParen, "("), true, nil
		case ')':
			return l.token(TokenRightParen, ")"), true, nil
		case '[':
			return l.token(TokenLeftBracket, "["), true, nil
		case ']':
			return l.token(TokenRightBracket, "]"), true, nil
		case ',':
			return l.token(TokenComma, ","), true, nil
		case '.':
			return l.token(TokenDot, "."), true, nil
		case '-':
			if l.match('>') {
				return l.token(TokenArrow, "->"), true, nil
			}
			return l.token(TokenMinus, "-"), true, nil
		case '+':
			return l.token(TokenPlus, "+"), true, nil
		case ';':
			return l.token(TokenSemicolon, ";"), true, nil
		case '#':
			return l.token(TokenHash, "#"), true, nil
		case '/':
			if l.match('*') {
				if err := l.blockComment(); err != nil {
					return Token{}, false, err
				}
				continue
			}
			if l.match('/') {
				for !l.atEnd() && l.peek() != '\n' {
					l.advance()
				}
				if !l.atEnd() {
					l.advance()
				}
				continue
			}
			return l.token(TokenSlash, "/"), true, nil
		case '*':
			return l.token(TokenStar, "*"), true, nil
		case '?':
			return l.token(TokenQuestion, "?"), true, nil
		case ':':
			if l.match(':') {
				return l.token(TokenDoubleColon, "::"), true, nil
			}
			return l.token(TokenColon, ":"), true, nil
		case '!':
			if l.match('=') {
				if l.match('=') {
					return l.token(TokenBangEqualEqual, "!=="), true, nil
				}
				return l.token(TokenBangEqual, "!="), true, nil
			}
			return l.token(TokenBang, "!"), true, nil
		case '=':
			if l.match('=') {
				if l.match('=') {
					return l.token(TokenEqualEqualEqual, "==="), true, nil
				}
				return l.token(TokenEqualEqual, "=="), true, nil
			}
			if l.match('>') {
				return l.token(TokenFatArrow, "=>"), true, nil
			}
			return l.token(TokenEqual, "="), true, nil
		case '>':
			if l.match('=') {
				return l.token(TokenGreaterEqual, ">="), true, nil
			}
			return l.token(TokenGreater, ">"), true, nil
		case '<':
			if l.peek() == '<' && l.peekNext() == '<' {
				l.advance()
				l.advance()
				tok, err := l.hereDoc()
				if err != nil {
					return Token{}, false, err
				}
				return tok, true, nil
			}
			if l.match('?') {
				l.match('p')
				l.match('h')
				l.match('p')
				return l.token(TokenPhpTag, "<?php"), true, nil
			}
			if l.match('=') {
				return l.token(TokenLessEqual, "<="), true, nil
			}
			return l.token(TokenLess, "<"), true, nil
		case '|':
			if l.match('|') {
				return l.token(TokenOr, "||"), true, nil
			}
			return l.token(TokenPipe, "|"), true, nil
		case '&':
			if l.match('&') {
				return l.token(TokenAnd, "&&"), true, nil
			}
			return l.token(TokenAmp, "&"), true, nil
		case '%':
			return l.token(TokenPercent, "%"), true, nil
		case '@':
			return l.token(TokenAt, "@"), true, nil
		case '"', '\'':
			tok, err := l.quotedString(c)
			if err != nil {
				return Token{}, false, err
			}
			return tok, true, nil
		default:
			if c >= '0' && c <= '9' {
				return l.number(c), true, nil
			}
			if isIdentStart(c) {
				return l.identifier(c), true, nil
			}
			return Token{}, false, l.errorf("unexpected character %q", c)
		}
	}
	return Token{}, false, nil
}

func (l *lexer) blockComment() error {
	for {
		if l.atEnd() {
			return l.errorf("unterminated block comment")
		}
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
}

// quotedString scans to the closing quote, keeping escape sequences raw.
func (l *lexer) quotedString(quote rune) (Token, error) {
	var out []rune
	escaped := false
	for !l.atEnd() && (l.peek() != quote || escaped) {
		c := l.advance()
		if c == '\\' {
			escaped = !escaped
		} else {
			escaped = false
		}
		out = append(out, c)
	}
	if l.atEnd() {
		return Token{}, l.errorf("unterminated string")
	}
	l.advance()
	return l.token(TokenString, string(out)), nil
}

func (l *lexer) number(start rune) Token {
	out := []rune{start}
	for !l.atEnd() && isDigit(l.peek()) {
		out = append(out, l.advance())
	}
	if l.peek() == '.' {
		out = append(out, l.advance())
		for !l.atEnd() && isDigit(l.peek()) {
			out = append(out, l.advance())
		}
	}
	return l.token(TokenNumber, string(out))
}

func (l *lexer) identifier(start rune) Token {
	out := []rune{start}
	for !l.atEnd() && isIdentPart(l.peek()) {
		out = append(out, l.advance())
	}
	return l.token(TokenIdentifier, string(out))
}

// hereDoc is entered with the three angle brackets consumed. The title may be
// bare, or quoted for nowdoc and double-quoted heredoc forms. The body runs
// until the first occurrence of the title; fixture corpora must not embed the
// title inside the body text.
func (l *lexer) hereDoc() (Token, error) {
	var title []rune
	if l.peek() == '\'' || l.peek() == '"' {
		opening := l.advance()
		for !l.atEnd() && l.peek() != opening {
			title = append(title, l.advance())
		}
		if l.atEnd() {
			return Token{}, l.errorf("unterminated heredoc")
		}
		l.advance()
	} else {
		for !l.atEnd() && l.peek() != '\n' {
			title = append(title, l.advance())
		}
	}
	if l.atEnd() {
		return Token{}, l.errorf("unterminated heredoc")
	}
	l.advance()

	var doc []rune
	for {
		if l.pos+len(title) > len(l.src) {
			return Token{}, l.errorf("unterminated heredoc")
		}
		found := true
		for i, c := range title {
			if l.src[l.pos+i] != c {
				found = false
				break
			}
		}
		if found {
			for range title {
				l.advance()
			}
			break
		}
		doc = append(doc, l.advance())
	}
	return l.token(TokenHereDoc, string(doc)), nil
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c rune) bool {
	return c == '_' || c == '$' || c == '\\' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return c == '_' || c == '\\' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
