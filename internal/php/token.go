// Package php tokenizes and structurally parses PHP source files without
// requiring them to be valid. The parser tracks bracket depth instead of
// building a full AST, which lets it skim broken or partial code and still
// recover classes, methods, and branch statements for complexity scoring.
package php

import "fmt"

// TokenType identifies the lexical category of a token.
type TokenType int

const (
	TokenPhpTag TokenType = iota

	// Single character tokens
	TokenLeftParen
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenDot
	TokenMinus
	TokenPlus
	TokenSemicolon
	TokenSlash
	TokenStar
	TokenQuestion
	TokenColon
	TokenPipe
	TokenHash
	TokenAmp
	TokenPercent
	TokenAt
	TokenTilde

	// One, two or three character tokens
	TokenBang
	TokenBangEqual
	TokenBangEqualEqual
	TokenEqual
	TokenEqualEqual
	TokenEqualEqualEqual
	TokenGreater
	TokenGreaterEqual
	TokenLess
	TokenLessEqual
	TokenOr
	TokenAnd
	TokenFatArrow
	TokenArrow
	TokenDoubleColon

	// Literals
	TokenIdentifier
	TokenString
	TokenHereDoc
	TokenNumber
)

var tokenNames = map[TokenType]string{
	TokenPhpTag:          "php_tag",
	TokenLeftParen:       "left_paren",
	TokenRightParen:      "right_paren",
	TokenLeftBrace:       "left_brace",
	TokenRightBrace:      "right_brace",
	TokenLeftBracket:     "left_bracket",
	TokenRightBracket:    "right_bracket",
	TokenComma:           "comma",
	TokenDot:             "dot",
	TokenMinus:           "minus",
	TokenPlus:            "plus",
	TokenSemicolon:       "semicolon",
	TokenSlash:           "slash",
	TokenStar:            "star",
	TokenQuestion:        "question",
	TokenColon:           "colon",
	TokenPipe:            "pipe",
	TokenHash:            "hash",
	TokenAmp:             "amp",
	TokenPercent:         "percent",
	TokenAt:              "at",
	TokenTilde:           "tilde",
	TokenBang:            "bang",
	TokenBangEqual:       "bang_equal",
	TokenBangEqualEqual:  "bang_equal_equal",
	TokenEqual:           "equal",
	TokenEqualEqual:      "equal_equal",
	TokenEqualEqualEqual: "equal_equal_equal",
	TokenGreater:         "greater",
	TokenGreaterEqual:    "greater_equal",
	TokenLess:            "less",
	TokenLessEqual:       "less_equal",
	TokenOr:              "or",
	TokenAnd:             "and",
	TokenFatArrow:        "fat_arrow",
	TokenArrow:           "arrow",
	TokenDoubleColon:     "double_colon",
	TokenIdentifier:      "identifier",
	TokenString:          "string",
	TokenHereDoc:         "heredoc",
	TokenNumber:          "number",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a single lexical unit with its 1-indexed source line.
// String and heredoc lexemes carry the raw content with escapes unprocessed.
type Token struct {
	Type   TokenType
	Line   int
	Lexeme string
}

// SyntaxError reports a lex or parse failure at a source line. Files that
// produce one are skipped by the scanner, never fatal to a scan.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
