package php

// Keyword is a reserved word the parser reacts to. Builtin type names are
// keywords too so that the parser can tell a scalar type hint from a class
// reference without a symbol table.
type Keyword int

const (
	KeywordIf Keyword = iota
	KeywordElseif
	KeywordFor
	KeywordForeach
	KeywordMatch
	KeywordSwitch
	KeywordWhile
	KeywordCase
	KeywordNamespace
	KeywordClass
	KeywordFunction
	KeywordThrow
	KeywordCatch
	KeywordExtends
	KeywordAbstract
	KeywordUse
	KeywordAs
	KeywordPublic
	KeywordPrivate
	KeywordProtected
	KeywordConst
	KeywordStatic
	KeywordReadonly
	KeywordImplements
	KeywordTrait

	// Builtin data types
	KeywordString
	KeywordArray
	KeywordInt
	KeywordFloat
	KeywordBool
	KeywordSelf
	KeywordVoid
	KeywordIterable
	KeywordMixed
)

var keywords = map[string]Keyword{
	"if":         KeywordIf,
	"elseif":     KeywordElseif,
	"for":        KeywordFor,
	"foreach":    KeywordForeach,
	"match":      KeywordMatch,
	"switch":     KeywordSwitch,
	"while":      KeywordWhile,
	"case":       KeywordCase,
	"namespace":  KeywordNamespace,
	"class":      KeywordClass,
	"function":   KeywordFunction,
	"throw":      KeywordThrow,
	"catch":      KeywordCatch,
	"extends":    KeywordExtends,
	"abstract":   KeywordAbstract,
	"use":        KeywordUse,
	"as":         KeywordAs,
	"public":     KeywordPublic,
	"private":    KeywordPrivate,
	"protected":  KeywordProtected,
	"const":      KeywordConst,
	"static":     KeywordStatic,
	"readonly":   KeywordReadonly,
	"implements": KeywordImplements,
	"trait":      KeywordTrait,
	"string":     KeywordString,
	"array":      KeywordArray,
	"int":        KeywordInt,
	"float":      KeywordFloat,
	"bool":       KeywordBool,
	"self":       KeywordSelf,
	"void":       KeywordVoid,
	"iterable":   KeywordIterable,
	"mixed":      KeywordMixed,
	"true":       KeywordBool,
	"false":      KeywordBool,
}

// dataTypes are the lexemes a type hint can use without naming a class.
// readonly and static appear here as well because they occupy the type
// position in property declarations.
var dataTypes = map[string]Keyword{
	"string":   KeywordString,
	"array":    KeywordArray,
	"int":      KeywordInt,
	"float":    KeywordFloat,
	"bool":     KeywordBool,
	"self":     KeywordSelf,
	"void":     KeywordVoid,
	"readonly": KeywordReadonly,
	"iterable": KeywordIterable,
	"static":   KeywordStatic,
	"mixed":    KeywordMixed,
	"true":     KeywordBool,
	"false":    KeywordBool,
}

// MatchKeyword looks up the keyword for an identifier token.
func MatchKeyword(tok Token) (Keyword, bool) {
	if tok.Type != TokenIdentifier {
		return 0, false
	}
	kw, ok := keywords[tok.Lexeme]
	return kw, ok
}

// MatchDataType reports whether an identifier token is a builtin type name.
func MatchDataType(tok Token) (Keyword, bool) {
	if tok.Type != TokenIdentifier {
		return 0, false
	}
	kw, ok := dataTypes[tok.Lexeme]
	return kw, ok
}

// AsVisibility maps the three visibility keywords to their Visibility.
func (k Keyword) AsVisibility() (Visibility, bool) {
	switch k {
	case KeywordPublic:
		return VisibilityPublic, true
	case KeywordPrivate:
		return VisibilityPrivate, true
	case KeywordProtected:
		return VisibilityProtected, true
	}
	return "", false
}
