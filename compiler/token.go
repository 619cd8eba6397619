package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the Tack scanner
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// TokenNone is the type reported past the end of the stream.
	TokenNone TokenType = iota

	// Literals and identifiers
	TokenID     // foo, loop_var
	TokenNum    // 42 (integer-only literal form)
	TokenString // "hello"
	TokenTrue   // True
	TokenFalse  // False

	// Punctuation
	TokenPlus      // +
	TokenMinus     // -
	TokenDiv       // /
	TokenMult      // *
	TokenEquals    // =
	TokenBang      // !
	TokenComma     // ,
	TokenColon     // :
	TokenSemicolon // ;
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]

	// Keywords
	TokenAnd   // and
	TokenElse  // else
	TokenCmp   // cmp
	TokenFn    // fn
	TokenFor   // for
	TokenVar   // var
	TokenIf    // if
	TokenOr    // or
	TokenPrint // print
	TokenRet   // ret
	TokenTo    // to

	// numTokenTypes sizes the parser's dense dispatch tables.
	numTokenTypes
)

var tokenNames = map[TokenType]string{
	TokenNone:      "NONE",
	TokenID:        "ID",
	TokenNum:       "NUM",
	TokenString:    "STRING",
	TokenTrue:      "TRUE",
	TokenFalse:     "FALSE",
	TokenPlus:      "PLUS",
	TokenMinus:     "MINUS",
	TokenDiv:       "DIV",
	TokenMult:      "MULT",
	TokenEquals:    "EQUALS",
	TokenBang:      "BANG",
	TokenComma:     "COMMA",
	TokenColon:     "COLON",
	TokenSemicolon: "SEMICOLON",
	TokenLParen:    "LEFT_PAREN",
	TokenRParen:    "RIGHT_PAREN",
	TokenLBrace:    "LEFT_BRACE",
	TokenRBrace:    "RIGHT_BRACE",
	TokenLBracket:  "LEFT_BRACKET",
	TokenRBracket:  "RIGHT_BRACKET",
	TokenAnd:       "AND",
	TokenElse:      "ELSE",
	TokenCmp:       "CMP",
	TokenFn:        "FN",
	TokenFor:       "FOR",
	TokenVar:       "VAR",
	TokenIf:        "IF",
	TokenOr:        "OR",
	TokenPrint:     "PRINT",
	TokenRet:       "RET",
	TokenTo:        "TO",
}

// tokenReprs maps a token type to its source file representation
// (FOR -> "for", EQUALS -> "=").
var tokenReprs = map[TokenType]string{
	TokenTrue:      "True",
	TokenFalse:     "False",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenDiv:       "/",
	TokenMult:      "*",
	TokenEquals:    "=",
	TokenBang:      "!",
	TokenComma:     ",",
	TokenColon:     ":",
	TokenSemicolon: ";",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenAnd:       "and",
	TokenElse:      "else",
	TokenCmp:       "cmp",
	TokenFn:        "fn",
	TokenFor:       "for",
	TokenVar:       "var",
	TokenIf:        "if",
	TokenOr:        "or",
	TokenPrint:     "print",
	TokenRet:       "ret",
	TokenTo:        "to",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Repr returns the source representation of a token type, falling back to
// its name for types without a fixed spelling (ID, NUM, STRING).
func (t TokenType) Repr() string {
	if repr, ok := tokenReprs[t]; ok {
		return repr
	}
	return t.String()
}

// keywords maps reserved identifier spellings to their token types.
var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"else":  TokenElse,
	"cmp":   TokenCmp,
	"fn":    TokenFn,
	"for":   TokenFor,
	"var":   TokenVar,
	"if":    TokenIf,
	"or":    TokenOr,
	"print": TokenPrint,
	"ret":   TokenRet,
	"to":    TokenTo,
	"True":  TokenTrue,
	"False": TokenFalse,
}

// Token represents a lexical token. The lexeme is the exact source slice;
// for string literals it is the content between the quotes.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int // 1-based
	Column int // resets to 0 on each newline
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Lexeme)
}
