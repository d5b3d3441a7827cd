// Package lang is the L4 AST adapter of spec.md §4.4: a minimal lexer and
// recursive-descent parser for Zen source files, exposing a flat token array
// and a flat node array rather than a tree.
//
// spec.md §1 treats "the concrete parser/AST for the target language" as an
// external collaborator, assumed to be supplied by the target toolchain and
// referenced only through this adapter's interface. No such Go library
// exists in the pack for a Zig-like language (see DESIGN.md), so this
// package is a small hand-written stand-in, scoped to exactly the
// constructs the rest of the analysis engine needs: function/variable/
// container declarations, imports, field access, pointer/optional/error-union
// types, and labeled blocks.
package lang

// TokenTag identifies the lexical category of a Token.
type TokenTag int

const (
	TokInvalid TokenTag = iota
	TokEOF

	TokIdentifier
	TokBuiltin // @name
	TokStringLiteral
	TokIntegerLiteral
	TokFloatLiteral
	TokDocComment  // ///
	TokLineComment // // (not doc)

	// Keywords
	TokKeywordFn
	TokKeywordConst
	TokKeywordVar
	TokKeywordPub
	TokKeywordReturn
	TokKeywordStruct
	TokKeywordEnum
	TokKeywordUnion
	TokKeywordOpaque
	TokKeywordError
	TokKeywordTry
	TokKeywordCatch
	TokKeywordIf
	TokKeywordElse
	TokKeywordWhile
	TokKeywordFor
	TokKeywordSwitch
	TokKeywordBreak
	TokKeywordContinue
	TokKeywordUndefined
	TokKeywordNull
	TokKeywordTrue
	TokKeywordFalse
	TokKeywordOrelse

	// Punctuation
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokDot
	TokComma
	TokColon
	TokSemicolon
	TokEqual
	TokEqualEqual
	TokBang
	TokQuestion
	TokStar
	TokAmpersand
	TokArrow
	TokPlus
	TokMinus
	TokSlash
	TokPercent
)

// keywords maps a source lexeme to its keyword tag.
var keywords = map[string]TokenTag{
	"fn":        TokKeywordFn,
	"const":     TokKeywordConst,
	"var":       TokKeywordVar,
	"pub":       TokKeywordPub,
	"return":    TokKeywordReturn,
	"struct":    TokKeywordStruct,
	"enum":      TokKeywordEnum,
	"union":     TokKeywordUnion,
	"opaque":    TokKeywordOpaque,
	"error":     TokKeywordError,
	"try":       TokKeywordTry,
	"catch":     TokKeywordCatch,
	"if":        TokKeywordIf,
	"else":      TokKeywordElse,
	"while":     TokKeywordWhile,
	"for":       TokKeywordFor,
	"switch":    TokKeywordSwitch,
	"break":     TokKeywordBreak,
	"continue":  TokKeywordContinue,
	"undefined": TokKeywordUndefined,
	"null":      TokKeywordNull,
	"true":      TokKeywordTrue,
	"false":     TokKeywordFalse,
	"orelse":    TokKeywordOrelse,
}

// Token is one lexical unit. Start/End are byte offsets into the source,
// with End exclusive, per spec.md §4.4 ("token_source(i) -> byte_range").
type Token struct {
	Tag   TokenTag
	Start int
	End   int
}

// IsDocComment reports whether t is a doc-comment token (`///`).
func (t Token) IsDocComment() bool { return t.Tag == TokDocComment }
