package frontend

import (
	"fmt"

	"github.com/Heartless-Veteran/Aegis/source"
)

// TokenSymbol is the classification system for tokens. Identifier and literal
// tokens are represented by general token symbols (like "Identifier") while
// keyword, operator and punctuation tokens are represented by their literal
// values
type TokenSymbol string

// TokenKind is the coarse variant of a token
type TokenKind int

// Token kinds
const (
	ErrorToken TokenKind = iota
	NumberToken
	StringToken
	BooleanToken
	IdentToken
	KeywordToken
	OperatorToken
	DelimiterToken
	EOFToken
)

var tokenKindNames = [...]string{
	ErrorToken:     "error",
	NumberToken:    "number",
	StringToken:    "string",
	BooleanToken:   "boolean",
	IdentToken:     "identifier",
	KeywordToken:   "keyword",
	OperatorToken:  "operator",
	DelimiterToken: "delimiter",
	EOFToken:       "end of input",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token structs represent a lexical atom and are tagged with a token symbol
// classification, a decoded literal value and source code span data.
// LineStart is set on the first token of every line; the parser uses it
// together with the start column to find block boundaries
type Token struct {
	Kind      TokenKind
	Symbol    TokenSymbol
	Lexeme    string
	Value     interface{}
	Span      source.Span
	LineStart bool
}

func (t Token) String() string {
	switch t.Kind {
	case EOFToken:
		return "end of input"
	case IdentToken:
		return fmt.Sprintf("identifier `%s`", t.Lexeme)
	case NumberToken, StringToken, BooleanToken:
		return fmt.Sprintf("%s `%s`", t.Kind, t.Lexeme)
	default:
		return fmt.Sprintf("`%s`", t.Lexeme)
	}
}

// Is reports whether the token carries the given symbol
func (t Token) Is(sym TokenSymbol) bool {
	return t.Symbol == sym
}

// The most common token symbols are defined as part of the "frontend" package
const (
	EOFSymbol      TokenSymbol = "EOF"
	ErrorSymbol    TokenSymbol = "Error"
	IdentSymbol    TokenSymbol = "Identifier"
	NumberSymbol   TokenSymbol = "Number"
	StringSymbol   TokenSymbol = "String"
	BooleanSymbol  TokenSymbol = "Boolean"
	LBracketSymbol TokenSymbol = "["
	RBracketSymbol TokenSymbol = "]"
	LParenSymbol   TokenSymbol = "("
	RParenSymbol   TokenSymbol = ")"
	LBraceSymbol   TokenSymbol = "{"
	RBraceSymbol   TokenSymbol = "}"
	CommaSymbol    TokenSymbol = ","
	ColonSymbol    TokenSymbol = ":"
	DotSymbol      TokenSymbol = "."
	AssignSymbol   TokenSymbol = "="
	ArrowSymbol    TokenSymbol = "->"
	FatArrowSymbol TokenSymbol = "=>"
	LessSymbol     TokenSymbol = "<"
	GreaterSymbol  TokenSymbol = ">"
	MinusSymbol    TokenSymbol = "-"
	BangSymbol     TokenSymbol = "!"
)

// Keyword symbols
const (
	LetSymbol      TokenSymbol = "let's"
	TrackSymbol    TokenSymbol = "track"
	AppSymbol      TokenSymbol = "app"
	WhenSymbol     TokenSymbol = "when"
	IfSymbol       TokenSymbol = "if"
	ElseSymbol     TokenSymbol = "else"
	ForSymbol      TokenSymbol = "for"
	InSymbol       TokenSymbol = "in"
	IsSymbol       TokenSymbol = "is"
	ShowSymbol     TokenSymbol = "show"
	ChangeSymbol   TokenSymbol = "change"
	ContractSymbol TokenSymbol = "contract"
	EnumSymbol     TokenSymbol = "enum"
	ReturnSymbol   TokenSymbol = "return"
	AsyncSymbol    TokenSymbol = "async"
	AwaitSymbol    TokenSymbol = "await"
	NothingSymbol  TokenSymbol = "nothing"
	AndSymbol      TokenSymbol = "and"
	OrSymbol       TokenSymbol = "or"
	NotSymbol      TokenSymbol = "not"
	AskJSSymbol    TokenSymbol = "ask_js"
)
