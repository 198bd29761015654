package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

// Lexer structs maintain state during the lexical analysis of a chunk of source
// code, generating a sequence of Tokens. Malformed input never stops the Lexer:
// it produces an Error token together with a lexical message and carries on
type Lexer struct {
	Scanner    *Scanner
	Grammar    *Grammar
	peekBuffer []lexResult
	lastLine   int
}

// lexResult pairs a token with the message produced while lexing it so that
// the message is handed out exactly once, by Next
type lexResult struct {
	tok Token
	msg feedback.Message
}

// NewLexer is a constructor function that takes a File and a Grammar and
// returns a reference to a newly minted Lexer struct
func NewLexer(file *source.File, grammar *Grammar) *Lexer {
	return &Lexer{
		Scanner: NewScanner(file),
		Grammar: grammar,
	}
}

// Reset restarts lexing from the top of the file
func (l *Lexer) Reset() {
	l.Scanner.Reset()
	l.peekBuffer = nil
	l.lastLine = 0
}

// Tokenize lexes a whole file and returns its tokens, ending with a single
// EOF token, along with any lexical messages
func Tokenize(file *source.File) (toks []Token, msgs []feedback.Message) {
	lexer := NewLexer(file, aegisGrammar)

	for {
		tok, msg := lexer.Next()
		toks = append(toks, tok)

		if msg != nil {
			msgs = append(msgs, msg)
		}

		if tok.Kind == EOFToken {
			return toks, msgs
		}
	}
}

// readNextToken is responsible for digesting characters from a scanner and
// producing the next Token. Whitespace and comments are skipped first; they
// never produce tokens
func (l *Lexer) readNextToken() (tok Token, msg feedback.Message) {
	l.skipTrivia()

	peek, pos, eof := l.Scanner.Peek()

	switch {
	case eof:
		tok = Token{Kind: EOFToken, Symbol: EOFSymbol, Lexeme: "", Span: source.Span{Start: pos, End: pos}}
	case l.Grammar.isAlphabetical(peek):
		tok = l.lexWord()
	case l.Grammar.isNumeric(peek):
		tok = l.lexNumber()
	case peek == '"':
		tok, msg = l.lexString()
	case l.Grammar.isPunctuatorRune(peek):
		tok = l.lexPunctuator()
	default:
		var ok bool
		if tok, ok = l.lexOperator(); !ok {
			tok, msg = l.lexIllegal()
		}
	}

	tok.LineStart = tok.Span.Start.Line != l.lastLine
	l.lastLine = tok.Span.Start.Line

	return tok, msg
}

// skipTrivia consumes whitespace and `#` comments up to the next meaningful
// rune
func (l *Lexer) skipTrivia() {
	for {
		r, _, eof := l.Scanner.Peek()

		switch {
		case eof:
			return
		case l.Grammar.isWhitespace(r):
			l.Scanner.Next()
		case l.Grammar.isCommentStart(r):
			// consume ALL runes after the comment's start until the end of
			// the line or file is reached (whichever is sooner)
			for {
				r, _, eof = l.Scanner.Peek()
				if eof || l.Grammar.isLineBreak(r) {
					break
				}
				l.Scanner.Next()
			}
		default:
			return
		}
	}
}

// Identifiers and Keywords
//   - match [A-Za-z_][A-Za-z0-9_']*
//   - keywords and boolean literals win only on an exact match
func (l *Lexer) lexWord() Token {
	start := l.Scanner.Pos()

	for {
		r, _, eof := l.Scanner.Peek()
		if eof || !l.Grammar.isWordRune(r) {
			break
		}
		l.Scanner.Next()
	}

	span := source.Span{Start: start, End: l.Scanner.Pos()}
	lexeme := l.Scanner.File.Text(span)

	switch {
	case l.Grammar.isKeyword(lexeme):
		return Token{Kind: KeywordToken, Symbol: TokenSymbol(lexeme), Lexeme: lexeme, Span: span}
	case l.Grammar.isBoolean(lexeme):
		return Token{Kind: BooleanToken, Symbol: BooleanSymbol, Lexeme: lexeme, Value: lexeme == "true", Span: span}
	default:
		return Token{Kind: IdentToken, Symbol: IdentSymbol, Lexeme: lexeme, Span: span}
	}
}

// Number literals
//   - match [0-9]+(\.[0-9]+)?
//   - a decimal point is only part of the number when a digit follows it so
//     member access on a literal still scans
func (l *Lexer) lexNumber() Token {
	start := l.Scanner.Pos()
	seenPoint := false

	for {
		r, _, eof := l.Scanner.Peek()

		if eof {
			break
		}

		if l.Grammar.isNumeric(r) {
			l.Scanner.Next()
			continue
		}

		if r == '.' && !seenPoint && l.Grammar.isNumeric(l.Scanner.PeekSecond()) {
			seenPoint = true
			l.Scanner.Next()
			continue
		}

		break
	}

	span := source.Span{Start: start, End: l.Scanner.Pos()}
	lexeme := l.Scanner.File.Text(span)

	// Digit-only lexemes always parse; a range error still yields ±Inf which
	// is the closest representable value
	value, _ := strconv.ParseFloat(lexeme, 64)

	return Token{Kind: NumberToken, Symbol: NumberSymbol, Lexeme: lexeme, Value: value, Span: span}
}

var escapes = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'"':  '"',
	'{':  '{',
	'}':  '}',
}

// String literal
//   - match double quoted string on a single line
//   - escape sequences are decoded into the token's Value
func (l *Lexer) lexString() (tok Token, msg feedback.Message) {
	start := l.Scanner.Pos()
	l.Scanner.Next()

	var value strings.Builder
	inEscapeSeq := false
	escapeStart := start

	for {
		r, pos, eof := l.Scanner.Peek()

		// Return with an error if the string reaches the end of the line or
		// the file before it was closed
		if eof || l.Grammar.isLineBreak(r) {
			span := source.Span{Start: start, End: pos}
			msg = feedback.Error{
				Code: feedback.UnterminatedString,
				File: l.Scanner.File,
				What: feedback.Selection{
					Description: "string literal is never closed",
					Span:        span,
				},
			}

			return Token{Kind: ErrorToken, Symbol: ErrorSymbol, Lexeme: l.Scanner.File.Text(span), Span: span}, msg
		}

		l.Scanner.Next()

		if inEscapeSeq {
			inEscapeSeq = false

			if decoded, ok := escapes[r]; ok {
				value.WriteRune(decoded)
			} else {
				value.WriteRune(r)

				if msg == nil {
					msg = feedback.Error{
						Code: feedback.InvalidEscape,
						File: l.Scanner.File,
						What: feedback.Selection{
							Description: fmt.Sprintf("unknown escape sequence `\\%c`", r),
							Span:        source.Span{Start: escapeStart, End: l.Scanner.Pos()},
						},
					}
				}
			}

			continue
		}

		if r == '\\' {
			inEscapeSeq = true
			escapeStart = pos
			continue
		}

		// Exit the loop if the rune was an unescaped double quote
		if r == '"' {
			break
		}

		value.WriteRune(r)
	}

	span := source.Span{Start: start, End: l.Scanner.Pos()}

	return Token{
		Kind:   StringToken,
		Symbol: StringSymbol,
		Lexeme: l.Scanner.File.Text(span),
		Value:  value.String(),
		Span:   span,
	}, msg
}

// Operators
//   - the longest operator prefixing the rest of the input wins, so `=>` is
//     checked before falling back to `=`
func (l *Lexer) lexOperator() (tok Token, ok bool) {
	op, ok := l.Grammar.matchOperator(l.Scanner.Rest())
	if !ok {
		return tok, false
	}

	start := l.Scanner.Pos()
	for range op {
		l.Scanner.Next()
	}

	return Token{
		Kind:   OperatorToken,
		Symbol: TokenSymbol(op),
		Lexeme: op,
		Span:   source.Span{Start: start, End: l.Scanner.Pos()},
	}, true
}

// Punctuators
//   - always consist of a single character
func (l *Lexer) lexPunctuator() Token {
	r, pos, _ := l.Scanner.Next()

	return Token{
		Kind:   DelimiterToken,
		Symbol: TokenSymbol(string(r)),
		Lexeme: string(r),
		Span:   source.Span{Start: pos, End: l.Scanner.Pos()},
	}
}

func (l *Lexer) lexIllegal() (tok Token, msg feedback.Message) {
	r, pos, _ := l.Scanner.Next()
	span := source.Span{Start: pos, End: l.Scanner.Pos()}

	msg = feedback.Error{
		Code: feedback.IllegalCharacter,
		File: l.Scanner.File,
		What: feedback.Selection{
			Description: fmt.Sprintf("unexpected character %q", r),
			Span:        span,
		},
	}

	return Token{Kind: ErrorToken, Symbol: ErrorSymbol, Lexeme: string(r), Span: span}, msg
}

// fill makes sure the peek buffer holds at least n tokens
func (l *Lexer) fill(n int) {
	for len(l.peekBuffer) < n {
		if k := len(l.peekBuffer); k > 0 && l.peekBuffer[k-1].tok.Kind == EOFToken {
			l.peekBuffer = append(l.peekBuffer, l.peekBuffer[k-1])
			l.peekBuffer[k].msg = nil
			continue
		}

		tok, msg := l.readNextToken()
		l.peekBuffer = append(l.peekBuffer, lexResult{tok, msg})
	}
}

// Peek returns the next token WITHOUT advancing the lexer. Once the next token
// has been peek'ed it is cached in the Lexer so repeated calls to Peek will not
// do duplicate lexing work
func (l *Lexer) Peek() Token {
	return l.PeekAt(0)
}

// PeekAt returns the token n positions ahead without advancing the lexer
func (l *Lexer) PeekAt(n int) Token {
	l.fill(n + 1)
	return l.peekBuffer[n].tok
}

// PeekMatches returns true if the upcoming token matches a given TokenSymbol
func (l *Lexer) PeekMatches(sym TokenSymbol) (matches bool) {
	return l.Peek().Symbol == sym
}

// Next returns the upcoming token and advances the Lexer, along with the
// lexical message produced for that token if there was one. Past the end of
// the input Next keeps returning the EOF token
func (l *Lexer) Next() (tok Token, msg feedback.Message) {
	l.fill(1)

	res := l.peekBuffer[0]
	if res.tok.Kind == EOFToken && len(l.peekBuffer) == 1 {
		l.peekBuffer[0].msg = nil
		return res.tok, res.msg
	}

	l.peekBuffer = l.peekBuffer[1:]
	return res.tok, res.msg
}
