package frontend

import (
	"fmt"

	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

// Parse takes a file and returns an abstract-syntax-tree and any errors/warnings
// generated during the lexing and parsing processes. A Program is always
// returned, with BadStmt and BadExpr nodes where the input could not be parsed
func Parse(file *source.File, opts Options) (prog *Program, msgs []feedback.Message) {
	opts = opts.withDefaults()
	log := feedback.NewLog(opts.MaxDiagnostics)
	prog = parse(file, log, opts)
	return prog, log.Messages()
}

func parse(file *source.File, log *feedback.Log, opts Options) *Program {
	return NewParser(file, log, opts.MaxDepth).Parse()
}

type binaryParselet func(*Parser, Token, Expr) (Expr, feedback.Message)
type unaryParselet func(*Parser, Token) (Expr, feedback.Message)

// Parser instances contain a Lexer instance and tables of unary and binary
// operator precedences and parselets. Layout is tracked with indent, the
// column of the statements of the innermost block, and nesting, the number of
// open brackets around the current expression
type Parser struct {
	Lexer            *Lexer
	log              *feedback.Log
	maxDepth         int
	depth            int
	nesting          int
	indent           int
	last             Token
	lineHead         int
	binaryPrecedence map[TokenSymbol]int
	unaryPrecedence  map[TokenSymbol]int
	binaryParselets  map[TokenSymbol]binaryParselet
	unaryParselets   map[TokenSymbol]unaryParselet
}

// NewParser is a Parser factory function that populates the Parser's parselet
// table with the appropriate symbols, precedence values and parselet functions.
// Lexical messages for consumed tokens and syntax messages go to log
func NewParser(file *source.File, log *feedback.Log, maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	p := &Parser{
		Lexer:            NewLexer(file, aegisGrammar),
		log:              log,
		maxDepth:         maxDepth,
		indent:           1,
		binaryPrecedence: make(map[TokenSymbol]int),
		unaryPrecedence:  make(map[TokenSymbol]int),
		binaryParselets:  make(map[TokenSymbol]binaryParselet),
		unaryParselets:   make(map[TokenSymbol]unaryParselet),
	}

	// Literals and other atoms
	p.addUnaryParselet(NumberSymbol, 0, numberParselet)
	p.addUnaryParselet(StringSymbol, 0, stringParselet)
	p.addUnaryParselet(BooleanSymbol, 0, booleanParselet)
	p.addUnaryParselet(NothingSymbol, 0, nothingParselet)
	p.addUnaryParselet(IdentSymbol, 0, identParselet)
	p.addUnaryParselet(ErrorSymbol, 0, errorParselet)
	p.addUnaryParselet(LParenSymbol, 0, groupParselet)
	p.addUnaryParselet(LBracketSymbol, 0, listParselet)
	p.addUnaryParselet(LBraceSymbol, 0, mapParselet)
	p.addUnaryParselet(IfSymbol, 0, ifParselet)
	p.addUnaryParselet(WhenSymbol, 0, whenParselet)
	p.addUnaryParselet(AskJSSymbol, 0, foreignCallParselet)

	// Prefix operators
	p.addUnaryParselet(MinusSymbol, 80, unaryPrefixParselet(80))
	p.addUnaryParselet(BangSymbol, 80, unaryPrefixParselet(80))
	p.addUnaryParselet(NotSymbol, 80, unaryPrefixParselet(80))
	p.addUnaryParselet(AwaitSymbol, 80, awaitParselet)

	// Assignment is right associative
	p.addBinaryParselet(AssignSymbol, 10, assignParselet)

	// Logical expressions
	p.addBinaryParselet(OrSymbol, 20, binaryInfixParselet(20))
	p.addBinaryParselet(TokenSymbol("||"), 20, binaryInfixParselet(20))
	p.addBinaryParselet(AndSymbol, 30, binaryInfixParselet(30))
	p.addBinaryParselet(TokenSymbol("&&"), 30, binaryInfixParselet(30))

	// Equality and relational comparison expressions
	p.addBinaryParselet(TokenSymbol("=="), 40, binaryInfixParselet(40))
	p.addBinaryParselet(TokenSymbol("!="), 40, binaryInfixParselet(40))
	p.addBinaryParselet(LessSymbol, 50, binaryInfixParselet(50))
	p.addBinaryParselet(GreaterSymbol, 50, binaryInfixParselet(50))
	p.addBinaryParselet(TokenSymbol("<="), 50, binaryInfixParselet(50))
	p.addBinaryParselet(TokenSymbol(">="), 50, binaryInfixParselet(50))

	// Arithmetic expressions
	p.addBinaryParselet(TokenSymbol("+"), 60, binaryInfixParselet(60))
	p.addBinaryParselet(MinusSymbol, 60, binaryInfixParselet(60))
	p.addBinaryParselet(TokenSymbol("*"), 70, binaryInfixParselet(70))
	p.addBinaryParselet(TokenSymbol("/"), 70, binaryInfixParselet(70))
	p.addBinaryParselet(TokenSymbol("%"), 70, binaryInfixParselet(70))

	// Calls, member access and list/map indexing
	p.addBinaryParselet(LParenSymbol, 90, callParselet)
	p.addBinaryParselet(DotSymbol, 90, memberParselet)
	p.addBinaryParselet(LBracketSymbol, 90, indexParselet)

	return p
}

func (p *Parser) addBinaryParselet(sym TokenSymbol, precedence int, parselet binaryParselet) {
	p.binaryPrecedence[sym] = precedence
	p.binaryParselets[sym] = parselet
}

func (p *Parser) addUnaryParselet(sym TokenSymbol, precedence int, parselet unaryParselet) {
	p.unaryPrecedence[sym] = precedence
	p.unaryParselets[sym] = parselet
}

func (p *Parser) file() *source.File {
	return p.Lexer.Scanner.File
}

// next consumes a token, logging the lexical message attached to it
func (p *Parser) next() Token {
	tok, msg := p.Lexer.Next()
	p.log.Add(msg)
	p.last = tok
	return tok
}

func (p *Parser) peek() Token {
	return p.Lexer.Peek()
}

// atLineEnd reports whether the upcoming token can not continue the current
// line: end of input, or the first token of a new line outside brackets
func (p *Parser) atLineEnd() bool {
	tok := p.peek()
	return tok.Kind == EOFToken || (tok.LineStart && p.nesting == 0)
}

// expect consumes the next token if it carries sym and reports a missing
// delimiter otherwise. The unexpected token is left in place
func (p *Parser) expect(sym TokenSymbol) (tok Token, msg feedback.Message) {
	if tok = p.peek(); tok.Symbol == sym {
		return p.next(), nil
	}

	return tok, p.missing(fmt.Sprintf("`%s`", sym), tok)
}

func (p *Parser) expectIdent(what string) (ident *Ident, msg feedback.Message) {
	tok := p.peek()
	if tok.Symbol != IdentSymbol {
		return nil, p.unexpected(what, tok)
	}

	p.next()
	return &Ident{Name: tok.Lexeme, Span: tok.Span}, nil
}

// unexpected builds an E003 message. Error tokens already carry a lexical
// message so no second one is produced for them
func (p *Parser) unexpected(expected string, found Token) feedback.Message {
	return p.syntaxError(feedback.UnexpectedToken, expected, found)
}

// missing builds an E004 message for an absent delimiter or block
func (p *Parser) missing(expected string, found Token) feedback.Message {
	return p.syntaxError(feedback.MissingDelimiter, expected, found)
}

func (p *Parser) syntaxError(code feedback.Code, expected string, found Token) feedback.Message {
	if found.Kind == ErrorToken {
		return alreadyReported{span: found.Span}
	}

	description := fmt.Sprintf("expected %s, found %s", expected, found)
	span := found.Span

	// point just past the last token of the line rather than at the next line
	if found.LineStart && found.Span.Start.Offset != p.lineHead && p.nesting == 0 && p.last.Lexeme != "" {
		description = fmt.Sprintf("expected %s before the end of the line", expected)
		span = source.Span{Start: p.last.Span.End, End: p.last.Span.End}
	}

	return feedback.Error{
		Code: code,
		File: p.file(),
		What: feedback.Selection{
			Description: description,
			Span:        span,
		},
	}
}

// alreadyReported stands in for a syntax message when the offending token's
// fault was logged by the lexer. It unwinds like any other message but is
// never logged
type alreadyReported struct {
	span source.Span
}

func (alreadyReported) Make(withColor bool) string { return "" }

func (a alreadyReported) Diagnostic() feedback.Diagnostic {
	return feedback.Diagnostic{Phase: feedback.Syntax, Span: a.span}
}

func (p *Parser) report(msg feedback.Message) {
	if _, ok := msg.(alreadyReported); !ok {
		p.log.Add(msg)
	}
}

// enter guards against pathologically deep input. Every call that returns
// nil must be paired with a call to leave
func (p *Parser) enter(tok Token) feedback.Message {
	if p.depth >= p.maxDepth {
		return feedback.Error{
			Code: feedback.NestingTooDeep,
			File: p.file(),
			What: feedback.Selection{
				Description: fmt.Sprintf("input is nested more than %d levels deep", p.maxDepth),
				Span:        tok.Span,
			},
		}
	}

	p.depth++
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) nextPrecedence() int {
	if p.atLineEnd() {
		return 0
	}

	return p.binaryPrecedence[p.peek().Symbol]
}

// parseExpression returns a node representing the next expression so long as
// the next expression does not have less precedence than the "precedence"
// parameter
func (p *Parser) parseExpression(precedence int) (expr Expr, msg feedback.Message) {
	tok := p.peek()

	if msg = p.enter(tok); msg != nil {
		return nil, msg
	}
	defer p.leave()

	unary, ok := p.unaryParselets[tok.Symbol]
	if !ok {
		return nil, p.unexpected("an expression", tok)
	}

	p.next()
	if expr, msg = unary(p, tok); msg != nil {
		return nil, msg
	}

	// left-associated expressions based on their relative precedence
	for precedence < p.nextPrecedence() {
		tok = p.next()

		if expr, msg = p.binaryParselets[tok.Symbol](p, tok, expr); msg != nil {
			return nil, msg
		}
	}

	return expr, nil
}

// synchronize discards tokens until the start of a line at or left of the
// current block column with no brackets left open, or the end of input. At
// least one token is consumed when the failed line started at the current
// token so that recovery always makes progress
func (p *Parser) synchronize(start Token) source.Pos {
	end := start.Span.End
	if p.last.Span.End.Offset > end.Offset {
		end = p.last.Span.End
	}
	balance := 0

	if p.peek().Span.Start.Offset == start.Span.Start.Offset && start.Kind != EOFToken {
		tok := p.next()
		balance += bracketDelta(tok)
		end = tok.Span.End
	}

	for {
		tok := p.peek()

		if tok.Kind == EOFToken {
			return end
		}

		if tok.LineStart && tok.Span.Start.Col <= p.indent && balance <= 0 {
			return end
		}

		p.next()
		balance += bracketDelta(tok)
		end = tok.Span.End
	}
}

func bracketDelta(tok Token) int {
	switch tok.Symbol {
	case LParenSymbol, LBracketSymbol, LBraceSymbol:
		return 1
	case RParenSymbol, RBracketSymbol, RBraceSymbol:
		return -1
	}
	return 0
}

// parseLines calls line once for every line starting at column indent, until
// a line starts further left or the input ends. A failing line is logged,
// skipped with synchronize and handed to bad. Lines starting further right
// than indent are reported as unexpected indentation
func (p *Parser) parseLines(indent int, line func() feedback.Message, bad func(source.Span)) {
	outer := p.indent
	p.indent = indent
	defer func() { p.indent = outer }()

	for {
		start := p.peek()

		if start.Kind == EOFToken || start.Span.Start.Col < indent {
			return
		}

		p.lineHead = start.Span.Start.Offset

		var msg feedback.Message
		if start.Span.Start.Col > indent {
			msg = feedback.Error{
				Code: feedback.UnexpectedToken,
				File: p.file(),
				What: feedback.Selection{
					Description: "unexpected indentation",
					Span:        start.Span,
				},
			}
		} else if msg = line(); msg == nil && !p.atLineEnd() {
			msg = p.unexpected("the end of the line", p.peek())
		}

		if msg != nil {
			p.report(msg)
			end := p.synchronize(start)
			bad(source.Span{Start: start.Span.Start, End: end})
		}
	}
}

// parseStatements collects the statements of a block whose lines start at
// column indent
func (p *Parser) parseStatements(indent int) (stmts []Stmt) {
	var partial Stmt
	p.parseLines(indent, func() feedback.Message {
		stmt, msg := p.parseStatement()
		if msg == nil {
			stmts = append(stmts, stmt)
		} else {
			partial = stmt
		}
		return msg
	}, func(span source.Span) {
		stmts = append(stmts, recovered(partial, span))
		partial = nil
	})

	return stmts
}

// recovered is what remains of a line that failed to parse. A variable
// declaration whose name was read is kept with a bad initializer stretched
// over the skipped tokens; anything else becomes a BadStmt
func recovered(partial Stmt, span source.Span) Stmt {
	if decl, ok := partial.(*VarDecl); ok {
		if bad, ok := decl.Init.(*BadExpr); ok && span.End.Offset > bad.Span.End.Offset {
			bad.Span.End = span.End
		}
		return decl
	}

	return &BadStmt{Span: span}
}

// parseBlock parses the body following a colon: either a single statement
// on the same line or an indented run of statements
func (p *Parser) parseBlock(colon Token) (block *Block, msg feedback.Message) {
	if msg = p.enter(colon); msg != nil {
		return nil, msg
	}
	defer p.leave()

	outer := p.nesting
	p.nesting = 0
	defer func() { p.nesting = outer }()

	block = &Block{Colon: colon}
	tok := p.peek()

	if !tok.LineStart && tok.Kind != EOFToken {
		stmt, msg := p.parseStatement()
		if msg != nil {
			return nil, msg
		}

		block.Stmts = []Stmt{stmt}
		return block, nil
	}

	if tok.Kind == EOFToken || tok.Span.Start.Col <= p.indent {
		return nil, p.missing("an indented block", tok)
	}

	block.Stmts = p.parseStatements(tok.Span.Start.Col)
	return block, nil
}

// indented checks that the next token starts a line deeper than the current
// block and returns its column
func (p *Parser) indented(what string) (col int, msg feedback.Message) {
	tok := p.peek()

	if tok.Kind == EOFToken || !tok.LineStart || tok.Span.Start.Col <= p.indent {
		return 0, p.missing(what, tok)
	}

	return tok.Span.Start.Col, nil
}

// Parse produces an AST from a set of parselets, a grammar and a lexer
func (p *Parser) Parse() *Program {
	prog := &Program{}

	// the first line sets the top-level column; a later line further left
	// starts a new run rather than ending the program
	for first := p.peek(); first.Kind != EOFToken; first = p.peek() {
		prog.Decls = append(prog.Decls, p.parseStatements(first.Span.Start.Col)...)
	}

	// consume the end of input so that its lexical message, if any, is logged
	prog.eof = p.next().Span.Start
	return prog
}
