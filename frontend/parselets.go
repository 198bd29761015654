package frontend

import (
	"strings"
	"unicode/utf8"

	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

func identParselet(p *Parser, tok Token) (expr Expr, msg feedback.Message) {
	return &Ident{Name: tok.Lexeme, Span: tok.Span}, nil
}

func numberParselet(p *Parser, tok Token) (expr Expr, msg feedback.Message) {
	value, _ := tok.Value.(float64)
	return &NumberLit{Token: tok, Value: value}, nil
}

func booleanParselet(p *Parser, tok Token) (expr Expr, msg feedback.Message) {
	value, _ := tok.Value.(bool)
	return &BoolLit{Token: tok, Value: value}, nil
}

func nothingParselet(p *Parser, tok Token) (expr Expr, msg feedback.Message) {
	return &NothingLit{Token: tok}, nil
}

// errorParselet turns a malformed token into a hole in the tree. The lexer
// has already reported it
func errorParselet(p *Parser, tok Token) (expr Expr, msg feedback.Message) {
	return &BadExpr{Span: tok.Span}, nil
}

func stringParselet(p *Parser, tok Token) (expr Expr, msg feedback.Message) {
	value, _ := tok.Value.(string)

	return &StringLit{
		Token:          tok,
		Value:          value,
		Interpolations: interpolations(tok),
	}, nil
}

// interpolations finds the `{name}` and `{a.b}` references inside a string
// literal. Escaped braces are skipped and braces around anything other than a
// dotted name are left as plain text. Strings never span lines so a rune's
// column is the token's column plus its rune index
func interpolations(tok Token) (refs []Expr) {
	lexeme := tok.Lexeme
	start := tok.Span.Start

	posAt := func(offset int) source.Pos {
		return source.Pos{
			Offset: start.Offset + offset,
			Line:   start.Line,
			Col:    start.Col + utf8.RuneCountInString(lexeme[:offset]),
		}
	}

	for i := 0; i < len(lexeme); i++ {
		switch lexeme[i] {
		case '\\':
			i++
		case '{':
			end := strings.IndexByte(lexeme[i:], '}')
			if end < 0 {
				return refs
			}

			inner := lexeme[i+1 : i+end]
			if ref := interpolationRef(inner, i+1, posAt); ref != nil {
				refs = append(refs, ref)
			}

			i += end
		}
	}

	return refs
}

func interpolationRef(inner string, offset int, posAt func(int) source.Pos) Expr {
	if inner == "" {
		return nil
	}

	var expr Expr
	for _, part := range strings.Split(inner, ".") {
		if !isDottedPart(part) {
			return nil
		}

		ident := &Ident{
			Name: part,
			Span: source.Span{Start: posAt(offset), End: posAt(offset + len(part))},
		}

		if expr == nil {
			expr = ident
		} else {
			expr = &MemberExpr{Object: expr, Property: ident}
		}

		offset += len(part) + 1
	}

	return expr
}

func isDottedPart(part string) bool {
	if part == "" {
		return false
	}

	for i, r := range part {
		if !aegisGrammar.isAlphabetical(r) && (i == 0 || !aegisGrammar.isWordRune(r)) {
			return false
		}
	}

	return !aegisGrammar.isKeyword(part)
}

func groupParselet(p *Parser, lParen Token) (expr Expr, msg feedback.Message) {
	p.nesting++
	defer func() { p.nesting-- }()

	if expr, msg = p.parseExpression(0); msg != nil {
		return nil, msg
	}

	if _, msg = p.expect(RParenSymbol); msg != nil {
		return nil, msg
	}

	return expr, nil
}

// parseList parses comma separated items up to the closing symbol, which is
// consumed and returned. A trailing comma is allowed
func (p *Parser) parseList(closing TokenSymbol, item func() feedback.Message) (end Token, msg feedback.Message) {
	p.nesting++
	defer func() { p.nesting-- }()

	for !p.Lexer.PeekMatches(closing) {
		if msg = item(); msg != nil {
			return end, msg
		}

		if !p.Lexer.PeekMatches(CommaSymbol) {
			break
		}

		p.next()
	}

	return p.expect(closing)
}

func listParselet(p *Parser, lBracket Token) (expr Expr, msg feedback.Message) {
	list := &ListLit{LBracket: lBracket}

	list.RBracket, msg = p.parseList(RBracketSymbol, func() feedback.Message {
		elem, msg := p.parseExpression(0)
		if msg == nil {
			list.Elements = append(list.Elements, elem)
		}
		return msg
	})

	if msg != nil {
		return nil, msg
	}

	return list, nil
}

func mapParselet(p *Parser, lBrace Token) (expr Expr, msg feedback.Message) {
	m := &MapLit{LBrace: lBrace}

	m.RBrace, msg = p.parseList(RBraceSymbol, func() feedback.Message {
		key, msg := p.parseExpression(0)
		if msg != nil {
			return msg
		}

		if _, msg = p.expect(ColonSymbol); msg != nil {
			return msg
		}

		value, msg := p.parseExpression(0)
		if msg != nil {
			return msg
		}

		m.Entries = append(m.Entries, &MapEntry{Key: key, Value: value})
		return nil
	})

	if msg != nil {
		return nil, msg
	}

	return m, nil
}

func unaryPrefixParselet(precedence int) unaryParselet {
	return func(p *Parser, tok Token) (expr Expr, msg feedback.Message) {
		var operand Expr

		if operand, msg = p.parseExpression(precedence); msg != nil {
			return nil, msg
		}

		return &UnaryExpr{Operator: tok, Operand: operand}, nil
	}
}

func awaitParselet(p *Parser, tok Token) (expr Expr, msg feedback.Message) {
	var operand Expr

	if operand, msg = p.parseExpression(80); msg != nil {
		return nil, msg
	}

	return &AwaitExpr{Keyword: tok, Operand: operand}, nil
}

func binaryInfixParselet(precedence int) binaryParselet {
	return func(p *Parser, tok Token, left Expr) (expr Expr, msg feedback.Message) {
		var right Expr

		if right, msg = p.parseExpression(precedence); msg != nil {
			return nil, msg
		}

		return &BinaryExpr{
			Operator: tok,
			Left:     left,
			Right:    right,
		}, nil
	}
}

// assignParselet binds one level looser on its right hand side so that
// `a = b = c` groups as `a = (b = c)`. Whether the target can be assigned
// to is decided by the checker
func assignParselet(p *Parser, tok Token, left Expr) (expr Expr, msg feedback.Message) {
	var right Expr

	if right, msg = p.parseExpression(10 - 1); msg != nil {
		return nil, msg
	}

	return &AssignExpr{Target: left, Value: right}, nil
}

func callParselet(p *Parser, lParen Token, callee Expr) (expr Expr, msg feedback.Message) {
	call := &CallExpr{Callee: callee, LParen: lParen}

	call.RParen, msg = p.parseList(RParenSymbol, func() feedback.Message {
		arg, msg := p.parseExpression(0)
		if msg == nil {
			call.Args = append(call.Args, arg)
		}
		return msg
	})

	if msg != nil {
		return nil, msg
	}

	return call, nil
}

func memberParselet(p *Parser, dot Token, object Expr) (expr Expr, msg feedback.Message) {
	var property *Ident

	if property, msg = p.expectIdent("a member name"); msg != nil {
		return nil, msg
	}

	return &MemberExpr{Object: object, Property: property}, nil
}

func indexParselet(p *Parser, lBracket Token, object Expr) (expr Expr, msg feedback.Message) {
	p.nesting++
	defer func() { p.nesting-- }()

	var index Expr
	if index, msg = p.parseExpression(0); msg != nil {
		return nil, msg
	}

	var rBracket Token
	if rBracket, msg = p.expect(RBracketSymbol); msg != nil {
		return nil, msg
	}

	return &IndexExpr{Object: object, Index: index, RBracket: rBracket}, nil
}

// elseFollows reports whether the next token is an `else` belonging to the
// construct being parsed: on the same line, or leading a line at the
// construct's own column
func (p *Parser) elseFollows() bool {
	tok := p.peek()
	if tok.Symbol != ElseSymbol {
		return false
	}

	return !tok.LineStart || p.nesting > 0 || tok.Span.Start.Col == p.indent
}

func ifParselet(p *Parser, ifKeyword Token) (expr Expr, msg feedback.Message) {
	var cond Expr
	var colon Token

	if cond, msg = p.parseExpression(0); msg != nil {
		return nil, msg
	}

	if colon, msg = p.expect(ColonSymbol); msg != nil {
		return nil, msg
	}

	node := &IfExpr{Keyword: ifKeyword, Cond: cond}

	if node.Then, msg = p.parseBlock(colon); msg != nil {
		return nil, msg
	}

	if !p.elseFollows() {
		return node, nil
	}

	elseKeyword := p.next()

	// `else if` chains nest the following conditional inside the else block
	if p.Lexer.PeekMatches(IfSymbol) {
		var chained Expr
		if chained, msg = p.parseExpression(0); msg != nil {
			return nil, msg
		}

		node.Else = &Block{Colon: elseKeyword, Stmts: []Stmt{&ExprStmt{X: chained}}}
		return node, nil
	}

	if colon, msg = p.expect(ColonSymbol); msg != nil {
		return nil, msg
	}

	if node.Else, msg = p.parseBlock(colon); msg != nil {
		return nil, msg
	}

	return node, nil
}

// whenParselet parses both the block form
//
//	when subject:
//	    is pattern => value
//	    is pattern: block
//	    else => value
//
// and the short form `when subject is pattern: block`
func whenParselet(p *Parser, whenKeyword Token) (expr Expr, msg feedback.Message) {
	node := &WhenExpr{Keyword: whenKeyword}

	if node.Subject, msg = p.parseExpression(0); msg != nil {
		return nil, msg
	}

	if p.Lexer.PeekMatches(IsSymbol) {
		var arm *WhenArm
		if arm, msg = p.parseWhenArm(p.next()); msg != nil {
			return nil, msg
		}
		node.Arms = append(node.Arms, arm)

		if p.elseFollows() {
			if node.Default, msg = p.parseArmBody(p.next()); msg != nil {
				return nil, msg
			}
		}

		return node, nil
	}

	if _, msg = p.expect(ColonSymbol); msg != nil {
		return nil, msg
	}

	var col int
	if col, msg = p.indented("an indented list of `is` arms"); msg != nil {
		return nil, msg
	}

	outer, outerNesting := p.indent, p.nesting
	p.indent, p.nesting = col, 0
	defer func() { p.indent, p.nesting = outer, outerNesting }()

	for {
		tok := p.peek()
		if !tok.LineStart || tok.Span.Start.Col != col {
			break
		}

		switch tok.Symbol {
		case IsSymbol:
			var arm *WhenArm
			if arm, msg = p.parseWhenArm(p.next()); msg != nil {
				return nil, msg
			}
			node.Arms = append(node.Arms, arm)
		case ElseSymbol:
			if node.Default != nil {
				return nil, p.unexpected("`is`", tok)
			}
			if node.Default, msg = p.parseArmBody(p.next()); msg != nil {
				return nil, msg
			}
		default:
			return nil, p.unexpected("`is` or `else`", tok)
		}

		if !p.atLineEnd() {
			return nil, p.unexpected("the end of the line", p.peek())
		}
	}

	return node, nil
}

// parseWhenArm parses `pattern => value` or `pattern: block` after `is`. A
// call-shaped pattern whose arguments are all names, like `Circle(r)`,
// matches an enum variant and binds its payload
func (p *Parser) parseWhenArm(isKeyword Token) (arm *WhenArm, msg feedback.Message) {
	arm = &WhenArm{Keyword: isKeyword}

	if arm.Pattern, msg = p.parseExpression(0); msg != nil {
		return nil, msg
	}

	if call, ok := arm.Pattern.(*CallExpr); ok {
		if bindings, ok := bindingNames(call.Args); ok {
			arm.Pattern = call.Callee
			arm.Bindings = bindings
		}
	}

	if arm.Body, msg = p.parseArmBody(isKeyword); msg != nil {
		return nil, msg
	}

	return arm, nil
}

func bindingNames(args []Expr) (names []*Ident, ok bool) {
	for _, arg := range args {
		ident, isIdent := arg.(*Ident)
		if !isIdent {
			return nil, false
		}
		names = append(names, ident)
	}
	return names, true
}

// parseArmBody parses `=> value` or `: block`
func (p *Parser) parseArmBody(after Token) (body *Block, msg feedback.Message) {
	tok := p.peek()

	switch tok.Symbol {
	case FatArrowSymbol:
		p.next()

		var value Expr
		if value, msg = p.parseExpression(0); msg != nil {
			return nil, msg
		}

		return &Block{Colon: tok, Stmts: []Stmt{&ExprStmt{X: value}}}, nil
	case ColonSymbol:
		return p.parseBlock(p.next())
	default:
		return nil, p.missing("`=>` or `:`", tok)
	}
}

func foreignCallParselet(p *Parser, keyword Token) (expr Expr, msg feedback.Message) {
	tok := p.peek()
	if tok.Symbol != StringSymbol {
		return nil, p.unexpected("a string of JavaScript code", tok)
	}

	p.next()
	code, _ := stringParselet(p, tok)

	return &ForeignCall{Keyword: keyword, Code: code.(*StringLit)}, nil
}
