package frontend

import (
	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

// parseStatement dispatches on the leading keyword of a declaration or
// statement. Anything else is an expression statement
func (p *Parser) parseStatement() (stmt Stmt, msg feedback.Message) {
	tok := p.peek()

	switch tok.Symbol {
	case LetSymbol:
		return p.parseLet(p.next(), false)
	case AsyncSymbol:
		async := p.next()
		if _, msg = p.expect(LetSymbol); msg != nil {
			return nil, msg
		}
		return p.parseLet(async, true)
	case ContractSymbol:
		return p.parseContract(p.next())
	case EnumSymbol:
		return p.parseEnum(p.next())
	case AppSymbol:
		return p.parseApp(p.next())
	case ReturnSymbol:
		return p.parseReturn(p.next())
	case ForSymbol:
		return p.parseFor(p.next())
	}

	var x Expr
	if x, msg = p.parseExpression(0); msg != nil {
		return nil, msg
	}

	return &ExprStmt{X: x}, nil
}

// parseLet handles everything introduced by `let's`:
//
//	let's [track] name [: Type] = value
//	[async] let's name(params) [-> Type]: body
func (p *Parser) parseLet(keyword Token, async bool) (stmt Stmt, msg feedback.Message) {
	tracked := false
	if p.Lexer.PeekMatches(TrackSymbol) {
		p.next()
		tracked = true
	}

	var name *Ident
	if name, msg = p.expectIdent("a name"); msg != nil {
		return nil, msg
	}

	if async || (!tracked && p.Lexer.PeekMatches(LParenSymbol)) {
		return p.parseFunc(keyword, async, name)
	}

	decl := &VarDecl{Keyword: keyword, Tracked: tracked, Name: name}

	// once the name is read the declaration survives a fault in the rest of
	// the line so later uses of the name still resolve
	partial := func(msg feedback.Message) (Stmt, feedback.Message) {
		decl.Init = &BadExpr{Span: source.Span{Start: p.last.Span.End, End: p.last.Span.End}}
		return decl, msg
	}

	if p.Lexer.PeekMatches(ColonSymbol) {
		p.next()
		if decl.Annotation, msg = p.parseType(); msg != nil {
			decl.Annotation = nil
			return partial(msg)
		}
	}

	if _, msg = p.expect(AssignSymbol); msg != nil {
		return partial(msg)
	}

	if decl.Init, msg = p.parseExpression(0); msg != nil {
		return partial(msg)
	}

	return decl, nil
}

func (p *Parser) parseFunc(keyword Token, async bool, name *Ident) (stmt Stmt, msg feedback.Message) {
	decl := &FuncDecl{Keyword: keyword, Async: async, Name: name}

	if _, msg = p.expect(LParenSymbol); msg != nil {
		return nil, msg
	}

	_, msg = p.parseList(RParenSymbol, func() feedback.Message {
		param := &Param{}

		var msg feedback.Message
		if param.Name, msg = p.expectIdent("a parameter name"); msg != nil {
			return msg
		}

		if p.Lexer.PeekMatches(ColonSymbol) {
			p.next()
			if param.Annotation, msg = p.parseType(); msg != nil {
				return msg
			}
		}

		decl.Params = append(decl.Params, param)
		return nil
	})

	if msg != nil {
		return nil, msg
	}

	if p.Lexer.PeekMatches(ArrowSymbol) {
		p.next()
		if decl.Result, msg = p.parseType(); msg != nil {
			return nil, msg
		}
	}

	var colon Token
	if colon, msg = p.expect(ColonSymbol); msg != nil {
		return nil, msg
	}

	if decl.Body, msg = p.parseBlock(colon); msg != nil {
		return nil, msg
	}

	return decl, nil
}

// parseType parses `Name` or `Name<Args>`. The keyword `nothing` names the
// nothing type
func (p *Parser) parseType() (typ *TypeExpr, msg feedback.Message) {
	tok := p.peek()

	if msg = p.enter(tok); msg != nil {
		return nil, msg
	}
	defer p.leave()

	switch tok.Symbol {
	case IdentSymbol, NothingSymbol:
		p.next()
	default:
		return nil, p.unexpected("a type", tok)
	}

	typ = &TypeExpr{
		Name: &Ident{Name: tok.Lexeme, Span: tok.Span},
		end:  tok.Span.End,
	}

	if !p.Lexer.PeekMatches(LessSymbol) {
		return typ, nil
	}

	p.next()

	var closing Token
	closing, msg = p.parseList(GreaterSymbol, func() feedback.Message {
		arg, msg := p.parseType()
		if msg == nil {
			typ.Args = append(typ.Args, arg)
		}
		return msg
	})

	if msg != nil {
		return nil, msg
	}

	typ.end = closing.Span.End
	return typ, nil
}

// parseContract handles both `contract Name { a: T, b: U }` and the indented
// form with one or more fields per line
func (p *Parser) parseContract(keyword Token) (stmt Stmt, msg feedback.Message) {
	decl := &ContractDecl{Keyword: keyword}

	if decl.Name, msg = p.expectIdent("a contract name"); msg != nil {
		return nil, msg
	}
	decl.end = decl.Name.End()

	if p.Lexer.PeekMatches(LessSymbol) {
		p.next()

		var closing Token
		closing, msg = p.parseList(GreaterSymbol, func() feedback.Message {
			param, msg := p.expectIdent("a type parameter")
			if msg == nil {
				decl.TypeParams = append(decl.TypeParams, param)
			}
			return msg
		})

		if msg != nil {
			return nil, msg
		}
		decl.end = closing.Span.End
	}

	field := func() feedback.Message {
		f := &Field{}

		var msg feedback.Message
		if f.Name, msg = p.expectIdent("a field name"); msg != nil {
			return msg
		}

		if _, msg = p.expect(ColonSymbol); msg != nil {
			return msg
		}

		if f.Annotation, msg = p.parseType(); msg != nil {
			return msg
		}

		decl.Fields = append(decl.Fields, f)
		decl.end = f.End()
		return nil
	}

	if msg = p.parseMembers(field); msg != nil {
		return nil, msg
	}

	if p.last.Symbol == RBraceSymbol {
		decl.end = p.last.Span.End
	}

	return decl, nil
}

// parseEnum handles `enum Name: A, B(number)`, the braced form and the
// indented form
func (p *Parser) parseEnum(keyword Token) (stmt Stmt, msg feedback.Message) {
	decl := &EnumDecl{Keyword: keyword}

	if decl.Name, msg = p.expectIdent("an enum name"); msg != nil {
		return nil, msg
	}
	decl.end = decl.Name.End()

	variant := func() feedback.Message {
		v := &Variant{}

		var msg feedback.Message
		if v.Name, msg = p.expectIdent("a variant name"); msg != nil {
			return msg
		}

		if p.Lexer.PeekMatches(LParenSymbol) {
			p.next()

			var closing Token
			closing, msg = p.parseList(RParenSymbol, func() feedback.Message {
				payload, msg := p.parseType()
				if msg == nil {
					v.Payload = append(v.Payload, payload)
				}
				return msg
			})

			if msg != nil {
				return msg
			}
			decl.end = closing.Span.End
		} else {
			decl.end = v.Name.End()
		}

		decl.Variants = append(decl.Variants, v)
		return nil
	}

	if msg = p.parseMembers(variant); msg != nil {
		return nil, msg
	}

	if p.last.Symbol == RBraceSymbol {
		decl.end = p.last.Span.End
	}

	return decl, nil
}

// parseMembers parses the member list of a contract or enum: a braced comma
// separated list, a comma separated list after a colon on the same line, or
// indented lines of comma separated members
func (p *Parser) parseMembers(member func() feedback.Message) (msg feedback.Message) {
	tok := p.peek()

	switch tok.Symbol {
	case LBraceSymbol:
		p.next()
		_, msg = p.parseList(RBraceSymbol, member)
		return msg
	case ColonSymbol:
		p.next()
	default:
		return p.missing("`:` or `{`", tok)
	}

	if !p.atLineEnd() {
		return p.commaSeparated(member)
	}

	var col int
	if col, msg = p.indented("an indented list of members"); msg != nil {
		return msg
	}

	outer := p.indent
	p.indent = col
	defer func() { p.indent = outer }()

	for tok = p.peek(); tok.LineStart && tok.Span.Start.Col == col; tok = p.peek() {
		if msg = p.commaSeparated(member); msg != nil {
			return msg
		}

		if !p.atLineEnd() {
			return p.unexpected("`,` or the end of the line", p.peek())
		}
	}

	return nil
}

func (p *Parser) commaSeparated(member func() feedback.Message) (msg feedback.Message) {
	for {
		if msg = member(); msg != nil {
			return msg
		}

		if !p.Lexer.PeekMatches(CommaSymbol) || p.atLineEnd() {
			return nil
		}

		p.next()

		// a trailing comma may end the line
		if p.atLineEnd() {
			return nil
		}
	}
}

// parseApp parses `app Name:` followed by an indented body of declarations
// and statements, one `show:` UI block and an optional `change:` block
func (p *Parser) parseApp(keyword Token) (stmt Stmt, msg feedback.Message) {
	decl := &AppDecl{Keyword: keyword}

	if decl.Name, msg = p.expectIdent("an app name"); msg != nil {
		return nil, msg
	}
	decl.end = decl.Name.End()

	if _, msg = p.expect(ColonSymbol); msg != nil {
		return nil, msg
	}

	var col int
	if col, msg = p.indented("an indented app body"); msg != nil {
		return nil, msg
	}

	var partial Stmt
	p.parseLines(col, func() feedback.Message {
		tok := p.peek()

		switch tok.Symbol {
		case ShowSymbol:
			show, msg := p.parseShow(p.next())
			if msg != nil {
				return msg
			}

			if decl.Show != nil {
				return p.duplicateSection(tok)
			}

			decl.Show = show
			decl.end = show.End()
		case ChangeSymbol:
			p.next()

			colon, msg := p.expect(ColonSymbol)
			if msg != nil {
				return msg
			}

			change, msg := p.parseBlock(colon)
			if msg != nil {
				return msg
			}

			if decl.Change != nil {
				return p.duplicateSection(tok)
			}

			decl.Change = change
			decl.end = change.End()
		default:
			stmt, msg := p.parseStatement()
			if msg != nil {
				partial = stmt
				return msg
			}

			decl.Body = append(decl.Body, stmt)
			decl.end = stmt.End()
		}

		return nil
	}, func(span source.Span) {
		decl.Body = append(decl.Body, recovered(partial, span))
		decl.end = span.End
		partial = nil
	})

	return decl, nil
}

func (p *Parser) duplicateSection(tok Token) feedback.Message {
	return feedback.Error{
		Code: feedback.UnexpectedToken,
		File: p.file(),
		What: feedback.Selection{
			Description: "an app can only have one `" + tok.Lexeme + "` section",
			Span:        tok.Span,
		},
	}
}

func (p *Parser) parseReturn(keyword Token) (stmt Stmt, msg feedback.Message) {
	ret := &ReturnStmt{Keyword: keyword}

	if p.atLineEnd() || p.Lexer.PeekMatches(ElseSymbol) {
		return ret, nil
	}

	if ret.Value, msg = p.parseExpression(0); msg != nil {
		return nil, msg
	}

	return ret, nil
}

// parseForHead parses `name in iterable:` after the `for` keyword
func (p *Parser) parseForHead() (name *Ident, iterable Expr, colon Token, msg feedback.Message) {
	if name, msg = p.expectIdent("a loop variable"); msg != nil {
		return
	}

	if tok := p.peek(); tok.Symbol != InSymbol {
		msg = p.unexpected("`in`", tok)
		return
	}
	p.next()

	if iterable, msg = p.parseExpression(0); msg != nil {
		return
	}

	colon, msg = p.expect(ColonSymbol)
	return
}

func (p *Parser) parseFor(keyword Token) (stmt Stmt, msg feedback.Message) {
	loop := &ForStmt{Keyword: keyword}

	var colon Token
	if loop.Var, loop.Iterable, colon, msg = p.parseForHead(); msg != nil {
		return nil, msg
	}

	if loop.Body, msg = p.parseBlock(colon); msg != nil {
		return nil, msg
	}

	return loop, nil
}
