package frontend

import (
	"strings"

	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

// parseShow parses `show:` followed by the UI tree of an app
func (p *Parser) parseShow(keyword Token) (show *ShowBlock, msg feedback.Message) {
	show = &ShowBlock{Keyword: keyword}

	if _, msg = p.expect(ColonSymbol); msg != nil {
		return nil, msg
	}

	if show.Nodes, msg = p.parseUIChildren(nil); msg != nil {
		return nil, msg
	}

	return show, nil
}

// parseUIChildren parses the nodes after a colon: a single node on the same
// line or an indented run of nodes. A malformed line is reported and left as
// a BadUINode without abandoning its siblings. Inside an element, a line
// holding an event clause such as `when_clicked:` attaches the handler to
// that element
func (p *Parser) parseUIChildren(parent *UIElement) (nodes []UINode, msg feedback.Message) {
	if !p.atLineEnd() {
		var node UINode
		if node, msg = p.parseUINode(); msg != nil {
			return nil, msg
		}
		return []UINode{node}, nil
	}

	var col int
	if col, msg = p.indented("an indented list of UI elements"); msg != nil {
		return nil, msg
	}

	p.parseLines(col, func() feedback.Message {
		if tok := p.peek(); parent != nil && isHandlerName(tok.Lexeme) && p.Lexer.PeekAt(1).Symbol == ColonSymbol {
			return p.parseUIClause(parent)
		}

		node, msg := p.parseUINode()
		if msg == nil {
			nodes = append(nodes, node)
		}
		return msg
	}, func(span source.Span) {
		nodes = append(nodes, &BadUINode{Span: span})
	})

	return nodes, nil
}

func (p *Parser) parseUINode() (node UINode, msg feedback.Message) {
	tok := p.peek()

	if msg = p.enter(tok); msg != nil {
		return nil, msg
	}
	defer p.leave()

	outer := p.nesting
	p.nesting = 0
	defer func() { p.nesting = outer }()

	switch tok.Symbol {
	case ForSymbol:
		return p.parseUIFor(p.next())
	case IdentSymbol:
		return p.parseUIElement()
	default:
		return nil, p.unexpected("a UI element", tok)
	}
}

func (p *Parser) parseUIFor(keyword Token) (node UINode, msg feedback.Message) {
	loop := &UIFor{Keyword: keyword}

	var colon Token
	if loop.Var, loop.Iterable, colon, msg = p.parseForHead(); msg != nil {
		return nil, msg
	}
	loop.end = colon.Span.End

	if loop.Children, msg = p.parseUIChildren(nil); msg != nil {
		return nil, msg
	}

	if n := len(loop.Children); n > 0 {
		loop.end = loop.Children[n-1].End()
	}

	return loop, nil
}

// isHandlerName reports whether a clause name introduces an event handler
// rather than a named property
func isHandlerName(name string) bool {
	return strings.HasPrefix(name, "when_") || strings.HasPrefix(name, "on_")
}

// parseUIElement parses an element head and its children:
//
//	name {positional-arg} [{style map}] {prop: value} {when_event: block} [: children]
//
// The head ends at the end of the line. A colon directly after the head
// introduces the children
func (p *Parser) parseUIElement() (node UINode, msg feedback.Message) {
	name := p.next()
	elem := &UIElement{
		Name: &Ident{Name: name.Lexeme, Span: name.Span},
		end:  name.Span.End,
	}

	for !p.atLineEnd() {
		tok := p.peek()

		switch {
		case tok.Symbol == ColonSymbol:
			p.next()

			if elem.Children, msg = p.parseUIChildren(elem); msg != nil {
				return nil, msg
			}

			if n := len(elem.Children); n > 0 && elem.Children[n-1].End().Offset > elem.end.Offset {
				elem.end = elem.Children[n-1].End()
			}

			return elem, nil
		case tok.Symbol == IdentSymbol && p.Lexer.PeekAt(1).Symbol == ColonSymbol:
			if msg = p.parseUIClause(elem); msg != nil {
				return nil, msg
			}
		case tok.Symbol == LBraceSymbol && elem.Style == nil:
			var style Expr
			if style, msg = p.parseExpression(0); msg != nil {
				return nil, msg
			}

			if m, ok := style.(*MapLit); ok {
				elem.Style = m
			} else {
				elem.Args = append(elem.Args, style)
			}
			elem.end = style.End()
		default:
			var arg Expr
			if arg, msg = p.parseExpression(0); msg != nil {
				return nil, msg
			}

			elem.Args = append(elem.Args, arg)
			elem.end = arg.End()
		}
	}

	return elem, nil
}

// parseUIClause parses `name: value` or, for handler names, `name: block`
func (p *Parser) parseUIClause(elem *UIElement) (msg feedback.Message) {
	name := p.next()
	colon := p.next()
	ident := &Ident{Name: name.Lexeme, Span: name.Span}

	if isHandlerName(name.Lexeme) {
		handler := &Handler{Name: ident}
		if handler.Body, msg = p.parseBlock(colon); msg != nil {
			return msg
		}

		elem.Handlers = append(elem.Handlers, handler)
		elem.end = handler.End()
		return nil
	}

	prop := &UIProperty{Name: ident}
	if prop.Value, msg = p.parseExpression(0); msg != nil {
		return msg
	}

	elem.Props = append(elem.Props, prop)
	elem.end = prop.Value.End()
	return nil
}
