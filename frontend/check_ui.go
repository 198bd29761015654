package frontend

import (
	"fmt"
	"strings"

	"github.com/Heartless-Veteran/Aegis/feedback"
)

// checkUINodes validates a UI tree against the element schema. Unknown
// elements, properties and events are warnings since a platform may supply
// more than the schema knows about; expressions inside the tree are checked
// as usual
func (c *checker) checkUINodes(nodes []UINode) {
	for _, node := range nodes {
		c.checkUINode(node)
	}
}

func (c *checker) checkUINode(node UINode) {
	switch n := node.(type) {
	case *UIElement:
		c.checkUIElement(n)
	case *UIFor:
		elem := c.iterationType(n.Iterable)

		c.scope.Enter()
		c.declareLoopVar(n.Var, elem)
		c.checkUINodes(n.Children)
		c.scope.Exit()
	case *BadUINode:
		// already reported by the parser
	default:
		panic(fmt.Sprintf("UNKNOWN UI NODE: %T", n))
	}
}

func (c *checker) checkUIElement(elem *UIElement) {
	for _, arg := range elem.Args {
		c.checkExpr(arg, nil)
	}

	spec, known := c.ui.Element(elem.Name.Name)
	if !known {
		c.warnf(feedback.UnknownUIElement, elem.Name.Span,
			"unknown UI element `%s`; known elements are %s", elem.Name.Name, strings.Join(c.ui.Names(), ", "))
	}

	if elem.Style != nil {
		for _, entry := range elem.Style.Entries {
			c.checkExpr(entry.Value, nil)

			key, ok := entry.Key.(*Ident)
			if !ok {
				c.checkExpr(entry.Key, nil)
				continue
			}

			key.t = c.types.builtin.String
			if !c.ui.Style.Contains(key.Name) {
				c.warnf(feedback.UnknownUIProperty, key.Span, "unknown style property `%s`", key.Name)
			}
		}
		elem.Style.t = c.types.builtin.Dynamic
	}

	for _, prop := range elem.Props {
		c.checkExpr(prop.Value, nil)

		if known && !c.ui.HasProperty(spec, prop.Name.Name) {
			c.warnf(feedback.UnknownUIProperty, prop.Name.Span,
				"`%s` has no property `%s`", elem.Name.Name, prop.Name.Name)
		}
	}

	for _, handler := range elem.Handlers {
		if known && !spec.Events.Contains(handler.Name.Name) {
			c.warnf(feedback.UnknownUIEvent, handler.Name.Span,
				"`%s` has no event `%s`; it supports %s", elem.Name.Name, handler.Name.Name, eventList(spec))
		}

		c.checkBlock(handler.Body)
	}

	c.checkUINodes(elem.Children)
}

func eventList(spec *UIElementSpec) string {
	events := sortedStrings(spec.Events)
	if len(events) == 0 {
		return "no events"
	}
	return strings.Join(events, ", ")
}
