package frontend

import (
	"fmt"
	"strconv"
	"strings"
)

// StringifyAST renders a program as nested S-expressions, one statement per
// line. Expressions are written in prefix form so `1 + 2 * 3` becomes
// `(+ 1 (* 2 3))`
func StringifyAST(prog *Program) string {
	return stringifyNode(prog, false)
}

// StringifyTypedAST is StringifyAST with every checked expression prefixed by
// its type, as in `[number (+ [number 1] [number 2])]`
func StringifyTypedAST(prog *Program) string {
	return stringifyNode(prog, true)
}

// StringifyExpr renders a single expression
func StringifyExpr(expr Expr) string {
	return stringifyNode(expr, false)
}

func stringifyNode(generic Node, typed bool) string {
	str := func(n Node) string { return stringifyNode(n, typed) }

	switch node := generic.(type) {
	case *Program:
		var decls []string
		for _, decl := range node.Decls {
			decls = append(decls, str(decl))
		}

		if len(decls) == 0 {
			return "(program)"
		}

		return fmt.Sprintf("(program\n%s)", indentString(strings.Join(decls, "\n")))
	case *VarDecl:
		keyword := "let"
		if node.Tracked {
			keyword = "let track"
		}

		if node.Annotation != nil {
			return fmt.Sprintf("(%s %s %s %s)", keyword, node.Name.Name, stringifyTypeExpr(node.Annotation), str(node.Init))
		}

		return fmt.Sprintf("(%s %s %s)", keyword, node.Name.Name, str(node.Init))
	case *FuncDecl:
		var params []string
		for _, param := range node.Params {
			if param.Annotation != nil {
				params = append(params, fmt.Sprintf("%s %s", param.Name.Name, stringifyTypeExpr(param.Annotation)))
			} else {
				params = append(params, param.Name.Name)
			}
		}

		keyword := "func"
		if node.Async {
			keyword = "async func"
		}

		result := ""
		if node.Result != nil {
			result = " -> " + stringifyTypeExpr(node.Result)
		}

		return fmt.Sprintf("(%s %s (%s)%s %s)",
			keyword,
			node.Name.Name,
			strings.Join(params, ", "),
			result,
			str(node.Body))
	case *ContractDecl:
		var fields []string
		for _, field := range node.Fields {
			fields = append(fields, fmt.Sprintf("(%s %s)", field.Name.Name, stringifyTypeExpr(field.Annotation)))
		}

		return fmt.Sprintf("(contract %s%s %s)",
			node.Name.Name,
			stringifyTypeParams(node.TypeParams),
			strings.Join(fields, " "))
	case *EnumDecl:
		var variants []string
		for _, v := range node.Variants {
			if len(v.Payload) == 0 {
				variants = append(variants, v.Name.Name)
				continue
			}

			var payload []string
			for _, t := range v.Payload {
				payload = append(payload, stringifyTypeExpr(t))
			}
			variants = append(variants, fmt.Sprintf("(%s %s)", v.Name.Name, strings.Join(payload, " ")))
		}

		return fmt.Sprintf("(enum %s %s)", node.Name.Name, strings.Join(variants, " "))
	case *AppDecl:
		var parts []string
		for _, stmt := range node.Body {
			parts = append(parts, str(stmt))
		}

		if node.Show != nil {
			var nodes []string
			for _, n := range node.Show.Nodes {
				nodes = append(nodes, str(n))
			}
			parts = append(parts, fmt.Sprintf("(show\n%s)", indentString(strings.Join(nodes, "\n"))))
		}

		if node.Change != nil {
			parts = append(parts, fmt.Sprintf("(change %s)", str(node.Change)))
		}

		return fmt.Sprintf("(app %s\n%s)", node.Name.Name, indentString(strings.Join(parts, "\n")))
	case *ReturnStmt:
		if node.Value == nil {
			return "(return)"
		}

		return fmt.Sprintf("(return %s)", str(node.Value))
	case *ForStmt:
		return fmt.Sprintf("(for %s %s %s)", node.Var.Name, str(node.Iterable), str(node.Body))
	case *ExprStmt:
		return str(node.X)
	case *BadStmt:
		return "(bad)"
	case *Block:
		var stmts []string
		for _, stmt := range node.Stmts {
			stmts = append(stmts, str(stmt))
		}

		return fmt.Sprintf("(\n%s\n)", indentString(strings.Join(stmts, "\n")))
	case *UIElement:
		parts := []string{node.Name.Name}

		for _, arg := range node.Args {
			parts = append(parts, str(arg))
		}

		if node.Style != nil {
			parts = append(parts, fmt.Sprintf("(style %s)", str(node.Style)))
		}

		for _, prop := range node.Props {
			parts = append(parts, fmt.Sprintf("(%s %s)", prop.Name.Name, str(prop.Value)))
		}

		for _, handler := range node.Handlers {
			parts = append(parts, fmt.Sprintf("(%s %s)", handler.Name.Name, str(handler.Body)))
		}

		if len(node.Children) == 0 {
			return fmt.Sprintf("(%s)", strings.Join(parts, " "))
		}

		var children []string
		for _, child := range node.Children {
			children = append(children, str(child))
		}

		return fmt.Sprintf("(%s\n%s)", strings.Join(parts, " "), indentString(strings.Join(children, "\n")))
	case *BadUINode:
		return "(bad)"
	case *UIFor:
		var children []string
		for _, child := range node.Children {
			children = append(children, str(child))
		}

		return fmt.Sprintf("(for %s %s\n%s)", node.Var.Name, str(node.Iterable), indentString(strings.Join(children, "\n")))
	case Expr:
		s := stringifyExpr(node, str)
		if typed && node.Type() != nil {
			return fmt.Sprintf("[%s %s]", node.Type(), s)
		}
		return s
	default:
		return fmt.Sprintf("<Unknown %T>", node)
	}
}

func stringifyExpr(generic Expr, str func(Node) string) string {
	switch node := generic.(type) {
	case *Ident:
		return node.Name
	case *NumberLit:
		return strconv.FormatFloat(node.Value, 'g', -1, 64)
	case *StringLit:
		return strconv.Quote(node.Value)
	case *BoolLit:
		return strconv.FormatBool(node.Value)
	case *NothingLit:
		return "nothing"
	case *ListLit:
		parts := []string{"list"}
		for _, elem := range node.Elements {
			parts = append(parts, str(elem))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *MapLit:
		parts := []string{"map"}
		for _, entry := range node.Entries {
			parts = append(parts, fmt.Sprintf("(%s %s)", str(entry.Key), str(entry.Value)))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", node.Operator.Lexeme, str(node.Left), str(node.Right))
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", node.Operator.Lexeme, str(node.Operand))
	case *AssignExpr:
		return fmt.Sprintf("(= %s %s)", str(node.Target), str(node.Value))
	case *CallExpr:
		parts := []string{"call", str(node.Callee)}
		for _, arg := range node.Args {
			parts = append(parts, str(arg))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *MemberExpr:
		return fmt.Sprintf("(. %s %s)", str(node.Object), node.Property.Name)
	case *IndexExpr:
		return fmt.Sprintf("(index %s %s)", str(node.Object), str(node.Index))
	case *AwaitExpr:
		return fmt.Sprintf("(await %s)", str(node.Operand))
	case *IfExpr:
		if node.Else == nil {
			return fmt.Sprintf("(if %s %s)", str(node.Cond), str(node.Then))
		}
		return fmt.Sprintf("(if %s %s %s)", str(node.Cond), str(node.Then), str(node.Else))
	case *WhenExpr:
		parts := []string{"when " + str(node.Subject)}
		for _, arm := range node.Arms {
			pattern := str(arm.Pattern)
			for _, b := range arm.Bindings {
				pattern += " " + b.Name
			}
			parts = append(parts, fmt.Sprintf("(is %s %s)", pattern, str(arm.Body)))
		}
		if node.Default != nil {
			parts = append(parts, fmt.Sprintf("(else %s)", str(node.Default)))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ForeignCall:
		return fmt.Sprintf("(ask_js %s)", strconv.Quote(node.Code.Value))
	case *BadExpr:
		return "(bad)"
	default:
		return fmt.Sprintf("<Unknown %T>", node)
	}
}

func stringifyTypeExpr(t *TypeExpr) string {
	if len(t.Args) == 0 {
		return t.Name.Name
	}

	var args []string
	for _, arg := range t.Args {
		args = append(args, stringifyTypeExpr(arg))
	}

	return fmt.Sprintf("%s<%s>", t.Name.Name, strings.Join(args, ", "))
}

func stringifyTypeParams(params []*Ident) string {
	if len(params) == 0 {
		return ""
	}

	var names []string
	for _, p := range params {
		names = append(names, p.Name)
	}

	return "<" + strings.Join(names, ", ") + ">"
}

func indentString(s string) string {
	lines := strings.Split(s, "\n")

	for i, l := range lines {
		lines[i] = "  " + l
	}

	return strings.Join(lines, "\n")
}
