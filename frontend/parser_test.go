package frontend

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

func parseSource(t *testing.T, src string) (*Program, []feedback.Message) {
	t.Helper()
	return Parse(source.NewFile("test.aegis", src), Options{})
}

func mustParse(t *testing.T, src string) *Program {
	t.Helper()

	prog, msgs := parseSource(t, src)
	for _, msg := range msgs {
		t.Errorf("unexpected message: %s", msg.Diagnostic())
	}
	return prog
}

func codes(msgs []feedback.Message) (out []feedback.Code) {
	for _, msg := range msgs {
		out = append(out, msg.Diagnostic().Code)
	}
	return out
}

func TestParsePrecedence(t *testing.T) {
	prog := mustParse(t, "let's x = 1 + 2 * 3")
	require.Len(t, prog.Decls, 1)

	decl, ok := prog.Decls[0].(*VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name.Name)

	add, ok := decl.Init.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Operator.Lexeme)
	assert.Equal(t, 1.0, add.Left.(*NumberLit).Value)

	mul, ok := add.Right.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Operator.Lexeme)
	assert.Equal(t, 2.0, mul.Left.(*NumberLit).Value)
	assert.Equal(t, 3.0, mul.Right.(*NumberLit).Value)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"a = b = c", "(= a (= b c))"},
		{"-a * b", "(* (- a) b)"},
		{"not a and b or c", "(or (and (not a) b) c)"},
		{"x && y || z", "(|| (&& x y) z)"},
		{"a < b == c >= d", "(== (< a b) (>= c d))"},
		{"a.b(c)[0]", "(index (call (. a b) c) 0)"},
		{"await f(x) + 1", "(+ (await (call f x)) 1)"},
		{"!done", "(! done)"},
		{"n % 2 == 0", "(== (% n 2) 0)"},
		{"[1, 2,]", "(list 1 2)"},
		{`{name: 1, "b": [x]}`, `(map (name 1) ("b" (list x)))`},
		{"task.done = true", "(= (. task done) true)"},
		{"f()", "(call f)"},
		{`ask_js "alert(1)"`, `(ask_js "alert(1)")`},
		{"nothing", "nothing"},
		{"1.5", "1.5"},
	}

	for _, test := range tests {
		prog := mustParse(t, test.src)
		require.Len(t, prog.Decls, 1, test.src)

		stmt, ok := prog.Decls[0].(*ExprStmt)
		require.True(t, ok, test.src)
		assert.Equal(t, test.expected, StringifyExpr(stmt.X), test.src)
	}
}

func TestParseExpressionContinuesInsideBrackets(t *testing.T) {
	prog := mustParse(t, "let's total = sum(\n    1,\n    2\n) + 3\nlet's next = 1")
	require.Len(t, prog.Decls, 2)
	assert.Equal(t, "(+ (call sum 1 2) 3)", StringifyExpr(prog.Decls[0].(*VarDecl).Init))
}

func TestParseNodeCountMatchesDeclarations(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "let's v%d = %d\n", i, i)
	}
	b.WriteString("let's f(a, b):\n    return a\n")
	b.WriteString("contract Point { x: number, y: number }\n")
	b.WriteString("enum Color: Red, Green\n")

	prog := mustParse(t, b.String())
	assert.Len(t, prog.Decls, 53)
}

func TestParseFunction(t *testing.T) {
	prog := mustParse(t, `async let's load(url: string, retries) -> List<string>:
    let's data = await fetch(url)
    return data
`)
	require.Len(t, prog.Decls, 1)

	fn, ok := prog.Decls[0].(*FuncDecl)
	require.True(t, ok)
	assert.True(t, fn.Async)
	assert.Equal(t, "load", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "string", fn.Params[0].Annotation.Name.Name)
	assert.Nil(t, fn.Params[1].Annotation)
	assert.Equal(t, "List", fn.Result.Name.Name)
	require.Len(t, fn.Result.Args, 1)
	assert.Equal(t, "string", fn.Result.Args[0].Name.Name)
	require.Len(t, fn.Body.Stmts, 2)
	assert.IsType(t, &ReturnStmt{}, fn.Body.Stmts[1])
}

func TestParseInlineFunctionBody(t *testing.T) {
	prog := mustParse(t, "let's double(n: number) -> number: return n * 2\nlet's x = double(2)")
	require.Len(t, prog.Decls, 2)

	fn := prog.Decls[0].(*FuncDecl)
	require.Len(t, fn.Body.Stmts, 1)
	assert.Equal(t, "(* n 2)", StringifyExpr(fn.Body.Stmts[0].(*ReturnStmt).Value))
}

func TestParseTrackedAndAnnotatedVariables(t *testing.T) {
	prog := mustParse(t, "let's track count: number = 0\nlet's names: Map<string, List<number>> = {}")
	require.Len(t, prog.Decls, 2)

	count := prog.Decls[0].(*VarDecl)
	assert.True(t, count.Tracked)
	assert.Equal(t, "number", count.Annotation.Name.Name)

	names := prog.Decls[1].(*VarDecl)
	assert.False(t, names.Tracked)
	require.Len(t, names.Annotation.Args, 2)
	assert.Equal(t, "List", names.Annotation.Args[1].Name.Name)
}

func TestParseContractsAndEnums(t *testing.T) {
	prog := mustParse(t, `contract Pair<A, B> { first: A, second: B }
contract Task:
    id: number, title: string
    done: boolean
enum Shape: Circle(number), Square(number), Empty
enum Status:
    Active,
    Archived
`)
	require.Len(t, prog.Decls, 4)

	pair := prog.Decls[0].(*ContractDecl)
	assert.Len(t, pair.TypeParams, 2)
	assert.Len(t, pair.Fields, 2)

	task := prog.Decls[1].(*ContractDecl)
	require.Len(t, task.Fields, 3)
	assert.Equal(t, "done", task.Fields[2].Name.Name)

	shape := prog.Decls[2].(*EnumDecl)
	require.Len(t, shape.Variants, 3)
	assert.Len(t, shape.Variants[0].Payload, 1)
	assert.Empty(t, shape.Variants[2].Payload)

	status := prog.Decls[3].(*EnumDecl)
	assert.Len(t, status.Variants, 2)
}

func TestParseIfElseChain(t *testing.T) {
	prog := mustParse(t, `let's grade = if score > 90: "A" else if score > 80: "B" else: "C"
if done:
    print("yes")
else:
    print("no")
`)
	require.Len(t, prog.Decls, 2)

	outer := prog.Decls[0].(*VarDecl).Init.(*IfExpr)
	require.NotNil(t, outer.Else)

	chained, ok := outer.Else.Stmts[0].(*ExprStmt).X.(*IfExpr)
	require.True(t, ok)
	assert.NotNil(t, chained.Else)

	block := prog.Decls[1].(*ExprStmt).X.(*IfExpr)
	assert.Len(t, block.Then.Stmts, 1)
	assert.NotNil(t, block.Else)
}

func TestParseWhen(t *testing.T) {
	prog := mustParse(t, `when shape:
    is Circle(r) => r * r
    is Square(s):
        s * s
    else => 0
let's open = when status is Active: true else => false
`)
	require.Len(t, prog.Decls, 2)

	when := prog.Decls[0].(*ExprStmt).X.(*WhenExpr)
	require.Len(t, when.Arms, 2)
	assert.Equal(t, "Circle", when.Arms[0].Pattern.(*Ident).Name)
	require.Len(t, when.Arms[0].Bindings, 1)
	assert.Equal(t, "r", when.Arms[0].Bindings[0].Name)
	assert.Len(t, when.Arms[1].Body.Stmts, 1)
	assert.NotNil(t, when.Default)

	short := prog.Decls[1].(*VarDecl).Init.(*WhenExpr)
	assert.Len(t, short.Arms, 1)
	assert.NotNil(t, short.Default)
}

func TestParseForLoop(t *testing.T) {
	prog := mustParse(t, "for task in tasks:\n    print(task)\n    print(1)\n")
	loop := prog.Decls[0].(*ForStmt)
	assert.Equal(t, "task", loop.Var.Name)
	assert.Len(t, loop.Body.Stmts, 2)
}

func TestParseStringInterpolations(t *testing.T) {
	prog := mustParse(t, `print("Hi {name}, you have {user.tasks.length} tasks \{not} {1}")`)

	call := prog.Decls[0].(*ExprStmt).X.(*CallExpr)
	lit := call.Args[0].(*StringLit)
	require.Len(t, lit.Interpolations, 2)

	name := lit.Interpolations[0].(*Ident)
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, 12, name.Span.Start.Col)
	assert.Equal(t, 16, name.Span.End.Col)

	assert.Equal(t, "(. (. user tasks) length)", StringifyExpr(lit.Interpolations[1]))
}

const todoApp = `contract Task { title: string, done: boolean }
app Todo:
    let's track tasks: List<Task> = []
    let's add(title: string):
        tasks.add({title: title, done: false})
    show:
        column { padding: 8 }:
            text "Tasks: {tasks.length}"
            button "Add" when_clicked: add("x")
            for task in tasks:
                checkbox checked: task.done
            input placeholder: "New task":
                when_submitted: add("y")
    change:
        print(tasks)
`

func TestParseApp(t *testing.T) {
	prog := mustParse(t, todoApp)
	require.Len(t, prog.Decls, 2)

	app := prog.Decls[1].(*AppDecl)
	assert.Equal(t, "Todo", app.Name.Name)
	require.Len(t, app.Body, 2)
	assert.True(t, app.Body[0].(*VarDecl).Tracked)
	assert.IsType(t, &FuncDecl{}, app.Body[1])
	require.NotNil(t, app.Change)

	require.NotNil(t, app.Show)
	require.Len(t, app.Show.Nodes, 1)

	column := app.Show.Nodes[0].(*UIElement)
	assert.Equal(t, "column", column.Name.Name)
	require.NotNil(t, column.Style)
	require.Len(t, column.Children, 4)

	text := column.Children[0].(*UIElement)
	require.Len(t, text.Args, 1)

	button := column.Children[1].(*UIElement)
	require.Len(t, button.Handlers, 1)
	assert.Equal(t, "when_clicked", button.Handlers[0].Name.Name)

	loop := column.Children[2].(*UIFor)
	require.Len(t, loop.Children, 1)
	checkbox := loop.Children[0].(*UIElement)
	require.Len(t, checkbox.Props, 1)
	assert.Equal(t, "checked", checkbox.Props[0].Name.Name)

	input := column.Children[3].(*UIElement)
	require.Len(t, input.Props, 1)
	require.Len(t, input.Handlers, 1)
	assert.Equal(t, "when_submitted", input.Handlers[0].Name.Name)
	assert.Empty(t, input.Children)
}

func TestParseAppDuplicateShow(t *testing.T) {
	prog, msgs := parseSource(t, `app A:
    show:
        text "one"
    show:
        text "two"
`)
	assert.Equal(t, []feedback.Code{feedback.UnexpectedToken}, codes(msgs))
	assert.NotNil(t, prog.Decls[0].(*AppDecl).Show)
}

func TestParseRecoversAtNextLine(t *testing.T) {
	prog, msgs := parseSource(t, `let's a = 1
let's b = = 2
let's c = (3
let's d = 4
`)
	assert.Equal(t, []feedback.Code{feedback.UnexpectedToken, feedback.MissingDelimiter}, codes(msgs))

	require.Len(t, prog.Decls, 4)
	assert.IsType(t, &VarDecl{}, prog.Decls[0])
	assert.Equal(t, "d", prog.Decls[3].(*VarDecl).Name.Name)

	// declarations whose name was read survive with a bad initializer
	b := prog.Decls[1].(*VarDecl)
	assert.Equal(t, "b", b.Name.Name)
	bad := b.Init.(*BadExpr)
	assert.Equal(t, source.Pos{Offset: 21, Line: 2, Col: 10}, bad.Span.Start)
	assert.Equal(t, source.Pos{Offset: 25, Line: 2, Col: 14}, bad.Span.End)

	c := prog.Decls[2].(*VarDecl)
	assert.Equal(t, "c", c.Name.Name)
	assert.IsType(t, &BadExpr{}, c.Init)
	assert.Equal(t, 3, c.Init.End().Line)

	assert.Equal(t, "(program\n  (let a 1)\n  (let b (bad))\n  (let c (bad))\n  (let d 4))", StringifyAST(prog))
}

func TestParseRecoversAfterAnnotation(t *testing.T) {
	prog, msgs := parseSource(t, "let's n: number 5\nlet's m: = 1")
	assert.Equal(t, []feedback.Code{feedback.MissingDelimiter, feedback.UnexpectedToken}, codes(msgs))

	require.Len(t, prog.Decls, 2)
	n := prog.Decls[0].(*VarDecl)
	assert.Equal(t, "number", n.Annotation.Name.Name)
	assert.IsType(t, &BadExpr{}, n.Init)

	m := prog.Decls[1].(*VarDecl)
	assert.Nil(t, m.Annotation)
	assert.IsType(t, &BadExpr{}, m.Init)
}

func TestParseRecoversWithoutName(t *testing.T) {
	prog, msgs := parseSource(t, "let's = 1\nlet's ok = 2")
	assert.Equal(t, []feedback.Code{feedback.UnexpectedToken}, codes(msgs))

	require.Len(t, prog.Decls, 2)
	assert.IsType(t, &BadStmt{}, prog.Decls[0])
}

func TestParseRecoversInsideBlocks(t *testing.T) {
	prog, msgs := parseSource(t, `let's f():
    let's a = )
    let's b = 2
    return b
let's g = 1
`)
	assert.Equal(t, []feedback.Code{feedback.UnexpectedToken}, codes(msgs))

	require.Len(t, prog.Decls, 2)
	fn := prog.Decls[0].(*FuncDecl)
	require.Len(t, fn.Body.Stmts, 3)
	a := fn.Body.Stmts[0].(*VarDecl)
	assert.IsType(t, &BadExpr{}, a.Init)
}

func TestParseRecoversInsideUITree(t *testing.T) {
	prog, msgs := parseSource(t, `app A:
    show:
        column:
            text "ok"
            button )
            text "after"
`)
	assert.Equal(t, []feedback.Code{feedback.UnexpectedToken}, codes(msgs))

	column := prog.Decls[0].(*AppDecl).Show.Nodes[0].(*UIElement)
	require.Len(t, column.Children, 3)
	assert.IsType(t, &UIElement{}, column.Children[0])
	assert.IsType(t, &UIElement{}, column.Children[2])

	bad := column.Children[1].(*BadUINode)
	assert.Equal(t, 5, bad.Span.Start.Line)
	assert.Equal(t, 5, bad.Span.End.Line)

	_, msgs = Compile(source.NewFile("test.aegis", `app A:
    show:
        button )
        text "after"
`), Options{})
	assert.Equal(t, []feedback.Code{feedback.UnexpectedToken}, codes(msgs))
}

func TestParseMissingExpressionPointsAtLineEnd(t *testing.T) {
	prog, msgs := parseSource(t, "let's x =\nlet's y = 2")
	require.Len(t, msgs, 1)

	d := msgs[0].Diagnostic()
	assert.Equal(t, feedback.UnexpectedToken, d.Code)
	assert.Equal(t, "expected an expression before the end of the line", d.Message)
	assert.Equal(t, source.Pos{Offset: 9, Line: 1, Col: 10}, d.Span.Start)

	require.Len(t, prog.Decls, 2)
	assert.IsType(t, &VarDecl{}, prog.Decls[1])
}

func TestParseMissingBlock(t *testing.T) {
	_, msgs := parseSource(t, "let's f():\nlet's x = 1")
	assert.Equal(t, []feedback.Code{feedback.MissingDelimiter}, codes(msgs))
}

func TestParseUnexpectedIndentation(t *testing.T) {
	prog, msgs := parseSource(t, "let's a = 1\n    let's b = 2\nlet's c = 3")
	assert.Equal(t, []feedback.Code{feedback.UnexpectedToken}, codes(msgs))
	assert.Len(t, prog.Decls, 3)
}

func TestParseLexicalErrorsAreNotReportedTwice(t *testing.T) {
	prog, msgs := parseSource(t, "let's x = @\nlet's s = \"open\nlet's y = 1")
	assert.Equal(t, []feedback.Code{feedback.IllegalCharacter, feedback.UnterminatedString}, codes(msgs))

	require.Len(t, prog.Decls, 3)
	assert.IsType(t, &BadExpr{}, prog.Decls[0].(*VarDecl).Init)
	assert.IsType(t, &BadExpr{}, prog.Decls[1].(*VarDecl).Init)
}

func TestParseNestingLimit(t *testing.T) {
	src := strings.Repeat("(", 10000) + "1" + strings.Repeat(")", 10000) + "\nlet's after = 1"
	prog, msgs := parseSource(t, src)

	assert.Equal(t, []feedback.Code{feedback.NestingTooDeep}, codes(msgs))
	require.Len(t, prog.Decls, 2)
	assert.IsType(t, &BadStmt{}, prog.Decls[0])
}

func TestParseNestingLimitOption(t *testing.T) {
	src := "let's x = " + strings.Repeat("[", 20) + strings.Repeat("]", 20)

	_, msgs := Parse(source.NewFile("test.aegis", src), Options{MaxDepth: 10})
	assert.Equal(t, []feedback.Code{feedback.NestingTooDeep}, codes(msgs))

	_, msgs = Parse(source.NewFile("test.aegis", src), Options{MaxDepth: 50})
	assert.Empty(t, msgs)
}

func TestParseEmptyProgram(t *testing.T) {
	prog := mustParse(t, "# only a comment\n\n")
	assert.Empty(t, prog.Decls)
	assert.Equal(t, "(program)", StringifyAST(prog))
}
