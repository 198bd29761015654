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

func compileSource(t *testing.T, src string) (*Program, []feedback.Message) {
	t.Helper()
	return Compile(source.NewFile("test.aegis", src), Options{})
}

func assertCodes(t *testing.T, src string, expected ...feedback.Code) []feedback.Message {
	t.Helper()

	_, msgs := compileSource(t, src)
	if !assert.Equal(t, expected, codes(msgs), src) {
		for _, msg := range msgs {
			t.Log(msg.Diagnostic())
		}
	}
	return msgs
}

func TestCheckValidPrograms(t *testing.T) {
	tests := []string{
		"let's x = 1 + 2 * 3",
		"let's greeting = \"n = \" + 1",
		"let's a = twice(2)\nlet's twice(n: number) -> number: return n * 2",
		"let's x = 1\nlet's f():\n    let's x = \"shadow\"\n    return x",
		"let's f(x): return x.anything + 1",
		"let's items = []\nitems.add(1)\nlet's n: number = items[0]",
		"let's scores: Map<string, number> = {}\nscores.set(\"a\", 1)\nlet's total: number = scores.get(\"a\")",
		"let's maybe: Optional<number> = nothing",
		"if true:\n    1\nelse:\n    \"a\"",
		"let's label = if 1 > 2: \"big\" else: \"small\"\nlet's s: string = label",
		"for c in \"abc\":\n    print(c)",
		"let's js = ask_js \"window.alert(1)\"",
		"let's ok = not (1 > 2) and true",
	}

	for _, src := range tests {
		assertCodes(t, src)
	}
}

func TestCheckMissingContractField(t *testing.T) {
	msgs := assertCodes(t, `contract Task { id: number, title: string }
let's t: Task = {id: 1}
`, feedback.MissingField)

	d := msgs[0].Diagnostic()
	assert.Contains(t, d.Message, "`title`")
	assert.Equal(t, 2, d.Span.Start.Line)
}

func TestCheckContractInitializer(t *testing.T) {
	contract := "contract Task { id: number, title: string }\n"

	assertCodes(t, contract+"let's t: Task = {id: 1, title: \"a\"}")
	assertCodes(t, contract+"let's t: Task = {id: \"1\", title: \"a\"}", feedback.TypeMismatch)
	assertCodes(t, contract+"let's t: Task = {id: 1, title: \"a\", done: true}", feedback.UnknownField)
	assertCodes(t, contract+"let's t: Task = {id: 1, id: 2, title: \"a\"}", feedback.DuplicateDeclaration)
	assertCodes(t, contract+"let's t: Task = {}", feedback.MissingField, feedback.MissingField)
	assertCodes(t, contract+"let's t: Task = {id: 1, title: \"a\"}\nlet's n: number = t.id\nlet's s: string = t.title")
	assertCodes(t, contract+"let's t: Task = {id: 1, title: \"a\"}\nprint(t.owner)", feedback.UnknownField)
}

func TestCheckUnknownFieldPointsAtContract(t *testing.T) {
	file := source.NewFile("test.aegis", "contract Task { id: number }\nlet's t: Task = {id: 1, name: \"x\"}")
	_, msgs := Compile(file, Options{})
	require.Len(t, msgs, 1)

	err, ok := msgs[0].(feedback.Error)
	require.True(t, ok)
	require.Len(t, err.Why, 1)
	assert.Equal(t, 1, err.Why[0].Span.Start.Line)
}

func TestCheckAwaitOutsideAsync(t *testing.T) {
	prog, msgs := compileSource(t, `let's f():
    let's x = await sleep(1)
    return x
`)
	assert.Equal(t, []feedback.Code{feedback.AwaitOutsideAsync}, codes(msgs))

	fn := prog.Decls[0].(*FuncDecl)
	decl := fn.Body.Stmts[0].(*VarDecl)
	await, ok := decl.Init.(*AwaitExpr)
	require.True(t, ok)

	require.NotNil(t, await.Type())
	assert.Equal(t, ErrorKind, await.Type().Kind)
	require.NotNil(t, await.Operand.Type())
	assert.Equal(t, FutureKind, await.Operand.Type().Kind)
}

func TestCheckErrorTypedReturnStaysQuiet(t *testing.T) {
	prog, msgs := compileSource(t, "let's f():\n    return await sleep(1)\nlet's v: string = f()")
	assert.Equal(t, []feedback.Code{feedback.AwaitOutsideAsync}, codes(msgs))

	fn := prog.Decls[0].(*FuncDecl)
	assert.Equal(t, ErrorKind, resolve(fn.Symbol.Type.Result).Kind)

	assertCodes(t, "let's g(): return missing\nlet's n: number = g() + 1", feedback.UndefinedVariable)
}

func TestCheckAsync(t *testing.T) {
	assertCodes(t, `async let's load() -> number:
    await sleep(1)
    return 1
async let's main():
    let's n: number = await load()
`)

	assertCodes(t, "let's n = await sleep(1)", feedback.AwaitOutsideAsync)
	assertCodes(t, "async let's load() -> number: return 1\nlet's n: number = load()", feedback.TypeMismatch)
}

func TestCheckUndefinedVariable(t *testing.T) {
	msgs := assertCodes(t, "let's a = 1\nlet's b = a + missing", feedback.UndefinedVariable)

	assert.Equal(t, source.Span{
		Start: source.Pos{Offset: 26, Line: 2, Col: 15},
		End:   source.Pos{Offset: 33, Line: 2, Col: 22},
	}, msgs[0].Diagnostic().Span)

	assertCodes(t, "let's a = b\nlet's b = 1", feedback.UndefinedVariable)
	assertCodes(t, "let's f():\n    let's inner = 1\nprint(inner)", feedback.UndefinedVariable)
}

func TestCheckDuplicateDeclaration(t *testing.T) {
	msgs := assertCodes(t, "let's a = 1\nlet's a = 2", feedback.DuplicateDeclaration)
	assert.Equal(t, 2, msgs[0].Diagnostic().Span.Start.Line)

	err := msgs[0].(feedback.Error)
	require.Len(t, err.Why, 1)
	assert.Equal(t, 1, err.Why[0].Span.Start.Line)

	// the function is hoisted above the variable but the later line is blamed
	msgs = assertCodes(t, "let's a = 1\nlet's a():\n    return 1", feedback.DuplicateDeclaration)
	assert.Equal(t, 2, msgs[0].Diagnostic().Span.Start.Line)
	err = msgs[0].(feedback.Error)
	require.Len(t, err.Why, 1)
	assert.Equal(t, 1, err.Why[0].Span.Start.Line)

	msgs = assertCodes(t, "let's a():\n    return 1\nlet's a = 1", feedback.DuplicateDeclaration)
	assert.Equal(t, 3, msgs[0].Diagnostic().Span.Start.Line)

	msgs = assertCodes(t, "enum Shape: Dot\ncontract Shape { x: number }", feedback.DuplicateDeclaration)
	assert.Equal(t, 2, msgs[0].Diagnostic().Span.Start.Line)

	assertCodes(t, "let's f(a, a): return a", feedback.DuplicateDeclaration)
	assertCodes(t, "contract P { x: number, x: string }", feedback.DuplicateDeclaration)
	assertCodes(t, "enum E: A, A", feedback.DuplicateDeclaration)
}

func TestCheckSyntaxFaultKeepsDeclaration(t *testing.T) {
	assertCodes(t, "let's total = (1 + 2\nprint(total)\nprint(total)", feedback.MissingDelimiter)
	assertCodes(t, "let's n: number 5\nlet's s: string = n", feedback.MissingDelimiter, feedback.TypeMismatch)
	assertCodes(t, "app A:\n    let's track count = = 0\n    show:\n        text \"{count}\"\n", feedback.UnexpectedToken)

	prog, _ := compileSource(t, "let's total = (1 + 2\nprint(total)")
	decl := prog.Decls[0].(*VarDecl)
	require.NotNil(t, decl.Symbol)
	assert.Equal(t, ErrorKind, decl.Symbol.Type.Kind)
}

func TestCheckManyDeclarations(t *testing.T) {
	var b strings.Builder
	b.WriteString("let's v0 = 0\n")
	for i := 1; i < 10000; i++ {
		fmt.Fprintf(&b, "let's v%d = v%d + 1\n", i, i-1)
	}

	prog, msgs := compileSource(t, b.String())
	assert.Empty(t, msgs)
	assert.Len(t, prog.Decls, 10000)
}

func TestCheckDiagnosticCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&b, "let's v%d = missing%d\n", i, i)
	}

	_, msgs := Compile(source.NewFile("test.aegis", b.String()), Options{MaxDiagnostics: 100})
	require.Len(t, msgs, 101)
	assert.Equal(t, feedback.UndefinedVariable, msgs[99].Diagnostic().Code)
	assert.Equal(t, feedback.TooManyDiagnostics, msgs[100].Diagnostic().Code)
}

func TestCheckTypeMismatches(t *testing.T) {
	tests := []string{
		"let's n: number = \"x\"",
		"let's xs = [1, \"two\"]",
		"let's v = if true: 1 else: \"a\"",
		"if 1: print(1)",
		"let's x = 1 - \"a\"",
		"let's x = -\"a\"",
		"let's x = 1 == \"a\"",
		"let's x = 1 and true",
		"let's xs = [1, 2]\nlet's s: string = xs[0]",
		"let's n = 5\nlet's x = n[0]",
		"for x in 5: print(x)",
		"let's double(n: number): return n * 2\nlet's x: string = double(2)",
		"let's f() -> number: return \"no\"",
	}

	for _, src := range tests {
		assertCodes(t, src, feedback.TypeMismatch)
	}
}

func TestCheckCalls(t *testing.T) {
	fn := "let's f(a: number, b: string) -> number: return a\n"

	assertCodes(t, fn+"let's x: number = f(1, \"b\")")
	assertCodes(t, "nope(1)", feedback.UndefinedFunction)
	assertCodes(t, "let's n = 1\nn(2)", feedback.UndefinedFunction)

	msgs := assertCodes(t, fn+"f(1)", feedback.ArgumentMismatch)
	err := msgs[0].(feedback.Error)
	require.Len(t, err.Why, 1, "points at the definition")
	assert.Equal(t, 1, err.Why[0].Span.Start.Line)

	msgs = assertCodes(t, fn+"f(1, 2)", feedback.ArgumentMismatch)
	assert.Contains(t, msgs[0].Diagnostic().Message, "2nd argument")
}

func TestCheckAssignments(t *testing.T) {
	assertCodes(t, "let's x = 1\nx = 2")
	assertCodes(t, "let's x = 1\nx = \"two\"", feedback.TypeMismatch)
	assertCodes(t, "1 = 2", feedback.InvalidAssignment)
	assertCodes(t, "let's f(): return 1\nf = 2", feedback.InvalidAssignment)
	assertCodes(t, "missing = 2", feedback.UndefinedVariable)
}

func TestCheckTrackedAssignmentsAreReactive(t *testing.T) {
	prog, msgs := compileSource(t, `contract Counter { value: number }
let's track count = 0
let's track counter: Counter = {value: 0}
let's plain = 0
count = count + 1
counter.value = 2
plain = 1
`)
	require.Empty(t, msgs)

	assign := func(i int) *AssignExpr { return prog.Decls[i].(*ExprStmt).X.(*AssignExpr) }
	assert.True(t, assign(4).Reactive)
	assert.True(t, assign(5).Reactive)
	assert.False(t, assign(6).Reactive)

	assert.Equal(t, SymbolTracked, prog.Decls[1].(*VarDecl).Symbol.Kind)
}

func TestCheckReturnOutsideFunction(t *testing.T) {
	assertCodes(t, "return 1", feedback.ReturnOutsideFunc)
}

func TestCheckUnknownTypes(t *testing.T) {
	assertCodes(t, "let's x: Foo = 1", feedback.UndefinedType)
	assertCodes(t, "let's x: List = []", feedback.UndefinedType)
	assertCodes(t, "let's x: number<string> = 1", feedback.UndefinedType)
	assertCodes(t, "let's f(a: Thing): return a", feedback.UndefinedType)
}

func TestCheckGenericContracts(t *testing.T) {
	box := "contract Box<T> { value: T }\n"

	assertCodes(t, box+"let's b: Box<number> = {value: 1}\nlet's n: number = b.value")
	assertCodes(t, box+"let's b: Box<string> = {value: 2}", feedback.TypeMismatch)
	assertCodes(t, box+"let's b: Box<number> = {value: 1}\nlet's s: string = b.value", feedback.TypeMismatch)
	assertCodes(t, box+"let's b: Box = {value: 1}", feedback.UndefinedType)
	assertCodes(t, "contract Pair<A, B> { first: A, second: B }\nlet's p: Pair<number, string> = {first: 1, second: \"x\"}")
}

func TestCheckEnums(t *testing.T) {
	shape := "enum Shape: Circle(number), Square(number), Empty\n"

	assertCodes(t, shape+"let's s = Shape.Circle(2)\nlet's e: Shape = Shape.Empty")
	assertCodes(t, shape+"let's s = Shape.Triangle", feedback.UnknownField)
	assertCodes(t, shape+"let's s = Shape.Circle(\"big\")", feedback.ArgumentMismatch)
	assertCodes(t, shape+"let's s = Shape", feedback.TypeMismatch)
}

func TestCheckWhenExhaustiveness(t *testing.T) {
	shape := "enum Shape: Circle(number), Square(number), Empty\n"

	assertCodes(t, shape+`let's area(s: Shape) -> number:
    return when s:
        is Circle(r) => r * r
        is Square(side) => side * side
        is Empty => 0
`)

	msgs := assertCodes(t, shape+`let's describe(s: Shape):
    when s:
        is Circle(r) => print(r)
        is Shape.Square(side) => print(side)
`, feedback.NonExhaustiveWhen)
	assert.Contains(t, msgs[0].Diagnostic().Message, "`Empty`")
	assert.Equal(t, feedback.SeverityWarning, msgs[0].Diagnostic().Severity)

	assertCodes(t, shape+`let's describe(s: Shape):
    when s:
        is Circle(r) => print(r)
        else => print("other")
`)

	assertCodes(t, "let's done = true\nwhen done:\n    is true => print(1)\n", feedback.NonExhaustiveWhen)
	assertCodes(t, "let's done = true\nwhen done:\n    is true => print(1)\n    is false => print(0)\n")
	assertCodes(t, "let's n = 1\nwhen n:\n    is 1 => print(1)\n")
	assertCodes(t, "let's n = 1\nwhen n:\n    is \"one\" => print(1)\n", feedback.TypeMismatch)
	assertCodes(t, shape+"let's s = Shape.Empty\nwhen s:\n    is Circle(a, b) => print(a)\n    else => print(0)\n", feedback.TypeMismatch)
	assertCodes(t, shape+"let's s = Shape.Empty\nwhen s:\n    is Hexagon => print(0)\n    else => print(1)\n", feedback.UnknownField)
}

func TestCheckUIWarnings(t *testing.T) {
	msgs := assertCodes(t, `app A:
    let's track name = ""
    show:
        column:
            text "hi" colour: "red"
            button "go" when_hovered: print(1)
            widget "x"
            input { padding: 4, glow: 1 } value: name on_changed: print(name)
`, feedback.UnknownUIProperty, feedback.UnknownUIEvent, feedback.UnknownUIElement, feedback.UnknownUIProperty)

	for _, msg := range msgs {
		assert.Equal(t, feedback.SeverityWarning, msg.Diagnostic().Severity)
	}

	assert.Contains(t, msgs[0].Diagnostic().Message, "`colour`")
	assert.Equal(t, "`button` has no event `when_hovered`; it supports on_clicked, on_long_pressed, when_clicked, when_long_pressed",
		msgs[1].Diagnostic().Message)
	assert.Contains(t, msgs[3].Diagnostic().Message, "`glow`")
}

func TestCheckUIExpressions(t *testing.T) {
	assertCodes(t, `app A:
    show:
        text missing
`, feedback.UndefinedVariable)

	assertCodes(t, `app A:
    show:
        button "x" when_clicked: await sleep(1)
`, feedback.AwaitOutsideAsync)

	assertCodes(t, `app A:
    let's track items = ["a", "b"]
    show:
        for item in items:
            text item
        text item
`, feedback.UndefinedVariable)
}

func TestCheckCustomUISchema(t *testing.T) {
	schema := DefaultUISchema()
	schema.Define("chart", []string{"series"}, []string{"when_hovered"})

	src := "app A:\n    show:\n        chart series: [1, 2] on_hovered: print(1)\n"
	_, msgs := Compile(source.NewFile("test.aegis", src), Options{UI: schema})
	assert.Empty(t, msgs)
}

func TestCheckTodoApp(t *testing.T) {
	prog, msgs := compileSource(t, todoApp)
	require.Empty(t, msgs)

	app := prog.Decls[1].(*AppDecl)
	tasks := app.Body[0].(*VarDecl)
	assert.Equal(t, "List<Task>", tasks.Name.Type().String())

	add := app.Body[1].(*FuncDecl)
	assert.Equal(t, "(string) -> nothing", add.Symbol.Type.String())
}

func TestCheckAnnotatesIdentifiers(t *testing.T) {
	prog, msgs := compileSource(t, "let's a = 1\nlet's b = a")
	require.Empty(t, msgs)

	ref := prog.Decls[1].(*VarDecl).Init.(*Ident)
	require.NotNil(t, ref.Symbol)
	assert.Same(t, prog.Decls[0].(*VarDecl).Symbol, ref.Symbol)
	assert.Equal(t, NumberKind, ref.Type().Kind)
}

func TestStringifyTypedAST(t *testing.T) {
	prog, msgs := compileSource(t, "let's x = 1 + 2")
	require.Empty(t, msgs)

	assert.Equal(t, "(program\n  (let x [number (+ [number 1] [number 2])]))", StringifyTypedAST(prog))
}

func TestCompileCollectsAllPhases(t *testing.T) {
	_, msgs := compileSource(t, "let's a = @\nlet's b = = 1\nlet's c = missing")
	assert.Equal(t, []feedback.Code{
		feedback.IllegalCharacter,
		feedback.UnexpectedToken,
		feedback.UndefinedVariable,
	}, codes(msgs))
}
