package frontend

import (
	"fmt"

	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

// Check takes a Program AST node and validates the type properties of the
// entire tree, annotating expressions with their types and identifiers with
// their symbols. Any type errors encountered while crawling the AST are
// returned. The tree is annotated as far as possible even when errors occur
func Check(file *source.File, prog *Program, opts Options) (msgs []feedback.Message) {
	opts = opts.withDefaults()
	log := feedback.NewLog(opts.MaxDiagnostics)
	check(file, prog, log, opts)
	return log.Messages()
}

func check(file *source.File, prog *Program, log *feedback.Log, opts Options) {
	c := &checker{
		file:  file,
		log:   log,
		types: newTypeTable(),
		scope: NewSymbolTable(),
		ui:    opts.UI,
	}

	c.declarePrelude()

	c.scope.Enter()
	c.checkStatements(prog.Decls)
	c.scope.Exit()
}

// checker holds the state of one semantic analysis pass
type checker struct {
	file  *source.File
	log   *feedback.Log
	types *typeTable
	scope *SymbolTable
	ui    *UISchema
	fn    *funcContext
}

// funcContext describes the innermost enclosing function
type funcContext struct {
	async  bool
	result *Type
}

func (c *checker) errorf(code feedback.Code, span source.Span, format string, args ...interface{}) {
	c.errorWhy(code, span, nil, format, args...)
}

func (c *checker) errorWhy(code feedback.Code, span source.Span, why []feedback.Selection, format string, args ...interface{}) {
	c.log.Add(feedback.Error{
		Code: code,
		File: c.file,
		What: feedback.Selection{
			Description: fmt.Sprintf(format, args...),
			Span:        span,
		},
		Why: why,
	})
}

func (c *checker) warnf(code feedback.Code, span source.Span, format string, args ...interface{}) {
	c.log.Add(feedback.Warning{
		Code: code,
		File: c.file,
		What: feedback.Selection{
			Description: fmt.Sprintf(format, args...),
			Span:        span,
		},
	})
}

// definedAt builds the note pointing at a declaration, or nothing for
// built-in entities
func definedAt(description string, span source.Span) []feedback.Selection {
	if span.Start.Line == 0 {
		return nil
	}

	return []feedback.Selection{{Description: description, Span: span}}
}

// declarePrelude fills the outermost scope with the built-in functions
func (c *checker) declarePrelude() {
	b := c.types.builtin

	printFn := c.types.fn(b.Nothing, b.Dynamic)
	sleepFn := c.types.fn(b.Nothing, b.Number)
	sleepFn.Async = true

	c.scope.Declare(&Symbol{Name: "print", Kind: SymbolFunction, Type: printFn})
	c.scope.Declare(&Symbol{Name: "sleep", Kind: SymbolFunction, Type: sleepFn})
}

// declare adds a symbol to the innermost scope, reporting a duplicate
// declaration against the original. It reports whether the symbol was added
func (c *checker) declare(sym *Symbol) bool {
	prev, ok := c.scope.Declare(sym)
	if ok {
		return true
	}

	// hoisted declarations enter the scope early; blame whichever comes later
	// in the source
	first, second := prev, sym
	if prev.Span.Start.Offset > sym.Span.Start.Offset {
		first, second = sym, prev
	}

	c.errorWhy(feedback.DuplicateDeclaration, second.Span,
		definedAt(fmt.Sprintf("`%s` originally declared here", first.Name), first.Span),
		"`%s` is already declared in this scope", sym.Name)

	return false
}

// checkStatements validates a run of statements sharing one scope. Contract,
// enum and function declarations are hoisted so the run can refer to them
// before the point of declaration; variables become visible in order
func (c *checker) checkStatements(stmts []Stmt) {
	var contracts []*ContractDecl
	var enums []*EnumDecl

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ContractDecl:
			c.declareContract(s)
			contracts = append(contracts, s)
		case *EnumDecl:
			c.declareEnum(s)
			enums = append(enums, s)
		}
	}

	for _, s := range contracts {
		c.resolveContract(s)
	}

	for _, s := range enums {
		c.resolveEnum(s)
	}

	for _, stmt := range stmts {
		if s, ok := stmt.(*FuncDecl); ok {
			c.declareFunc(s)
		}
	}

	for _, stmt := range stmts {
		c.checkStatement(stmt)
	}
}

// checkStatement validates types within a single statement in the context of
// the current scope
func (c *checker) checkStatement(stmt Stmt) {
	switch s := stmt.(type) {
	case *VarDecl:
		c.checkVarDecl(s)
	case *FuncDecl:
		c.checkFuncBody(s)
	case *ContractDecl, *EnumDecl:
		// resolved while hoisting
	case *AppDecl:
		c.checkApp(s)
	case *ReturnStmt:
		c.checkReturn(s)
	case *ForStmt:
		c.checkFor(s)
	case *ExprStmt:
		c.checkStmtExpr(s.X)
	case *BadStmt:
		// already reported by the parser
	default:
		panic(fmt.Sprintf("UNKNOWN STATEMENT NODE: %T", s))
	}
}

func (c *checker) checkVarDecl(decl *VarDecl) {
	var declared *Type

	if decl.Annotation != nil {
		declared = c.resolveType(decl.Annotation)
	}

	value := c.checkExpr(decl.Init, declared)

	if declared == nil {
		declared = value
	} else if !assignable(declared, value) {
		c.errorf(feedback.TypeMismatch, spanOf(decl.Init),
			"expected `%s`, found `%s`", declared, value)
	}

	kind := SymbolVariable
	if decl.Tracked {
		kind = SymbolTracked
	}

	sym := &Symbol{Name: decl.Name.Name, Kind: kind, Type: declared, Span: decl.Name.Span}
	if c.declare(sym) {
		decl.Symbol = sym
		decl.Name.Symbol = sym
	}

	decl.Name.t = declared
}

func (c *checker) declareFunc(decl *FuncDecl) {
	b := c.types.builtin
	sig := &Type{
		Kind:       FuncKind,
		Name:       "function",
		Async:      decl.Async,
		Definition: spanOf(decl.Name),
	}

	for _, param := range decl.Params {
		t := b.Dynamic
		if param.Annotation != nil {
			t = c.resolveType(param.Annotation)
		}
		sig.Params = append(sig.Params, t)
	}

	if decl.Result != nil {
		sig.Result = c.resolveType(decl.Result)
	} else {
		sig.Result = c.types.placeholder()
	}

	sym := &Symbol{Name: decl.Name.Name, Kind: SymbolFunction, Type: sig, Span: decl.Name.Span}
	if c.declare(sym) {
		decl.Symbol = sym
		decl.Name.Symbol = sym
	}

	decl.Name.t = sig
}

func (c *checker) checkFuncBody(decl *FuncDecl) {
	sig := decl.Name.t

	outer := c.fn
	c.fn = &funcContext{async: decl.Async, result: sig.Result}
	defer func() { c.fn = outer }()

	c.scope.Enter()
	defer c.scope.Exit()

	for i, param := range decl.Params {
		sym := &Symbol{Name: param.Name.Name, Kind: SymbolParameter, Type: sig.Params[i], Span: param.Name.Span}
		if c.declare(sym) {
			param.Symbol = sym
			param.Name.Symbol = sym
		}
		param.Name.t = sig.Params[i]
	}

	c.checkStatements(decl.Body.Stmts)

	// a function that never returned a value returns nothing
	if result := resolve(sig.Result); result.Kind == PlaceholderKind {
		result.bound = c.types.builtin.Nothing
	}
}

func (c *checker) checkReturn(ret *ReturnStmt) {
	value := c.types.builtin.Nothing
	span := ret.Keyword.Span

	var expected *Type
	if c.fn != nil {
		expected = c.fn.result
	}

	if ret.Value != nil {
		value = c.checkExpr(ret.Value, expected)
		span = spanOf(ret.Value)
	}

	if c.fn == nil {
		c.errorf(feedback.ReturnOutsideFunc, ret.Keyword.Span, "`return` can only be used inside a function")
		return
	}

	// an inferred result fed by a failed expression stays quiet for callers
	if result := resolve(c.fn.result); isError(value) && result.Kind == PlaceholderKind {
		result.bound = c.types.builtin.Error
		return
	}

	if !assignable(c.fn.result, value) {
		c.errorf(feedback.TypeMismatch, span, "expected a return value of type `%s`, found `%s`", c.fn.result, value)
	}
}

func (c *checker) checkFor(loop *ForStmt) {
	elem := c.iterationType(loop.Iterable)

	c.scope.Enter()
	defer c.scope.Exit()

	c.declareLoopVar(loop.Var, elem)
	c.checkStatements(loop.Body.Stmts)
}

// iterationType returns the type of the loop variable when iterating over
// expr: list and set elements, map keys, or the characters of a string
func (c *checker) iterationType(expr Expr) *Type {
	t := resolve(c.checkExpr(expr, nil))

	switch t.Kind {
	case ErrorKind, DynamicKind:
		return t
	case ListKind, SetKind, MapKind:
		return t.Args[0]
	case StringKind:
		return c.types.builtin.String
	case PlaceholderKind:
		return c.types.builtin.Dynamic
	default:
		c.errorf(feedback.TypeMismatch, spanOf(expr), "cannot iterate over a value of type `%s`", t)
		return c.types.builtin.Error
	}
}

func (c *checker) declareLoopVar(name *Ident, t *Type) {
	sym := &Symbol{Name: name.Name, Kind: SymbolVariable, Type: t, Span: name.Span}
	if c.declare(sym) {
		name.Symbol = sym
	}
	name.t = t
}

// checkBlock validates a block in a scope of its own and returns the type of
// its value: the type of a trailing expression statement, otherwise nothing
func (c *checker) checkBlock(block *Block) *Type {
	c.scope.Enter()
	defer c.scope.Exit()

	c.checkStatements(block.Stmts)
	return c.blockType(block)
}

func (c *checker) blockType(block *Block) *Type {
	if n := len(block.Stmts); n > 0 {
		if s, ok := block.Stmts[n-1].(*ExprStmt); ok && s.X.Type() != nil {
			return s.X.Type()
		}
	}

	return c.types.builtin.Nothing
}

func (c *checker) checkApp(app *AppDecl) {
	c.scope.Enter()
	defer c.scope.Exit()

	c.checkStatements(app.Body)

	if app.Change != nil {
		c.checkBlock(app.Change)
	}

	if app.Show != nil {
		c.checkUINodes(app.Show.Nodes)
	}
}

/**
 * Contracts, enums and type expressions
 */

func (c *checker) declareContract(decl *ContractDecl) {
	info := &ContractInfo{Name: decl.Name.Name, Definition: spanOf(decl)}

	for _, param := range decl.TypeParams {
		info.TypeParams = append(info.TypeParams, &Type{
			Kind:       ParamKind,
			Name:       param.Name,
			Definition: param.Span,
		})
	}

	t := &Type{
		Kind:       ContractKind,
		Name:       decl.Name.Name,
		Args:       info.TypeParams,
		Contract:   info,
		Definition: info.Definition,
	}

	sym := &Symbol{Name: decl.Name.Name, Kind: SymbolContract, Type: t, Span: decl.Name.Span}
	if c.declare(sym) {
		decl.Symbol = sym
		decl.Name.Symbol = sym
	}
	decl.Name.t = t
}

// resolveContract resolves the field types of a hoisted contract with its
// type parameters in scope
func (c *checker) resolveContract(decl *ContractDecl) {
	info := decl.Name.t.Contract

	c.scope.Enter()
	defer c.scope.Exit()

	for i, param := range decl.TypeParams {
		c.declare(&Symbol{Name: param.Name, Kind: SymbolTypeParam, Type: info.TypeParams[i], Span: param.Span})
	}

	for _, field := range decl.Fields {
		t := c.resolveType(field.Annotation)

		if prev := info.Field(field.Name.Name); prev != nil {
			c.errorWhy(feedback.DuplicateDeclaration, field.Name.Span,
				definedAt("first declared here", prev.Definition),
				"field `%s` is already declared in contract `%s`", field.Name.Name, info.Name)
			continue
		}

		info.Fields = append(info.Fields, &FieldInfo{
			Name:       field.Name.Name,
			Type:       t,
			Definition: field.Name.Span,
		})
		field.Name.t = t
	}
}

func (c *checker) declareEnum(decl *EnumDecl) {
	info := &EnumInfo{Name: decl.Name.Name, Definition: spanOf(decl)}
	t := &Type{Kind: EnumKind, Name: decl.Name.Name, Enum: info, Definition: info.Definition}

	sym := &Symbol{Name: decl.Name.Name, Kind: SymbolEnum, Type: t, Span: decl.Name.Span}
	if c.declare(sym) {
		decl.Symbol = sym
		decl.Name.Symbol = sym
	}
	decl.Name.t = t
}

func (c *checker) resolveEnum(decl *EnumDecl) {
	info := decl.Name.t.Enum

	for _, variant := range decl.Variants {
		v := &VariantInfo{Name: variant.Name.Name, Definition: variant.Name.Span}
		for _, payload := range variant.Payload {
			v.Payload = append(v.Payload, c.resolveType(payload))
		}

		if prev := info.Variant(v.Name); prev != nil {
			c.errorWhy(feedback.DuplicateDeclaration, variant.Name.Span,
				definedAt("first declared here", prev.Definition),
				"variant `%s` is already declared in enum `%s`", v.Name, info.Name)
			continue
		}

		info.Variants = append(info.Variants, v)
		variant.Name.t = decl.Name.t
	}
}

// resolveType turns a written type into a Type, reporting unknown names and
// wrong numbers of type arguments. The error type is returned on failure
func (c *checker) resolveType(expr *TypeExpr) (t *Type) {
	defer func() { expr.Resolved = t }()

	name := expr.Name.Name
	span := spanOf(expr)

	var args []*Type
	for _, arg := range expr.Args {
		args = append(args, c.resolveType(arg))
	}

	if arity, ok := c.types.genericArity(name); ok {
		if len(args) != arity {
			c.errorf(feedback.UndefinedType, span, "`%s` expects %d type argument(s), found %d", name, arity, len(args))
			return c.types.builtin.Error
		}
		return c.types.instantiate(name, args...)
	}

	if exists, builtin := c.types.getNamedType(name); exists {
		if len(args) > 0 {
			c.errorf(feedback.UndefinedType, span, "`%s` does not take type arguments", name)
			return c.types.builtin.Error
		}
		return builtin
	}

	sym, ok := c.scope.Resolve(name)
	if !ok || !sym.IsType() {
		c.errorf(feedback.UndefinedType, spanOf(expr.Name), "unknown type `%s`", name)
		return c.types.builtin.Error
	}
	expr.Name.Symbol = sym

	switch sym.Kind {
	case SymbolContract:
		info := sym.Type.Contract
		if len(args) != len(info.TypeParams) {
			c.errorWhy(feedback.UndefinedType, span,
				definedAt(fmt.Sprintf("`%s` declared here", name), sym.Span),
				"contract `%s` expects %d type argument(s), found %d", name, len(info.TypeParams), len(args))
			return c.types.builtin.Error
		}

		if len(args) == 0 {
			return sym.Type
		}

		return &Type{Kind: ContractKind, Name: name, Args: args, Contract: info, Definition: sym.Type.Definition}
	default:
		if len(args) > 0 {
			c.errorf(feedback.UndefinedType, span, "`%s` does not take type arguments", name)
			return c.types.builtin.Error
		}
		return sym.Type
	}
}
