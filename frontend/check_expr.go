package frontend

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set"

	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

// checkStmtExpr checks an expression used as a statement. Conditionals in
// statement position do not need their branches to agree on a type
func (c *checker) checkStmtExpr(expr Expr) {
	switch e := expr.(type) {
	case *IfExpr:
		e.t = c.checkIf(e, false)
	case *WhenExpr:
		e.t = c.checkWhen(e, false)
	default:
		c.checkExpr(expr, nil)
	}
}

// checkExpression validates an expression and records its type on the node.
// expected is the type the context wants, or nil; it only guides inference
// of literals and never produces diagnostics by itself
func (c *checker) checkExpr(expr Expr, expected *Type) *Type {
	switch e := expr.(type) {
	case *Ident:
		e.t = c.checkIdent(e)
	case *NumberLit:
		e.t = c.types.builtin.Number
	case *StringLit:
		e.t = c.checkString(e)
	case *BoolLit:
		e.t = c.types.builtin.Boolean
	case *NothingLit:
		e.t = c.types.builtin.Nothing
	case *ListLit:
		e.t = c.checkList(e, expected)
	case *MapLit:
		e.t = c.checkMap(e, expected)
	case *BinaryExpr:
		e.t = c.checkBinary(e)
	case *UnaryExpr:
		e.t = c.checkUnary(e)
	case *AssignExpr:
		e.t = c.checkAssign(e)
	case *CallExpr:
		e.t = c.checkCall(e)
	case *MemberExpr:
		e.t = c.checkMember(e)
	case *IndexExpr:
		e.t = c.checkIndex(e)
	case *AwaitExpr:
		e.t = c.checkAwait(e)
	case *IfExpr:
		e.t = c.checkIf(e, true)
	case *WhenExpr:
		e.t = c.checkWhen(e, true)
	case *ForeignCall:
		// handed to the interop bridge unchecked
		e.t = c.types.builtin.Dynamic
	case *BadExpr:
		e.t = c.types.builtin.Error
	default:
		panic(fmt.Sprintf("UNKNOWN EXPRESSION NODE: %T", e))
	}

	return expr.Type()
}

func (c *checker) checkIdent(ident *Ident) *Type {
	sym, ok := c.scope.Resolve(ident.Name)
	if !ok {
		c.errorf(feedback.UndefinedVariable, ident.Span, "undefined variable `%s`", ident.Name)
		return c.types.builtin.Error
	}

	ident.Symbol = sym

	if sym.IsType() {
		c.errorWhy(feedback.TypeMismatch, ident.Span,
			definedAt(fmt.Sprintf("%s `%s` declared here", sym.Kind, sym.Name), sym.Span),
			"%s `%s` is a type, not a value", sym.Kind, sym.Name)
		return c.types.builtin.Error
	}

	return sym.Type
}

// checkString resolves the `{name}` references inside a string literal
func (c *checker) checkString(lit *StringLit) *Type {
	for _, ref := range lit.Interpolations {
		c.checkExpr(ref, nil)
	}

	return c.types.builtin.String
}

// checkList infers the element type from the expected type when there is one,
// otherwise from the first element. An empty list without context gets a
// placeholder element type that is bound on first use
func (c *checker) checkList(list *ListLit, expected *Type) *Type {
	var elem *Type

	if e := resolve(expected); e != nil && e.Kind == ListKind {
		elem = e.Args[0]
	}

	for i, element := range list.Elements {
		t := c.checkExpr(element, elem)

		if elem == nil && i == 0 {
			elem = t
			continue
		}

		if !assignable(elem, t) {
			c.errorf(feedback.TypeMismatch, spanOf(element), "list elements must be `%s`, found `%s`", elem, t)
		}
	}

	if elem == nil {
		elem = c.types.placeholder()
	}

	return c.types.list(elem)
}

// checkMap checks a map literal, or a record initializer when the expected
// type is a contract. A bare name as a key is a string key
func (c *checker) checkMap(m *MapLit, expected *Type) *Type {
	if e := resolve(expected); e != nil && e.Kind == ContractKind {
		return c.checkInitializer(m, e)
	}

	var key, value *Type
	if e := resolve(expected); e != nil && e.Kind == MapKind {
		key, value = e.Args[0], e.Args[1]
	}

	for i, entry := range m.Entries {
		var k *Type
		if _, isName := entry.Key.(*Ident); isName {
			k = c.types.builtin.String
		} else {
			k = c.checkExpr(entry.Key, key)
		}
		v := c.checkExpr(entry.Value, value)

		if key == nil && i == 0 {
			key, value = k, v
			continue
		}

		if !assignable(key, k) {
			c.errorf(feedback.TypeMismatch, spanOf(entry.Key), "map keys must be `%s`, found `%s`", key, k)
		}

		if !assignable(value, v) {
			c.errorf(feedback.TypeMismatch, spanOf(entry.Value), "map values must be `%s`, found `%s`", value, v)
		}
	}

	if key == nil {
		key, value = c.types.placeholder(), c.types.placeholder()
	}

	return &Type{Kind: MapKind, Name: "Map", Args: []*Type{key, value}}
}

// checkInitializer checks a map literal building a contract value: every key
// must name a field, each field is given once with a compatible value, and
// every field must be given
func (c *checker) checkInitializer(m *MapLit, contract *Type) *Type {
	info := contract.Contract
	declaredHere := definedAt(fmt.Sprintf("contract `%s` declared here", info.Name), info.Definition)
	given := mapset.NewSet()

	for _, entry := range m.Entries {
		var name string
		switch key := entry.Key.(type) {
		case *Ident:
			name = key.Name
		case *StringLit:
			name = key.Value
			key.t = c.types.builtin.String
		default:
			c.checkExpr(entry.Key, nil)
			c.checkExpr(entry.Value, nil)
			c.errorf(feedback.UnknownField, spanOf(entry.Key), "expected a field name of contract `%s`", info.Name)
			continue
		}

		field := info.Field(name)
		if field == nil {
			c.checkExpr(entry.Value, nil)
			c.errorWhy(feedback.UnknownField, spanOf(entry.Key), declaredHere,
				"contract `%s` has no field `%s`", info.Name, name)
			continue
		}

		if !given.Add(name) {
			c.errorf(feedback.DuplicateDeclaration, spanOf(entry.Key), "field `%s` is initialized more than once", name)
		}

		want := fieldType(contract, field)
		if ident, ok := entry.Key.(*Ident); ok {
			ident.t = want
		}

		if got := c.checkExpr(entry.Value, want); !assignable(want, got) {
			c.errorf(feedback.TypeMismatch, spanOf(entry.Value),
				"field `%s` expects `%s`, found `%s`", name, want, got)
		}
	}

	for _, field := range info.Fields {
		if given.Contains(field.Name) {
			continue
		}

		c.errorWhy(feedback.MissingField, spanOf(m),
			definedAt(fmt.Sprintf("`%s` declared here", field.Name), field.Definition),
			"missing field `%s` in initializer of `%s`", field.Name, info.Name)
	}

	return contract
}

var comparisonOperators = map[string]bool{
	"<": true, "<=": true, ">": true, ">=": true,
	"and": true, "&&": true, "or": true, "||": true,
}

func (c *checker) checkBinary(expr *BinaryExpr) *Type {
	op := expr.Operator.Lexeme
	left := c.checkExpr(expr.Left, nil)
	right := c.checkExpr(expr.Right, nil)
	b := c.types.builtin

	if op == "==" || op == "!=" {
		if !equatable(left, right) {
			c.errorf(feedback.TypeMismatch, spanOf(expr), "cannot compare `%s` with `%s`", left, right)
		}
		return b.Boolean
	}

	if isError(left) || isError(right) {
		return b.Error
	}

	if isOpen(left) || isOpen(right) {
		if comparisonOperators[op] {
			return b.Boolean
		}
		return b.Dynamic
	}

	left, right = c.bindOperands(op, resolve(left), resolve(right))

	if left.Kind == PlaceholderKind || right.Kind == PlaceholderKind {
		if comparisonOperators[op] {
			return b.Boolean
		}
		return b.Dynamic
	}

	if ok, result := left.hasMethod(op, right); ok {
		return result
	}

	switch op {
	case "and", "&&", "or", "||":
		c.errorf(feedback.TypeMismatch, spanOf(expr),
			"`%s` needs `boolean` operands, found `%s` and `%s`", op, left, right)
	case "<", "<=", ">", ">=":
		c.errorf(feedback.TypeMismatch, spanOf(expr),
			"cannot order `%s` and `%s` with `%s`", left, right, op)
	default:
		c.errorf(feedback.TypeMismatch, spanOf(expr),
			"operator `%s` is not defined for `%s` and `%s`", op, left, right)
	}

	return b.Error
}

// bindOperands binds a placeholder operand to a type the operator accepts
// so that `n * f(n)` infers f's result from its use
func (c *checker) bindOperands(op string, left, right *Type) (*Type, *Type) {
	if left.Kind == PlaceholderKind && right.Kind != PlaceholderKind {
		assignable(left, right)
		left = resolve(left)
	}

	if right.Kind == PlaceholderKind && left.Kind != PlaceholderKind {
		for _, method := range left.Methods {
			if method.Operator == op && method.Operand != nil {
				assignable(right, method.Operand)
				break
			}
		}
		right = resolve(right)
	}

	return left, right
}

func (c *checker) checkUnary(expr *UnaryExpr) *Type {
	op := expr.Operator.Lexeme
	operand := resolve(c.checkExpr(expr.Operand, nil))

	if isError(operand) {
		return operand
	}

	if operand.Kind == DynamicKind {
		if op == "-" {
			return operand
		}
		return c.types.builtin.Boolean
	}

	if operand.Kind == PlaceholderKind {
		if op == "-" {
			assignable(operand, c.types.builtin.Number)
		} else {
			assignable(operand, c.types.builtin.Boolean)
		}
		operand = resolve(operand)
	}

	if ok, result := operand.hasMethod(op, nil); ok {
		return result
	}

	c.errorf(feedback.TypeMismatch, spanOf(expr), "operator `%s` is not defined for `%s`", op, operand)
	return c.types.builtin.Error
}

// rootIdent returns the variable at the root of an assignment target such as
// `task.items[0].done`
func rootIdent(expr Expr) *Ident {
	for {
		switch e := expr.(type) {
		case *Ident:
			return e
		case *MemberExpr:
			expr = e.Object
		case *IndexExpr:
			expr = e.Object
		default:
			return nil
		}
	}
}

func (c *checker) checkAssign(expr *AssignExpr) *Type {
	var target *Type

	switch t := expr.Target.(type) {
	case *Ident, *MemberExpr, *IndexExpr:
		target = c.checkExpr(t, nil)
	default:
		c.checkExpr(t, nil)
		c.errorf(feedback.InvalidAssignment, spanOf(t), "cannot assign to this expression")
		target = c.types.builtin.Error
	}

	if root := rootIdent(expr.Target); root != nil && root.Symbol != nil {
		switch root.Symbol.Kind {
		case SymbolVariable, SymbolParameter:
		case SymbolTracked:
			expr.Reactive = true
		default:
			if root == expr.Target {
				c.errorWhy(feedback.InvalidAssignment, root.Span,
					definedAt(fmt.Sprintf("%s `%s` declared here", root.Symbol.Kind, root.Name), root.Symbol.Span),
					"cannot assign to %s `%s`", root.Symbol.Kind, root.Name)
				target = c.types.builtin.Error
			}
		}
	}

	value := c.checkExpr(expr.Value, target)
	if !assignable(target, value) {
		c.errorf(feedback.TypeMismatch, spanOf(expr.Value), "expected `%s`, found `%s`", target, value)
	}

	return value
}

func (c *checker) checkCall(call *CallExpr) *Type {
	b := c.types.builtin
	var callee *Type

	// an unknown name in call position is an undefined function rather than
	// an undefined variable
	if ident, ok := call.Callee.(*Ident); ok {
		if _, exists := c.scope.Resolve(ident.Name); !exists {
			c.errorf(feedback.UndefinedFunction, ident.Span, "undefined function `%s`", ident.Name)
			ident.t = b.Error
			c.checkArgs(call.Args)
			return b.Error
		}
	}

	callee = resolve(c.checkExpr(call.Callee, nil))

	switch callee.Kind {
	case ErrorKind, DynamicKind:
		c.checkArgs(call.Args)
		return callee
	case FuncKind:
	default:
		c.checkArgs(call.Args)
		c.errorf(feedback.UndefinedFunction, spanOf(call.Callee), "a value of type `%s` can not be called", callee)
		return b.Error
	}

	why := definedAt("function declared here", callee.Definition)

	if len(call.Args) != len(callee.Params) {
		c.checkArgs(call.Args)
		c.errorWhy(feedback.ArgumentMismatch, source.Span{Start: call.LParen.Span.Start, End: call.RParen.Span.End}, why,
			"expected %d argument(s), found %d", len(callee.Params), len(call.Args))
	} else {
		for i, arg := range call.Args {
			param := callee.Params[i]
			if got := c.checkExpr(arg, param); !assignable(param, got) {
				c.errorWhy(feedback.ArgumentMismatch, spanOf(arg), why,
					"the %s argument expects `%s`, found `%s`", toOrdinal(i+1), param, got)
			}
		}
	}

	if callee.Async {
		return c.types.future(callee.Result)
	}

	return callee.Result
}

func (c *checker) checkArgs(args []Expr) {
	for _, arg := range args {
		c.checkExpr(arg, nil)
	}
}

func (c *checker) checkMember(expr *MemberExpr) *Type {
	name := expr.Property.Name

	// `Enum.Variant` names a variant rather than reading a member
	if ident, ok := expr.Object.(*Ident); ok {
		if sym, exists := c.scope.Resolve(ident.Name); exists && sym.Kind == SymbolEnum {
			ident.Symbol = sym
			ident.t = sym.Type
			return c.variantValue(sym.Type, expr.Property)
		}
	}

	object := resolve(c.checkExpr(expr.Object, nil))

	switch object.Kind {
	case ErrorKind, DynamicKind:
		return object
	case ContractKind:
		info := object.Contract
		field := info.Field(name)
		if field == nil {
			c.errorWhy(feedback.UnknownField, expr.Property.Span,
				definedAt(fmt.Sprintf("contract `%s` declared here", info.Name), info.Definition),
				"contract `%s` has no field `%s`", info.Name, name)
			return c.types.builtin.Error
		}

		t := fieldType(object, field)
		expr.Property.t = t
		return t
	}

	if t, ok := c.types.memberType(object, name); ok {
		expr.Property.t = t
		return t
	}

	c.errorf(feedback.UnknownField, expr.Property.Span, "`%s` has no member `%s`", object, name)
	return c.types.builtin.Error
}

// variantValue is the type of `Enum.Variant`: the enum itself, or a function
// building it when the variant carries a payload
func (c *checker) variantValue(enum *Type, name *Ident) *Type {
	info := enum.Enum
	variant := info.Variant(name.Name)

	if variant == nil {
		c.errorWhy(feedback.UnknownField, name.Span,
			definedAt(fmt.Sprintf("enum `%s` declared here", info.Name), info.Definition),
			"enum `%s` has no variant `%s`", info.Name, name.Name)
		return c.types.builtin.Error
	}

	t := enum
	if len(variant.Payload) > 0 {
		t = c.types.fn(enum, variant.Payload...)
		t.Definition = variant.Definition
	}

	name.t = t
	return t
}

func (c *checker) checkIndex(expr *IndexExpr) *Type {
	b := c.types.builtin
	object := resolve(c.checkExpr(expr.Object, nil))

	var key, result *Type
	switch object.Kind {
	case ErrorKind, DynamicKind:
		c.checkExpr(expr.Index, nil)
		return object
	case ListKind:
		key, result = b.Number, object.Args[0]
	case MapKind:
		key, result = object.Args[0], object.Args[1]
	case StringKind:
		key, result = b.Number, b.String
	default:
		c.checkExpr(expr.Index, nil)
		c.errorf(feedback.TypeMismatch, spanOf(expr.Object), "cannot index a value of type `%s`", object)
		return b.Error
	}

	if got := c.checkExpr(expr.Index, key); !assignable(key, got) {
		c.errorf(feedback.TypeMismatch, spanOf(expr.Index), "index must be `%s`, found `%s`", key, got)
	}

	return result
}

// checkAwait unwraps a future. Outside of an async function the operand is
// still checked but the expression is error typed
func (c *checker) checkAwait(expr *AwaitExpr) *Type {
	operand := resolve(c.checkExpr(expr.Operand, nil))

	if c.fn == nil || !c.fn.async {
		c.errorf(feedback.AwaitOutsideAsync, expr.Keyword.Span, "`await` can only be used inside an `async` function")
		return c.types.builtin.Error
	}

	if operand.Kind == FutureKind {
		return operand.Args[0]
	}

	return operand
}

func (c *checker) checkCondition(cond Expr) {
	b := c.types.builtin
	if t := c.checkExpr(cond, b.Boolean); !assignable(b.Boolean, t) {
		c.errorf(feedback.TypeMismatch, spanOf(cond), "condition must be `boolean`, found `%s`", t)
	}
}

// checkIf checks a conditional. As a value both branches must agree; without
// an else branch the value is optional
func (c *checker) checkIf(expr *IfExpr, asValue bool) *Type {
	c.checkCondition(expr.Cond)

	then := c.checkBlock(expr.Then)
	if expr.Else == nil {
		if !asValue {
			return c.types.builtin.Nothing
		}
		return c.optional(then)
	}

	otherwise := c.checkBlock(expr.Else)
	if !asValue {
		return c.types.builtin.Nothing
	}

	return c.unify(then, otherwise, spanOf(expr.Else), "`if` and `else` branches")
}

func (c *checker) optional(t *Type) *Type {
	switch resolve(t).Kind {
	case NothingKind, OptionalKind, ErrorKind, DynamicKind:
		return t
	}
	return c.types.instantiate("Optional", t)
}

// unify returns the common type of two branch values, reporting a mismatch at
// span
func (c *checker) unify(a, b *Type, span source.Span, what string) *Type {
	switch {
	case assignable(a, b):
		return a
	case assignable(b, a):
		return b
	case resolve(a).Kind == NothingKind:
		return c.optional(b)
	case resolve(b).Kind == NothingKind:
		return c.optional(a)
	}

	c.errorf(feedback.TypeMismatch, span, "%s have different types: `%s` and `%s`", what, a, b)
	return c.types.builtin.Error
}

// checkWhen checks every arm against the subject. Enum subjects take variant
// patterns, which may bind the payload; other patterns are values compared
// with the subject. Without an else arm, enum and boolean subjects must be
// covered completely or a warning is given
func (c *checker) checkWhen(expr *WhenExpr, asValue bool) *Type {
	subject := resolve(c.checkExpr(expr.Subject, nil))

	covered := mapset.NewSet()
	var result *Type

	for _, arm := range expr.Arms {
		t := c.checkWhenArm(arm, subject, covered)

		if !asValue {
			continue
		}

		if result == nil {
			result = t
		} else {
			result = c.unify(result, t, spanOf(arm), "`when` arms")
		}
	}

	if expr.Default != nil {
		t := c.checkBlock(expr.Default)
		if asValue {
			if result == nil {
				result = t
			} else {
				result = c.unify(result, t, spanOf(expr.Default), "`when` arms")
			}
		}
	} else if missing := c.uncovered(subject, covered); len(missing) > 0 {
		c.warnf(feedback.NonExhaustiveWhen, spanOf(expr.Subject),
			"`when` does not handle %s; add the missing arms or an `else` arm", strings.Join(missing, ", "))
		if result != nil {
			result = c.optional(result)
		}
	}

	if !asValue || result == nil {
		return c.types.builtin.Nothing
	}

	return result
}

func (c *checker) checkWhenArm(arm *WhenArm, subject *Type, covered mapset.Set) *Type {
	c.scope.Enter()
	defer c.scope.Exit()

	if variant := c.variantPattern(arm.Pattern, subject); variant != nil {
		covered.Add(variant.Name)

		if len(arm.Bindings) > 0 && len(arm.Bindings) != len(variant.Payload) {
			c.errorf(feedback.TypeMismatch, spanOf(arm.Pattern),
				"variant `%s` carries %d value(s), the pattern binds %d", variant.Name, len(variant.Payload), len(arm.Bindings))
		}

		for i, name := range arm.Bindings {
			t := c.types.builtin.Error
			if i < len(variant.Payload) {
				t = variant.Payload[i]
			}
			c.declareLoopVar(name, t)
		}
	} else {
		pattern := c.checkExpr(arm.Pattern, subject)
		if !equatable(subject, pattern) {
			c.errorf(feedback.TypeMismatch, spanOf(arm.Pattern),
				"a pattern of type `%s` can not match a subject of type `%s`", pattern, subject)
		}

		if lit, ok := arm.Pattern.(*BoolLit); ok {
			covered.Add(lit.Value)
		}

		for _, name := range arm.Bindings {
			c.errorf(feedback.TypeMismatch, name.Span, "only enum variants can bind values")
			c.declareLoopVar(name, c.types.builtin.Error)
		}
	}

	t := c.checkBlock(arm.Body)
	return t
}

// variantPattern resolves a pattern naming a variant of the subject's enum,
// written `Variant` or `Enum.Variant`. Other patterns return nil
func (c *checker) variantPattern(pattern Expr, subject *Type) *VariantInfo {
	if subject.Kind != EnumKind {
		return nil
	}

	var name *Ident
	switch p := pattern.(type) {
	case *Ident:
		if sym, ok := c.scope.Resolve(p.Name); ok && !sym.IsType() {
			return nil
		}
		name = p
	case *MemberExpr:
		enum, ok := p.Object.(*Ident)
		if !ok {
			return nil
		}
		sym, exists := c.scope.Resolve(enum.Name)
		if !exists || sym.Kind != SymbolEnum {
			return nil
		}
		enum.Symbol, enum.t = sym, sym.Type
		name = p.Property
	default:
		return nil
	}

	variant := subject.Enum.Variant(name.Name)
	if variant == nil {
		c.errorWhy(feedback.UnknownField, name.Span,
			definedAt(fmt.Sprintf("enum `%s` declared here", subject.Enum.Name), subject.Enum.Definition),
			"enum `%s` has no variant `%s`", subject.Enum.Name, name.Name)
		setType(pattern, c.types.builtin.Error)
		return &VariantInfo{Name: name.Name}
	}

	name.t = subject
	setType(pattern, subject)
	return variant
}

func setType(expr Expr, t *Type) {
	switch e := expr.(type) {
	case *Ident:
		e.t = t
	case *MemberExpr:
		e.t = t
	}
}

// uncovered lists what a `when` without an else arm leaves unhandled
func (c *checker) uncovered(subject *Type, covered mapset.Set) (missing []string) {
	switch subject.Kind {
	case EnumKind:
		for _, v := range subject.Enum.Variants {
			if !covered.Contains(v.Name) {
				missing = append(missing, fmt.Sprintf("`%s`", v.Name))
			}
		}
	case BooleanKind:
		for _, v := range []bool{true, false} {
			if !covered.Contains(v) {
				missing = append(missing, fmt.Sprintf("`%t`", v))
			}
		}
	}

	return missing
}
