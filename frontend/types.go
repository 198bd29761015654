package frontend

import (
	"fmt"
	"strings"

	"github.com/Heartless-Veteran/Aegis/source"
)

// TypeKind is the shape of a Type
type TypeKind int

// Type kinds. ErrorKind is the sentinel substituted after a failed check so
// that later checks stay quiet; DynamicKind is compatible with everything by
// declaration
const (
	ErrorKind TypeKind = iota
	DynamicKind
	NumberKind
	StringKind
	BooleanKind
	NothingKind
	ListKind
	MapKind
	SetKind
	OptionalKind
	FutureKind
	FuncKind
	ContractKind
	EnumKind
	PlaceholderKind
	ParamKind
)

// Type represents a type defined in or inferred for a program. Types can be
// tagged with the line/column location of their definition
type Type struct {
	Kind       TypeKind
	Name       string
	Args       []*Type
	Methods    []*Method
	Params     []*Type
	Result     *Type
	Async      bool
	Contract   *ContractInfo
	Enum       *EnumInfo
	Definition source.Span

	// bound is the type a placeholder was resolved to on first use
	bound *Type
}

// Method describes an operator applicable to a Root type. A nil Operand marks
// a prefix operator
type Method struct {
	Operator string
	Root     *Type
	Operand  *Type
	Result   *Type
}

// ContractInfo is the declaration side of a contract. Instances of a generic
// contract share one ContractInfo and differ in their Type.Args
type ContractInfo struct {
	Name       string
	TypeParams []*Type
	Fields     []*FieldInfo
	Definition source.Span
}

// Field returns the named field or nil
func (c *ContractInfo) Field(name string) *FieldInfo {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldInfo is one resolved contract field
type FieldInfo struct {
	Name       string
	Type       *Type
	Definition source.Span
}

// EnumInfo is the declaration side of an enum
type EnumInfo struct {
	Name       string
	Variants   []*VariantInfo
	Definition source.Span
}

// Variant returns the named variant or nil
func (e *EnumInfo) Variant(name string) *VariantInfo {
	for _, v := range e.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// VariantInfo is one resolved enum variant
type VariantInfo struct {
	Name       string
	Payload    []*Type
	Definition source.Span
}

func (t *Type) addMethod(method *Method) {
	t.Methods = append(t.Methods, method)
}

func (t *Type) hasMethod(operator string, operand *Type) (bool, *Type) {
	for _, method := range t.Methods {
		if method.Operator != operator {
			continue
		}

		if method.Operand == nil && operand == nil {
			return true, method.Result
		}

		if method.Operand != nil && operand != nil && method.Operand.Kind == resolve(operand).Kind {
			return true, method.Result
		}
	}

	return false, nil
}

func resolve(t *Type) *Type {
	for t != nil && t.Kind == PlaceholderKind && t.bound != nil {
		t = t.bound
	}
	return t
}

func (t *Type) String() string {
	t = resolve(t)
	if t == nil {
		return "nothing"
	}

	switch t.Kind {
	case ErrorKind:
		return "<error>"
	case PlaceholderKind:
		return "unknown"
	case FuncKind:
		var params []string
		for _, p := range t.Params {
			params = append(params, p.String())
		}

		prefix := ""
		if t.Async {
			prefix = "async "
		}

		return fmt.Sprintf("%s(%s) -> %s", prefix, strings.Join(params, ", "), t.Result)
	case ListKind, MapKind, SetKind, OptionalKind, FutureKind, ContractKind:
		if len(t.Args) == 0 {
			return t.Name
		}

		var args []string
		for _, a := range t.Args {
			args = append(args, a.String())
		}

		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ", "))
	default:
		return t.Name
	}
}

func isOpen(t *Type) bool {
	t = resolve(t)
	return t == nil || t.Kind == ErrorKind || t.Kind == DynamicKind
}

func isError(t *Type) bool {
	t = resolve(t)
	return t != nil && t.Kind == ErrorKind
}

// occurs reports whether placeholder p appears inside t. Binding p to such a
// type would make it infinite
func occurs(p, t *Type) bool {
	t = resolve(t)
	if t == nil {
		return false
	}
	if t == p {
		return true
	}
	for _, a := range t.Args {
		if occurs(p, a) {
			return true
		}
	}
	for _, a := range t.Params {
		if occurs(p, a) {
			return true
		}
	}
	return occurs(p, t.Result)
}

// assignable reports whether a value of type value may be stored where
// target is expected. Unbound placeholders on either side are bound to the
// other side the first time they meet a concrete type
func assignable(target, value *Type) bool {
	target, value = resolve(target), resolve(value)

	if target == value || isOpen(target) || isOpen(value) {
		return true
	}

	if target.Kind == PlaceholderKind {
		if occurs(target, value) {
			return false
		}
		target.bound = value
		return true
	}

	if value.Kind == PlaceholderKind {
		if occurs(value, target) {
			return false
		}
		value.bound = target
		return true
	}

	if target.Kind == OptionalKind {
		switch value.Kind {
		case NothingKind:
			return true
		case OptionalKind:
			return assignable(target.Args[0], value.Args[0])
		default:
			return assignable(target.Args[0], value)
		}
	}

	if target.Kind != value.Kind {
		return false
	}

	switch target.Kind {
	case NumberKind, StringKind, BooleanKind, NothingKind:
		return true
	case ListKind, MapKind, SetKind, FutureKind:
		return argsAssignable(target.Args, value.Args)
	case ContractKind:
		return target.Contract == value.Contract && argsAssignable(target.Args, value.Args)
	case EnumKind:
		return target.Enum == value.Enum
	case FuncKind:
		if target.Async != value.Async || len(target.Params) != len(value.Params) {
			return false
		}
		for i := range target.Params {
			if !assignable(value.Params[i], target.Params[i]) {
				return false
			}
		}
		return assignable(target.Result, value.Result)
	default:
		return false
	}
}

func argsAssignable(targets, values []*Type) bool {
	if len(targets) != len(values) {
		return false
	}

	for i := range targets {
		if !assignable(targets[i], values[i]) {
			return false
		}
	}

	return true
}

// equatable reports whether `==` may relate values of the two types
func equatable(a, b *Type) bool {
	return assignable(a, b) || assignable(b, a)
}

// substitute replaces type parameters with arguments throughout t
func substitute(t *Type, params, args []*Type) *Type {
	t = resolve(t)
	if t == nil || len(params) == 0 {
		return t
	}

	switch t.Kind {
	case ParamKind:
		for i, p := range params {
			if p == t && i < len(args) {
				return args[i]
			}
		}
		return t
	case ListKind, MapKind, SetKind, OptionalKind, FutureKind, ContractKind:
		if len(t.Args) == 0 {
			return t
		}
		out := *t
		out.Args = make([]*Type, len(t.Args))
		for i, a := range t.Args {
			out.Args[i] = substitute(a, params, args)
		}
		return &out
	case FuncKind:
		out := *t
		out.Params = make([]*Type, len(t.Params))
		for i, p := range t.Params {
			out.Params[i] = substitute(p, params, args)
		}
		out.Result = substitute(t.Result, params, args)
		return &out
	default:
		return t
	}
}

// fieldType returns the type of a field on a contract instance, with the
// instance's type arguments applied
func fieldType(instance *Type, field *FieldInfo) *Type {
	return substitute(field.Type, instance.Contract.TypeParams, instance.Args)
}
