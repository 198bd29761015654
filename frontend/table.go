package frontend

// typeTable holds the built-in types of one analysis pass together with the
// operator methods defined on them. User types live in the symbol table so
// they follow the normal scoping rules
type typeTable struct {
	Table   map[string]*Type
	generic map[string]int
	builtin builtinList
}

type builtinList struct {
	Error   *Type
	Dynamic *Type
	Number  *Type
	String  *Type
	Boolean *Type
	Nothing *Type
}

func (table *typeTable) getNamedType(name string) (exists bool, t *Type) {
	t, exists = table.Table[name]
	return exists, t
}

func (table *typeTable) addNamedType(t *Type) {
	table.Table[t.Name] = t
}

// genericArity returns how many type arguments a built-in generic takes
func (table *typeTable) genericArity(name string) (arity int, ok bool) {
	arity, ok = table.generic[name]
	return arity, ok
}

func (table *typeTable) instantiate(name string, args ...*Type) *Type {
	kinds := map[string]TypeKind{
		"List":     ListKind,
		"Map":      MapKind,
		"Set":      SetKind,
		"Optional": OptionalKind,
		"Future":   FutureKind,
	}

	return &Type{Kind: kinds[name], Name: name, Args: args}
}

func (table *typeTable) list(elem *Type) *Type   { return table.instantiate("List", elem) }
func (table *typeTable) future(elem *Type) *Type { return table.instantiate("Future", elem) }

func (table *typeTable) placeholder() *Type {
	return &Type{Kind: PlaceholderKind, Name: "unknown"}
}

func (table *typeTable) fn(result *Type, params ...*Type) *Type {
	return &Type{Kind: FuncKind, Name: "function", Params: params, Result: result}
}

func newTypeTable() *typeTable {
	table := &typeTable{
		Table: make(map[string]*Type),
		generic: map[string]int{
			"List":     1,
			"Set":      1,
			"Optional": 1,
			"Future":   1,
			"Map":      2,
		},
	}

	e := &Type{Kind: ErrorKind, Name: "<error>"}
	a := &Type{Kind: DynamicKind, Name: "dynamic"}
	n := &Type{Kind: NumberKind, Name: "number"}
	s := &Type{Kind: StringKind, Name: "string"}
	b := &Type{Kind: BooleanKind, Name: "boolean"}
	v := &Type{Kind: NothingKind, Name: "nothing"}

	// Number arithmetic and comparison methods
	for _, op := range []string{"+", "-", "*", "/", "%"} {
		n.addMethod(&Method{Operator: op, Root: n, Operand: n, Result: n})
	}
	n.addMethod(&Method{Operator: "+", Root: n, Operand: s, Result: s})
	n.addMethod(&Method{Operator: "-", Root: n, Operand: nil, Result: n}) // unary negation
	for _, op := range []string{"<", "<=", ">", ">="} {
		n.addMethod(&Method{Operator: op, Root: n, Operand: n, Result: b})
	}

	// String methods
	s.addMethod(&Method{Operator: "+", Root: s, Operand: s, Result: s})
	s.addMethod(&Method{Operator: "+", Root: s, Operand: n, Result: s})
	s.addMethod(&Method{Operator: "+", Root: s, Operand: b, Result: s})
	for _, op := range []string{"<", "<=", ">", ">="} {
		s.addMethod(&Method{Operator: op, Root: s, Operand: s, Result: b})
	}

	// Boolean logical methods
	for _, op := range []string{"and", "&&", "or", "||"} {
		b.addMethod(&Method{Operator: op, Root: b, Operand: b, Result: b})
	}
	b.addMethod(&Method{Operator: "!", Root: b, Operand: nil, Result: b})
	b.addMethod(&Method{Operator: "not", Root: b, Operand: nil, Result: b})

	table.builtin.Error = e
	table.builtin.Dynamic = a
	table.addNamedType(a)
	table.builtin.Number = n
	table.addNamedType(n)
	table.builtin.String = s
	table.addNamedType(s)
	table.builtin.Boolean = b
	table.addNamedType(b)
	table.builtin.Nothing = v
	table.addNamedType(v)

	return table
}

// memberType returns the type of a built-in member of a list, set, map or
// string value. Members are methods, so `items.length()` is a call
func (table *typeTable) memberType(obj *Type, name string) (*Type, bool) {
	obj = resolve(obj)
	b := table.builtin

	switch obj.Kind {
	case ListKind, SetKind:
		elem := obj.Args[0]

		switch name {
		case "length":
			return table.fn(b.Number), true
		case "is_empty":
			return table.fn(b.Boolean), true
		case "add", "remove":
			return table.fn(b.Nothing, elem), true
		case "contains":
			return table.fn(b.Boolean, elem), true
		case "clear":
			return table.fn(b.Nothing), true
		}
	case MapKind:
		key, value := obj.Args[0], obj.Args[1]

		switch name {
		case "length":
			return table.fn(b.Number), true
		case "get":
			return table.fn(value, key), true
		case "set":
			return table.fn(b.Nothing, key, value), true
		case "has":
			return table.fn(b.Boolean, key), true
		case "remove":
			return table.fn(b.Nothing, key), true
		case "keys":
			return table.fn(table.list(key)), true
		case "values":
			return table.fn(table.list(value)), true
		}
	case StringKind:
		switch name {
		case "length":
			return table.fn(b.Number), true
		case "upper", "lower", "trim":
			return table.fn(b.String), true
		case "contains":
			return table.fn(b.Boolean, b.String), true
		case "split":
			return table.fn(table.list(b.String), b.String), true
		}
	}

	return nil, false
}
