package frontend

import (
	"github.com/Heartless-Veteran/Aegis/source"
)

// SymbolKind classifies what a Symbol names
type SymbolKind int

// Symbol kinds
const (
	SymbolVariable SymbolKind = iota
	SymbolTracked
	SymbolParameter
	SymbolFunction
	SymbolContract
	SymbolField
	SymbolEnum
	SymbolTypeParam
)

var symbolKindNames = [...]string{
	SymbolVariable:  "variable",
	SymbolTracked:   "tracked variable",
	SymbolParameter: "parameter",
	SymbolFunction:  "function",
	SymbolContract:  "contract",
	SymbolField:     "field",
	SymbolEnum:      "enum",
	SymbolTypeParam: "type parameter",
}

func (k SymbolKind) String() string {
	return symbolKindNames[k]
}

// Symbol is a named, typed entity recorded in a scope. Depth is the index of
// the scope that declared it
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Type  *Type
	Span  source.Span
	Depth int
}

// IsType reports whether the symbol names a type rather than a value
func (s *Symbol) IsType() bool {
	return s.Kind == SymbolContract || s.Kind == SymbolEnum || s.Kind == SymbolTypeParam
}

// scope is one lexical binding environment. Its enclosing scope is the slot
// below it in the SymbolTable stack
type scope struct {
	symbols map[string]*Symbol
	order   []*Symbol
}

// SymbolTable is the stack of nested scopes owned by one analysis pass. The
// bottom scope is never popped
type SymbolTable struct {
	scopes []*scope
}

// NewSymbolTable returns a table holding a single empty scope
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{}
	t.Enter()
	return t
}

// Enter pushes a new empty scope
func (t *SymbolTable) Enter() {
	t.scopes = append(t.scopes, &scope{symbols: make(map[string]*Symbol)})
}

// Exit pops the innermost scope, discarding every symbol it introduced
func (t *SymbolTable) Exit() {
	if len(t.scopes) == 1 {
		panic("cannot exit the outermost scope")
	}

	t.scopes[len(t.scopes)-1] = nil
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth is the index of the innermost scope
func (t *SymbolTable) Depth() int {
	return len(t.scopes) - 1
}

// Declare adds sym to the innermost scope. When the name already exists in
// that scope the earlier symbol is returned with ok == false and the table is
// left unchanged. Names in enclosing scopes are shadowed silently
func (t *SymbolTable) Declare(sym *Symbol) (prev *Symbol, ok bool) {
	top := t.scopes[len(t.scopes)-1]

	if prev, exists := top.symbols[sym.Name]; exists {
		return prev, false
	}

	sym.Depth = t.Depth()
	top.symbols[sym.Name] = sym
	top.order = append(top.order, sym)
	return nil, true
}

// Resolve searches the innermost scope and then each enclosing scope for name
func (t *SymbolTable) Resolve(name string) (sym *Symbol, ok bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok = t.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}

	return nil, false
}

// ResolveLocal searches only the innermost scope
func (t *SymbolTable) ResolveLocal(name string) (sym *Symbol, ok bool) {
	sym, ok = t.scopes[len(t.scopes)-1].symbols[name]
	return sym, ok
}

// Locals returns the symbols of the innermost scope in declaration order
func (t *SymbolTable) Locals() []*Symbol {
	return t.scopes[len(t.scopes)-1].order
}
