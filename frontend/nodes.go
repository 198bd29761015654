package frontend

import (
	"github.com/Heartless-Veteran/Aegis/source"
)

// Node is a generic node in the abstract syntax tree (AST)
type Node interface {
	Pos() source.Pos
	End() source.Pos
}

// Expr represents a Node that returns a value when executed. The type is
// filled in by the checker
type Expr interface {
	Node
	Type() *Type
	exprNode()
}

// Stmt represents a Node that does not necessarily return a value when executed
type Stmt interface {
	Node
	stmtNode()
}

// UINode is a node inside a `show` block
type UINode interface {
	Node
	uiNode()
}

func spanOf(n Node) source.Span {
	return source.Span{Start: n.Pos(), End: n.End()}
}

// Program is the root node for an AST
type Program struct {
	Decls []Stmt
	eof   source.Pos
}

// Pos returns the starting source code position of this node
func (p Program) Pos() source.Pos {
	if len(p.Decls) > 0 {
		return p.Decls[0].Pos()
	}

	return source.Pos{Line: 1, Col: 1}
}

// End returns the terminal source code position of this node
func (p Program) End() source.Pos {
	if len(p.Decls) > 0 {
		return p.Decls[len(p.Decls)-1].End()
	}

	return p.eof
}

/**
 * Declarations and statements
 */

// VarDecl represents `let's [track] name [: Type] = init`
type VarDecl struct {
	Keyword    Token
	Tracked    bool
	Name       *Ident
	Annotation *TypeExpr
	Init       Expr
	Symbol     *Symbol
}

func (d VarDecl) Pos() source.Pos { return d.Keyword.Span.Start }
func (d VarDecl) End() source.Pos {
	if d.Init != nil {
		return d.Init.End()
	}
	return d.Name.End()
}
func (d VarDecl) stmtNode() {}

// Param is one function parameter. A parameter without an annotation has
// dynamic type
type Param struct {
	Name       *Ident
	Annotation *TypeExpr
	Symbol     *Symbol
}

func (p Param) Pos() source.Pos { return p.Name.Pos() }
func (p Param) End() source.Pos {
	if p.Annotation != nil {
		return p.Annotation.End()
	}
	return p.Name.End()
}

// FuncDecl represents `[async] let's name(params) [-> Type]: body`
type FuncDecl struct {
	Keyword Token
	Async   bool
	Name    *Ident
	Params  []*Param
	Result  *TypeExpr
	Body    *Block
	Symbol  *Symbol
}

func (d FuncDecl) Pos() source.Pos { return d.Keyword.Span.Start }
func (d FuncDecl) End() source.Pos { return d.Body.End() }
func (d FuncDecl) stmtNode()       {}

// Field is one typed field of a contract
type Field struct {
	Name       *Ident
	Annotation *TypeExpr
}

func (f Field) Pos() source.Pos { return f.Name.Pos() }
func (f Field) End() source.Pos { return f.Annotation.End() }

// ContractDecl represents a user defined record type, optionally generic
type ContractDecl struct {
	Keyword    Token
	Name       *Ident
	TypeParams []*Ident
	Fields     []*Field
	Symbol     *Symbol
	end        source.Pos
}

func (d ContractDecl) Pos() source.Pos { return d.Keyword.Span.Start }
func (d ContractDecl) End() source.Pos { return d.end }
func (d ContractDecl) stmtNode()       {}

// Variant is one member of an enum, optionally carrying payload values
type Variant struct {
	Name    *Ident
	Payload []*TypeExpr
}

func (v Variant) Pos() source.Pos { return v.Name.Pos() }
func (v Variant) End() source.Pos {
	if len(v.Payload) > 0 {
		return v.Payload[len(v.Payload)-1].End()
	}
	return v.Name.End()
}

// EnumDecl represents `enum Name: A, B(number)`
type EnumDecl struct {
	Keyword  Token
	Name     *Ident
	Variants []*Variant
	Symbol   *Symbol
	end      source.Pos
}

func (d EnumDecl) Pos() source.Pos { return d.Keyword.Span.Start }
func (d EnumDecl) End() source.Pos { return d.end }
func (d EnumDecl) stmtNode()       {}

// AppDecl is an application: state and functions in Body, the UI tree in
// Show and an optional change handler
type AppDecl struct {
	Keyword Token
	Name    *Ident
	Body    []Stmt
	Show    *ShowBlock
	Change  *Block
	end     source.Pos
}

func (d AppDecl) Pos() source.Pos { return d.Keyword.Span.Start }
func (d AppDecl) End() source.Pos { return d.end }
func (d AppDecl) stmtNode()       {}

// ShowBlock holds the root UI nodes of an app
type ShowBlock struct {
	Keyword Token
	Nodes   []UINode
}

func (s ShowBlock) Pos() source.Pos { return s.Keyword.Span.Start }
func (s ShowBlock) End() source.Pos {
	if len(s.Nodes) > 0 {
		return s.Nodes[len(s.Nodes)-1].End()
	}
	return s.Keyword.Span.End
}

// ReturnStmt represents `return [value]`
type ReturnStmt struct {
	Keyword Token
	Value   Expr
}

func (r ReturnStmt) Pos() source.Pos { return r.Keyword.Span.Start }
func (r ReturnStmt) End() source.Pos {
	if r.Value != nil {
		return r.Value.End()
	}
	return r.Keyword.Span.End
}
func (r ReturnStmt) stmtNode() {}

// ForStmt represents `for name in iterable: body`
type ForStmt struct {
	Keyword  Token
	Var      *Ident
	Iterable Expr
	Body     *Block
}

func (f ForStmt) Pos() source.Pos { return f.Keyword.Span.Start }
func (f ForStmt) End() source.Pos { return f.Body.End() }
func (f ForStmt) stmtNode()       {}

// ExprStmt wraps an expression evaluated for its effect
type ExprStmt struct {
	X Expr
}

func (s ExprStmt) Pos() source.Pos { return s.X.Pos() }
func (s ExprStmt) End() source.Pos { return s.X.End() }
func (s ExprStmt) stmtNode()       {}

// Block is an ordered list of statements introduced by a colon
type Block struct {
	Colon Token
	Stmts []Stmt
}

func (b Block) Pos() source.Pos { return b.Colon.Span.Start }
func (b Block) End() source.Pos {
	if len(b.Stmts) > 0 {
		return b.Stmts[len(b.Stmts)-1].End()
	}
	return b.Colon.Span.End
}

// BadStmt marks a statement that failed to parse
type BadStmt struct {
	Span source.Span
}

func (b BadStmt) Pos() source.Pos { return b.Span.Start }
func (b BadStmt) End() source.Pos { return b.Span.End }
func (b BadStmt) stmtNode()       {}

/**
 * Expressions
 */

// Ident is a name. After checking, Symbol points at the resolved declaration
// (nil for member names and unresolved identifiers)
type Ident struct {
	Name   string
	Span   source.Span
	Symbol *Symbol
	t      *Type
}

func (i Ident) Type() *Type     { return i.t }
func (i Ident) Pos() source.Pos { return i.Span.Start }
func (i Ident) End() source.Pos { return i.Span.End }
func (i Ident) exprNode()       {}

// NumberLit is a numeric literal
type NumberLit struct {
	Token Token
	Value float64
	t     *Type
}

func (n NumberLit) Type() *Type     { return n.t }
func (n NumberLit) Pos() source.Pos { return n.Token.Span.Start }
func (n NumberLit) End() source.Pos { return n.Token.Span.End }
func (n NumberLit) exprNode()       {}

// StringLit is a string literal. Interpolations holds the `{name}` and
// `{a.b}` references found in the literal
type StringLit struct {
	Token          Token
	Value          string
	Interpolations []Expr
	t              *Type
}

func (s StringLit) Type() *Type     { return s.t }
func (s StringLit) Pos() source.Pos { return s.Token.Span.Start }
func (s StringLit) End() source.Pos { return s.Token.Span.End }
func (s StringLit) exprNode()       {}

// BoolLit is `true` or `false`
type BoolLit struct {
	Token Token
	Value bool
	t     *Type
}

func (b BoolLit) Type() *Type     { return b.t }
func (b BoolLit) Pos() source.Pos { return b.Token.Span.Start }
func (b BoolLit) End() source.Pos { return b.Token.Span.End }
func (b BoolLit) exprNode()       {}

// NothingLit is the `nothing` value
type NothingLit struct {
	Token Token
	t     *Type
}

func (n NothingLit) Type() *Type     { return n.t }
func (n NothingLit) Pos() source.Pos { return n.Token.Span.Start }
func (n NothingLit) End() source.Pos { return n.Token.Span.End }
func (n NothingLit) exprNode()       {}

// ListLit is `[a, b, c]`
type ListLit struct {
	LBracket Token
	Elements []Expr
	RBracket Token
	t        *Type
}

func (l ListLit) Type() *Type     { return l.t }
func (l ListLit) Pos() source.Pos { return l.LBracket.Span.Start }
func (l ListLit) End() source.Pos { return l.RBracket.Span.End }
func (l ListLit) exprNode()       {}

// MapEntry is one `key: value` pair. A bare identifier key is stored as an
// *Ident and names a field rather than referencing a variable
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is `{k: v, ...}`. With an expected contract type it is a record
// initializer
type MapLit struct {
	LBrace  Token
	Entries []*MapEntry
	RBrace  Token
	t       *Type
}

func (m MapLit) Type() *Type     { return m.t }
func (m MapLit) Pos() source.Pos { return m.LBrace.Span.Start }
func (m MapLit) End() source.Pos { return m.RBrace.Span.End }
func (m MapLit) exprNode()       {}

// BinaryExpr is `left op right`
type BinaryExpr struct {
	Operator Token
	Left     Expr
	Right    Expr
	t        *Type
}

func (b BinaryExpr) Type() *Type     { return b.t }
func (b BinaryExpr) Pos() source.Pos { return b.Left.Pos() }
func (b BinaryExpr) End() source.Pos { return b.Right.End() }
func (b BinaryExpr) exprNode()       {}

// UnaryExpr is `op operand`
type UnaryExpr struct {
	Operator Token
	Operand  Expr
	t        *Type
}

func (u UnaryExpr) Type() *Type     { return u.t }
func (u UnaryExpr) Pos() source.Pos { return u.Operator.Span.Start }
func (u UnaryExpr) End() source.Pos { return u.Operand.End() }
func (u UnaryExpr) exprNode()       {}

// AssignExpr is `target = value`. Reactive is set by the checker when the
// target's root binding is tracked, marking a change-triggering write
type AssignExpr struct {
	Target   Expr
	Value    Expr
	Reactive bool
	t        *Type
}

func (a AssignExpr) Type() *Type     { return a.t }
func (a AssignExpr) Pos() source.Pos { return a.Target.Pos() }
func (a AssignExpr) End() source.Pos { return a.Value.End() }
func (a AssignExpr) exprNode()       {}

// CallExpr is `callee(args)`
type CallExpr struct {
	Callee Expr
	LParen Token
	Args   []Expr
	RParen Token
	t      *Type
}

func (c CallExpr) Type() *Type     { return c.t }
func (c CallExpr) Pos() source.Pos { return c.Callee.Pos() }
func (c CallExpr) End() source.Pos { return c.RParen.Span.End }
func (c CallExpr) exprNode()       {}

// MemberExpr is `object.property`
type MemberExpr struct {
	Object   Expr
	Property *Ident
	t        *Type
}

func (m MemberExpr) Type() *Type     { return m.t }
func (m MemberExpr) Pos() source.Pos { return m.Object.Pos() }
func (m MemberExpr) End() source.Pos { return m.Property.End() }
func (m MemberExpr) exprNode()       {}

// IndexExpr is `object[index]`
type IndexExpr struct {
	Object   Expr
	Index    Expr
	RBracket Token
	t        *Type
}

func (i IndexExpr) Type() *Type     { return i.t }
func (i IndexExpr) Pos() source.Pos { return i.Object.Pos() }
func (i IndexExpr) End() source.Pos { return i.RBracket.Span.End }
func (i IndexExpr) exprNode()       {}

// AwaitExpr is `await operand`
type AwaitExpr struct {
	Keyword Token
	Operand Expr
	t       *Type
}

func (a AwaitExpr) Type() *Type     { return a.t }
func (a AwaitExpr) Pos() source.Pos { return a.Keyword.Span.Start }
func (a AwaitExpr) End() source.Pos { return a.Operand.End() }
func (a AwaitExpr) exprNode()       {}

// IfExpr is a conditional that yields the value of the chosen branch. An
// `else if` chain is an Else block holding a single nested IfExpr
type IfExpr struct {
	Keyword Token
	Cond    Expr
	Then    *Block
	Else    *Block
	t       *Type
}

func (i IfExpr) Type() *Type     { return i.t }
func (i IfExpr) Pos() source.Pos { return i.Keyword.Span.Start }
func (i IfExpr) End() source.Pos {
	if i.Else != nil {
		return i.Else.End()
	}
	return i.Then.End()
}
func (i IfExpr) exprNode() {}

// WhenArm is `is pattern => value` or `is pattern: block`. Bindings holds the
// names bound by an enum payload pattern such as `is Circle(radius)`
type WhenArm struct {
	Keyword  Token
	Pattern  Expr
	Bindings []*Ident
	Body     *Block
}

func (a WhenArm) Pos() source.Pos { return a.Keyword.Span.Start }
func (a WhenArm) End() source.Pos { return a.Body.End() }

// WhenExpr matches a subject against arms in order
type WhenExpr struct {
	Keyword Token
	Subject Expr
	Arms    []*WhenArm
	Default *Block
	t       *Type
}

func (w WhenExpr) Type() *Type     { return w.t }
func (w WhenExpr) Pos() source.Pos { return w.Keyword.Span.Start }
func (w WhenExpr) End() source.Pos {
	if w.Default != nil {
		return w.Default.End()
	}
	if len(w.Arms) > 0 {
		return w.Arms[len(w.Arms)-1].End()
	}
	return w.Subject.End()
}
func (w WhenExpr) exprNode() {}

// ForeignCall is `ask_js "code"`. The code is handed to the interop bridge
// untouched and is never validated
type ForeignCall struct {
	Keyword Token
	Code    *StringLit
	t       *Type
}

func (f ForeignCall) Type() *Type     { return f.t }
func (f ForeignCall) Pos() source.Pos { return f.Keyword.Span.Start }
func (f ForeignCall) End() source.Pos { return f.Code.End() }
func (f ForeignCall) exprNode()       {}

// BadExpr marks an expression that failed to parse
type BadExpr struct {
	Span source.Span
	t    *Type
}

func (b BadExpr) Type() *Type     { return b.t }
func (b BadExpr) Pos() source.Pos { return b.Span.Start }
func (b BadExpr) End() source.Pos { return b.Span.End }
func (b BadExpr) exprNode()       {}

// TypeExpr is a type written in source: `Name` or `Name<Args>`
type TypeExpr struct {
	Name     *Ident
	Args     []*TypeExpr
	Resolved *Type
	end      source.Pos
}

func (t TypeExpr) Pos() source.Pos { return t.Name.Pos() }
func (t TypeExpr) End() source.Pos { return t.end }

/**
 * UI nodes
 */

// UIElement is one element of a UI tree such as `button "Save" when_clicked:`
type UIElement struct {
	Name     *Ident
	Args     []Expr
	Style    *MapLit
	Props    []*UIProperty
	Handlers []*Handler
	Children []UINode
	end      source.Pos
}

func (e UIElement) Pos() source.Pos { return e.Name.Pos() }
func (e UIElement) End() source.Pos { return e.end }
func (e UIElement) uiNode()         {}

// UIProperty is a named property clause `name: value`
type UIProperty struct {
	Name  *Ident
	Value Expr
}

// Handler is an event clause such as `when_clicked: block`
type Handler struct {
	Name *Ident
	Body *Block
}

func (h Handler) Pos() source.Pos { return h.Name.Pos() }
func (h Handler) End() source.Pos { return h.Body.End() }

// UIFor repeats its children for every element of an iterable
type UIFor struct {
	Keyword  Token
	Var      *Ident
	Iterable Expr
	Children []UINode
	end      source.Pos
}

func (f UIFor) Pos() source.Pos { return f.Keyword.Span.Start }
func (f UIFor) End() source.Pos { return f.end }
func (f UIFor) uiNode()         {}

// BadUINode marks a line of a UI tree that failed to parse
type BadUINode struct {
	Span source.Span
}

func (b BadUINode) Pos() source.Pos { return b.Span.Start }
func (b BadUINode) End() source.Pos { return b.Span.End }
func (b BadUINode) uiNode()         {}
