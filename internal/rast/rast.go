// Package rast defines the resolved AST: the input contract the
// constraint generator consumes. Resolution (name binding, private-vs-
// public visibility, scope construction) has already happened by the
// time a tree reaches this package — every reference to a variable,
// function, or class carries the scope-unique Handle that same
// declaration is identified by throughout internal/types. Grounded on
// the teacher's internal/ast Node/Expr/Stmt interface pattern, stripped
// of every AILANG-only construct (pattern matching, effect rows, module
// imports) this project's checker never sees.
package rast

import "github.com/vela-lang/vela/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Token
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	isExpr()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	isStmt()
}

// Handle is the opaque, comparable identity a resolver hands out per
// declaration (variable, function parameter, local function, or class).
// It is reused, unmodified, as a types.Handle map key.
type Handle interface{}

// Block is an ordered sequence of statements sharing one lexical scope.
type Block struct {
	At    token.Token
	Stmts []Stmt
}

func (b *Block) Pos() token.Token { return b.At }

// ---- expressions ----

type IntLiteral struct {
	At    token.Token
	Value int64
}

func (*IntLiteral) isExpr()          {}
func (n *IntLiteral) Pos() token.Token { return n.At }

type FloatLiteral struct {
	At    token.Token
	Value float64
}

func (*FloatLiteral) isExpr()          {}
func (n *FloatLiteral) Pos() token.Token { return n.At }

// CharLiteral is a single-quoted character vector ('hi'); its type is
// the char scalar regardless of length.
type CharLiteral struct {
	At    token.Token
	Value string
}

func (*CharLiteral) isExpr()          {}
func (n *CharLiteral) Pos() token.Token { return n.At }

// StringLiteral is a double-quoted string ("hi").
type StringLiteral struct {
	At    token.Token
	Value string
}

func (*StringLiteral) isExpr()          {}
func (n *StringLiteral) Pos() token.Token { return n.At }

// FieldConstant is a literal field reference `.name` used as a value
// (e.g. as a dynamic-field key); its type is a constant, not a char.
type FieldConstant struct {
	At   token.Token
	Name string
}

func (*FieldConstant) isExpr()          {}
func (n *FieldConstant) Pos() token.Token { return n.At }

// VariableRef references an already-resolved variable declaration
// (local, parameter, or free function referenced as a value).
type VariableRef struct {
	At     token.Token
	Name   string
	Handle Handle
}

func (*VariableRef) isExpr()          {}
func (n *VariableRef) Pos() token.Token { return n.At }

// UnaryExpr is `-x`, `!x`.
type UnaryExpr struct {
	At      token.Token
	Op      string
	Operand Expr
}

func (*UnaryExpr) isExpr()          {}
func (n *UnaryExpr) Pos() token.Token { return n.At }

// BinaryExpr is `x + y`, `x < y`, etc.
type BinaryExpr struct {
	At          token.Token
	Op          string
	Left, Right Expr
}

func (*BinaryExpr) isExpr()          {}
func (n *BinaryExpr) Pos() token.Token { return n.At }

// TupleExpr is a brace-delimited grouped expression `{a, b, c}`.
type TupleExpr struct {
	At       token.Token
	Elements []Expr
}

func (*TupleExpr) isExpr()          {}
func (n *TupleExpr) Pos() token.Token { return n.At }

// GroupExpr is a parens-delimited grouped expression `(a, b)` in rvalue
// position.
type GroupExpr struct {
	At       token.Token
	Elements []Expr
}

func (*GroupExpr) isExpr()          {}
func (n *GroupExpr) Pos() token.Token { return n.At }

// ConcatExpr is a bracket-delimited concatenation `[a, b, c]` in rvalue
// position.
type ConcatExpr struct {
	At       token.Token
	Elements []Expr
}

func (*ConcatExpr) isExpr()          {}
func (n *ConcatExpr) Pos() token.Token { return n.At }

// RecordFieldExpr is one `.name = value` pair inside struct(...).
type RecordFieldExpr struct {
	Name  string
	Value Expr
}

// RecordExpr is `struct(.a = x, .b = y)`.
type RecordExpr struct {
	At     token.Token
	Fields []RecordFieldExpr
}

func (*RecordExpr) isExpr()          {}
func (n *RecordExpr) Pos() token.Token { return n.At }

// SubscriptMethod mirrors types.SubscriptMethod without importing
// internal/types, keeping rast free of a dependency on the checker.
type SubscriptMethod int

const (
	Parens SubscriptMethod = iota
	Brace
	Period
)

// SubscriptStep is one step of a chained subscript expression.
type SubscriptStep struct {
	At     token.Token
	Method SubscriptMethod
	Args   []Expr
}

// SubscriptExpr is a principal expression followed by one or more
// subscript steps: `a(x){y}.z`. A bare call `f(x)` is represented as a
// SubscriptExpr with a single Parens step.
type SubscriptExpr struct {
	At        token.Token
	Principal Expr
	Steps     []SubscriptStep
}

func (*SubscriptExpr) isExpr()          {}
func (n *SubscriptExpr) Pos() token.Token { return n.At }

// AnonymousFunction is `@(params) body`.
type AnonymousFunction struct {
	At     token.Token
	Params []Handle
	Body   Expr
}

func (*AnonymousFunction) isExpr()          {}
func (n *AnonymousFunction) Pos() token.Token { return n.At }

// ---- lvalue patterns ----

// LvalueTarget is implemented by the left side of an assignment: a
// single variable, a destructured list `[a, b, rest...]`, or a
// subscript target `a(i) = v`.
type LvalueTarget interface {
	Node
	isLvalue()
}

type VariableTarget struct {
	At     token.Token
	Name   string
	Handle Handle
}

func (*VariableTarget) isLvalue()        {}
func (n *VariableTarget) Pos() token.Token { return n.At }

// ListTarget is `[a, b, rest...]`, where a trailing VariadicTarget
// absorbs the remainder (§3's list-tail absorption on the lvalue side).
type ListTarget struct {
	At      token.Token
	Members []LvalueTarget
}

func (*ListTarget) isLvalue()        {}
func (n *ListTarget) Pos() token.Token { return n.At }

// VariadicTarget is the `rest...` tail of a ListTarget.
type VariadicTarget struct {
	At     token.Token
	Handle Handle
}

func (*VariadicTarget) isLvalue()        {}
func (n *VariadicTarget) Pos() token.Token { return n.At }

// SubscriptTarget is `a(i) = v` / `a.b = v` used as an assignment's
// left side.
type SubscriptTarget struct {
	At        token.Token
	Principal Expr
	Steps     []SubscriptStep
}

func (*SubscriptTarget) isLvalue()        {}
func (n *SubscriptTarget) Pos() token.Token { return n.At }

// ---- statements ----

// AssignStmt is `target = value`.
type AssignStmt struct {
	At     token.Token
	Target LvalueTarget
	Value  Expr
}

func (*AssignStmt) isStmt()          {}
func (n *AssignStmt) Pos() token.Token { return n.At }

// ExprStmt is a bare expression evaluated for its type only.
type ExprStmt struct {
	At    token.Token
	Value Expr
}

func (*ExprStmt) isStmt()          {}
func (n *ExprStmt) Pos() token.Token { return n.At }

// IfStmt is `if cond ... else ... end`; Else may be nil.
type IfStmt struct {
	At   token.Token
	Cond Expr
	Then *Block
	Else *Block
}

func (*IfStmt) isStmt()          {}
func (n *IfStmt) Pos() token.Token { return n.At }

// WhileStmt is `while cond ... end`.
type WhileStmt struct {
	At   token.Token
	Cond Expr
	Body *Block
}

func (*WhileStmt) isStmt()          {}
func (n *WhileStmt) Pos() token.Token { return n.At }

// ForStmt is `for v = iter ... end`; Var is the loop variable's handle.
type ForStmt struct {
	At      token.Token
	Var     Handle
	VarName string
	Iter    Expr
	Body    *Block
}

func (*ForStmt) isStmt()          {}
func (n *ForStmt) Pos() token.Token { return n.At }

// SwitchCase is one `case match ...` arm.
type SwitchCase struct {
	Match Expr
	Body  *Block
}

// SwitchStmt is `switch subject ... end`; Default may be nil.
type SwitchStmt struct {
	At      token.Token
	Subject Expr
	Cases   []SwitchCase
	Default *Block
}

func (*SwitchStmt) isStmt()          {}
func (n *SwitchStmt) Pos() token.Token { return n.At }

// FunctionDecl declares a named local function `name(params) = body`.
// Variadic marks the last parameter as a varargin-style pack.
type FunctionDecl struct {
	At       token.Token
	Name     string
	Handle   Handle
	Params   []Handle
	Variadic bool
	Body     Expr
}

func (*FunctionDecl) isStmt()          {}
func (n *FunctionDecl) Pos() token.Token { return n.At }

// ClassFieldDecl is one field in a classdef's record shape.
type ClassFieldDecl struct {
	Name string
}

// ClassMethodDecl is one method or operator overload attached to a
// classdef. Direction is only meaningful for "subscript-ref" methods.
type ClassMethodDecl struct {
	At        token.Token
	Kind      string // "unary-op" | "binary-op" | "subscript-ref" | "function"
	Op        string
	Name      string
	Direction SubscriptMethod
	Handle    Handle
	Params    []Handle
	Body      Expr
}

// ClassDecl declares a nominal record-backed class with its methods.
// Supertypes name earlier class declarations by handle.
type ClassDecl struct {
	At         token.Token
	Name       string
	Handle     Handle
	Supertypes []Handle
	Fields     []ClassFieldDecl
	Methods    []ClassMethodDecl
}

func (*ClassDecl) isStmt()          {}
func (n *ClassDecl) Pos() token.Token { return n.At }
