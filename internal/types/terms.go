// Package types implements the Vela type term language, the constraint
// generator, the unifier, the type relations, and the library/method
// store described by the type inference specification. This file holds
// the term ADT (§3): every term variant is its own pointer type
// implementing Term, each allocated once (by a Store, store.go, or as a
// substituted copy) so that term identity is pointer identity unless a
// relation says otherwise.
package types

import (
	"fmt"

	"github.com/vela-lang/vela/internal/strtab"
	"github.com/vela-lang/vela/internal/token"
)

// VarID is the small monotonic tag that identifies a fresh Variable or
// Parameters term. Distinct from strtab.ID: these are never looked up in
// the string registry, only displayed as "t<n>" / "p<n>".
type VarID int64

// Term is the common interface implemented by every type term variant.
// Equality between two Terms is pointer equality unless Equivalent (or
// the library's subtype relation) says otherwise.
type Term interface {
	fmt.Stringer
	isTerm()
}

// ---- Variable ----

// Variable is a fresh unknown, solved by unification.
type Variable struct {
	ID VarID
}

func (*Variable) isTerm() {}
func (v *Variable) String() string { return fmt.Sprintf("t%d", v.ID) }

// ---- Parameters ----

// Parameters is a parameter-pack variable; it expands to an rvalue
// DestructuredTuple when it meets one during unification.
type Parameters struct {
	ID VarID
}

func (*Parameters) isTerm() {}
func (p *Parameters) String() string { return fmt.Sprintf("p%d", p.ID) }

// ---- Scalar ----

// Scalar is a nominal atomic type (e.g. "double", "char"), identified by
// an interned name. Built-in scalars are allocated once by the Library
// and their pointer is reused everywhere so scalar identity stays stable.
type Scalar struct {
	Name strtab.ID
	text string // cached display text, set at construction
}

func (*Scalar) isTerm() {}
func (s *Scalar) String() string { return s.text }

// ---- ConstantValue ----

type ConstantKind int

const (
	ConstantInt ConstantKind = iota
	ConstantFloat
	ConstantIdentifier
)

// ConstantValue is a literal used as a record field key.
type ConstantValue struct {
	Kind       ConstantKind
	IntVal     int64
	FloatVal   float64
	Identifier strtab.ID
	text       string
}

func (*ConstantValue) isTerm() {}
func (c *ConstantValue) String() string { return c.text }

// ---- Tuple ----

// Tuple is an ordered homogeneous/heterogeneous tuple (`{...}`).
type Tuple struct {
	Members []Term
}

func (*Tuple) isTerm() {}
func (t *Tuple) String() string { return printTuple("{", t.Members, "}") }

// ---- DestructuredTuple ----

// Usage governs how a DestructuredTuple flattens in argument/return
// position.
type Usage int

const (
	Rvalue Usage = iota
	Lvalue
	DefinitionInputs
	DefinitionOutputs
)

func (u Usage) String() string {
	switch u {
	case Rvalue:
		return "rvalue"
	case Lvalue:
		return "lvalue"
	case DefinitionInputs:
		return "def-in"
	case DefinitionOutputs:
		return "def-out"
	default:
		return "usage?"
	}
}

// DestructuredTuple models function argument/return shapes with
// flattening semantics (§3 invariants: definition-inputs/outputs for
// Abstraction.Inputs/Outputs, value-usage collapse, list-tail absorption).
type DestructuredTuple struct {
	Use     Usage
	Members []Term
}

func (*DestructuredTuple) isTerm() {}
func (d *DestructuredTuple) String() string {
	return fmt.Sprintf("DT<%s>%s", d.Use, printTuple("(", d.Members, ")"))
}

// ---- List ----

// List is a variadic pattern: it matches any non-negative multiple of
// |Pattern| members when absorbing the tail of a peer tuple.
type List struct {
	Pattern []Term
}

func (*List) isTerm() {}
func (l *List) String() string { return printTuple("List<", l.Pattern, ">") }

// ---- Union ----

// Union is a sum of alternatives; it always has at least two members at
// construction time (duplicates under equivalence are coalesced lazily).
type Union struct {
	Members []Term
}

func (*Union) isTerm() {}
func (u *Union) String() string { return printTuple("", u.Members, "") }

// ---- Record ----

type RecordField struct {
	Name *ConstantValue
	Type Term
}

// Record is a row-typed struct.
type Record struct {
	Fields []RecordField
}

func (*Record) isTerm() {}
func (r *Record) String() string {
	s := "{"
	for i, f := range r.Fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return s + "}"
}

// ---- Class ----

// Class is a nominal wrapper carrying methods and a position in the
// subtype DAG. Source is typically a Record.
type Class struct {
	Name       string
	Source     Term
	Supertypes []Term
}

func (*Class) isTerm() {}
func (c *Class) String() string { return "class " + c.Name }

// ---- Alias ----

// Alias is a transparent rename.
type Alias struct {
	Source Term
}

func (*Alias) isTerm() {}
func (a *Alias) String() string { return a.Source.String() }

// ---- Abstraction ----

type AbstractionKind int

const (
	UnaryOp AbstractionKind = iota
	BinaryOp
	SubscriptRef
	Function
	Concatenation
	AnonymousFunction
)

func (k AbstractionKind) String() string {
	switch k {
	case UnaryOp:
		return "unary-op"
	case BinaryOp:
		return "binary-op"
	case SubscriptRef:
		return "subscript-ref"
	case Function:
		return "function"
	case Concatenation:
		return "concatenation"
	case AnonymousFunction:
		return "anonymous-function"
	default:
		return "kind?"
	}
}

// SubscriptMethod names how a subscript step was written: a(x), a{x} or
// a.x.
type SubscriptMethod int

const (
	Parens SubscriptMethod = iota
	Brace
	Period
)

func (m SubscriptMethod) String() string {
	switch m {
	case Parens:
		return "()"
	case Brace:
		return "{}"
	case Period:
		return "."
	default:
		return "?"
	}
}

// Header identifies an Abstraction independent of its input/output types:
// kind plus whichever of op/name/direction that kind carries. It is a
// comparable struct so it can be used directly as a map key in the
// Library's function table and in each class's method store.
type Header struct {
	Kind      AbstractionKind
	Op        string          // unary-op / binary-op
	Name      string          // function / anonymous-function (may be "")
	Direction SubscriptMethod // subscript-ref
}

func (h Header) String() string {
	switch h.Kind {
	case UnaryOp, BinaryOp:
		return fmt.Sprintf("%s(%s)", h.Kind, h.Op)
	case SubscriptRef:
		return fmt.Sprintf("%s(%s)", h.Kind, h.Direction)
	default:
		if h.Name == "" {
			return h.Kind.String()
		}
		return fmt.Sprintf("%s(%s)", h.Kind, h.Name)
	}
}

// Abstraction is a function type, not a function value. Its Inputs is
// always a DestructuredTuple with DefinitionInputs usage, its Outputs
// with DefinitionOutputs usage.
type Abstraction struct {
	Header  Header
	Inputs  Term
	Outputs Term

	// Ref, when non-nil, is the resolved local-function/local-variable
	// handle this abstraction is already bound to (search_function step
	// 1). Left nil for abstractions still pending resolution.
	Ref interface{}

	// placeholder marks a call-site stand-in carrying only a header:
	// the unifier must resolve it through search_function before its
	// Inputs/Outputs mean anything. A non-placeholder Abstraction is an
	// actual function type (a declaration, a method, an anonymous
	// function value, a scheme instance).
	placeholder bool

	visited bool // marked once search_function/subscript resolution has run, to avoid infinite re-discovery loops
}

func (*Abstraction) isTerm() {}
func (a *Abstraction) String() string {
	return fmt.Sprintf("%s %s -> %s", a.Header, a.Inputs, a.Outputs)
}

// ---- Application ----

// Application is a pending call whose abstraction is yet to be resolved
// against the library/method store.
type Application struct {
	Abstraction Term
	Inputs      Term
	Outputs     Term
}

func (*Application) isTerm() {}
func (a *Application) String() string {
	return fmt.Sprintf("apply(%s, %s) -> %s", a.Abstraction, a.Inputs, a.Outputs)
}

// ---- Subscript ----

type SubscriptStep struct {
	Method SubscriptMethod
	Args   []Term
}

// Subscript is a pending chain of subscripts a(x){y}.z.
type Subscript struct {
	Principal Term
	Subs      []SubscriptStep
	Outputs   Term

	visited bool
}

func (*Subscript) isTerm() {}
func (s *Subscript) String() string {
	out := s.Principal.String()
	for _, step := range s.Subs {
		switch step.Method {
		case Parens:
			out += printTuple("(", step.Args, ")")
		case Brace:
			out += printTuple("{", step.Args, "}")
		case Period:
			out += printTuple(".", step.Args, "")
		}
	}
	return out + " -> " + s.Outputs.String()
}

// ---- Scheme ----

// Equation is a type equation {lhs, rhs} with the source token that
// caused it to be generated, so errors can be reported at their cause.
type Equation struct {
	LHS, RHS Term
	Source   token.Token
}

// Scheme is a ∀-quantified type with an optional list of constraints that
// must hold at every instantiation site. Parameters contains only
// Variable and Parameters terms.
type Scheme struct {
	Type        Term
	Parameters  []Term
	Constraints []Equation
}

func (*Scheme) isTerm() {}
func (s *Scheme) String() string {
	vars := ""
	for i, p := range s.Parameters {
		if i > 0 {
			vars += ","
		}
		vars += p.String()
	}
	if vars == "" {
		return s.Type.String()
	}
	return fmt.Sprintf("forall %s. %s", vars, s.Type)
}

// ---- Assignment ----

// Assignment is `lhs = rhs` as a type-level obligation (rhs <= lhs).
type Assignment struct {
	LHS, RHS Term
}

func (*Assignment) isTerm() {}
func (a *Assignment) String() string { return fmt.Sprintf("%s = %s", a.LHS, a.RHS) }

// ---- shared printing ----

func printTuple(open string, members []Term, close string) string {
	s := open
	for i, m := range members {
		if i > 0 {
			s += ", "
		}
		s += m.String()
	}
	return s + close
}
