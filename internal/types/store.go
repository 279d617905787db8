package types

import (
	"github.com/vela-lang/vela/internal/strtab"
)

// Store is the arena allocator for the terms the generator and library
// build in a checking session; substituted copies, instantiations and
// intermediate tuples made during unification are built directly,
// outside the arena. It is single-writer: the spec's concurrency model (§5)
// requires that the store only ever be mutated by the checker goroutine.
// No term, once returned, is ever moved or freed: the store owns terms
// for the lifetime of the session.
type Store struct {
	strings     *strtab.Table
	nextVarID   VarID
	allocated   []Term // bookkeeping for diagnostics/printing; not consulted by unification
}

// NewStore creates an empty arena backed by the given string table. Pass
// nil to let the store create its own private table.
func NewStore(strings *strtab.Table) *Store {
	if strings == nil {
		strings = strtab.New()
	}
	return &Store{strings: strings}
}

// Strings returns the store's string registry, so callers (the generator,
// the library) can intern identifiers with the same table the store's
// Scalars and ConstantValues use.
func (s *Store) Strings() *strtab.Table { return s.strings }

func (s *Store) track(t Term) Term {
	s.allocated = append(s.allocated, t)
	return t
}

func (s *Store) freshVarID() VarID {
	s.nextVarID++
	return s.nextVarID
}

// MakeVariable allocates a fresh Variable with a new monotonic id.
func (s *Store) MakeVariable() *Variable {
	return s.track(&Variable{ID: s.freshVarID()}).(*Variable)
}

// FreshVariable is an alias for MakeVariable matching the spec's
// convenience-constructor naming.
func (s *Store) FreshVariable() *Variable { return s.MakeVariable() }

// MakeParameters allocates a fresh Parameters pack variable.
func (s *Store) MakeParameters() *Parameters {
	return s.track(&Parameters{ID: s.freshVarID()}).(*Parameters)
}

// FreshParameters is an alias for MakeParameters.
func (s *Store) FreshParameters() *Parameters { return s.MakeParameters() }

// MakeScalar allocates a new Scalar identity named `name`. Callers that
// want a shared nominal type (e.g. the Library's "double") must allocate
// it once and reuse the returned pointer everywhere.
func (s *Store) MakeScalar(name string) *Scalar {
	id := s.strings.Intern(name)
	return s.track(&Scalar{Name: id, text: name}).(*Scalar)
}

// MakeConstantValueInt allocates an integer ConstantValue.
func (s *Store) MakeConstantValueInt(v int64) *ConstantValue {
	return s.track(&ConstantValue{Kind: ConstantInt, IntVal: v, text: formatInt(v)}).(*ConstantValue)
}

// MakeConstantValueFloat allocates a float ConstantValue.
func (s *Store) MakeConstantValueFloat(v float64) *ConstantValue {
	return s.track(&ConstantValue{Kind: ConstantFloat, FloatVal: v, text: formatFloat(v)}).(*ConstantValue)
}

// MakeConstantValueName allocates a ConstantValue whose key is an
// identifier (used for record field keys written as `.name`).
func (s *Store) MakeConstantValueName(name string) *ConstantValue {
	id := s.strings.Intern(name)
	return s.track(&ConstantValue{Kind: ConstantIdentifier, Identifier: id, text: name}).(*ConstantValue)
}

// MakeTuple allocates a Tuple over members.
func (s *Store) MakeTuple(members ...Term) *Tuple {
	return s.track(&Tuple{Members: members}).(*Tuple)
}

// MakeDestructuredTuple allocates a DestructuredTuple with an explicit
// usage tag.
func (s *Store) MakeDestructuredTuple(use Usage, members ...Term) *DestructuredTuple {
	return s.track(&DestructuredTuple{Use: use, Members: members}).(*DestructuredTuple)
}

// MakeInputDestructuredTuple is the convenience constructor for an
// Abstraction's Inputs field.
func (s *Store) MakeInputDestructuredTuple(members ...Term) *DestructuredTuple {
	return s.MakeDestructuredTuple(DefinitionInputs, members...)
}

// MakeOutputDestructuredTuple is the convenience constructor for an
// Abstraction's Outputs field.
func (s *Store) MakeOutputDestructuredTuple(members ...Term) *DestructuredTuple {
	return s.MakeDestructuredTuple(DefinitionOutputs, members...)
}

// MakeRvalueDestructuredTuple builds the shape used for argument lists and
// grouped rvalue expressions.
func (s *Store) MakeRvalueDestructuredTuple(members ...Term) *DestructuredTuple {
	return s.MakeDestructuredTuple(Rvalue, members...)
}

// MakeLvalueDestructuredTuple builds the shape used for assignment
// targets (`[a, b] = ...`).
func (s *Store) MakeLvalueDestructuredTuple(members ...Term) *DestructuredTuple {
	return s.MakeDestructuredTuple(Lvalue, members...)
}

// MakeList allocates a variadic List pattern.
func (s *Store) MakeList(pattern ...Term) *List {
	return s.track(&List{Pattern: pattern}).(*List)
}

// MakeUnion allocates a Union of at least two members.
func (s *Store) MakeUnion(members ...Term) *Union {
	if len(members) < 2 {
		panic("types: Union requires at least two members")
	}
	return s.track(&Union{Members: members}).(*Union)
}

// MakeRecord allocates a row-typed Record.
func (s *Store) MakeRecord(fields ...RecordField) *Record {
	return s.track(&Record{Fields: fields}).(*Record)
}

// MakeClass allocates a Class wrapper.
func (s *Store) MakeClass(name string, source Term, supertypes ...Term) *Class {
	return s.track(&Class{Name: name, Source: source, Supertypes: supertypes}).(*Class)
}

// MakeAlias allocates a transparent Alias.
func (s *Store) MakeAlias(source Term) *Alias {
	return s.track(&Alias{Source: source}).(*Alias)
}

// MakeAbstraction allocates an Abstraction. inputs must be a
// DestructuredTuple with DefinitionInputs usage and outputs with
// DefinitionOutputs usage (the invariant is the caller's responsibility;
// the generator's convenience constructors uphold it automatically).
func (s *Store) MakeAbstraction(header Header, inputs, outputs Term) *Abstraction {
	return s.track(&Abstraction{Header: header, Inputs: inputs, Outputs: outputs}).(*Abstraction)
}

// MakeCalleeAbstraction allocates the placeholder Abstraction a call
// site uses before its callee has been resolved: it carries only the
// header, with empty input/output shapes, and is flagged so the unifier
// knows to run search_function on it rather than treat it as a real
// function value.
func (s *Store) MakeCalleeAbstraction(header Header) *Abstraction {
	abs := s.MakeAbstraction(header, s.MakeInputDestructuredTuple(), s.MakeOutputDestructuredTuple())
	abs.placeholder = true
	return abs
}

// MakeApplication allocates a pending Application.
func (s *Store) MakeApplication(abstraction, inputs, outputs Term) *Application {
	return s.track(&Application{Abstraction: abstraction, Inputs: inputs, Outputs: outputs}).(*Application)
}

// MakeSubscript allocates a pending Subscript chain.
func (s *Store) MakeSubscript(principal Term, subs []SubscriptStep, outputs Term) *Subscript {
	return s.track(&Subscript{Principal: principal, Subs: subs, Outputs: outputs}).(*Subscript)
}

// MakeScheme allocates a ∀-quantified Scheme.
func (s *Store) MakeScheme(t Term, parameters []Term, constraints []Equation) *Scheme {
	return s.track(&Scheme{Type: t, Parameters: parameters, Constraints: constraints}).(*Scheme)
}

// MakeAssignment allocates an Assignment obligation.
func (s *Store) MakeAssignment(lhs, rhs Term) *Assignment {
	return s.track(&Assignment{LHS: lhs, RHS: rhs}).(*Assignment)
}
