package types

import (
	"github.com/vela-lang/vela/internal/searchpath"
	"github.com/vela-lang/vela/internal/strtab"
)

// Handle is an opaque, comparable reference to a resolved AST node (a
// local variable, local function, or local class declaration). The
// resolver package supplies the concrete pointer type; the type checker
// never inspects it beyond using it as a map key.
type Handle interface{}

// Library is the checking session's fixed environment: the built-in
// scalar lattice and free functions, plus everything the current file
// has declared locally, plus the class method tables and the search
// path used to discover functions the file never declared or imported.
// Grounded on the teacher's combination of Env (internal/types/env.go)
// and InstanceEnv (internal/types/instances.go), merged into a single
// collaborator per the subscript/method-resolution contract.
type Library struct {
	store *Store

	// FunctionTypes holds the built-in, always-visible free functions
	// (sum/min/feval/deal/true/false, generic subscripting schemes),
	// plus the functions declared locally, loaded from a manifest or
	// discovered on the search path. Operators on scalars are scalar
	// methods and live in Methods.
	FunctionTypes map[Header]Term

	// LocalFunctionTypes/LocalClassTypes/LocalVariableTypes record what
	// the current compilation unit declares, keyed by the resolver's
	// opaque per-declaration Handle.
	LocalFunctionTypes map[Handle]Term
	LocalClassTypes    map[Handle]*Class
	LocalVariableTypes map[Handle]Term

	// ClassWrappers maps a Class's Source record (or any other wrapped
	// term) back to the *Class that wraps it, so field/method lookup on
	// a bare Record can still find class methods once the record has
	// been classified.
	ClassWrappers map[Term]*Class

	// TypesWithKnownSubscripts lists every type (by Equivalent, not
	// pointer identity) that the subscript handler is allowed to resolve
	// without delegating to a method lookup: double, char, string and any
	// Scalar registered via RegisterSubscriptableScalar. Tuple, List and
	// Record are accepted by IsKnownSubscriptType without being listed.
	TypesWithKnownSubscripts []Term

	Methods *MethodStore

	// subtypeParent gives the immediate supertype of a built-in scalar,
	// by interned name, forming the subtype lattice's parent pointers
	// (sub-sub-double <: sub-double <: double).
	subtypeParent map[strtab.ID]strtab.ID

	SearchPath searchpath.SearchPath

	// Well-known scalars, allocated once so every reference shares
	// pointer identity.
	Double       *Scalar
	SubDouble    *Scalar
	SubSubDouble *Scalar
	Char         *Scalar
	String       *Scalar
	Logical      *Scalar
}

// NewLibrary builds a Library over store, pre-populated with the
// built-in scalar lattice, the default numeric/logical operators, the
// generic subscripting schemes, and the handful of always-visible free
// functions (sum, min, feval, deal, true, false). sp is stored as
// SearchPath and may be nil; the library itself never consults it
// (external-function discovery goes through the driver's search path).
func NewLibrary(store *Store, sp searchpath.SearchPath) *Library {
	l := &Library{
		store:              store,
		FunctionTypes:      make(map[Header]Term),
		LocalFunctionTypes: make(map[Handle]Term),
		LocalClassTypes:    make(map[Handle]*Class),
		LocalVariableTypes: make(map[Handle]Term),
		ClassWrappers:      make(map[Term]*Class),
		Methods:            NewMethodStore(),
		subtypeParent:      make(map[strtab.ID]strtab.ID),
		SearchPath:         sp,
	}

	l.Double = store.MakeScalar("double")
	l.SubDouble = store.MakeScalar("sub-double")
	l.SubSubDouble = store.MakeScalar("sub-sub-double")
	l.Char = store.MakeScalar("char")
	l.String = store.MakeScalar("string")
	l.Logical = store.MakeScalar("logical")

	l.subtypeParent[l.SubDouble.Name] = l.Double.Name
	l.subtypeParent[l.SubSubDouble.Name] = l.SubDouble.Name

	l.TypesWithKnownSubscripts = append(l.TypesWithKnownSubscripts, l.Double, l.Char, l.String)

	l.registerDefaultOperators()
	l.registerSubscriptSchemes()
	l.registerFreeFunctions()

	return l
}

// subtypeRelatedScalars reports whether a <: b under the built-in
// lattice: a equals b, or b is an ancestor of a via subtypeParent.
func (l *Library) subtypeRelatedScalars(a, b *Scalar) bool {
	if a.Name == b.Name {
		return true
	}
	cur, ok := l.subtypeParent[a.Name]
	for ok {
		if cur == b.Name {
			return true
		}
		cur, ok = l.subtypeParent[cur]
	}
	return false
}

// SubtypeRelation returns a Relation bound to this library's lattice,
// ready to pass to Related/the Simplifier.
func (l *Library) SubtypeRelation() SubtypeRelation {
	return SubtypeRelation{Library: l}
}

// IsKnownSubscriptType reports whether t (compared by Equivalent, not
// pointer identity) is one the subscript handler may index directly
// without a method lookup.
func (l *Library) IsKnownSubscriptType(t Term) bool {
	switch t.(type) {
	case *Tuple, *List, *Record:
		return true
	}
	for _, k := range l.TypesWithKnownSubscripts {
		if Equivalent(k, t) {
			return true
		}
	}
	return false
}

// RegisterSubscriptableScalar extends the known-subscript set, used when
// a manifest (manifest.go) declares a scalar that supports a(i) directly
// rather than through an operator method.
func (l *Library) RegisterSubscriptableScalar(s *Scalar) {
	l.TypesWithKnownSubscripts = append(l.TypesWithKnownSubscripts, s)
}

// ClassOf returns the Class wrapping source, if source has been
// classified (via MakeClass + RegisterClassWrapper), and ok=false
// otherwise. Substitution application copies terms, so a pointer miss
// falls back to structural equivalence against the registered sources.
func (l *Library) ClassOf(source Term) (*Class, bool) {
	if c, ok := l.ClassWrappers[source]; ok {
		return c, true
	}
	for src, c := range l.ClassWrappers {
		if Equivalent(src, source) {
			return c, true
		}
	}
	return nil, false
}

// ClassNameOf names the method table a value of type t dispatches to:
// the scalar/class name, "double" for numeric literals, or the wrapping
// class of a classified record.
func (l *Library) ClassNameOf(t Term) (string, bool) {
	if name, ok := operandClassName(t); ok {
		return name, true
	}
	if c, ok := l.ClassOf(t); ok {
		return c.Name, true
	}
	return "", false
}

// RegisterClassWrapper records that class wraps source, so that field
// and method lookups against source can find class's method table.
func (l *Library) RegisterClassWrapper(source Term, class *Class) {
	l.ClassWrappers[source] = class
}

// SearchFunction resolves header against, in order: the current file's
// local declarations (step 1: the call already carries a resolved
// handle), then each concrete argument's class methods (step 2:
// single-dispatch on the first argument whose class carries a matching
// method), then the built-in free functions. It does not consult the
// search path — that is the driver's job (internal/driver), invoked
// only once all three have missed.
func (l *Library) SearchFunction(header Header, handle Handle, args []Term) (Term, bool) {
	if handle != nil {
		if t, ok := l.LocalFunctionTypes[handle]; ok {
			return t, ok
		}
	}
	for _, a := range args {
		name, ok := l.ClassNameOf(a)
		if !ok {
			continue
		}
		if m, found := l.SearchMethodOnLattice(name, header, nil); found {
			return m, true
		}
	}
	t, ok := l.FunctionTypes[header]
	return t, ok
}

// SearchMethod resolves header against className's method table alone,
// with no lattice walk.
func (l *Library) SearchMethod(className string, header Header) (Term, bool) {
	return l.Methods.Lookup(className, header)
}

// SearchMethodOnLattice resolves header against className's method
// table, walking up the scalar subtype lattice when the class itself
// has no match (or when accepts rejects its match), so an override on
// sub-double can coexist with the inherited double method.
func (l *Library) SearchMethodOnLattice(className string, header Header, accepts func(Term) bool) (Term, bool) {
	for name := className; ; {
		if m, ok := l.Methods.Lookup(name, header); ok {
			if accepts == nil || accepts(m) {
				return m, true
			}
		}
		parent, ok := l.scalarParentName(name)
		if !ok {
			return nil, false
		}
		name = parent
	}
}

func (l *Library) scalarParentName(name string) (string, bool) {
	id := l.store.strings.Intern(name)
	parent, ok := l.subtypeParent[id]
	if !ok {
		return "", false
	}
	return l.store.strings.Lookup(parent), true
}

func (l *Library) addMethod(className string, header Header, method Term) {
	if err := l.Methods.Add(className, header, method); err != nil {
		panic(err) // built-in registration bugs are programmer error, not user-facing
	}
}

// registerDefaultOperators wires the arithmetic/comparison/logical
// operators every scalar in the numeric lattice inherits, grounded on
// the teacher's default-instance registration in instances.go.
func (l *Library) registerDefaultOperators() {
	numeric := []*Scalar{l.Double, l.SubDouble, l.SubSubDouble}
	arith := []string{"+", "-", "*", "/"}
	compare := []string{"<", "<=", ">", ">=", "==", "!="}

	for _, s := range numeric {
		inputs := l.store.MakeInputDestructuredTuple(s, s)
		for _, op := range arith {
			outputs := l.store.MakeOutputDestructuredTuple(s)
			header := Header{Kind: BinaryOp, Op: op}
			abs := l.store.MakeAbstraction(header, inputs, outputs)
			l.addMethod(s.text, header, abs)
		}
		for _, op := range compare {
			outputs := l.store.MakeOutputDestructuredTuple(l.Logical)
			header := Header{Kind: BinaryOp, Op: op}
			abs := l.store.MakeAbstraction(header, inputs, outputs)
			l.addMethod(s.text, header, abs)
		}
		unaryInputs := l.store.MakeInputDestructuredTuple(s)
		unaryOutputs := l.store.MakeOutputDestructuredTuple(s)
		negHeader := Header{Kind: UnaryOp, Op: "-"}
		l.addMethod(s.text, negHeader, l.store.MakeAbstraction(negHeader, unaryInputs, unaryOutputs))
	}

	logicalInputs := l.store.MakeInputDestructuredTuple(l.Logical, l.Logical)
	logicalOutputs := l.store.MakeOutputDestructuredTuple(l.Logical)
	for _, op := range []string{"&&", "||"} {
		header := Header{Kind: BinaryOp, Op: op}
		l.addMethod(l.Logical.text, header, l.store.MakeAbstraction(header, logicalInputs, logicalOutputs))
	}
	notInputs := l.store.MakeInputDestructuredTuple(l.Logical)
	notHeader := Header{Kind: UnaryOp, Op: "!"}
	l.addMethod(l.Logical.text, notHeader, l.store.MakeAbstraction(notHeader, notInputs, logicalOutputs))
}

// registerSubscriptSchemes wires the generic a(i) and a{i} indexing
// operators over an arbitrary list pattern, each quantified over the
// element type so every List<T> shares one scheme.
func (l *Library) registerSubscriptSchemes() {
	for _, method := range []SubscriptMethod{Parens, Brace} {
		elem := l.store.MakeVariable()
		index := l.store.MakeVariable()
		list := l.store.MakeList(elem)
		inputs := l.store.MakeInputDestructuredTuple(list, index)
		outputs := l.store.MakeOutputDestructuredTuple(elem)
		header := Header{Kind: SubscriptRef, Direction: method}
		abs := l.store.MakeAbstraction(header, inputs, outputs)
		scheme := l.store.MakeScheme(abs, []Term{elem, index}, nil)
		l.FunctionTypes[header] = scheme
	}
}

// registerFreeFunctions wires the always-visible free functions named
// directly in the type language: sum, min, feval, deal, true, false.
func (l *Library) registerFreeFunctions() {
	elem := l.store.MakeVariable()
	list := l.store.MakeList(elem)

	sumHeader := Header{Kind: Function, Name: "sum"}
	sumInputs := l.store.MakeInputDestructuredTuple(list)
	sumOutputs := l.store.MakeOutputDestructuredTuple(elem)
	l.FunctionTypes[sumHeader] = l.store.MakeScheme(
		l.store.MakeAbstraction(sumHeader, sumInputs, sumOutputs), []Term{elem}, nil)

	minElem := l.store.MakeVariable()
	minList := l.store.MakeList(minElem)
	minHeader := Header{Kind: Function, Name: "min"}
	minInputs := l.store.MakeInputDestructuredTuple(minList)
	minOutputs := l.store.MakeOutputDestructuredTuple(minElem)
	l.FunctionTypes[minHeader] = l.store.MakeScheme(
		l.store.MakeAbstraction(minHeader, minInputs, minOutputs), []Term{minElem}, nil)

	// feval(f, args...) -> f's own outputs: a Parameters pack stands
	// for the forwarded argument list, and the scheme carries the
	// constraint that actually applies f to the pack, so every
	// instantiation re-checks the forwarded call.
	fevalFn := l.store.MakeVariable()
	fevalArgs := l.store.MakeParameters()
	fevalOutputs := l.store.MakeVariable()
	fevalHeader := Header{Kind: Function, Name: "feval"}
	fevalInputs := l.store.MakeInputDestructuredTuple(fevalFn, fevalArgs)
	fevalOut := l.store.MakeOutputDestructuredTuple(fevalOutputs)
	fevalCall := l.store.MakeApplication(fevalFn, l.store.MakeRvalueDestructuredTuple(fevalArgs), fevalOutputs)
	l.FunctionTypes[fevalHeader] = l.store.MakeScheme(
		l.store.MakeAbstraction(fevalHeader, fevalInputs, fevalOut),
		[]Term{fevalFn, fevalArgs, fevalOutputs},
		[]Equation{{LHS: fevalCall, RHS: fevalOutputs}})

	// deal(pack) -> pack, destructured: it exists purely to let a caller
	// explicitly spread a Parameters pack into an lvalue list; the
	// checker treats input and output packs as the same Parameters
	// variable so the destructuring falls out of ordinary unification.
	dealPack := l.store.MakeParameters()
	dealHeader := Header{Kind: Function, Name: "deal"}
	dealInputs := l.store.MakeInputDestructuredTuple(dealPack)
	dealOutputs := l.store.MakeOutputDestructuredTuple(dealPack)
	l.FunctionTypes[dealHeader] = l.store.MakeScheme(
		l.store.MakeAbstraction(dealHeader, dealInputs, dealOutputs), []Term{dealPack}, nil)

	// [a, b, c] concatenation: every component must share one element
	// type, and the result is a list of it. The list-absorption rule
	// lets the single List parameter take any number of arguments.
	concatElem := l.store.MakeVariable()
	concatHeader := Header{Kind: Concatenation}
	concatInputs := l.store.MakeInputDestructuredTuple(l.store.MakeList(concatElem))
	concatOutputs := l.store.MakeOutputDestructuredTuple(l.store.MakeList(concatElem))
	l.FunctionTypes[concatHeader] = l.store.MakeScheme(
		l.store.MakeAbstraction(concatHeader, concatInputs, concatOutputs), []Term{concatElem}, nil)

	trueHeader := Header{Kind: Function, Name: "true"}
	falseHeader := Header{Kind: Function, Name: "false"}
	noArgs := l.store.MakeInputDestructuredTuple()
	logicalOut := l.store.MakeOutputDestructuredTuple(l.Logical)
	l.FunctionTypes[trueHeader] = l.store.MakeAbstraction(trueHeader, noArgs, logicalOut)
	l.FunctionTypes[falseHeader] = l.store.MakeAbstraction(falseHeader, noArgs, logicalOut)
}
