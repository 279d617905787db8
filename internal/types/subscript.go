package types

// handleSubscript resolves the head of a pending Subscript chain
// (§4.5): given the principal's concrete shape, decide what
// a(x)/a{x}/a.x means and return the resulting term, pushing any
// equations the decision implies. The caller (resolveSubscript in
// unifier.go) re-enqueues the reduced chain when further steps remain.
// Grounded on the teacher's field/method dispatch in
// typechecker_operators.go, generalised from AILANG's fixed method set
// to the header-keyed MethodStore this project uses.
func (u *Unifier) handleSubscript(principal Term, sub *Subscript, eq Equation) (Term, error) {
	switch p := unwrapAlias(principal).(type) {
	case *Abstraction:
		return u.applyFunctionSubscript(p, sub, eq)
	case *Scheme:
		// A scheme over an abstraction is a polymorphic function value:
		// instantiate, then treat the instance like any function call.
		// A scheme over anything else instantiates into a structural
		// principal and re-enters the ordinary branches.
		instance := u.instantiate(p)
		if abs, ok := instance.(*Abstraction); ok {
			return u.applyFunctionSubscript(abs, sub, eq)
		}
		return u.handleSubscript(instance, sub, eq)
	}

	step := sub.Subs[0]
	switch step.Method {
	case Period:
		return u.handleFieldReference(principal, step, eq)
	default:
		return u.handleIndexedSubscript(principal, step, eq)
	}
}

// applyFunctionSubscript implements §4.5 branch 1: a subscript whose
// principal is a function type is a call, valid only as exactly one
// parens step. The arguments flow into the function's inputs with the
// argument side on the left (argument <: parameter), and the result is
// the function's sole value-position output.
func (u *Unifier) applyFunctionSubscript(abs *Abstraction, sub *Subscript, eq Equation) (Term, error) {
	if len(sub.Subs) != 1 || sub.Subs[0].Method != Parens {
		return nil, &InvalidFunctionInvocationError{Principal: abs, At: eq.Source}
	}
	args := &DestructuredTuple{Use: Rvalue, Members: sub.Subs[0].Args}
	u.Sub.Push(Equation{LHS: args, RHS: abs.Inputs, Source: eq.Source})
	return singleOutput(abs.Outputs), nil
}

// handleFieldReference implements a.b: the single argument must be a
// ConstantValue naming an existing Record/Class field.
func (u *Unifier) handleFieldReference(principal Term, step SubscriptStep, eq Equation) (Term, error) {
	if len(step.Args) != 1 {
		return nil, &NonConstantFieldReferenceExprError{Arg: nil, At: eq.Source}
	}
	arg := u.Sub.Apply(step.Args[0])
	cv, ok := arg.(*ConstantValue)
	if !ok || cv.Kind != ConstantIdentifier {
		return nil, &NonConstantFieldReferenceExprError{Arg: arg, At: eq.Source}
	}

	record := principal
	if class, ok := principal.(*Class); ok {
		record = class.Source
	}
	if rec, ok := unwrapAlias(record).(*Record); ok {
		for _, f := range rec.Fields {
			if f.Name.Kind == ConstantIdentifier && f.Name.text == cv.text {
				return f.Type, nil
			}
		}
	}
	return nil, &NonexistentFieldReferenceError{Field: cv.text, Principal: principal, At: eq.Source}
}

// subsindexHeader names the method a parens/brace subscript argument's
// class must provide for the argument to serve as an index.
var subsindexHeader = Header{Kind: Function, Name: "subsindex"}

// handleIndexedSubscript implements a(x) and a{x} on a non-function
// principal (§4.5 branch 3): every argument must admit subsindex on
// its class; parens on a List yields its element type; brace indexing
// is only valid on a Tuple and yields its element type, while parens on
// a Tuple is an invalid invocation; parens on a Record or a
// known-subscript Scalar is identity indexing; a Class defers to its
// method table; anything else is an error.
func (u *Unifier) handleIndexedSubscript(principal Term, step SubscriptStep, eq Equation) (Term, error) {
	if err := u.checkSubscriptArguments(step, eq); err != nil {
		return nil, err
	}
	switch p := unwrapAlias(principal).(type) {
	case *List:
		if len(p.Pattern) == 0 {
			return nil, &UnhandledCustomSubscriptsError{Principal: principal, Method: step.Method, At: eq.Source}
		}
		if step.Method == Parens {
			return elementTypeOf(p.Pattern), nil
		}

	case *Tuple:
		if step.Method == Parens {
			// A tuple is indexed with braces; parens would be a call.
			return nil, &InvalidFunctionInvocationError{Principal: principal, At: eq.Source}
		}
		// Brace grouping builds a Tuple around a List of the grouped
		// components (§4.3), so t{i} yields that list's element type;
		// a hand-built heterogeneous tuple falls back to its members.
		if len(p.Members) == 1 {
			if list, ok := unwrapAlias(p.Members[0]).(*List); ok && len(list.Pattern) > 0 {
				return elementTypeOf(list.Pattern), nil
			}
		}
		if len(p.Members) > 0 {
			return elementTypeOf(p.Members), nil
		}

	case *Record:
		if step.Method == Parens {
			return p, nil
		}

	case *Class:
		header := Header{Kind: SubscriptRef, Direction: step.Method}
		if method, ok := u.Library.SearchMethod(p.Name, header); ok {
			abs, ok := u.instantiate(method).(*Abstraction)
			if !ok {
				return nil, &UnhandledCustomSubscriptsError{Principal: principal, Method: step.Method, At: eq.Source}
			}
			args := &DestructuredTuple{Use: Rvalue, Members: step.Args}
			u.Sub.Push(Equation{LHS: args, RHS: abs.Inputs, Source: eq.Source})
			return singleOutput(abs.Outputs), nil
		}
		// A class that declares its own subsref takes over all
		// subscripting; that takeover is not modelled here.
		if _, ok := u.Library.SearchMethod(p.Name, Header{Kind: Function, Name: "subsref"}); ok {
			return nil, &UnhandledCustomSubscriptsError{Principal: principal, Method: step.Method, At: eq.Source}
		}
		if step.Method == Parens {
			return p, nil
		}

	case *Scalar:
		if step.Method == Parens && u.Library.IsKnownSubscriptType(p) {
			return p, nil
		}
	}
	return nil, &UnhandledCustomSubscriptsError{Principal: principal, Method: step.Method, At: eq.Source}
}

// checkSubscriptArguments enforces the argument half of subscript
// validity: each parens/brace argument's class must carry a subsindex
// method. A missing subsindex surfaces as the unresolved function it
// is.
func (u *Unifier) checkSubscriptArguments(step SubscriptStep, eq Equation) error {
	for _, raw := range step.Args {
		arg := u.Sub.Apply(raw)
		if dt, ok := arg.(*DestructuredTuple); ok && len(dt.Members) == 1 {
			arg = u.Sub.Apply(dt.Members[0])
		}
		if !u.argumentHasSubsindex(arg) {
			return &UnresolvedFunctionError{Header: subsindexHeader, At: eq.Source}
		}
	}
	return nil
}

// argumentHasSubsindex decides one argument's index-eligibility:
// numeric constants and the registered subscript-capable scalars
// qualify outright, a class (or an unregistered scalar) qualifies when
// its method table carries subsindex, and a list qualifies element-
// wise. An argument whose type is still an unresolved variable is
// accepted; a later binding either satisfies the check or fails the
// eventual index-type equation instead.
func (u *Unifier) argumentHasSubsindex(arg Term) bool {
	switch a := unwrapAlias(arg).(type) {
	case *Variable, *Parameters:
		return true
	case *ConstantValue:
		return a.Kind == ConstantInt || a.Kind == ConstantFloat
	case *Scalar:
		if u.Library.IsKnownSubscriptType(a) {
			return true
		}
		_, ok := u.Library.SearchMethodOnLattice(a.text, subsindexHeader, nil)
		return ok
	case *Class:
		_, ok := u.Library.SearchMethodOnLattice(a.Name, subsindexHeader, nil)
		return ok
	case *List:
		if len(a.Pattern) == 0 {
			return false
		}
		for _, m := range a.Pattern {
			if !u.argumentHasSubsindex(u.Sub.Apply(m)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// elementTypeOf collapses a member list to the single element type
// brace/parens indexing yields: one distinct member stays bare, several
// become a Union of the alternatives.
func elementTypeOf(members []Term) Term {
	distinct := dedupeMembers(members)
	if len(distinct) == 1 {
		return distinct[0]
	}
	return &Union{Members: distinct}
}

// singleOutput unwraps a single-member DefinitionOutputs DestructuredTuple
// to its sole member: every Abstraction this project builds for a
// subscript method returns exactly one value, and callers here want that
// value directly rather than the DT wrapper a function call's Outputs
// field otherwise carries.
func singleOutput(t Term) Term {
	if dt, ok := t.(*DestructuredTuple); ok && dt.Use == DefinitionOutputs && len(dt.Members) == 1 {
		return dt.Members[0]
	}
	return t
}
