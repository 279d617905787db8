package types

// Unifier drains a Substitution's equation worklist to a fixed point,
// binding Variables and Parameters as it goes and re-queuing the
// equations Simplify produces. Grounded on the teacher's main solve
// loop in internal/types/unification.go (Solve/unify), restructured
// around an explicit worklist so the subscript handler and the
// external-function driver can both push new equations mid-solve.
//
// Errors never abort the run: each failed equation is recorded in
// Errors and the worklist keeps draining, so a single pass reports
// everything wrong with a file rather than only the first problem.
type Unifier struct {
	Library *Library
	Sub     *Substitution
	Pending *PendingExternalFunctions

	// Deferred collects Application equations whose callee header wasn't
	// found in the library this pass (the header was also recorded in
	// Pending). They are deliberately NOT re-pushed onto Sub: doing so
	// would just hand the same equation straight back to Next() on this
	// same pass, since nothing in Sub changes until the driver goes and
	// discovers the header. The driver re-pushes these onto Sub itself
	// once discovery has had a chance to run.
	Deferred []Equation

	// Errors accumulates every checker failure this pass produced, in
	// the order encountered.
	Errors []error

	rel Relation
}

// NewUnifier creates a Unifier over sub, checking equations with lib's
// subtype relation (assignment is subtyping, not bare equivalence).
func NewUnifier(lib *Library, sub *Substitution) *Unifier {
	return &Unifier{
		Library: lib,
		Sub:     sub,
		Pending: &PendingExternalFunctions{},
		rel:     lib.SubtypeRelation(),
	}
}

// Run drains the worklist until empty, recording failures in Errors.
func (u *Unifier) Run() {
	// stepBudget bounds the requeue-and-retry pattern used when an
	// equation's key operand isn't known yet (operator applications,
	// subscripts on an unresolved principal, callee variables): each
	// requeue consumes one unit, so a genuinely unresolvable operand
	// reports an error instead of spinning forever.
	stepBudget := 64 * (len(u.Sub.Equations) + 1)
	for steps := 0; ; steps++ {
		eq, ok := u.Sub.Next()
		if !ok {
			return
		}
		if steps > stepBudget {
			u.record(u.starvationError(eq))
			return
		}
		u.record(u.step(eq))
	}
}

func (u *Unifier) record(err error) {
	if err != nil {
		u.Errors = append(u.Errors, err)
	}
}

// starvationError classifies an equation that was requeued until the
// step budget ran out: an operator whose operand class never resolved
// is an unresolved function, anything else a simplification failure.
func (u *Unifier) starvationError(eq Equation) error {
	if app, ok := eq.LHS.(*Application); ok {
		if header, ok := operatorHeader(u.Sub.Apply(app.Abstraction)); ok {
			return &UnresolvedFunctionError{Header: header, At: eq.Source}
		}
	}
	return &SimplificationFailure{LHS: eq.LHS, RHS: eq.RHS, At: eq.Source}
}

func (u *Unifier) step(eq Equation) error {
	lhs := u.Sub.Apply(eq.LHS)
	rhs := u.Sub.Apply(eq.RHS)

	// Assignment/Application/Subscript resolution takes priority over
	// plain variable binding: an equation like {app(f,x), t} must
	// resolve the call, not simply bind t to the un-interpreted
	// Application term.
	if asg, ok := lhs.(*Assignment); ok {
		return u.resolveAssignment(asg, rhs, eq)
	}
	if asg, ok := rhs.(*Assignment); ok {
		return u.resolveAssignment(asg, lhs, eq)
	}
	if app, ok := lhs.(*Application); ok {
		return u.resolveApplication(app, rhs, eq)
	}
	if app, ok := rhs.(*Application); ok {
		return u.resolveApplication(app, lhs, eq)
	}
	if sub, ok := lhs.(*Subscript); ok {
		return u.resolveSubscript(sub, rhs, eq)
	}
	if sub, ok := rhs.(*Subscript); ok {
		return u.resolveSubscript(sub, lhs, eq)
	}

	if v, ok := lhs.(*Variable); ok {
		return u.bindVariable(v, rhs, eq)
	}
	if v, ok := rhs.(*Variable); ok {
		return u.bindVariable(v, lhs, eq)
	}
	if p, ok := lhs.(*Parameters); ok {
		return u.bindParameters(p, rhs, eq)
	}
	if p, ok := rhs.(*Parameters); ok {
		return u.bindParameters(p, lhs, eq)
	}

	produced, err := Simplify(u.rel, lhs, rhs, eq)
	if err != nil {
		return err
	}
	for _, p := range produced {
		u.Sub.Push(p)
	}
	return nil
}

// resolveAssignment lowers `fresh = Assignment(to, of)` (§4.4): the
// rhs must be a subtype of the lhs, so the value flows {of, to} with
// the subtype relation oriented left-to-right, and the assignment
// expression's own value is the target's type.
func (u *Unifier) resolveAssignment(asg *Assignment, peer Term, eq Equation) error {
	to := u.Sub.Apply(asg.LHS)
	of := u.Sub.Apply(asg.RHS)
	u.Sub.Push(Equation{LHS: of, RHS: to, Source: eq.Source})
	if v, ok := peer.(*Variable); ok {
		return u.bindVariable(v, to, eq)
	}
	return nil
}

func (u *Unifier) bindVariable(v *Variable, t Term, eq Equation) error {
	if t == Term(v) {
		return nil
	}
	if occursIn(v, t) {
		return &OccursCheckFailure{Var: v, In: t, At: eq.Source}
	}
	u.Sub.Bind(v, t)
	return nil
}

func (u *Unifier) bindParameters(p *Parameters, t Term, eq Equation) error {
	if t == Term(p) {
		return nil
	}
	if occursIn(p, t) {
		return &OccursCheckFailure{Var: p, In: t, At: eq.Source}
	}
	// A Parameters variable binds directly to any rvalue
	// DestructuredTuple it meets; anything else is wrapped into a
	// one-member rvalue DT so the pack always resolves to DT shape.
	if _, ok := t.(*DestructuredTuple); ok {
		u.Sub.Bind(p, t)
		return nil
	}
	u.Sub.Bind(p, &DestructuredTuple{Use: Rvalue, Members: []Term{t}})
	return nil
}

// occursIn implements the occurs check: does v appear anywhere inside
// t's structure?
func occursIn(v Term, t Term) bool {
	if v == t {
		return true
	}
	switch n := t.(type) {
	case *Tuple:
		return occursInAll(v, n.Members)
	case *DestructuredTuple:
		return occursInAll(v, n.Members)
	case *List:
		return occursInAll(v, n.Pattern)
	case *Union:
		return occursInAll(v, n.Members)
	case *Record:
		for _, f := range n.Fields {
			if occursIn(v, f.Type) {
				return true
			}
		}
		return false
	case *Alias:
		return occursIn(v, n.Source)
	case *Abstraction:
		return occursIn(v, n.Inputs) || occursIn(v, n.Outputs)
	case *Application:
		return occursIn(v, n.Abstraction) || occursIn(v, n.Inputs) || occursIn(v, n.Outputs)
	case *Assignment:
		return occursIn(v, n.LHS) || occursIn(v, n.RHS)
	case *Scheme:
		if occursIn(v, n.Type) {
			return true
		}
		for _, c := range n.Constraints {
			if occursIn(v, c.LHS) || occursIn(v, c.RHS) {
				return true
			}
		}
		return false
	case *Subscript:
		if occursIn(v, n.Principal) || occursIn(v, n.Outputs) {
			return true
		}
		for _, step := range n.Subs {
			if occursInAll(v, step.Args) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func occursInAll(v Term, ts []Term) bool {
	for _, t := range ts {
		if occursIn(v, t) {
			return true
		}
	}
	return false
}

// resolveApplication implements the Application half of §4.4/§4.2:
// resolve the callee to an Abstraction (searching the library, then
// queuing external discovery), then unify its Inputs/Outputs against
// the call site. Argument-vs-parameter comparisons put the argument on
// the left so the subtype relation runs argument <: parameter.
func (u *Unifier) resolveApplication(app *Application, peer Term, eq Equation) error {
	callee := u.Sub.Apply(app.Abstraction)
	switch callee.(type) {
	case *Variable, *Parameters:
		// The callee is a value (e.g. feval's forwarded function) that a
		// later equation in this same pass will pin down; retry then.
		u.Sub.Push(Equation{LHS: app, RHS: peer, Source: eq.Source})
		return nil
	}
	if header, ok := operatorHeader(callee); ok {
		return u.resolveOperatorApplication(header, app, peer, eq)
	}
	abs, pending, err := u.resolveCallee(callee, app.Inputs, eq)
	if err != nil {
		return err
	}
	if pending {
		// The callee's header isn't in the library yet: abs is only the
		// generator's header-carrying placeholder, with no real
		// parameter shape to unify against. Defer rather than re-queue
		// (see Deferred's doc comment) so this pass still terminates.
		u.Deferred = append(u.Deferred, eq)
		return nil
	}
	u.Sub.Push(Equation{LHS: app.Inputs, RHS: abs.Inputs, Source: eq.Source})
	u.Sub.Push(Equation{LHS: abs.Outputs, RHS: u.Library.store.MakeRvalueDestructuredTuple(peer), Source: eq.Source})
	return nil
}

func operatorHeader(principal Term) (Header, bool) {
	abs, ok := principal.(*Abstraction)
	if !ok || abs.visited {
		return Header{}, false
	}
	if abs.Header.Kind == UnaryOp || abs.Header.Kind == BinaryOp {
		return abs.Header, true
	}
	return Header{}, false
}

// resolveOperatorApplication resolves a unary/binary operator call: the
// method table to search is determined by the first concrete operand's
// own type (a Scalar's name, or a Class's name), walking up the subtype
// lattice until a method whose declared inputs accept the arguments is
// found (§4.2's Header-keyed method dispatch). If every operand is
// still an unresolved Variable, the equation is requeued so
// later-solved equations get a chance to pin one down first.
func (u *Unifier) resolveOperatorApplication(header Header, app *Application, peer Term, eq Equation) error {
	inputs, ok := u.Sub.Apply(app.Inputs).(*DestructuredTuple)
	if !ok || len(inputs.Members) == 0 {
		return &InvalidFunctionInvocationError{Principal: app.Abstraction, At: eq.Source}
	}
	className := ""
	for _, operand := range inputs.Members {
		if name, ok := u.Library.ClassNameOf(u.Sub.Apply(operand)); ok {
			className = name
			break
		}
	}
	if className == "" {
		u.Sub.Push(Equation{LHS: app, RHS: peer, Source: eq.Source})
		return nil
	}
	method, ok := u.Library.SearchMethodOnLattice(className, header, u.methodAccepts(inputs))
	if !ok {
		return &UnresolvedFunctionError{Header: header, At: eq.Source}
	}
	abs, ok := u.instantiate(method).(*Abstraction)
	if !ok {
		return &InvalidFunctionInvocationError{Principal: method, At: eq.Source}
	}
	u.Sub.Push(Equation{LHS: app.Inputs, RHS: abs.Inputs, Source: eq.Source})
	u.Sub.Push(Equation{LHS: abs.Outputs, RHS: u.Library.store.MakeRvalueDestructuredTuple(peer), Source: eq.Source})
	return nil
}

// methodAccepts builds the acceptance predicate the lattice walk uses
// to skip an override whose declared inputs reject the concrete
// arguments (so sub-double + double can fall back to double's method
// rather than failing against sub-double's). A Scheme method's inputs
// are quantified, so they unify with anything and the candidate is
// accepted outright; likewise any candidate while an argument is still
// unresolved.
func (u *Unifier) methodAccepts(args *DestructuredTuple) func(Term) bool {
	return func(method Term) bool {
		abs, ok := method.(*Abstraction)
		if !ok {
			return true
		}
		for _, a := range args.Members {
			switch u.Sub.Apply(a).(type) {
			case *Variable, *Parameters:
				return true
			}
		}
		return Related(u.rel, u.Sub.Apply(args), abs.Inputs)
	}
}

// operandClassName names the method table an operand's type dispatches
// to. Numeric literals carried as ConstantValues dispatch like doubles.
func operandClassName(t Term) (string, bool) {
	switch v := t.(type) {
	case *Scalar:
		return v.text, true
	case *Class:
		return v.Name, true
	case *ConstantValue:
		if v.Kind == ConstantInt || v.Kind == ConstantFloat {
			return "double", true
		}
		return "", false
	default:
		return "", false
	}
}

// resolveCallee resolves a term standing for a call's callee into a
// concrete Abstraction, instantiating a Scheme if that's what the
// library or a local declaration bound the header to. A non-placeholder
// Abstraction (an actual function value: an anonymous function, a
// scheme instance) is already its own resolution. pending=true means
// the header isn't known yet (it was added to u.Pending for the driver
// to go discover) and abs is only the generator's placeholder, not a
// usable signature.
func (u *Unifier) resolveCallee(callee Term, inputs Term, eq Equation) (abs *Abstraction, pending bool, err error) {
	switch p := callee.(type) {
	case *Abstraction:
		if !p.placeholder || p.visited {
			return p, false, nil
		}
		t, ok := u.Library.SearchFunction(p.Header, p.Ref, u.appliedArgs(inputs))
		if !ok {
			u.Pending.Add(p)
			return p, true, nil
		}
		resolvedAbs, ok := u.instantiate(t).(*Abstraction)
		if !ok {
			p.visited = true
			return nil, false, &InvalidFunctionInvocationError{Principal: callee, At: eq.Source}
		}
		resolvedAbs.visited = true
		return resolvedAbs, false, nil
	case *Scheme:
		resolvedAbs, ok := u.instantiate(p).(*Abstraction)
		if !ok {
			return nil, false, &InvalidFunctionInvocationError{Principal: callee, At: eq.Source}
		}
		return resolvedAbs, false, nil
	default:
		return nil, false, &InvalidFunctionInvocationError{Principal: callee, At: eq.Source}
	}
}

func (u *Unifier) appliedArgs(inputs Term) []Term {
	dt, ok := u.Sub.Apply(inputs).(*DestructuredTuple)
	if !ok {
		return nil
	}
	return dt.Members
}

// resolveSubscript delegates to the subscript handler (subscript.go),
// then threads its result against peer. An unresolved principal is
// retried later in the same pass; a chain with remaining steps is
// rebuilt around the first step's result and re-enqueued (§4.5).
func (u *Unifier) resolveSubscript(sub *Subscript, peer Term, eq Equation) error {
	principal := u.Sub.Apply(sub.Principal)
	switch principal.(type) {
	case *Variable, *Parameters:
		u.Sub.Push(Equation{LHS: sub, RHS: peer, Source: eq.Source})
		return nil
	}
	if len(sub.Subs) == 0 {
		u.Sub.Push(Equation{LHS: principal, RHS: peer, Source: eq.Source})
		return nil
	}

	result, err := u.handleSubscript(principal, sub, eq)
	if err != nil {
		sub.visited = true
		return err
	}
	if len(sub.Subs) > 1 {
		reduced := u.Library.store.MakeSubscript(result, sub.Subs[1:], sub.Outputs)
		u.Sub.Push(Equation{LHS: reduced, RHS: peer, Source: eq.Source})
		return nil
	}
	u.Sub.Push(Equation{LHS: result, RHS: peer, Source: eq.Source})
	return nil
}

// instantiate replaces a Scheme's quantified parameters with fresh
// variables throughout a copy of its type, re-emitting the scheme's
// captured constraints under the same replacement so they hold at this
// instantiation site (§4.4). Non-Scheme terms pass through untouched.
func (u *Unifier) instantiate(t Term) Term {
	return instantiate(u.Library.store, u.Sub.Push, t)
}

// instantiate is the package-level form shared with the generator,
// which pushes re-instantiated constraints through its own repository-
// aware emit function. push may be nil when the caller knows t carries
// no constraints. Grounded on the teacher's instantiate() in
// typechecker_core.go.
func instantiate(store *Store, push func(Equation), t Term) Term {
	scheme, ok := t.(*Scheme)
	if !ok {
		return t
	}
	fresh := make(map[Term]Term, len(scheme.Parameters))
	for _, p := range scheme.Parameters {
		switch p.(type) {
		case *Variable:
			fresh[p] = store.MakeVariable()
		case *Parameters:
			fresh[p] = store.MakeParameters()
		}
	}
	body := cloneWith(store, scheme.Type, fresh)
	for _, c := range scheme.Constraints {
		eq := Equation{
			LHS:    cloneWith(store, c.LHS, fresh),
			RHS:    cloneWith(store, c.RHS, fresh),
			Source: c.Source,
		}
		if push != nil {
			push(eq)
		}
	}
	return body
}

// cloneWith deep-copies t, replacing every occurrence of a term in
// fresh with its mapped replacement. A nested Scheme extends the
// mapping with its own fresh parameters before recursing, so inner
// quantifiers stay capture-avoiding.
func cloneWith(store *Store, t Term, fresh map[Term]Term) Term {
	if r, ok := fresh[t]; ok {
		return r
	}
	switch n := t.(type) {
	case *Tuple:
		return &Tuple{Members: cloneAllWith(store, n.Members, fresh)}
	case *DestructuredTuple:
		return &DestructuredTuple{Use: n.Use, Members: cloneAllWith(store, n.Members, fresh)}
	case *List:
		return &List{Pattern: cloneAllWith(store, n.Pattern, fresh)}
	case *Union:
		return &Union{Members: cloneAllWith(store, n.Members, fresh)}
	case *Record:
		fields := make([]RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = RecordField{Name: f.Name, Type: cloneWith(store, f.Type, fresh)}
		}
		return &Record{Fields: fields}
	case *Alias:
		return &Alias{Source: cloneWith(store, n.Source, fresh)}
	case *Abstraction:
		return &Abstraction{
			Header:      n.Header,
			Inputs:      cloneWith(store, n.Inputs, fresh),
			Outputs:     cloneWith(store, n.Outputs, fresh),
			Ref:         n.Ref,
			placeholder: n.placeholder,
		}
	case *Application:
		return &Application{
			Abstraction: cloneWith(store, n.Abstraction, fresh),
			Inputs:      cloneWith(store, n.Inputs, fresh),
			Outputs:     cloneWith(store, n.Outputs, fresh),
		}
	case *Assignment:
		return &Assignment{
			LHS: cloneWith(store, n.LHS, fresh),
			RHS: cloneWith(store, n.RHS, fresh),
		}
	case *Subscript:
		steps := make([]SubscriptStep, len(n.Subs))
		for i, step := range n.Subs {
			steps[i] = SubscriptStep{Method: step.Method, Args: cloneAllWith(store, step.Args, fresh)}
		}
		return &Subscript{
			Principal: cloneWith(store, n.Principal, fresh),
			Subs:      steps,
			Outputs:   cloneWith(store, n.Outputs, fresh),
		}
	case *Scheme:
		inner := make(map[Term]Term, len(fresh)+len(n.Parameters))
		for k, v := range fresh {
			inner[k] = v
		}
		params := make([]Term, len(n.Parameters))
		for i, p := range n.Parameters {
			switch p.(type) {
			case *Parameters:
				params[i] = store.MakeParameters()
			default:
				params[i] = store.MakeVariable()
			}
			inner[p] = params[i]
		}
		constraints := make([]Equation, len(n.Constraints))
		for i, c := range n.Constraints {
			constraints[i] = Equation{
				LHS:    cloneWith(store, c.LHS, inner),
				RHS:    cloneWith(store, c.RHS, inner),
				Source: c.Source,
			}
		}
		return &Scheme{Type: cloneWith(store, n.Type, inner), Parameters: params, Constraints: constraints}
	default:
		return t
	}
}

func cloneAllWith(store *Store, ts []Term, fresh map[Term]Term) []Term {
	if ts == nil {
		return nil
	}
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = cloneWith(store, t, fresh)
	}
	return out
}
