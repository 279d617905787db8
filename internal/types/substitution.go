package types

// Substitution is the unifier's mutable working state (§5): a worklist
// of outstanding equations, the bindings discovered for Variable and
// Parameters terms so far, and a cursor marking how far draining has
// progressed (kept for diagnostics: an error can report "while solving
// equation N of M"). Grounded on the teacher's Subst map plus its
// worklist-based solve loop in unification.go.
type Substitution struct {
	Equations []Equation
	bindings  map[Term]Term
	cursor    int
}

// NewSubstitution creates an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[Term]Term)}
}

// AddEquation appends a new obligation to the worklist.
func (s *Substitution) AddEquation(lhs, rhs Term, eq Equation) {
	eq.LHS, eq.RHS = lhs, rhs
	s.Equations = append(s.Equations, eq)
}

// Push appends an already-built equation.
func (s *Substitution) Push(eq Equation) {
	s.Equations = append(s.Equations, eq)
}

// Next pops the next equation off the worklist, advancing cursor.
func (s *Substitution) Next() (Equation, bool) {
	if s.cursor >= len(s.Equations) {
		return Equation{}, false
	}
	eq := s.Equations[s.cursor]
	s.cursor++
	return eq, true
}

// Cursor reports how many equations have been popped so far, for
// progress reporting.
func (s *Substitution) Cursor() int { return s.cursor }

// Bind records that v (a *Variable or *Parameters) resolves to t. The
// caller is responsible for the occurs check before calling Bind.
func (s *Substitution) Bind(v Term, t Term) {
	s.bindings[v] = t
}

// Lookup returns v's current binding, if any.
func (s *Substitution) Lookup(v Term) (Term, bool) {
	t, ok := s.bindings[v]
	return t, ok
}

// Apply follows t's chain of bindings (and recurses into its structure)
// until reaching a term with no further substitution to perform.
func (s *Substitution) Apply(t Term) Term {
	return s.applyWithSeen(t, make(map[Term]bool))
}

func (s *Substitution) applyWithSeen(t Term, seen map[Term]bool) Term {
	switch v := t.(type) {
	case *Variable:
		if bound, ok := s.bindings[v]; ok && !seen[v] {
			seen[v] = true
			return s.applyWithSeen(bound, seen)
		}
		return v
	case *Parameters:
		if bound, ok := s.bindings[v]; ok && !seen[v] {
			seen[v] = true
			return s.applyWithSeen(bound, seen)
		}
		return v
	case *Tuple:
		return &Tuple{Members: s.applyAll(v.Members, seen)}
	case *DestructuredTuple:
		return &DestructuredTuple{Use: v.Use, Members: s.applyAll(v.Members, seen)}
	case *List:
		return &List{Pattern: s.applyAll(v.Pattern, seen)}
	case *Union:
		return &Union{Members: s.applyAll(v.Members, seen)}
	case *Record:
		fields := make([]RecordField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = RecordField{Name: f.Name, Type: s.applyWithSeen(f.Type, seen)}
		}
		return &Record{Fields: fields}
	case *Alias:
		return &Alias{Source: s.applyWithSeen(v.Source, seen)}
	case *Abstraction:
		return &Abstraction{
			Header:      v.Header,
			Inputs:      s.applyWithSeen(v.Inputs, seen),
			Outputs:     s.applyWithSeen(v.Outputs, seen),
			Ref:         v.Ref,
			placeholder: v.placeholder,
			visited:     v.visited,
		}
	case *Application:
		return &Application{
			Abstraction: s.applyWithSeen(v.Abstraction, seen),
			Inputs:      s.applyWithSeen(v.Inputs, seen),
			Outputs:     s.applyWithSeen(v.Outputs, seen),
		}
	case *Subscript:
		steps := make([]SubscriptStep, len(v.Subs))
		for i, step := range v.Subs {
			steps[i] = SubscriptStep{Method: step.Method, Args: s.applyAll(step.Args, seen)}
		}
		return &Subscript{
			Principal: s.applyWithSeen(v.Principal, seen),
			Subs:      steps,
			Outputs:   s.applyWithSeen(v.Outputs, seen),
			visited:   v.visited,
		}
	default:
		return t
	}
}

func (s *Substitution) applyAll(ts []Term, seen map[Term]bool) []Term {
	if ts == nil {
		return nil
	}
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = s.applyWithSeen(t, seen)
	}
	return out
}

// PendingExternalFunctions collects Abstractions that search_function
// could not resolve locally or against the built-in library: candidates
// for the search-path/driver fixed-point loop (§6).
type PendingExternalFunctions struct {
	Candidates []*Abstraction
}

// Add records abstraction as needing external resolution, skipping it
// if already present.
func (p *PendingExternalFunctions) Add(abstraction *Abstraction) {
	for _, existing := range p.Candidates {
		if existing == abstraction {
			return
		}
	}
	p.Candidates = append(p.Candidates, abstraction)
}

// Drain returns and clears the current candidate list, so the driver's
// fixed-point loop can process one generation at a time.
func (p *PendingExternalFunctions) Drain() []*Abstraction {
	out := p.Candidates
	p.Candidates = nil
	return out
}
