package types

// Simplify reduces one equation to zero or more smaller equations, or
// reports that lhs and rhs can never be reconciled. It never mutates
// sub; binding a Variable/Parameters is the caller's (Unifier's) job,
// since only the caller knows whether the occurs check has been run.
// Grounded on the teacher's unify() structural-recursion shape
// (internal/types/unification.go), adapted to return new equations
// instead of recursing directly, so the unifier's worklist stays flat.
//
// Orientation: under a SubtypeRelation, a leaf pair {a, b} checks
// a <: b. Callers emitting argument-vs-parameter or value-vs-target
// equations put the narrower side on the left; the simplifier itself
// preserves position when pairing members.
func Simplify(rel Relation, lhs, rhs Term, eq Equation) ([]Equation, error) {
	lhs = unwrapAlias(lhs)
	rhs = unwrapAlias(rhs)

	if _, ok := lhs.(*Variable); ok {
		return nil, nil
	}
	if _, ok := rhs.(*Variable); ok {
		return nil, nil
	}
	if _, ok := lhs.(*Parameters); ok {
		return nil, nil
	}
	if _, ok := rhs.(*Parameters); ok {
		return nil, nil
	}

	switch l := lhs.(type) {
	case *Scalar:
		// RelatedLeaf also accepts a numeric ConstantValue peer.
		if !rel.RelatedLeaf(l, rhs) {
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		return nil, nil

	case *ConstantValue:
		if r, ok := rhs.(*ConstantValue); ok {
			if l.Kind == r.Kind && l.text == r.text {
				return nil, nil
			}
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		if !rel.RelatedLeaf(l, rhs) {
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		return nil, nil

	case *Tuple:
		r, ok := rhs.(*Tuple)
		if !ok || len(l.Members) != len(r.Members) {
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		return pairEquations(l.Members, r.Members, eq), nil

	case *DestructuredTuple:
		r, ok := rhs.(*DestructuredTuple)
		if !ok {
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		return simplifyDestructured(l, r, eq)

	case *List:
		r, ok := rhs.(*List)
		if !ok || len(l.Pattern) != len(r.Pattern) {
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		return pairEquations(l.Pattern, r.Pattern, eq), nil

	case *Union:
		if !relatedUnion(rel, l, rhs) {
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		return nil, nil

	case *Record:
		r, ok := rhs.(*Record)
		if !ok {
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		var out []Equation
		for _, lf := range l.Fields {
			found := false
			for _, rf := range r.Fields {
				if lf.Name.Kind == rf.Name.Kind && lf.Name.text == rf.Name.text {
					out = append(out, Equation{LHS: lf.Type, RHS: rf.Type, Source: eq.Source})
					found = true
					break
				}
			}
			if !found {
				return nil, &NonexistentFieldReferenceError{Field: lf.Name.text, Principal: rhs, At: eq.Source}
			}
		}
		return out, nil

	case *Abstraction:
		r, ok := rhs.(*Abstraction)
		if !ok || l.Header != r.Header {
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		// Inputs are contravariant: the pair flips so the subtype
		// relation still reads narrower-on-the-left.
		return []Equation{
			{LHS: r.Inputs, RHS: l.Inputs, Source: eq.Source},
			{LHS: l.Outputs, RHS: r.Outputs, Source: eq.Source},
		}, nil

	case *Class:
		r, ok := rhs.(*Class)
		if !ok {
			if rb, isUnion := rhs.(*Union); isUnion {
				if relatedUnion(rel, rb, lhs) {
					return nil, nil
				}
			}
			return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
		}
		if l.Name == r.Name || rel.RelatedLeaf(l, r) {
			return nil, nil
		}
		return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}

	default:
		if Related(rel, lhs, rhs) {
			return nil, nil
		}
		return nil, &SimplificationFailure{LHS: lhs, RHS: rhs, At: eq.Source}
	}
}

func pairEquations(as, bs []Term, eq Equation) []Equation {
	out := make([]Equation, len(as))
	for i := range as {
		out[i] = Equation{LHS: as[i], RHS: bs[i], Source: eq.Source}
	}
	return out
}

// simplifyDestructured applies the flattening, value-usage collapse,
// list-tail absorption and parameter-pack expansion rules (the
// read-only versions live in relatedDestructured, relations.go) but
// produces equations rather than a boolean, since the unifier needs to
// keep unifying the surviving members' element types, not merely
// confirm they're related.
func simplifyDestructured(a, b *DestructuredTuple, eq Equation) ([]Equation, error) {
	// The value-usage collapse inspects raw slots, before flattening: a
	// definition-outputs tuple met by a single-slot rvalue peer hands
	// over its first slot whole, even when that slot is an expanded
	// parameter pack (which flattening would otherwise splice apart).
	if a.Use == DefinitionOutputs && b.Use == Rvalue && len(b.Members) == 1 && len(a.Members) >= 1 {
		return []Equation{{LHS: a.Members[0], RHS: b.Members[0], Source: eq.Source}}, nil
	}
	if b.Use == DefinitionOutputs && a.Use == Rvalue && len(a.Members) == 1 && len(b.Members) >= 1 {
		return []Equation{{LHS: a.Members[0], RHS: b.Members[0], Source: eq.Source}}, nil
	}

	lhs := flattenMembers(a.Members)
	rhs := flattenMembers(b.Members)

	// A trailing Parameters pack on either side consumes the peer's
	// remaining members into a fresh rvalue DT (§9 "Parameter packs");
	// the binding recorded for the pack splices that DT back in on
	// every later substitution.
	if out, ok := absorbParameters(lhs, rhs, eq); ok {
		return out, nil
	}
	if out, ok := absorbParameters(rhs, lhs, eq); ok {
		// absorbParameters puts its packed side on the left; swap back
		// so the caller's lhs members stay on the left.
		for i := range out {
			out[i].LHS, out[i].RHS = out[i].RHS, out[i].LHS
		}
		return out, nil
	}

	if expanded, ok := absorbList(lhs, len(rhs)); ok {
		lhs = expanded
	}
	if expanded, ok := absorbList(rhs, len(lhs)); ok {
		rhs = expanded
	}
	if len(lhs) != len(rhs) {
		return nil, &SimplificationFailure{LHS: a, RHS: b, At: eq.Source}
	}
	return pairEquations(lhs, rhs, eq), nil
}

// absorbParameters pairs the head of packed against peer and equates
// the trailing pack with an rvalue DT of peer's remaining members.
func absorbParameters(packed, peer []Term, eq Equation) ([]Equation, bool) {
	if len(packed) == 0 {
		return nil, false
	}
	pack, ok := packed[len(packed)-1].(*Parameters)
	if !ok {
		return nil, false
	}
	head := len(packed) - 1
	if len(peer) < head {
		return nil, false
	}
	out := pairEquations(packed[:head], peer[:head], eq)
	rest := &DestructuredTuple{Use: Rvalue, Members: append([]Term{}, peer[head:]...)}
	out = append(out, Equation{LHS: pack, RHS: rest, Source: eq.Source})
	return out, true
}

// flattenMembers splices nested rvalue DestructuredTuples into their
// parent's member list, implementing §8's expansion associativity:
// DT(r, [DT(r, [x, y]), z]) == DT(r, [x, y, z]).
func flattenMembers(members []Term) []Term {
	flat := true
	for _, m := range members {
		if dt, ok := m.(*DestructuredTuple); ok && dt.Use == Rvalue {
			flat = false
			break
		}
	}
	if flat {
		return members
	}
	var out []Term
	for _, m := range members {
		if dt, ok := m.(*DestructuredTuple); ok && dt.Use == Rvalue {
			out = append(out, flattenMembers(dt.Members)...)
			continue
		}
		out = append(out, m)
	}
	return out
}
