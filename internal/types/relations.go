package types

// This file implements the type relations of §4.4/§8: structural
// equivalence, the destructured-tuple expansion rule, and union
// subsumption. The unifier's Simplifier (simplifier.go) and the
// Library's subtype lattice (library.go) both build on Equivalent.

// Relation is the abstraction spec.md §4.2 calls out: a TypeRelation is
// parameterised on either an EquivalenceRelation or a SubtypeRelation.
// Both compare two leaf (non-decomposable) terms; decomposition of
// compound terms is handled once, here, by Related.
type Relation interface {
	// RelatedLeaf compares two terms that Related could not decompose
	// any further (distinct tags, or scalars).
	RelatedLeaf(a, b Term) bool
}

// EquivalenceRelation treats two terms as related only when they are
// structurally identical (a numeric literal key counts as a double).
type EquivalenceRelation struct{}

func (EquivalenceRelation) RelatedLeaf(a, b Term) bool {
	as, aok := a.(*Scalar)
	bs, bok := b.(*Scalar)
	if aok && bok {
		return as.Name == bs.Name
	}
	if numericConstantAgainstScalar(a, b) || numericConstantAgainstScalar(b, a) {
		return true
	}
	return a == b
}

// SubtypeRelation treats two Scalars as related when the library's class
// lattice says a <: b (or a ~ b), and two Classes when b is reachable
// through a's supertype DAG.
type SubtypeRelation struct {
	Library *Library
}

func (s SubtypeRelation) RelatedLeaf(a, b Term) bool {
	as, aok := a.(*Scalar)
	bs, bok := b.(*Scalar)
	if aok && bok {
		if as.Name == bs.Name {
			return true
		}
		if s.Library == nil {
			return false
		}
		return s.Library.subtypeRelatedScalars(as, bs)
	}
	if ac, ok := a.(*Class); ok {
		if bc, ok := b.(*Class); ok {
			return classSubtypeRelated(ac, bc)
		}
	}
	if numericConstantAgainstScalar(a, b) || numericConstantAgainstScalar(b, a) {
		return true
	}
	return a == b
}

// numericConstantAgainstScalar reports whether a numeric literal key
// (an int/float ConstantValue, e.g. a literal subscript index) may
// stand where a double is expected.
func numericConstantAgainstScalar(a, b Term) bool {
	cv, ok := a.(*ConstantValue)
	if !ok || (cv.Kind != ConstantInt && cv.Kind != ConstantFloat) {
		return false
	}
	s, ok := b.(*Scalar)
	return ok && s.text == "double"
}

// classSubtypeRelated walks a's supertype DAG looking for b. Cycles are
// a construction bug (§3), so the walk trusts the DAG to terminate.
func classSubtypeRelated(a, b *Class) bool {
	if a.Name == b.Name {
		return true
	}
	for _, sup := range a.Supertypes {
		sc, ok := unwrapAlias(sup).(*Class)
		if !ok {
			continue
		}
		if classSubtypeRelated(sc, b) {
			return true
		}
	}
	return false
}

// Related decomposes compound terms structurally, delegating to rel for
// anything it cannot decompose. It implements:
//   - DT expansion associativity (DT(r,[DT(r,[x,y]),z]) == DT(r,[x,y,z]))
//   - List absorption in tail position
//   - The "outputs in value position collapses to first member" rule
//   - Union subsumption (every member of the smaller side relates to some
//     member of the larger side)
func Related(rel Relation, a, b Term) bool {
	a = unwrapAlias(a)
	b = unwrapAlias(b)
	if a == b {
		return true
	}

	switch at := a.(type) {
	case *Tuple:
		bt, ok := b.(*Tuple)
		if !ok || len(at.Members) != len(bt.Members) {
			return false
		}
		return relatedAll(rel, at.Members, bt.Members)

	case *DestructuredTuple:
		bt, ok := b.(*DestructuredTuple)
		if !ok {
			return false
		}
		return relatedDestructured(rel, at, bt)

	case *Union:
		return relatedUnion(rel, at, b)

	case *Record:
		bt, ok := b.(*Record)
		if !ok || len(at.Fields) != len(bt.Fields) {
			return false
		}
		for _, fa := range at.Fields {
			found := false
			for _, fb := range bt.Fields {
				if fa.Name.Kind == fb.Name.Kind && fa.Name.text == fb.Name.text {
					if !Related(rel, fa.Type, fb.Type) {
						return false
					}
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true

	case *List:
		bt, ok := b.(*List)
		if !ok || len(at.Pattern) != len(bt.Pattern) {
			return false
		}
		return relatedAll(rel, at.Pattern, bt.Pattern)

	case *Abstraction:
		bt, ok := b.(*Abstraction)
		if !ok || at.Header != bt.Header {
			return false
		}
		return Related(rel, at.Inputs, bt.Inputs) && Related(rel, at.Outputs, bt.Outputs)

	case *ConstantValue:
		bt, ok := b.(*ConstantValue)
		if !ok {
			return false
		}
		return at.Kind == bt.Kind && at.text == bt.text

	default:
		if bu, ok := b.(*Union); ok && !isUnion(a) {
			return relatedUnion(rel, bu, a)
		}
		return rel.RelatedLeaf(a, b)
	}
}

func isUnion(t Term) bool { _, ok := t.(*Union); return ok }

func unwrapAlias(t Term) Term {
	for {
		a, ok := t.(*Alias)
		if !ok {
			return t
		}
		t = a.Source
	}
}

func relatedAll(rel Relation, as, bs []Term) bool {
	for i := range as {
		if !Related(rel, as[i], bs[i]) {
			return false
		}
	}
	return true
}

// relatedDestructured implements the flattening, value-usage collapse
// and list-tail absorption rules shared by Equivalent and the unifier's
// Simplifier.
func relatedDestructured(rel Relation, a, b *DestructuredTuple) bool {
	// Outputs matched against a single-slot rvalue peer: take only the
	// first output (the "value-usage" rule, §3 invariants). Raw slots,
	// before flattening, so an expanded pack slot passes over whole.
	if a.Use == DefinitionOutputs && b.Use == Rvalue && len(b.Members) == 1 && len(a.Members) >= 1 {
		return Related(rel, a.Members[0], b.Members[0])
	}
	if b.Use == DefinitionOutputs && a.Use == Rvalue && len(a.Members) == 1 && len(b.Members) >= 1 {
		return Related(rel, b.Members[0], a.Members[0])
	}

	lhs := flattenMembers(a.Members)
	rhs := flattenMembers(b.Members)

	if expanded, ok := absorbList(lhs, len(rhs)); ok {
		lhs = expanded
	}
	if expanded, ok := absorbList(rhs, len(lhs)); ok {
		rhs = expanded
	}
	if len(lhs) != len(rhs) {
		return false
	}
	return relatedAll(rel, lhs, rhs)
}

// absorbList expands a tail List pattern to absorb enough repetitions of
// its pattern to match targetLen members total. Returns ok=false when
// members has no tail List or the counts can't be made to match.
func absorbList(members []Term, targetLen int) ([]Term, bool) {
	if len(members) == 0 {
		return members, false
	}
	list, ok := members[len(members)-1].(*List)
	if !ok || len(list.Pattern) == 0 {
		return members, false
	}
	head := members[:len(members)-1]
	remaining := targetLen - len(head)
	if remaining < 0 || remaining%len(list.Pattern) != 0 {
		return members, false
	}
	expanded := append([]Term{}, head...)
	for i := 0; i < remaining/len(list.Pattern); i++ {
		expanded = append(expanded, list.Pattern...)
	}
	return expanded, true
}

// relatedUnion implements union subsumption: dedupe members under
// equivalence first, then require each member of the smaller side to
// relate to some member of the larger side. The sides are ordered by
// member count, not by position: a left-hand side with more members
// than the right is not rejected but checked the other way round.
func relatedUnion(rel Relation, u *Union, other Term) bool {
	ou, otherIsUnion := other.(*Union)

	aMembers := dedupeMembers(u.Members)
	var bMembers []Term
	if otherIsUnion {
		bMembers = dedupeMembers(ou.Members)
	} else {
		bMembers = []Term{other}
	}

	small, large := aMembers, bMembers
	if len(large) < len(small) {
		small, large = large, small
	}
	for _, m := range small {
		found := false
		for _, n := range large {
			if Related(rel, m, n) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func dedupeMembers(members []Term) []Term {
	eq := EquivalenceRelation{}
	var out []Term
	for _, m := range members {
		dup := false
		for _, o := range out {
			if Related(eq, m, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	return out
}

// Equivalent is the top-level equivalence test: reflexive, symmetric and
// transitive over the term algebra (§8).
func Equivalent(a, b Term) bool {
	return Related(EquivalenceRelation{}, a, b)
}
