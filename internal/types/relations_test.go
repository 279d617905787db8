package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store { return NewStore(nil) }

func TestEquivalentReflexiveSymmetricTransitive(t *testing.T) {
	s := newTestStore()
	a := s.MakeScalar("double")
	b := s.MakeScalar("double")
	c := s.MakeScalar("char")

	require.True(t, Equivalent(a, a), "reflexive")
	require.True(t, Equivalent(a, b) == Equivalent(b, a), "symmetric")
	require.False(t, Equivalent(a, c))

	tup1 := s.MakeTuple(a, c)
	tup2 := s.MakeTuple(b, c)
	tup3 := s.MakeTuple(s.MakeScalar("double"), c)
	assert.True(t, Equivalent(tup1, tup2))
	assert.True(t, Equivalent(tup2, tup3))
	assert.True(t, Equivalent(tup1, tup3), "transitive via structural equality")
}

func TestSubtypeRelationLattice(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	rel := lib.SubtypeRelation()

	assert.True(t, rel.RelatedLeaf(lib.SubSubDouble, lib.Double), "sub-sub-double <: double")
	assert.True(t, rel.RelatedLeaf(lib.SubDouble, lib.Double))
	assert.True(t, rel.RelatedLeaf(lib.Double, lib.Double), "reflexive")
	assert.False(t, rel.RelatedLeaf(lib.Double, lib.SubDouble), "not symmetric")
	assert.False(t, rel.RelatedLeaf(lib.Char, lib.Double))
}

func TestDestructuredTupleMemberwiseComparison(t *testing.T) {
	s := newTestStore()
	x := s.MakeScalar("double")
	y := s.MakeScalar("char")

	a := s.MakeDestructuredTuple(Rvalue, x, y)
	b := s.MakeDestructuredTuple(Rvalue, x, y)
	assert.True(t, Equivalent(a, b))

	different := s.MakeDestructuredTuple(Rvalue, y, x)
	assert.False(t, Equivalent(a, different), "member order matters outside the list-absorption/value-collapse rules")
}

func TestListAbsorptionInTailPosition(t *testing.T) {
	s := newTestStore()
	elem := s.MakeScalar("double")

	withTail := s.MakeDestructuredTuple(Rvalue, elem, s.MakeList(elem))
	threeElems := s.MakeDestructuredTuple(Rvalue, elem, elem, elem)

	assert.True(t, Equivalent(withTail, threeElems), "list tail absorbs remaining members")

	twoElems := s.MakeDestructuredTuple(Rvalue, elem, elem)
	assert.False(t, Equivalent(twoElems, s.MakeDestructuredTuple(Rvalue, elem, s.MakeList(elem, elem))),
		"absorption requires an exact multiple of the pattern length")
}

func TestDestructuredTupleExpansionAssociativity(t *testing.T) {
	s := newTestStore()
	x := s.MakeScalar("double")
	y := s.MakeScalar("char")
	z := s.MakeScalar("logical")

	nested := s.MakeRvalueDestructuredTuple(s.MakeRvalueDestructuredTuple(x, y), z)
	flat := s.MakeRvalueDestructuredTuple(x, y, z)

	assert.True(t, Equivalent(nested, flat), "DT(r,[DT(r,[x,y]),z]) == DT(r,[x,y,z])")

	deeper := s.MakeRvalueDestructuredTuple(s.MakeRvalueDestructuredTuple(x, s.MakeRvalueDestructuredTuple(y)), z)
	assert.True(t, Equivalent(deeper, flat), "flattening is recursive")
}

func TestClassSubtypeWalksSupertypeDAG(t *testing.T) {
	s := newTestStore()
	lib := NewLibrary(s, nil)
	rel := lib.SubtypeRelation()

	base := s.MakeClass("Base", s.MakeRecord())
	mid := s.MakeClass("Mid", s.MakeRecord(), base)
	leaf := s.MakeClass("Leaf", s.MakeRecord(), mid)

	assert.True(t, rel.RelatedLeaf(leaf, base), "transitive through the DAG")
	assert.True(t, rel.RelatedLeaf(leaf, leaf), "reflexive")
	assert.False(t, rel.RelatedLeaf(base, leaf), "not symmetric")
}

func TestOutputsValuePositionCollapse(t *testing.T) {
	s := newTestStore()
	elem := s.MakeScalar("double")
	outputs := s.MakeOutputDestructuredTuple(elem, s.MakeScalar("char"))
	rvalue := s.MakeRvalueDestructuredTuple(elem)

	assert.True(t, Equivalent(outputs, rvalue), "a single-slot rvalue peer takes only the first output")
}

func TestUnionSubsumption(t *testing.T) {
	s := newTestStore()
	a := s.MakeScalar("double")
	b := s.MakeScalar("char")
	u := s.MakeUnion(a, b)

	assert.True(t, Equivalent(u, a), "a member of the union is subsumed by it")
	assert.True(t, Equivalent(a, u), "subsumption is direction-agnostic at the top level")

	c := s.MakeScalar("logical")
	assert.False(t, Equivalent(u, c))
}
