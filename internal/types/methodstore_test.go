package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodStoreAddAndLookup(t *testing.T) {
	s := newTestStore()
	ms := NewMethodStore()
	header := Header{Kind: BinaryOp, Op: "+"}
	method := s.MakeAbstraction(header, s.MakeInputDestructuredTuple(), s.MakeOutputDestructuredTuple())

	require.NoError(t, ms.Add("double", header, method))

	got, ok := ms.Lookup("double", header)
	require.True(t, ok)
	assert.Same(t, method, got)

	_, ok = ms.Lookup("char", header)
	assert.False(t, ok, "a header registered on one class is invisible to another")
}

func TestMethodStoreRejectsOverlap(t *testing.T) {
	s := newTestStore()
	ms := NewMethodStore()
	header := Header{Kind: UnaryOp, Op: "-"}
	m1 := s.MakeAbstraction(header, s.MakeInputDestructuredTuple(), s.MakeOutputDestructuredTuple())
	m2 := s.MakeAbstraction(header, s.MakeInputDestructuredTuple(), s.MakeOutputDestructuredTuple())

	require.NoError(t, ms.Add("double", header, m1))
	err := ms.Add("double", header, m2)
	assert.Error(t, err, "re-registering the same header for the same class is rejected")
}

func TestMethodStoreHeadersPreservesOrder(t *testing.T) {
	s := newTestStore()
	ms := NewMethodStore()
	plus := Header{Kind: BinaryOp, Op: "+"}
	minus := Header{Kind: BinaryOp, Op: "-"}
	m := s.MakeAbstraction(plus, s.MakeInputDestructuredTuple(), s.MakeOutputDestructuredTuple())

	require.NoError(t, ms.Add("double", plus, m))
	require.NoError(t, ms.Add("double", minus, m))

	assert.Equal(t, []Header{plus, minus}, ms.Headers("double"))
}
