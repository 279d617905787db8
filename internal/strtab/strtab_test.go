package strtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternStability(t *testing.T) {
	tbl := New()
	a := tbl.Intern("double")
	b := tbl.Intern("double")
	assert.Equal(t, a, b)
	assert.Equal(t, "double", tbl.Lookup(a))
}

func TestInternDistinctStrings(t *testing.T) {
	tbl := New()
	a := tbl.Intern("double")
	b := tbl.Intern("char")
	assert.NotEqual(t, a, b)
}

func TestInternNFCNormalization(t *testing.T) {
	tbl := New()
	nfc := tbl.Intern("café")   // é precomposed
	nfd := tbl.Intern("café") // e + combining acute
	assert.Equal(t, nfc, nfd)
}

func TestInternCompound(t *testing.T) {
	tbl := New()
	a := tbl.Intern("a")
	b := tbl.Intern("b")
	c := tbl.Intern("c")
	compound := tbl.InternCompound(a, b, c)
	require.NotEqual(t, Invalid, compound)
	assert.Equal(t, "a.b.c", tbl.Lookup(compound))
}

func TestLookupUnknownID(t *testing.T) {
	tbl := New()
	assert.Equal(t, "", tbl.Lookup(ID(999)))
}
