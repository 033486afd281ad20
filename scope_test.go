package clc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeAllocateIsSequentialAndShared(t *testing.T) {
	s := newScope()
	a := s.allocate(1)
	b := s.allocate(3)
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 4, s.allocate(1))
}

func TestScopeDeclareAndLookupNestedShadowing(t *testing.T) {
	s := newScope()
	g := &Symbol{Name: "x", Kind: symVar, Address: s.allocate(1)}
	require.True(t, s.declareInCurrent(g))

	s.push()
	local := &Symbol{Name: "x", Kind: symVar, Address: s.allocate(1)}
	require.True(t, s.declareInCurrent(local))

	found, ok := s.lookup("x")
	require.True(t, ok)
	assert.Same(t, local, found)

	s.pop()
	found, ok = s.lookup("x")
	require.True(t, ok)
	assert.Same(t, g, found)
}

func TestScopeDeclareInCurrentRejectsDuplicate(t *testing.T) {
	s := newScope()
	sym := &Symbol{Name: "n", Kind: symVar}
	assert.True(t, s.declareInCurrent(sym))
	assert.False(t, s.declareInCurrent(&Symbol{Name: "n", Kind: symVar}))
}

func TestScopeLookupFuncOnlyGlobal(t *testing.T) {
	s := newScope()
	fn := &Symbol{Name: "f", Kind: symFunc}
	require.True(t, s.declareInCurrent(fn))
	s.push()
	_, ok := s.lookup("f")
	require.True(t, ok) // visible through the chain

	found, ok := s.lookupFunc("f")
	require.True(t, ok)
	assert.Same(t, fn, found)
}

func TestScopeDeclareForwardResolvesLaterLookups(t *testing.T) {
	s := newScope()
	_, ok := s.lookup("y")
	require.False(t, ok)

	sym := s.declareForward("y", 0)
	assert.Equal(t, symVar, sym.Kind)

	found, ok := s.lookup("y")
	require.True(t, ok)
	assert.Same(t, sym, found)
}

func TestScopeDeclareForwardArray(t *testing.T) {
	s := newScope()
	sym := s.declareForward("arr", 5)
	assert.Equal(t, symArray, sym.Kind)
	assert.Equal(t, 5, sym.ArraySize)
}

func TestSymbolTablePreloadOrderAndDedup(t *testing.T) {
	tbl := newSymbolTable()
	assert.Equal(t, ReservedWords, tbl.Names())
	tbl.insert("if") // keyword already present, must not duplicate
	tbl.insert("foo")
	tbl.insert("foo")
	assert.Equal(t, append(append([]string{}, ReservedWords...), "foo"), tbl.Names())
}
