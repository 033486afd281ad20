package clc

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTree(t *testing.T, src string) *Tree {
	t.Helper()
	lex := newLexer(mustSource(t, src))
	p := newParser(lex)
	p.Parse()
	return p.tree
}

func mustSource(t *testing.T, src string) *charSource {
	t.Helper()
	s, err := newCharSource(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

// Parse-tree construction is a pure function of the token stream, so
// compiling the same input twice must build byte-for-byte identical
// trees (spec.md §8 testable property 3, specialized to the tree).
func TestTreeIsDeterministic(t *testing.T) {
	const src = "int x; int f(int a){ if (a<1) return 0; else return a; }"
	a := parseTree(t, src)
	b := parseTree(t, src)

	if diff := cmp.Diff(a, b, cmp.AllowUnexported(Tree{}, treeNode{})); diff != "" {
		t.Fatalf("parse trees differ (-first +second):\n%s", diff)
	}
}

func TestTreeRenderIndentsByDepth(t *testing.T) {
	tr := newTree()
	root := tr.addNode("Program")
	child := tr.addNode("Declaration-list")
	tr.attach(root, child)
	leaf := tr.addLeaf(Token{Kind: KEYWORD, Lexeme: "int", Line: 1})
	tr.attach(child, leaf)

	want := "Program\n  Declaration-list\n    (KEYWORD, int)\n"
	assert.Equal(t, want, tr.Render())
}

// Every non-epsilon, non-$ leaf in the tree corresponds, in order, to a
// token the scanner actually emitted (spec.md §8 testable property 5).
func TestTreeLeavesMatchTokenStream(t *testing.T) {
	const src = "int x; x = 1 + 2;"
	toks, errs := scanAll(t, src)
	require.Empty(t, errs)

	tr := parseTree(t, src)
	var leaves []string
	collectLeaves(tr, 0, &leaves)

	var want []string
	for _, tok := range toks {
		want = append(want, tok.String())
	}
	assert.Equal(t, want, leaves)
}

func TestTreeEpsilonForEmptyCompound(t *testing.T) {
	tr := parseTree(t, "int f(void) { }")
	// Local-declarations and Statement-list are both empty.
	assert.Equal(t, 2, countLabel(tr, "epsilon"))
}

func TestTreeEpsilonForAbsentElse(t *testing.T) {
	tr := parseTree(t, "int f(void) { if (1<2) return; }")
	// empty Local-declarations, plus the if's absent else part.
	assert.Equal(t, 2, countLabel(tr, "epsilon"))
}

func TestTreeEpsilonForEmptyArgs(t *testing.T) {
	tr := parseTree(t, "int f(void) { f(); }")
	// empty Local-declarations, plus the call's empty Args.
	assert.Equal(t, 2, countLabel(tr, "epsilon"))
}

func countLabel(tr *Tree, label string) int {
	n := 0
	for _, node := range tr.nodes {
		if node.label == label {
			n++
		}
	}
	return n
}

func collectLeaves(tr *Tree, idx int, out *[]string) {
	n := tr.nodes[idx]
	if len(n.children) == 0 {
		if n.label != "epsilon" && n.label != "$" {
			*out = append(*out, n.label)
		}
		return
	}
	for _, c := range n.children {
		collectLeaves(tr, c, out)
	}
}
