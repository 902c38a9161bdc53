package phylotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namedTree builds ((A:1.5,B:2.5)AB:0.5,C:3) with an unnamed root.
func namedTree() *Tree {
	return &Tree{
		Nodes: []TreeNode{
			{Name: "A", BranchLength: 1.5, Leaf: true, Parent: 2},
			{Name: "B", BranchLength: 2.5, Leaf: true, Parent: 2},
			{Name: "AB", BranchLength: 0.5, Children: []int{0, 1}, Parent: 4},
			{Name: "C", BranchLength: 3, Leaf: true, Parent: 4},
			{Children: []int{2, 3}, Parent: -1},
		},
		Root: 4,
	}
}

func TestWriteNewick_NamedInternalNodes(t *testing.T) {
	s, err := WriteNewick(namedTree())
	require.NoError(t, err)
	assert.Equal(t, "((A:1.5,B:2.5)AB:0.5,C:3);", s)
}

// TestWriteNewick_SixSignificantDigits checks the branch length formatting.
func TestWriteNewick_SixSignificantDigits(t *testing.T) {
	tree := namedTree()
	tree.Nodes[0].BranchLength = 0.123456789
	tree.Nodes[1].BranchLength = 0.0000001
	s, err := WriteNewick(tree)
	require.NoError(t, err)
	assert.Contains(t, s, "A:0.123457")
	assert.Contains(t, s, "B:1e-07")
}

func TestWriteNewick_ReservedCharacterName(t *testing.T) {
	tree := namedTree()
	tree.Nodes[3].Name = "C:bad"
	_, err := WriteNewick(tree)
	require.ErrorIs(t, err, ErrSerialization)
}

func TestWriteNewick_EmptyTree(t *testing.T) {
	_, err := WriteNewick(nil)
	require.ErrorIs(t, err, ErrSerialization)

	_, err = WriteNewick(&Tree{Root: -1})
	require.ErrorIs(t, err, ErrSerialization)
}

// TestParseNewick_RoundTrip reparses written output into the same structure
// and text.
func TestParseNewick_RoundTrip(t *testing.T) {
	want := "((A:1.5,B:2.5)AB:0.5,C:3);"
	tree, err := ParseNewick(want)
	require.NoError(t, err)

	require.Len(t, tree.Nodes, 5)
	root := tree.Nodes[tree.Root]
	require.Len(t, root.Children, 2)

	ab := tree.Nodes[root.Children[0]]
	assert.Equal(t, "AB", ab.Name)
	assert.InDelta(t, 0.5, ab.BranchLength, 1e-12)
	assert.False(t, ab.Leaf)

	c := tree.Nodes[root.Children[1]]
	assert.Equal(t, "C", c.Name)
	assert.True(t, c.Leaf)
	assert.Equal(t, tree.Root, c.Parent)

	got, err := WriteNewick(tree)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestParseNewick_BranchLengthsOptional parses names without lengths as zero.
func TestParseNewick_BranchLengthsOptional(t *testing.T) {
	tree, err := ParseNewick("(A,B)AB;")
	require.NoError(t, err)
	assert.Equal(t, 0.0, tree.Nodes[0].BranchLength)
	assert.Equal(t, "AB", tree.Nodes[tree.Root].Name)
}

func TestParseNewick_SurroundingWhitespace(t *testing.T) {
	_, err := ParseNewick("  (A:1,B:2);\n")
	require.NoError(t, err)
}

func TestParseNewick_Malformed(t *testing.T) {
	cases := map[string]string{
		"missing semicolon":   "(A:1,B:2)",
		"unbalanced":          "((A:1,B:2);",
		"trailing characters": "(A:1,B:2);extra",
		"bad branch length":   "(A:1e,B:1);",
		"missing length":      "(A:,B:1);",
	}
	for name, input := range cases {
		_, err := ParseNewick(input)
		require.ErrorIs(t, err, ErrSerialization, name)
	}
}
