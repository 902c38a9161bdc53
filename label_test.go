package phylotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// pairTree builds a root over an internal node covering the first two leaves
// plus the third leaf as a direct child.
func pairTree(leaf0, leaf1, leaf2 string) *Tree {
	return &Tree{
		Nodes: []TreeNode{
			{Name: leaf0, Leaf: true, Parent: 3},
			{Name: leaf1, Leaf: true, Parent: 3},
			{Name: leaf2, Leaf: true, Parent: 4},
			{Children: []int{0, 1}, Parent: 4},
			{Children: []int{3, 2}, Parent: -1},
		},
		Root: 4,
	}
}

func TestCategoryOf(t *testing.T) {
	cat, ok := categoryOf("POLITICS_003_Some_headline")
	assert.True(t, ok)
	assert.Equal(t, "POLITICS", cat)

	_, ok = categoryOf("plainname")
	assert.False(t, ok)

	cat, ok = categoryOf("_cluster")
	assert.True(t, ok)
	assert.Equal(t, "", cat)
}

// TestLabelInternalNodes_MajorityCluster checks the strict majority rule and
// the uniqueness suffix on repeated names.
func TestLabelInternalNodes_MajorityCluster(t *testing.T) {
	tree := pairTree("TECH_001_a", "TECH_002_b", "SPORTS_001_c")
	LabelInternalNodes(tree)

	// Preorder visits the root before the inner node, so the root keeps the
	// base name and the inner node gets the suffix
	assert.Equal(t, "TECH_cluster", tree.Nodes[4].Name)
	assert.Equal(t, "TECH_cluster_2", tree.Nodes[3].Name)
}

// TestLabelInternalNodes_MixedName uses the two leading categories when no
// strict majority exists.
func TestLabelInternalNodes_MixedName(t *testing.T) {
	tree := pairTree("TECH_001_a", "SPORTS_001_b", "WORLD_001_c")
	LabelInternalNodes(tree)

	// Equal counts everywhere: first encounter in leaf order wins
	assert.Equal(t, "TECH_SPORTS_mixed", tree.Nodes[4].Name)
	assert.Equal(t, "TECH_SPORTS_mixed_2", tree.Nodes[3].Name)
}

// TestLabelInternalNodes_TopTwoByCount picks the two most frequent categories
// for mixed names.
func TestLabelInternalNodes_TopTwoByCount(t *testing.T) {
	tree := &Tree{
		Nodes: []TreeNode{
			{Name: "WORLD_001_a", Leaf: true, Parent: 5},
			{Name: "WORLD_002_b", Leaf: true, Parent: 5},
			{Name: "TECH_001_c", Leaf: true, Parent: 6},
			{Name: "TECH_002_d", Leaf: true, Parent: 6},
			{Name: "ARTS_001_e", Leaf: true, Parent: 7},
			{Children: []int{0, 1}, Parent: 7},
			{Children: []int{2, 3}, Parent: 7},
			{Children: []int{5, 6, 4}, Parent: -1},
		},
		Root: 7,
	}
	LabelInternalNodes(tree)

	// 2 WORLD + 2 TECH + 1 ARTS: no strict majority, WORLD and TECH lead
	assert.Equal(t, "WORLD_TECH_mixed", tree.Nodes[7].Name)
	assert.Equal(t, "WORLD_cluster", tree.Nodes[5].Name)
	assert.Equal(t, "TECH_cluster", tree.Nodes[6].Name)
}

// TestLabelInternalNodes_UncategorizedLeaves leaves nodes unnamed when no
// leaf carries a category.
func TestLabelInternalNodes_UncategorizedLeaves(t *testing.T) {
	tree := pairTree("alpha", "beta", "gamma")
	LabelInternalNodes(tree)

	assert.Equal(t, "", tree.Nodes[3].Name)
	assert.Equal(t, "", tree.Nodes[4].Name)
}

// TestLabelInternalNodes_PartialCategories counts only categorized leaves.
func TestLabelInternalNodes_PartialCategories(t *testing.T) {
	tree := pairTree("TECH_001_a", "plain", "alsoplain")
	LabelInternalNodes(tree)

	// The single categorized leaf is a strict majority of one
	assert.Equal(t, "TECH_cluster", tree.Nodes[4].Name)
	assert.Equal(t, "TECH_cluster_2", tree.Nodes[3].Name)
}

// TestLabelInternalNodes_Idempotent recomputes identical names on a second
// run over the same tree.
func TestLabelInternalNodes_Idempotent(t *testing.T) {
	tree := pairTree("TECH_001_a", "TECH_002_b", "SPORTS_001_c")
	LabelInternalNodes(tree)
	first := []string{tree.Nodes[3].Name, tree.Nodes[4].Name}

	LabelInternalNodes(tree)
	assert.Equal(t, first, []string{tree.Nodes[3].Name, tree.Nodes[4].Name})
}

func TestLabelInternalNodes_LeavesUntouched(t *testing.T) {
	tree := pairTree("TECH_001_a", "TECH_002_b", "SPORTS_001_c")
	LabelInternalNodes(tree)

	assert.Equal(t, "TECH_001_a", tree.Nodes[0].Name)
	assert.Equal(t, "TECH_002_b", tree.Nodes[1].Name)
	assert.Equal(t, "SPORTS_001_c", tree.Nodes[2].Name)
}
