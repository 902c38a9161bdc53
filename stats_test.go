package phylotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeStatistics_QuartetTree checks counts, total length and tip
// diameter on the reconstructed quartet.
func TestComputeStatistics_QuartetTree(t *testing.T) {
	dist, labels := quartetMatrix()
	tree, err := BuildTree(mustMatrix(t, dist, labels))
	require.NoError(t, err)

	stats := ComputeStatistics(tree)
	assert.Equal(t, 4, stats.NumTips)
	assert.Equal(t, 2, stats.NumInternalNodes)
	// 2 + 3 + 4 + 5 + 1; the root contributes nothing
	assert.InDelta(t, 15, stats.TotalBranchLength, 1e-12)
	// B to D: 3 + 1 + 5
	assert.InDelta(t, 9, stats.MaxTipDistance, 1e-12)
}

// TestComputeStatistics_RootBranchExcluded ignores a branch length stored on
// the root node.
func TestComputeStatistics_RootBranchExcluded(t *testing.T) {
	tree := &Tree{
		Nodes: []TreeNode{
			{Name: "A", BranchLength: 1, Leaf: true, Parent: 2},
			{Name: "B", BranchLength: 2, Leaf: true, Parent: 2},
			{BranchLength: 100, Children: []int{0, 1}, Parent: -1},
		},
		Root: 2,
	}
	stats := ComputeStatistics(tree)
	assert.Equal(t, 2, stats.NumTips)
	assert.Equal(t, 1, stats.NumInternalNodes)
	assert.InDelta(t, 3, stats.TotalBranchLength, 1e-12)
	assert.InDelta(t, 3, stats.MaxTipDistance, 1e-12)
}
