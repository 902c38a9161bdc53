package phylotree

// TreeStatistics summarizes a built tree.
type TreeStatistics struct {
	NumTips           int     `json:"num_tips"`
	NumInternalNodes  int     `json:"num_internal_nodes"`
	TotalBranchLength float64 `json:"total_branch_length"`
	MaxTipDistance    float64 `json:"max_tip_distance"`
}

// ComputeStatistics counts tips and internal nodes, sums every branch
// length (the root has none) and finds the maximum leaf-to-leaf path
// distance.
func ComputeStatistics(t *Tree) TreeStatistics {
	var stats TreeStatistics
	for i := range t.Nodes {
		if t.Nodes[i].Leaf {
			stats.NumTips++
		} else {
			stats.NumInternalNodes++
		}
		if i != t.Root {
			stats.TotalBranchLength += t.Nodes[i].BranchLength
		}
	}
	stats.MaxTipDistance = maxTipDistance(t)
	return stats
}

// maxTipDistance returns the largest path distance over all leaf pairs,
// accumulating distances from each leaf in turn over the undirected
// tree.
func maxTipDistance(t *Tree) float64 {
	var max float64
	for i := range t.Nodes {
		if !t.Nodes[i].Leaf {
			continue
		}
		dist := t.distancesFrom(i)
		for j := i + 1; j < len(t.Nodes); j++ {
			if t.Nodes[j].Leaf && dist[j] > max {
				max = dist[j]
			}
		}
	}
	return max
}
