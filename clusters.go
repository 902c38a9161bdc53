package phylotree

// DefaultClusterThreshold is the branch-length budget used when callers
// do not pick one.
const DefaultClusterThreshold = 0.5

// ExtractClusters partitions node names into clusters by depth-first
// traversal from the root. A named node whose accumulated branch length
// from the start of the current cluster stays within the threshold
// joins that cluster; a node beyond it closes the cluster and starts a
// new one with the budget reset to zero for its subtree. Unnamed nodes
// pass through without joining or resetting. Internal node names take
// part alongside leaves; this is a heuristic, traversal-order-dependent
// partition, not a formal clustering. Every leaf name lands in exactly
// one cluster: leaves the walk never placed are appended as singletons.
func ExtractClusters(t *Tree, threshold float64) [][]string {
	var clusters [][]string
	var current []string
	placed := make(map[string]bool)

	type frame struct {
		node int
		dist float64
	}
	stack := []frame{{t.Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.Nodes[f.node]

		dist := f.dist
		if node.Name != "" && !placed[node.Name] {
			if dist <= threshold {
				current = append(current, node.Name)
			} else {
				if len(current) > 0 {
					clusters = append(clusters, current)
				}
				current = []string{node.Name}
				dist = 0
			}
			placed[node.Name] = true
		}

		children := node.Children
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			stack = append(stack, frame{c, dist + t.Nodes[c].BranchLength})
		}
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}

	// Any leaf the walk left unplaced becomes its own cluster, keeping
	// the exactly-one-cluster invariant.
	for _, n := range t.Preorder() {
		node := &t.Nodes[n]
		if node.Leaf && !placed[node.Name] {
			clusters = append(clusters, []string{node.Name})
			placed[node.Name] = true
		}
	}
	return clusters
}
