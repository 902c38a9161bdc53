package phylotree

// TreeNode is one node in a tree arena. Children hold arena indices in
// insertion order, which is the merge order and therefore significant
// for deterministic traversal. Parent is a plain arena index, -1 for
// the root; the arena owns all nodes.
type TreeNode struct {
	Name         string  `json:"name"`
	BranchLength float64 `json:"branch_length"`
	Children     []int   `json:"children,omitempty"`
	Parent       int     `json:"parent"`
	Leaf         bool    `json:"leaf"`
}

// Tree owns the flat node collection for one built tree. For n input
// labels it holds exactly n leaves and n-2 internal nodes; Root is the
// final three-way join. NegativeBranches counts branch lengths clamped
// to zero during construction (expected with non-additive distances,
// not an error).
type Tree struct {
	Nodes            []TreeNode `json:"nodes"`
	Root             int        `json:"root"`
	NegativeBranches int        `json:"negative_branches,omitempty"`
}

// NumLeaves returns the number of leaf nodes.
func (t *Tree) NumLeaves() int {
	count := 0
	for i := range t.Nodes {
		if t.Nodes[i].Leaf {
			count++
		}
	}
	return count
}

// NumInternal returns the number of internal nodes.
func (t *Tree) NumInternal() int {
	return len(t.Nodes) - t.NumLeaves()
}

// Preorder returns all node indices depth-first from the root, children
// in stored order.
func (t *Tree) Preorder() []int {
	if len(t.Nodes) == 0 || t.Root < 0 {
		return nil
	}
	order := make([]int, 0, len(t.Nodes))
	stack := []int{t.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, n)
		children := t.Nodes[n].Children
		// Reversed push so the first child is visited first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return order
}

// LeafNames returns the leaf names in depth-first order.
func (t *Tree) LeafNames() []string {
	var names []string
	for _, n := range t.Preorder() {
		if t.Nodes[n].Leaf {
			names = append(names, t.Nodes[n].Name)
		}
	}
	return names
}

// subtreeLeaves returns the arena indices of all leaves under node, in
// depth-first order.
func (t *Tree) subtreeLeaves(node int) []int {
	var leaves []int
	stack := []int{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.Nodes[n].Leaf {
			leaves = append(leaves, n)
			continue
		}
		children := t.Nodes[n].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return leaves
}

// distancesFrom returns the path distance from start to every node,
// walking the tree as an undirected graph. Child edges carry the
// child's branch length.
func (t *Tree) distancesFrom(start int) []float64 {
	dist := make([]float64, len(t.Nodes))
	visited := make([]bool, len(t.Nodes))
	visited[start] = true
	stack := []int{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.Nodes[n]
		if p := node.Parent; p >= 0 && !visited[p] {
			visited[p] = true
			dist[p] = dist[n] + node.BranchLength
			stack = append(stack, p)
		}
		for _, c := range node.Children {
			if !visited[c] {
				visited[c] = true
				dist[c] = dist[n] + t.Nodes[c].BranchLength
				stack = append(stack, c)
			}
		}
	}
	return dist
}

// clampBranch clamps a negative branch length from non-additive
// distances to zero and counts the occurrence.
func (t *Tree) clampBranch(length float64) float64 {
	if length < 0 {
		t.NegativeBranches++
		return 0
	}
	return length
}
