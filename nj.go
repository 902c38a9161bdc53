package phylotree

import (
	"fmt"
	"log"
	"math"
)

// BuildTree runs classic Neighbor-Joining over a validated distance
// matrix and returns the unrooted tree, drawn from the final three-way
// join node. The input matrix is never mutated; the build works on its
// own working copy. Negative branch lengths from non-additive distances
// are clamped to zero and counted on the tree, which is expected
// numeric behavior rather than an error.
func BuildTree(dm *DistanceMatrix) (*Tree, error) {
	if dm == nil || dm.Size() < 3 {
		return nil, fmt.Errorf("%w: neighbor joining needs at least 3 items", ErrInsufficientData)
	}
	n := dm.Size()
	total := 2*n - 2 // n leaves plus n-2 internal nodes

	tree := &Tree{
		Nodes: make([]TreeNode, 0, total),
		Root:  -1,
	}

	// Working distances indexed by arena node id; grows as internal
	// nodes are created.
	d := make([][]float64, total)
	for i := range d {
		d[i] = make([]float64, total)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d[i][j] = dm.dist[i][j]
		}
	}

	active := make([]int, 0, n)
	for _, label := range dm.labels {
		active = append(active, len(tree.Nodes))
		tree.Nodes = append(tree.Nodes, TreeNode{Name: label, Parent: -1, Leaf: true})
	}

	for m := len(active); m > 3; m = len(active) {
		// Net divergence of every active node over the active set.
		r := make([]float64, m)
		for ai, i := range active {
			var sum float64
			for _, k := range active {
				sum += d[i][k]
			}
			r[ai] = sum
		}

		// Minimize the Q-criterion. Strict less-than keeps the first
		// minimum scanning i then j ascending, so ties resolve to the
		// lowest pair in active-set order.
		m2 := float64(m - 2)
		bestI, bestJ := -1, -1
		bestQ := math.Inf(1)
		for ai := 0; ai < m; ai++ {
			for aj := ai + 1; aj < m; aj++ {
				q := m2*d[active[ai]][active[aj]] - r[ai] - r[aj]
				if q < bestQ {
					bestQ = q
					bestI, bestJ = ai, aj
				}
			}
		}

		i, j := active[bestI], active[bestJ]
		dij := d[i][j]

		// New internal node u becomes the parent of i and j. The second
		// branch is derived from the unclamped first one.
		lenI := 0.5*dij + (r[bestI]-r[bestJ])/(2*m2)
		lenJ := dij - lenI
		u := len(tree.Nodes)
		tree.Nodes = append(tree.Nodes, TreeNode{Parent: -1, Children: []int{i, j}})
		tree.Nodes[i].Parent = u
		tree.Nodes[i].BranchLength = tree.clampBranch(lenI)
		tree.Nodes[j].Parent = u
		tree.Nodes[j].BranchLength = tree.clampBranch(lenJ)

		for _, k := range active {
			if k == i || k == j {
				continue
			}
			duk := 0.5 * (d[i][k] + d[j][k] - dij)
			d[u][k] = duk
			d[k][u] = duk
		}

		// Drop i and j, append u; survivor order is preserved.
		next := make([]int, 0, m-1)
		for _, k := range active {
			if k != i && k != j {
				next = append(next, k)
			}
		}
		active = append(next, u)
	}

	// Closed-form three-point join under the root.
	a, b, c := active[0], active[1], active[2]
	dab, dac, dbc := d[a][b], d[a][c], d[b][c]
	root := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, TreeNode{Parent: -1, Children: []int{a, b, c}})
	tree.Nodes[a].Parent = root
	tree.Nodes[a].BranchLength = tree.clampBranch(0.5 * (dab + dac - dbc))
	tree.Nodes[b].Parent = root
	tree.Nodes[b].BranchLength = tree.clampBranch(0.5 * (dab + dbc - dac))
	tree.Nodes[c].Parent = root
	tree.Nodes[c].BranchLength = tree.clampBranch(0.5 * (dac + dbc - dab))
	tree.Root = root

	if tree.NegativeBranches > 0 {
		log.Printf("⚠️  Clamped %d negative branch lengths to zero (non-additive distances)", tree.NegativeBranches)
	}

	return tree, nil
}
