package phylotree

import (
	"fmt"
	"sort"
	"strings"
)

// categoryOf extracts the category prefix from a leaf name: the
// substring before the first underscore. Names without an underscore
// carry no category.
func categoryOf(name string) (string, bool) {
	idx := strings.Index(name, "_")
	if idx < 0 {
		return "", false
	}
	return name[:idx], true
}

// LabelInternalNodes names every internal node from the categories of
// its descendant leaves. A strict majority category (> 50% of
// categorized leaves) yields "{category}_cluster"; otherwise the two
// most frequent categories yield "{cat1}_{cat2}_mixed", ties broken by
// first encounter in leaf order. Nodes whose leaves carry no category
// stay unnamed. A second pass makes names globally unique by appending
// _2, _3, ... to repeats, counted per base name. All internal names are
// recomputed from scratch, so relabeling an unchanged tree yields the
// same names. The root gets no special treatment; leaves are untouched.
func LabelInternalNodes(t *Tree) {
	order := t.Preorder()
	for _, n := range order {
		if t.Nodes[n].Leaf {
			continue
		}
		t.Nodes[n].Name = majorityName(t, n)
	}

	counts := make(map[string]int)
	for _, n := range order {
		node := &t.Nodes[n]
		if node.Leaf || node.Name == "" {
			continue
		}
		counts[node.Name]++
		if c := counts[node.Name]; c > 1 {
			node.Name = fmt.Sprintf("%s_%d", node.Name, c)
		}
	}
}

// majorityName derives one internal node's name from the category
// frequencies of its descendant leaves.
func majorityName(t *Tree, node int) string {
	counts := make(map[string]int)
	var order []string // first-encounter order, breaks count ties
	total := 0
	for _, leaf := range t.subtreeLeaves(node) {
		cat, ok := categoryOf(t.Nodes[leaf].Name)
		if !ok {
			continue
		}
		if counts[cat] == 0 {
			order = append(order, cat)
		}
		counts[cat]++
		total++
	}
	if total == 0 {
		return ""
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	top := order[0]
	if counts[top]*2 > total {
		return top + "_cluster"
	}
	if len(order) >= 2 {
		return order[0] + "_" + order[1] + "_mixed"
	}
	return top + "_cluster"
}
