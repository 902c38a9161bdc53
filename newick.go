package phylotree

import (
	"fmt"
	"strconv"
	"strings"
)

// branchPrecision is the significant-digit count for branch lengths,
// keeping output stable across runs.
const branchPrecision = 6

// WriteNewick renders the tree in Newick form: leaves as "name:length",
// internal nodes as "(child,child)name:length", the root without a
// trailing length, terminated by a semicolon. A node name containing a
// reserved character fails with ErrSerialization; labels are sanitized
// upstream, so hitting this means a bug in the caller.
func WriteNewick(t *Tree) (string, error) {
	if t == nil || t.Root < 0 {
		return "", fmt.Errorf("%w: empty tree", ErrSerialization)
	}
	var b strings.Builder
	if err := writeNode(t, t.Root, true, &b); err != nil {
		return "", err
	}
	b.WriteByte(';')
	return b.String(), nil
}

func writeNode(t *Tree, n int, isRoot bool, b *strings.Builder) error {
	node := &t.Nodes[n]
	if strings.ContainsAny(node.Name, newickReserved) {
		return fmt.Errorf("%w: name %q contains a reserved character", ErrSerialization, node.Name)
	}
	if len(node.Children) > 0 {
		b.WriteByte('(')
		for i, c := range node.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeNode(t, c, false, b); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	}
	b.WriteString(node.Name)
	if !isRoot {
		b.WriteByte(':')
		b.WriteString(formatBranchLength(node.BranchLength))
	}
	return nil
}

// formatBranchLength renders a branch length with six significant
// digits; very small values come out in exponent form, which the parser
// accepts back.
func formatBranchLength(length float64) string {
	return strconv.FormatFloat(length, 'g', branchPrecision, 64)
}

// ParseNewick reads a Newick string back into a tree arena. It accepts
// the subset this package writes: unquoted labels, optional branch
// lengths (absent ones parse as zero), no comments. Malformed input
// fails with ErrSerialization.
func ParseNewick(s string) (*Tree, error) {
	p := newickParser{input: strings.TrimSpace(s)}
	tree := &Tree{Root: -1}
	root, err := p.parseNode(tree)
	if err != nil {
		return nil, err
	}
	if !p.consume(';') {
		return nil, fmt.Errorf("%w: missing terminating semicolon at offset %d", ErrSerialization, p.pos)
	}
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("%w: trailing characters after semicolon", ErrSerialization)
	}
	tree.Root = root
	return tree, nil
}

type newickParser struct {
	input string
	pos   int
}

func (p *newickParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *newickParser) consume(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// parseNode reads one node with its optional subtree, appends it to the
// arena and returns its index. Children land in the arena before their
// parent.
func (p *newickParser) parseNode(t *Tree) (int, error) {
	var children []int
	if p.consume('(') {
		for {
			child, err := p.parseNode(t)
			if err != nil {
				return -1, err
			}
			children = append(children, child)
			if p.consume(',') {
				continue
			}
			break
		}
		if !p.consume(')') {
			return -1, fmt.Errorf("%w: unbalanced parenthesis at offset %d", ErrSerialization, p.pos)
		}
	}

	name := p.parseName()
	var length float64
	if p.consume(':') {
		l, err := p.parseLength()
		if err != nil {
			return -1, err
		}
		length = l
	}

	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, TreeNode{
		Name:         name,
		BranchLength: length,
		Children:     children,
		Parent:       -1,
		Leaf:         len(children) == 0,
	})
	for _, c := range children {
		t.Nodes[c].Parent = idx
	}
	return idx, nil
}

// parseName reads up to the next structural character.
func (p *newickParser) parseName() string {
	start := p.pos
	for p.pos < len(p.input) && !strings.ContainsRune(newickReserved, rune(p.input[p.pos])) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *newickParser) parseLength() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return 0, fmt.Errorf("%w: missing branch length at offset %d", ErrSerialization, start)
	}
	length, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad branch length %q", ErrSerialization, p.input[start:p.pos])
	}
	return length, nil
}
