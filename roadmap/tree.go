package roadmap

import (
	"fmt"
	"io"
	"strings"
)

// TreeNode node in a roadmap tree
type TreeNode struct {
	Label  string               `json:"label"`
	NodeID string               `json:"nodeId,omitempty"` // only set when an entry's path ends here
	Nodes  map[string]*TreeNode `json:"nodes"`            // child nodes by label
	Index  []string             `json:"index"`            // defines the order of the child nodes
}

// NewTreeNode constructor
func NewTreeNode(label string) *TreeNode {
	return &TreeNode{
		Label: label,
		Nodes: map[string]*TreeNode{},
		Index: []string{},
	}
}

// BuildTree folds index entries into a tree below rootLabel.
//
// Entries outside of rootLabel are skipped. Entries sharing a label prefix
// converge on the same nodes. If several entries end on the same path the
// last one's node id wins.
func BuildTree(entries []IndexEntry, rootLabel string) *TreeNode {
	root := NewTreeNode(rootLabel)
	for _, entry := range entries {
		parts := entry.Path()
		if parts[0] != rootLabel {
			continue
		}
		cur := root
		for _, label := range parts[1:] {
			cur = cur.child(label)
		}
		cur.NodeID = entry.NodeID
	}
	return root
}

// Child returns the child with the given label
func (n *TreeNode) Child(label string) (*TreeNode, bool) {
	child, ok := n.Nodes[label]
	return child, ok
}

// Children returns the child nodes in insertion order
func (n *TreeNode) Children() []*TreeNode {
	children := make([]*TreeNode, 0, len(n.Index))
	for _, label := range n.Index {
		children = append(children, n.Nodes[label])
	}
	return children
}

// IsLeaf has the node no children
func (n *TreeNode) IsLeaf() bool {
	return len(n.Index) == 0
}

// NameSlug slug of the node label
func (n *TreeNode) NameSlug() string {
	return Slugify(n.Label)
}

// Key composite key or an empty string if the node carries no node id
func (n *TreeNode) Key() string {
	if n.NodeID == "" {
		return ""
	}
	return Key(n.NameSlug(), n.NodeID)
}

// Count number of nodes in the tree including n
func (n *TreeNode) Count() int {
	count := 1
	for _, child := range n.Nodes {
		count += child.Count()
	}
	return count
}

// Walk visits the tree depth first in insertion order. Returning false from
// fn skips the children of the visited node.
func (n *TreeNode) Walk(fn func(path []string, node *TreeNode) bool) {
	n.walk(nil, fn)
}

// Fprint essentially a recursive dump
func (n *TreeNode) Fprint(w io.Writer) error {
	var err error
	n.Walk(func(path []string, node *TreeNode) bool {
		if err != nil {
			return false
		}
		prefix := strings.Repeat(Indent, len(path)-1)
		if node.NodeID != "" {
			_, err = fmt.Fprintf(w, "%s%s [%s]\n", prefix, node.Label, node.Key())
		} else {
			_, err = fmt.Fprintf(w, "%s%s\n", prefix, node.Label)
		}
		return err == nil
	})
	return err
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (n *TreeNode) child(label string) *TreeNode {
	if child, ok := n.Nodes[label]; ok {
		return child
	}
	child := NewTreeNode(label)
	n.Nodes[label] = child
	n.Index = append(n.Index, label)
	return child
}

func (n *TreeNode) walk(parent []string, fn func(path []string, node *TreeNode) bool) {
	path := make([]string, len(parent)+1)
	copy(path, parent)
	path[len(parent)] = n.Label
	if !fn(path, n) {
		return
	}
	for _, child := range n.Children() {
		child.walk(path, fn)
	}
}
