package roadmap_test

import (
	"bytes"
	"testing"

	"github.com/foomo/roadmapserver/roadmap"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree(t *testing.T) {
	tree := roadmap.BuildTree([]roadmap.IndexEntry{
		{NodeID: "1", Text: "Root > A > B"},
		{NodeID: "2", Text: "Root > A > C"},
	}, "Root")

	want := &roadmap.TreeNode{
		Label: "Root",
		Index: []string{"A"},
		Nodes: map[string]*roadmap.TreeNode{
			"A": {
				Label: "A",
				Index: []string{"B", "C"},
				Nodes: map[string]*roadmap.TreeNode{
					"B": {Label: "B", NodeID: "1", Index: []string{}, Nodes: map[string]*roadmap.TreeNode{}},
					"C": {Label: "C", NodeID: "2", Index: []string{}, Nodes: map[string]*roadmap.TreeNode{}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("BuildTree() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTreeSkipsOtherRoots(t *testing.T) {
	tree := roadmap.BuildTree([]roadmap.IndexEntry{
		{NodeID: "1", Text: "Other > X"},
		{NodeID: "2", Text: "Root > Y"},
		{NodeID: "3", Text: "root > Z"},
	}, "Root")

	assert.Equal(t, []string{"Y"}, tree.Index)
	_, ok := tree.Child("X")
	assert.False(t, ok)
}

func TestBuildTreeSharedPrefix(t *testing.T) {
	tree := roadmap.BuildTree([]roadmap.IndexEntry{
		{NodeID: "a", Text: "Root > A"},
		{NodeID: "b", Text: "Root > A > B"},
		{NodeID: "c", Text: "Root > A > B > C"},
	}, "Root")

	a, ok := tree.Child("A")
	require.True(t, ok)
	assert.Equal(t, "a", a.NodeID)
	b, ok := a.Child("B")
	require.True(t, ok)
	assert.Equal(t, "b", b.NodeID)
	c, ok := b.Child("C")
	require.True(t, ok)
	assert.Equal(t, "c", c.NodeID)
	assert.Equal(t, 4, tree.Count())
}

func TestBuildTreeIntermediateWithoutNodeID(t *testing.T) {
	tree := roadmap.BuildTree([]roadmap.IndexEntry{
		{NodeID: "deep", Text: "Root > A > B > C"},
	}, "Root")

	assert.Empty(t, tree.NodeID)
	a, _ := tree.Child("A")
	assert.Empty(t, a.NodeID)
	b, _ := a.Child("B")
	assert.Empty(t, b.NodeID)
	c, _ := b.Child("C")
	assert.Equal(t, "deep", c.NodeID)
}

func TestBuildTreeLastWriteWins(t *testing.T) {
	tree := roadmap.BuildTree([]roadmap.IndexEntry{
		{NodeID: "first", Text: "Root > A"},
		{NodeID: "second", Text: "Root > A"},
	}, "Root")

	a, ok := tree.Child("A")
	require.True(t, ok)
	assert.Equal(t, "second", a.NodeID)
	assert.Len(t, tree.Index, 1)
}

func TestBuildTreeLabelsAreExact(t *testing.T) {
	tree := roadmap.BuildTree([]roadmap.IndexEntry{
		{NodeID: "1", Text: "Root > Networking"},
		{NodeID: "2", Text: "Root > networking"},
		{NodeID: "3", Text: "Root >  Networking "},
	}, "Root")

	// segments are trimmed, case is kept
	assert.Equal(t, []string{"Networking", "networking"}, tree.Index)
}

func TestBuildTreeKeepsInsertionOrder(t *testing.T) {
	tree := roadmap.BuildTree([]roadmap.IndexEntry{
		{NodeID: "z", Text: "Root > Z"},
		{NodeID: "a", Text: "Root > A"},
		{NodeID: "m", Text: "Root > M"},
	}, "Root")

	labels := []string{}
	for _, child := range tree.Children() {
		labels = append(labels, child.Label)
	}
	assert.Equal(t, []string{"Z", "A", "M"}, labels)
}

func TestBuildTreeEmpty(t *testing.T) {
	tree := roadmap.BuildTree(nil, "Root")
	assert.Equal(t, "Root", tree.Label)
	assert.True(t, tree.IsLeaf())
}

func TestTreeNodePathsMatchEntries(t *testing.T) {
	entries := []roadmap.IndexEntry{
		{NodeID: "1", Text: "Root > A > B"},
		{NodeID: "2", Text: "Root > A > C"},
		{NodeID: "3", Text: "Root > D"},
	}
	texts := map[string]bool{}
	for _, e := range entries {
		texts[e.Text] = true
	}

	roadmap.BuildTree(entries, "Root").Walk(func(path []string, node *roadmap.TreeNode) bool {
		if node.NodeID != "" {
			assert.True(t, texts[joinPath(path)], "no entry for %v", path)
		}
		return true
	})
}

func TestTreeNodeFprint(t *testing.T) {
	tree := roadmap.BuildTree([]roadmap.IndexEntry{
		{NodeID: "1", Text: "Root > A & B > C"},
	}, "Root")

	var b bytes.Buffer
	require.NoError(t, tree.Fprint(&b))
	assert.Equal(t, "Root\n\tA & B\n\t\tC [c@1]\n", b.String())
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += roadmap.PathSeparator
		}
		s += p
	}
	return s
}
