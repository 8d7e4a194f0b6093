package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/models"
)

func TestFlatten_ChainAtDepthOne(t *testing.T) {
	roots := BuildTree(chain())

	out := Flatten(roots, 1)

	require.Len(t, out, 1)
	r1 := out[0]
	require.Len(t, r1.Children, 1)

	// r2 sits at the limit: its whole subtree becomes one flat list.
	r2 := r1.Children[0]
	assert.Equal(t, "r2", r2.ID)
	require.Len(t, r2.Children, 2)
	assert.Equal(t, "r3", r2.Children[0].ID)
	assert.Equal(t, "r4", r2.Children[1].ID)
	assert.Empty(t, r2.Children[0].Children)
	assert.Empty(t, r2.Children[1].Children)
}

func TestFlatten_DefaultDepthKeepsChainNested(t *testing.T) {
	roots := BuildTree(chain())

	out := Flatten(roots, DefaultMaxDepth)

	// Depths 0..3 never pass the default limit, so nothing collapses.
	require.Len(t, out, 1)
	assert.Equal(t, "r4", out[0].Children[0].Children[0].Children[0].ID)
}

func TestFlatten_PreOrderAcrossBranches(t *testing.T) {
	flat := []models.Reply{
		reply("root", "", 0, 0, 0),
		reply("a", "root", 1, 0, 0),
		reply("a1", "a", 2, 0, 0),
		reply("a1x", "a1", 3, 0, 0),
		reply("b", "root", 4, 0, 0),
	}
	roots := BuildTree(flat)

	out := Flatten(roots, 0)

	// The root itself is at the limit: every descendant becomes a flat
	// sibling in pre-order, branch a fully walked before branch b.
	require.Len(t, out, 1)
	ids := make([]string, 0, len(out[0].Children))
	for _, c := range out[0].Children {
		ids = append(ids, c.ID)
		assert.Empty(t, c.Children)
	}
	assert.Equal(t, []string{"a", "a1", "a1x", "b"}, ids)
}

func TestFlatten_NoGrandchildrenAtLimit(t *testing.T) {
	flat := []models.Reply{
		reply("r", "", 0, 0, 0),
		reply("d1", "r", 1, 0, 0),
		reply("d2", "d1", 2, 0, 0),
		reply("d3", "d2", 3, 0, 0),
		reply("d4", "d3", 4, 0, 0),
		reply("d2b", "d1", 5, 0, 0),
	}

	for _, maxDepth := range []int{1, 2, 3} {
		out := Flatten(BuildTree(flat), maxDepth)
		assertLeavesBeyond(t, out, 0, maxDepth)
		assert.Equal(t, len(flat), CountReplies(out), "maxDepth=%d must not lose replies", maxDepth)
	}
}

// assertLeavesBeyond checks that any node sitting at the depth limit has
// only leaf children.
func assertLeavesBeyond(t *testing.T, nodes []*models.ReplyNode, depth, maxDepth int) {
	t.Helper()
	for _, n := range nodes {
		if depth >= maxDepth {
			for _, c := range n.Children {
				assert.Empty(t, c.Children, "node %s at depth %d kept a nested child", n.ID, depth)
			}
			continue
		}
		assertLeavesBeyond(t, n.Children, depth+1, maxDepth)
	}
}

func TestFlatten_DoesNotMutateInput(t *testing.T) {
	roots := BuildTree(chain())

	Flatten(roots, 1)

	// The original forest keeps its full nesting.
	assert.Equal(t, "r4", roots[0].Children[0].Children[0].Children[0].ID)
	assert.Len(t, roots[0].Children[0].Children, 1)
}
