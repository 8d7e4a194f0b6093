package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountReplies(t *testing.T) {
	assert.Equal(t, 0, CountReplies(nil))
	assert.Equal(t, 4, CountReplies(BuildTree(chain())))
}

func TestReplyDepth(t *testing.T) {
	forest := BuildTree(chain())

	assert.Equal(t, 0, ReplyDepth(forest, "r1"))
	assert.Equal(t, 2, ReplyDepth(forest, "r3"))
	assert.Equal(t, 3, ReplyDepth(forest, "r4"))
	assert.Equal(t, DepthNotFound, ReplyDepth(forest, "missing"))
}

func TestFindReply(t *testing.T) {
	forest := BuildTree(chain())

	found := FindReply(forest, "r3")
	require.NotNil(t, found)
	assert.Equal(t, "r3", found.ID)
	assert.Equal(t, "content r3", found.Content)

	assert.Nil(t, FindReply(forest, "missing"))
}

func TestFindReply_FirstMatchWins(t *testing.T) {
	// Duplicate ids should not happen, but the search contract is
	// depth-first left-to-right, first hit returned.
	flat := chain()
	dup := reply("r3", "", 9, 99, 0)
	flat = append(flat, dup)

	forest := BuildTree(flat)

	found := FindReply(forest, "r3")
	require.NotNil(t, found)
	assert.Equal(t, 0, found.Upvotes, "nested r3 comes first in DFS order")
}
