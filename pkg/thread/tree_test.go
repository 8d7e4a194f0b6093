package thread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/models"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func reply(id string, parent string, minute, up, down int) models.Reply {
	r := models.Reply{
		ID:         id,
		PostID:     "post-1",
		Content:    "content " + id,
		Author:     "author-" + id,
		Upvotes:    up,
		Downvotes:  down,
		ViewerVote: models.VoteNone,
		CreatedAt:  testEpoch.Add(time.Duration(minute) * time.Minute),
	}
	if parent != "" {
		r.ParentReplyID = &parent
	}
	return r
}

// chain returns r1→r2→r3→r4, each the sole child of the previous.
func chain() []models.Reply {
	return []models.Reply{
		reply("r1", "", 0, 0, 0),
		reply("r2", "r1", 1, 0, 0),
		reply("r3", "r2", 2, 0, 0),
		reply("r4", "r3", 3, 0, 0),
	}
}

func TestBuildTree_CountMatchesInput(t *testing.T) {
	flat := []models.Reply{
		reply("a", "", 0, 0, 0),
		reply("b", "a", 1, 0, 0),
		reply("c", "a", 2, 0, 0),
		reply("d", "c", 3, 0, 0),
		reply("e", "", 4, 0, 0),
	}

	roots := BuildTree(flat)

	require.Len(t, roots, 2)
	assert.Equal(t, len(flat), CountReplies(roots))
}

func TestBuildTree_ChildBeforeParent(t *testing.T) {
	// The child arrives first in the flat list; attachment happens in a
	// second pass so order of arrival must not matter.
	flat := []models.Reply{
		reply("child", "root", 1, 0, 0),
		reply("root", "", 0, 0, 0),
	}

	roots := BuildTree(flat)

	require.Len(t, roots, 1)
	assert.Equal(t, "root", roots[0].ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "child", roots[0].Children[0].ID)
}

func TestBuildTree_SiblingsKeepInputOrder(t *testing.T) {
	flat := []models.Reply{
		reply("root", "", 0, 0, 0),
		reply("first", "root", 5, 0, 0),
		reply("second", "root", 3, 0, 0),
		reply("third", "root", 9, 0, 0),
	}

	roots := BuildTree(flat)

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 3)
	assert.Equal(t, "first", roots[0].Children[0].ID)
	assert.Equal(t, "second", roots[0].Children[1].ID)
	assert.Equal(t, "third", roots[0].Children[2].ID)
}

func TestBuildTree_DanglingParentBecomesRoot(t *testing.T) {
	flat := []models.Reply{
		reply("a", "", 0, 0, 0),
		reply("orphan", "deleted-id", 1, 0, 0),
	}

	roots := BuildTree(flat)

	require.Len(t, roots, 2)
	assert.Equal(t, "a", roots[0].ID)
	assert.Equal(t, "orphan", roots[1].ID)
	// The dangling pointer survives on the record; only placement changes.
	require.NotNil(t, roots[1].ParentReplyID)
	assert.Equal(t, "deleted-id", *roots[1].ParentReplyID)
}

func TestBuildTree_ParentCycleExcludedFromRoots(t *testing.T) {
	flat := []models.Reply{
		reply("solo", "", 0, 0, 0),
		reply("a", "b", 1, 0, 0),
		reply("b", "a", 2, 0, 0),
	}

	roots := BuildTree(flat)

	// a and b reference each other, so neither is a root; they hang off
	// each other, unreachable from the forest. Traversal stays finite.
	require.Len(t, roots, 1)
	assert.Equal(t, "solo", roots[0].ID)
	assert.Equal(t, 1, CountReplies(roots))
	assert.Nil(t, FindReply(roots, "a"))
}

func TestBuildTree_DoesNotMutateInput(t *testing.T) {
	flat := chain()
	snapshot := make([]models.Reply, len(flat))
	copy(snapshot, flat)

	BuildTree(flat)

	assert.Equal(t, snapshot, flat)
}
