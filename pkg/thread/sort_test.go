package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/models"
)

func sortFixture() []*models.ReplyNode {
	flat := []models.Reply{
		reply("old-loved", "", 0, 10, 1),       // score 9, engagement 11
		reply("new-quiet", "", 10, 1, 0),       // score 1, engagement 1
		reply("mid-stormy", "", 5, 10, 10),     // score 0, engagement 20
		reply("child-b", "old-loved", 2, 0, 0), // score 0
		reply("child-a", "old-loved", 8, 5, 0), // score 5
	}
	return BuildTree(flat)
}

func rootIDs(roots []*models.ReplyNode) []string {
	ids := make([]string, len(roots))
	for i, n := range roots {
		ids[i] = n.ID
	}
	return ids
}

func TestSortForest_Orders(t *testing.T) {
	tests := []struct {
		order Order
		want  []string
	}{
		{OrderNewest, []string{"new-quiet", "mid-stormy", "old-loved"}},
		{OrderOldest, []string{"old-loved", "mid-stormy", "new-quiet"}},
		{OrderBest, []string{"old-loved", "new-quiet", "mid-stormy"}},
		// Engagement volume, not polarization: 20 > 11 > 1.
		{OrderControversial, []string{"mid-stormy", "old-loved", "new-quiet"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			out := SortForest(sortFixture(), tt.order)
			assert.Equal(t, tt.want, rootIDs(out))
		})
	}
}

func TestSortForest_RecursesIntoChildren(t *testing.T) {
	out := SortForest(sortFixture(), OrderBest)

	require.Equal(t, "old-loved", out[0].ID)
	require.Len(t, out[0].Children, 2)
	assert.Equal(t, "child-a", out[0].Children[0].ID)
	assert.Equal(t, "child-b", out[0].Children[1].ID)
}

func TestSortForest_Idempotent(t *testing.T) {
	once := SortForest(sortFixture(), OrderControversial)
	twice := SortForest(once, OrderControversial)

	assert.Equal(t, rootIDs(once), rootIDs(twice))
}

func TestSortForest_DoesNotMutateInput(t *testing.T) {
	roots := sortFixture()
	before := rootIDs(roots)
	childrenBefore := rootIDs(roots[0].Children)

	SortForest(roots, OrderNewest)

	assert.Equal(t, before, rootIDs(roots))
	assert.Equal(t, childrenBefore, rootIDs(roots[0].Children))
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderNewest, ParseOrder("newest"))
	assert.Equal(t, OrderControversial, ParseOrder("controversial"))
	assert.Equal(t, OrderBest, ParseOrder(""))
	assert.Equal(t, OrderBest, ParseOrder("spiciest"))
}
