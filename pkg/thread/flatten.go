package thread

import "folio/pkg/models"

// DefaultMaxDepth is how deep the thread view nests before collapsing,
// counting roots as depth 0.
const DefaultMaxDepth = 3

// Flatten returns a copy of the forest in which no branch nests past
// maxDepth. A node reached at maxDepth keeps all of its strict descendants,
// but as one flat pre-order list of leaves instead of a subtree. Nesting
// beyond the limit is lost; this is a display simplification, not an
// archival transform.
func Flatten(roots []*models.ReplyNode, maxDepth int) []*models.ReplyNode {
	out := make([]*models.ReplyNode, 0, len(roots))
	for _, n := range roots {
		out = append(out, flattenNode(n, 0, maxDepth))
	}
	return out
}

func flattenNode(n *models.ReplyNode, depth, maxDepth int) *models.ReplyNode {
	clone := &models.ReplyNode{Reply: n.Reply}

	if depth >= maxDepth {
		clone.Children = []*models.ReplyNode{}
		collectDescendants(n, &clone.Children)
		return clone
	}

	clone.Children = make([]*models.ReplyNode, 0, len(n.Children))
	for _, c := range n.Children {
		clone.Children = append(clone.Children, flattenNode(c, depth+1, maxDepth))
	}
	return clone
}

// collectDescendants appends every strict descendant of n in pre-order,
// each stripped of its own children.
func collectDescendants(n *models.ReplyNode, out *[]*models.ReplyNode) {
	for _, c := range n.Children {
		*out = append(*out, &models.ReplyNode{Reply: c.Reply, Children: []*models.ReplyNode{}})
		collectDescendants(c, out)
	}
}
