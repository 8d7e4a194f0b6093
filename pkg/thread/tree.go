// Package thread shapes flat reply collections into the nested form the
// forum serves: parent-pointer list → forest, depth-bounded flattening,
// recursive ordering, vote transitions and best-answer exclusivity.
//
// Every function here is pure: inputs are treated as immutable snapshots
// and each stage returns a new structure. Persistence belongs to the
// repository layer.
package thread

import "folio/pkg/models"

// BuildTree converts a flat reply list into an ordered forest.
//
// Replies are indexed by id in input order, then attached to their parents
// in a second pass so a reply may arrive before its parent. A reply whose
// parent id is unknown is promoted to a root rather than dropped — a
// deleted mid-tree reply must not take its descendants with it.
//
// No cycle detection: children links come only from the index, so a parent
// cycle in the input leaves those nodes attached to each other and
// unreachable from the roots, never an infinite traversal.
func BuildTree(replies []models.Reply) []*models.ReplyNode {
	index := make(map[string]*models.ReplyNode, len(replies))
	nodes := make([]*models.ReplyNode, 0, len(replies))
	for _, r := range replies {
		n := &models.ReplyNode{Reply: r, Children: []*models.ReplyNode{}}
		index[r.ID] = n
		nodes = append(nodes, n)
	}

	roots := []*models.ReplyNode{}
	for _, n := range nodes {
		if n.ParentReplyID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := index[*n.ParentReplyID]
		if !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots
}
