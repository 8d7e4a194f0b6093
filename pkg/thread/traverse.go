package thread

import "folio/pkg/models"

// DepthNotFound is returned by ReplyDepth for ids absent from the forest.
const DepthNotFound = -1

// CountReplies returns the total number of nodes in the forest.
func CountReplies(roots []*models.ReplyNode) int {
	total := 0
	for _, n := range roots {
		total += 1 + CountReplies(n.Children)
	}
	return total
}

// ReplyDepth returns the depth of the first node with the given id in
// depth-first, left-to-right order (roots are depth 0), or DepthNotFound.
func ReplyDepth(roots []*models.ReplyNode, id string) int {
	for _, n := range roots {
		if n.ID == id {
			return 0
		}
		if d := ReplyDepth(n.Children, id); d != DepthNotFound {
			return d + 1
		}
	}
	return DepthNotFound
}

// FindReply returns the first node with the given id in depth-first,
// left-to-right order, or nil.
func FindReply(roots []*models.ReplyNode, id string) *models.ReplyNode {
	for _, n := range roots {
		if n.ID == id {
			return n
		}
		if found := FindReply(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}
