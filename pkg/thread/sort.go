package thread

import (
	"sort"

	"folio/pkg/models"
)

// Order selects how reply lists are ranked.
type Order string

const (
	OrderNewest Order = "newest"
	OrderOldest Order = "oldest"
	OrderBest   Order = "best"
	// OrderControversial ranks by total vote volume (upvotes + downvotes),
	// not polarization: 100up/0down outranks 10up/10down.
	OrderControversial Order = "controversial"
)

// ParseOrder maps a query-string value to an Order, defaulting to best.
func ParseOrder(s string) Order {
	switch Order(s) {
	case OrderNewest, OrderOldest, OrderBest, OrderControversial:
		return Order(s)
	default:
		return OrderBest
	}
}

// SortForest returns a copy of the forest with every list — the root list
// and each node's children, independently — ordered by the same comparator.
// Ties keep input order (stable sort); no secondary key is defined.
func SortForest(roots []*models.ReplyNode, order Order) []*models.ReplyNode {
	out := make([]*models.ReplyNode, len(roots))
	for i, n := range roots {
		out[i] = sortNode(n, order)
	}
	sortSiblings(out, order)
	return out
}

func sortNode(n *models.ReplyNode, order Order) *models.ReplyNode {
	clone := &models.ReplyNode{Reply: n.Reply}
	clone.Children = make([]*models.ReplyNode, len(n.Children))
	for i, c := range n.Children {
		clone.Children[i] = sortNode(c, order)
	}
	sortSiblings(clone.Children, order)
	return clone
}

func sortSiblings(list []*models.ReplyNode, order Order) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch order {
		case OrderNewest:
			return a.CreatedAt.After(b.CreatedAt)
		case OrderOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case OrderControversial:
			return a.Engagement() > b.Engagement()
		default:
			return a.Score() > b.Score()
		}
	})
}
