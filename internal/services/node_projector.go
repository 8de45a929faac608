package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/megamarket-backend/internal/domain"
)

// ProjectSubtree renders the aggregated arena into the public tree.
//
// Offers keep their own price and have no children list. A category shows
// the floor average of all offers below it, or null when it has none, and
// always lists its children.
func ProjectSubtree(tree *domain.Subtree) *domain.PublicNode {
	if tree == nil || tree.Root() == nil {
		return nil
	}
	return projectNode(tree, tree.RootID, map[uuid.UUID]struct{}{})
}

func projectNode(tree *domain.Subtree, id uuid.UUID, onPath map[uuid.UUID]struct{}) *domain.PublicNode {
	n := tree.Node(id)
	if n == nil {
		return nil
	}
	out := &domain.PublicNode{
		ID:       n.ID,
		Name:     n.Name,
		Type:     n.Type,
		ParentID: n.ParentID,
		Date:     domain.FormatTimestamp(n.Date),
	}
	if n.Type == domain.ItemTypeOffer {
		out.Price = n.Price
		return out
	}

	out.Children = make([]*domain.PublicNode, 0, len(n.ChildIDs))
	if n.TotalOfferCount > 0 {
		avg := n.TotalPrice / n.TotalOfferCount
		out.Price = &avg
	}
	onPath[id] = struct{}{}
	for _, cid := range n.ChildIDs {
		if _, loop := onPath[cid]; loop {
			continue
		}
		if child := projectNode(tree, cid, onPath); child != nil {
			out.Children = append(out.Children, child)
		}
	}
	delete(onPath, id)
	return out
}
