package domain

import (
	"github.com/google/uuid"
)

// AggregatedNode is an item plus the totals over its whole subtree. An
// offer counts itself.
type AggregatedNode struct {
	Item
	TotalPrice      int64
	TotalOfferCount int64
	Level           int
	ChildIDs        []uuid.UUID
}

// Subtree is an arena of aggregated nodes keyed by id. Children are
// referenced by id, never by pointer.
type Subtree struct {
	RootID uuid.UUID
	Nodes  map[uuid.UUID]*AggregatedNode
}

func NewSubtree(rootID uuid.UUID) *Subtree {
	return &Subtree{RootID: rootID, Nodes: map[uuid.UUID]*AggregatedNode{}}
}

// Add registers n and links it under its parent when the parent is already
// in the arena. Callers add nodes parents-first.
func (s *Subtree) Add(n *AggregatedNode) {
	if n == nil {
		return
	}
	if _, exists := s.Nodes[n.ID]; exists {
		return
	}
	s.Nodes[n.ID] = n
	if n.ID == s.RootID || n.ParentID == nil {
		return
	}
	if p, ok := s.Nodes[*n.ParentID]; ok {
		p.ChildIDs = append(p.ChildIDs, n.ID)
	}
}

func (s *Subtree) Root() *AggregatedNode {
	if s == nil {
		return nil
	}
	return s.Nodes[s.RootID]
}

func (s *Subtree) Node(id uuid.UUID) *AggregatedNode {
	if s == nil {
		return nil
	}
	return s.Nodes[id]
}

func (s *Subtree) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Nodes)
}

// PublicNode is the external tree shape. Offers have nil Children, which
// encodes as null; categories always carry a list.
type PublicNode struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Type     ItemType      `json:"type"`
	ParentID *uuid.UUID    `json:"parentId"`
	Price    *int64        `json:"price"`
	Date     string        `json:"date"`
	Children []*PublicNode `json:"children"`
}

type SaleItem struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Price    *int64     `json:"price"`
	ParentID *uuid.UUID `json:"parentId"`
	Type     ItemType   `json:"type"`
	Date     string     `json:"date"`
}

func SaleItemOf(st *ItemStatistic) SaleItem {
	return SaleItem{
		ID:       st.ItemID,
		Name:     st.Name,
		Price:    cloneInt64(st.Price),
		ParentID: cloneUUID(st.ParentID),
		Type:     st.Type,
		Date:     FormatTimestamp(st.Date),
	}
}
