package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/megamarket-backend/internal/domain"
)

func aggNode(id uuid.UUID, typ domain.ItemType, parent *uuid.UUID, price *int64, total, count int64) *domain.AggregatedNode {
	return &domain.AggregatedNode{
		Item: domain.Item{
			ID: id, Name: id.String()[:6], Type: typ, ParentID: parent, Price: price,
			Date: time.Date(2022, 2, 1, 12, 0, 0, 0, time.UTC),
		},
		TotalPrice:      total,
		TotalOfferCount: count,
	}
}

func TestProjectSubtreeAveragesOffers(t *testing.T) {
	root, o1, o2, o3 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	tree := domain.NewSubtree(root)
	tree.Add(aggNode(root, domain.ItemTypeCategory, nil, nil, 600, 3))
	tree.Add(aggNode(o1, domain.ItemTypeOffer, ptrID(root), ptrPrice(100), 100, 1))
	tree.Add(aggNode(o2, domain.ItemTypeOffer, ptrID(root), ptrPrice(200), 200, 1))
	tree.Add(aggNode(o3, domain.ItemTypeOffer, ptrID(root), ptrPrice(300), 300, 1))

	got := ProjectSubtree(tree)
	if got.Price == nil || *got.Price != 200 {
		t.Fatalf("category price: got %v want 200", got.Price)
	}
	if len(got.Children) != 3 {
		t.Fatalf("children: got %d want 3", len(got.Children))
	}
	for _, c := range got.Children {
		if c.Children != nil {
			t.Fatalf("offers must have nil children")
		}
	}
	if got.Date != "2022-02-01T12:00:00.000Z" {
		t.Fatalf("date format: got %q", got.Date)
	}
}

func TestProjectSubtreeFloorsAverage(t *testing.T) {
	root, o1, o2 := uuid.New(), uuid.New(), uuid.New()
	tree := domain.NewSubtree(root)
	tree.Add(aggNode(root, domain.ItemTypeCategory, nil, nil, 3, 2))
	tree.Add(aggNode(o1, domain.ItemTypeOffer, ptrID(root), ptrPrice(1), 1, 1))
	tree.Add(aggNode(o2, domain.ItemTypeOffer, ptrID(root), ptrPrice(2), 2, 1))

	if got := ProjectSubtree(tree); got.Price == nil || *got.Price != 1 {
		t.Fatalf("floor(3/2): got %v want 1", got.Price)
	}
}

func TestProjectSubtreeEmptyCategories(t *testing.T) {
	root, inner := uuid.New(), uuid.New()
	tree := domain.NewSubtree(root)
	tree.Add(aggNode(root, domain.ItemTypeCategory, nil, nil, 0, 0))
	tree.Add(aggNode(inner, domain.ItemTypeCategory, ptrID(root), nil, 0, 0))

	got := ProjectSubtree(tree)
	if got.Price != nil {
		t.Fatalf("category without offers must have null price, got %d", *got.Price)
	}
	if len(got.Children) != 1 {
		t.Fatalf("children: got %d want 1", len(got.Children))
	}
	leaf := got.Children[0]
	if leaf.Price != nil || leaf.Children == nil || len(leaf.Children) != 0 {
		t.Fatalf("empty category: price=%v children=%v", leaf.Price, leaf.Children)
	}

	raw, err := json.Marshal(leaf)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"children":[]`) || !strings.Contains(string(raw), `"price":null`) {
		t.Fatalf("unexpected JSON: %s", raw)
	}
}

func TestProjectSubtreeOfferJSONHasNullChildren(t *testing.T) {
	id := uuid.New()
	tree := domain.NewSubtree(id)
	tree.Add(aggNode(id, domain.ItemTypeOffer, nil, ptrPrice(42), 42, 1))

	raw, err := json.Marshal(ProjectSubtree(tree))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"children":null`) || !strings.Contains(string(raw), `"price":42`) {
		t.Fatalf("unexpected JSON: %s", raw)
	}
	for _, hidden := range []string{"TotalPrice", "total", "level"} {
		if strings.Contains(string(raw), hidden) {
			t.Fatalf("aggregate fields must not leak: %s", raw)
		}
	}
}

func TestProjectSubtreeIsIdempotent(t *testing.T) {
	root, o := uuid.New(), uuid.New()
	tree := domain.NewSubtree(root)
	tree.Add(aggNode(root, domain.ItemTypeCategory, nil, nil, 7, 1))
	tree.Add(aggNode(o, domain.ItemTypeOffer, ptrID(root), ptrPrice(7), 7, 1))

	first, _ := json.Marshal(ProjectSubtree(tree))
	second, _ := json.Marshal(ProjectSubtree(tree))
	if string(first) != string(second) {
		t.Fatalf("projection must be deterministic:\n%s\n%s", first, second)
	}
	if ProjectSubtree(nil) != nil {
		t.Fatalf("nil tree projects to nil")
	}
}
