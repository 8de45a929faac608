package services

import (
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/megamarket-backend/internal/domain"
)

// ImportPlan is everything the orchestrator writes for one batch.
type ImportPlan struct {
	// Items in write order: a parent that is new in the batch precedes its
	// children.
	Items []*domain.Item
	// Statistics holds one snapshot per offer, stamped with the batch date.
	Statistics []*domain.ItemStatistic
	// BumpIDs are stored ancestors whose date moves to the batch date.
	BumpIDs []uuid.UUID
}

// StoreLinks maps every store-resident id relevant to a batch to its
// current parent: the batch ids, their declared parents and all ancestors
// above both.
type StoreLinks map[uuid.UUID]*uuid.UUID

func (l StoreLinks) Has(id uuid.UUID) bool {
	_, ok := l[id]
	return ok
}

const opPlan = "import.plan"

// PlanImport orders the batch parent-first, snapshots its offers and
// computes the ancestor dates to bump. A batch that would close a parent
// cycle, among its own items or together with stored ones, is rejected.
func PlanImport(batch domain.ImportBatch, links StoreLinks) (*ImportPlan, error) {
	overlay := overlayLinks(batch, links)
	if cyclic := findCycles(batch, overlay); len(cyclic) > 0 {
		return nil, domain.Validation(opPlan, "Import creates a parent cycle for items: %s", domain.JoinIDs(cyclic, ", "))
	}

	order, err := writeOrder(batch, links)
	if err != nil {
		return nil, err
	}

	plan := &ImportPlan{Items: make([]*domain.Item, 0, len(order))}
	for _, i := range order {
		plan.Items = append(plan.Items, batch.Items[i].ToItem(batch.UpdateDate))
	}
	for _, it := range plan.Items {
		if it.IsOffer() {
			plan.Statistics = append(plan.Statistics, domain.SnapshotOf(it, batch.UpdateDate))
		}
	}
	plan.BumpIDs = bumpIDs(batch, links, overlay)
	return plan, nil
}

// overlayLinks is the parent graph as it will look after the write.
func overlayLinks(batch domain.ImportBatch, links StoreLinks) map[uuid.UUID]*uuid.UUID {
	out := make(map[uuid.UUID]*uuid.UUID, len(links)+len(batch.Items))
	for id, p := range links {
		out[id] = p
	}
	for _, it := range batch.Items {
		out[it.ID] = it.ParentID
	}
	return out
}

func findCycles(batch domain.ImportBatch, overlay map[uuid.UUID]*uuid.UUID) []uuid.UUID {
	var cyclic []uuid.UUID
	for _, it := range batch.Items {
		seen := map[uuid.UUID]struct{}{it.ID: {}}
		for p := overlay[it.ID]; p != nil; p = overlay[*p] {
			if *p == it.ID {
				cyclic = append(cyclic, it.ID)
				break
			}
			if _, loop := seen[*p]; loop {
				break
			}
			seen[*p] = struct{}{}
		}
	}
	return cyclic
}

// writeOrder is a depth-first topological order over batch-local parents.
// Parents already stored are satisfied and impose no ordering.
func writeOrder(batch domain.ImportBatch, links StoreLinks) ([]int, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	idx := batch.Index()
	state := make([]int, len(batch.Items))
	order := make([]int, 0, len(batch.Items))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return domain.Validation(opPlan, "Import creates a parent cycle for items: %s", batch.Items[i].ID)
		}
		state[i] = visiting
		if p := batch.Items[i].ParentID; p != nil && !links.Has(*p) {
			if j, local := idx[*p]; local {
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		state[i] = done
		order = append(order, i)
		return nil
	}

	for i := range batch.Items {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// bumpIDs collects, for every offer in the batch, its ancestors before the
// write and its ancestors after it. Batch items are excluded since the
// upsert already stamps them.
func bumpIDs(batch domain.ImportBatch, links StoreLinks, overlay map[uuid.UUID]*uuid.UUID) []uuid.UUID {
	inBatch := batch.Index()
	set := map[uuid.UUID]struct{}{}
	collect := func(graph map[uuid.UUID]*uuid.UUID, start uuid.UUID) {
		seen := map[uuid.UUID]struct{}{start: {}}
		for p := graph[start]; p != nil; p = graph[*p] {
			if _, loop := seen[*p]; loop {
				return
			}
			seen[*p] = struct{}{}
			if _, skip := inBatch[*p]; !skip {
				set[*p] = struct{}{}
			}
		}
	}
	for _, it := range batch.Items {
		if it.Type != domain.ItemTypeOffer {
			continue
		}
		collect(links, it.ID)
		collect(overlay, it.ID)
	}
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
