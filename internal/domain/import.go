package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ImportItem struct {
	ID       uuid.UUID
	Name     string
	Type     ItemType
	ParentID *uuid.UUID
	Price    *int64
}

// ImportBatch is one request of the bulk import: every item is written with
// the same UpdateDate.
type ImportBatch struct {
	Items      []ImportItem
	UpdateDate time.Time
}

// ToItem materializes the record as it will be stored.
func (it ImportItem) ToItem(date time.Time) *Item {
	return &Item{
		ID:       it.ID,
		Name:     it.Name,
		Type:     it.Type,
		ParentID: cloneUUID(it.ParentID),
		Price:    cloneInt64(it.Price),
		Date:     date.UTC(),
	}
}

func (b ImportBatch) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(b.Items))
	for _, it := range b.Items {
		out = append(out, it.ID)
	}
	return out
}

// Index maps every id of the batch to its position.
func (b ImportBatch) Index() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(b.Items))
	for i, it := range b.Items {
		out[it.ID] = i
	}
	return out
}

// ExternalParentIDs returns the distinct parent ids that are not declared in
// the batch itself, in first-seen order.
func (b ImportBatch) ExternalParentIDs() []uuid.UUID {
	idx := b.Index()
	seen := map[uuid.UUID]struct{}{}
	out := []uuid.UUID{}
	for _, it := range b.Items {
		if it.ParentID == nil {
			continue
		}
		p := *it.ParentID
		if _, local := idx[p]; local {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ReferencedIDs is the union of batch ids and every declared parent id.
func (b ImportBatch) ReferencedIDs() []uuid.UUID {
	return append(b.IDs(), b.ExternalParentIDs()...)
}

func (b ImportBatch) OfferIDs() []uuid.UUID {
	out := []uuid.UUID{}
	for _, it := range b.Items {
		if it.Type == ItemTypeOffer {
			out = append(out, it.ID)
		}
	}
	return out
}

// Validate runs the structural checks that need no store access. Every
// violation is reported in one validation error.
func (b ImportBatch) Validate() error {
	const op = "import.validate_structure"
	if b.UpdateDate.IsZero() {
		return Validation(op, "updateDate is required")
	}

	var problems []string
	seen := make(map[uuid.UUID]int, len(b.Items))
	var dups []uuid.UUID
	for _, it := range b.Items {
		seen[it.ID]++
		if seen[it.ID] == 2 {
			dups = append(dups, it.ID)
		}
	}
	if len(dups) > 0 {
		problems = append(problems, "All ids must be unique: "+JoinIDs(dups, ", "))
	}

	idx := b.Index()
	for _, it := range b.Items {
		switch {
		case it.ID == uuid.Nil:
			problems = append(problems, "item id is required")
		case strings.TrimSpace(it.Name) == "":
			problems = append(problems, "name is required for item "+it.ID.String())
		case !it.Type.Valid():
			problems = append(problems, "unknown type '"+string(it.Type)+"' for item "+it.ID.String())
		case it.ParentID != nil && *it.ParentID == it.ID:
			problems = append(problems, "id and parentId must differ for item "+it.ID.String())
		case it.Type == ItemTypeCategory && it.Price != nil:
			problems = append(problems, "price of category must be null for item "+it.ID.String())
		case it.Type == ItemTypeOffer && it.Price == nil:
			problems = append(problems, "price of offer is required for item "+it.ID.String())
		case it.Type == ItemTypeOffer && *it.Price < 0:
			problems = append(problems, "price of offer must be >= 0 for item "+it.ID.String())
		}
		if it.ParentID != nil {
			if j, ok := idx[*it.ParentID]; ok && b.Items[j].Type == ItemTypeOffer {
				problems = append(problems, "parent "+it.ParentID.String()+" of item "+it.ID.String()+" is declared as OFFER in this batch")
			}
		}
	}

	if len(problems) > 0 {
		return Validation(op, "%s", strings.Join(problems, "\n"))
	}
	return nil
}

// JoinIDs renders ids sorted by their string form.
func JoinIDs(ids []uuid.UUID, sep string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, sep)
}
