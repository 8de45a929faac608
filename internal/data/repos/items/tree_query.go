package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/megamarket-backend/internal/domain"
)

// subtreeAggregatesSQL walks down from the root, builds the
// ancestor/descendant closure of the subtree and folds offer prices and
// counts per ancestor. Both recursions stop at the depth bound. The final
// select reads date straight from items so drivers keep its column type.
const subtreeAggregatesSQL = `
WITH RECURSIVE subtree(id, parent_id, lvl) AS (
	SELECT id, parent_id, 0 FROM items WHERE id = ?
	UNION ALL
	SELECT c.id, c.parent_id, s.lvl + 1
	FROM items c
	JOIN subtree s ON c.parent_id = s.id
	WHERE s.lvl < ?
),
closure(ancestor_id, descendant_id, depth) AS (
	SELECT id, id, 0 FROM subtree
	UNION ALL
	SELECT cl.ancestor_id, s.id, cl.depth + 1
	FROM closure cl
	JOIN subtree s ON s.parent_id = cl.descendant_id
	WHERE cl.depth < ?
),
totals(id, total_price, total_offer_count) AS (
	SELECT cl.ancestor_id,
		CAST(COALESCE(SUM(CASE WHEN d.type = 'OFFER' THEN d.price ELSE 0 END), 0) AS BIGINT),
		CAST(COALESCE(SUM(CASE WHEN d.type = 'OFFER' THEN 1 ELSE 0 END), 0) AS BIGINT)
	FROM closure cl
	JOIN items d ON d.id = cl.descendant_id
	GROUP BY cl.ancestor_id
)
SELECT i.id, i.name, i.type, i.parent_id, i.price, i.date,
	s.lvl AS level, t.total_price, t.total_offer_count
FROM subtree s
JOIN items i ON i.id = s.id
JOIN totals t ON t.id = s.id
ORDER BY s.lvl ASC, i.name ASC, i.id ASC`

// subtreeShapeSQL runs the same bounded walk and reports how many rows it
// produced, how many distinct ids they cover and how many children hang
// below the deepest level reached. A healthy tree has rows = nodes and no
// overflow.
const subtreeShapeSQL = `
WITH RECURSIVE subtree(id, lvl) AS (
	SELECT id, 0 FROM items WHERE id = ?
	UNION ALL
	SELECT c.id, s.lvl + 1
	FROM items c
	JOIN subtree s ON c.parent_id = s.id
	WHERE s.lvl < ?
)
SELECT
	(SELECT COUNT(*) FROM subtree) AS row_count,
	(SELECT COUNT(DISTINCT id) FROM subtree) AS node_count,
	(SELECT COUNT(*) FROM items c JOIN subtree s ON c.parent_id = s.id WHERE s.lvl = ?) AS overflow`

// ancestorLinksSQL follows parent_id upwards. UNION drops revisited rows,
// so the walk terminates even on a corrupt cyclic store.
const ancestorLinksSQL = `
WITH RECURSIVE chain(id, parent_id) AS (
	SELECT id, parent_id FROM items WHERE id IN ?
	UNION
	SELECT p.id, p.parent_id
	FROM items p
	JOIN chain c ON p.id = c.parent_id
)
SELECT id, parent_id FROM chain`

const descendantIDsSQL = `
WITH RECURSIVE below(id) AS (
	SELECT id FROM items WHERE parent_id = ?
	UNION
	SELECT c.id FROM items c JOIN below b ON c.parent_id = b.id
)
SELECT id FROM below`

type subtreeRow struct {
	ID              uuid.UUID
	Name            string
	Type            string
	ParentID        *uuid.UUID
	Price           *int64
	Date            time.Time
	Level           int
	TotalPrice      int64
	TotalOfferCount int64
}

type shapeRow struct {
	RowCount  int64
	NodeCount int64
	Overflow  int64
}

type linkRow struct {
	ID       uuid.UUID
	ParentID *uuid.UUID
}

type idRow struct {
	ID uuid.UUID
}

// buildSubtree turns level-ordered rows into the arena.
func buildSubtree(rootID uuid.UUID, rows []subtreeRow) *domain.Subtree {
	if len(rows) == 0 {
		return nil
	}
	tree := domain.NewSubtree(rootID)
	for _, r := range rows {
		tree.Add(&domain.AggregatedNode{
			Item: domain.Item{
				ID:       r.ID,
				Name:     r.Name,
				Type:     domain.ItemType(r.Type),
				ParentID: r.ParentID,
				Price:    r.Price,
				Date:     r.Date.UTC(),
			},
			TotalPrice:      r.TotalPrice,
			TotalOfferCount: r.TotalOfferCount,
			Level:           r.Level,
		})
	}
	if tree.Root() == nil {
		return nil
	}
	return tree
}
