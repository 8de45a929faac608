package items

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

const (
	DefaultMaxTreeDepth = 4096
	DefaultChunkSize    = 500
)

type ItemRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Item, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Item, error)
	GetByIDsAndType(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, typ domain.ItemType) ([]*domain.Item, error)
	ExistsByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	CountByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	FilterIDsPresent(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error)

	GetSubtreeWithAggregates(ctx context.Context, tx *gorm.DB, rootID uuid.UUID) (*domain.Subtree, error)
	GetAncestorLinks(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*uuid.UUID, error)
	GetAncestorIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error)
	GetDescendantIDs(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]uuid.UUID, error)

	UpsertMany(ctx context.Context, tx *gorm.DB, rows []*domain.Item) error
	BumpDate(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, date time.Time) (int64, error)
	CascadeDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
}

type ItemRepoConfig struct {
	MaxTreeDepth int
	ChunkSize    int
}

type itemRepo struct {
	db       *gorm.DB
	log      *logger.Logger
	maxDepth int
	chunk    int
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger, cfg ItemRepoConfig) ItemRepo {
	if cfg.MaxTreeDepth <= 0 {
		cfg.MaxTreeDepth = DefaultMaxTreeDepth
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &itemRepo{
		db:       db,
		log:      baseLog.With("repo", "ItemRepo"),
		maxDepth: cfg.MaxTreeDepth,
		chunk:    cfg.ChunkSize,
	}
}

func (r *itemRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *itemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Item, error) {
	var out []*domain.Item
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.conn(tx).WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Item, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *itemRepo) GetByIDsAndType(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, typ domain.ItemType) ([]*domain.Item, error) {
	var out []*domain.Item
	if len(ids) == 0 {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Where(clause.Eq{Column: clause.Column{Name: "type"}, Value: string(typ)}).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	n, err := r.CountByIDs(ctx, tx, []uuid.UUID{id})
	return n > 0, err
}

func (r *itemRepo) CountByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	if err := r.conn(tx).WithContext(ctx).Model(&domain.Item{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *itemRepo) FilterIDsPresent(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []idRow
	if err := r.conn(tx).WithContext(ctx).Model(&domain.Item{}).Select("id").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out = append(out, row.ID)
	}
	return out, nil
}

func (r *itemRepo) GetSubtreeWithAggregates(ctx context.Context, tx *gorm.DB, rootID uuid.UUID) (*domain.Subtree, error) {
	if rootID == uuid.Nil {
		return nil, nil
	}
	db := r.conn(tx).WithContext(ctx)
	if err := r.checkSubtreeShape(db, rootID); err != nil {
		return nil, err
	}
	var rows []subtreeRow
	err := db.Raw(subtreeAggregatesSQL, rootID, r.maxDepth, r.maxDepth).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return buildSubtree(rootID, rows), nil
}

// checkSubtreeShape refuses to aggregate a subtree the bounded walk cannot
// cover completely: a node below the depth bound or an id reached twice
// means the totals would be wrong.
func (r *itemRepo) checkSubtreeShape(db *gorm.DB, rootID uuid.UUID) error {
	var shape shapeRow
	if err := db.Raw(subtreeShapeSQL, rootID, r.maxDepth, r.maxDepth).Scan(&shape).Error; err != nil {
		return err
	}
	switch {
	case shape.RowCount != shape.NodeCount:
		r.log.Error("subtree revisits nodes, parent links loop",
			"root_id", rootID, "rows", shape.RowCount, "nodes", shape.NodeCount)
		return domain.NewError(domain.CodeInternal, "items.subtree",
			fmt.Sprintf("parent links below %s form a cycle", rootID), nil)
	case shape.Overflow > 0:
		r.log.Error("subtree deeper than depth bound",
			"root_id", rootID, "max_depth", r.maxDepth, "overflow", shape.Overflow)
		return domain.NewError(domain.CodeInternal, "items.subtree",
			fmt.Sprintf("subtree of %s is deeper than %d levels", rootID, r.maxDepth), nil)
	}
	return nil
}

// GetAncestorLinks returns id -> parent_id for the given ids and every
// ancestor above them.
func (r *itemRepo) GetAncestorLinks(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*uuid.UUID, error) {
	out := map[uuid.UUID]*uuid.UUID{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []linkRow
	if err := r.conn(tx).WithContext(ctx).Raw(ancestorLinksSQL, ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.ParentID
	}
	return out, nil
}

// GetAncestorIDs returns the strict ancestors of ids, deduplicated. An input
// id is included when it sits above another input id.
func (r *itemRepo) GetAncestorIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	links, err := r.GetAncestorLinks(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	return AncestorsFromLinks(links, ids), nil
}

// AncestorsFromLinks walks parent links upwards from each start id.
func AncestorsFromLinks(links map[uuid.UUID]*uuid.UUID, starts []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	out := []uuid.UUID{}
	for _, start := range starts {
		visited := map[uuid.UUID]struct{}{start: {}}
		p := links[start]
		for p != nil {
			if _, loop := visited[*p]; loop {
				break
			}
			visited[*p] = struct{}{}
			if _, ok := seen[*p]; !ok {
				seen[*p] = struct{}{}
				out = append(out, *p)
			}
			p = links[*p]
		}
	}
	return out
}

func (r *itemRepo) GetDescendantIDs(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	if id == uuid.Nil {
		return out, nil
	}
	var rows []idRow
	if err := r.conn(tx).WithContext(ctx).Raw(descendantIDsSQL, id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out = append(out, row.ID)
	}
	return out, nil
}

// UpsertMany writes rows in the given order. Existing rows get name, price,
// parent and date replaced; type is never overwritten.
func (r *itemRepo) UpsertMany(ctx context.Context, tx *gorm.DB, rows []*domain.Item) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "parent_id", "date"}),
		}).
		CreateInBatches(rows, r.chunk).Error
}

func (r *itemRepo) BumpDate(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, date time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.conn(tx).WithContext(ctx).
		Model(&domain.Item{}).
		Where("id IN ?", ids).
		Update("date", date.UTC())
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CascadeDeleteByID removes the item; the foreign keys take its descendants
// and their statistics with it. Returns the number of rows matched by id.
func (r *itemRepo) CascadeDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&domain.Item{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
