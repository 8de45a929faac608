package items

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type StatisticRepo interface {
	InsertIgnoringDuplicates(ctx context.Context, tx *gorm.DB, rows []*domain.ItemStatistic) (int64, error)
	ListInWindow(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*domain.ItemStatistic, error)
}

type statisticRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	chunk int
}

func NewStatisticRepo(db *gorm.DB, baseLog *logger.Logger, cfg ItemRepoConfig) StatisticRepo {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &statisticRepo{db: db, log: baseLog.With("repo", "StatisticRepo"), chunk: cfg.ChunkSize}
}

// InsertIgnoringDuplicates appends snapshots; a row that repeats
// (id, parent_id, date) is dropped silently. Returns rows actually inserted.
func (r *statisticRepo) InsertIgnoringDuplicates(ctx context.Context, tx *gorm.DB, rows []*domain.ItemStatistic) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}, {Name: "parent_key"}, {Name: "date"}},
			DoNothing: true,
		}).
		CreateInBatches(rows, r.chunk)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ListInWindow returns offer snapshots with from <= date <= to.
func (r *statisticRepo) ListInWindow(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*domain.ItemStatistic, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ItemStatistic
	err := t.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "type"}, Value: string(domain.ItemTypeOffer)}).
		Where(clause.Gte{Column: clause.Column{Name: "date"}, Value: from.UTC()}).
		Where(clause.Lte{Column: clause.Column{Name: "date"}, Value: to.UTC()}).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "date"}},
			{Column: clause.Column{Name: "id"}},
		}}).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
