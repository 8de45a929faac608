package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/domain"
)

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, parent *uuid.UUID, date time.Time) *domain.Item {
	tb.Helper()
	it := &domain.Item{
		ID:       uuid.New(),
		Name:     name,
		Type:     domain.ItemTypeCategory,
		ParentID: parent,
		Date:     date.UTC(),
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return it
}

func SeedOffer(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, parent *uuid.UUID, price int64, date time.Time) *domain.Item {
	tb.Helper()
	p := price
	it := &domain.Item{
		ID:       uuid.New(),
		Name:     name,
		Type:     domain.ItemTypeOffer,
		ParentID: parent,
		Price:    &p,
		Date:     date.UTC(),
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed offer: %v", err)
	}
	return it
}

func SeedSnapshot(tb testing.TB, ctx context.Context, tx *gorm.DB, offer *domain.Item, date time.Time) *domain.ItemStatistic {
	tb.Helper()
	st := domain.SnapshotOf(offer, date)
	if err := tx.WithContext(ctx).Create(st).Error; err != nil {
		tb.Fatalf("seed snapshot: %v", err)
	}
	return st
}

func Ptr[T any](v T) *T { return &v }
