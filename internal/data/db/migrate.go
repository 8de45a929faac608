package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/domain"
)

// AutoMigrateAll creates or updates the items and items_statistic tables
// with their foreign keys and constraints.
func AutoMigrateAll(ctx context.Context, conn *gorm.DB) error {
	tx := conn.WithContext(ctx)
	if err := tx.AutoMigrate(
		&domain.Item{},
		&domain.ItemStatistic{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	// replaced by idx_items_statistic_point_key, which also covers root offers
	m := tx.Migrator()
	if m.HasIndex(&domain.ItemStatistic{}, "idx_items_statistic_point") {
		if err := m.DropIndex(&domain.ItemStatistic{}, "idx_items_statistic_point"); err != nil {
			return fmt.Errorf("drop legacy statistic index: %w", err)
		}
	}
	return nil
}
