package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/data/repos/items"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type ItemRepo = items.ItemRepo
type StatisticRepo = items.StatisticRepo
type ItemRepoConfig = items.ItemRepoConfig

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger, cfg ItemRepoConfig) ItemRepo {
	return items.NewItemRepo(db, baseLog, cfg)
}

func NewStatisticRepo(db *gorm.DB, baseLog *logger.Logger, cfg ItemRepoConfig) StatisticRepo {
	return items.NewStatisticRepo(db, baseLog, cfg)
}
