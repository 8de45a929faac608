package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/data/repos"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type Repos struct {
	Item      repos.ItemRepo
	Statistic repos.StatisticRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger, cfg TreeConfig) Repos {
	log.Info("Wiring repos...")
	rcfg := repos.ItemRepoConfig{MaxTreeDepth: cfg.MaxDepth, ChunkSize: cfg.ChunkSize}
	return Repos{
		Item:      repos.NewItemRepo(db, log, rcfg),
		Statistic: repos.NewStatisticRepo(db, log, rcfg),
	}
}
