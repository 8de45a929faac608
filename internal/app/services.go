package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/data/store"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
	"github.com/yungbote/megamarket-backend/internal/services"
)

type Services struct {
	Import services.ImportService
	Node   services.NodeService
	Sales  services.SalesService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) Services {
	log.Info("Wiring services...")
	tx := store.NewGormTxRunner(db)
	return Services{
		Import: services.NewImportService(log, tx, reposet.Item, reposet.Statistic),
		Node:   services.NewNodeService(log, tx, reposet.Item),
		Sales:  services.NewSalesService(log, reposet.Statistic, cfg.Tree.SalesWindow.Std()),
	}
}
