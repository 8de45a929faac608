package services

import (
	"context"
	"time"

	"github.com/yungbote/megamarket-backend/internal/data/repos"
	"github.com/yungbote/megamarket-backend/internal/data/store"
	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/observability"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

const DefaultSalesWindow = 24 * time.Hour

type SalesService interface {
	// ListSales returns offer snapshots taken within the window ending at at,
	// both bounds included.
	ListSales(ctx context.Context, at time.Time) ([]domain.SaleItem, error)
}

type salesService struct {
	log    *logger.Logger
	stats  repos.StatisticRepo
	window time.Duration
}

func NewSalesService(baseLog *logger.Logger, stats repos.StatisticRepo, window time.Duration) SalesService {
	if window <= 0 {
		window = DefaultSalesWindow
	}
	return &salesService{log: baseLog.With("service", "SalesService"), stats: stats, window: window}
}

func (s *salesService) ListSales(ctx context.Context, at time.Time) (out []domain.SaleItem, err error) {
	ctx, span := observability.StartSpan(ctx, "services.SalesService.ListSales")
	defer func() { observability.EndSpan(span, err) }()

	at = at.UTC()
	rows, err := s.stats.ListInWindow(ctx, nil, at.Add(-s.window), at)
	if err != nil {
		return nil, store.MapError("sales.list", err)
	}
	out = make([]domain.SaleItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.SaleItemOf(r))
	}
	s.log.Debug("sales listed", "at", at, "items", len(out))
	return out, nil
}
