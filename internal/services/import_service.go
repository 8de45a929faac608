package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/megamarket-backend/internal/data/repos"
	"github.com/yungbote/megamarket-backend/internal/data/store"
	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/observability"
	"github.com/yungbote/megamarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type ImportResult struct {
	Items     int
	Snapshots int64
	Bumped    int64
}

type ImportService interface {
	// Import validates the batch and writes it in a single transaction.
	Import(ctx context.Context, batch domain.ImportBatch) (*ImportResult, error)
	// Plan validates the batch and returns what Import would write.
	Plan(ctx context.Context, batch domain.ImportBatch) (*ImportPlan, error)
}

type importService struct {
	log       *logger.Logger
	tx        store.TxRunner
	items     repos.ItemRepo
	stats     repos.StatisticRepo
	validator *ImportValidator
}

func NewImportService(baseLog *logger.Logger, tx store.TxRunner, items repos.ItemRepo, stats repos.StatisticRepo) ImportService {
	serviceLog := baseLog.With("service", "ImportService")
	return &importService{
		log:       serviceLog,
		tx:        tx,
		items:     items,
		stats:     stats,
		validator: NewImportValidator(items, baseLog),
	}
}

func (s *importService) Import(ctx context.Context, batch domain.ImportBatch) (res *ImportResult, err error) {
	ctx, span := observability.StartSpan(ctx, "services.ImportService.Import",
		attribute.Int("import.items", len(batch.Items)),
	)
	start := time.Now()
	defer func() {
		observability.EndSpan(span, err)
		s.observe(ctx, batch, res, err, time.Since(start))
	}()

	if err := s.validate(ctx, batch); err != nil {
		return nil, err
	}

	res = &ImportResult{Items: len(batch.Items)}
	err = s.tx.InTx(ctx, func(tc store.TxContext) error {
		links, err := s.items.GetAncestorLinks(tc.Ctx, tc.Tx, batch.ReferencedIDs())
		if err != nil {
			return store.MapError("import.read_links", err)
		}
		plan, err := PlanImport(batch, StoreLinks(links))
		if err != nil {
			return err
		}

		if err := s.items.UpsertMany(tc.Ctx, tc.Tx, plan.Items); err != nil {
			return store.MapError("import.upsert_items", err)
		}
		n, err := s.stats.InsertIgnoringDuplicates(tc.Ctx, tc.Tx, plan.Statistics)
		if err != nil {
			return store.MapError("import.insert_statistics", err)
		}
		res.Snapshots = n

		after, err := s.items.GetAncestorIDs(tc.Ctx, tc.Tx, batch.OfferIDs())
		if err != nil {
			return store.MapError("import.read_ancestors", err)
		}
		bumped, err := s.items.BumpDate(tc.Ctx, tc.Tx, mergeBumpIDs(batch, plan.BumpIDs, after), batch.UpdateDate)
		if err != nil {
			return store.MapError("import.bump_dates", err)
		}
		res.Bumped = bumped
		return nil
	})
	if err != nil {
		return nil, store.MapError("import.write", err)
	}
	return res, nil
}

func (s *importService) Plan(ctx context.Context, batch domain.ImportBatch) (plan *ImportPlan, err error) {
	ctx, span := observability.StartSpan(ctx, "services.ImportService.Plan",
		attribute.Int("import.items", len(batch.Items)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := s.validate(ctx, batch); err != nil {
		return nil, err
	}
	links, err := s.items.GetAncestorLinks(ctx, nil, batch.ReferencedIDs())
	if err != nil {
		return nil, store.MapError("import.read_links", err)
	}
	return PlanImport(batch, StoreLinks(links))
}

func (s *importService) validate(ctx context.Context, batch domain.ImportBatch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	return s.validator.Validate(ctx, batch)
}

func (s *importService) observe(ctx context.Context, batch domain.ImportBatch, res *ImportResult, err error, elapsed time.Duration) {
	fields := append([]interface{}{
		"items", len(batch.Items),
		"update_date", batch.UpdateDate,
		"duration_ms", elapsed.Milliseconds(),
	}, ctxutil.LogFields(ctx)...)

	switch {
	case err == nil:
		observability.ObserveImport(observability.OutcomeCommitted, len(batch.Items), int(res.Snapshots))
		s.log.Info("import committed", append(fields, "snapshots", res.Snapshots, "bumped", res.Bumped)...)
	case domain.IsCode(err, domain.CodeValidation):
		observability.ObserveImport(observability.OutcomeRejected, len(batch.Items), 0)
		s.log.Info("import rejected", append(fields, "reason", domain.MessageOf(err))...)
	default:
		observability.ObserveImport(observability.OutcomeWriteFailed, len(batch.Items), 0)
		s.log.Error("import failed", append(fields, "error", err)...)
	}
}

// mergeBumpIDs unions the planned and post-write ancestor sets, dropping ids
// the batch writes itself.
func mergeBumpIDs(batch domain.ImportBatch, planned, after []uuid.UUID) []uuid.UUID {
	inBatch := batch.Index()
	seen := map[uuid.UUID]struct{}{}
	out := make([]uuid.UUID, 0, len(planned)+len(after))
	for _, group := range [][]uuid.UUID{planned, after} {
		for _, id := range group {
			if _, skip := inBatch[id]; skip {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
