package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/data/store"
	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

// ItemReader is the read side of the item store the validator needs.
type ItemReader interface {
	FilterIDsPresent(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Item, error)
	GetByIDsAndType(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, typ domain.ItemType) ([]*domain.Item, error)
}

const (
	msgMissingParents = "Not all parents exist for items: neither in request nor in database"
	msgOfferParents   = "Some of parents are actually OFFER, not CATEGORY"
	msgTypeChanged    = "Import can't change type of item. Changed for this items:"
)

// ImportValidator checks a structurally valid batch against the store.
type ImportValidator struct {
	items ItemReader
	log   *logger.Logger
}

func NewImportValidator(items ItemReader, baseLog *logger.Logger) *ImportValidator {
	return &ImportValidator{items: items, log: baseLog.With("component", "ImportValidator")}
}

// Validate runs the parent-existence, parent-type and type-immutability
// checks concurrently. Every violation ends up in one validation error;
// a failing store read aborts with a mapped infrastructure error instead.
func (v *ImportValidator) Validate(ctx context.Context, batch domain.ImportBatch) error {
	const op = "import.validate"
	external := batch.ExternalParentIDs()
	var violations [3]string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		msg, err := v.checkParentsExist(gctx, external)
		violations[0] = msg
		return err
	})
	g.Go(func() error {
		msg, err := v.checkParentTypes(gctx, external)
		violations[1] = msg
		return err
	})
	g.Go(func() error {
		msg, err := v.checkTypesUnchanged(gctx, batch)
		violations[2] = msg
		return err
	})
	if err := g.Wait(); err != nil {
		return store.MapError(op, err)
	}

	var parts []string
	for _, msg := range violations {
		if msg != "" {
			parts = append(parts, msg)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	v.log.Debug("import rejected", "items", len(batch.Items), "violations", len(parts))
	return domain.Validation(op, "%s", strings.Join(parts, "\n"))
}

func (v *ImportValidator) checkParentsExist(ctx context.Context, external []uuid.UUID) (string, error) {
	if len(external) == 0 {
		return "", nil
	}
	present, err := v.items.FilterIDsPresent(ctx, nil, external)
	if err != nil {
		return "", err
	}
	if len(present) == len(external) {
		return "", nil
	}
	found := make(map[uuid.UUID]struct{}, len(present))
	for _, id := range present {
		found[id] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range external {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return msgMissingParents + ": " + domain.JoinIDs(missing, ", "), nil
}

func (v *ImportValidator) checkParentTypes(ctx context.Context, external []uuid.UUID) (string, error) {
	if len(external) == 0 {
		return "", nil
	}
	offers, err := v.items.GetByIDsAndType(ctx, nil, external, domain.ItemTypeOffer)
	if err != nil {
		return "", err
	}
	if len(offers) == 0 {
		return "", nil
	}
	ids := make([]uuid.UUID, 0, len(offers))
	for _, it := range offers {
		ids = append(ids, it.ID)
	}
	return msgOfferParents + ": " + domain.JoinIDs(ids, ", "), nil
}

func (v *ImportValidator) checkTypesUnchanged(ctx context.Context, batch domain.ImportBatch) (string, error) {
	if len(batch.Items) == 0 {
		return "", nil
	}
	existing, err := v.items.GetByIDs(ctx, nil, batch.IDs())
	if err != nil {
		return "", err
	}
	declared := make(map[uuid.UUID]domain.ItemType, len(batch.Items))
	for _, it := range batch.Items {
		declared[it.ID] = it.Type
	}
	var changed []uuid.UUID
	for _, it := range existing {
		if want, ok := declared[it.ID]; ok && want != it.Type {
			changed = append(changed, it.ID)
		}
	}
	if len(changed) == 0 {
		return "", nil
	}
	return msgTypeChanged + "\n" + domain.JoinIDs(changed, "\n"), nil
}
