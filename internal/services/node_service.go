package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/megamarket-backend/internal/data/repos"
	"github.com/yungbote/megamarket-backend/internal/data/store"
	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/observability"
	"github.com/yungbote/megamarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/megamarket-backend/internal/platform/logger"
)

type NodeService interface {
	// GetTree returns the item and everything below it with aggregated
	// category prices.
	GetTree(ctx context.Context, id uuid.UUID) (*domain.PublicNode, error)
	// Delete removes the item together with its descendants and their
	// statistics.
	Delete(ctx context.Context, id uuid.UUID) error
}

type nodeService struct {
	log   *logger.Logger
	tx    store.TxRunner
	items repos.ItemRepo
}

func NewNodeService(baseLog *logger.Logger, tx store.TxRunner, items repos.ItemRepo) NodeService {
	return &nodeService{
		log:   baseLog.With("service", "NodeService"),
		tx:    tx,
		items: items,
	}
}

func nodeNotFound(op string, id uuid.UUID) error {
	return domain.NotFound(op, "Node with id=%s not found", id)
}

func (s *nodeService) GetTree(ctx context.Context, id uuid.UUID) (node *domain.PublicNode, err error) {
	const op = "nodes.get"
	ctx, span := observability.StartSpan(ctx, "services.NodeService.GetTree", attribute.String("item.id", id.String()))
	defer func() { observability.EndSpan(span, err) }()

	tree, err := s.items.GetSubtreeWithAggregates(ctx, nil, id)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	if tree == nil {
		return nil, nodeNotFound(op, id)
	}
	observability.ObserveTree(tree.Len())
	return ProjectSubtree(tree), nil
}

func (s *nodeService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	const op = "nodes.delete"
	ctx, span := observability.StartSpan(ctx, "services.NodeService.Delete", attribute.String("item.id", id.String()))
	defer func() { observability.EndSpan(span, err) }()

	var descendants int
	err = s.tx.InTx(ctx, func(tc store.TxContext) error {
		below, err := s.items.GetDescendantIDs(tc.Ctx, tc.Tx, id)
		if err != nil {
			return store.MapError(op, err)
		}
		n, err := s.items.CascadeDeleteByID(tc.Ctx, tc.Tx, id)
		if err != nil {
			return store.MapError(op, err)
		}
		if n == 0 {
			return nodeNotFound(op, id)
		}
		descendants = len(below)
		return nil
	})
	if err != nil {
		return err
	}
	observability.ObserveDelete(descendants + 1)
	s.log.Info("item deleted", append([]interface{}{"item_id", id, "descendants", descendants}, ctxutil.LogFields(ctx)...)...)
	return nil
}
