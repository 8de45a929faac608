package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/data/repos"
	"github.com/yungbote/megamarket-backend/internal/data/repos/testutil"
	"github.com/yungbote/megamarket-backend/internal/data/store"
	storetest "github.com/yungbote/megamarket-backend/internal/data/store/testutil"
	"github.com/yungbote/megamarket-backend/internal/domain"
)

type harness struct {
	conn    *gorm.DB
	imports ImportService
	nodes   NodeService
	sales   SalesService
}

func newHarness(t *testing.T, tx store.TxRunner) *harness {
	t.Helper()
	conn := testutil.DB(t)
	log := testutil.Logger(t)
	if tx == nil {
		tx = store.NewGormTxRunner(conn)
	}
	items := repos.NewItemRepo(conn, log, repos.ItemRepoConfig{})
	stats := repos.NewStatisticRepo(conn, log, repos.ItemRepoConfig{})
	return &harness{
		conn:    conn,
		imports: NewImportService(log, tx, items, stats),
		nodes:   NewNodeService(log, tx, items),
		sales:   NewSalesService(log, stats, DefaultSalesWindow),
	}
}

func (h *harness) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := h.conn.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func mustImport(t *testing.T, h *harness, batch domain.ImportBatch) *ImportResult {
	t.Helper()
	res, err := h.imports.Import(context.Background(), batch)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	return res
}

func TestImportThenReadAggregatedTree(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	t0 := planT0
	t1 := t0.Add(time.Hour)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	res := mustImport(t, h, domain.ImportBatch{UpdateDate: t0, Items: []domain.ImportItem{
		offer(b, ptrID(a), 100),
		offer(c, ptrID(a), 300),
		category(a, nil),
	}})
	if res.Items != 3 || res.Snapshots != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	tree, err := h.nodes.GetTree(ctx, a)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if tree.Price == nil || *tree.Price != 200 || len(tree.Children) != 2 {
		t.Fatalf("tree after first import: price=%v children=%d", tree.Price, len(tree.Children))
	}

	mustImport(t, h, domain.ImportBatch{UpdateDate: t1, Items: []domain.ImportItem{offer(b, ptrID(a), 150)}})

	tree, err = h.nodes.GetTree(ctx, a)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if tree.Price == nil || *tree.Price != 225 {
		t.Fatalf("category price after update: got %v want 225", tree.Price)
	}
	if tree.Date != domain.FormatTimestamp(t1) {
		t.Fatalf("ancestor date must follow the update: got %s want %s", tree.Date, domain.FormatTimestamp(t1))
	}
	if tree.Type != domain.ItemTypeCategory || tree.ParentID != nil {
		t.Fatalf("unexpected root: %+v", tree)
	}

	for _, child := range tree.Children {
		if child.ID == b && (child.Date != domain.FormatTimestamp(t1) || *child.Price != 150) {
			t.Fatalf("updated offer: %+v", child)
		}
	}

	sales, err := h.sales.ListSales(ctx, t0)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	seen := map[uuid.UUID]bool{}
	for _, s := range sales {
		seen[s.ID] = true
	}
	if len(sales) != 2 || !seen[b] || !seen[c] {
		t.Fatalf("expected B and C snapshots at T0, got %+v", sales)
	}

	sales, err = h.sales.ListSales(ctx, t1)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 3 {
		t.Fatalf("expected three snapshots in the window, got %d", len(sales))
	}
	for _, s := range sales {
		if s.Type != domain.ItemTypeOffer {
			t.Fatalf("sales must only list offers: %+v", s)
		}
	}
}

func TestImportReparentBumpsOldAndNewAncestors(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	t0 := planT0
	t1 := t0.Add(2 * time.Hour)
	left, right, off := uuid.New(), uuid.New(), uuid.New()

	mustImport(t, h, domain.ImportBatch{UpdateDate: t0, Items: []domain.ImportItem{
		category(left, nil),
		category(right, nil),
		offer(off, ptrID(left), 10),
	}})
	mustImport(t, h, domain.ImportBatch{UpdateDate: t1, Items: []domain.ImportItem{offer(off, ptrID(right), 10)}})

	for _, id := range []uuid.UUID{left, right} {
		node, err := h.nodes.GetTree(ctx, id)
		if err != nil {
			t.Fatalf("GetTree(%s): %v", id, err)
		}
		if node.Date != domain.FormatTimestamp(t1) {
			t.Fatalf("%s date: got %s want %s", id, node.Date, domain.FormatTimestamp(t1))
		}
	}
	leftNode, _ := h.nodes.GetTree(ctx, left)
	if leftNode.Price != nil || len(leftNode.Children) != 0 {
		t.Fatalf("old parent should be empty: %+v", leftNode)
	}
}

func TestImportRejectsMissingParentWithoutWriting(t *testing.T) {
	h := newHarness(t, nil)
	batch := domain.ImportBatch{UpdateDate: planT0, Items: []domain.ImportItem{
		category(uuid.New(), nil),
		offer(uuid.New(), ptrID(uuid.New()), 1),
	}}
	_, err := h.imports.Import(context.Background(), batch)
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := h.count(t, &domain.Item{}); n != 0 {
		t.Fatalf("rejected import wrote %d items", n)
	}
}

func TestImportRejectsOfferParentAndTypeChange(t *testing.T) {
	h := newHarness(t, nil)
	cat, off := uuid.New(), uuid.New()
	mustImport(t, h, domain.ImportBatch{UpdateDate: planT0, Items: []domain.ImportItem{
		category(cat, nil),
		offer(off, ptrID(cat), 5),
	}})

	_, err := h.imports.Import(context.Background(), domain.ImportBatch{
		UpdateDate: planT0.Add(time.Minute),
		Items:      []domain.ImportItem{offer(uuid.New(), ptrID(off), 1)},
	})
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("offer parent: expected validation error, got %v", err)
	}

	_, err = h.imports.Import(context.Background(), domain.ImportBatch{
		UpdateDate: planT0.Add(time.Minute),
		Items:      []domain.ImportItem{category(off, ptrID(cat))},
	})
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("type change: expected validation error, got %v", err)
	}
	if n := h.count(t, &domain.Item{}); n != 2 {
		t.Fatalf("rejected imports changed the store: %d items", n)
	}
}

func TestImportRollsBackOnCommitFailure(t *testing.T) {
	conn := testutil.DB(t)
	boom := errors.New("commit refused")
	runner := &storetest.InjectedTxRunner{DB: conn, FailCommit: boom}

	log := testutil.Logger(t)
	items := repos.NewItemRepo(conn, log, repos.ItemRepoConfig{})
	stats := repos.NewStatisticRepo(conn, log, repos.ItemRepoConfig{})
	svc := NewImportService(log, runner, items, stats)

	cat := uuid.New()
	_, err := svc.Import(context.Background(), domain.ImportBatch{UpdateDate: planT0, Items: []domain.ImportItem{
		category(cat, nil),
		offer(uuid.New(), ptrID(cat), 3),
	}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected commit failure, got %v", err)
	}
	if domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("write failures must not look like validation errors")
	}

	var n int64
	conn.Model(&domain.Item{}).Count(&n)
	if n != 0 {
		t.Fatalf("rolled back import left %d items", n)
	}
	conn.Model(&domain.ItemStatistic{}).Count(&n)
	if n != 0 {
		t.Fatalf("rolled back import left %d snapshots", n)
	}
	if _, commits, rollbacks := runner.Counts(); commits != 0 || rollbacks != 1 {
		t.Fatalf("commits=%d rollbacks=%d", commits, rollbacks)
	}
}

func TestImportPlanDoesNotWrite(t *testing.T) {
	h := newHarness(t, nil)
	cat, off := uuid.New(), uuid.New()
	plan, err := h.imports.Plan(context.Background(), domain.ImportBatch{UpdateDate: planT0, Items: []domain.ImportItem{
		offer(off, ptrID(cat), 7),
		category(cat, nil),
	}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Items) != 2 || plan.Items[0].ID != cat || len(plan.Statistics) != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if n := h.count(t, &domain.Item{}); n != 0 {
		t.Fatalf("dry run wrote %d items", n)
	}
}

func TestDeleteRemovesSubtreeAndStatistics(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	root, inner, off := uuid.New(), uuid.New(), uuid.New()
	mustImport(t, h, domain.ImportBatch{UpdateDate: planT0, Items: []domain.ImportItem{
		category(root, nil),
		category(inner, ptrID(root)),
		offer(off, ptrID(inner), 9),
	}})

	if err := h.nodes.Delete(ctx, root); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := h.count(t, &domain.Item{}); n != 0 {
		t.Fatalf("delete left %d items", n)
	}
	if n := h.count(t, &domain.ItemStatistic{}); n != 0 {
		t.Fatalf("delete left %d snapshots", n)
	}
	if _, err := h.nodes.GetTree(ctx, off); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("deleted offer should be gone, got %v", err)
	}
	if err := h.nodes.Delete(ctx, root); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestGetTreeAggregatesDeepChain(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	ids := make([]uuid.UUID, 300)
	for i := range ids {
		ids[i] = uuid.New()
	}
	items := []domain.ImportItem{offer(uuid.New(), ptrID(ids[len(ids)-1]), 500)}
	for i := len(ids) - 1; i >= 0; i-- {
		var parent *uuid.UUID
		if i > 0 {
			parent = ptrID(ids[i-1])
		}
		items = append(items, category(ids[i], parent))
	}
	mustImport(t, h, domain.ImportBatch{UpdateDate: planT0, Items: items})

	tree, err := h.nodes.GetTree(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if tree.Price == nil || *tree.Price != 500 {
		t.Fatalf("root of a 300-deep chain: price=%v want 500", tree.Price)
	}
}

func TestReimportingRootOfferAtSameDateKeepsOneSale(t *testing.T) {
	h := newHarness(t, nil)
	id := uuid.New()
	batch := domain.ImportBatch{UpdateDate: planT0, Items: []domain.ImportItem{offer(id, nil, 70)}}
	mustImport(t, h, batch)
	mustImport(t, h, batch)

	sales, err := h.sales.ListSales(context.Background(), planT0)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 1 || sales[0].ID != id {
		t.Fatalf("expected a single sale for the root offer, got %+v", sales)
	}
}
