package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/services"
)

type recordingImports struct {
	imported *domain.ImportBatch
	planned  *domain.ImportBatch
	err      error
}

func (r *recordingImports) Import(_ context.Context, batch domain.ImportBatch) (*services.ImportResult, error) {
	r.imported = &batch
	if r.err != nil {
		return nil, r.err
	}
	return &services.ImportResult{Items: len(batch.Items), Snapshots: 1, Bumped: 2}, nil
}

func (r *recordingImports) Plan(_ context.Context, batch domain.ImportBatch) (*services.ImportPlan, error) {
	r.planned = &batch
	if r.err != nil {
		return nil, r.err
	}
	plan := &services.ImportPlan{}
	for _, it := range batch.Items {
		plan.Items = append(plan.Items, it.ToItem(batch.UpdateDate))
	}
	return plan, nil
}

func writeBatch(t *testing.T, id uuid.UUID) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.json")
	body := `{"updateDate":"2022-05-28T21:12:01.000Z","items":[{"id":"` + id.String() + `","name":"root","type":"CATEGORY"}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	return path
}

func TestRunImportWritesSummary(t *testing.T) {
	id := uuid.New()
	imports := &recordingImports{}
	var out bytes.Buffer
	if err := runImport(context.Background(), imports, importOptions{file: writeBatch(t, id)}, &out); err != nil {
		t.Fatalf("runImport: %v", err)
	}
	if imports.imported == nil || imports.planned != nil {
		t.Fatalf("expected a real import")
	}
	var got importSummary
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got.Items != 1 || got.Snapshots != 1 || got.Bumped != 2 || got.DryRun {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestRunImportDryRunOnlyPlans(t *testing.T) {
	id := uuid.New()
	imports := &recordingImports{}
	var out bytes.Buffer
	if err := runImport(context.Background(), imports, importOptions{file: writeBatch(t, id), dryRun: true}, &out); err != nil {
		t.Fatalf("runImport: %v", err)
	}
	if imports.imported != nil || imports.planned == nil {
		t.Fatalf("dry run must not import")
	}
	if !strings.Contains(out.String(), id.String()) {
		t.Fatalf("plan order missing from output: %s", out.String())
	}
}

func TestRunImportReportsRejection(t *testing.T) {
	imports := &recordingImports{err: domain.Validation("import.validate", "Some of parents are actually OFFER, not CATEGORY: x")}
	err := runImport(context.Background(), imports, importOptions{file: writeBatch(t, uuid.New())}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "import rejected") {
		t.Fatalf("expected rejection, got %v", err)
	}
}
