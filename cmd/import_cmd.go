package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/http/request"
	"github.com/yungbote/megamarket-backend/internal/services"
)

type importOptions struct {
	file   string
	dryRun bool
}

type importSummary struct {
	DryRun    bool     `json:"dryRun"`
	Items     int      `json:"items"`
	Snapshots int64    `json:"snapshots"`
	Bumped    int64    `json:"bumped"`
	Order     []string `json:"order,omitempty"`
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON batch file (same body as POST /imports)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Migrate(ctx); err != nil {
				return err
			}
			return runImport(ctx, a.Services.Import, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Batch file, '-' for stdin (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate and plan without writing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(ctx context.Context, imports services.ImportService, opts importOptions, out io.Writer) error {
	batch, err := readBatch(opts.file)
	if err != nil {
		return err
	}

	summary := importSummary{DryRun: opts.dryRun, Items: len(batch.Items)}
	if opts.dryRun {
		plan, err := imports.Plan(ctx, batch)
		if err != nil {
			return describe(err)
		}
		summary.Snapshots = int64(len(plan.Statistics))
		summary.Bumped = int64(len(plan.BumpIDs))
		for _, it := range plan.Items {
			summary.Order = append(summary.Order, it.ID.String())
		}
	} else {
		res, err := imports.Import(ctx, batch)
		if err != nil {
			return describe(err)
		}
		summary.Snapshots = res.Snapshots
		summary.Bumped = res.Bumped
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func readBatch(path string) (domain.ImportBatch, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return domain.ImportBatch{}, fmt.Errorf("open batch: %w", err)
		}
		defer f.Close()
		r = f
	}
	batch, err := request.DecodeImport(r)
	if err != nil {
		return domain.ImportBatch{}, fmt.Errorf("decode batch: %w", err)
	}
	return batch, nil
}

func describe(err error) error {
	if domain.IsCode(err, domain.CodeValidation) {
		return fmt.Errorf("import rejected:\n%s", domain.MessageOf(err))
	}
	return err
}
