package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/coderag/internal/domain/batch"
	ingestuc "github.com/kailas-cloud/coderag/internal/usecase/ingest"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Ingest files or directories into the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sums, err := ingestPaths(cmd.Context(), a.ingest, args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sums)
		},
	}
}

// pathIngester is the part of the ingestion service the command drives.
type pathIngester interface {
	IngestFiles(ctx context.Context, files []ingestuc.File) batch.Summary
	IngestDir(ctx context.Context, root string) (batch.Summary, error)
}

// ingestPaths walks directories and uploads loose files as one batch.
func ingestPaths(ctx context.Context, svc pathIngester, paths []string) ([]batch.Summary, error) {
	var sums []batch.Summary
	var files []ingestuc.File

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			sum, err := svc.IngestDir(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("ingest %s: %w", p, err)
			}
			sums = append(sums, sum)
			continue
		}
		data, err := os.ReadFile(filepath.Clean(p))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, ingestuc.File{Name: filepath.Base(p), Data: data})
	}

	if len(files) > 0 {
		sums = append(sums, svc.IngestFiles(ctx, files))
	}
	return sums, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
