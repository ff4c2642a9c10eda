package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	chiTransport "github.com/kailas-cloud/coderag/internal/transport/chi"
	ingestuc "github.com/kailas-cloud/coderag/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/coderag/internal/usecase/search"
	"github.com/kailas-cloud/coderag/internal/version"
)

const sessionSweepInterval = time.Minute

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	a.logger.Info("Starting coderag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("collection", cfg.RAG.Collection),
	)

	server := chiTransport.NewServer(a.pipeline, a.ingest, a.sessions, a.vectors, a.health, a.logger).
		WithPagination(cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize).
		WithMaxUpload(int64(cfg.HTTP.MaxUploadMB) << 20).
		WithHybrid(searchuc.New(a.pipeline, a.vectors, a.logger))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server, cfg.Auth.APIKeys, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.sessions.Run(ctx, sessionSweepInterval)
	})

	if dir := cfg.Ingest.DataDir; dir != "" {
		g.Go(func() error {
			a.ingestDataDir(ctx, dir)
			if !cfg.Ingest.Watch {
				return nil
			}
			return ingestuc.NewWatcher(dir, a.ingest, a.logger).Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}

// ingestDataDir loads the configured directory at startup. Failures are
// logged; the server keeps running with whatever is already indexed.
func (a *app) ingestDataDir(ctx context.Context, dir string) {
	sum, err := a.ingest.IngestDir(ctx, dir)
	if err != nil {
		a.logger.Error("Startup ingestion failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	a.logger.Info("Startup ingestion finished",
		zap.String("dir", dir),
		zap.String("status", sum.Status),
		zap.Int("files_processed", sum.FilesProcessed),
		zap.Int("files_failed", sum.FilesFailed),
		zap.Int("chunks_created", sum.ChunksCreated))
}
