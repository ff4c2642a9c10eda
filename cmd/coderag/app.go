package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/chunking"
	"github.com/kailas-cloud/coderag/internal/config"
	dbRedis "github.com/kailas-cloud/coderag/internal/db/redis"
	"github.com/kailas-cloud/coderag/internal/domain"
	"github.com/kailas-cloud/coderag/internal/ingest/encoding"
	"github.com/kailas-cloud/coderag/internal/ingest/extract"
	logpkg "github.com/kailas-cloud/coderag/internal/logger"
	"github.com/kailas-cloud/coderag/internal/metrics"
	chunkrepo "github.com/kailas-cloud/coderag/internal/repository/chunk"
	collectionrepo "github.com/kailas-cloud/coderag/internal/repository/collection"
	"github.com/kailas-cloud/coderag/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/coderag/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/coderag/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/coderag/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/coderag/internal/usecase/ingest"
	"github.com/kailas-cloud/coderag/internal/usecase/pipeline"
	"github.com/kailas-cloud/coderag/internal/usecase/session"
	"github.com/kailas-cloud/coderag/internal/usecase/vectorstore"
)

// app is the composition root shared by every in-process command.
type app struct {
	cfg      config.Config
	env      string
	logger   *zap.Logger
	store    *dbRedis.Store
	vectors  *vectorstore.Service
	sessions *session.Store
	pipeline *pipeline.Pipeline
	ingest   *ingestuc.Service
	health   *healthuc.Service
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logpkg.NewLogger(opts.env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	gateway := buildGateway(cfg, store, logger)

	chunks := chunkrepo.New(store, cfg.Storage.KeyPrefix, cfg.RAG.Collection, logger)
	collections := collectionrepo.New(store, cfg.Storage.KeyPrefix).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	vectors := vectorstore.New(chunks, collections, store, cfg.RAG.Collection, gateway.Dimension(), logger)
	if err := vectors.Init(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init vector store: %w", err)
	}

	sessions := session.New(logger).
		WithHistoryCap(cfg.RAG.HistoryCap).
		WithTimeout(time.Duration(cfg.RAG.SessionTimeoutMin) * time.Minute)

	chat := openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Logger:      logger,
	})

	chunker := chunking.New(
		chunking.WithProfiles(cfg.Chunking.Profiles),
		chunking.WithLogger(logger),
	)

	pipe := pipeline.New(gateway, vectors, sessions, chat, chunker, logger).
		WithTopK(cfg.RAG.TopK).
		WithChatHistory(cfg.RAG.MaxHistory)

	extractor := extract.New(encoding.New(logger), logger)
	ingest := ingestuc.New(extractor, chunker, gateway, vectors, ingestuc.Config{
		BatchSize:      cfg.Ingest.BatchSize,
		EmbedBatchSize: cfg.Ingest.EmbedBatchSize,
		MaxFileSize:    int64(cfg.Ingest.MaxFileSizeMB) << 20,
	}, logger)

	return &app{
		cfg:      cfg,
		env:      opts.env,
		logger:   logger,
		store:    store,
		vectors:  vectors,
		sessions: sessions,
		pipeline: pipe,
		ingest:   ingest,
		health:   healthuc.New(store, vectors, gateway, chat, logger),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// buildGateway assembles each provider tier as
// OpenAI-compatible client -> cache -> instrumented, in fallback order.
func buildGateway(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) *embeddinguc.Gateway {
	var tiers []embeddinguc.Tier
	for _, t := range []struct {
		label string
		pc    config.ProviderConfig
	}{
		{embeddinguc.TierPrimary, cfg.Embedding.Primary},
		{embeddinguc.TierSecondary, cfg.Embedding.Secondary},
	} {
		if !t.pc.Enabled() {
			continue
		}
		tiers = append(tiers, embeddinguc.Tier{
			Label:    t.label,
			Name:     t.pc.Name,
			Embedder: buildEmbedder(cfg, t.pc, store, logger),
		})
		logger.Info("Embedding tier configured",
			zap.String("tier", t.label),
			zap.String("provider", t.pc.Name),
			zap.String("model", t.pc.Model))
	}
	if len(tiers) == 0 {
		logger.Warn("No embedding provider configured, using hash embeddings")
	}
	return embeddinguc.NewGateway(cfg.Embedding.Dimension, logger, tiers...)
}

func buildEmbedder(
	cfg config.Config, pc config.ProviderConfig, store *dbRedis.Store, logger *zap.Logger,
) domain.Embedder {
	var e domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     pc.APIKey,
		BaseURL:    pc.BaseURL,
		Model:      pc.Model,
		Dimensions: cfg.Embedding.Dimension,
		Provider:   pc.Name,
		Logger:     logger,
	})

	if cfg.Embedding.Cache.Enabled {
		e = embcache.New(e, store, embcache.Options{
			KeyPrefix: cfg.Storage.KeyPrefix,
			Model:     pc.Name + ":" + pc.Model,
			TTL:       time.Duration(cfg.Embedding.Cache.TTLHrs) * time.Hour,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(e, pc.Name, pc.Model, cfg.Embedding.BatchSize, logger)
}
