package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/config"
	"github.com/kailas-cloud/stylesearch/internal/db"
	dbPostgres "github.com/kailas-cloud/stylesearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/stylesearch/internal/db/redis"
	"github.com/kailas-cloud/stylesearch/internal/domain"
	"github.com/kailas-cloud/stylesearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/stylesearch/internal/repository/catalog"
	"github.com/kailas-cloud/stylesearch/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/stylesearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/stylesearch/internal/usecase/embedding"
)

// backend groups the catalog store with the repositories built on it.
type backend struct {
	store   db.Store
	catalog *catalogrepo.Repo
	writer  *catalogrepo.Writer
	index   db.ProductIndexSpec
}

// buildBackend connects to the configured driver, waits for it and prepares
// the product index where the driver needs one.
func buildBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	var (
		store  db.Store
		target string
		prefix string
		err    error
	)
	switch cfg.Database.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		target, prefix = cfg.Index.Name, cfg.Database.KeyPrefix
	case config.DriverPostgres:
		store, err = dbPostgres.NewStore(ctx, dbPostgres.Config{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
		})
		target = cfg.Database.Table
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	spec := db.ProductIndexSpec{
		Name:           cfg.Index.Name,
		Prefix:         cfg.Database.KeyPrefix,
		Dim:            cfg.Embedding.Dimensions,
		M:              cfg.Index.HNSWM,
		EFConstruction: cfg.Index.HNSWEFConstruct,
	}
	if mgr, ok := store.(db.IndexManager); ok && cfg.Index.AutoCreate {
		created, err := catalogrepo.EnsureIndex(ctx, mgr, spec)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure product index: %w", err)
		}
		logger.Info("Product index ready",
			zap.String("index", cfg.Index.Name),
			zap.Bool("created", created),
		)
	}

	b := &backend{
		store:   store,
		catalog: catalogrepo.New(store, target, prefix),
		index:   spec,
	}

	// Writes go to the key prefix on Redis (the index picks them up) and to the table on Postgres.
	if w, ok := store.(db.CatalogWriter); ok {
		writeTarget := cfg.Database.Table
		if cfg.Database.Driver == config.DriverRedis {
			writeTarget = cfg.Database.KeyPrefix
		}
		b.writer = catalogrepo.NewWriter(w, writeTarget)
	}
	return b, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) *embeddinguc.InstrumentedEmbedder {
	// Base provider (with transport metrics built-in)
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Normalize:  cfg.Embedding.Normalize,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if kv, ok := store.(db.KVStore); ok && cfg.Embedding.Cache.Enabled {
		embedder = embcache.New(base, kv, embcache.Config{
			KeyPrefix: cfg.Embedding.Cache.KeyPrefix,
			TTL:       time.Duration(cfg.Embedding.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger,
		embeddinguc.WithDimensions(cfg.Embedding.Dimensions),
		embeddinguc.WithBatchSize(cfg.Embedding.BatchSize),
	)
}

// queryEmbedder is what the search and health services need from the embedder.
type queryEmbedder interface {
	domain.Embedder
	domain.HealthChecker
}

// withQueryInstruction prefixes search queries with the model's task
// instruction. Imports call buildEmbedder directly so documents stay bare.
func withQueryInstruction(e queryEmbedder, instruction string) queryEmbedder {
	if strings.TrimSpace(instruction) == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

func buildParser(cfg config.Config, logger *zap.Logger) *openaiTransport.Parser {
	return openaiTransport.NewParser(&openaiTransport.ParserConfig{
		APIKey:  cfg.Parser.APIKey,
		BaseURL: cfg.Parser.BaseURL,
		Model:   cfg.Parser.Model,
		Timeout: time.Duration(cfg.Parser.TimeoutSec) * time.Second,
		Logger:  logger,
	})
}
