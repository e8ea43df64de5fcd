package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/db"
	"github.com/kailas-cloud/stylesearch/internal/domain"
	dombatch "github.com/kailas-cloud/stylesearch/internal/domain/batch"
	logpkg "github.com/kailas-cloud/stylesearch/internal/logger"
	"github.com/kailas-cloud/stylesearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/stylesearch/internal/repository/catalog"
	"github.com/kailas-cloud/stylesearch/internal/transport/feed"
	"github.com/kailas-cloud/stylesearch/internal/usecase/ingest"
)

func seedCommand(c *cli.Context) error {
	env, cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, "seed", cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	path := c.String("file")
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	products, err := feed.DecodeAmazonFashion(f, time.Now().UTC())
	if err != nil {
		return err
	}
	logger.Info("Loaded catalog dump",
		zap.String("file", path),
		zap.Int("products", len(products)),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	ctx := c.Context
	deps, err := buildBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.store.Close()
	if deps.writer == nil {
		return fmt.Errorf("database driver %q does not support writes", cfg.Database.Driver)
	}

	if c.Bool("reset") {
		if err := resetCatalog(c, deps, logger); err != nil {
			return err
		}
	}

	embedder := buildEmbedder(cfg, deps.store, logger)
	svc := ingest.New(deps.writer, embedder, logger).
		WithChunkSize(c.Int("chunk-size")).
		WithWorkers(c.Int("workers"))

	ctx, usage := domain.NewContextWithUsage(ctx)
	results := svc.Import(ctx, products)

	for _, r := range results {
		if r.Status() == dombatch.StatusError {
			logger.Error("Product not imported",
				zap.String("id", r.ID()),
				zap.String("op", db.OpOf(r.Err())),
				zap.Error(r.Err()),
			)
		}
	}

	sum := dombatch.Summarize(results)
	logger.Info("Catalog import finished",
		zap.Int("total", sum.Total),
		zap.Int("embedded", sum.Embedded),
		zap.Int("without_vector", sum.NoVector),
		zap.Int("failed", sum.Failed),
		zap.Int("embedding_tokens", usage.Tokens()),
	)

	if sum.Failed > 0 {
		return errors.New("some products were not imported")
	}
	return nil
}

// resetCatalog empties the catalog. Redis drops the index together with its
// documents and recreates it; table backends delete their rows.
func resetCatalog(c *cli.Context, deps *backend, logger *zap.Logger) error {
	if mgr, ok := deps.store.(db.IndexManager); ok {
		if err := catalogrepo.ResetIndex(c.Context, mgr, deps.index); err != nil {
			return fmt.Errorf("reset product index: %w", err)
		}
		logger.Info("Product index reset", zap.String("index", deps.index.Name))
		return nil
	}

	cleared, err := deps.writer.Clear(c.Context)
	if err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	if !cleared {
		logger.Warn("Catalog backend cannot be cleared, importing on top of existing rows")
		return nil
	}
	logger.Info("Catalog cleared")
	return nil
}
