package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/db"
	logpkg "github.com/kailas-cloud/stylesearch/internal/logger"
	"github.com/kailas-cloud/stylesearch/internal/transport/feed"
	"github.com/kailas-cloud/stylesearch/internal/usecase/ingest"
)

func deleteCommand(c *cli.Context) error {
	env, cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, "delete", cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	path := c.String("file")
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open id list: %w", err)
	}
	ids, err := feed.ReadIDs(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	logger.Info("Loaded id list", zap.String("file", path), zap.Int("ids", len(ids)))

	deps, err := buildBackend(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.store.Close()
	if deps.writer == nil {
		return fmt.Errorf("database driver %q does not support writes", cfg.Database.Driver)
	}

	marked, err := ingest.NewDeleter(deps.writer, logger).
		WithChunkSize(c.Int("chunk-size")).
		Delete(c.Context, ids)
	if err != nil {
		logger.Error("Soft delete stopped",
			zap.Int("marked", marked),
			zap.String("op", db.OpOf(err)),
			zap.Error(err),
		)
		return err
	}

	logger.Info("Soft delete finished",
		zap.Int("ids", len(ids)),
		zap.Int("marked", marked),
		zap.Int("skipped", len(ids)-marked),
	)
	return nil
}
