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

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/stylesearch/internal/logger"
	"github.com/kailas-cloud/stylesearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/stylesearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/stylesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/stylesearch/internal/usecase/search"
	"github.com/kailas-cloud/stylesearch/internal/version"
)

func serveCommand(c *cli.Context) error {
	env, cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, "api", cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stylesearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterParserMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	ctx := c.Context
	deps, err := buildBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.store.Close()

	embedder := withQueryInstruction(
		buildEmbedder(cfg, deps.store, logger),
		cfg.Embedding.QueryInstruction,
	)
	parser := buildParser(cfg, logger)
	logger.Info("Model providers configured",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("query_instruction", cfg.Embedding.QueryInstruction != ""),
		zap.String("parser_model", cfg.Parser.Model),
	)

	opts := searchuc.Options{
		Weights: searchuc.Weights{
			Vector:  cfg.Search.VectorWeight,
			Keyword: cfg.Search.KeywordWeight,
		},
		MaxKeywords:  cfg.Search.MaxKeywords,
		ChannelLimit: cfg.Search.ChannelLimit,
		Rules:        cfg.Search.Rerank.Table(),
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid search options: %w", err)
	}
	logger.Info("Rerank rules loaded", zap.Strings("rules", opts.Rules.Names()))

	searchSvc := searchuc.New(parser, embedder, deps.catalog, logger).WithOptions(opts)
	healthSvc := healthuc.New(deps.store, embedder, parser)

	server := chiTransport.NewServer(
		searchSvc, healthSvc,
		time.Duration(cfg.Search.TimeoutSec)*time.Second,
		logger,
	)

	r := gochi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.HTTP.CORSOrigins))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
