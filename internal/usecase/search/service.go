package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/domain"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/query"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/rerank"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/result"
	"github.com/kailas-cloud/stylesearch/internal/logger"
)

// Service runs the hybrid product search: parse, enrich, retrieve on both
// channels, merge and rerank.
type Service struct {
	parser QueryParser
	embed  Embedder
	repo   CatalogRepository
	opts   Options
	logger *zap.Logger
}

// New creates a search service with DefaultOptions.
func New(parser QueryParser, embed Embedder, repo CatalogRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		parser: parser,
		embed:  embed,
		repo:   repo,
		opts:   DefaultOptions(),
		logger: logger,
	}
}

// WithOptions replaces the pipeline tuning.
func (s *Service) WithOptions(opts Options) *Service {
	s.opts = opts
	return s
}

// Options returns the active tuning.
func (s *Service) Options() Options { return s.opts }

// Search returns the full reranked candidate list for the query text.
// prefs may be nil. Failures of the parser, the embedder or the vector channel
// are returned wrapped in domain.ErrSearchUnavailable.
func (s *Service) Search(
	ctx context.Context, text string, prefs *query.Preferences,
) ([]result.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}

	ctx = logger.With(ctx, s.logger, zap.String("query", text))

	start := time.Now()
	parsed, err := s.parser.Parse(ctx, text)
	observeStage("parse", start)
	if err != nil {
		return nil, fmt.Errorf("%w: parse query: %w", domain.ErrSearchUnavailable, err)
	}

	enriched := s.Enrich(ctx, parsed, prefs)

	vectorHits, keywordHits, err := s.Retrieve(ctx, enriched.Canonical, enriched.Keywords)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	start = time.Now()
	merged := Merge(vectorHits, keywordHits, s.opts.Weights)
	ranked := rerankWith(merged, s.opts.Rules, s.logFired(ctx))
	observeStage("rank", start)

	s.log(ctx).Debug("Search completed",
		zap.String("canonical", enriched.Canonical),
		zap.Strings("keywords", enriched.Keywords),
		zap.Int("vector_hits", len(vectorHits)),
		zap.Int("keyword_hits", len(keywordHits)),
		zap.Int("results", len(ranked)),
	)

	return ranked, nil
}

// logFired returns a debug hook for rerank adjustments, or nil when debug is off.
func (s *Service) logFired(ctx context.Context) firedFunc {
	log := s.log(ctx)
	if !log.Core().Enabled(zap.DebugLevel) {
		return nil
	}
	return func(r result.Result, fired []rerank.Adjustment) {
		log.Debug("Rerank rules fired",
			zap.String("id", r.ID()),
			zap.Float64("score", r.Score()),
			zap.Strings("adjustments", formatAdjustments(fired)),
		)
	}
}

// log prefers the request-scoped logger.
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
