package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/stylesearch/internal/domain"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/channel"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/result"
	"github.com/kailas-cloud/stylesearch/internal/metrics"
)

// Retrieve runs the vector and keyword channels concurrently and joins on both.
// A vector failure is returned and cancels the keyword branch; a keyword
// failure only empties the keyword hits.
func (s *Service) Retrieve(
	ctx context.Context, canonical string, keywords []string,
) (vectorHits, keywordHits []result.Result, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := s.searchVector(gctx, canonical)
		if err != nil {
			return err
		}
		vectorHits = hits
		return nil
	})

	g.Go(func() error {
		keywordHits = s.searchKeyword(gctx, keywords)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return vectorHits, keywordHits, nil
}

// searchVector embeds the canonical text and runs the KNN query.
func (s *Service) searchVector(ctx context.Context, canonical string) ([]result.Result, error) {
	start := time.Now()
	defer observeStage("vector", start)

	embs, err := domain.EmbedTexts(ctx, s.embed, []string{canonical})
	if err != nil {
		metrics.SearchChannelErrorsTotal.WithLabelValues(channel.Vector.String()).Inc()
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embs.TotalTokens)

	vector := embs.Embeddings[0]
	if len(vector) == 0 {
		metrics.SearchChannelErrorsTotal.WithLabelValues(channel.Vector.String()).Inc()
		return nil, fmt.Errorf("vectorize query: empty vector: %w", domain.ErrEmbeddingProviderError)
	}

	hits, err := s.repo.SearchKNN(ctx, vector, true, s.opts.ChannelLimit)
	if err != nil {
		metrics.SearchChannelErrorsTotal.WithLabelValues(channel.Vector.String()).Inc()
		return nil, fmt.Errorf("search knn: %w", err)
	}

	metrics.SearchChannelHits.WithLabelValues(channel.Vector.String()).Observe(float64(len(hits)))
	return hits, nil
}

// searchKeyword runs the title match on the leading keywords. It never fails:
// errors and cancellation degrade to zero hits.
func (s *Service) searchKeyword(ctx context.Context, keywords []string) []result.Result {
	if len(keywords) == 0 {
		return nil
	}

	start := time.Now()
	defer observeStage("keyword", start)

	// More terms over-constrain the AND match and tend to return nothing.
	terms := keywords[:min(len(keywords), s.opts.MaxKeywords)]

	hits, err := s.repo.SearchKeyword(ctx, terms, true, true, s.opts.ChannelLimit)
	if err != nil {
		metrics.SearchChannelErrorsTotal.WithLabelValues(channel.Keyword.String()).Inc()
		s.log(ctx).Warn("Keyword channel failed, continuing with vector hits only",
			zap.Strings("terms", terms),
			zap.Error(err),
		)
		return nil
	}

	out := make([]result.Result, len(hits))
	for i, h := range hits {
		out[i] = h.WithScore(KeywordRelevance)
	}

	metrics.SearchChannelHits.WithLabelValues(channel.Keyword.String()).Observe(float64(len(out)))
	return out
}

func observeStage(stage string, start time.Time) {
	metrics.SearchStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
