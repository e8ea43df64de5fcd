package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/domain"
)

// DefaultMaxAPIBatchSize caps the number of texts sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// InstrumentedEmbedder is the outermost embedder decorator: it splits large
// batches, checks vector dimensions and logs every call. Request metrics live
// in transport/openai, cache metrics in repository/embcache.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	model     string
	dim       int
	batchSize int
	log       *zap.Logger
}

// Option configures an InstrumentedEmbedder.
type Option func(*InstrumentedEmbedder)

// WithDimensions rejects vectors whose length differs from dim. Zero disables the check.
func WithDimensions(dim int) Option {
	return func(e *InstrumentedEmbedder) { e.dim = dim }
}

// WithBatchSize overrides DefaultMaxAPIBatchSize. Non-positive values are ignored.
func WithBatchSize(n int) Option {
	return func(e *InstrumentedEmbedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// NewInstrumentedEmbedder decorates inner.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	logger *zap.Logger, opts ...Option,
) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &InstrumentedEmbedder{
		inner:     inner,
		model:     model,
		batchSize: DefaultMaxAPIBatchSize,
		log:       logger.With(zap.String("provider", provider), zap.String("model", model)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed embeds one text. An empty or wrong-sized vector is an error.
func (e *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	res, err := e.inner.Embed(ctx, text)
	took := time.Since(start)
	if err != nil {
		e.log.Error("Embedding request failed", zap.Duration("duration", took), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if err := e.checkDim(res.Embedding, false); err != nil {
		return domain.EmbeddingResult{}, err
	}

	e.log.Debug("Embedding request completed",
		zap.Duration("duration", took),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BatchEmbed embeds texts in chunks of at most batchSize, one provider call
// per chunk. Empty vectors are passed through so callers can handle them per
// item; any other size mismatch fails the batch.
func (e *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for lo := 0; lo < len(texts); lo += e.batchSize {
		chunk := texts[lo:min(lo+e.batchSize, len(texts))]

		res, err := domain.EmbedTexts(ctx, e.inner, chunk)
		if err != nil {
			e.log.Error("Batch embedding request failed",
				zap.Int("chunk_offset", lo),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		for _, vec := range res.Embeddings {
			if err := e.checkDim(vec, true); err != nil {
				return domain.BatchEmbeddingResult{}, err
			}
		}

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	e.log.Debug("Batch embedding completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("texts", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (e *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (e *InstrumentedEmbedder) checkDim(vec []float32, allowEmpty bool) error {
	if e.dim <= 0 || len(vec) == e.dim || (allowEmpty && len(vec) == 0) {
		return nil
	}
	return fmt.Errorf("%w: %s returned %d dimensions, expected %d",
		domain.ErrEmbeddingProviderError, e.model, len(vec), e.dim)
}
