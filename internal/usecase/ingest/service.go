package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/domain"
	dombatch "github.com/kailas-cloud/stylesearch/internal/domain/batch"
	"github.com/kailas-cloud/stylesearch/internal/domain/product"
	"github.com/kailas-cloud/stylesearch/internal/metrics"
)

// DefaultChunkSize is the number of products embedded and written per round-trip.
const DefaultChunkSize = 64

// DefaultWorkers is the number of chunks processed concurrently.
const DefaultWorkers = 4

// Service imports catalog products: embeds their text and writes them to the
// catalog with per-item outcome reporting.
type Service struct {
	writer    CatalogWriter
	embed     domain.Embedder
	chunkSize int
	workers   int
	logger    *zap.Logger
}

// New creates an import service.
func New(writer CatalogWriter, embed domain.Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		writer:    writer,
		embed:     embed,
		chunkSize: DefaultChunkSize,
		workers:   DefaultWorkers,
		logger:    logger,
	}
}

// WithChunkSize configures the chunk size.
func (s *Service) WithChunkSize(size int) *Service {
	if size > 0 {
		s.chunkSize = size
	}
	return s
}

// WithWorkers configures how many chunks are embedded and written concurrently.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// EmbeddingText is the text a product is vectorized from: the title, a period,
// then the description lines joined by spaces.
func EmbeddingText(p product.Product) string {
	desc := strings.Join(strings.Split(p.Description(), "\n"), " ")
	return p.Title() + ". " + desc
}

// Import embeds and stores products chunk by chunk. A failed embedding does not
// drop the product: it is stored without a vector and reported as no_vector.
// A cancelled context fails every chunk not yet started.
func (s *Service) Import(ctx context.Context, products []product.Product) []dombatch.Result {
	results := make([]dombatch.Result, len(products))
	if len(products) == 0 {
		return results
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		for i, p := range products {
			results[i] = dombatch.NewError(p.ID(), fmt.Errorf("create worker pool: %w", err))
		}
		return results
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		done   atomic.Int64
		tokens atomic.Int64
	)
	for start := 0; start < len(products); start += s.chunkSize {
		end := min(start+s.chunkSize, len(products))
		chunk, out := products[start:end], results[start:end]

		task := func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				failAll(chunk, out, fmt.Errorf("import: %w", err))
				return
			}
			chunkStart := time.Now()
			tokens.Add(int64(s.importChunk(ctx, chunk, out)))
			metrics.IngestChunkDuration.Observe(time.Since(chunkStart).Seconds())
			s.logger.Info("Imported products",
				zap.Int64("done", done.Add(int64(len(chunk)))),
				zap.Int("total", len(products)),
			)
		}

		wg.Add(1)
		if err := pool.Submit(task); err != nil {
			wg.Done()
			failAll(chunk, out, fmt.Errorf("submit chunk: %w", err))
		}
	}
	wg.Wait()

	for _, r := range results {
		metrics.IngestProductsTotal.WithLabelValues(string(r.Status())).Inc()
	}
	domain.UsageFromContext(ctx).AddTokens(int(tokens.Load()))
	return results
}

func failAll(chunk []product.Product, results []dombatch.Result, err error) {
	for i, p := range chunk {
		results[i] = dombatch.NewError(p.ID(), err)
	}
}

// importChunk fills results for one chunk and returns the embedding tokens spent.
func (s *Service) importChunk(ctx context.Context, chunk []product.Product, results []dombatch.Result) int {
	texts := make([]string, len(chunk))
	for i, p := range chunk {
		texts[i] = EmbeddingText(p)
	}

	vectors, tokens, embedErr := s.vectorize(ctx, texts)

	if err := s.writer.Upsert(ctx, chunk, vectors); err != nil {
		failAll(chunk, results, fmt.Errorf("upsert: %w", err))
		return tokens
	}

	for i, p := range chunk {
		switch {
		case embedErr != nil:
			results[i] = dombatch.NewNoVector(p.ID(), embedErr)
		case len(vectors[i]) == 0:
			results[i] = dombatch.NewNoVector(p.ID(),
				fmt.Errorf("empty embedding: %w", domain.ErrEmbeddingProviderError))
		default:
			results[i] = dombatch.NewOK(p.ID())
		}
	}
	return tokens
}

// vectorize returns one vector per text, or nil vectors and the error when the
// provider fails.
func (s *Service) vectorize(ctx context.Context, texts []string) ([][]float32, int, error) {
	res, err := domain.EmbedTexts(ctx, s.embed, texts)
	if err != nil {
		s.logger.Warn("Embedding failed, storing products without vectors",
			zap.Int("count", len(texts)),
			zap.Error(err),
		)
		return nil, 0, fmt.Errorf("vectorize: %w", err)
	}
	return res.Embeddings, res.TotalTokens, nil
}
