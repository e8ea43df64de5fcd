package embcache

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/db"
	"github.com/kailas-cloud/stylesearch/internal/domain"
)

// fakeEmbedder maps each text to a 2-dim vector derived from its length
// and charges one token per word.
type fakeEmbedder struct {
	err       error
	healthErr error
	batches   [][]string
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	n := len(strings.Fields(text))
	return domain.EmbeddingResult{Embedding: vectorFor(text), PromptTokens: n, TotalTokens: n}, nil
}

func (f *fakeEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.batches = append(f.batches, append([]string(nil), texts...))
	var out domain.BatchEmbeddingResult
	for _, t := range texts {
		r, err := f.Embed(ctx, t)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		out.Embeddings = append(out.Embeddings, r.Embedding)
		out.PromptTokens += r.PromptTokens
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

func (f *fakeEmbedder) HealthCheck(context.Context) error { return f.healthErr }

// singleEmbedder hides BatchEmbed so the per-text fallback is used.
type singleEmbedder struct{ inner *fakeEmbedder }

func (s singleEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return s.inner.Embed(ctx, text)
}

// memKV is an in-memory store with failure injection.
type memKV struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newCacheCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

func newTestCache(inner domain.Embedder, kv *memKV, counter *prometheus.CounterVec) *CachedEmbedder {
	return New(inner, kv, Config{KeyPrefix: "test:emb:", TTL: time.Hour}, counter, zap.NewNop())
}
