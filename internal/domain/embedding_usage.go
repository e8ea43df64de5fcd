package domain

import (
	"context"
	"sync/atomic"
)

type embeddingUsageKey struct{}

// EmbeddingUsage accumulates embedding tokens spent on behalf of one caller:
// a search request, whose total is echoed in a response header, or a seed run.
// Methods are safe for concurrent use and on a nil receiver.
type EmbeddingUsage struct {
	tokens   atomic.Int64
	reported atomic.Bool
}

// NewContextWithUsage attaches a fresh collector to ctx.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector on ctx, or nil.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records n consumed tokens. A cache hit reports n == 0, which
// still marks the collector as used.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.tokens.Add(int64(n))
	u.reported.Store(true)
}

// Tokens is the running total.
func (u *EmbeddingUsage) Tokens() int {
	if u == nil {
		return 0
	}
	return int(u.tokens.Load())
}

// Used reports whether any embedding call was recorded.
func (u *EmbeddingUsage) Used() bool {
	return u != nil && u.reported.Load()
}
