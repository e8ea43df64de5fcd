package result

import "github.com/kailas-cloud/stylesearch/internal/domain/product"

// Result is a single scored search hit.
// The score is channel-local relevance straight out of a retrieval channel,
// the weighted composite after merging, and the final ranking score after reranking.
type Result struct {
	product product.Product
	score   float64
}

// New creates a search result.
func New(p product.Product, score float64) Result {
	return Result{product: p, score: score}
}

// ID returns the product identifier.
func (r Result) ID() string { return r.product.ID() }

// Score returns the relevance score.
func (r Result) Score() float64 { return r.score }

// Product returns the catalog record.
func (r Result) Product() product.Product { return r.product }

// WithScore returns a copy carrying a different score.
func (r Result) WithScore(score float64) Result {
	return Result{product: r.product, score: score}
}
