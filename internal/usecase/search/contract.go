package search

import (
	"context"

	"github.com/kailas-cloud/stylesearch/internal/domain"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/query"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/result"
)

// QueryParser turns raw query text into a category/tag breakdown.
type QueryParser interface {
	Parse(ctx context.Context, text string) (query.Parsed, error)
}

// Embedder vectorizes the canonical query text.
type Embedder interface {
	domain.Embedder
}

// CatalogRepository answers the two retrieval channels against the product catalog.
type CatalogRepository interface {
	// SearchKNN returns products ordered by ascending cosine distance to vector,
	// scored with similarity = 1 - distance.
	SearchKNN(ctx context.Context, vector []float32, excludeDeleted bool, limit int) ([]result.Result, error)

	// SearchKeyword returns products whose title contains the terms as substrings
	// (all of them when matchAll is set, any of them otherwise).
	SearchKeyword(ctx context.Context, terms []string, matchAll, excludeDeleted bool, limit int) ([]result.Result, error)
}
