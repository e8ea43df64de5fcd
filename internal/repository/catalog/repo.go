package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/stylesearch/internal/db"
	"github.com/kailas-cloud/stylesearch/internal/domain"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/result"
)

// store is the consumer interface for catalog retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchKeyword(ctx context.Context, q *db.KeywordQuery) (*db.SearchResult, error)
}

// returnFields are the catalog fields hydrated into products. The vector is never fetched.
var returnFields = []string{
	db.FieldID,
	db.FieldTitle,
	db.FieldImageURLs,
	db.FieldDescription,
	db.FieldAverageRating,
	db.FieldRatingNumber,
	db.FieldStore,
	db.FieldCreatedAt,
	db.FieldModifiedAt,
	db.FieldDeletedAt,
}

// Repo implements usecase/search.CatalogRepository.
type Repo struct {
	store     store
	index     string
	keyPrefix string
}

// New creates a catalog repository. index is the FT index (Redis) or table
// (Postgres); keyPrefix is stripped from hit keys when a hit carries no id field.
func New(s store, index, keyPrefix string) *Repo {
	return &Repo{store: s, index: index, keyPrefix: keyPrefix}
}

// SearchKNN returns up to limit products nearest to vector, scored by cosine similarity.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, excludeDeleted bool, limit int,
) ([]result.Result, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:      r.index,
		Vector:         vector,
		K:              limit,
		ExcludeDeleted: excludeDeleted,
		ReturnFields:   returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search knn %s: %w", domain.ErrCatalogUnavailable, r.index, err)
	}
	return r.toResults(sr), nil
}

// SearchKeyword returns up to limit products whose title contains the terms.
func (r *Repo) SearchKeyword(
	ctx context.Context, terms []string, matchAll, excludeDeleted bool, limit int,
) ([]result.Result, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	sr, err := r.store.SearchKeyword(ctx, &db.KeywordQuery{
		IndexName:      r.index,
		Terms:          terms,
		MatchAll:       matchAll,
		ExcludeDeleted: excludeDeleted,
		Limit:          limit,
		ReturnFields:   returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search keyword %s: %w", domain.ErrCatalogUnavailable, r.index, err)
	}
	return r.toResults(sr), nil
}

func (r *Repo) toResults(sr *db.SearchResult) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		p, ok := productFromEntry(entry, r.keyPrefix)
		if !ok {
			continue
		}
		results = append(results, result.New(p, entry.Score))
	}
	return results
}
