package search

import (
	"sort"

	"github.com/kailas-cloud/stylesearch/internal/domain/product"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/result"
)

// Merge deduplicates hits by product ID and combines channel scores:
// score(id) = sum of relevance * W_vector over vector hits + relevance * W_keyword over keyword hits.
// A product found by both channels collects both contributions. The last-seen
// record for an ID is kept. Output is sorted by score descending; ties keep
// first-seen order.
func Merge(vectorHits, keywordHits []result.Result, w Weights) []result.Result {
	scores := make(map[string]float64, len(vectorHits)+len(keywordHits))
	records := make(map[string]product.Product, len(vectorHits)+len(keywordHits))
	order := make([]string, 0, len(vectorHits)+len(keywordHits))

	accumulate := func(hits []result.Result, weight float64) {
		for _, h := range hits {
			id := h.ID()
			if _, seen := scores[id]; !seen {
				order = append(order, id)
			}
			scores[id] += h.Score() * weight
			records[id] = h.Product()
		}
	}

	accumulate(vectorHits, w.Vector)
	accumulate(keywordHits, w.Keyword)

	merged := make([]result.Result, len(order))
	for i, id := range order {
		merged[i] = result.New(records[id], scores[id])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score() > merged[j].Score()
	})

	return merged
}
