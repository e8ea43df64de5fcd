package search

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/stylesearch/internal/domain/search/rerank"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/result"
)

// Rerank adds the rule table's deltas to each merged score and re-sorts by
// final score descending, stable on ties. The input slice is not modified.
func Rerank(merged []result.Result, rules rerank.Table) []result.Result {
	return rerankWith(merged, rules, nil)
}

// firedFunc receives each candidate, with its final score, whose rules fired.
type firedFunc func(r result.Result, fired []rerank.Adjustment)

func rerankWith(merged []result.Result, rules rerank.Table, onFired firedFunc) []result.Result {
	ranked := make([]result.Result, len(merged))
	for i, r := range merged {
		delta, fired := rules.Evaluate(r.Product())
		ranked[i] = r.WithScore(r.Score() + delta)
		if onFired != nil && len(fired) > 0 {
			onFired(ranked[i], fired)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	return ranked
}

// formatAdjustments renders fired rules as "name+0.30" for logs.
func formatAdjustments(fired []rerank.Adjustment) []string {
	out := make([]string, len(fired))
	for i, a := range fired {
		out[i] = fmt.Sprintf("%s%+.2f", a.Rule, a.Delta)
	}
	return out
}
