package search

import (
	"fmt"

	"github.com/kailas-cloud/stylesearch/internal/domain/search/rerank"
)

// Defaults for the hybrid pipeline.
const (
	DefaultVectorWeight  = 1.0
	DefaultKeywordWeight = 0.5
	DefaultMaxKeywords   = 2
	DefaultChannelLimit  = 100

	// KeywordRelevance is the channel-local score of every keyword hit: a title
	// either contains the terms or it does not.
	KeywordRelevance = 1.0
)

// Weights are the per-channel multipliers applied when merging.
type Weights struct {
	Vector  float64
	Keyword float64
}

// Options tune the pipeline. All business policy lives here rather than in code.
type Options struct {
	Weights      Weights
	MaxKeywords  int
	ChannelLimit int
	Rules        rerank.Table
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		Weights: Weights{
			Vector:  DefaultVectorWeight,
			Keyword: DefaultKeywordWeight,
		},
		MaxKeywords:  DefaultMaxKeywords,
		ChannelLimit: DefaultChannelLimit,
		Rules:        rerank.DefaultTable(),
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.MaxKeywords <= 0 {
		return fmt.Errorf("max keywords must be positive, got %d", o.MaxKeywords)
	}
	if o.ChannelLimit <= 0 {
		return fmt.Errorf("channel limit must be positive, got %d", o.ChannelLimit)
	}
	return nil
}
