package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/domain/search/query"
)

// Enrich merges caller preferences into the parsed query and derives the
// canonical embedding text and the lexical keyword list.
// Preferences are best effort: a malformed set is logged and ignored.
func (s *Service) Enrich(ctx context.Context, parsed query.Parsed, prefs *query.Preferences) query.Enriched {
	// Keywords come from what the user typed, not from stored preferences.
	keywords := parsed.Keywords()

	enriched := parsed
	if prefs != nil {
		withPrefs, err := parsed.WithPreferences(*prefs)
		if err != nil {
			s.log(ctx).Warn("Ignoring malformed preferences", zap.Error(err))
		} else {
			enriched = withPrefs
		}
	}

	return query.Enriched{
		Query:     enriched,
		Canonical: enriched.Canonical().String(),
		Keywords:  keywords,
	}
}
