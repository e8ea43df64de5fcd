package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidPreferences signals malformed caller preferences.
	ErrInvalidPreferences = errors.New("invalid preferences")
	// ErrSearchUnavailable signals that the primary retrieval signal could not be produced.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrQueryParserError signals a query parser failure.
	ErrQueryParserError = errors.New("query parser error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCatalogUnavailable signals a catalog store failure.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
