package ingest

import (
	"context"

	"github.com/kailas-cloud/stylesearch/internal/domain/product"
)

// CatalogWriter stores products with their embeddings. vectors is parallel to
// products; a nil entry stores the product without an embedding.
type CatalogWriter interface {
	Upsert(ctx context.Context, products []product.Product, vectors [][]float32) error
}
