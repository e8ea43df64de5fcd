package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/stylesearch/internal/db"
	"github.com/kailas-cloud/stylesearch/internal/domain"
	"github.com/kailas-cloud/stylesearch/internal/domain/product"
)

type writer interface {
	UpsertProducts(ctx context.Context, target string, records []db.ProductRecord) error
}

// Writer upserts products into the catalog backend.
type Writer struct {
	w      writer
	target string
}

// NewWriter creates a catalog writer. target is the Redis key prefix or the Postgres table.
func NewWriter(w writer, target string) *Writer {
	return &Writer{w: w, target: target}
}

// Upsert writes products in one backend round-trip. vectors is parallel to
// products; a missing or nil entry stores the product without an embedding.
func (w *Writer) Upsert(ctx context.Context, products []product.Product, vectors [][]float32) error {
	if len(products) == 0 {
		return nil
	}
	if len(vectors) > len(products) {
		return fmt.Errorf("got %d vectors for %d products", len(vectors), len(products))
	}

	records := make([]db.ProductRecord, len(products))
	for i, p := range products {
		var vec []float32
		if i < len(vectors) {
			vec = vectors[i]
		}
		records[i] = recordFromProduct(p, vec)
	}

	if err := w.w.UpsertProducts(ctx, w.target, records); err != nil {
		return fmt.Errorf("%w: upsert %d products: %w", domain.ErrCatalogUnavailable, len(products), err)
	}
	return nil
}

// Clear deletes every product from the target when the backend supports it.
// It reports false when it does not; Redis catalogs are reset through ResetIndex.
func (w *Writer) Clear(ctx context.Context) (bool, error) {
	c, ok := w.w.(db.CatalogClearer)
	if !ok {
		return false, nil
	}
	if err := c.ClearProducts(ctx, w.target); err != nil {
		return true, fmt.Errorf("%w: clear products: %w", domain.ErrCatalogUnavailable, err)
	}
	return true, nil
}

// MarkDeleted soft-deletes products by ID and returns how many were marked.
// Backends without the capability fail with errors.ErrUnsupported.
func (w *Writer) MarkDeleted(ctx context.Context, ids []string, at time.Time) (int, error) {
	d, ok := w.w.(db.CatalogDeleter)
	if !ok {
		return 0, fmt.Errorf("mark deleted: %w", errors.ErrUnsupported)
	}
	n, err := d.MarkDeleted(ctx, w.target, ids, at)
	if err != nil {
		return 0, fmt.Errorf("%w: mark %d products deleted: %w", domain.ErrCatalogUnavailable, len(ids), err)
	}
	return n, nil
}
