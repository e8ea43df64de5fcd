package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultDeleteChunkSize is the number of IDs marked deleted per round-trip.
const DefaultDeleteChunkSize = 100

// CatalogDeleter soft-deletes products by ID and reports how many changed.
type CatalogDeleter interface {
	MarkDeleted(ctx context.Context, ids []string, at time.Time) (int, error)
}

// Deleter removes products from search results by stamping deletedAt, chunk by chunk.
type Deleter struct {
	catalog   CatalogDeleter
	chunkSize int
	now       func() time.Time
	logger    *zap.Logger
}

// NewDeleter creates a soft-delete runner.
func NewDeleter(catalog CatalogDeleter, logger *zap.Logger) *Deleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deleter{
		catalog:   catalog,
		chunkSize: DefaultDeleteChunkSize,
		now:       time.Now,
		logger:    logger,
	}
}

// WithChunkSize configures how many IDs go into one backend call.
func (d *Deleter) WithChunkSize(size int) *Deleter {
	if size > 0 {
		d.chunkSize = size
	}
	return d
}

// Delete marks every ID deleted with a single timestamp. Chunks run in order;
// on failure the count covers the chunks already committed.
func (d *Deleter) Delete(ctx context.Context, ids []string) (int, error) {
	at := d.now().UTC()
	marked := 0
	for start := 0; start < len(ids); start += d.chunkSize {
		if err := ctx.Err(); err != nil {
			return marked, fmt.Errorf("delete: %w", err)
		}
		end := min(start+d.chunkSize, len(ids))
		n, err := d.catalog.MarkDeleted(ctx, ids[start:end], at)
		if err != nil {
			return marked, fmt.Errorf("delete ids %d-%d: %w", start, end-1, err)
		}
		marked += n
		d.logger.Info("Marked products deleted",
			zap.Int("processed", end),
			zap.Int("total", len(ids)),
			zap.Int("marked", marked),
		)
	}
	return marked, nil
}
