package db

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// ProductRecord is a catalog row in backend-neutral form, used for writes.
type ProductRecord struct {
	ID            string
	Title         string
	ImageURLs     []string
	Description   string
	AverageRating *float64
	RatingNumber  *int
	Store         string
	CreatedAt     time.Time
	ModifiedAt    time.Time
	DeletedAt     *time.Time
	Vector        []float32
}

// CatalogWriter upserts catalog records. target is the key prefix on Redis
// and the table name on Postgres.
type CatalogWriter interface {
	UpsertProducts(ctx context.Context, target string, records []ProductRecord) error
}

// CatalogClearer deletes every product under target. Redis does not need it:
// dropping the index with its documents clears the catalog there.
type CatalogClearer interface {
	ClearProducts(ctx context.Context, target string) error
}

// CatalogDeleter soft-deletes products by ID: deletedAt is set and the row
// stays stored, so searches that exclude deleted products skip it. IDs that
// are unknown or already deleted are not counted.
type CatalogDeleter interface {
	MarkDeleted(ctx context.Context, target string, ids []string, at time.Time) (int, error)
}

// Fields encodes the record with the catalog field names. Unknown values
// (nil rating, zero timestamps) are omitted; the vector is not included.
func (r ProductRecord) Fields() map[string]string {
	f := map[string]string{
		FieldID:          r.ID,
		FieldTitle:       r.Title,
		FieldDescription: r.Description,
		FieldStore:       r.Store,
		FieldDeleted:     "0",
	}

	urls := r.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	if b, err := json.Marshal(urls); err == nil {
		f[FieldImageURLs] = string(b)
	}

	if r.AverageRating != nil {
		f[FieldAverageRating] = strconv.FormatFloat(*r.AverageRating, 'f', -1, 64)
	}
	if r.RatingNumber != nil {
		f[FieldRatingNumber] = strconv.Itoa(*r.RatingNumber)
	}
	if !r.CreatedAt.IsZero() {
		f[FieldCreatedAt] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !r.ModifiedAt.IsZero() {
		f[FieldModifiedAt] = r.ModifiedAt.UTC().Format(time.RFC3339Nano)
	}
	if r.DeletedAt != nil {
		f[FieldDeletedAt] = r.DeletedAt.UTC().Format(time.RFC3339Nano)
		f[FieldDeleted] = "1"
	}
	return f
}
