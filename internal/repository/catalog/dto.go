package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/stylesearch/internal/db"
	"github.com/kailas-cloud/stylesearch/internal/domain/product"
)

// productFromEntry hydrates a product from catalog fields. Unparseable
// optional values are treated as unknown; an entry without an id is dropped.
func productFromEntry(entry db.SearchEntry, keyPrefix string) (product.Product, bool) {
	f := entry.Fields

	id := f[db.FieldID]
	if id == "" {
		id = strings.TrimPrefix(entry.Key, keyPrefix)
	}
	if id == "" {
		return product.Product{}, false
	}

	return product.Reconstruct(id, product.Attributes{
		Title:         f[db.FieldTitle],
		ImageURLs:     parseImageURLs(f[db.FieldImageURLs]),
		Description:   f[db.FieldDescription],
		AverageRating: parseFloat(f[db.FieldAverageRating]),
		RatingCount:   parseInt(f[db.FieldRatingNumber]),
		Store:         f[db.FieldStore],
		CreatedAt:     parseTime(f[db.FieldCreatedAt]),
		ModifiedAt:    parseTime(f[db.FieldModifiedAt]),
		DeletedAt:     parseTimePtr(f[db.FieldDeletedAt]),
	}), true
}

// recordFromProduct is the inverse of productFromEntry, used for writes.
func recordFromProduct(p product.Product, vector []float32) db.ProductRecord {
	return db.ProductRecord{
		ID:            p.ID(),
		Title:         p.Title(),
		ImageURLs:     p.ImageURLs(),
		Description:   p.Description(),
		AverageRating: p.AverageRating(),
		RatingNumber:  p.RatingCount(),
		Store:         p.Store(),
		CreatedAt:     p.CreatedAt(),
		ModifiedAt:    p.ModifiedAt(),
		DeletedAt:     p.DeletedAt(),
		Vector:        vector,
	}
}

func parseImageURLs(s string) []string {
	if s == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(s), &urls); err != nil {
		return nil
	}
	return urls
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s string) *time.Time {
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}
