package product

import (
	"fmt"
	"time"
)

// Product is a catalog item as returned by the retrieval channels (immutable value object).
type Product struct {
	id            string
	title         string
	imageURLs     []string
	description   string
	averageRating *float64
	ratingCount   *int
	store         string
	createdAt     time.Time
	modifiedAt    time.Time
	deletedAt     *time.Time
}

// Attributes holds the catalog fields of a product, used for hydration from storage.
type Attributes struct {
	Title         string
	ImageURLs     []string
	Description   string
	AverageRating *float64
	RatingCount   *int
	Store         string
	CreatedAt     time.Time
	ModifiedAt    time.Time
	DeletedAt     *time.Time
}

// New validates and creates a Product. The id must be non-empty.
func New(id string, attrs Attributes) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("product ID is required")
	}
	if attrs.RatingCount != nil && *attrs.RatingCount < 0 {
		return Product{}, fmt.Errorf("rating count must be non-negative, got %d", *attrs.RatingCount)
	}
	return Reconstruct(id, attrs), nil
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(id string, attrs Attributes) Product {
	var urls []string
	if len(attrs.ImageURLs) > 0 {
		urls = make([]string, len(attrs.ImageURLs))
		copy(urls, attrs.ImageURLs)
	}
	return Product{
		id:            id,
		title:         attrs.Title,
		imageURLs:     urls,
		description:   attrs.Description,
		averageRating: attrs.AverageRating,
		ratingCount:   attrs.RatingCount,
		store:         attrs.Store,
		createdAt:     attrs.CreatedAt,
		modifiedAt:    attrs.ModifiedAt,
		deletedAt:     attrs.DeletedAt,
	}
}

// ID returns the product identifier.
func (p Product) ID() string { return p.id }

// Title returns the product title.
func (p Product) Title() string { return p.title }

// ImageURLs returns the product image URLs in display order.
func (p Product) ImageURLs() []string { return p.imageURLs }

// PrimaryImageURL returns the first image URL, or "" when the product has no images.
func (p Product) PrimaryImageURL() string {
	if len(p.imageURLs) == 0 {
		return ""
	}
	return p.imageURLs[0]
}

// Description returns the product description ("" when absent).
func (p Product) Description() string { return p.description }

// AverageRating returns the average rating, nil when unknown.
func (p Product) AverageRating() *float64 { return p.averageRating }

// RatingCount returns the number of ratings, nil when unknown.
func (p Product) RatingCount() *int { return p.ratingCount }

// AverageRatingOrZero returns the average rating with unknown treated as 0.
func (p Product) AverageRatingOrZero() float64 {
	if p.averageRating == nil {
		return 0
	}
	return *p.averageRating
}

// RatingCountOrZero returns the rating count with unknown treated as 0.
func (p Product) RatingCountOrZero() int {
	if p.ratingCount == nil {
		return 0
	}
	return *p.ratingCount
}

// Store returns the seller name ("" when absent).
func (p Product) Store() string { return p.store }

// CreatedAt returns the creation timestamp.
func (p Product) CreatedAt() time.Time { return p.createdAt }

// ModifiedAt returns the last modification timestamp (zero when never modified).
func (p Product) ModifiedAt() time.Time { return p.modifiedAt }

// DeletedAt returns the soft-deletion timestamp, nil for live products.
func (p Product) DeletedAt() *time.Time { return p.deletedAt }

// IsDeleted reports whether the product is soft-deleted.
func (p Product) IsDeleted() bool { return p.deletedAt != nil }
