// Package rerank holds the business rules that adjust merged search scores.
//
// A Table is an ordered list of independent rules. Each rule inspects a
// product and contributes an additive delta; rules are not mutually exclusive,
// so one product can collect several adjustments in a single pass.
package rerank

import (
	"github.com/kailas-cloud/stylesearch/internal/domain/product"
)

// Rule names.
const (
	NoPhoto           = "no_photo"
	MarkedForArchive  = "marked_for_archive"
	HighAverageRating = "high_average_rating"
	LowAverageRating  = "low_average_rating"
	HighRatingNumber  = "high_rating_number"
)

// Defaults from the production ranking policy.
const (
	DefaultPlaceholderImageURL = "https://m.media-amazon.com/images/I/01RmK+J4pJL._AC_.gif"
	DefaultArchiveTitle        = "Marked For Archive"
)

// Rule is a named condition plus adjustment.
type Rule struct {
	name    string
	applies func(p product.Product) bool
	delta   func(p product.Product) float64
}

// Name returns the rule name.
func (r Rule) Name() string { return r.name }

// Adjust returns the score delta for p and whether the rule fired.
func (r Rule) Adjust(p product.Product) (float64, bool) {
	if !r.applies(p) {
		return 0, false
	}
	return r.delta(p), true
}

// Table is an ordered rule set evaluated left to right.
type Table []Rule

// Adjustment is a fired rule and its contribution.
type Adjustment struct {
	Rule  string
	Delta float64
}

// Evaluate applies every rule exactly once and returns the total delta and the
// rules that fired, in table order.
func (t Table) Evaluate(p product.Product) (float64, []Adjustment) {
	var total float64
	var fired []Adjustment
	for _, r := range t {
		d, ok := r.Adjust(p)
		if !ok {
			continue
		}
		total += d
		fired = append(fired, Adjustment{Rule: r.name, Delta: d})
	}
	return total, fired
}

// Names returns rule names in evaluation order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, r := range t {
		names[i] = r.name
	}
	return names
}

// NoPhotoRule penalizes products whose primary image is a known placeholder.
func NoPhotoRule(weight float64, placeholderURLs ...string) Rule {
	set := make(map[string]struct{}, len(placeholderURLs))
	for _, u := range placeholderURLs {
		if u != "" {
			set[u] = struct{}{}
		}
	}
	return Rule{
		name: NoPhoto,
		applies: func(p product.Product) bool {
			primary := p.PrimaryImageURL()
			if primary == "" {
				return false
			}
			_, ok := set[primary]
			return ok
		},
		delta: constant(weight),
	}
}

// MarkedForArchiveRule penalizes products whose title equals the archive marker exactly.
func MarkedForArchiveRule(weight float64, title string) Rule {
	return Rule{
		name: MarkedForArchive,
		applies: func(p product.Product) bool {
			return title != "" && p.Title() == title
		},
		delta: constant(weight),
	}
}

// HighAverageRatingRule adds (rating / norm) * weight when rating >= threshold.
func HighAverageRatingRule(threshold, norm, weight float64) Rule {
	return Rule{
		name: HighAverageRating,
		applies: func(p product.Product) bool {
			return p.AverageRatingOrZero() >= threshold
		},
		delta: func(p product.Product) float64 {
			return normalized(p.AverageRatingOrZero(), norm) * weight
		},
	}
}

// LowAverageRatingRule adds (rating / norm) * weight when rating < threshold.
// Unknown ratings count as 0 and therefore fire this rule with a zero delta.
func LowAverageRatingRule(threshold, norm, weight float64) Rule {
	return Rule{
		name: LowAverageRating,
		applies: func(p product.Product) bool {
			return p.AverageRatingOrZero() < threshold
		},
		delta: func(p product.Product) float64 {
			return normalized(p.AverageRatingOrZero(), norm) * weight
		},
	}
}

// HighRatingNumberRule adds (min(count, ceiling) / norm) * weight when count > threshold.
func HighRatingNumberRule(threshold, ceiling int, norm, weight float64) Rule {
	return Rule{
		name: HighRatingNumber,
		applies: func(p product.Product) bool {
			return p.RatingCountOrZero() > threshold
		},
		delta: func(p product.Product) float64 {
			capped := min(p.RatingCountOrZero(), ceiling)
			return normalized(float64(capped), norm) * weight
		},
	}
}

// DefaultTable returns the production rule table.
func DefaultTable() Table {
	return Table{
		NoPhotoRule(-0.5, DefaultPlaceholderImageURL),
		MarkedForArchiveRule(-1, DefaultArchiveTitle),
		HighAverageRatingRule(4, 5, 0.5),
		LowAverageRatingRule(2, 2, -0.5),
		HighRatingNumberRule(30, 200, 200, 0.2),
	}
}

func constant(v float64) func(product.Product) float64 {
	return func(product.Product) float64 { return v }
}

func normalized(v, norm float64) float64 {
	if norm == 0 {
		return 0
	}
	return v / norm
}
