package query

import (
	"encoding/json"
	"strings"
)

// Facet identifies one slot of the canonical query record.
type Facet int

// Facets in canonical order.
const (
	FacetGender Facet = iota
	FacetColors
	FacetCategory
	FacetStyles
)

// FacetOrder is the order in which facets are rendered into canonical text.
// The embedding model was tuned on this layout; changing it shifts every vector.
var FacetOrder = []Facet{FacetGender, FacetColors, FacetCategory, FacetStyles}

// Name returns the facet key used in the canonical text.
func (f Facet) Name() string {
	switch f {
	case FacetGender:
		return "gender"
	case FacetColors:
		return "colors"
	case FacetCategory:
		return "category"
	case FacetStyles:
		return "styles"
	default:
		return "unknown"
	}
}

// Canonical is the facet record embedded in place of the raw query text.
// No facet is ever empty: missing values are represented by Unknown.
type Canonical struct {
	Gender   []string
	Colors   []string
	Category []string
	Styles   []string
}

// Terms returns the terms of a single facet.
func (c Canonical) Terms(f Facet) []string {
	switch f {
	case FacetGender:
		return c.Gender
	case FacetColors:
		return c.Colors
	case FacetCategory:
		return c.Category
	case FacetStyles:
		return c.Styles
	default:
		return nil
	}
}

// String renders the record as compact JSON in FacetOrder, e.g.
// {"gender":["women"],"colors":["UNKNOWN"],"category":["heels"],"styles":["party"]}.
func (c Canonical) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range FacetOrder {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(f.Name())
		b.Write(key)
		b.WriteByte(':')
		terms := c.Terms(f)
		if len(terms) == 0 {
			terms = []string{Unknown}
		}
		vals, _ := json.Marshal(terms)
		b.Write(vals)
	}
	b.WriteByte('}')
	return b.String()
}

// Enriched is the output of query enrichment: the (possibly preference
// adjusted) parsed query, its canonical text, and the lexical keyword list.
type Enriched struct {
	Query     Parsed
	Canonical string
	Keywords  []string
}
