// Package query models the structured form of a free-text catalog query:
// the facets extracted by the query parser, the caller's preferences, and the
// canonical text handed to the embedding model.
package query

import (
	"strings"
)

// Unknown is the sentinel term substituted for an empty facet so the
// canonical text has the same shape no matter how much the parser extracted.
const Unknown = "UNKNOWN"

// Parsed is the structured breakdown of a query.
// Every term list is lower-cased, trimmed, deduplicated and order preserving.
type Parsed struct {
	Category []string
	Tags     []string
	Gender   []string
	Styles   []string
}

// NewParsed builds a Parsed query from raw parser output.
func NewParsed(category, tags []string) Parsed {
	return Parsed{
		Category: NormalizeTerms(category),
		Tags:     NormalizeTerms(tags),
	}
}

// Keywords returns category terms followed by tag terms, the lexical search input.
func (p Parsed) Keywords() []string {
	out := make([]string, 0, len(p.Category)+len(p.Tags))
	out = append(out, p.Category...)
	out = append(out, p.Tags...)
	return out
}

// WithPreferences returns a copy of p with the caller's preferences applied:
// the gender preference overwrites the gender facet (Unknown when absent) and
// preferred styles are appended after the existing style terms.
// The receiver is never modified. A malformed preference set yields an error
// and the zero Parsed.
func (p Parsed) WithPreferences(prefs Preferences) (Parsed, error) {
	if err := prefs.Validate(); err != nil {
		return Parsed{}, err
	}

	out := p.clone()

	if g := strings.ToLower(strings.TrimSpace(prefs.Gender)); g != "" {
		out.Gender = []string{g}
	} else {
		out.Gender = []string{Unknown}
	}

	if len(prefs.Styles) > 0 {
		styles := make([]string, 0, len(out.Styles)+len(prefs.Styles))
		styles = append(styles, out.Styles...)
		styles = append(styles, prefs.Styles...)
		out.Styles = NormalizeTerms(styles)
	}

	return out, nil
}

// Canonical returns the fixed-order facet record used as embedding input.
// Parser tags seed the style facet; preferred styles follow them.
func (p Parsed) Canonical() Canonical {
	styles := make([]string, 0, len(p.Tags)+len(p.Styles))
	styles = append(styles, p.Tags...)
	styles = append(styles, p.Styles...)

	return Canonical{
		Gender:   orUnknown(p.Gender),
		Colors:   []string{Unknown},
		Category: orUnknown(p.Category),
		Styles:   orUnknown(NormalizeTerms(styles)),
	}
}

func (p Parsed) clone() Parsed {
	return Parsed{
		Category: cloneTerms(p.Category),
		Tags:     cloneTerms(p.Tags),
		Gender:   cloneTerms(p.Gender),
		Styles:   cloneTerms(p.Styles),
	}
}

// NormalizeTerms lower-cases and trims terms, drops empty ones and removes
// duplicates while keeping first-seen order. Unknown is kept verbatim.
func NormalizeTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != Unknown {
			t = strings.ToLower(t)
		}
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func orUnknown(terms []string) []string {
	if len(terms) == 0 {
		return []string{Unknown}
	}
	return cloneTerms(terms)
}

func cloneTerms(terms []string) []string {
	if terms == nil {
		return nil
	}
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}
