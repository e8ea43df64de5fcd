package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/stylesearch/internal/domain"
)

// Preference limits.
const (
	MaxStyles           = 32
	MaxPreferenceLength = 64
)

// Preferences are optional caller-supplied facets merged into the parsed query.
// PriceTier is accepted and validated but does not affect ranking.
type Preferences struct {
	Gender    string
	PriceTier string
	Styles    []string
}

// IsZero reports whether no preference is set.
func (p Preferences) IsZero() bool {
	return p.Gender == "" && p.PriceTier == "" && len(p.Styles) == 0
}

// Validate rejects blank styles, too many styles and over-long values.
func (p Preferences) Validate() error {
	if utf8.RuneCountInString(p.Gender) > MaxPreferenceLength {
		return fmt.Errorf("%w: gender longer than %d characters", domain.ErrInvalidPreferences, MaxPreferenceLength)
	}
	if utf8.RuneCountInString(p.PriceTier) > MaxPreferenceLength {
		return fmt.Errorf("%w: price tier longer than %d characters", domain.ErrInvalidPreferences, MaxPreferenceLength)
	}
	if len(p.Styles) > MaxStyles {
		return fmt.Errorf("%w: %d styles exceeds limit of %d", domain.ErrInvalidPreferences, len(p.Styles), MaxStyles)
	}
	for i, s := range p.Styles {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: style [%d] is blank", domain.ErrInvalidPreferences, i)
		}
		if utf8.RuneCountInString(s) > MaxPreferenceLength {
			return fmt.Errorf("%w: style [%d] longer than %d characters", domain.ErrInvalidPreferences, i, MaxPreferenceLength)
		}
	}
	return nil
}
