package config

import (
	"fmt"

	"github.com/kailas-cloud/stylesearch/internal/domain/search/rerank"
)

// RerankConfig is the business-rule table applied after merging.
type RerankConfig struct {
	NoPhoto      NoPhotoRuleConfig      `yaml:"no_photo"`
	Archive      ArchiveRuleConfig      `yaml:"marked_for_archive"`
	HighRating   RatingRuleConfig       `yaml:"high_average_rating"`
	LowRating    RatingRuleConfig       `yaml:"low_average_rating"`
	RatingNumber RatingNumberRuleConfig `yaml:"high_rating_number"`
}

// NoPhotoRuleConfig penalizes placeholder images.
type NoPhotoRuleConfig struct {
	Weight          float64  `yaml:"weight"`
	PlaceholderURLs []string `yaml:"placeholder_urls"`
}

// ArchiveRuleConfig penalizes products marked for archive by title.
type ArchiveRuleConfig struct {
	Weight float64 `yaml:"weight"`
	Title  string  `yaml:"title"`
}

// RatingRuleConfig adds (rating / norm) * weight past a threshold.
type RatingRuleConfig struct {
	Threshold float64 `yaml:"threshold"`
	Norm      float64 `yaml:"norm"`
	Weight    float64 `yaml:"weight"`
}

// RatingNumberRuleConfig adds (min(count, ceiling) / norm) * weight above a threshold.
type RatingNumberRuleConfig struct {
	Threshold int     `yaml:"threshold"`
	Ceiling   int     `yaml:"ceiling"`
	Norm      float64 `yaml:"norm"`
	Weight    float64 `yaml:"weight"`
}

// DefaultRerankConfig mirrors rerank.DefaultTable.
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{
		NoPhoto: NoPhotoRuleConfig{
			Weight:          -0.5,
			PlaceholderURLs: []string{rerank.DefaultPlaceholderImageURL},
		},
		Archive:      ArchiveRuleConfig{Weight: -1, Title: rerank.DefaultArchiveTitle},
		HighRating:   RatingRuleConfig{Threshold: 4, Norm: 5, Weight: 0.5},
		LowRating:    RatingRuleConfig{Threshold: 2, Norm: 2, Weight: -0.5},
		RatingNumber: RatingNumberRuleConfig{Threshold: 30, Ceiling: 200, Norm: 200, Weight: 0.2},
	}
}

// Validate rejects normalizers that would divide by zero.
func (r RerankConfig) Validate() error {
	if r.HighRating.Norm <= 0 {
		return fmt.Errorf("high_average_rating.norm must be positive, got %v", r.HighRating.Norm)
	}
	if r.LowRating.Norm <= 0 {
		return fmt.Errorf("low_average_rating.norm must be positive, got %v", r.LowRating.Norm)
	}
	if r.RatingNumber.Norm <= 0 {
		return fmt.Errorf("high_rating_number.norm must be positive, got %v", r.RatingNumber.Norm)
	}
	if r.RatingNumber.Ceiling < r.RatingNumber.Threshold {
		return fmt.Errorf("high_rating_number.ceiling %d is below threshold %d",
			r.RatingNumber.Ceiling, r.RatingNumber.Threshold)
	}
	return nil
}

// Table builds the rule table in evaluation order.
func (r RerankConfig) Table() rerank.Table {
	return rerank.Table{
		rerank.NoPhotoRule(r.NoPhoto.Weight, r.NoPhoto.PlaceholderURLs...),
		rerank.MarkedForArchiveRule(r.Archive.Weight, r.Archive.Title),
		rerank.HighAverageRatingRule(r.HighRating.Threshold, r.HighRating.Norm, r.HighRating.Weight),
		rerank.LowAverageRatingRule(r.LowRating.Threshold, r.LowRating.Norm, r.LowRating.Weight),
		rerank.HighRatingNumberRule(r.RatingNumber.Threshold, r.RatingNumber.Ceiling,
			r.RatingNumber.Norm, r.RatingNumber.Weight),
	}
}
