package chi

import (
	"time"

	"github.com/kailas-cloud/stylesearch/internal/domain/search/query"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/result"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed  ErrorCode = "method_not_allowed"
	ErrorCodeSearchUnavailable ErrorCode = "search_unavailable"
	ErrorCodeTimeout           ErrorCode = "timeout"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// HeaderEmbeddingTokens reports the embedding tokens a search consumed.
const HeaderEmbeddingTokens = "X-Embedding-Tokens"

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// PreferencesRequest is the optional body of POST /products/search.
type PreferencesRequest struct {
	Gender *string  `json:"gender"`
	Price  *string  `json:"price"`
	Styles []string `json:"styles"`
}

func (p PreferencesRequest) toDomain() query.Preferences {
	var out query.Preferences
	if p.Gender != nil {
		out.Gender = *p.Gender
	}
	if p.Price != nil {
		out.PriceTier = *p.Price
	}
	out.Styles = p.Styles
	return out
}

// ProductResponse is one ranked product. Similarity carries the final score.
type ProductResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	ImageURLs     []string   `json:"imageUrls"`
	Description   *string    `json:"description"`
	AverageRating *float64   `json:"average_rating"`
	RatingNumber  *int       `json:"rating_number"`
	Store         *string    `json:"store"`
	CreatedAt     *time.Time `json:"createdAt"`
	ModifiedAt    *time.Time `json:"modifiedAt"`
	DeletedAt     *time.Time `json:"deletedAt"`
	Similarity    float64    `json:"similarity"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func productToResponse(r result.Result) ProductResponse {
	p := r.Product()

	urls := p.ImageURLs()
	if urls == nil {
		urls = []string{}
	}

	return ProductResponse{
		ID:            p.ID(),
		Title:         p.Title(),
		ImageURLs:     urls,
		Description:   optString(p.Description()),
		AverageRating: p.AverageRating(),
		RatingNumber:  p.RatingCount(),
		Store:         optString(p.Store()),
		CreatedAt:     optTime(p.CreatedAt()),
		ModifiedAt:    optTime(p.ModifiedAt()),
		DeletedAt:     p.DeletedAt(),
		Similarity:    r.Score(),
	}
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
