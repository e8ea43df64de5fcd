package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	// IndexName is the FT index (Redis) or table (Postgres) to search.
	IndexName      string
	Vector         []float32
	K              int
	ExcludeDeleted bool
	ReturnFields   []string
}

// KeywordQuery is the input for title substring search.
type KeywordQuery struct {
	IndexName      string
	Terms          []string
	MatchAll       bool // AND when set, OR otherwise
	ExcludeDeleted bool
	Limit          int
	ReturnFields   []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single product hit. Fields uses the catalog field names
// (see the Field* constants) regardless of backend.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// Catalog field names shared by every backend.
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldImageURLs     = "image_urls"
	FieldDescription   = "description"
	FieldAverageRating = "average_rating"
	FieldRatingNumber  = "rating_number"
	FieldStore         = "store"
	FieldCreatedAt     = "created_at"
	FieldModifiedAt    = "modified_at"
	FieldDeletedAt     = "deleted_at"
	FieldDeleted       = "deleted"
	FieldVector        = "vector"
)
