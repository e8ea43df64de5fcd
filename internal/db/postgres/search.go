package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

const productColumns = `id, title, "imageUrls", description, average_rating, rating_number, store, ` +
	`"createdAt", "modifiedAt", "deletedAt"`

// SearchKNN orders products by cosine distance to the query vector.
// Scores are 1 - distance.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if len(q.Vector) == 0 {
		return nil, errors.New("vector is required")
	}
	if q.K <= 0 {
		return nil, errors.New("k must be positive")
	}

	sql, err := buildKNNSQL(q.IndexName, q.ExcludeDeleted)
	if err != nil {
		return nil, err
	}

	entries, err := s.query(ctx, db.OpSelectKNN, sql, vectorLiteral(q.Vector), q.K)
	if err != nil {
		return nil, err
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// SearchKeyword matches each term as a case-insensitive title substring.
func (s *Store) SearchKeyword(ctx context.Context, q *db.KeywordQuery) (*db.SearchResult, error) {
	if q.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	patterns := make([]any, 0, len(q.Terms))
	for _, term := range q.Terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		patterns = append(patterns, "%"+escapeLike(term)+"%")
	}
	if len(patterns) == 0 {
		return nil, errors.New("at least one non-empty term is required")
	}

	sql, err := buildKeywordSQL(q.IndexName, len(patterns), q.MatchAll, q.ExcludeDeleted)
	if err != nil {
		return nil, err
	}

	args := append(patterns, q.Limit)
	entries, err := s.query(ctx, db.OpSelectKeyword, sql, args...)
	if err != nil {
		return nil, err
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func (s *Store) query(ctx context.Context, op, sql string, args ...any) ([]db.SearchEntry, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	return entries, nil
}

// productRow mirrors productColumns plus the trailing similarity column.
type productRow struct {
	ID            string
	Title         string
	ImageURLs     []string
	Description   *string
	AverageRating *float64
	RatingNumber  *int64
	Store         *string
	CreatedAt     *time.Time
	ModifiedAt    *time.Time
	DeletedAt     *time.Time
	Similarity    float64
}

func scanEntry(row pgx.CollectableRow) (db.SearchEntry, error) {
	var r productRow
	err := row.Scan(
		&r.ID, &r.Title, &r.ImageURLs, &r.Description, &r.AverageRating, &r.RatingNumber,
		&r.Store, &r.CreatedAt, &r.ModifiedAt, &r.DeletedAt, &r.Similarity,
	)
	if err != nil {
		return db.SearchEntry{}, fmt.Errorf("scan product: %w", err)
	}
	return r.entry(), nil
}

func (r productRow) entry() db.SearchEntry {
	rec := db.ProductRecord{
		ID:            r.ID,
		Title:         r.Title,
		ImageURLs:     r.ImageURLs,
		Description:   deref(r.Description),
		AverageRating: r.AverageRating,
		Store:         deref(r.Store),
		DeletedAt:     r.DeletedAt,
	}
	if r.RatingNumber != nil {
		n := int(*r.RatingNumber)
		rec.RatingNumber = &n
	}
	if r.CreatedAt != nil {
		rec.CreatedAt = *r.CreatedAt
	}
	if r.ModifiedAt != nil {
		rec.ModifiedAt = *r.ModifiedAt
	}
	return db.SearchEntry{Key: r.ID, Score: r.Similarity, Fields: rec.Fields()}
}

// --- SQL building ---

func buildKNNSQL(table string, excludeDeleted bool) (string, error) {
	ident, err := tableIdent(table)
	if err != nil {
		return "", err
	}

	where := "embedding IS NOT NULL"
	if excludeDeleted {
		where += ` AND "deletedAt" IS NULL`
	}

	return "SELECT " + productColumns + ", 1 - (embedding <=> $1::vector) AS similarity" +
		" FROM " + ident +
		" WHERE " + where +
		" ORDER BY embedding <=> $1::vector" +
		" LIMIT $2", nil
}

func buildKeywordSQL(table string, terms int, matchAll, excludeDeleted bool) (string, error) {
	ident, err := tableIdent(table)
	if err != nil {
		return "", err
	}

	conds := make([]string, terms)
	for i := range conds {
		conds[i] = "title ILIKE $" + strconv.Itoa(i+1)
	}
	sep := " OR "
	if matchAll {
		sep = " AND "
	}
	where := "(" + strings.Join(conds, sep) + ")"
	if excludeDeleted {
		where = `"deletedAt" IS NULL AND ` + where
	}

	return "SELECT " + productColumns + ", 1::float8 AS similarity" +
		" FROM " + ident +
		" WHERE " + where +
		" LIMIT $" + strconv.Itoa(terms+1), nil
}

func tableIdent(table string) (string, error) {
	if !db.IsValidIdentifier(table) || strings.Contains(table, ":") {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return pgx.Identifier{table}.Sanitize(), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so terms match literally (default escape char is backslash).
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// vectorLiteral renders v in pgvector text form: [0.1,0.2,...].
func vectorLiteral(v []float32) string {
	var sb strings.Builder
	sb.Grow(len(v) * 10)
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
