package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

// UpsertProducts inserts or replaces records in one batch round-trip.
// The creation time is kept on conflict; modifiedAt is set by the database.
func (s *Store) UpsertProducts(ctx context.Context, table string, records []db.ProductRecord) error {
	if len(records) == 0 {
		return nil
	}

	sql, err := buildUpsertSQL(table)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		var vec any
		if len(rec.Vector) > 0 {
			vec = vectorLiteral(rec.Vector)
		}
		var created any
		if !rec.CreatedAt.IsZero() {
			created = rec.CreatedAt
		}
		urls := rec.ImageURLs
		if urls == nil {
			urls = []string{}
		}
		batch.Queue(sql,
			rec.ID, rec.Title, urls, rec.Description, rec.AverageRating, rec.RatingNumber,
			rec.Store, vec, created, rec.DeletedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, rec := range records {
		if _, err := br.Exec(); err != nil {
			return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("product %s: %w", rec.ID, err)}
		}
	}
	return nil
}

func buildUpsertSQL(table string) (string, error) {
	ident, err := tableIdent(table)
	if err != nil {
		return "", err
	}
	return "INSERT INTO " + ident +
		` (id, title, "imageUrls", description, average_rating, rating_number, store, embedding, "createdAt", "modifiedAt", "deletedAt")` +
		` VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector, COALESCE($9, now()), now(), $10)` +
		` ON CONFLICT (id) DO UPDATE SET` +
		` title = EXCLUDED.title, "imageUrls" = EXCLUDED."imageUrls", description = EXCLUDED.description,` +
		` average_rating = EXCLUDED.average_rating, rating_number = EXCLUDED.rating_number,` +
		` store = EXCLUDED.store, embedding = COALESCE(EXCLUDED.embedding, ` + ident + `.embedding),` +
		` "modifiedAt" = now(), "deletedAt" = EXCLUDED."deletedAt"`, nil
}

// ClearProducts deletes every row of the table.
func (s *Store) ClearProducts(ctx context.Context, table string) error {
	ident, err := tableIdent(table)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, "DELETE FROM "+ident); err != nil {
		return &db.Error{Op: db.OpClear, Err: err}
	}
	return nil
}

// MarkDeleted sets "deletedAt" on live rows whose id is in ids and reports how
// many changed. Rows already deleted keep their original timestamp.
func (s *Store) MarkDeleted(ctx context.Context, table string, ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ident, err := tableIdent(table)
	if err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE `+ident+` SET "deletedAt" = $1, "modifiedAt" = now() WHERE id = ANY($2) AND "deletedAt" IS NULL`,
		at.UTC(), ids,
	)
	if err != nil {
		return 0, &db.Error{Op: db.OpMarkDeleted, Err: err}
	}
	return int(tag.RowsAffected()), nil
}
