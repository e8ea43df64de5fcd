package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

// EnsureIndex creates the product index when it does not exist yet.
// It reports whether an index was created.
func EnsureIndex(ctx context.Context, mgr db.IndexManager, spec db.ProductIndexSpec) (bool, error) {
	def, err := db.ProductIndex(spec)
	if err != nil {
		return false, fmt.Errorf("product index %s: %w", spec.Name, err)
	}

	exists, err := mgr.IndexExists(ctx, spec.Name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", spec.Name, err)
	}
	if exists {
		return false, nil
	}

	if err := mgr.CreateIndex(ctx, def); err != nil {
		// Lost a race with another replica.
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", spec.Name, err)
	}
	return true, nil
}

// ResetIndex drops the product index together with every product hash it
// covers, then creates it empty.
func ResetIndex(ctx context.Context, mgr db.IndexManager, spec db.ProductIndexSpec) error {
	if err := mgr.DropIndex(ctx, spec.Name, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", spec.Name, err)
	}
	if _, err := EnsureIndex(ctx, mgr, spec); err != nil {
		return err
	}
	return nil
}
