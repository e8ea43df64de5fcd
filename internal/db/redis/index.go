package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

// CreateIndex runs FT.CREATE for the definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := createArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex runs FT.DROPINDEX. With deleteDocs the product hashes go too (DD).
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	args := []string{name}
	if deleteDocs {
		args = append(args, "DD")
	}

	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists probes the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// createArgs renders FT.CREATE arguments:
//
//	<name> ON HASH PREFIX 1 <prefix> SCHEMA <field> <type> [options]...
func createArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("index %q: %w", def.Name, err)
	}

	args := []string{def.Name, "ON", "HASH", "PREFIX", "1", def.Prefix, "SCHEMA"}
	for _, f := range def.Fields {
		fieldArgs, err := schemaArgs(f)
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}
	return args, nil
}

func schemaArgs(f db.IndexField) ([]string, error) {
	switch f.Type {
	case db.IndexFieldNumeric:
		return []string{f.Name, "NUMERIC"}, nil
	case db.IndexFieldText:
		if f.NoStem {
			return []string{f.Name, "TEXT", "NOSTEM"}, nil
		}
		return []string{f.Name, "TEXT"}, nil
	case db.IndexFieldVector:
		if f.Dim <= 0 {
			return nil, fmt.Errorf("vector field %q: dimension must be positive", f.Name)
		}
		attrs := []string{
			"TYPE", "FLOAT32",
			"DIM", strconv.Itoa(f.Dim),
			"DISTANCE_METRIC", db.DistanceCosine,
		}
		if f.M > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.M))
		}
		if f.EFConstruction > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.EFConstruction))
		}
		out := append([]string{f.Name, "VECTOR", "HNSW", strconv.Itoa(len(attrs))}, attrs...)
		return out, nil
	default:
		return nil, fmt.Errorf("field %q: unknown type %d", f.Name, f.Type)
	}
}
