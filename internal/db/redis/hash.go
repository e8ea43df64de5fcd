package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

// UpsertProducts replaces each record's hash under prefix+ID. Every record
// costs a DEL and an HSET, pipelined in one DoMulti round-trip, so fields the
// new version lacks (a vector after a failed embed, an unknown rating) do not
// survive from the old one. Hashes without a vector stay out of KNN results.
func (s *Store) UpsertProducts(ctx context.Context, prefix string, records []db.ProductRecord) error {
	if len(records) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, 2*len(records))
	for _, rec := range records {
		key := prefix + rec.ID
		cmds = append(cmds,
			s.b().Del().Key(key).Build(),
			s.hset(key, rec),
		)
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			key := prefix + records[i/2].ID
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}
	return nil
}

// hset builds HSET with fields in a stable order.
func (s *Store) hset(key string, rec db.ProductRecord) rueidis.Completed {
	fields := rec.Fields()
	if len(rec.Vector) > 0 {
		fields[db.FieldVector] = vectorToBytes(rec.Vector)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd := s.b().Hset().Key(key).FieldValue()
	for _, name := range names {
		cmd = cmd.FieldValue(name, fields[name])
	}
	return cmd.Build()
}

// MarkDeleted stamps deleted_at and deleted=1 on the hashes that exist under
// prefix+ID. Missing keys are skipped so no partial hash lands in the index.
// Already-deleted products are stamped again and still counted.
func (s *Store) MarkDeleted(ctx context.Context, prefix string, ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	probes := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		probes[i] = s.b().Exists().Key(prefix + id).Build()
	}

	stamp := at.UTC().Format(time.RFC3339Nano)
	var keys []string
	var cmds []rueidis.Completed
	for i, res := range s.client.DoMulti(ctx, probes...) {
		key := prefix + ids[i]
		n, err := res.AsInt64()
		if err != nil {
			return 0, &db.Error{Op: db.OpExists, Err: fmt.Errorf("key %s: %w", key, err)}
		}
		if n == 0 {
			continue
		}
		keys = append(keys, key)
		cmds = append(cmds, s.b().Hset().Key(key).FieldValue().
			FieldValue(db.FieldDeletedAt, stamp).
			FieldValue(db.FieldDeleted, "1").
			Build())
	}
	if len(cmds) == 0 {
		return 0, nil
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return 0, &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
	}
	return len(cmds), nil
}
