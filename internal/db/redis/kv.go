package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

// Get returns the raw value at key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	switch {
	case err == nil:
		return data, nil
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	default:
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
}

// SetWithTTL stores value at key. Sub-second ttls are sent as PX; ttl <= 0
// means no expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := s.b().Set().Key(key).Value(rueidis.BinaryString(value))

	var cmd rueidis.Completed
	switch {
	case ttl <= 0:
		cmd = set.Build()
	case ttl%time.Second != 0:
		cmd = set.PxMilliseconds(ttl.Milliseconds()).Build()
	default:
		cmd = set.ExSeconds(int64(ttl / time.Second)).Build()
	}

	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}
