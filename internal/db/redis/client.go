package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

var (
	_ db.Store          = (*Store)(nil)
	_ db.KVStore        = (*Store)(nil)
	_ db.CatalogWriter  = (*Store)(nil)
	_ db.CatalogDeleter = (*Store)(nil)
	_ db.IndexManager   = (*Store)(nil)
)

// defaultClientName tags connections in CLIENT LIST.
const defaultClientName = "stylesearch"

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	ClientName  string
	DialTimeout time.Duration
}

// Store serves the catalog from Redis 8+, whose Query Engine provides the
// TEXT and VECTOR fields both channels need.
type Store struct {
	client rueidis.Client
}

// NewStore dials the configured nodes.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
		ClientName:  name,
		Dialer:      net.Dialer{Timeout: cfg.DialTimeout},
		// Server-assisted caching is useless for search replies.
		DisableCache: true,
		// FT.SEARCH replies are parsed as RESP2 arrays.
		AlwaysRESP2: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping sends PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady blocks until the database answers a ping or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server reply mentioning substr.
// Query Engine errors carry no codes, so matching is on the message.
func isRedisErr(err error, substr string) bool {
	if re, ok := rueidis.IsRedisErr(err); ok {
		return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
	}
	return false
}
