package health

import "context"

// DBPinger is the catalog backend; db.Store satisfies it.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker is a model provider: the embedder or the query parser.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// probe adapts either dependency to a single call.
type probe struct {
	name     string
	critical bool
	run      func(ctx context.Context) error
}
