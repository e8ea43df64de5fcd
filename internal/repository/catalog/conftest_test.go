package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

// mockStore implements the consumer interfaces for tests.
type mockStore struct {
	searchKNNFn     func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchKeywordFn func(ctx context.Context, q *db.KeywordQuery) (*db.SearchResult, error)
	upsertFn        func(ctx context.Context, target string, records []db.ProductRecord) error

	indexExists bool
	existsErr   error
	createErr   error
	created     *db.IndexDefinition
	dropErr     error
	dropped     string
	droppedDocs bool
	clearErr    error
	cleared     string
	deleteErr   error
	deleted     []string
	deletedAt   time.Time
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchKeyword(ctx context.Context, q *db.KeywordQuery) (*db.SearchResult, error) {
	if m.searchKeywordFn != nil {
		return m.searchKeywordFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) UpsertProducts(ctx context.Context, target string, records []db.ProductRecord) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, target, records)
	}
	return nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = def
	return m.createErr
}

func (m *mockStore) DropIndex(_ context.Context, name string, deleteDocs bool) error {
	m.dropped, m.droppedDocs = name, deleteDocs
	return m.dropErr
}

func (m *mockStore) ClearProducts(_ context.Context, target string) error {
	m.cleared = target
	return m.clearErr
}

func (m *mockStore) MarkDeleted(_ context.Context, _ string, ids []string, at time.Time) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = append(m.deleted, ids...)
	m.deletedAt = at
	return len(ids), nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.indexExists, m.existsErr
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "shop:products:idx", "shop:product:"), ms
}
