package redis

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

func newTestStore(c rueidis.Client) *Store {
	return &Store{client: c}
}

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := newTestStore(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestWaitForReady_Succeeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := newTestStore(c)
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	s := newTestStore(c)
	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestIsRedisErr(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisError("Unknown INDEX name")))

	err := newTestStore(c).do(context.Background(), c.B().Ping().Build()).Error()
	if !isRedisErr(err, "unknown index name") {
		t.Errorf("expected case-insensitive match for %v", err)
	}
	if isRedisErr(err, "already exists") {
		t.Error("unexpected match")
	}
	if isRedisErr(context.Canceled, "canceled") {
		t.Error("non-server errors must not match")
	}
}

// --- hash.go tests ---

func TestUpsertProducts_ReplacesHashes(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
			if len(cmds) != 4 {
				t.Fatalf("expected DEL+HSET per record, got %d commands", len(cmds))
			}
			if got := cmds[0].Commands(); got[0] != "DEL" || got[1] != "shop:product:p1" {
				t.Errorf("unexpected first command %v", got)
			}
			hset := cmds[1].Commands()
			if hset[0] != "HSET" || hset[1] != "shop:product:p1" {
				t.Errorf("unexpected second command %v", hset[:2])
			}
			if !slices.Contains(hset, "vector") {
				t.Errorf("expected vector field in %v", hset)
			}
			if slices.Contains(cmds[3].Commands(), "vector") {
				t.Error("record without embedding must not carry a vector field")
			}
			return []rueidis.RedisResult{
				mock.Result(mock.RedisInt64(1)),
				mock.Result(mock.RedisInt64(9)),
				mock.Result(mock.RedisInt64(0)),
				mock.Result(mock.RedisInt64(8)),
			}
		})

	s := newTestStore(c)
	err := s.UpsertProducts(context.Background(), "shop:product:", []db.ProductRecord{
		{ID: "p1", Title: "Heels", Vector: []float32{0.1, 0.2}},
		{ID: "p2", Title: "Boots"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsertProducts_ErrorNamesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(9)),
			mock.Result(mock.RedisInt64(0)),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := newTestStore(c)
	err := s.UpsertProducts(context.Background(), "product:", []db.ProductRecord{
		{ID: "1", Title: "Heels"},
		{ID: "2", Title: "Boots"},
	})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
	if !strings.Contains(err.Error(), "product:2") {
		t.Errorf("expected failing key in error, got %v", err)
	}
}

func TestUpsertProducts_Empty(t *testing.T) {
	s := newTestStore(nil)
	if err := s.UpsertProducts(context.Background(), "product:", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkDeleted_StampsExistingKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	gomock.InOrder(
		c.EXPECT().
			DoMulti(gomock.Any(), mock.Match("EXISTS", "product:A"), mock.Match("EXISTS", "product:B")).
			Return([]rueidis.RedisResult{
				mock.Result(mock.RedisInt64(1)),
				mock.Result(mock.RedisInt64(0)),
			}),
		c.EXPECT().
			DoMulti(gomock.Any(), mock.Match("HSET", "product:A",
				"deleted_at", "2025-03-01T12:00:00Z", "deleted", "1")).
			Return([]rueidis.RedisResult{mock.Result(mock.RedisInt64(0))}),
	)

	s := newTestStore(c)
	n, err := s.MarkDeleted(context.Background(), "product:", []string{"A", "B"}, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("changed = %d, want 1", n)
	}
}

func TestMarkDeleted_NoneExist(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.Result(mock.RedisInt64(0))})

	n, err := newTestStore(c).MarkDeleted(context.Background(), "product:", []string{"X"}, time.Now())
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestMarkDeleted_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	s := newTestStore(c)
	_, err := s.MarkDeleted(context.Background(), "product:", []string{"A"}, time.Now())
	if db.OpOf(err) != db.OpExists || !strings.Contains(err.Error(), "product:A") {
		t.Fatalf("expected EXISTS failure naming the key, got %v", err)
	}

	n, err := newTestStore(nil).MarkDeleted(context.Background(), "product:", nil, time.Now())
	if err != nil || n != 0 {
		t.Errorf("empty ids: n=%d err=%v", n, err)
	}
}

func TestHSet_StableFieldOrder(t *testing.T) {
	s := newTestStore(mock.NewClient(gomock.NewController(t)))
	rec := db.ProductRecord{ID: "p1", Title: "Heels", Store: "Acme"}

	first := s.hset("k", rec)
	second := s.hset("k", rec)
	a := first.Commands()
	b := second.Commands()
	if !slices.Equal(a, b) {
		t.Errorf("field order differs between builds:\n%v\n%v", a, b)
	}
}

// --- kv.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisBlobString("value")))

	s := newTestStore(c)
	data, err := s.Get(context.Background(), "mykey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisNil()))

	s := newTestStore(c)
	_, err := s.Get(context.Background(), "mykey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSetWithTTL_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "mykey", "myvalue", "EX", "60")).
		Return(mock.Result(mock.RedisString("OK")))

	s := newTestStore(c)
	if err := s.SetWithTTL(context.Background(), "mykey", []byte("myvalue"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_NoExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "mykey", "myvalue")).
		Return(mock.Result(mock.RedisString("OK")))

	s := newTestStore(c)
	if err := s.SetWithTTL(context.Background(), "mykey", []byte("myvalue"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_SubSecond(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "mykey", "myvalue", "PX", "1500")).
		Return(mock.Result(mock.RedisString("OK")))

	s := newTestStore(c)
	if err := s.SetWithTTL(context.Background(), "mykey", []byte("myvalue"), 1500*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	err := s.SetWithTTL(context.Background(), "mykey", []byte("v"), time.Minute)
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

// --- index.go tests ---

func testIndex(t *testing.T) *db.IndexDefinition {
	t.Helper()
	idx, err := db.ProductIndex(db.ProductIndexSpec{
		Name: "products-idx", Prefix: "product:", Dim: 4, M: 16, EFConstruction: 200,
	})
	if err != nil {
		t.Fatalf("ProductIndex: %v", err)
	}
	return idx
}

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "products-idx" &&
				cmd[2] == "ON" && cmd[3] == "HASH"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := newTestStore(c)
	if err := s.CreateIndex(context.Background(), testIndex(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := newTestStore(c)
	err := s.CreateIndex(context.Background(), testIndex(t))
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	if err := s.CreateIndex(context.Background(), testIndex(t)); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestCreateIndex_InvalidDefinition(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := newTestStore(c)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{Name: "idx"})
	if err == nil || isDBError(err) {
		t.Fatalf("expected validation error before any command, got %v", err)
	}
}

func TestDropIndex_KeepDocs(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "test:idx")).
		Return(mock.Result(mock.RedisString("OK")))

	s := newTestStore(c)
	if err := s.DropIndex(context.Background(), "test:idx", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_DeleteDocs(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "test:idx", "DD")).
		Return(mock.Result(mock.RedisString("OK")))

	s := newTestStore(c)
	if err := s.DropIndex(context.Background(), "test:idx", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := newTestStore(c)
	err := s.DropIndex(context.Background(), "test:idx", false)
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("test:idx"))))

	s := newTestStore(c)
	exists, err := s.IndexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := newTestStore(c)
	exists, err := s.IndexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestIndexExists_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	if _, err := s.IndexExists(context.Background(), "test:idx"); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestCreateArgs_ProductSchema(t *testing.T) {
	idx, err := db.ProductIndex(db.ProductIndexSpec{
		Name: "products-idx", Prefix: "shop:product:", Dim: 1536, M: 16, EFConstruction: 200,
	})
	if err != nil {
		t.Fatalf("ProductIndex: %v", err)
	}

	args, err := createArgs(idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"products-idx", "ON", "HASH", "PREFIX", "1", "shop:product:", "SCHEMA",
		"title", "TEXT", "NOSTEM",
		"deleted", "NUMERIC",
		"vector", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32", "DIM", "1536", "DISTANCE_METRIC", "COSINE",
		"M", "16", "EF_CONSTRUCTION", "200",
	}, " ")
	if got := strings.Join(args, " "); got != want {
		t.Errorf("args =\n%s\nwant\n%s", got, want)
	}
}

func TestSchemaArgs(t *testing.T) {
	tests := []struct {
		name  string
		field db.IndexField
		want  string
	}{
		{"numeric", db.IndexField{Name: "f", Type: db.IndexFieldNumeric}, "f NUMERIC"},
		{"text", db.IndexField{Name: "f", Type: db.IndexFieldText}, "f TEXT"},
		{"text_nostem", db.IndexField{Name: "f", Type: db.IndexFieldText, NoStem: true}, "f TEXT NOSTEM"},
		{"vector_no_tuning", db.IndexField{Name: "f", Type: db.IndexFieldVector, Dim: 8},
			"f VECTOR HNSW 6 TYPE FLOAT32 DIM 8 DISTANCE_METRIC COSINE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args, err := schemaArgs(tc.field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := strings.Join(args, " "); got != tc.want {
				t.Errorf("args = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSchemaArgs_Errors(t *testing.T) {
	if _, err := schemaArgs(db.IndexField{Name: "f", Type: db.IndexFieldType(99)}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := schemaArgs(db.IndexField{Name: "f", Type: db.IndexFieldVector}); err == nil {
		t.Error("expected error for zero vector dim")
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var sent []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			sent = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2), // total
			mock.RedisString("product:1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"), // distance 0.1 → similarity 0.9
				mock.RedisString("title"),
				mock.RedisString("Party Heels"),
			),
			mock.RedisString("product:2"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("1.5"), // opposite direction: similarity -0.5
			),
		)))

	s := newTestStore(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:      "products-idx",
		Vector:         []float32{0.1, 0.2},
		K:              100,
		ExcludeDeleted: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 || len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", result)
	}

	e := result.Entries[0]
	if e.Key != "product:1" {
		t.Errorf("expected key product:1, got %s", e.Key)
	}
	if e.Score < 0.89 || e.Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", e.Score)
	}
	if _, ok := e.Fields["__vector_score"]; ok {
		t.Error("vector score must not leak into fields")
	}
	if e.Fields["title"] != "Party Heels" {
		t.Errorf("unexpected fields %v", e.Fields)
	}
	if got := result.Entries[1].Score; got < -0.51 || got > -0.49 {
		t.Errorf("expected negative similarity -0.5, got %f", got)
	}

	if sent[2] != "(@deleted:[0 0])=>[KNN 100 @vector $BLOB]" {
		t.Errorf("unexpected query %q", sent[2])
	}
	joined := strings.Join(sent, " ")
	if !strings.Contains(joined, "LIMIT 0 100") {
		t.Errorf("expected LIMIT 0 100 in %q", joined)
	}
	if !strings.Contains(joined, "SORTBY __vector_score ASC") {
		t.Errorf("expected ascending distance sort in %q", joined)
	}
}

func TestSearchKNN_ReturnFieldsIncludeScore(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var sent []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			sent = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := newTestStore(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "idx",
		Vector:       []float32{1},
		K:            5,
		ReturnFields: []string{"title", "store"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(strings.Join(sent, " "), "RETURN 3 title store __vector_score") {
		t.Errorf("unexpected RETURN clause in %v", sent)
	}
	if sent[2] != "*=>[KNN 5 @vector $BLOB]" {
		t.Errorf("unexpected unfiltered query %q", sent[2])
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := newTestStore(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx",
		Vector:    []float32{0.1},
		K:         10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearchKNN_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx",
		Vector:    []float32{0.1},
		K:         10,
	})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	_, err := s.SearchKNN(ctx, &db.KNNQuery{Vector: []float32{0.1}, K: 10})
	if err == nil {
		t.Error("expected error for empty index name")
	}

	_, err = s.SearchKNN(ctx, &db.KNNQuery{IndexName: "idx", K: 10})
	if err == nil {
		t.Error("expected error for empty vector")
	}

	_, err = s.SearchKNN(ctx, &db.KNNQuery{IndexName: "idx", Vector: []float32{0.1}, K: 0})
	if err == nil {
		t.Error("expected error for k=0")
	}
}

func TestSearchKeyword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "products-idx",
			"@deleted:[0 0] @title:(*heels* *party*)",
			"LIMIT", "0", "100",
			"DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("product:7"),
			mock.RedisArray(
				mock.RedisString("title"),
				mock.RedisString("Party Heels"),
			),
		)))

	s := newTestStore(c)
	result, err := s.SearchKeyword(context.Background(), &db.KeywordQuery{
		IndexName:      "products-idx",
		Terms:          []string{"heels", "party"},
		MatchAll:       true,
		ExcludeDeleted: true,
		Limit:          100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Key != "product:7" {
		t.Fatalf("unexpected entries %+v", result.Entries)
	}
	if result.Entries[0].Score != 0 {
		t.Errorf("keyword hits carry no score, got %f", result.Entries[0].Score)
	}
}

func TestSearchKeyword_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	_, err := s.SearchKeyword(context.Background(), &db.KeywordQuery{
		IndexName: "idx",
		Terms:     []string{"heels"},
		Limit:     10,
	})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestSearchKeyword_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	_, err := s.SearchKeyword(ctx, &db.KeywordQuery{Terms: []string{"a"}, Limit: 10})
	if err == nil {
		t.Error("expected error for empty index name")
	}

	_, err = s.SearchKeyword(ctx, &db.KeywordQuery{IndexName: "idx", Terms: []string{"a"}})
	if err == nil {
		t.Error("expected error for zero limit")
	}

	_, err = s.SearchKeyword(ctx, &db.KeywordQuery{IndexName: "idx", Terms: []string{" ", ""}, Limit: 10})
	if err == nil {
		t.Error("expected error for blank terms")
	}
}

func TestBuildTitleMatch(t *testing.T) {
	tests := []struct {
		name     string
		terms    []string
		matchAll bool
		want     string
	}{
		{"single", []string{"heels"}, true, "@title:(*heels*)"},
		{"all", []string{"heels", "party"}, true, "@title:(*heels* *party*)"},
		{"any", []string{"heels", "boots"}, false, "@title:(*heels* | *boots*)"},
		{"multi word", []string{"ankle boots", "red"}, false, "@title:((*ankle* *boots*) | *red*)"},
		{"hyphenated", []string{"t-shirt"}, true, "@title:((t *shirt*))"},
		{"punctuation only", []string{"--", "heels"}, false, "@title:(*heels*)"},
		{"apostrophe", []string{"levi's jeans"}, true, "@title:((*levi* s *jeans*))"},
		{"blank skipped", []string{"", "heels"}, true, "@title:(*heels*)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := buildTitleMatch(tc.terms, tc.matchAll)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEscapeQuery(t *testing.T) {
	input := `hello "world" @user {tag}`
	escaped := escapeQuery(input)
	expected := `hello \"world\" \@user \{tag\}`
	if escaped != expected {
		t.Errorf("expected %q, got %q", expected, escaped)
	}
}

func TestVectorToBytes(t *testing.T) {
	v := []float32{1.0, 2.0}
	b := vectorToBytes(v)
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
	// 1.0f little-endian: 00 00 80 3f
	if b[0] != 0x00 || b[1] != 0x00 || b[2] != 0x80 || b[3] != 0x3f {
		t.Errorf("unexpected encoding % x", []byte(b[:4]))
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
