package config

import (
	"os"
	"strings"
	"testing"

	"github.com/kailas-cloud/stylesearch/internal/domain/product"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/rerank"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Driver: DriverRedis, Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{Model: "clip"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_Postgres(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = DriverPostgres
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing postgres url")
	}

	cfg.Database.URL = "postgres://localhost/fashion"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Embedding.Cache.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for cache without redis")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "valkey"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `database.driver must be "redis" or "postgres", got "valkey"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_RerankNorm(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Rerank.HighRating.Norm = 0

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "search.rerank: high_average_rating.norm") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{Model: "clip"}}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected driver redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.Table != "products" {
		t.Errorf("expected table products, got %q", cfg.Database.Table)
	}
	if cfg.Database.KeyPrefix != "stylesearch:product:" {
		t.Errorf("unexpected key prefix %q", cfg.Database.KeyPrefix)
	}
	if cfg.Index.HNSWM != 16 || cfg.Index.HNSWEFConstruct != 200 {
		t.Errorf("unexpected HNSW defaults %+v", cfg.Index)
	}
	if cfg.Embedding.Dimensions != 512 {
		t.Errorf("expected Dimensions=512, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Cache.KeyPrefix != "stylesearch:emb_cache:clip:" {
		t.Errorf("unexpected cache prefix %q", cfg.Embedding.Cache.KeyPrefix)
	}
	s := cfg.Search
	if s.MaxKeywords != 2 || s.ChannelLimit != 100 {
		t.Errorf("unexpected search defaults %+v", s)
	}
	if s.Rerank == nil || s.Rerank.HighRating.Threshold != 4 {
		t.Errorf("expected default rerank table, got %+v", s.Rerank)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverPostgres, ReadinessTimeout: 15, Table: "catalog"},
		Index:    IndexConfig{HNSWM: 32, HNSWEFConstruct: 400},
		Search:   SearchConfig{VectorWeight: 2, KeywordWeight: 1, MaxKeywords: 3, Rerank: &RerankConfig{}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("http timeouts overridden: %+v", cfg.HTTP)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.Table != "catalog" {
		t.Errorf("database overridden: %+v", cfg.Database)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Search.VectorWeight != 2 || cfg.Search.KeywordWeight != 1 || cfg.Search.MaxKeywords != 3 {
		t.Errorf("search overridden: %+v", cfg.Search)
	}
	if cfg.Search.Rerank.HighRating.Norm != 0 {
		t.Error("explicit rerank section must not be replaced")
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_EMBED_MODEL", "fashion-clip")
	os.Unsetenv("TEST_MISSING_PORT")

	cfg, err := Parse([]byte(`
http:
  port: ${TEST_MISSING_PORT:-9090}
database:
  addrs: ["localhost:6379"]
embedding:
  model: ${TEST_EMBED_MODEL}
search:
  rerank:
    no_photo: {weight: -2, placeholder_urls: ["https://img/none.gif"]}
    marked_for_archive: {weight: -1, title: "Archived"}
    high_average_rating: {threshold: 4.5, norm: 5, weight: 1}
    low_average_rating: {threshold: 2, norm: 2, weight: -0.5}
    high_rating_number: {threshold: 10, ceiling: 100, norm: 100, weight: 0.1}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Embedding.Model != "fashion-clip" {
		t.Errorf("model = %q", cfg.Embedding.Model)
	}
	if cfg.Search.Rerank.NoPhoto.Weight != -2 || cfg.Search.Rerank.Archive.Title != "Archived" {
		t.Errorf("unexpected rerank %+v", cfg.Search.Rerank)
	}
}

func TestApplyDefaults_NegativeWeights(t *testing.T) {
	cfg := Config{Search: SearchConfig{VectorWeight: -1, KeywordWeight: -0.2}}
	cfg.ApplyDefaults()
	if cfg.Search.VectorWeight != 1.0 || cfg.Search.KeywordWeight != 0.5 {
		t.Errorf("negative weights should fall back, got %+v", cfg.Search)
	}
}

const minimalYAML = `
http:
  port: 8080
database:
  addrs: ["localhost:6379"]
embedding:
  model: clip
`

func TestParse_DefaultWeights(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Search.VectorWeight != 1.0 || cfg.Search.KeywordWeight != 0.5 {
		t.Errorf("unexpected weights %+v", cfg.Search)
	}
	if cfg.Search.Rerank == nil || cfg.Search.Rerank.Archive.Title != rerank.DefaultArchiveTitle {
		t.Errorf("expected default rerank table, got %+v", cfg.Search.Rerank)
	}
}

func TestParse_ZeroKeywordWeight(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
search:
  keyword_weight: 0
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Search.KeywordWeight != 0 {
		t.Errorf("keyword weight = %v, want 0", cfg.Search.KeywordWeight)
	}
	if cfg.Search.VectorWeight != 1.0 {
		t.Errorf("vector weight = %v, want default", cfg.Search.VectorWeight)
	}
}

func TestParse_PartialRerankKeepsOtherRules(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
search:
  rerank:
    no_photo: {weight: -2}
    high_average_rating: {threshold: 4.5}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := cfg.Search.Rerank
	if r.NoPhoto.Weight != -2 {
		t.Errorf("no_photo weight = %v", r.NoPhoto.Weight)
	}
	if len(r.NoPhoto.PlaceholderURLs) != 1 || r.NoPhoto.PlaceholderURLs[0] != rerank.DefaultPlaceholderImageURL {
		t.Errorf("placeholder urls lost: %v", r.NoPhoto.PlaceholderURLs)
	}
	if r.HighRating.Threshold != 4.5 || r.HighRating.Norm != 5 || r.HighRating.Weight != 0.5 {
		t.Errorf("high rating = %+v", r.HighRating)
	}
	if r.Archive.Title != rerank.DefaultArchiveTitle || r.Archive.Weight != -1 {
		t.Errorf("archive rule lost: %+v", r.Archive)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected yaml error")
	}
	if _, err := Parse([]byte("http: {port: 8080}")); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_RepositoryConfigs(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fashion")
	t.Setenv("EMBEDDING_MODEL", "clip")

	for _, env := range []string{"local", "prod"} {
		if _, err := Load(env); err != nil {
			t.Errorf("Load(%s): %v", env, err)
		}
	}
}

func TestRerankConfig_DefaultTableMatchesPolicy(t *testing.T) {
	table := DefaultRerankConfig().Table()

	rating := 4.5
	count := 150
	p := product.Reconstruct("p", product.Attributes{
		ImageURLs:     []string{"https://img/real.jpg"},
		AverageRating: &rating,
		RatingCount:   &count,
	})
	delta, _ := table.Evaluate(p)
	// 4.5/5*0.5 + 150/200*0.2
	if want := 0.45 + 0.15; delta < want-1e-9 || delta > want+1e-9 {
		t.Errorf("delta = %v, want %v", delta, want)
	}

	if got := len(table.Names()); got != 5 {
		t.Errorf("expected 5 rules, got %d", got)
	}
}
