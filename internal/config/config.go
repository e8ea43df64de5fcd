package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds the stylesearch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Parser    ParserConfig    `yaml:"parser"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// DatabaseConfig holds catalog backend settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	URL              string   `yaml:"url"`
	MaxConns         int32    `yaml:"max_conns"`
	Table            string   `yaml:"table"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds the Redis FT index settings.
type IndexConfig struct {
	Name            string `yaml:"name"`
	AutoCreate      bool   `yaml:"auto_create"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string      `yaml:"provider"`
	BaseURL    string      `yaml:"base_url"`
	APIKey     string      `yaml:"api_key"`
	Model      string      `yaml:"model"`
	Dimensions int         `yaml:"dimensions"`
	Normalize  bool        `yaml:"normalize"`
	BatchSize  int         `yaml:"batch_size"`
	Cache      CacheConfig `yaml:"cache"`
	// QueryInstruction is prepended to search queries, never to catalog
	// documents. Instruction-tuned models (e5, bge) expect one.
	QueryInstruction string `yaml:"query_instruction"`
}

// CacheConfig holds embedding cache settings. Only the redis driver can cache.
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	KeyPrefix string `yaml:"key_prefix"`
	TTLSec    int    `yaml:"ttl_sec"` // 0 = no expiry
}

// ParserConfig holds query parser settings.
type ParserConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SearchConfig holds ranking settings.
type SearchConfig struct {
	VectorWeight  float64       `yaml:"vector_weight"`
	KeywordWeight float64       `yaml:"keyword_weight"`
	MaxKeywords   int           `yaml:"max_keywords"`
	ChannelLimit  int           `yaml:"channel_limit"`
	TimeoutSec    int           `yaml:"timeout_sec"`
	Rerank        *RerankConfig `yaml:"rerank"`
}

const (
	defaultVectorWeight  = 1.0
	defaultKeywordWeight = 0.5
)

// seedDefaults holds the values that zero cannot stand in for: weights where
// 0 is meaningful and the rerank table whose rules a partial section keeps.
func seedDefaults() Config {
	rr := DefaultRerankConfig()
	return Config{
		Search: SearchConfig{
			VectorWeight:  defaultVectorWeight,
			KeywordWeight: defaultKeywordWeight,
			Rerank:        &rr,
		},
	}
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	// Seeded so a partial section only overrides the keys it names.
	cfg := seedDefaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Table == "" {
		c.Database.Table = "products"
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "stylesearch:product:"
	}

	if c.Index.Name == "" {
		c.Index.Name = "stylesearch:products"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 512
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 64
	}
	if c.Embedding.Cache.KeyPrefix == "" {
		c.Embedding.Cache.KeyPrefix = "stylesearch:emb_cache:" + c.Embedding.Model + ":"
	}

	if c.Parser.TimeoutSec <= 0 {
		c.Parser.TimeoutSec = 15
	}

	// Zero is a legal weight: it switches the channel off in the merge.
	if c.Search.VectorWeight < 0 {
		c.Search.VectorWeight = defaultVectorWeight
	}
	if c.Search.KeywordWeight < 0 {
		c.Search.KeywordWeight = defaultKeywordWeight
	}
	if c.Search.MaxKeywords <= 0 {
		c.Search.MaxKeywords = 2
	}
	if c.Search.ChannelLimit <= 0 {
		c.Search.ChannelLimit = 100
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 25
	}
	if c.Search.Rerank == nil {
		def := DefaultRerankConfig()
		c.Search.Rerank = &def
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
		if c.Embedding.Cache.Enabled {
			return fmt.Errorf("embedding.cache requires the redis driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverPostgres, c.Database.Driver)
	}

	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Cache.TTLSec < 0 {
		return fmt.Errorf("embedding.cache.ttl_sec must not be negative, got %d", c.Embedding.Cache.TTLSec)
	}

	if c.Search.Rerank != nil {
		if err := c.Search.Rerank.Validate(); err != nil {
			return fmt.Errorf("search.rerank: %w", err)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
