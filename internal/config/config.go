// Package config loads the typed configuration tree for driftmind from
// config.yaml plus environment overrides, replacing the "string-key config
// bag" pattern (spec.md §9) with one struct per concern.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the root configuration tree. Every nested struct corresponds to
// one component from SPEC_FULL.md's DOMAIN STACK table.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Index      IndexConfig      `mapstructure:"index"`
	Blob       BlobConfig       `mapstructure:"blob"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Search     SearchConfig     `mapstructure:"search"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Download   DownloadConfig   `mapstructure:"download"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Analytics  AnalyticsConfig  `mapstructure:"analytics"`
	VectorDatabase *VectorDatabaseConfig `mapstructure:"vector_database"`
}

// VectorDatabaseConfig mirrors the teacher's h.cfg.VectorDatabase.Driver
// lookup used by the system-info handler.
type VectorDatabaseConfig struct {
	Driver string `mapstructure:"driver"`
}

type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	UILanguage     string `mapstructure:"ui_language"` // used by Chat Gateway's system prompt (§4.7)
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// IndexConfig configures the Index Gateway (§4.6), selecting one of three
// interchangeable backends.
type IndexConfig struct {
	Driver           string         `mapstructure:"driver"` // elasticsearch_v7 | elasticsearch_v8 | qdrant | postgres
	IndexName        string         `mapstructure:"index_name"`
	Elasticsearch    ESConfig       `mapstructure:"elasticsearch"`
	Qdrant           QdrantConfig   `mapstructure:"qdrant"`
	HNSW             HNSWConfig     `mapstructure:"hnsw"`
	EmbeddingDim     int            `mapstructure:"embedding_dim"`
	BulkHydrateLimit int            `mapstructure:"bulk_hydrate_limit"`
}

type ESConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type QdrantConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// APIKey authenticates against managed Qdrant clusters.
	APIKey string `mapstructure:"api_key"`
}

// HNSWConfig carries the recommended ANN parameters from spec.md §4.6.
type HNSWConfig struct {
	M             int `mapstructure:"m"`
	EfConstruction int `mapstructure:"ef_construction"`
	EfSearch      int `mapstructure:"ef_search"`
}

// BlobConfig configures the Blob Gateway, selecting minio or cos.
type BlobConfig struct {
	Driver    string      `mapstructure:"driver"` // minio | cos
	Container string      `mapstructure:"container"`
	Minio     MinioConfig `mapstructure:"minio"`
	COS       COSConfig   `mapstructure:"cos"`
	// MaxFileSizeInMB is the upload size ceiling from §8's boundary test.
	MaxFileSizeInMB int      `mapstructure:"max_file_size_mb"`
	AllowedExt      []string `mapstructure:"allowed_ext"`
}

type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type COSConfig struct {
	BucketURL string `mapstructure:"bucket_url"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
}

// EmbeddingConfig configures the Embedder (§4.5 of system overview table).
type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"` // ollama | openai_compatible
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	ModelName  string        `mapstructure:"model_name"`
	Dimensions int           `mapstructure:"dimensions"`
	BatchSize  int           `mapstructure:"batch_size"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	CacheSlide time.Duration `mapstructure:"cache_slide"`
	CacheSize  int           `mapstructure:"cache_size"`
}

// ChatConfig configures the Chat Gateway (§4.7).
type ChatConfig struct {
	Provider  string `mapstructure:"provider"` // ollama | openai_compatible
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	ModelName string `mapstructure:"model_name"`
}

// SearchConfig holds the Search Orchestrator's tunables (§4.1, §6).
type SearchConfig struct {
	MinScoreForAnswer    float64 `mapstructure:"min_score_for_answer"`
	MinScoreForFollowUp  float64 `mapstructure:"min_score_for_follow_up"`
	MaxSourcesForAnswer  int     `mapstructure:"max_sources_for_answer"`
	HybridFetchCap       int     `mapstructure:"hybrid_fetch_cap"`
	HistoryEnhanceTopK   int     `mapstructure:"history_enhance_top_k"`
}

// IngestConfig holds the Ingest Pipeline's tunables (§4.2).
type IngestConfig struct {
	DefaultChunkSize       int `mapstructure:"default_chunk_size"`
	DefaultChunkOverlap    int `mapstructure:"default_chunk_overlap"`
	AsyncThresholdMB       int `mapstructure:"async_threshold_mb"`
	AsyncWorkerConcurrency int `mapstructure:"async_worker_concurrency"`
	MaxIDGenerationTries   int `mapstructure:"max_id_generation_tries"`
}

// DownloadConfig configures the Download Token Service (§4, download tokens).
type DownloadConfig struct {
	SigningKey        string `mapstructure:"signing_key"`
	MaxExpirationMins  int   `mapstructure:"max_expiration_minutes"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig.DSN must be a postgres:// URL (not a libpq key=value
// string): internal/migrate's golang-migrate driver resolves its schema
// from the URL.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TracingConfig struct {
	Exporter    string `mapstructure:"exporter"` // stdout | otlp
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type AnalyticsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DuckDBPath string `mapstructure:"duckdb_path"`
}

// Load reads config.yaml (if present) from configPath, then layers
// DRIFTMIND_-prefixed environment variables on top, the way the teacher's
// viper-based config loading favors env overrides for containerized runs.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("DRIFTMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.VectorDatabase == nil {
		cfg.VectorDatabase = &VectorDatabaseConfig{Driver: cfg.Index.Driver}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.ui_language", "en")
	v.SetDefault("server.max_upload_bytes", int64(200*1024*1024))

	v.SetDefault("index.driver", "elasticsearch_v8")
	v.SetDefault("index.index_name", "driftmind-chunks")
	v.SetDefault("index.embedding_dim", 1536)
	v.SetDefault("index.bulk_hydrate_limit", 1000)
	v.SetDefault("index.hnsw.m", 4)
	v.SetDefault("index.hnsw.ef_construction", 400)
	v.SetDefault("index.hnsw.ef_search", 500)

	v.SetDefault("blob.driver", "minio")
	v.SetDefault("blob.container", "driftmind")
	v.SetDefault("blob.max_file_size_mb", 50)
	v.SetDefault("blob.allowed_ext", []string{"pdf", "docx", "doc", "txt", "md", "csv", "json", "xml", "log"})

	v.SetDefault("embedding.provider", "openai_compatible")
	v.SetDefault("embedding.dimensions", 1536)
	v.SetDefault("embedding.batch_size", 10)
	v.SetDefault("embedding.cache_ttl", "2h")
	v.SetDefault("embedding.cache_slide", "30m")
	v.SetDefault("embedding.cache_size", 50000)

	v.SetDefault("chat.provider", "openai_compatible")

	v.SetDefault("search.min_score_for_answer", 0.15)
	v.SetDefault("search.min_score_for_follow_up", 0.05)
	v.SetDefault("search.max_sources_for_answer", 5)
	v.SetDefault("search.hybrid_fetch_cap", 100)
	v.SetDefault("search.history_enhance_top_k", 15)

	v.SetDefault("ingest.default_chunk_size", 300)
	v.SetDefault("ingest.default_chunk_overlap", 20)
	v.SetDefault("ingest.async_threshold_mb", 10)
	v.SetDefault("ingest.async_worker_concurrency", 4)
	v.SetDefault("ingest.max_id_generation_tries", 5)

	v.SetDefault("download.max_expiration_minutes", 60)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.service_name", "driftmind")

	v.SetDefault("analytics.enabled", true)
	v.SetDefault("analytics.duckdb_path", "./data/analytics.duckdb")
}
