// Command driftmind-mcp serves the Search Orchestrator as an MCP tool
// surface over stdio, for agent clients that want retrieval without the
// HTTP API (SPEC_FULL "Agent tool surface").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"

	"github.com/driftmind/driftmind/internal/blob"
	"github.com/driftmind/driftmind/internal/chat"
	"github.com/driftmind/driftmind/internal/config"
	"github.com/driftmind/driftmind/internal/embedding"
	"github.com/driftmind/driftmind/internal/history"
	"github.com/driftmind/driftmind/internal/index/elasticsearch"
	indexpg "github.com/driftmind/driftmind/internal/index/postgres"
	"github.com/driftmind/driftmind/internal/index/qdrant"
	"github.com/driftmind/driftmind/internal/logger"
	mcpserver "github.com/driftmind/driftmind/internal/mcp"
	"github.com/driftmind/driftmind/internal/orchestrator"
	"github.com/driftmind/driftmind/internal/scorer"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	index, err := newIndexGateway(cfg)
	if err != nil {
		logger.Error(ctx, "build index gateway", "error", err.Error())
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	cache := embedding.NewCache(cfg.Embedding.CacheSize, cfg.Embedding.CacheTTL, cfg.Embedding.CacheSlide, redisClient)
	embedder, err := embedding.NewFromAppConfig(cfg, cache)
	if err != nil {
		logger.Error(ctx, "build embedder", "error", err.Error())
		os.Exit(1)
	}

	blobGW, err := newBlobGateway(cfg)
	if err != nil {
		logger.Error(ctx, "build blob gateway", "error", err.Error())
		os.Exit(1)
	}

	chatGateway, err := chat.NewFromAppConfig(cfg, blobGW)
	if err != nil {
		logger.Error(ctx, "build chat gateway", "error", err.Error())
		os.Exit(1)
	}

	var index2 interfaces.IndexGateway = index
	var embedder2 interfaces.Embedder = embedder
	var scorer2 interfaces.RelevanceScorer = scorer.New()
	var history2 interfaces.HistoryAnalyzer = history.New()
	var chat2 interfaces.ChatGateway = chatGateway

	o := orchestrator.New(index2, embedder2, scorer2, history2, chat2, cfg.Search)
	srv := mcpserver.New(o)

	if err := server.ServeStdio(srv.MCPServer()); err != nil {
		logger.Error(ctx, "mcp server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func newBlobGateway(cfg *config.Config) (interfaces.BlobGateway, error) {
	switch strings.ToLower(cfg.Blob.Driver) {
	case "cos":
		return blob.NewCOSGateway(cfg.Blob.COS.BucketURL, cfg.Blob.COS.SecretID, cfg.Blob.COS.SecretKey)
	case "minio", "":
		return blob.NewMinioGateway(cfg.Blob.Minio.Endpoint, cfg.Blob.Minio.AccessKeyID, cfg.Blob.Minio.SecretAccessKey, cfg.Blob.Minio.UseSSL)
	default:
		return nil, fmt.Errorf("unsupported blob driver: %s", cfg.Blob.Driver)
	}
}

func newIndexGateway(cfg *config.Config) (interfaces.IndexGateway, error) {
	gw, err := buildIndexGateway(cfg)
	if err != nil {
		return nil, err
	}
	if err := gw.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("initialize index gateway: %w", err)
	}
	return gw, nil
}

func buildIndexGateway(cfg *config.Config) (interfaces.IndexGateway, error) {
	switch strings.ToLower(cfg.Index.Driver) {
	case "elasticsearch_v7":
		return elasticsearch.NewGatewayV7(cfg.Index.Elasticsearch.Addresses, cfg.Index.Elasticsearch.Username, cfg.Index.Elasticsearch.Password, cfg.Index.IndexName, cfg.Index.EmbeddingDim)
	case "elasticsearch_v8", "":
		return elasticsearch.NewGatewayV8(cfg.Index.Elasticsearch.Addresses, cfg.Index.Elasticsearch.Username, cfg.Index.Elasticsearch.Password, cfg.Index.IndexName, cfg.Index.EmbeddingDim)
	case "qdrant":
		return qdrant.NewGateway(cfg.Index.Qdrant.Host, cfg.Index.Qdrant.Port, cfg.Index.Qdrant.APIKey, cfg.Index.IndexName, cfg.Index.EmbeddingDim)
	case "postgres":
		return indexpg.NewGateway(cfg.Postgres.DSN, cfg.Index.EmbeddingDim)
	default:
		return nil, fmt.Errorf("unsupported index driver: %s", cfg.Index.Driver)
	}
}
