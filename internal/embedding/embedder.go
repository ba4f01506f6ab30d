// Package embedding implements the Embedder component (spec.md §4, §5): a
// provider-routed text-to-vector mapper with a batching worker pool and a
// TTL'd embedding cache.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/driftmind/driftmind/internal/config"
)

// Config is the embedder configuration, narrowed from the teacher's richer
// multi-provider Config to the two providers SPEC_FULL's DOMAIN STACK names.
type Config struct {
	Provider   string
	BaseURL    string
	APIKey     string
	ModelName  string
	Dimensions int
	BatchSize  int
}

// providerEmbedder is the minimal per-provider contract; Embedder below adds
// pooled batching and caching around it.
type providerEmbedder interface {
	embedOne(ctx context.Context, text string) ([]float32, error)
	dimensions() int
	modelName() string
}

// Embedder implements interfaces.Embedder: cache-then-pool-then-provider.
type Embedder struct {
	provider providerEmbedder
	pool     *batchPool
	cache    *Cache
}

// New builds an Embedder from config, routing to the ollama or
// openai-compatible provider (mirrors the teacher's NewEmbedder factory
// switch in internal/models/embedding/embedder.go, narrowed per SPEC_FULL).
func New(cfg Config, cache *Cache) (*Embedder, error) {
	var p providerEmbedder
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		p = newOllamaEmbedder(cfg.BaseURL, cfg.ModelName, cfg.Dimensions)
	case "openai_compatible", "":
		p = newOpenAICompatibleEmbedder(cfg.APIKey, cfg.BaseURL, cfg.ModelName, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	pool, err := newBatchPool(batchSize, p.embedOne)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}

	return &Embedder{provider: p, pool: pool, cache: cache}, nil
}

// NewFromAppConfig builds an Embedder from the top-level application config.
func NewFromAppConfig(appCfg *config.Config, cache *Cache) (*Embedder, error) {
	return New(Config{
		Provider:   appCfg.Embedding.Provider,
		BaseURL:    appCfg.Embedding.BaseURL,
		APIKey:     appCfg.Embedding.APIKey,
		ModelName:  appCfg.Embedding.ModelName,
		Dimensions: appCfg.Embedding.Dimensions,
		BatchSize:  appCfg.Embedding.BatchSize,
	}, cache)
}

// Embed returns text's embedding, serving from cache when present.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.cache != nil {
		if vec, ok := e.cache.Get(text); ok {
			return vec, nil
		}
	}
	vec, err := e.provider.embedOne(ctx, text)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(text, vec)
	}
	return vec, nil
}

// BatchEmbed embeds texts concurrently through the bounded worker pool,
// serving cache hits directly and only dispatching misses (spec.md §5's
// "embedding batches are bounded... parallel within a batch").
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if e.cache != nil {
			if vec, ok := e.cache.Get(text); ok {
				results[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	embedded, err := e.pool.embedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, idx := range missIdx {
		results[idx] = embedded[j]
		if e.cache != nil {
			e.cache.Set(missTexts[j], embedded[j])
		}
	}
	return results, nil
}

// Dimensions returns the provider's embedding dimension.
func (e *Embedder) Dimensions() int {
	return e.provider.dimensions()
}

// ModelName returns the provider's model identifier.
func (e *Embedder) ModelName() string {
	return e.provider.modelName()
}
